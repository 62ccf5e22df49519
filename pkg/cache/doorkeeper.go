package cache

import "github.com/bits-and-blooms/bloom/v3"

const (
	// doorkeeperCapacityFactor scales the bloom filter past the namespace capacity
	// so the filter keeps a usable false-positive rate while remembering keys that
	// were seen but never admitted.
	doorkeeperCapacityFactor = 8
	doorkeeperFalsePositive  = 0.01
)

// doorkeeper is a bloom-filter admission policy guarding a namespace against
// one-shot keys: the first write of an unseen key only registers it, a repeat
// write is admitted and cached. False positives admit a first-time key early,
// which is harmless.
type doorkeeper struct {
	seen *bloom.BloomFilter
}

func newDoorkeeper(maxEntries int) *doorkeeper {
	return &doorkeeper{
		seen: bloom.NewWithEstimates(uint(maxEntries)*doorkeeperCapacityFactor, doorkeeperFalsePositive),
	}
}

// admit reports whether the key has been seen before, registering it when not.
func (d *doorkeeper) admit(key string) bool {
	if d.seen.TestString(key) {
		return true
	}
	d.seen.AddString(key)
	return false
}

// reset forgets all seen keys; called when the namespace is cleared.
func (d *doorkeeper) reset() {
	d.seen.ClearAll()
}
