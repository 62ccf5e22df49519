// Loquat addresses cached values through structured keys of the form
// `<entityType>:<entityID>` with an optional third segment fingerprinting the
// lookup parameters. Structured keys keep semantically equal lookups on the same
// cache slot regardless of how the caller ordered its parameters, and let
// operators decompose a key back into what produced it.

package keys

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/nobletooth/loquat/pkg/utils"
	"google.golang.org/protobuf/proto"
)

// SizeUnknown is the sentinel returned by EstimateSize for values whose size cannot
// be estimated (cyclic structures, unserializable types).
const SizeUnknown = -1

const (
	keySeparator    = ":"
	paramsHashWidth = 16 // Hex digits of the 64-bit params fingerprint.
)

// namespacePattern limits namespace names to a safe charset and a sane length.
var namespacePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)

// Key is the decomposed form of a structured cache key.
type Key struct {
	EntityType string
	EntityID   string
	ParamsHash string // Empty when the key was generated without params.
}

// ParseError reports a malformed structured key. Use errors.As to detect it.
type ParseError struct {
	Key    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed cache key %q: %s", e.Key, e.Reason)
}

// GenerateKey builds a deterministic, collision-resistant cache key for the given
// entity. Params are canonicalized before hashing, so two maps that are equal up to
// field order produce the same key. Entity type and ID must be non-empty and must
// not contain the key separator; violating that is a caller bug.
func GenerateKey(entityType, entityID string, params map[string]any) string {
	if entityType == "" || entityID == "" ||
		strings.Contains(entityType, keySeparator) || strings.Contains(entityID, keySeparator) {
		utils.RaiseInvariant("keys", "unencodable_key_segment",
			"Key segments must be non-empty and separator-free.",
			"entityType", entityType, "entityId", entityID)
	}
	if len(params) == 0 {
		return entityType + keySeparator + entityID
	}
	return entityType + keySeparator + entityID + keySeparator + hashParams(params)
}

// ParseKey decomposes a structured key produced by GenerateKey. It fails with a
// *ParseError on malformed input instead of guessing.
func ParseKey(key string) (Key, error) {
	parts := strings.Split(key, keySeparator)
	switch len(parts) {
	case 2:
		// No params segment.
	case 3:
		if len(parts[2]) != paramsHashWidth || !isHex(parts[2]) {
			return Key{}, &ParseError{Key: key, Reason: "params segment is not a fingerprint"}
		}
	default:
		return Key{}, &ParseError{Key: key, Reason: "expected 2 or 3 segments"}
	}
	if parts[0] == "" || parts[1] == "" {
		return Key{}, &ParseError{Key: key, Reason: "empty key segment"}
	}
	parsed := Key{EntityType: parts[0], EntityID: parts[1]}
	if len(parts) == 3 {
		parsed.ParamsHash = parts[2]
	}
	return parsed, nil
}

// ValidateNamespace reports whether the given name is usable as a cache namespace:
// charset [A-Za-z0-9_-], length 1 to 50.
func ValidateNamespace(name string) bool {
	return namespacePattern.MatchString(name)
}

// EstimateSize returns a best-effort byte estimate of a cached value. The estimate
// is informational only and never enforced. Protobuf messages are sized exactly;
// everything else is measured by its JSON encoding. Values that cannot be
// serialized (cyclic structures, channels, funcs) yield SizeUnknown rather than an
// error.
func EstimateSize(value any) int {
	switch v := value.(type) {
	case nil:
		return 0
	case string:
		return len(v)
	case []byte:
		return len(v)
	case proto.Message:
		return proto.Size(v)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return SizeUnknown
	}
	return len(encoded)
}

// hashParams computes a stable 64-bit fingerprint over the params map. JSON
// encoding sorts map keys, which makes the digest independent of field order; the
// param names are folded in sorted order as well so an empty-valued map never
// collides with a differently named one.
func hashParams(params map[string]any) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	digest := xxhash.New()
	for _, name := range names {
		_, _ = digest.WriteString(name)
		_, _ = digest.WriteString("=")
		encoded, err := json.Marshal(params[name])
		if err != nil {
			// Unserializable param values are a caller bug; fall back to the Go
			// syntax representation so the key stays usable within this process.
			utils.RaiseInvariant("keys", "unserializable_param",
				"Cache key params must be JSON-serializable.", "param", name)
			encoded = fmt.Appendf(nil, "%#v", params[name])
		}
		_, _ = digest.Write(encoded)
		_, _ = digest.WriteString(";")
	}
	return fmt.Sprintf("%0*x", paramsHashWidth, digest.Sum64())
}

func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
