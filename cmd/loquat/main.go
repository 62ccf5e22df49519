// Runs a self-contained churn workload against the cache engine and reports
// per-namespace and global statistics. Useful as a smoke test and for eyeballing
// eviction behavior under different strategies.

package main

import (
	"flag"
	"fmt"
	"log/slog"

	"github.com/nobletooth/loquat/pkg/cache"
	"github.com/nobletooth/loquat/pkg/keys"
	"github.com/nobletooth/loquat/pkg/utils"
)

var (
	printVersion = flag.Bool("print_version", false, "Print the version and exit.")

	namespaceCount = flag.Int("namespaces", 4, "Number of namespaces to exercise.")
	entryCount     = flag.Int("entries_per_namespace", 2000, "Writes issued per namespace.")
	capacity       = flag.Int("max_entries", 500, "Capacity of each namespace.")
	strategyName   = flag.String("strategy", cache.StrategyLRU, "Eviction strategy: lru/ttl/swr.")
)

func main() {
	flag.Parse()
	utils.InitLogging()

	if *printVersion {
		slog.Info("Loquat build info.", "version", utils.Version, "commit", utils.Commit, "build", utils.BuildTime)
		return
	}

	manager := cache.NewManager(cache.Config[string]{
		MaxEntries: *capacity,
		Strategy:   *strategyName,
	})

	for ns := range *namespaceCount {
		namespace := fmt.Sprintf("workload_%d", ns)
		for i := range *entryCount {
			key := keys.GenerateKey("item", fmt.Sprintf("%d", i), nil /*params*/)
			if err := manager.Set(namespace, key, fmt.Sprintf("value-%d", i), cache.SetOptions[string]{}); err != nil {
				slog.Error("Workload write failed.", "namespace", namespace, "err", err)
				return
			}
			// Re-read a trailing window of keys to give the recency order some shape.
			if i >= 10 {
				rereadKey := keys.GenerateKey("item", fmt.Sprintf("%d", i-10), nil /*params*/)
				manager.Get(namespace, rereadKey)
			}
		}
		if stats, ok := manager.Stats(namespace); ok {
			slog.Info("Namespace workload finished.", "namespace", namespace, "size", stats.Size,
				"hits", stats.Hits, "misses", stats.Misses, "evictions", stats.Evictions,
				"hitRate", stats.HitRate)
		}
	}

	global := manager.GlobalStats()
	slog.Info("Workload finished.", "namespaces", len(global.Namespaces), "totalSize", global.TotalSize,
		"hits", global.Hits, "misses", global.Misses, "evictions", global.Evictions, "hitRate", global.HitRate)
}
