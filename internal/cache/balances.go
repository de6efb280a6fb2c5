// Package cache memoizes netting results per group, keyed by a hash of the
// exact inputs, so repeated reads of an unchanged ledger skip the pipeline.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mmynk/groupledger/internal/ledger"
	"github.com/mmynk/groupledger/internal/metrics"
)

const (
	DefaultSize = 256
	DefaultTTL  = 5 * time.Minute
)

// BalanceCache memoizes ledger.Compute.
//
// Results handed out are shared between callers and must be treated as
// read-only.
type BalanceCache struct {
	results *lru[ledger.Result]
	flight  singleflight.Group
}

// NewBalanceCache creates a cache holding up to size results for ttl each.
// Non-positive arguments fall back to the defaults.
func NewBalanceCache(size int, ttl time.Duration) *BalanceCache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &BalanceCache{results: newLRU[ledger.Result](size, ttl)}
}

// Compute returns the memoized result for in, running the pipeline on a miss.
// Concurrent misses for the same input share a single run.
func (c *BalanceCache) Compute(groupID string, in ledger.Input) ledger.Result {
	fp, err := Fingerprint(in)
	if err != nil {
		slog.Warn("Skipping balance cache", "group_id", groupID, "error", err)
		return ledger.Compute(in)
	}
	key := groupID + "/" + fp

	if res, ok := c.results.get(key); ok {
		metrics.BalanceCache.WithLabelValues("hit").Inc()
		return res
	}

	v, _, shared := c.flight.Do(key, func() (any, error) {
		start := time.Now()
		res := ledger.Compute(in)
		metrics.BalanceCompute.Observe(time.Since(start).Seconds())

		slog.Debug("Ledger netted", "group_id", groupID, "result", res)
		c.results.set(key, res)
		return res, nil
	})

	if shared {
		metrics.BalanceCache.WithLabelValues("shared").Inc()
	} else {
		metrics.BalanceCache.WithLabelValues("miss").Inc()
	}
	return v.(ledger.Result)
}

// Invalidate drops every memoized result of a group.
func (c *BalanceCache) Invalidate(groupID string) {
	if n := c.results.deletePrefix(groupID + "/"); n > 0 {
		slog.Debug("Balance cache invalidated", "group_id", groupID, "entries", n)
	}
}

// Len reports the number of memoized results.
func (c *BalanceCache) Len() int {
	return c.results.size()
}

// Fingerprint hashes an input snapshot. Inputs holding the same members,
// transactions and settlements in the same order, with the same viewer, hash
// equally. Amounts that JSON cannot represent (NaN, Inf) are an error.
func Fingerprint(in ledger.Input) (string, error) {
	// Input has no maps, so its JSON encoding is canonical
	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("failed to encode ledger input: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
