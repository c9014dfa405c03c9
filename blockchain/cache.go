package blockchain

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// ThresholdConditionCache maps a period-boundary block's identity to the
// ThresholdState of the window starting at that block's successor. Entries
// are write-once: once a hash maps to a state, it is never overwritten, so
// concurrent callers racing to fill the same key are safe to let the last
// write win, since both would compute the identical value.
type ThresholdConditionCache struct {
	entries map[chainhash.Hash]ThresholdState
}

// NewThresholdConditionCache returns an empty cache ready for use.
func NewThresholdConditionCache() *ThresholdConditionCache {
	return &ThresholdConditionCache{
		entries: make(map[chainhash.Hash]ThresholdState),
	}
}

// Lookup returns the cached state for hash, and whether it was present.
func (c *ThresholdConditionCache) Lookup(hash chainhash.Hash) (ThresholdState, bool) {
	state, ok := c.entries[hash]
	return state, ok
}

// Update records the state for hash. Calling it twice for the same hash
// with different states indicates a bug upstream (the state of a given
// block is a pure function of the block and the deployment parameters), but
// Update does not itself guard against it; the caller holds the single
// advisory lock that serializes writes.
func (c *ThresholdConditionCache) Update(hash chainhash.Hash, state ThresholdState) {
	c.entries[hash] = state
}

// Clear empties the cache. Used when deployment parameters change, since a
// cached state is only valid for the parameters it was computed under.
func (c *ThresholdConditionCache) Clear() {
	c.entries = make(map[chainhash.Hash]ThresholdState)
}

// Len returns the number of cached period boundaries.
func (c *ThresholdConditionCache) Len() int {
	return len(c.entries)
}

// ThresholdCaches holds one ThresholdConditionCache per deployment, indexed
// by the deployment's position in a chaincfg.Params.Deployments slice. This
// is the "one cache per deployment" strategy of spec.md §3, keyed
// additionally by deployment id via the slice index.
type ThresholdCaches struct {
	caches []*ThresholdConditionCache
}

// NewThresholdCaches allocates numDeployments empty per-deployment caches.
func NewThresholdCaches(numDeployments int) *ThresholdCaches {
	caches := make([]*ThresholdConditionCache, numDeployments)
	for i := range caches {
		caches[i] = NewThresholdConditionCache()
	}
	return &ThresholdCaches{caches: caches}
}

// For returns the cache for the deployment at the given index.
func (t *ThresholdCaches) For(deploymentID int) *ThresholdConditionCache {
	return t.caches[deploymentID]
}

// ClearCache empties every per-deployment cache. This is the exported
// ClearCache operation of spec.md §6.
func (t *ThresholdCaches) ClearCache() {
	for _, c := range t.caches {
		c.Clear()
	}
}
