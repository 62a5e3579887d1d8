package analyzer

import (
	"sync"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
)

// resultCache is a shared, append-only fingerprint-to-result map.
// Publication is atomic per fingerprint: readers either see a complete
// result or nothing, never a partial entry.
type resultCache struct {
	mu      sync.RWMutex
	entries map[core.Fingerprint]*analysis.AnalysisResult
}

func newResultCache() *resultCache {
	return &resultCache{entries: make(map[core.Fingerprint]*analysis.AnalysisResult)}
}

// Get returns the cached result for a fingerprint, if published
func (c *resultCache) Get(fp core.Fingerprint) (*analysis.AnalysisResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[fp]
	return result, ok
}

// Put publishes a completed result. The first publication for a
// fingerprint wins; later ones are dropped so cached pointers stay
// stable for existing readers.
func (c *resultCache) Put(fp core.Fingerprint, result *analysis.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[fp]; !exists {
		c.entries[fp] = result
	}
}

// Len returns the number of published entries
func (c *resultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
