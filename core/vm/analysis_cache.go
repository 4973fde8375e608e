package vm

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/smolevm/go-smolevm/common"
	"github.com/smolevm/go-smolevm/crypto"
	"github.com/smolevm/go-smolevm/params"
)

// AnalysisCache keeps code analyses keyed by code hash, so repeated runs of
// the same program skip the jumpdest scan. It is safe for concurrent use.
type AnalysisCache struct {
	cache *lru.Cache
}

// NewAnalysisCache creates a cache holding at most size analyses. A
// non-positive size uses params.DefaultAnalysisCacheSize.
func NewAnalysisCache(size int) *AnalysisCache {
	if size <= 0 {
		size = params.DefaultAnalysisCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		// Only returned for non-positive sizes.
		panic(err)
	}
	return &AnalysisCache{cache: cache}
}

// Analysis returns the analysis of code, computing and caching it on a miss.
func (c *AnalysisCache) Analysis(code []byte) *CodeAnalysis {
	hash := crypto.Keccak256Hash(code)
	if cached, ok := c.cache.Get(hash); ok {
		analysisHitMeter.Mark(1)
		return cached.(*CodeAnalysis)
	}
	analysisMissMeter.Mark(1)
	analysis := AnalyzeCode(code)
	c.cache.Add(hash, analysis)
	return analysis
}

// Contains reports whether the analysis for the given code hash is cached.
func (c *AnalysisCache) Contains(hash common.Hash) bool {
	return c.cache.Contains(hash)
}

// Len returns the number of cached analyses.
func (c *AnalysisCache) Len() int {
	return c.cache.Len()
}
