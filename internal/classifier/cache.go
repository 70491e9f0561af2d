// Package classifier provides caching for model predictions.
package classifier

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// CacheKey identifies one predicted row: the model that produced it and a
// digest of the feature vector it saw.
type CacheKey struct {
	ModelID    string
	FeatureSum string
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%s", k.ModelID, k.FeatureSum)
}

// HashFeatures digests a feature vector into a cache key component. NaN
// cells hash to a fixed pattern so missing-value rows still key stably.
func HashFeatures(vector []float64) string {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, v := range vector {
		bits := math.Float64bits(v)
		if math.IsNaN(v) {
			bits = math.Float64bits(math.NaN())
		}
		binary.LittleEndian.PutUint64(buf, bits)
		h.Write(buf)
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:16])
}

// PredictionCache provides in-memory caching for per-row predictions.
type PredictionCache struct {
	cache     *cache.Cache
	maxSize   int
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewPredictionCache creates a new prediction cache
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		cache:   cache.New(ttl, ttl*2),
		maxSize: maxSize,
	}
}

// Get returns the cached label for a key, or false on a miss.
func (p *PredictionCache) Get(key CacheKey) (int, bool) {
	value, found := p.cache.Get(key.String())
	p.mu.Lock()
	defer p.mu.Unlock()
	if !found {
		p.missCount++
		PredictionCacheHitsTotal.WithLabelValues("miss").Inc()
		return 0, false
	}
	p.hitCount++
	PredictionCacheHitsTotal.WithLabelValues("hit").Inc()
	return value.(int), true
}

// Set stores a predicted label, evicting nothing itself: when the cache is
// full the entry is simply not stored.
func (p *PredictionCache) Set(key CacheKey, label int) {
	if p.maxSize > 0 && p.cache.ItemCount() >= p.maxSize {
		return
	}
	p.cache.SetDefault(key.String(), label)
}

// InvalidateModel flushes every entry; model identifiers are unique per fit
// so a full flush on retrain is the simplest correct policy.
func (p *PredictionCache) InvalidateModel() {
	p.cache.Flush()
}

// Stats returns hit and miss counts.
func (p *PredictionCache) Stats() (hits, misses uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hitCount, p.missCount
}
