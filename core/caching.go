package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheMaxAge is how long a cached report stays valid
const cacheMaxAge = 7 * 24 * time.Hour

// cachedAssessment wraps computeAssessment with report caching.
func cachedAssessment(ctx context.Context, cfg *contract.Config, corpus *schema.Corpus, mgr contract.CacheManager) (*schema.AssessmentOutput, error) {
	var cache contract.CacheStore
	if mgr != nil {
		cache = mgr.GetCacheStore()
	}
	if cache == nil || cfg.NoCache {
		// Fallback to direct computation
		return computeAssessment(ctx, cfg, corpus)
	}

	key := generateCacheKey(ctx, cfg, corpus)

	// Check for cache hit
	if result := checkCacheHit(cache, key); result != nil {
		return result, nil
	}

	// Cache miss: compute and store
	return computeAndStore(ctx, cfg, corpus, cache, key)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(cache contract.CacheStore, key string) *schema.AssessmentOutput {
	data, version, ts, err := cache.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version == currentCacheVersion {
		entryTimestamp := time.Unix(ts, 0)
		if time.Since(entryTimestamp) <= cacheMaxAge {
			var result schema.AssessmentOutput
			if err := json.Unmarshal(data, &result); err == nil {
				return &result // Cache hit
			}
		}
	}

	return nil // Cache miss (stale or version mismatch)
}

// computeAndStore computes the result and stores it in cache
func computeAndStore(ctx context.Context, cfg *contract.Config, corpus *schema.Corpus, cache contract.CacheStore, key string) (*schema.AssessmentOutput, error) {
	result, err := computeAssessment(ctx, cfg, corpus)
	if err != nil {
		return nil, err
	}

	// Store in cache
	if data, err := json.Marshal(result); err == nil {
		_ = cache.Set(key, data, currentCacheVersion, time.Now().Unix())
	}

	return result, nil
}

// generateCacheKey creates a unique key based on analysis parameters.
// Anything that changes the report must land in the key: the requested
// dimensions, scope, cross-dimensional and DF-scope switches, the weight
// and threshold maps, and a fingerprint of the corpus itself.
func generateCacheKey(ctx context.Context, cfg *contract.Config, corpus *schema.Corpus) string {
	dims := make([]string, len(cfg.Dimensions))
	for i, dim := range cfg.Dimensions {
		dims[i] = string(dim)
	}

	key := fmt.Sprintf("%s:%s:%s:%t:%t:%s:%s:%s",
		cfg.Source,
		cfg.Scope,
		strings.Join(dims, ","),
		cfg.CrossDimensional,
		shouldCorpusDF(ctx),
		weightsDigest(cfg.Weights),
		thresholdsDigest(cfg.RiskThresholds),
		corpusFingerprint(corpus),
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

// weightsDigest serializes the weight map in canonical dimension order.
func weightsDigest(weights map[schema.Dimension]float64) string {
	parts := make([]string, len(schema.AllDimensions))
	for i, dim := range schema.AllDimensions {
		parts[i] = fmt.Sprintf("%s=%.6f", dim, weights[dim])
	}
	return strings.Join(parts, ";")
}

// thresholdsDigest serializes the risk bands in ascending severity order.
func thresholdsDigest(thresholds map[schema.RiskLevel]float64) string {
	levels := []schema.RiskLevel{schema.LowRisk, schema.ModerateRisk, schema.HighRisk, schema.SevereRisk}
	parts := make([]string, len(levels))
	for i, level := range levels {
		parts[i] = fmt.Sprintf("%s=%.6f", level, thresholds[level])
	}
	return strings.Join(parts, ";")
}

// corpusFingerprint hashes the corpus shape so edits to the export file
// invalidate cached reports. Conversation IDs, event counts and span
// timestamps change whenever an export gains or loses messages.
func corpusFingerprint(corpus *schema.Corpus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d", corpus.UserID, len(corpus.Conversations))
	for i := range corpus.Conversations {
		conv := &corpus.Conversations[i]
		fmt.Fprintf(&b, "|%s:%d", conv.ID, len(conv.Events))
		if len(conv.Events) > 0 {
			first := conv.Events[0].Timestamp.Unix()
			last := conv.Events[len(conv.Events)-1].Timestamp.Unix()
			fmt.Fprintf(&b, ":%d:%d", first, last)
		}
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(b.String())))
}
