// Package cache provides an optional Redis-backed cache for sentiment
// analysis results. When no Redis server is reachable the cache degrades
// to a no-op and every analysis goes to the inference service.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const sentimentTTL = 24 * time.Hour

// SentimentCache stores serialized analysis results keyed by a digest of
// the analyzed text and model name.
type SentimentCache struct {
	client *redis.Client
}

// New connects to Redis at addr and returns a cache, or nil when addr is
// empty or the server does not answer a ping. Callers must treat a nil
// cache as disabled.
func New(addr, password string) *SentimentCache {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return &SentimentCache{client: client}
}

// Get returns the cached result for text under model, or "" on miss
func (s *SentimentCache) Get(ctx context.Context, model, text string) string {
	if s == nil {
		return ""
	}
	val, err := s.client.Get(ctx, key(model, text)).Result()
	if err != nil {
		return ""
	}
	return val
}

// Set stores a serialized analysis result
func (s *SentimentCache) Set(ctx context.Context, model, text, result string) {
	if s == nil {
		return
	}
	s.client.Set(ctx, key(model, text), result, sentimentTTL)
}

// Close releases the underlying Redis connection
func (s *SentimentCache) Close() error {
	if s == nil {
		return nil
	}
	return s.client.Close()
}

func key(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return "sentiment:" + hex.EncodeToString(sum[:])
}
