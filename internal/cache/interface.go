package cache

import (
	"context"
	"errors"
	"time"

	"github.com/weiawesome/openjob/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// SearchCache defines the interface for caching search results.
type SearchCache interface {
	// BuildKey derives the cache key of a compiled request body on index.
	// Keys built before a Flush of index never match keys built after it.
	BuildKey(ctx context.Context, index string, body []byte) (string, error)
	Get(ctx context.Context, key string) (*domain.SearchResponse, error)
	Set(ctx context.Context, key string, result *domain.SearchResponse, ttl time.Duration) error
	// Flush drops every cached result for index.
	Flush(ctx context.Context, index string) (int64, error)
	Close() error
}
