package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/weiawesome/openjob/internal/cache"
	"github.com/weiawesome/openjob/internal/domain"
	"github.com/weiawesome/openjob/internal/query"
	"github.com/weiawesome/openjob/internal/repository"
	"github.com/weiawesome/openjob/pkg/log"
)

type searchServiceImpl struct {
	compiler *query.Compiler
	repo     repository.SearchRepository
	cache    cache.SearchCache
	cacheTTL time.Duration
	index    string
	sf       singleflight.Group
}

// NewSearchService creates a new search service. A nil cache disables caching.
func NewSearchService(compiler *query.Compiler, repo repository.SearchRepository, searchCache cache.SearchCache, cacheTTL time.Duration, index string) SearchService {
	return &searchServiceImpl{
		compiler: compiler,
		repo:     repo,
		cache:    searchCache,
		cacheTTL: cacheTTL,
		index:    index,
	}
}

// Search compiles filter and runs it, serving identical requests from the
// cache and collapsing concurrent identical requests into one backend call.
func (s *searchServiceImpl) Search(ctx context.Context, filter query.SearchFilter) (*domain.SearchResponse, error) {
	compiled := s.compiler.Compile(filter)
	if s.cache == nil {
		return s.search(ctx, compiled)
	}

	body, err := json.Marshal(compiled)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}
	cacheKey, err := s.cache.BuildKey(ctx, s.index, body)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("cache key error")
		return s.search(ctx, compiled)
	}

	result, err, shared := s.sf.Do(cacheKey, func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, cacheKey)
		if err == nil {
			l := log.Ctx(ctx)
			l.Debug().Bool(log.FieldCacheHit, true).Msg("search served from cache")
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Msg("cache get error")
		}

		resp, err := s.search(ctx, compiled)
		if err != nil {
			return nil, err
		}

		s.asyncCacheSet(cacheKey, resp)

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	resp := result.(*domain.SearchResponse)
	if shared {
		// Callers may modify their copy.
		resp = &domain.SearchResponse{Count: resp.Count, Data: append(resp.Data[:0:0], resp.Data...)}
	}
	return resp, nil
}

func (s *searchServiceImpl) search(ctx context.Context, compiled query.CompiledQuery) (*domain.SearchResponse, error) {
	res, err := s.repo.Search(ctx, s.index, compiled)
	if err != nil {
		return nil, err
	}
	return domain.SearchResponseFrom(res), nil
}

func (s *searchServiceImpl) asyncCacheSet(key string, resp *domain.SearchResponse) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
			l := log.L()
			l.Warn().Err(err).Str("key", key).Msg("cache set error")
		}
	}()
}
