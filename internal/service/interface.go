package service

import (
	"context"

	"github.com/weiawesome/openjob/internal/domain"
	"github.com/weiawesome/openjob/internal/index"
	"github.com/weiawesome/openjob/internal/query"
)

// SearchService defines the interface for job search.
type SearchService interface {
	Search(ctx context.Context, filter query.SearchFilter) (*domain.SearchResponse, error)
}

// JobService defines seeding, index maintenance and synchronisation.
type JobService interface {
	InitCategories(ctx context.Context) (int, error)
	SeedJobs(ctx context.Context) (int, error)
	BulkCreate(ctx context.Context, batches int) (*domain.BulkCreateResponse, error)
	ApplyConfig(ctx context.Context) error
	DeleteIndex(ctx context.Context) error
	Rebuild(ctx context.Context) (*domain.RebuildResponse, error)
	SyncIndex(ctx context.Context) (int64, error)
}

// IndexManager is the part of the index manager the services use.
type IndexManager interface {
	Alias() string
	EnsureIndex(ctx context.Context) ([]string, error)
	ApplyConfig(ctx context.Context) error
	Rebuild(ctx context.Context, docs []domain.JobDocument) (index.RebuildResult, error)
	Load(ctx context.Context, docs []domain.JobDocument) (index.BulkStats, error)
	Delete(ctx context.Context) error
}

// Generator produces synthetic data.
type Generator interface {
	Jobs(n int) []*domain.Job
	Documents(n int) []domain.JobDocument
	PickCategory(categories []domain.JobCategory) int
}
