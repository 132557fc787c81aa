package repository

import (
	"context"
	"errors"
	"time"

	"github.com/weiawesome/openjob/internal/domain"
	"github.com/weiawesome/openjob/internal/query"
)

var (
	// ErrBackendUnavailable means the search backend could not be reached.
	ErrBackendUnavailable = errors.New("search backend unavailable")
	// ErrQueryRejected means the search backend answered with an error status.
	ErrQueryRejected = errors.New("search query rejected")
	// ErrNoCategories means jobs cannot be linked because no category exists.
	ErrNoCategories = errors.New("no job categories")
)

// JobRepository defines the interface for job data persistence.
type JobRepository interface {
	CountCategories(ctx context.Context) (int64, error)
	CreateCategories(ctx context.Context, names []string) (int, error)
	ListCategories(ctx context.Context) ([]domain.JobCategory, error)
	// CreateBatch inserts jobs and their category links in one transaction
	// and fills in the generated ids.
	CreateBatch(ctx context.Context, jobs []*domain.Job) error
	// ListUpdatedBetween returns jobs with from < updated_at <= to.
	ListUpdatedBetween(ctx context.Context, from, to time.Time) ([]domain.Job, error)
	ListAll(ctx context.Context) ([]domain.Job, error)
}

// SearchRepository executes compiled queries against the search backend.
type SearchRepository interface {
	Search(ctx context.Context, index string, q query.CompiledQuery) (query.Result, error)
}
