package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/openjob/internal/domain"
	"github.com/weiawesome/openjob/internal/repository"
	"github.com/weiawesome/openjob/pkg/log"
)

// JobConfig sizes seeding.
type JobConfig struct {
	// BatchSize is the number of rows or documents per seeding batch.
	BatchSize int
	// Categories is inserted by InitCategories into an empty table.
	Categories []string
}

type jobServiceImpl struct {
	repo    repository.JobRepository
	indexer IndexManager
	gen     Generator
	cfg     JobConfig
	now     func() time.Time

	mu        sync.Mutex
	watermark time.Time
}

// NewJobService creates a new job service. Index sync starts from the
// beginning of the current day.
func NewJobService(repo repository.JobRepository, indexer IndexManager, gen Generator, cfg JobConfig) JobService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	s := &jobServiceImpl{
		repo:    repo,
		indexer: indexer,
		gen:     gen,
		cfg:     cfg,
		now:     time.Now,
	}
	s.watermark = startOfDay(s.now())
	return s
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// InitCategories inserts the default categories when none exist yet and
// returns how many were inserted.
func (s *jobServiceImpl) InitCategories(ctx context.Context) (int, error) {
	count, err := s.repo.CountCategories(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	n, err := s.repo.CreateCategories(ctx, s.cfg.Categories)
	if err != nil {
		return 0, err
	}
	if n != len(s.cfg.Categories) {
		return n, fmt.Errorf("inserted %d of %d categories", n, len(s.cfg.Categories))
	}

	l := log.Ctx(ctx)
	l.Info().Int(log.FieldCount, n).Msg("job categories initialised")
	return n, nil
}

// SeedJobs inserts one batch of generated jobs, each linked to a random
// category, in a single transaction.
func (s *jobServiceImpl) SeedJobs(ctx context.Context) (int, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return 0, err
	}
	if len(categories) == 0 {
		return 0, repository.ErrNoCategories
	}

	now := s.now()
	jobs := s.gen.Jobs(s.cfg.BatchSize)
	for _, j := range jobs {
		j.CategoryIDs = []int{s.gen.PickCategory(categories)}
		j.UpdatedAt = now
	}

	if err := s.repo.CreateBatch(ctx, jobs); err != nil {
		return 0, err
	}

	l := log.Ctx(ctx)
	l.Info().Int(log.FieldCount, len(jobs)).Msg("jobs seeded")
	return len(jobs), nil
}

// BulkCreate loads batches of generated documents into the index,
// generating the next batch while the current one loads. It stops at the
// first failed batch and reports it through Success rather than an error.
func (s *jobServiceImpl) BulkCreate(ctx context.Context, batches int) (*domain.BulkCreateResponse, error) {
	if _, err := s.indexer.EnsureIndex(ctx); err != nil {
		return nil, err
	}

	resp := &domain.BulkCreateResponse{Success: true}
	if batches <= 0 {
		return resp, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	pending := make(chan []domain.JobDocument, 1)

	g.Go(func() error {
		defer close(pending)
		for i := 0; i < batches; i++ {
			select {
			case pending <- s.gen.Documents(s.cfg.BatchSize):
			case <-gCtx.Done():
				return nil
			}
		}
		return nil
	})

	g.Go(func() error {
		for docs := range pending {
			stats, err := s.indexer.Load(gCtx, docs)
			resp.Indexed += stats.Indexed
			if err != nil {
				return fmt.Errorf("batch %d: %w", resp.Batches+1, err)
			}
			resp.Batches++
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Int("batches", resp.Batches).Msg("bulk create stopped")
		resp.Success = false
	}
	return resp, nil
}

func (s *jobServiceImpl) ApplyConfig(ctx context.Context) error {
	return s.indexer.ApplyConfig(ctx)
}

func (s *jobServiceImpl) DeleteIndex(ctx context.Context) error {
	return s.indexer.Delete(ctx)
}

// Rebuild reindexes every stored job into a fresh index behind the alias.
// Jobs updated after the listing are picked up by the next sync.
func (s *jobServiceImpl) Rebuild(ctx context.Context) (*domain.RebuildResponse, error) {
	listedAt := s.now()
	jobs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.indexer.Rebuild(ctx, domain.JobsToDocuments(jobs))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if listedAt.After(s.watermark) {
		s.watermark = listedAt
	}
	s.mu.Unlock()

	return &domain.RebuildResponse{Index: res.Index, Indexed: res.Indexed}, nil
}

// SyncIndex loads jobs updated since the last successful sync. The
// watermark only advances when the load succeeds.
func (s *jobServiceImpl) SyncIndex(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, to := s.watermark, s.now()
	jobs, err := s.repo.ListUpdatedBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}
	if len(jobs) == 0 {
		s.watermark = to
		return 0, nil
	}

	if _, err := s.indexer.EnsureIndex(ctx); err != nil {
		return 0, err
	}
	stats, err := s.indexer.Load(ctx, domain.JobsToDocuments(jobs))
	if err != nil {
		return 0, fmt.Errorf("failed to sync jobs to index: %w", err)
	}
	s.watermark = to

	l := log.Ctx(ctx)
	l.Info().
		Time("from", from).
		Time("to", to).
		Int64(log.FieldCount, stats.Indexed).
		Msg("jobs synced to index")
	return stats.Indexed, nil
}
