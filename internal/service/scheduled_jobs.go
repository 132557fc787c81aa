package service

import (
	"context"
	"time"

	"github.com/weiawesome/openjob/internal/scheduler"
	"github.com/weiawesome/openjob/pkg/log"
)

// Names of the periodic jobs.
const (
	JobCategoryInit = "category-init"
	JobIndexSync    = "index-sync"
)

// Registrar accepts named periodic jobs.
type Registrar interface {
	Replace(name string, interval time.Duration, fn scheduler.Func)
	Names() []string
}

// ScheduledJobs registers the periodic maintenance jobs.
type ScheduledJobs struct {
	registrar        Registrar
	jobs             JobService
	syncInterval     time.Duration
	categoryInterval time.Duration
}

// NewScheduledJobs creates the periodic job set.
func NewScheduledJobs(registrar Registrar, jobs JobService, syncInterval, categoryInterval time.Duration) *ScheduledJobs {
	return &ScheduledJobs{
		registrar:        registrar,
		jobs:             jobs,
		syncInterval:     syncInterval,
		categoryInterval: categoryInterval,
	}
}

// Update (re)registers every periodic job, replacing jobs of the same name,
// and returns the registered names.
func (s *ScheduledJobs) Update(ctx context.Context) []string {
	s.registrar.Replace(JobCategoryInit, s.categoryInterval, func(ctx context.Context) error {
		_, err := s.jobs.InitCategories(ctx)
		return err
	})
	s.registrar.Replace(JobIndexSync, s.syncInterval, func(ctx context.Context) error {
		_, err := s.jobs.SyncIndex(ctx)
		return err
	})

	names := s.registrar.Names()
	l := log.Ctx(ctx)
	l.Info().Strs("jobs", names).Msg("scheduled jobs updated")
	return names
}
