// Package scheduler runs named periodic jobs.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	pkglog "github.com/weiawesome/openjob/pkg/log"
)

// Func is the work of a periodic job.
type Func func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	fn       Func
	quit     chan struct{}
	doneCh   chan struct{}
}

// Scheduler runs jobs by name. Registering a name that already exists
// replaces the running job.
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[string]*job
	ctx     context.Context
	started bool
	stopped bool
}

// New creates an idle scheduler.
func New() *Scheduler {
	return &Scheduler{jobs: make(map[string]*job)}
}

// Start launches every registered job. Jobs registered later start
// immediately. ctx is passed to every run.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.ctx = ctx
	for _, j := range s.jobs {
		go j.run(ctx)
	}
}

// Replace registers fn under name to run every interval, stopping the job
// previously registered under the same name.
func (s *Scheduler) Replace(name string, interval time.Duration, fn Func) {
	if interval <= 0 {
		interval = time.Minute
	}
	j := &job{
		name:     name,
		interval: interval,
		fn:       fn,
		quit:     make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	old := s.jobs[name]
	s.jobs[name] = j
	started, ctx := s.started, s.ctx
	s.mu.Unlock()

	if old != nil {
		old.stop(started)
	}
	if started {
		go j.run(ctx)
	}

	l := pkglog.L()
	l.Info().Str("job", name).Dur("interval", interval).Bool("replaced", old != nil).Msg("scheduler: job registered")
}

// Remove stops and unregisters the job. It reports whether the job existed.
func (s *Scheduler) Remove(name string) bool {
	s.mu.Lock()
	j, ok := s.jobs[name]
	delete(s.jobs, name)
	started := s.started
	s.mu.Unlock()

	if ok {
		j.stop(started)
	}
	return ok
}

// Names lists registered jobs in name order.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stop stops every job and waits for running work to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	jobs := s.jobs
	s.jobs = make(map[string]*job)
	started := s.started
	s.mu.Unlock()

	for _, j := range jobs {
		j.stop(started)
	}
}

// stop signals the job and, when its goroutine was started, waits for the
// current run to return.
func (j *job) stop(wait bool) {
	close(j.quit)
	if wait {
		<-j.doneCh
	}
}

func (j *job) run(ctx context.Context) {
	defer close(j.doneCh)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.execute(ctx)
		}
	}
}

func (j *job) execute(ctx context.Context) {
	l := pkglog.L()
	start := time.Now()
	if err := j.fn(ctx); err != nil {
		l.Error().Err(err).Str("job", j.name).Msg("scheduler: job failed")
		return
	}
	l.Debug().Str("job", j.name).Dur("took", time.Since(start)).Msg("scheduler: job finished")
}
