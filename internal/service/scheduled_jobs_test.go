package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/openjob/internal/scheduler"
)

type fakeRegistrar struct {
	jobs      map[string]scheduler.Func
	intervals map[string]time.Duration
}

func (r *fakeRegistrar) Replace(name string, interval time.Duration, fn scheduler.Func) {
	r.jobs[name] = fn
	r.intervals[name] = interval
}

func (r *fakeRegistrar) Names() []string {
	return []string{JobCategoryInit, JobIndexSync}
}

func TestScheduledJobs_Update(t *testing.T) {
	svc, repo, _ := newTestJobService(1)
	reg := &fakeRegistrar{jobs: map[string]scheduler.Func{}, intervals: map[string]time.Duration{}}

	names := NewScheduledJobs(reg, svc, time.Minute, time.Hour).Update(context.Background())
	assert.Equal(t, []string{JobCategoryInit, JobIndexSync}, names)
	assert.Equal(t, time.Minute, reg.intervals[JobIndexSync])
	assert.Equal(t, time.Hour, reg.intervals[JobCategoryInit])

	repo.On("CountCategories", mock.Anything).Return(int64(3), nil)
	require.NoError(t, reg.jobs[JobCategoryInit](context.Background()))
	repo.AssertCalled(t, "CountCategories", mock.Anything)
}
