package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/weiawesome/openjob/internal/domain"
	"github.com/weiawesome/openjob/internal/index"
	"github.com/weiawesome/openjob/internal/query"
)

type mockSearchRepo struct {
	mock.Mock
}

func (m *mockSearchRepo) Search(ctx context.Context, idx string, q query.CompiledQuery) (query.Result, error) {
	args := m.Called(ctx, idx, q)
	return args.Get(0).(query.Result), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) BuildKey(_ context.Context, idx string, body []byte) (string, error) {
	return "search:" + idx + ":" + string(body), nil
}

func (m *mockCache) Get(ctx context.Context, key string) (*domain.SearchResponse, error) {
	args := m.Called(ctx, key)
	resp, _ := args.Get(0).(*domain.SearchResponse)
	return resp, args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, result *domain.SearchResponse, ttl time.Duration) error {
	args := m.Called(ctx, key, result, ttl)
	return args.Error(0)
}

func (m *mockCache) Flush(ctx context.Context, idx string) (int64, error) {
	args := m.Called(ctx, idx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCache) Close() error { return nil }

type mockJobRepo struct {
	mock.Mock
}

func (m *mockJobRepo) CountCategories(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockJobRepo) CreateCategories(ctx context.Context, names []string) (int, error) {
	args := m.Called(ctx, names)
	return args.Int(0), args.Error(1)
}

func (m *mockJobRepo) ListCategories(ctx context.Context) ([]domain.JobCategory, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]domain.JobCategory)
	return categories, args.Error(1)
}

func (m *mockJobRepo) CreateBatch(ctx context.Context, jobs []*domain.Job) error {
	args := m.Called(ctx, jobs)
	return args.Error(0)
}

func (m *mockJobRepo) ListUpdatedBetween(ctx context.Context, from, to time.Time) ([]domain.Job, error) {
	args := m.Called(ctx, from, to)
	jobs, _ := args.Get(0).([]domain.Job)
	return jobs, args.Error(1)
}

func (m *mockJobRepo) ListAll(ctx context.Context) ([]domain.Job, error) {
	args := m.Called(ctx)
	jobs, _ := args.Get(0).([]domain.Job)
	return jobs, args.Error(1)
}

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) Alias() string { return "openjob" }

func (m *mockIndexer) EnsureIndex(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	indices, _ := args.Get(0).([]string)
	return indices, args.Error(1)
}

func (m *mockIndexer) ApplyConfig(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockIndexer) Rebuild(ctx context.Context, docs []domain.JobDocument) (index.RebuildResult, error) {
	args := m.Called(ctx, docs)
	return args.Get(0).(index.RebuildResult), args.Error(1)
}

func (m *mockIndexer) Load(ctx context.Context, docs []domain.JobDocument) (index.BulkStats, error) {
	args := m.Called(ctx, docs)
	return args.Get(0).(index.BulkStats), args.Error(1)
}

func (m *mockIndexer) Delete(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
