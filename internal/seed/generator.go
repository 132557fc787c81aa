// Package seed generates synthetic jobs and search documents.
package seed

import (
	"math"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/weiawesome/openjob/internal/domain"
)

var (
	startDateMin = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	startDateMax = time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
)

const (
	latMin, latMax = 22.0, 23.0
	lonMin, lonMax = 113.0, 115.0
	maxFunctionIDs = 9
)

// Generator produces fake jobs. It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// NewGenerator creates a generator. Seed 0 picks a random seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Job returns a job for the i-th row of a batch. Its id, categories and
// update time are left for the caller.
func (g *Generator) Job(i int) *domain.Job {
	g.mu.Lock()
	defer g.mu.Unlock()

	f := g.faker
	start, end, created := g.dates()
	from, to := g.salary()

	return &domain.Job{
		DistrictID:   g.district(),
		Name:         f.JobTitle(),
		CompanyName1: f.Company(),
		CompanyName2: companyNamesCN[i%len(companyNamesCN)],
		SalaryFrom:   from,
		SalaryTo:     to,
		Lat:          round6(f.Float64Range(latMin, latMax)),
		Lon:          round6(f.Float64Range(lonMin, lonMax)),
		FunctionIDs:  g.functionIDs(),
		StartDate:    start,
		EndDate:      end,
		CreatedAt:    created,
	}
}

// Jobs returns n generated jobs.
func (g *Generator) Jobs(n int) []*domain.Job {
	jobs := make([]*domain.Job, n)
	for i := range jobs {
		jobs[i] = g.Job(i)
	}
	return jobs
}

// Documents returns n index documents that do not correspond to stored
// jobs; each one gets a random UUID as its jobId.
func (g *Generator) Documents(n int) []domain.JobDocument {
	docs := make([]domain.JobDocument, n)
	for i := range docs {
		doc := g.Job(i).ToDocument()
		doc.JobID = uuid.NewString()
		docs[i] = doc
	}
	return docs
}

// PickCategory returns the id of a random category.
func (g *Generator) PickCategory(categories []domain.JobCategory) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return categories[g.faker.IntRange(0, len(categories)-1)].ID
}

// dates returns a start date in [2022-01-01, 2023-12-01), an end date
// within a year after it and a creation date before it.
func (g *Generator) dates() (start, end, created time.Time) {
	f := g.faker
	start = f.DateRange(startDateMin, startDateMax.Add(-time.Second)).UTC()
	end = f.DateRange(start, start.AddDate(1, 0, 0)).UTC()
	created = f.DateRange(startDateMin, start).UTC()
	return start, end, created
}

// salary returns a 1 or 2 digit lower bound and an upper bound of at most
// one and a half times it, both in thousands.
func (g *Generator) salary() (from, to int) {
	f := g.faker
	if f.Bool() {
		from = f.IntRange(1, 9)
	} else {
		from = f.IntRange(10, 99)
	}
	to = f.IntRange(from, from*3/2)
	return from * 1000, to * 1000
}

func (g *Generator) district() int {
	return g.code()
}

func (g *Generator) functionIDs() []int {
	n := g.faker.IntRange(0, maxFunctionIDs)
	ids := make([]int, n)
	for i := range ids {
		ids[i] = g.code()
	}
	return ids
}

// code returns a 3 or 4 digit number.
func (g *Generator) code() int {
	if g.faker.Bool() {
		return g.faker.IntRange(100, 999)
	}
	return g.faker.IntRange(1000, 9999)
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
