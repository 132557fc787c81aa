package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/weiawesome/openjob/internal/domain"
	"github.com/weiawesome/openjob/pkg/log"
)

const insertBatchSize = 200

// GormJobRepository implements JobRepository using GORM.
type GormJobRepository struct {
	db *gorm.DB
}

// NewGormJobRepository creates a new GORM-based job repository.
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

// CountCategories counts job categories.
func (r *GormJobRepository) CountCategories(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.JobCategoryModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return count, nil
}

// CreateCategories inserts categories by name and returns how many were created.
func (r *GormJobRepository) CreateCategories(ctx context.Context, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}
	models := make([]domain.JobCategoryModel, len(names))
	for i, name := range names {
		models[i] = domain.JobCategoryModel{Name: name}
	}

	result := r.db.WithContext(ctx).CreateInBatches(models, insertBatchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to create categories: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

// ListCategories returns every category ordered by id.
func (r *GormJobRepository) ListCategories(ctx context.Context) ([]domain.JobCategory, error) {
	var models []domain.JobCategoryModel
	if err := r.db.WithContext(ctx).Order("job_category_id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]domain.JobCategory, len(models))
	for i, m := range models {
		categories[i] = domain.JobCategory{ID: m.JobCategoryID, Name: m.Name}
	}
	return categories, nil
}

// CreateBatch inserts jobs and links each one to its categories.
func (r *GormJobRepository) CreateBatch(ctx context.Context, jobs []*domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	l := log.Ctx(ctx)

	models := make([]*domain.JobModel, len(jobs))
	for i, j := range jobs {
		models[i] = domain.JobToModel(j)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(models, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert jobs: %w", err)
		}

		var links []domain.JobCategoryJobModel
		for i, m := range models {
			for _, categoryID := range jobs[i].CategoryIDs {
				links = append(links, domain.JobCategoryJobModel{
					JobID:         m.JobID,
					JobCategoryID: categoryID,
					TypeID:        domain.CategoryTypePrimary,
				})
			}
		}
		if len(links) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(links, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to link job categories: %w", err)
		}
		return nil
	})
	if err != nil {
		l.Error().Err(err).Int(log.FieldCount, len(jobs)).Msg("job batch insert failed")
		return err
	}

	for i, m := range models {
		jobs[i].ID = m.JobID
	}
	l.Debug().Int(log.FieldCount, len(jobs)).Msg("job batch inserted")
	return nil
}

// ListUpdatedBetween returns jobs updated in (from, to], oldest id first.
func (r *GormJobRepository) ListUpdatedBetween(ctx context.Context, from, to time.Time) ([]domain.Job, error) {
	var models []domain.JobModel
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Where("updated_at > ? AND updated_at <= ?", from, to).
		Order("job_id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list updated jobs: %w", err)
	}
	return toJobs(models), nil
}

// ListAll returns every job, oldest id first.
func (r *GormJobRepository) ListAll(ctx context.Context) ([]domain.Job, error) {
	var models []domain.JobModel
	if err := r.db.WithContext(ctx).Preload("Categories").Order("job_id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return toJobs(models), nil
}

func toJobs(models []domain.JobModel) []domain.Job {
	jobs := make([]domain.Job, len(models))
	for i := range models {
		jobs[i] = *models[i].ToDomain()
	}
	return jobs
}
