package domain

import (
	"time"

	"github.com/weiawesome/openjob/pkg/database"
)

// JobModel is the GORM model for the jobs table.
type JobModel struct {
	JobID        int64                 `gorm:"column:job_id;primaryKey;autoIncrement"`
	DistrictID   int                   `gorm:"index;not null"`
	Name         string                `gorm:"type:varchar(200);not null"`
	CompanyName1 string                `gorm:"type:varchar(200)"`
	CompanyName2 string                `gorm:"type:varchar(200)"`
	SalaryFrom   int                   `gorm:"not null;default:0"`
	SalaryTo     int                   `gorm:"not null;default:0"`
	Lat          float64
	Lon          float64
	FunctionIDs  database.IntArray     `gorm:"type:text"`
	StartDate    time.Time
	EndDate      time.Time
	CreatedAt    time.Time             `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time             `gorm:"index;autoUpdateTime:false"`
	Categories   []JobCategoryJobModel `gorm:"foreignKey:JobID;references:JobID"`
}

// TableName specifies the table name for JobModel.
func (JobModel) TableName() string {
	return "jobs"
}

// JobCategoryModel is the GORM model for the job_categories table.
type JobCategoryModel struct {
	JobCategoryID int    `gorm:"column:job_category_id;primaryKey;autoIncrement"`
	Name          string `gorm:"type:varchar(100);uniqueIndex;not null"`
}

// TableName specifies the table name for JobCategoryModel.
func (JobCategoryModel) TableName() string {
	return "job_categories"
}

// JobCategoryJobModel links a job to a category.
type JobCategoryJobModel struct {
	JobID         int64 `gorm:"primaryKey;autoIncrement:false"`
	JobCategoryID int   `gorm:"primaryKey;autoIncrement:false"`
	TypeID        int   `gorm:"not null;default:1"`
}

// TableName specifies the table name for JobCategoryJobModel.
func (JobCategoryJobModel) TableName() string {
	return "job_category_jobs"
}

// Models lists every model for auto-migration.
func Models() []interface{} {
	return []interface{}{&JobModel{}, &JobCategoryModel{}, &JobCategoryJobModel{}}
}

// ToDomain converts JobModel to domain Job.
func (m *JobModel) ToDomain() *Job {
	categoryIDs := make([]int, 0, len(m.Categories))
	for _, c := range m.Categories {
		categoryIDs = append(categoryIDs, c.JobCategoryID)
	}
	return &Job{
		ID:           m.JobID,
		DistrictID:   m.DistrictID,
		Name:         m.Name,
		CompanyName1: m.CompanyName1,
		CompanyName2: m.CompanyName2,
		SalaryFrom:   m.SalaryFrom,
		SalaryTo:     m.SalaryTo,
		Lat:          m.Lat,
		Lon:          m.Lon,
		FunctionIDs:  []int(m.FunctionIDs),
		CategoryIDs:  categoryIDs,
		StartDate:    m.StartDate,
		EndDate:      m.EndDate,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// JobToModel converts domain Job to JobModel. Category links are written
// separately.
func JobToModel(j *Job) *JobModel {
	return &JobModel{
		JobID:        j.ID,
		DistrictID:   j.DistrictID,
		Name:         j.Name,
		CompanyName1: j.CompanyName1,
		CompanyName2: j.CompanyName2,
		SalaryFrom:   j.SalaryFrom,
		SalaryTo:     j.SalaryTo,
		Lat:          j.Lat,
		Lon:          j.Lon,
		FunctionIDs:  database.IntArray(j.FunctionIDs),
		StartDate:    j.StartDate,
		EndDate:      j.EndDate,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}
