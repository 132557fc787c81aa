package domain

import (
	"strconv"
	"time"
)

// CategoryTypePrimary is the link type used for generated job categories.
const CategoryTypePrimary = 1

// Job is a job listing as stored in the relational database.
type Job struct {
	ID           int64
	DistrictID   int
	Name         string
	CompanyName1 string
	CompanyName2 string
	SalaryFrom   int
	SalaryTo     int
	Lat          float64
	Lon          float64
	FunctionIDs  []int
	CategoryIDs  []int
	StartDate    time.Time
	EndDate      time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobCategory is a job function category.
type JobCategory struct {
	ID   int
	Name string
}

// GeoPoint is an Elasticsearch geo_point in object form.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// JobDocument is the search index document for a job.
type JobDocument struct {
	JobID        string    `json:"jobId"`
	Name         string    `json:"name"`
	CompanyName1 string    `json:"companyName1"`
	CompanyName2 string    `json:"companyName2"`
	SalaryFrom   int       `json:"salaryFrom"`
	SalaryTo     int       `json:"salaryTo"`
	DistrictID   int       `json:"districtId"`
	FunctionIDs  []int     `json:"functionIds"`
	Geo          GeoPoint  `json:"geo"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	CreateDate   time.Time `json:"createDate"`
}

// ToDocument converts a Job to its index document. The document's function
// ids are the job's function codes followed by its category ids, without
// duplicates.
func (j *Job) ToDocument() JobDocument {
	functionIDs := make([]int, 0, len(j.FunctionIDs)+len(j.CategoryIDs))
	seen := make(map[int]struct{}, cap(functionIDs))
	for _, ids := range [][]int{j.FunctionIDs, j.CategoryIDs} {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			functionIDs = append(functionIDs, id)
		}
	}

	return JobDocument{
		JobID:        strconv.FormatInt(j.ID, 10),
		Name:         j.Name,
		CompanyName1: j.CompanyName1,
		CompanyName2: j.CompanyName2,
		SalaryFrom:   j.SalaryFrom,
		SalaryTo:     j.SalaryTo,
		DistrictID:   j.DistrictID,
		FunctionIDs:  functionIDs,
		Geo:          GeoPoint{Lat: j.Lat, Lon: j.Lon},
		StartDate:    j.StartDate,
		EndDate:      j.EndDate,
		CreateDate:   j.CreatedAt,
	}
}

// JobsToDocuments converts jobs to index documents, preserving order.
func JobsToDocuments(jobs []Job) []JobDocument {
	docs := make([]JobDocument, len(jobs))
	for i := range jobs {
		docs[i] = jobs[i].ToDocument()
	}
	return docs
}
