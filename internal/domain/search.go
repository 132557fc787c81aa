package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/weiawesome/openjob/internal/query"
)

// SearchRequest is the query-string form of a job search. Set-valued
// parameters may be repeated or comma separated.
type SearchRequest struct {
	WithinIDs   []string `form:"withinIds"`
	DistrictIDs []string `form:"districtIds"`
	FunctionIDs []string `form:"functionIds"`
	SalaryFrom  *int     `form:"salaryFrom" binding:"omitempty,min=0"`
	SalaryTo    *int     `form:"salaryTo" binding:"omitempty,min=0"`
	Query       string   `form:"query" binding:"max=256"`
	Sort        string   `form:"sort" binding:"omitempty,oneof=relevant date_desc"`
	StartAt     *int     `form:"startAt" binding:"omitempty,min=0"`
	Rows        *int     `form:"rows" binding:"omitempty,min=0"`
}

// ToFilter converts the request to a SearchFilter. It fails when an id
// that must be numeric does not parse.
func (r *SearchRequest) ToFilter() (query.SearchFilter, error) {
	districtIDs, err := parseInts("districtIds", r.DistrictIDs)
	if err != nil {
		return query.SearchFilter{}, err
	}
	functionIDs, err := parseInts("functionIds", r.FunctionIDs)
	if err != nil {
		return query.SearchFilter{}, err
	}

	return query.SearchFilter{
		WithinIDs:   splitValues(r.WithinIDs),
		DistrictIDs: districtIDs,
		FunctionIDs: functionIDs,
		SalaryFrom:  r.SalaryFrom,
		SalaryTo:    r.SalaryTo,
		Query:       r.Query,
		Sort:        query.SortOrder(r.Sort),
		StartAt:     r.StartAt,
		Rows:        r.Rows,
	}, nil
}

func splitValues(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseInts(name string, raw []string) ([]int, error) {
	values := splitValues(raw)
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]int, 0, len(values))
	for _, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not an integer", name, v)
		}
		out = append(out, n)
	}
	return out, nil
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Count int64             `json:"count"`
	Data  []json.RawMessage `json:"data"`
}

// SearchResponseFrom builds the response for a result page.
func SearchResponseFrom(res query.Result) *SearchResponse {
	data := res.Data
	if data == nil {
		data = []json.RawMessage{}
	}
	return &SearchResponse{Count: res.Count, Data: data}
}

// BulkCreateResponse reports the outcome of seeding the search index.
type BulkCreateResponse struct {
	Success bool  `json:"success"`
	Batches int   `json:"batches"`
	Indexed int64 `json:"indexed"`
}

// SeedJobsResponse reports the outcome of seeding the job table.
type SeedJobsResponse struct {
	Inserted int `json:"inserted"`
}

// InitCategoriesResponse reports the outcome of category initialisation.
type InitCategoriesResponse struct {
	Inserted int `json:"inserted"`
}

// RebuildResponse reports the outcome of an index rebuild.
type RebuildResponse struct {
	Index   string `json:"index"`
	Indexed int64  `json:"indexed"`
}

// ScheduledJobsResponse lists the registered periodic jobs.
type ScheduledJobsResponse struct {
	Jobs []string `json:"jobs"`
}
