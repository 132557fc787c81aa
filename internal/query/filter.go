// Package query compiles job search filters into Elasticsearch bool queries
// and extracts result pages from search responses.
package query

import "strings"

// SortOrder selects the ordering of search hits.
type SortOrder string

const (
	// SortRelevant emits no sort directive. Elasticsearch then orders hits by
	// _score descending; when no scored clause is present every hit scores
	// the same and the order is the backend's internal document order.
	SortRelevant SortOrder = "relevant"
	// SortDateDesc orders by the job start date, newest first.
	SortDateDesc SortOrder = "date_desc"
)

// DefaultRows is the page size used when a filter does not set Rows.
const DefaultRows = 20

// Valid reports whether s is a known sort order. The empty value is valid
// and means SortRelevant.
func (s SortOrder) Valid() bool {
	switch s {
	case "", SortRelevant, SortDateDesc:
		return true
	}
	return false
}

// SearchFilter is the structured search request. Every field is optional;
// an absent field contributes no constraint.
type SearchFilter struct {
	WithinIDs   []string
	DistrictIDs []int
	FunctionIDs []int
	SalaryFrom  *int
	SalaryTo    *int
	Query       string
	Sort        SortOrder
	StartAt     *int
	Rows        *int
}

// Normalize returns a copy of f with id sets deduplicated (first occurrence
// wins), empty ids dropped, the query trimmed and the sort order defaulted.
// The receiver is never modified.
func (f SearchFilter) Normalize() SearchFilter {
	out := SearchFilter{
		WithinIDs:   uniqueStrings(f.WithinIDs),
		DistrictIDs: uniqueInts(f.DistrictIDs),
		FunctionIDs: uniqueInts(f.FunctionIDs),
		SalaryFrom:  copyInt(f.SalaryFrom),
		SalaryTo:    copyInt(f.SalaryTo),
		Query:       strings.TrimSpace(f.Query),
		Sort:        f.Sort,
		StartAt:     copyInt(f.StartAt),
		Rows:        copyInt(f.Rows),
	}
	if out.Sort == "" {
		out.Sort = SortRelevant
	}
	return out
}

// Int returns a pointer to v, for building optional filter fields.
func Int(v int) *int {
	return &v
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func uniqueStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func uniqueInts(in []int) []int {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
