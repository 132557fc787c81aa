package query

import (
	"encoding/json"

	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
)

// Fields names the index fields the compiler targets.
type Fields struct {
	ID          string
	DistrictID  string
	FunctionIDs string
	SalaryFrom  string
	SalaryTo    string
	StartDate   string
	Phrase      []string
}

// DefaultFields returns the field names of the job document mapping.
func DefaultFields() Fields {
	return Fields{
		ID:          "jobId",
		DistrictID:  "districtId",
		FunctionIDs: "functionIds",
		SalaryFrom:  "salaryFrom",
		SalaryTo:    "salaryTo",
		StartDate:   "startDate",
		Phrase:      []string{"companyName1", "companyName2"},
	}
}

// CompiledQuery is a bool query with paging and sorting. Filter clauses
// restrict membership without scoring; Must clauses restrict and score.
type CompiledQuery struct {
	Filter []Clause
	Must   []Clause
	Sort   []SortDirective
	Offset int
	Limit  int
}

// PhraseGroup returns the phrase-match group from the must list, if any.
func (q CompiledQuery) PhraseGroup() (PhraseGroup, bool) {
	for _, c := range q.Must {
		if g, ok := c.(PhraseGroup); ok {
			return g, true
		}
	}
	return PhraseGroup{}, false
}

// Body renders the search request. Empty filter or must lists are
// omitted; with neither present the query is an empty bool, which matches
// everything.
func (q CompiledQuery) Body() *search.Request {
	from, size := q.Offset, q.Limit
	req := &search.Request{
		Query: &types.Query{Bool: &types.BoolQuery{
			Filter: queries(q.Filter),
			Must:   queries(q.Must),
		}},
		From: &from,
		Size: &size,
	}
	for _, s := range q.Sort {
		req.Sort = append(req.Sort, s.Options())
	}
	return req
}

// MarshalJSON encodes the request body.
func (q CompiledQuery) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Body())
}

func queries(clauses []Clause) []types.Query {
	if len(clauses) == 0 {
		return nil
	}
	out := make([]types.Query, 0, len(clauses))
	for _, c := range clauses {
		out = append(out, c.Query())
	}
	return out
}

// Compiler turns SearchFilters into CompiledQuerys. It holds no mutable
// state and is safe for concurrent use.
type Compiler struct {
	fields Fields
}

// NewCompiler creates a compiler targeting the given fields.
func NewCompiler(fields Fields) *Compiler {
	phrase := make([]string, len(fields.Phrase))
	copy(phrase, fields.Phrase)
	fields.Phrase = phrase
	return &Compiler{fields: fields}
}

var defaultCompiler = NewCompiler(DefaultFields())

// Compile compiles f with the default job fields.
func Compile(f SearchFilter) CompiledQuery {
	return defaultCompiler.Compile(f)
}

// Compile builds the query for f. Clauses are appended to their lists, so
// no constraint can replace another one.
func (c *Compiler) Compile(f SearchFilter) CompiledQuery {
	f = f.Normalize()

	var b builder

	if len(f.WithinIDs) > 0 {
		b.filter(TermsClause{Field: c.fields.ID, Values: stringValues(f.WithinIDs)})
	}
	if len(f.DistrictIDs) > 0 {
		b.filter(TermsClause{Field: c.fields.DistrictID, Values: intValues(f.DistrictIDs)})
	}
	if len(f.FunctionIDs) > 0 {
		b.filter(TermsClause{Field: c.fields.FunctionIDs, Values: intValues(f.FunctionIDs)})
	}

	// Both salary bounds share one range object.
	if f.SalaryFrom != nil || f.SalaryTo != nil {
		var r RangeClause
		if f.SalaryFrom != nil {
			r.Bounds = append(r.Bounds, Bound{Field: c.fields.SalaryFrom, GTE: f.SalaryFrom})
		}
		if f.SalaryTo != nil {
			r.Bounds = append(r.Bounds, Bound{Field: c.fields.SalaryTo, LTE: f.SalaryTo})
		}
		b.must(r)
	}

	if f.Query != "" && len(c.fields.Phrase) > 0 {
		phrase := make([]string, len(c.fields.Phrase))
		copy(phrase, c.fields.Phrase)
		b.must(PhraseGroup{Fields: phrase, Phrase: f.Query})
	}

	if f.Sort == SortDateDesc {
		b.q.Sort = []SortDirective{{Field: c.fields.StartDate, Order: sortorder.Desc}}
	}

	b.q.Limit = DefaultRows
	if f.Rows != nil {
		b.q.Limit = *f.Rows
	}
	if f.StartAt != nil {
		b.q.Offset = *f.StartAt
	}

	return b.q
}

// builder accumulates clauses into a fresh query.
type builder struct {
	q CompiledQuery
}

func (b *builder) filter(c Clause) {
	b.q.Filter = append(b.q.Filter, c)
}

func (b *builder) must(c Clause) {
	b.q.Must = append(b.q.Must, c)
}

func stringValues(in []string) []types.FieldValue {
	out := make([]types.FieldValue, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func intValues(in []int) []types.FieldValue {
	out := make([]types.FieldValue, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
