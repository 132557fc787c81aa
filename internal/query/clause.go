package query

import (
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
)

// Clause is a single node of the bool query.
type Clause interface {
	Query() types.Query
}

// TermsClause matches documents whose field equals any of the values.
type TermsClause struct {
	Field  string
	Values []types.FieldValue
}

func (c TermsClause) Query() types.Query {
	values := make([]types.FieldValue, len(c.Values))
	copy(values, c.Values)
	return types.Query{
		Terms: &types.TermsQuery{
			TermsQuery: map[string]types.TermsQueryField{c.Field: values},
		},
	}
}

// Bound is one side-limited field inside a RangeClause. Both limits are
// inclusive.
type Bound struct {
	Field string
	GTE   *int
	LTE   *int
}

// RangeClause is one range object holding one or more field bounds.
type RangeClause struct {
	Bounds []Bound
}

func (c RangeClause) Query() types.Query {
	fields := make(map[string]types.RangeQuery, len(c.Bounds))
	for _, b := range c.Bounds {
		fields[b.Field] = types.NumberRangeQuery{
			Gte: float(b.GTE),
			Lte: float(b.LTE),
		}
	}
	return types.Query{Range: fields}
}

// PhraseGroup matches when the phrase occurs in at least one of the fields.
type PhraseGroup struct {
	Fields []string
	Phrase string
}

func (c PhraseGroup) Query() types.Query {
	should := make([]types.Query, 0, len(c.Fields))
	for _, f := range c.Fields {
		should = append(should, types.Query{
			MatchPhrase: map[string]types.MatchPhraseQuery{f: {Query: c.Phrase}},
		})
	}
	return types.Query{Bool: &types.BoolQuery{Should: should}}
}

// SortDirective orders hits by a single field.
type SortDirective struct {
	Field string
	Order sortorder.SortOrder
}

func (s SortDirective) Options() types.SortOptions {
	order := s.Order
	return types.SortOptions{
		SortOptions: map[string]types.FieldSort{s.Field: {Order: &order}},
	}
}

func float(v *int) *types.Float64 {
	if v == nil {
		return nil
	}
	f := types.Float64(*v)
	return &f
}
