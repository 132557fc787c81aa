package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/weiawesome/openjob/internal/query"
	"github.com/weiawesome/openjob/pkg/log"
)

type esSearchRepository struct {
	client *elasticsearch.Client
}

// NewESSearchRepository creates a new Elasticsearch-based search repository.
func NewESSearchRepository(client *elasticsearch.Client) SearchRepository {
	return &esSearchRepository{client: client}
}

// Search runs q against index. Transport failures wrap ErrBackendUnavailable;
// error responses wrap ErrQueryRejected. Neither is retried here.
func (r *esSearchRepository) Search(ctx context.Context, index string, q query.CompiledQuery) (query.Result, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return query.Result{}, fmt.Errorf("failed to marshal query: %w", err)
	}

	l := log.Ctx(ctx)
	l.Debug().Str(log.FieldIndex, index).RawJSON(log.FieldQuery, data).Msg("search request")

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(index),
		r.client.Search.WithBody(bytes.NewReader(data)),
		r.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return query.Result{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return query.Result{}, fmt.Errorf("%w: %s", ErrQueryRejected, res.String())
	}

	result, err := query.ParseResult(res.Body)
	if err != nil {
		return query.Result{}, fmt.Errorf("%w: %v", ErrQueryRejected, err)
	}
	return result, nil
}
