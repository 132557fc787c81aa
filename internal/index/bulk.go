package index

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/weiawesome/openjob/internal/domain"
	"github.com/weiawesome/openjob/pkg/log"
)

// BulkConfig tunes the bulk indexer.
type BulkConfig struct {
	Workers    int `mapstructure:"workers"`
	FlushBytes int `mapstructure:"flush_bytes"`
}

// BulkStats counts the outcome of a bulk load.
type BulkStats struct {
	Indexed int64
	Failed  int64
}

// BulkLoader writes documents into an index through the bulk API.
type BulkLoader struct {
	client *elasticsearch.Client
	cfg    BulkConfig
}

// NewBulkLoader creates a bulk loader.
func NewBulkLoader(client *elasticsearch.Client, cfg BulkConfig) *BulkLoader {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.FlushBytes <= 0 {
		cfg.FlushBytes = 5 << 20
	}
	return &BulkLoader{client: client, cfg: cfg}
}

// Load indexes docs into index keyed by jobId, then refreshes the index so
// the documents are searchable on return. Any failed document fails the load.
func (b *BulkLoader) Load(ctx context.Context, index string, docs []domain.JobDocument) (BulkStats, error) {
	l := log.Ctx(ctx)
	if len(docs) == 0 {
		return BulkStats{}, nil
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     b.client,
		Index:      index,
		NumWorkers: b.cfg.Workers,
		FlushBytes: b.cfg.FlushBytes,
	})
	if err != nil {
		return BulkStats{}, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	var (
		mu       sync.Mutex
		firstErr error
	)
	onFailure := func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = fmt.Errorf("document %s: %w", item.DocumentID, err)
			return
		}
		firstErr = fmt.Errorf("document %s: %s: %s", item.DocumentID, res.Error.Type, res.Error.Reason)
	}

	for i := range docs {
		data, err := json.Marshal(docs[i])
		if err != nil {
			_ = bi.Close(ctx)
			return BulkStats{}, fmt.Errorf("failed to marshal document %s: %w", docs[i].JobID, err)
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: docs[i].JobID,
			Body:       bytes.NewReader(data),
			OnFailure:  onFailure,
		})
		if err != nil {
			_ = bi.Close(ctx)
			return BulkStats{}, fmt.Errorf("failed to add document %s: %w", docs[i].JobID, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return BulkStats{}, fmt.Errorf("failed to flush bulk indexer: %w", err)
	}

	st := bi.Stats()
	stats := BulkStats{Indexed: int64(st.NumIndexed + st.NumCreated), Failed: int64(st.NumFailed)}
	l.Info().
		Str(log.FieldIndex, index).
		Int64("indexed", stats.Indexed).
		Int64("failed", stats.Failed).
		Msg("bulk load finished")

	if stats.Failed > 0 {
		if firstErr == nil {
			firstErr = errors.New("bulk request failed")
		}
		return stats, fmt.Errorf("%d of %d documents failed to index: %w", stats.Failed, len(docs), firstErr)
	}

	if err := b.refresh(ctx, index); err != nil {
		return stats, err
	}
	return stats, nil
}

func (b *BulkLoader) refresh(ctx context.Context, index string) error {
	res, err := b.client.Indices.Refresh(
		b.client.Indices.Refresh.WithContext(ctx),
		b.client.Indices.Refresh.WithIndex(index),
	)
	if err != nil {
		return fmt.Errorf("failed to refresh index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("refresh index %s: %s", index, res.String())
	}
	return nil
}
