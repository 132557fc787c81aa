package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

// Result is one page of a search: the total number of matches regardless
// of paging, and the page's source documents in backend order.
type Result struct {
	Count int64
	Data  []json.RawMessage
}

// ParseResult extracts a Result from a search response body. A response
// without a hits container yields an empty result, not an error. Hits
// without a _source are skipped.
//
// Count is exact whenever the backend reports a total, which it does for
// requests sent with track_total_hits. Without a total, Count is the
// number of hits on the page, a lower bound of the real total.
func ParseResult(r io.Reader) (Result, error) {
	var resp search.Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		if errors.Is(err, io.EOF) {
			return Result{Data: []json.RawMessage{}}, nil
		}
		return Result{}, fmt.Errorf("failed to decode search response: %w", err)
	}
	return resultFromHits(resp.Hits), nil
}

func resultFromHits(hits types.HitsMetadata) Result {
	res := Result{Data: []json.RawMessage{}}
	for _, h := range hits.Hits {
		if len(h.Source_) == 0 || bytes.Equal(h.Source_, []byte("null")) {
			continue
		}
		res.Data = append(res.Data, h.Source_)
	}

	if hits.Total != nil {
		res.Count = hits.Total.Value
	} else {
		res.Count = int64(len(hits.Hits))
	}
	return res
}
