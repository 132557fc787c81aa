package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCount int64
		wantData  []string
	}{
		{
			name:      "object total",
			body:      `{"took":3,"hits":{"total":{"value":42,"relation":"eq"},"hits":[{"_id":"1","_source":{"jobId":"1"}},{"_id":"2","_source":{"jobId":"2"}}]}}`,
			wantCount: 42,
			wantData:  []string{`{"jobId":"1"}`, `{"jobId":"2"}`},
		},
		{
			name:      "numeric total",
			body:      `{"hits":{"total":7,"hits":[{"_source":{"jobId":"9"}}]}}`,
			wantCount: 7,
			wantData:  []string{`{"jobId":"9"}`},
		},
		{
			name:      "zero hits",
			body:      `{"hits":{"total":{"value":0,"relation":"eq"},"hits":[]}}`,
			wantCount: 0,
			wantData:  []string{},
		},
		{
			name:      "no hits container",
			body:      `{"took":1,"timed_out":false}`,
			wantCount: 0,
			wantData:  []string{},
		},
		{
			name:      "missing total reports the page as a lower bound",
			body:      `{"hits":{"hits":[{"_source":{"a":1}},{"_source":{"a":2}}]}}`,
			wantCount: 2,
			wantData:  []string{`{"a":1}`, `{"a":2}`},
		},
		{
			name:      "hits without source skipped",
			body:      `{"hits":{"total":{"value":3},"hits":[{"_id":"1"},{"_source":null},{"_source":{"a":3}}]}}`,
			wantCount: 3,
			wantData:  []string{`{"a":3}`},
		},
		{
			name:      "total beyond the page",
			body:      `{"hits":{"total":{"value":120,"relation":"gte"},"hits":[{"_source":{"a":1}}]}}`,
			wantCount: 120,
			wantData:  []string{`{"a":1}`},
		},
		{
			name:      "sorted hits carry null scores",
			body:      `{"took":2,"timed_out":false,"_shards":{"total":1,"successful":1,"skipped":0,"failed":0},"hits":{"total":{"value":2,"relation":"eq"},"max_score":null,"hits":[{"_index":"openjob_v1","_id":"2","_score":null,"_source":{"jobId":"2"},"sort":[1690000000000]},{"_index":"openjob_v1","_id":"1","_score":null,"_source":{"jobId":"1"},"sort":[1680000000000]}]}}`,
			wantCount: 2,
			wantData:  []string{`{"jobId":"2"}`, `{"jobId":"1"}`},
		},
		{
			name:      "empty body",
			body:      ``,
			wantCount: 0,
			wantData:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseResult(strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, res.Count)
			require.NotNil(t, res.Data)
			require.Len(t, res.Data, len(tt.wantData))
			for i, want := range tt.wantData {
				assert.JSONEq(t, want, string(res.Data[i]))
			}
		})
	}
}

func TestParseResult_Malformed(t *testing.T) {
	_, err := ParseResult(strings.NewReader(`{"hits":`))
	assert.Error(t, err)
}
