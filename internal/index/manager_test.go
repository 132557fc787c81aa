package index

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/openjob/internal/domain"
	"github.com/weiawesome/openjob/pkg/pubsub"
)

func newTestManager(t *testing.T) (*Manager, *fakeCluster, *recordingPublisher, func() []string) {
	t.Helper()
	f, srv, client := newFakeClient(t)
	pub := &recordingPublisher{}
	m := NewManager(client, DefaultConfig(), NewBulkLoader(client, BulkConfig{Workers: 1}), pub, "openjob")
	m.now = func() time.Time { return time.Unix(1700000000, 0) }

	calls := func() []string {
		var out []string
		for _, r := range srv.Requests() {
			out = append(out, r.Method+" "+r.Path)
		}
		return out
	}
	return m, f, pub, calls
}

func testDocs(n int) []domain.JobDocument {
	docs := make([]domain.JobDocument, n)
	for i := range docs {
		docs[i] = domain.JobDocument{JobID: string(rune('a' + i)), Name: "job"}
	}
	return docs
}

func TestManager_EnsureIndexCreatesOnce(t *testing.T) {
	m, _, pub, calls := newTestManager(t)
	ctx := context.Background()

	indices, err := m.EnsureIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"openjob_v1"}, indices)

	indices, err = m.EnsureIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"openjob_v1"}, indices)

	assert.Equal(t, []string{
		"GET /_alias/openjob",
		"PUT /openjob_v1",
		"GET /_alias/openjob",
	}, calls())
	assert.Equal(t, []string{pubsub.EventIndexCreated}, pub.types())
	assert.Equal(t, "openjob:index:openjob:events", m.Channel())
}

func TestManager_ResolveMissing(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	_, err := m.Resolve(context.Background())
	assert.True(t, errors.Is(err, ErrAliasNotFound))
}

func TestManager_ApplyConfig(t *testing.T) {
	m, f, pub, calls := newTestManager(t)
	f.aliases["openjob"] = []string{"openjob_v1"}

	require.NoError(t, m.ApplyConfig(context.Background()))

	assert.Equal(t, []string{
		"GET /_alias/openjob",
		"POST /openjob_v1/_close",
		"PUT /openjob_v1/_settings",
		"PUT /openjob_v1/_mapping",
		"POST /openjob_v1/_open",
	}, calls())
	assert.Equal(t, []string{pubsub.EventIndexConfigured}, pub.types())
}

func TestManager_ApplyConfigReopensOnFailure(t *testing.T) {
	m, f, pub, calls := newTestManager(t)
	f.aliases["openjob"] = []string{"openjob_v1"}
	f.fail["PUT /openjob_v1/_settings"] = http.StatusBadRequest

	err := m.ApplyConfig(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put settings openjob_v1")

	assert.Equal(t, []string{
		"GET /_alias/openjob",
		"POST /openjob_v1/_close",
		"PUT /openjob_v1/_settings",
		"POST /openjob_v1/_open",
	}, calls())
	assert.Empty(t, pub.types())
}

func TestManager_ApplyConfigWithoutAlias(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	assert.ErrorIs(t, m.ApplyConfig(context.Background()), ErrAliasNotFound)
}

func TestManager_Rebuild(t *testing.T) {
	m, f, pub, calls := newTestManager(t)
	f.aliases["openjob"] = []string{"openjob_v1"}

	res, err := m.Rebuild(context.Background(), testDocs(3))
	require.NoError(t, err)

	assert.Equal(t, "openjob_v1_1700000000000", res.Index)
	assert.Equal(t, []string{"openjob_v1"}, res.Previous)
	assert.Equal(t, int64(3), res.Indexed)
	assert.Equal(t, []string{"openjob_v1_1700000000000"}, f.aliases["openjob"])

	assert.Equal(t, []string{
		"GET /_alias/openjob",
		"PUT /openjob_v1_1700000000000",
		"POST /openjob_v1_1700000000000/_bulk",
		"POST /openjob_v1_1700000000000/_refresh",
		"POST /_aliases",
		"DELETE /openjob_v1",
	}, calls())
	assert.Equal(t, []string{pubsub.EventDocumentsLoaded, pubsub.EventIndexSwapped}, pub.types())
}

func TestManager_RebuildWithoutAlias(t *testing.T) {
	m, f, _, calls := newTestManager(t)

	res, err := m.Rebuild(context.Background(), testDocs(1))
	require.NoError(t, err)
	assert.Empty(t, res.Previous)
	assert.Equal(t, []string{"openjob_v1_1700000000000"}, f.aliases["openjob"])
	assert.NotContains(t, calls(), "DELETE /openjob_v1")
}

func TestManager_RebuildLoadFailureKeepsAlias(t *testing.T) {
	m, f, pub, calls := newTestManager(t)
	f.aliases["openjob"] = []string{"openjob_v1"}
	f.bulkErr = true

	_, err := m.Rebuild(context.Background(), testDocs(2))
	require.Error(t, err)

	assert.Equal(t, []string{"openjob_v1"}, f.aliases["openjob"])
	assert.Contains(t, calls(), "DELETE /openjob_v1_1700000000000")
	assert.NotContains(t, calls(), "POST /_aliases")
	assert.Empty(t, pub.types())
}

func TestManager_Delete(t *testing.T) {
	m, f, pub, calls := newTestManager(t)
	f.aliases["openjob"] = []string{"openjob_v1", "openjob_v1_1"}

	require.NoError(t, m.Delete(context.Background()))

	assert.Equal(t, []string{
		"GET /_alias/openjob",
		"POST /openjob/_delete_by_query",
		"DELETE /openjob_v1,openjob_v1_1",
	}, calls())
	assert.Empty(t, f.aliases["openjob"])
	assert.Equal(t, []string{pubsub.EventIndexDeleted}, pub.types())
}

func TestManager_DeleteWithoutAlias(t *testing.T) {
	m, _, _, calls := newTestManager(t)
	assert.ErrorIs(t, m.Delete(context.Background()), ErrAliasNotFound)
	assert.Equal(t, []string{"GET /_alias/openjob"}, calls())
}

func TestManager_Load(t *testing.T) {
	m, f, pub, calls := newTestManager(t)
	f.aliases["openjob"] = []string{"openjob_v1"}

	stats, err := m.Load(context.Background(), testDocs(4))
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Indexed)
	assert.Equal(t, []string{"POST /openjob/_bulk", "POST /openjob/_refresh"}, calls())
	assert.Equal(t, []string{pubsub.EventDocumentsLoaded}, pub.types())
}
