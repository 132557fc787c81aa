package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/weiawesome/openjob/internal/estest"
	"github.com/weiawesome/openjob/pkg/pubsub"
)

// fakeCluster answers the index APIs the manager uses and keeps alias state.
type fakeCluster struct {
	mu      sync.Mutex
	aliases map[string][]string // alias -> indices
	fail    map[string]int      // "METHOD path" -> status
	bulkErr bool
}

func newFakeCluster() *fakeCluster {
	return &fakeCluster{aliases: map[string][]string{}, fail: map[string]int{}}
}

func (f *fakeCluster) handle(w http.ResponseWriter, r *http.Request, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	if status, ok := f.fail[key]; ok {
		estest.JSON(w, status, `{"error":{"type":"illegal_argument_exception","reason":"boom"},"status":400}`)
		return
	}

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/_alias/"):
		alias := strings.TrimPrefix(path, "/_alias/")
		indices := f.aliases[alias]
		if len(indices) == 0 {
			estest.JSON(w, http.StatusNotFound, fmt.Sprintf(`{"error":"alias [%s] missing","status":404}`, alias))
			return
		}
		parts := make([]string, len(indices))
		for i, name := range indices {
			parts[i] = fmt.Sprintf(`%q:{"aliases":{%q:{}}}`, name, alias)
		}
		estest.JSON(w, http.StatusOK, "{"+strings.Join(parts, ",")+"}")

	case r.Method == http.MethodPost && path == "/_aliases":
		var req struct {
			Actions []map[string]struct {
				Index string `json:"index"`
				Alias string `json:"alias"`
			} `json:"actions"`
		}
		_ = json.Unmarshal(body, &req)
		for _, action := range req.Actions {
			for op, a := range action {
				switch op {
				case "add":
					f.aliases[a.Alias] = append(f.aliases[a.Alias], a.Index)
				case "remove":
					f.aliases[a.Alias] = without(f.aliases[a.Alias], a.Index)
				}
			}
		}
		estest.Acknowledged(w)

	case strings.HasSuffix(path, "/_bulk"):
		lines := bytes.Split(bytes.TrimSpace(body), []byte("\n"))
		items := make([]string, 0, len(lines)/2)
		for i := 0; i+1 < len(lines); i += 2 {
			if f.bulkErr {
				items = append(items, `{"index":{"status":400,"error":{"type":"mapper_parsing_exception","reason":"bad doc"}}}`)
				continue
			}
			items = append(items, `{"index":{"status":201,"result":"created"}}`)
		}
		estest.JSON(w, http.StatusOK, fmt.Sprintf(`{"took":1,"errors":%t,"items":[%s]}`, f.bulkErr, strings.Join(items, ",")))

	case r.Method == http.MethodPut && strings.Count(path, "/") == 1:
		name := strings.TrimPrefix(path, "/")
		var req struct {
			Aliases map[string]interface{} `json:"aliases"`
		}
		_ = json.Unmarshal(body, &req)
		for alias := range req.Aliases {
			f.aliases[alias] = append(f.aliases[alias], name)
		}
		estest.JSON(w, http.StatusOK, fmt.Sprintf(`{"acknowledged":true,"index":%q}`, name))

	case r.Method == http.MethodDelete:
		for _, name := range strings.Split(strings.TrimPrefix(path, "/"), ",") {
			for alias, indices := range f.aliases {
				f.aliases[alias] = without(indices, name)
			}
		}
		estest.Acknowledged(w)

	case strings.HasSuffix(path, "/_delete_by_query"):
		estest.JSON(w, http.StatusOK, `{"deleted":3,"failures":[]}`)

	case strings.HasSuffix(path, "/_refresh"):
		estest.JSON(w, http.StatusOK, `{"_shards":{"total":1,"successful":1,"failed":0}}`)

	default:
		estest.Acknowledged(w)
	}
}

func without(in []string, name string) []string {
	out := in[:0:0]
	for _, v := range in {
		if v != name {
			out = append(out, v)
		}
	}
	return out
}

func newFakeClient(t *testing.T) (*fakeCluster, *estest.Server, *elasticsearch.Client) {
	t.Helper()
	f := newFakeCluster()
	srv, client := estest.NewServer(t, f.handle)
	return f, srv, client
}

// recordingPublisher keeps published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*pubsub.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event *pubsub.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
