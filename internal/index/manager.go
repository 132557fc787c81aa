package index

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/deletebyquery"
	"github.com/elastic/go-elasticsearch/v8/typedapi/indices/updatealiases"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"

	"github.com/weiawesome/openjob/internal/domain"
	"github.com/weiawesome/openjob/pkg/log"
	"github.com/weiawesome/openjob/pkg/pubsub"
)

// ErrAliasNotFound is returned when the alias points at no index.
var ErrAliasNotFound = errors.New("index alias not found")

// RebuildResult describes a finished rebuild.
type RebuildResult struct {
	Index    string
	Previous []string
	Indexed  int64
}

// Manager owns the physical indices behind the job alias.
type Manager struct {
	client    *elasticsearch.Client
	cfg       Config
	loader    *BulkLoader
	publisher pubsub.Publisher
	channel   string
	now       func() time.Time
}

// NewManager creates an index manager. Lifecycle events are published to
// the alias' event channel for app.
func NewManager(client *elasticsearch.Client, cfg Config, loader *BulkLoader, publisher pubsub.Publisher, app string) *Manager {
	if publisher == nil {
		publisher = pubsub.Nop{}
	}
	return &Manager{
		client:    client,
		cfg:       cfg,
		loader:    loader,
		publisher: publisher,
		channel:   pubsub.IndexEventsChannel(app, cfg.Alias),
		now:       time.Now,
	}
}

// Alias returns the logical index name searches run against.
func (m *Manager) Alias() string {
	return m.cfg.Alias
}

// Channel returns the lifecycle event channel.
func (m *Manager) Channel() string {
	return m.channel
}

// Resolve returns the physical indices behind the alias, sorted by name.
func (m *Manager) Resolve(ctx context.Context) ([]string, error) {
	res, err := m.client.Indices.GetAlias(
		m.client.Indices.GetAlias.WithContext(ctx),
		m.client.Indices.GetAlias.WithName(m.cfg.Alias),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get alias: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrAliasNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("get alias %s: %s", m.cfg.Alias, res.String())
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode alias response: %w", err)
	}
	if len(body) == 0 {
		return nil, ErrAliasNotFound
	}

	indices := make([]string, 0, len(body))
	for name := range body {
		indices = append(indices, name)
	}
	sort.Strings(indices)
	return indices, nil
}

// EnsureIndex makes sure the alias resolves, creating the versioned
// physical index with the alias attached when it does not. It returns the
// physical indices behind the alias.
func (m *Manager) EnsureIndex(ctx context.Context) ([]string, error) {
	indices, err := m.Resolve(ctx)
	if err == nil {
		return indices, nil
	}
	if !errors.Is(err, ErrAliasNotFound) {
		return nil, err
	}

	name := m.cfg.PhysicalName()
	if err := m.create(ctx, name, m.cfg.Alias); err != nil {
		return nil, err
	}

	l := log.Ctx(ctx)
	l.Info().Str(log.FieldIndex, name).Str("alias", m.cfg.Alias).Msg("index created")
	m.publish(ctx, pubsub.EventIndexCreated, map[string]string{"index": name})
	return []string{name}, nil
}

// ApplyConfig pushes the configured analysis settings and mapping to every
// index behind the alias. Analysis settings can only change on a closed
// index, so each index is closed, updated and reopened. Reopening is
// attempted even when the update failed.
func (m *Manager) ApplyConfig(ctx context.Context) error {
	indices, err := m.Resolve(ctx)
	if err != nil {
		return err
	}

	l := log.Ctx(ctx)
	var errs []error
	for _, name := range indices {
		if err := m.applyTo(ctx, name); err != nil {
			l.Error().Err(err).Str(log.FieldIndex, name).Msg("failed to apply index config")
			errs = append(errs, err)
			continue
		}
		l.Info().Str(log.FieldIndex, name).Int("version", m.cfg.Version).Msg("index config applied")
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	m.publish(ctx, pubsub.EventIndexConfigured, map[string]interface{}{"indices": indices, "version": m.cfg.Version})
	return nil
}

func (m *Manager) applyTo(ctx context.Context, name string) (err error) {
	if err := m.do(m.client.Indices.Close([]string{name}, m.client.Indices.Close.WithContext(ctx))); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	defer func() {
		// Reopen even when ctx is already done.
		openCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if openErr := m.do(m.client.Indices.Open([]string{name}, m.client.Indices.Open.WithContext(openCtx))); openErr != nil {
			err = errors.Join(err, fmt.Errorf("open %s: %w", name, openErr))
		}
	}()

	settings, err := jsonBody(types.IndexSettings{Analysis: m.cfg.Analysis()})
	if err != nil {
		return err
	}
	if err := m.do(m.client.Indices.PutSettings(settings,
		m.client.Indices.PutSettings.WithContext(ctx),
		m.client.Indices.PutSettings.WithIndex(name),
	)); err != nil {
		return fmt.Errorf("put settings %s: %w", name, err)
	}

	mapping, err := jsonBody(m.cfg.Mappings())
	if err != nil {
		return err
	}
	if err := m.do(m.client.Indices.PutMapping([]string{name}, mapping,
		m.client.Indices.PutMapping.WithContext(ctx),
	)); err != nil {
		return fmt.Errorf("put mapping %s: %w", name, err)
	}
	return nil
}

// Rebuild loads docs into a new physical index and then moves the alias to
// it in one atomic aliases update. The previous indices are deleted
// afterwards. On a failed load the new index is dropped and the alias is
// left untouched.
func (m *Manager) Rebuild(ctx context.Context, docs []domain.JobDocument) (RebuildResult, error) {
	l := log.Ctx(ctx)

	previous, err := m.Resolve(ctx)
	if err != nil && !errors.Is(err, ErrAliasNotFound) {
		return RebuildResult{}, err
	}

	name := m.cfg.RebuildName(m.now())
	if err := m.create(ctx, name, ""); err != nil {
		return RebuildResult{}, err
	}

	stats, err := m.loader.Load(ctx, name, docs)
	if err != nil {
		if dropErr := m.deleteIndices(ctx, []string{name}); dropErr != nil {
			l.Warn().Err(dropErr).Str(log.FieldIndex, name).Msg("failed to drop partial index")
		}
		return RebuildResult{}, fmt.Errorf("failed to load rebuilt index: %w", err)
	}
	m.publish(ctx, pubsub.EventDocumentsLoaded, pubsub.DocumentsLoadedPayload{Target: name, Indexed: int(stats.Indexed)})

	if err := m.swap(ctx, previous, name); err != nil {
		return RebuildResult{}, err
	}
	l.Info().Str(log.FieldIndex, name).Strs("previous", previous).Msg("alias swapped")
	m.publish(ctx, pubsub.EventIndexSwapped, pubsub.SwappedPayload{From: previous, To: name})

	if len(previous) > 0 {
		if err := m.deleteIndices(ctx, previous); err != nil {
			// The alias already points at the new index.
			l.Warn().Err(err).Strs("previous", previous).Msg("failed to delete previous indices")
		}
	}

	return RebuildResult{Index: name, Previous: previous, Indexed: stats.Indexed}, nil
}

// Load bulk-loads docs through the alias.
func (m *Manager) Load(ctx context.Context, docs []domain.JobDocument) (BulkStats, error) {
	stats, err := m.loader.Load(ctx, m.cfg.Alias, docs)
	if err != nil {
		return stats, err
	}
	if stats.Indexed > 0 {
		m.publish(ctx, pubsub.EventDocumentsLoaded, pubsub.DocumentsLoadedPayload{Target: m.cfg.Alias, Indexed: int(stats.Indexed)})
	}
	return stats, nil
}

// Delete removes every document and then every physical index behind the
// alias.
func (m *Manager) Delete(ctx context.Context) error {
	indices, err := m.Resolve(ctx)
	if err != nil {
		return err
	}

	body, err := jsonBody(deletebyquery.Request{
		Query: &types.Query{MatchAll: &types.MatchAllQuery{}},
	})
	if err != nil {
		return err
	}
	if err := m.do(m.client.DeleteByQuery([]string{m.cfg.Alias}, body,
		m.client.DeleteByQuery.WithContext(ctx),
		m.client.DeleteByQuery.WithRefresh(true),
		m.client.DeleteByQuery.WithConflicts("proceed"),
	)); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}

	if err := m.deleteIndices(ctx, indices); err != nil {
		return err
	}

	l := log.Ctx(ctx)
	l.Info().Strs("indices", indices).Msg("index deleted")
	m.publish(ctx, pubsub.EventIndexDeleted, map[string]interface{}{"indices": indices})
	return nil
}

func (m *Manager) create(ctx context.Context, name, alias string) error {
	body, err := jsonBody(m.cfg.CreateBody(alias))
	if err != nil {
		return err
	}
	if err := m.do(m.client.Indices.Create(name,
		m.client.Indices.Create.WithContext(ctx),
		m.client.Indices.Create.WithBody(body),
	)); err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

func (m *Manager) swap(ctx context.Context, previous []string, next string) error {
	alias := m.cfg.Alias
	actions := make([]types.IndicesAction, 0, len(previous)+1)
	for _, name := range previous {
		actions = append(actions, types.IndicesAction{
			Remove: &types.RemoveAction{Index: strPtr(name), Alias: &alias},
		})
	}
	actions = append(actions, types.IndicesAction{
		Add: &types.AddAction{Index: &next, Alias: &alias},
	})

	body, err := jsonBody(updatealiases.Request{Actions: actions})
	if err != nil {
		return err
	}
	if err := m.do(m.client.Indices.UpdateAliases(body, m.client.Indices.UpdateAliases.WithContext(ctx))); err != nil {
		return fmt.Errorf("swap alias %s to %s: %w", m.cfg.Alias, next, err)
	}
	return nil
}

func (m *Manager) deleteIndices(ctx context.Context, names []string) error {
	if err := m.do(m.client.Indices.Delete(names, m.client.Indices.Delete.WithContext(ctx))); err != nil {
		return fmt.Errorf("delete indices %s: %w", strings.Join(names, ","), err)
	}
	return nil
}

// do closes the response and turns error statuses into errors.
func (m *Manager) do(res *esapi.Response, err error) error {
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("[%s] %s", res.Status(), bytes.TrimSpace(msg))
	}
	return nil
}

func (m *Manager) publish(ctx context.Context, eventType string, payload interface{}) {
	l := log.Ctx(ctx)
	event, err := pubsub.NewEvent(eventType, m.cfg.Alias, payload)
	if err != nil {
		l.Warn().Err(err).Str("event", eventType).Msg("failed to build index event")
		return
	}
	if err := m.publisher.Publish(ctx, m.channel, event); err != nil {
		l.Warn().Err(err).Str("event", eventType).Msg("failed to publish index event")
	}
}

func jsonBody(v interface{}) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return bytes.NewReader(data), nil
}
