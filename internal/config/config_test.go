package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir(), "missing")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "openjob.db", cfg.Database.FilePath)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Elasticsearch.Addresses)
	assert.Equal(t, "openjob", cfg.Elasticsearch.Index.Alias)
	assert.Equal(t, "openjob_v1", cfg.Elasticsearch.Index.PhysicalName())
	assert.True(t, cfg.Elasticsearch.Index.IKPlugin)
	assert.Equal(t, 2, cfg.Elasticsearch.Bulk.Workers)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "redis", cfg.Events.Driver)
	assert.Equal(t, time.Minute, cfg.Scheduler.SyncInterval)
	assert.Equal(t, 1000, cfg.Seed.BatchSize)
	assert.Equal(t, 10, cfg.Seed.Batches)
	assert.Empty(t, cfg.Admin.JWTSecret)
}

func TestLoadFrom_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9000
elasticsearch:
  index:
    alias: jobs
    version: 4
    ik_plugin: false
cache:
  ttl: 5m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "service.yaml"), []byte(yaml), 0o600))

	t.Setenv("ES_ADDRESSES", "http://es1:9200,http://es2:9200")
	t.Setenv("ADMIN_JWT_SECRET", "s3cret")

	cfg, err := LoadFrom(dir, "service")
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "jobs_v4", cfg.Elasticsearch.Index.PhysicalName())
	assert.False(t, cfg.Elasticsearch.Index.IKPlugin)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.Elasticsearch.Addresses)
	assert.Equal(t, "s3cret", cfg.Admin.JWTSecret)
}
