package config

import (
	"time"

	"github.com/weiawesome/openjob/internal/index"
	pkgconfig "github.com/weiawesome/openjob/pkg/config"
	"github.com/weiawesome/openjob/pkg/database"
	"github.com/weiawesome/openjob/pkg/pubsub"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Database      database.Config
	Elasticsearch ElasticsearchConfig
	Redis         RedisConfig
	Cache         CacheConfig
	Events        pubsub.Config
	Scheduler     SchedulerConfig
	Seed          SeedConfig
	Admin         AdminConfig
	Log           LogConfig
}

type AppConfig struct {
	Name string `mapstructure:"name"`
}

type ServerConfig struct {
	Host string
	Port int
}

type ElasticsearchConfig struct {
	Addresses  []string         `mapstructure:"addresses"`
	Username   string           `mapstructure:"username"`
	Password   string           `mapstructure:"password"`
	MaxRetries int              `mapstructure:"max_retries"`
	Index      index.Config     `mapstructure:"index"`
	Bulk       index.BulkConfig `mapstructure:"bulk"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Prefix  string        `mapstructure:"prefix"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type SchedulerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	SyncInterval     time.Duration `mapstructure:"sync_interval"`
	CategoryInterval time.Duration `mapstructure:"category_interval"`
}

type SeedConfig struct {
	// Seed 0 draws a random seed.
	Seed      uint64 `mapstructure:"seed"`
	BatchSize int    `mapstructure:"batch_size"`
	Batches   int    `mapstructure:"batches"`
}

type AdminConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

var defaults = map[string]interface{}{
	"app.name":    "openjob",
	"server.host": "0.0.0.0",
	"server.port": 8080,

	"database.driver":          "sqlite",
	"database.host":            "localhost",
	"database.port":            3306,
	"database.user":            "openjob",
	"database.password":        "",
	"database.dbname":          "openjob",
	"database.sslmode":         "disable",
	"database.timezone":        "UTC",
	"database.filepath":        "openjob.db",
	"database.maxidleconns":    5,
	"database.maxopenconns":    20,
	"database.connmaxlifetime": 30,
	"database.loglevel":        "warn",

	"elasticsearch.addresses":            []string{"http://localhost:9200"},
	"elasticsearch.username":             "",
	"elasticsearch.password":             "",
	"elasticsearch.max_retries":          3,
	"elasticsearch.index.alias":          "openjob",
	"elasticsearch.index.version":        1,
	"elasticsearch.index.shards":         1,
	"elasticsearch.index.replicas":       0,
	"elasticsearch.index.ngram_min":      2,
	"elasticsearch.index.ngram_max":      3,
	"elasticsearch.index.ik_plugin":      true,
	"elasticsearch.index.stopwords_path": "analysis/stopwords.txt",
	"elasticsearch.index.synonyms_path":  "analysis/synonym.txt",
	"elasticsearch.bulk.workers":         2,
	"elasticsearch.bulk.flush_bytes":     5 << 20,

	"redis.address":  "localhost:6379",
	"redis.password": "",
	"redis.db":       0,

	"cache.enabled": true,
	"cache.prefix":  "search",
	"cache.ttl":     "30s",

	"events.driver":           "redis",
	"events.redis.address":    "localhost:6379",
	"events.redis.pool_size":  10,
	"events.kafka.brokers":    "localhost:9092",
	"events.kafka.group_id":   "openjob",
	"events.kafka.partitions": 1,

	"scheduler.enabled":           false,
	"scheduler.sync_interval":     "1m",
	"scheduler.category_interval": "1h",

	"seed.seed":       0,
	"seed.batch_size": 1000,
	"seed.batches":    10,

	"admin.jwt_secret": "",
	"admin.issuer":     "openjob",

	"log.level":  "info",
	"log.pretty": false,
}

var envBindings = map[string]string{
	"server.port":               "PORT",
	"database.driver":           "DB_DRIVER",
	"database.host":             "DB_HOST",
	"database.port":             "DB_PORT",
	"database.user":             "DB_USER",
	"database.password":         "DB_PASSWORD",
	"database.dbname":           "DB_NAME",
	"database.filepath":         "DB_FILE",
	"elasticsearch.addresses":   "ES_ADDRESSES",
	"elasticsearch.username":    "ES_USERNAME",
	"elasticsearch.password":    "ES_PASSWORD",
	"elasticsearch.index.alias": "ES_INDEX_ALIAS",
	"redis.address":             "REDIS_ADDRESS",
	"redis.password":            "REDIS_PASSWORD",
	"events.driver":             "EVENTS_DRIVER",
	"events.redis.address":      "REDIS_ADDRESS",
	"events.kafka.brokers":      "KAFKA_BROKERS",
	"admin.jwt_secret":          "ADMIN_JWT_SECRET",
	"log.level":                 "LOG_LEVEL",
}

// Load reads ./config/config.yaml if present, applies defaults and
// environment overrides.
func Load() (*Config, error) {
	return LoadFrom("./config", "config")
}

// LoadFrom is Load with an explicit config directory and file name.
func LoadFrom(configPath, configName string) (*Config, error) {
	v, err := pkgconfig.Load(configPath, configName)
	if err != nil {
		return nil, err
	}

	pkgconfig.SetDefaults(v, defaults)
	if err := pkgconfig.BindEnvs(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
