package main

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"

	"github.com/weiawesome/openjob/internal/cache"
	"github.com/weiawesome/openjob/internal/config"
	"github.com/weiawesome/openjob/internal/domain"
	"github.com/weiawesome/openjob/internal/events"
	"github.com/weiawesome/openjob/internal/handler"
	"github.com/weiawesome/openjob/internal/index"
	"github.com/weiawesome/openjob/internal/query"
	"github.com/weiawesome/openjob/internal/repository"
	"github.com/weiawesome/openjob/internal/scheduler"
	"github.com/weiawesome/openjob/internal/seed"
	"github.com/weiawesome/openjob/internal/service"
	"github.com/weiawesome/openjob/pkg/database"
	"github.com/weiawesome/openjob/pkg/jwt"
	pkglog "github.com/weiawesome/openjob/pkg/log"
	"github.com/weiawesome/openjob/pkg/pubsub"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: cfg.App.Name,
	})
	logger := pkglog.L()

	ctx, cancel := context.WithCancel(pkglog.WithLogger(context.Background(), logger))
	defer cancel()

	// Initialize Elasticsearch client
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:  cfg.Elasticsearch.Addresses,
		Username:   cfg.Elasticsearch.Username,
		Password:   cfg.Elasticsearch.Password,
		MaxRetries: cfg.Elasticsearch.MaxRetries,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create elasticsearch client")
	}

	// Verify ES connection
	res, err := esClient.Info()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to elasticsearch")
	}
	res.Body.Close()
	logger.Info().Strs("addresses", cfg.Elasticsearch.Addresses).Msg("elasticsearch connected")

	// Initialize relational store
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database connected")

	// Initialize event bus
	bus, err := pubsub.NewPubSub(cfg.Events)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create event bus")
	}
	defer bus.Close()

	// Initialize index management
	loader := index.NewBulkLoader(esClient, cfg.Elasticsearch.Bulk)
	indexManager := index.NewManager(esClient, cfg.Elasticsearch.Index, loader, bus, cfg.App.Name)

	// Initialize Redis cache
	var searchCache cache.SearchCache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisSearchCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Cache.Prefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisCache.Close()
		searchCache = redisCache
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")

		invalidator := events.NewCacheInvalidator(bus, redisCache, indexManager.Channel(), indexManager.Alias())
		if err := invalidator.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to subscribe to index events")
		}
	}

	// Initialize services
	jobRepo := repository.NewGormJobRepository(db)
	searchRepo := repository.NewESSearchRepository(esClient)
	searchService := service.NewSearchService(query.NewCompiler(query.DefaultFields()), searchRepo, searchCache, cfg.Cache.TTL, indexManager.Alias())
	jobService := service.NewJobService(jobRepo, indexManager, seed.NewGenerator(cfg.Seed.Seed), service.JobConfig{
		BatchSize:  cfg.Seed.BatchSize,
		Categories: seed.DefaultCategories(),
	})

	if _, err := jobService.InitCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to initialise job categories")
	}

	// Initialize periodic jobs
	var scheduledJobs *service.ScheduledJobs
	if cfg.Scheduler.Enabled {
		sched := scheduler.New()
		scheduledJobs = service.NewScheduledJobs(sched, jobService, cfg.Scheduler.SyncInterval, cfg.Scheduler.CategoryInterval)
		scheduledJobs.Update(ctx)
		sched.Start(ctx)
		defer sched.Stop()
	}

	// Initialize admin token verification
	var tokens *jwt.Manager
	if cfg.Admin.JWTSecret != "" {
		tokens, err = jwt.NewManager(cfg.Admin.JWTSecret, cfg.Admin.Issuer)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create token manager")
		}
	} else {
		logger.Warn().Msg("admin routes are not protected: admin.jwt_secret is empty")
	}

	// Initialize HTTP handler
	httpHandler := handler.NewHandler(searchService, jobService, scheduledJobs, tokens, indexManager.Alias(), cfg.Seed.Batches)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger, "/health"))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Register routes
	httpHandler.RegisterRoutes(r)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("openjob starting")
	if err := r.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
