package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/openjob/internal/audit"
	"github.com/weiawesome/openjob/internal/domain"
	"github.com/weiawesome/openjob/internal/index"
	"github.com/weiawesome/openjob/internal/repository"
	"github.com/weiawesome/openjob/internal/service"
	"github.com/weiawesome/openjob/pkg/jwt"
	"github.com/weiawesome/openjob/pkg/log"
	"github.com/weiawesome/openjob/pkg/middleware"
	"github.com/weiawesome/openjob/pkg/response"
)

// Handler handles HTTP requests for the job search service.
type Handler struct {
	searchService  service.SearchService
	jobService     service.JobService
	scheduledJobs  *service.ScheduledJobs
	tokens         *jwt.Manager
	alias          string
	defaultBatches int
}

// NewHandler creates a new HTTP handler. A nil token manager leaves the
// operational routes open.
func NewHandler(searchService service.SearchService, jobService service.JobService, scheduledJobs *service.ScheduledJobs, tokens *jwt.Manager, alias string, defaultBatches int) *Handler {
	registerValidators()
	if defaultBatches <= 0 {
		defaultBatches = 10
	}
	return &Handler{
		searchService:  searchService,
		jobService:     jobService,
		scheduledJobs:  scheduledJobs,
		tokens:         tokens,
		alias:          alias,
		defaultBatches: defaultBatches,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.GET("/search", h.Search)

	admin := api.Group("", middleware.RequireRole(h.tokens, middleware.RoleAdmin))
	{
		admin.POST("/search/bulk-create", h.BulkCreate)
		admin.PUT("/search/config", h.ApplyConfig)
		admin.DELETE("/search/index", h.DeleteIndex)
		admin.POST("/search/rebuild", h.Rebuild)
		admin.POST("/jobs/seed", h.SeedJobs)
		admin.POST("/jobs/categories/init", h.InitCategories)
		admin.POST("/scheduled-jobs/update", h.UpdateScheduledJobs)
	}
}

// Search handles job search.
func (h *Handler) Search(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		l.Warn().Err(err).Msg("invalid search request")
		response.BadRequest(c, err.Error())
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		l.Warn().Err(err).Msg("invalid search request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.searchService.Search(ctx, filter)
	if err != nil {
		l.Error().Err(err).Str(log.FieldQuery, req.Query).Msg("search failed")
		h.writeError(c, err, "search failed")
		return
	}

	response.Success(c, result)
}

// BulkCreate seeds the index with generated documents.
func (h *Handler) BulkCreate(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	batches := h.defaultBatches
	if raw := c.Query("batches"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(c, "batches must be a non-negative integer")
			return
		}
		batches = n
	}

	result, err := h.jobService.BulkCreate(ctx, batches)
	if err != nil {
		l.Error().Err(err).Msg("bulk create failed")
		h.writeError(c, err, "bulk create failed")
		return
	}

	audit.Record(ctx, audit.Entry{
		Action:  audit.ActionBulkCreate,
		Subject: middleware.GetSubject(c),
		Index:   h.alias,
		Count:   result.Indexed,
	}, "index seeded")
	response.Success(c, result)
}

// ApplyConfig pushes the index settings and mapping.
func (h *Handler) ApplyConfig(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	if err := h.jobService.ApplyConfig(ctx); err != nil {
		l.Error().Err(err).Msg("apply index config failed")
		h.writeError(c, err, "apply index config failed")
		return
	}

	audit.Record(ctx, audit.Entry{Action: audit.ActionApplyConfig, Subject: middleware.GetSubject(c), Index: h.alias}, "index config applied")
	response.Success(c, gin.H{"applied": true})
}

// DeleteIndex deletes every document and index behind the alias.
func (h *Handler) DeleteIndex(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	if err := h.jobService.DeleteIndex(ctx); err != nil {
		l.Error().Err(err).Msg("delete index failed")
		h.writeError(c, err, "delete index failed")
		return
	}

	audit.Record(ctx, audit.Entry{Action: audit.ActionDeleteIndex, Subject: middleware.GetSubject(c), Index: h.alias}, "index deleted")
	response.Success(c, gin.H{"deleted": true})
}

// Rebuild reindexes every stored job behind a new physical index.
func (h *Handler) Rebuild(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	result, err := h.jobService.Rebuild(ctx)
	if err != nil {
		l.Error().Err(err).Msg("rebuild failed")
		h.writeError(c, err, "rebuild failed")
		return
	}

	audit.Record(ctx, audit.Entry{
		Action:  audit.ActionRebuildIndex,
		Subject: middleware.GetSubject(c),
		Index:   result.Index,
		Count:   result.Indexed,
	}, "index rebuilt")
	response.Success(c, result)
}

// SeedJobs inserts a batch of generated jobs.
func (h *Handler) SeedJobs(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	n, err := h.jobService.SeedJobs(ctx)
	if err != nil {
		l.Error().Err(err).Msg("seed jobs failed")
		h.writeError(c, err, "seed jobs failed")
		return
	}

	audit.Record(ctx, audit.Entry{
		Action:  audit.ActionSeedJobs,
		Subject: middleware.GetSubject(c),
		Table:   audit.TableJobs,
		Count:   int64(n),
	}, "jobs seeded")
	response.Created(c, domain.SeedJobsResponse{Inserted: n})
}

// InitCategories inserts the default categories into an empty table.
func (h *Handler) InitCategories(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	n, err := h.jobService.InitCategories(ctx)
	if err != nil {
		l.Error().Err(err).Msg("init categories failed")
		h.writeError(c, err, "init categories failed")
		return
	}

	audit.Record(ctx, audit.Entry{
		Action:  audit.ActionInitCategories,
		Subject: middleware.GetSubject(c),
		Table:   audit.TableCategories,
		Count:   int64(n),
	}, "categories initialised")
	response.Success(c, domain.InitCategoriesResponse{Inserted: n})
}

// UpdateScheduledJobs re-registers the periodic jobs.
func (h *Handler) UpdateScheduledJobs(c *gin.Context) {
	ctx := c.Request.Context()

	if h.scheduledJobs == nil {
		response.NotFound(c, "scheduler disabled")
		return
	}

	names := h.scheduledJobs.Update(ctx)
	audit.Record(ctx, audit.Entry{Action: audit.ActionUpdateSchedule, Subject: middleware.GetSubject(c), Jobs: names}, "scheduled jobs updated")
	response.Success(c, domain.ScheduledJobsResponse{Jobs: names})
}

func (h *Handler) writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrBackendUnavailable):
		response.BackendUnavailable(c, msg)
	case errors.Is(err, repository.ErrQueryRejected):
		response.QueryRejected(c, msg)
	case errors.Is(err, index.ErrAliasNotFound):
		response.NotFound(c, "index not found")
	case errors.Is(err, repository.ErrNoCategories):
		response.Conflict(c, "job categories are not initialised")
	default:
		response.InternalError(c, msg)
	}
}
