// Package api exposes accounts, analytics and posting over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"social-analytics/models"
	"social-analytics/storage"
	"social-analytics/utils"
)

// AccountStore defines the account operations needed by the handler.
type AccountStore interface {
	AddAccount(ctx context.Context, platform models.Platform, handle string) (models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	Account(ctx context.Context, id int64) (models.Account, error)
	History(ctx context.Context, accountID int64) ([]models.AnalyticsData, error)
}

// AnalyticsCollector gathers analytics for a set of accounts.
type AnalyticsCollector interface {
	Collect(ctx context.Context, accounts []models.Account) map[int64]models.AccountAnalytics
}

// PostScheduler publishes posts now or later.
type PostScheduler interface {
	PostNow(ctx context.Context, platform models.Platform, message string) bool
	Schedule(platform models.Platform, message string, runAt time.Time) string
	Job(id string) (models.ScheduledJob, error)
	Jobs() []models.ScheduledJob
}

// scheduleLayouts are accepted for schedule_time. Layouts without a zone
// are read as UTC.
var scheduleLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04", // <input type="datetime-local">
}

// Handler serves the REST API.
type Handler struct {
	store     AccountStore
	analytics AnalyticsCollector
	scheduler PostScheduler
	logger    *utils.Logger
}

// NewHandler creates a new API handler.
func NewHandler(store AccountStore, analytics AnalyticsCollector, scheduler PostScheduler, logger *utils.Logger) *Handler {
	return &Handler{store: store, analytics: analytics, scheduler: scheduler, logger: logger}
}

type addAccountRequest struct {
	Platform string `json:"platform" binding:"required"`
	Handle   string `json:"handle" binding:"required"`
}

type postUpdateRequest struct {
	Platform     string `json:"platform" binding:"required"`
	Message      string `json:"message" binding:"required"`
	ScheduleTime string `json:"schedule_time"`
}

// AddAccount handles POST /api/accounts.
func (h *Handler) AddAccount(c *gin.Context) {
	var req addAccountRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		badRequest(c, bindErr)
		return
	}

	platform, err := models.ParsePlatform(req.Platform)
	if err != nil {
		badRequest(c, err)
		return
	}

	acc, err := h.store.AddAccount(c.Request.Context(), platform, req.Handle)
	if err != nil {
		h.fail(c, "add account", err)
		return
	}

	h.logger.Info("[api] Added account %s - %s", acc.Platform, acc.Handle)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"id":       acc.ID,
		"platform": acc.Platform,
		"handle":   acc.Handle,
	})
}

// ListAccounts handles GET /api/accounts.
func (h *Handler) ListAccounts(c *gin.Context) {
	accounts, err := h.store.ListAccounts(c.Request.Context())
	if err != nil {
		h.fail(c, "list accounts", err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// Analytics handles GET /api/analytics.
func (h *Handler) Analytics(c *gin.Context) {
	results, ok := h.collect(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, results)
}

// ExportAnalytics handles GET /api/analytics/export.
func (h *Handler) ExportAnalytics(c *gin.Context) {
	results, ok := h.collect(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="analytics.csv"`)
	c.Status(http.StatusOK)
	if err := storage.NewCSVWriter(c.Writer).Write(results); err != nil {
		h.logger.Error("[api] CSV export failed: %v", err)
	}
}

// History handles GET /api/accounts/:id/history.
func (h *Handler) History(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, fmt.Errorf("%w: account id %q", models.ErrMalformedInput, c.Param("id")))
		return
	}

	ctx := c.Request.Context()
	acc, err := h.store.Account(ctx, id)
	if err != nil {
		h.fail(c, "history", err)
		return
	}

	history, err := h.store.History(ctx, id)
	if err != nil {
		h.fail(c, "history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": acc, "history": history})
}

// PostUpdate handles POST /api/post_update. Without schedule_time the post
// is dispatched immediately and success reports the outcome. An unknown
// platform is a failed post, not a bad request.
func (h *Handler) PostUpdate(c *gin.Context) {
	var req postUpdateRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		badRequest(c, bindErr)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		badRequest(c, fmt.Errorf("%w: empty message", models.ErrMalformedInput))
		return
	}

	platform, err := models.ParsePlatform(req.Platform)
	if err != nil {
		h.logger.Warn("[api] Post to unknown platform rejected: %v", err)
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	if req.ScheduleTime == "" {
		ok := h.scheduler.PostNow(c.Request.Context(), platform, req.Message)
		c.JSON(http.StatusOK, gin.H{"success": ok})
		return
	}

	runAt, err := parseScheduleTime(req.ScheduleTime)
	if err != nil {
		badRequest(c, err)
		return
	}

	id := h.scheduler.Schedule(platform, req.Message, runAt)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Post scheduled",
		"job_id":  id,
	})
}

// ListJobs handles GET /api/jobs.
func (h *Handler) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.Jobs())
}

// GetJob handles GET /api/jobs/:id.
func (h *Handler) GetJob(c *gin.Context) {
	job, err := h.scheduler.Job(c.Param("id"))
	if err != nil {
		h.fail(c, "get job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) collect(c *gin.Context) (map[int64]models.AccountAnalytics, bool) {
	ctx := c.Request.Context()
	accounts, err := h.store.ListAccounts(ctx)
	if err != nil {
		h.fail(c, "analytics", err)
		return nil, false
	}
	return h.analytics.Collect(ctx, accounts), true
}

// fail maps domain errors to status codes and hides internal details.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, models.ErrMalformedInput), errors.Is(err, models.ErrUnsupportedPlatform):
		badRequest(c, err)
	default:
		h.logger.Error("[api] %s: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}

func parseScheduleTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: schedule_time %q", models.ErrMalformedInput, raw)
}
