package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paceline/paceline/internal/domain/plan"
	"github.com/paceline/paceline/internal/domain/stats"
	"github.com/paceline/paceline/internal/domain/suggest"
	"github.com/paceline/paceline/internal/infra/runrepo"
	apperrors "github.com/paceline/paceline/pkg/errors"
)

// SuggestionService generates run proposals.
type SuggestionService interface {
	Generate(ctx context.Context, location string, days int) ([]suggest.Suggestion, error)
}

// PlanService resolves the active training week.
type PlanService interface {
	CurrentWeek(ctx context.Context) (plan.WeekTarget, bool, error)
}

// StatsService exposes the progress projections.
type StatsService interface {
	WeeklyMileage(ctx context.Context) ([]stats.WeeklyMileagePoint, error)
	PaceProgression(ctx context.Context) ([]stats.PacePoint, error)
	LongRunProgression(ctx context.Context) ([]stats.LongRunPoint, error)
	CompletionRate(ctx context.Context) (stats.CompletionRate, error)
	Summary(ctx context.Context) (stats.Summary, error)
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	suggestions SuggestionService
	planSvc     PlanService
	statsSvc    StatsService
	runs        plan.RunRepository
	logger      *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(suggestions SuggestionService, planSvc PlanService, statsSvc StatsService, runs plan.RunRepository, logger *slog.Logger) *Handler {
	return &Handler{
		suggestions: suggestions,
		planSvc:     planSvc,
		statsSvc:    statsSvc,
		runs:        runs,
		logger:      logger.With("component", "http.handler"),
	}
}

// GenerateSuggestions proposes runs for the upcoming forecast window.
func (h *Handler) GenerateSuggestions(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "days must be an integer", err))
			return
		}
		// Only an absent parameter picks the default window.
		if parsed == 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "days must be between 1 and 21", nil))
			return
		}
		days = parsed
	}

	items, err := h.suggestions.Generate(c.Request.Context(), c.Query("location"), days)
	if err != nil {
		abortWithError(c, suggestionError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": items})
}

// CurrentWeek reports the active training week, or null when no plan
// covers today.
func (h *Handler) CurrentWeek(c *gin.Context) {
	target, active, err := h.planSvc.CurrentWeek(c.Request.Context())
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "plan_failed", errMessage(err), err))
		return
	}
	if !active {
		c.JSON(http.StatusOK, gin.H{"currentWeek": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"currentWeek": target})
}

// WeeklyMileage serves the weekly mileage series.
func (h *Handler) WeeklyMileage(c *gin.Context) {
	points, err := h.statsSvc.WeeklyMileage(c.Request.Context())
	if err != nil {
		abortWithError(c, statsError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": points})
}

// PaceProgression serves the distance-weighted pace series.
func (h *Handler) PaceProgression(c *gin.Context) {
	points, err := h.statsSvc.PaceProgression(c.Request.Context())
	if err != nil {
		abortWithError(c, statsError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": points})
}

// LongRunProgression serves the weekly longest long run series.
func (h *Handler) LongRunProgression(c *gin.Context) {
	points, err := h.statsSvc.LongRunProgression(c.Request.Context())
	if err != nil {
		abortWithError(c, statsError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": points})
}

// CompletionRate serves completion ratios overall and per phase.
func (h *Handler) CompletionRate(c *gin.Context) {
	rate, err := h.statsSvc.CompletionRate(c.Request.Context())
	if err != nil {
		abortWithError(c, statsError(err))
		return
	}
	c.JSON(http.StatusOK, rate)
}

// Summary serves the headline training totals.
func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.statsSvc.Summary(c.Request.Context())
	if err != nil {
		abortWithError(c, statsError(err))
		return
	}
	c.JSON(http.StatusOK, summary)
}

type runPayload struct {
	Date        string  `json:"date" binding:"required"`
	DistanceKm  float64 `json:"distanceKm"`
	Pace        string  `json:"pace"`
	DurationMin int     `json:"durationMin"`
	Type        string  `json:"type"`
	Completed   bool    `json:"completed"`
	Notes       string  `json:"notes"`
}

// ListRuns returns scheduled runs, optionally filtered by date range.
func (h *Handler) ListRuns(c *gin.Context) {
	filter := plan.RunFilter{}
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "from must be formatted as YYYY-MM-DD", err))
			return
		}
		filter.From = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "to must be formatted as YYYY-MM-DD", err))
			return
		}
		filter.To = parsed
	}
	runs, err := h.runs.List(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "runs_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// CreateRun schedules a new run.
func (h *Handler) CreateRun(c *gin.Context) {
	var payload runPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	run, httpErr := runFromPayload(payload, uuid.Nil)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}
	created, err := h.runs.Create(c.Request.Context(), run)
	if err != nil {
		abortWithError(c, runStoreError(err))
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateRun replaces a scheduled run.
func (h *Handler) UpdateRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "id must be a UUID", err))
		return
	}
	var payload runPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	run, httpErr := runFromPayload(payload, id)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}
	updated, err := h.runs.Update(c.Request.Context(), run)
	if err != nil {
		abortWithError(c, runStoreError(err))
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteRun removes a scheduled run.
func (h *Handler) DeleteRun(c *gin.Context) {
	if err := h.runs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, runStoreError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func runFromPayload(payload runPayload, id uuid.UUID) (plan.ScheduledRun, *HTTPError) {
	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		return plan.ScheduledRun{}, NewHTTPError(http.StatusBadRequest, "invalid_request", "date must be formatted as YYYY-MM-DD", err)
	}
	if payload.DistanceKm < 0 {
		return plan.ScheduledRun{}, NewHTTPError(http.StatusBadRequest, "invalid_request", "distanceKm cannot be negative", nil)
	}
	runType := plan.RunType(payload.Type)
	if runType == "" {
		runType = plan.RunTypeEasy
	}
	return plan.ScheduledRun{
		ID:          id,
		Date:        date,
		DistanceKm:  payload.DistanceKm,
		Pace:        payload.Pace,
		DurationMin: payload.DurationMin,
		Type:        runType,
		Completed:   payload.Completed,
		Notes:       payload.Notes,
	}, nil
}

func suggestionError(err error) *HTTPError {
	switch {
	case apperrors.IsCode(err, apperrors.CodeInvalidInput):
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case apperrors.IsCode(err, apperrors.CodeWeatherUnavailable):
		return NewHTTPError(http.StatusServiceUnavailable, "weather_unavailable", errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "suggestions_failed", errMessage(err), err)
	}
}

func statsError(err error) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, "stats_failed", errMessage(err), err)
}

func runStoreError(err error) *HTTPError {
	switch {
	case errors.Is(err, runrepo.ErrNotFound):
		return NewHTTPError(http.StatusNotFound, "run_not_found", "run not found", err)
	case errors.Is(err, runrepo.ErrDateTaken):
		return NewHTTPError(http.StatusConflict, "date_taken", "a run is already scheduled on that date", err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "runs_failed", errMessage(err), err)
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
