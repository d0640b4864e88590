package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/benvon/goal-insights/internal/analytics"
	"github.com/benvon/goal-insights/internal/database"
	"github.com/benvon/goal-insights/internal/engine"
	"github.com/benvon/goal-insights/internal/insights"
	logpkg "github.com/benvon/goal-insights/internal/logger"
	"github.com/benvon/goal-insights/internal/middleware"
	"github.com/benvon/goal-insights/internal/models"
	"github.com/benvon/goal-insights/internal/queue"
	"github.com/benvon/goal-insights/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// InsightHandler serves computed goal insights
type InsightHandler struct {
	engine           *engine.Engine
	records          engine.RecordSource
	jobQueue         queue.JobQueue // Optional; enables background recompute
	defaultTimeframe string         // Used when a request names no timeframe
	logger           *zap.Logger
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(eng *engine.Engine, records engine.RecordSource, jobQueue queue.JobQueue, defaultTimeframe string, logger *zap.Logger) *InsightHandler {
	return &InsightHandler{
		engine:           eng,
		records:          records,
		jobQueue:         jobQueue,
		defaultTimeframe: defaultTimeframe,
		logger:           logger,
	}
}

// RegisterRoutes registers insight routes on the given router
// The router should already have the /goals prefix (e.g., from apiRouter.PathPrefix("/goals"))
func (h *InsightHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/{id}/insights", h.GetInsights).Methods("GET")
	r.HandleFunc("/{id}/insights", h.InvalidateInsights).Methods("DELETE")
	r.HandleFunc("/{id}/insights/refresh", h.RefreshInsights).Methods("POST")
	r.HandleFunc("/{id}/metrics", h.GetMetrics).Methods("GET")
	r.HandleFunc("/{id}/export", h.ExportAnalytics).Methods("GET")
}

// parseQuery reads and validates the goal id and query parameters. An
// absent timeframe resolves to the configured default.
func (h *InsightHandler) parseQuery(r *http.Request) (validation.InsightQuery, error) {
	q := r.URL.Query()
	query := validation.InsightQuery{
		Timeframe: q.Get("timeframe"),
		Priority:  q.Get("priority"),
		Format:    q.Get("format"),
		Refresh:   q.Get("refresh"),
	}
	if query.Timeframe == "" {
		query.Timeframe = h.defaultTimeframe
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return query, errors.New("goal id must be a positive integer")
	}
	query.GoalID = id

	if err := validation.Validate.Struct(query); err != nil {
		return query, errors.New(validation.Message(err))
	}
	return query, nil
}

// compute returns the goal's bundle, serving today's cached copy without
// touching the database when one exists
func (h *InsightHandler) compute(ctx context.Context, query validation.InsightQuery, force bool) (*models.InsightBundle, bool, error) {
	if !force {
		bundle, ok, err := h.engine.Lookup(ctx, engine.GoalEntityID(query.GoalID), query.Timeframe)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return bundle, true, nil
		}
	}
	_, bundle, cached, err := h.load(ctx, query, force)
	return bundle, cached, err
}

// load reads the goal's records and computes its bundle through the cache
func (h *InsightHandler) load(ctx context.Context, query validation.InsightQuery, force bool) (engine.Request, *models.InsightBundle, bool, error) {
	req, err := engine.LoadGoal(ctx, h.records, query.GoalID, query.Timeframe)
	if err != nil {
		return req, nil, false, err
	}
	req.ForceRefresh = force
	bundle, cached, err := h.engine.Compute(ctx, req)
	return req, bundle, cached, err
}

// respondComputeError maps engine and repository failures to HTTP errors
func (h *InsightHandler) respondComputeError(w http.ResponseWriter, r *http.Request, goalID int64, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondJSONError(w, http.StatusNotFound, "Not Found", fmt.Sprintf("goal %d not found", goalID))
	case errors.Is(err, analytics.ErrInvalidTimeframe):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Insight computation timed out")
	default:
		h.logger.Error("insight_request_failed",
			zap.Int64("goal_id", goalID),
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to compute insights")
	}
}

func setCacheStatus(w http.ResponseWriter, cached bool) {
	status := "MISS"
	if cached {
		status = "HIT"
	}
	w.Header().Set(middleware.CacheStatusHeader, status)
}

// GetInsights returns the insight bundle for a goal. refresh=true forces a
// recompute; priority filters the insight list without touching the cache.
// A refresh value that is not a boolean is rejected.
func (h *InsightHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseQuery(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	bundle, cached, err := h.compute(r.Context(), query, query.ForceRefresh())
	if err != nil {
		h.respondComputeError(w, r, query.GoalID, err)
		return
	}

	filter, _ := insights.ParsePriorityFilter(query.Priority)
	out := *bundle
	out.Insights = insights.FilterByPriority(bundle.Insights, filter)

	setCacheStatus(w, cached)
	respondCached(w, http.StatusOK, out, cached)
}

// GetMetrics returns only the metric bundle for a goal
func (h *InsightHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseQuery(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	bundle, cached, err := h.compute(r.Context(), query, false)
	if err != nil {
		h.respondComputeError(w, r, query.GoalID, err)
		return
	}

	setCacheStatus(w, cached)
	respondCached(w, http.StatusOK, bundle.Metrics, cached)
}

// InvalidateInsights drops the cached bundle so the next read recomputes
func (h *InsightHandler) InvalidateInsights(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseQuery(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if err := h.engine.Invalidate(r.Context(), engine.GoalEntityID(query.GoalID)); err != nil {
		h.logger.Error("insight_invalidate_failed",
			zap.Int64("goal_id", query.GoalID),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to invalidate insights")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RefreshInsights enqueues a background recompute for a goal
func (h *InsightHandler) RefreshInsights(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseQuery(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if h.jobQueue == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Background recompute is not configured")
		return
	}

	job := queue.NewRecomputeJob(query.GoalID, query.Timeframe)
	if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
		h.logger.Error("insight_refresh_enqueue_failed",
			zap.Int64("goal_id", query.GoalID),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to enqueue recompute")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID.String()})
}

// ExportAnalytics streams the goal's records and headline metrics as a
// JSON or CSV download
func (h *InsightHandler) ExportAnalytics(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseQuery(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	format, _ := analytics.ParseExportFormat(query.Format)
	tf, _ := analytics.ParseTimeframe(query.Timeframe)

	req, bundle, _, err := h.load(r.Context(), query, false)
	if err != nil {
		h.respondComputeError(w, r, query.GoalID, err)
		return
	}

	now := h.engine.Now()
	data := analytics.NewExport(now, tf, analytics.Input{
		Goal:     req.Goal,
		Subgoals: req.Subgoals,
		Todos:    req.Todos,
	}, bundle.Metrics)

	contentType := "application/json"
	if format == analytics.ExportCSV {
		contentType = "text/csv; charset=utf-8"
	}
	filename := fmt.Sprintf("goal-%d-analytics-%s.%s", query.GoalID, now.UTC().Format("2006-01-02"), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if err := data.Write(w, format); err != nil {
		h.logger.Error("analytics_export_write_failed",
			zap.Int64("goal_id", query.GoalID),
			zap.Error(err),
		)
	}
}
