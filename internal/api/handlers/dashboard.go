package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/SuhaniChatterjee/medstock-wise/internal/api/middleware"
	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/SuhaniChatterjee/medstock-wise/internal/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the read views and alert actions of the dashboard.
type DashboardHandler struct {
	dashboard     *service.DashboardService
	predictions   *service.PredictionService
	optimizations *service.OptimizationService
	alerts        *service.AlertService
}

func NewDashboardHandler(dashboard *service.DashboardService, predictions *service.PredictionService, optimizations *service.OptimizationService, alerts *service.AlertService) *DashboardHandler {
	return &DashboardHandler{
		dashboard:     dashboard,
		predictions:   predictions,
		optimizations: optimizations,
		alerts:        alerts,
	}
}

func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.dashboard.GetSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) GetOverview(c *gin.Context) {
	overview, err := h.dashboard.GetOverview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *DashboardHandler) ListPredictions(c *gin.Context) {
	predictions, err := h.predictions.ListLatest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if predictions == nil {
		predictions = make([]domain.Prediction, 0)
	}
	c.JSON(http.StatusOK, predictions)
}

func (h *DashboardHandler) ListPredictionHistory(c *gin.Context) {
	history, err := h.predictions.ListHistory(c.Request.Context(), c.Query("item_id"), parseLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if history == nil {
		history = make([]domain.PredictionHistory, 0)
	}
	c.JSON(http.StatusOK, history)
}

func (h *DashboardHandler) ListOptimizations(c *gin.Context) {
	rows, err := h.optimizations.List(c.Request.Context(), c.Query("item_id"), parseLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = make([]domain.CostOptimization, 0)
	}
	c.JSON(http.StatusOK, rows)
}

func (h *DashboardHandler) ListAlerts(c *gin.Context) {
	filter := domain.AlertFilter{Limit: parseLimit(c)}
	filter.UnreadOnly, _ = strconv.ParseBool(c.DefaultQuery("unread", "false"))
	if raw := strings.TrimSpace(c.Query("severity")); raw != "" {
		severity, ok := domain.ParseSeverity(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "severity must be info, warning or critical"})
			return
		}
		filter.Severity = severity
	}

	alerts, err := h.alerts.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *DashboardHandler) MarkAlertRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.alerts.MarkRead(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DashboardHandler) ResolveAlert(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body struct {
		ResolutionNotes string `json:"resolution_notes"`
	}
	if err := decodeOptionalJSON(c, &body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.alerts.Resolve(c.Request.Context(), middleware.Identity(c), id, body.ResolutionNotes); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
