package handlers

import (
	"fmt"
	"net/http"

	"github.com/SuhaniChatterjee/medstock-wise/internal/api/middleware"
	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/SuhaniChatterjee/medstock-wise/internal/service"
	"github.com/gin-gonic/gin"
)

// FunctionsHandler serves the run-predictions, calculate-cost-optimization
// and seed-sample-data endpoints.
type FunctionsHandler struct {
	predictions   *service.PredictionService
	optimizations *service.OptimizationService
	seed          *service.SeedService
}

func NewFunctionsHandler(predictions *service.PredictionService, optimizations *service.OptimizationService, seed *service.SeedService) *FunctionsHandler {
	return &FunctionsHandler{predictions: predictions, optimizations: optimizations, seed: seed}
}

func (h *FunctionsHandler) RunPredictions(c *gin.Context) {
	var req domain.RunPredictionsRequest
	if err := decodeOptionalJSON(c, &req); err != nil {
		functionError(c, fmt.Errorf("invalid request body: %w", err))
		return
	}

	ctx := c.Request.Context()
	if req.SinglePrediction != nil {
		res, err := h.predictions.Demo(ctx, *req.SinglePrediction)
		if err != nil {
			functionError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}

	res, err := h.predictions.Run(ctx, middleware.Identity(c), req)
	if err != nil {
		functionError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *FunctionsHandler) CalculateCostOptimization(c *gin.Context) {
	var req domain.RunOptimizationRequest
	if err := decodeOptionalJSON(c, &req); err != nil {
		functionError(c, fmt.Errorf("invalid request body: %w", err))
		return
	}

	res, err := h.optimizations.Run(c.Request.Context(), middleware.Identity(c), req)
	if err != nil {
		functionError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *FunctionsHandler) SeedSampleData(c *gin.Context) {
	res, err := h.seed.Seed(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		functionError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
