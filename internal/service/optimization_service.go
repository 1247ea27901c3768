package service

import (
	"context"
	"fmt"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/SuhaniChatterjee/medstock-wise/internal/forecast"
	"github.com/SuhaniChatterjee/medstock-wise/internal/repository"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

type OptimizationService struct {
	items         repository.InventoryRepository
	optimizations repository.OptimizationRepository
	params        forecast.CostParams
}

func NewOptimizationService(store *repository.Store, params forecast.CostParams) *OptimizationService {
	return &OptimizationService{
		items:         store.Inventory,
		optimizations: store.Optimizations,
		params:        params,
	}
}

// Run computes and stores a cost optimization per selected item. Items that
// cannot be optimized or stored are reported in Failures.
func (s *OptimizationService) Run(ctx context.Context, identity *domain.Identity, req domain.RunOptimizationRequest) (*domain.RunOptimizationResult, error) {
	ctx, span := tracer.Start(ctx, "OptimizationService.Run")
	defer span.End()

	items, err := loadItems(ctx, s.items, req.RunAll, req.ItemID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("items", len(items)))

	result := &domain.RunOptimizationResult{
		Optimizations: make([]domain.OptimizationOutcome, 0, len(items)),
		Failures:      make([]domain.ItemFailure, 0),
	}

	var lastErr error
	for _, item := range items {
		res, err := forecast.Optimize(item.Fields(), s.params)
		if err != nil {
			log.Warn().Err(err).Str("item_id", item.ID.String()).Msg("optimization: item skipped")
			lastErr = err
			result.Failures = append(result.Failures, itemFailure(item, err))
			continue
		}

		row := &domain.CostOptimization{
			ItemID:               item.ID,
			EOQ:                  res.EOQ,
			ReorderPoint:         res.ReorderPoint,
			SafetyStock:          res.SafetyStock,
			OptimalOrderQuantity: res.OptimalOrderQuantity,
			EstimatedAnnualCost:  res.EstimatedAnnualCost,
			Parameters:           res.Parameters(s.params),
			CreatedBy:            identity.UserRef(),
		}
		if err := s.optimizations.InsertOptimization(ctx, row); err != nil {
			err = fmt.Errorf("%w: %v", domain.ErrPersistence, err)
			lastErr = err
			log.Warn().Err(err).Str("item_id", item.ID.String()).Msg("optimization: failed to store result")
			result.Failures = append(result.Failures, itemFailure(item, err))
			continue
		}

		result.Optimizations = append(result.Optimizations, domain.OptimizationOutcome{
			ItemID:               item.ID.String(),
			ItemName:             item.ItemName,
			EOQ:                  res.EOQ,
			ReorderPoint:         res.ReorderPoint,
			SafetyStock:          res.SafetyStock,
			OptimalOrderQuantity: res.OptimalOrderQuantity,
			EstimatedAnnualCost:  res.EstimatedAnnualCost,
			CurrentStock:         item.CurrentStock,
			ShouldReorder:        forecast.ShouldReorder(item.CurrentStock, res.ReorderPoint),
		})
	}

	if len(result.Optimizations) == 0 {
		return nil, fmt.Errorf("no optimization completed: %w", lastErr)
	}

	result.TotalItems = len(result.Optimizations)
	result.Partial = len(result.Failures) > 0
	result.Success = true

	log.Info().
		Int("optimizations", result.TotalItems).
		Int("failures", len(result.Failures)).
		Msg("optimization: run complete")

	return result, nil
}

func (s *OptimizationService) List(ctx context.Context, itemID string, limit int) ([]domain.CostOptimization, error) {
	ref, err := parseOptionalID(itemID)
	if err != nil {
		return nil, err
	}
	return s.optimizations.ListOptimizations(ctx, ref, clampLimit(limit))
}
