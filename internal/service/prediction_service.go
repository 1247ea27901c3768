package service

import (
	"context"
	"fmt"

	"github.com/SuhaniChatterjee/medstock-wise/internal/cache"
	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/SuhaniChatterjee/medstock-wise/internal/forecast"
	"github.com/SuhaniChatterjee/medstock-wise/internal/repository"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

type PredictionService struct {
	items       repository.InventoryRepository
	models      repository.ModelRepository
	predictions repository.PredictionRepository
	alerts      repository.AlertRepository
	cache       cache.DashboardSummaryCache
	thresholds  forecast.AlertThresholds
}

func NewPredictionService(store *repository.Store, cacheImpl cache.DashboardSummaryCache, thresholds forecast.AlertThresholds) *PredictionService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &PredictionService{
		items:       store.Inventory,
		models:      store.Models,
		predictions: store.Predictions,
		alerts:      store.Alerts,
		cache:       cacheImpl,
		thresholds:  thresholds,
	}
}

// resolveModel reads the active registry row once per request.
func (s *PredictionService) resolveModel(ctx context.Context) (forecast.ModelConfig, error) {
	row, err := s.models.GetActiveModel(ctx)
	if err != nil {
		return forecast.ModelConfig{}, err
	}
	return forecast.ModelConfigFromRegistry(row), nil
}

// Demo validates and estimates ad-hoc item fields without touching the store.
func (s *PredictionService) Demo(ctx context.Context, fields domain.ItemFields) (*domain.DemoPredictionResult, error) {
	ctx, span := tracer.Start(ctx, "PredictionService.Demo")
	defer span.End()

	if err := fields.Normalize(); err != nil {
		return nil, err
	}

	model, err := s.resolveModel(ctx)
	if err != nil {
		return nil, err
	}

	est := forecast.Estimate(fields, model)
	return &domain.DemoPredictionResult{
		Success:              true,
		EstimatedDemand:      est.EstimatedDemand,
		InventoryShortfall:   est.InventoryShortfall,
		ReplenishmentNeeds:   est.ReplenishmentNeeds,
		FeatureContributions: est.FeatureContributions,
		ModelVersion:         model.Version,
	}, nil
}

// Run estimates demand for the selected items, stores one prediction and one
// history row per item and raises stock alerts. Items whose prediction cannot
// be stored are reported in Failures and get no alert.
func (s *PredictionService) Run(ctx context.Context, identity *domain.Identity, req domain.RunPredictionsRequest) (*domain.RunPredictionsResult, error) {
	ctx, span := tracer.Start(ctx, "PredictionService.Run")
	defer span.End()

	model, err := s.resolveModel(ctx)
	if err != nil {
		return nil, err
	}

	items, err := loadItems(ctx, s.items, req.RunAll, req.ItemID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("items", len(items)), attribute.String("model_version", model.Version))

	result := &domain.RunPredictionsResult{
		Predictions:  make([]domain.PredictionOutcome, 0, len(items)),
		Failures:     make([]domain.ItemFailure, 0),
		ModelVersion: model.Version,
	}
	var (
		alerts  []*domain.AlertHistory
		lastErr error
	)

	for _, item := range items {
		fields := item.Fields()
		est := forecast.Estimate(fields, model)

		prediction := &domain.Prediction{
			ItemID:             item.ID,
			EstimatedDemand:    est.EstimatedDemand,
			InventoryShortfall: est.InventoryShortfall,
			ReplenishmentNeeds: est.ReplenishmentNeeds,
			CreatedBy:          identity.UserRef(),
		}
		history := newHistory(item, fields, est, model, identity)

		if err := s.predictions.SavePrediction(ctx, prediction, history); err != nil {
			err = fmt.Errorf("%w: %v", domain.ErrPersistence, err)
			lastErr = err
			log.Warn().Err(err).Str("item_id", item.ID.String()).Msg("predictions: failed to store prediction")
			result.Failures = append(result.Failures, itemFailure(item, err))
			continue
		}

		result.Predictions = append(result.Predictions, domain.PredictionOutcome{
			ItemID:               item.ID.String(),
			EstimatedDemand:      est.EstimatedDemand,
			InventoryShortfall:   est.InventoryShortfall,
			ReplenishmentNeeds:   est.ReplenishmentNeeds,
			FeatureContributions: est.FeatureContributions,
		})

		if alert, ok := forecast.EvaluateStock(item, est.EstimatedDemand, s.thresholds); ok {
			alerts = append(alerts, alert)
		}
	}

	if len(result.Predictions) == 0 {
		return nil, fmt.Errorf("no prediction stored: %w", lastErr)
	}

	if err := s.alerts.InsertAlerts(ctx, alerts); err != nil {
		log.Error().Err(err).Int("alerts", len(alerts)).Msg("predictions: failed to store alerts")
		result.Failures = append(result.Failures, domain.ItemFailure{Error: fmt.Sprintf("alerts not stored: %v", err)})
	} else {
		result.AlertsGenerated = len(alerts)
	}

	invalidateDashboard(ctx, s.cache)

	result.Partial = len(result.Failures) > 0
	result.Success = true

	log.Info().
		Int("predictions", len(result.Predictions)).
		Int("failures", len(result.Failures)).
		Int("alerts", result.AlertsGenerated).
		Str("model_version", model.Version).
		Msg("predictions: run complete")

	return result, nil
}

// ListLatest returns the dashboard prediction of every item.
func (s *PredictionService) ListLatest(ctx context.Context) ([]domain.Prediction, error) {
	return s.predictions.ListLatest(ctx)
}

func (s *PredictionService) ListHistory(ctx context.Context, itemID string, limit int) ([]domain.PredictionHistory, error) {
	ref, err := parseOptionalID(itemID)
	if err != nil {
		return nil, err
	}
	return s.predictions.ListHistory(ctx, ref, clampLimit(limit))
}

func newHistory(item domain.InventoryItem, fields domain.ItemFields, est forecast.DemandEstimate, model forecast.ModelConfig, identity *domain.Identity) *domain.PredictionHistory {
	contributions := make(map[string]interface{}, len(est.FeatureContributions))
	for k, v := range est.FeatureContributions {
		contributions[k] = v
	}
	return &domain.PredictionHistory{
		ItemID:               item.ID,
		ModelID:              model.ID,
		ModelVersion:         model.Version,
		EstimatedDemand:      est.EstimatedDemand,
		InventoryShortfall:   est.InventoryShortfall,
		ReplenishmentNeeds:   est.ReplenishmentNeeds,
		ConfidenceScore:      model.Confidence,
		FeatureValues:        forecast.FeatureValues(fields),
		FeatureContributions: contributions,
		CreatedBy:            identity.UserRef(),
	}
}
