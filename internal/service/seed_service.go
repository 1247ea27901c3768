package service

import (
	"context"
	"fmt"

	"github.com/SuhaniChatterjee/medstock-wise/internal/cache"
	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/SuhaniChatterjee/medstock-wise/internal/forecast"
	"github.com/SuhaniChatterjee/medstock-wise/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	SampleModelName    = "demand-estimator"
	SampleModelVersion = "v1.0.0"
)

type sampleItem struct {
	name     string
	itemType domain.ItemType
	stock    int
	min      int
	max      int
	cost     string
	usage    int
	lead     int
	vendor   string
}

var sampleCatalog = []sampleItem{
	{"Surgical Gloves (Box)", domain.ItemTypeConsumable, 2487, 656, 5000, "8.50", 55, 12, "MedSupply Co"},
	{"N95 Respirator Masks", domain.ItemTypeConsumable, 120, 500, 3000, "1.25", 80, 7, "SafeGuard PPE"},
	{"IV Infusion Set", domain.ItemTypeConsumable, 10, 200, 1500, "3.75", 40, 5, "Fluidline Medical"},
	{"Patient Monitor", domain.ItemTypeEquipment, 18, 15, 40, "2400.00", 1, 30, "VitalTech"},
	{"Disposable Syringes 5ml", domain.ItemTypeConsumable, 180, 200, 4000, "0.35", 150, 4, "MedSupply Co"},
	{"Hospital Bed", domain.ItemTypeEquipment, 42, 40, 60, "1850.00", 0, 45, "CareFrame"},
	{"Sterile Gauze Pads", domain.ItemTypeConsumable, 900, 400, 2500, "0.20", 60, 6, "Fluidline Medical"},
	{"Portable Ventilator", domain.ItemTypeEquipment, 3, 5, 12, "12500.00", 0, 60, "BreathWell"},
}

func sampleModel() *domain.ModelRegistry {
	mae, rmse, r2 := 12.4, 18.7, 0.87
	c := forecast.DefaultCoefficients()
	return &domain.ModelRegistry{
		ModelName:    SampleModelName,
		ModelVersion: SampleModelVersion,
		MAE:          &mae,
		RMSE:         &rmse,
		R2:           &r2,
		Hyperparameters: map[string]interface{}{
			"formula": "avg_usage_per_day * restock_lead_time",
			"coefficients": map[string]interface{}{
				forecast.FeatureUsage:       c.Usage,
				forecast.FeatureLeadTime:    c.LeadTime,
				forecast.FeatureStock:       c.Stock,
				forecast.FeatureMinRequired: c.MinRequired,
			},
		},
		FeatureImportance: map[string]interface{}{
			forecast.FeatureUsage:       c.Usage,
			forecast.FeatureLeadTime:    c.LeadTime,
			forecast.FeatureStock:       c.Stock,
			forecast.FeatureMinRequired: c.MinRequired,
		},
		IsActive: true,
	}
}

type SeedService struct {
	items       repository.InventoryRepository
	models      repository.ModelRepository
	predictions repository.PredictionRepository
	alerts      repository.AlertRepository
	cache       cache.DashboardSummaryCache
}

func NewSeedService(store *repository.Store, cacheImpl cache.DashboardSummaryCache) *SeedService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &SeedService{
		items:       store.Inventory,
		models:      store.Models,
		predictions: store.Predictions,
		alerts:      store.Alerts,
		cache:       cacheImpl,
	}
}

// Seed upserts the demonstration catalog and model, then records a prediction
// for every item and an alert for every item below its minimum. Items and the
// model are keyed by name and version, so reruns do not duplicate them.
func (s *SeedService) Seed(ctx context.Context, identity *domain.Identity) (*domain.SeedResult, error) {
	ctx, span := tracer.Start(ctx, "SeedService.Seed")
	defer span.End()

	items := make([]*domain.InventoryItem, 0, len(sampleCatalog))
	for _, si := range sampleCatalog {
		vendor := si.vendor
		item := &domain.InventoryItem{CreatedBy: identity.UserRef()}
		item.Apply(domain.ItemFields{
			ItemName:        si.name,
			ItemType:        string(si.itemType),
			CurrentStock:    si.stock,
			MinRequired:     si.min,
			MaxCapacity:     si.max,
			UnitCost:        decimal.RequireFromString(si.cost),
			AvgUsagePerDay:  si.usage,
			RestockLeadTime: si.lead,
			VendorName:      &vendor,
		})
		items = append(items, item)
	}

	upserted, err := s.items.UpsertItemsByName(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("%w: seed items: %v", domain.ErrPersistence, err)
	}

	registry := sampleModel()
	if err := s.models.UpsertModel(ctx, registry); err != nil {
		return nil, fmt.Errorf("%w: seed model: %v", domain.ErrPersistence, err)
	}
	model := forecast.ModelConfigFromRegistry(registry)

	stats := domain.SeedStats{InventoryItems: upserted}
	var alerts []*domain.AlertHistory
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
		if err := s.predictions.SavePrediction(ctx, prediction, newHistory(*item, fields, est, model, identity)); err != nil {
			return nil, fmt.Errorf("%w: seed prediction for %s: %v", domain.ErrPersistence, item.ItemName, err)
		}
		stats.Predictions++

		if alert, ok := forecast.BelowMinimumAlert(*item, est.EstimatedDemand); ok {
			alerts = append(alerts, alert)
		}
	}

	if err := s.alerts.InsertAlerts(ctx, alerts); err != nil {
		return nil, fmt.Errorf("%w: seed alerts: %v", domain.ErrPersistence, err)
	}
	stats.Alerts = len(alerts)

	invalidateDashboard(ctx, s.cache)

	log.Info().
		Int("items", stats.InventoryItems).
		Int("predictions", stats.Predictions).
		Int("alerts", stats.Alerts).
		Msg("seed: sample data loaded")

	return &domain.SeedResult{
		Success: true,
		Message: "Sample data seeded successfully",
		Stats:   stats,
	}, nil
}
