package repository

import (
	"context"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/google/uuid"
)

type InventoryRepository interface {
	ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.InventoryItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error)
	CreateItem(ctx context.Context, item *domain.InventoryItem) error
	UpdateItem(ctx context.Context, item *domain.InventoryItem) error
	Restock(ctx context.Context, id uuid.UUID, quantity int) (*domain.InventoryItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	// UpsertItemsByName inserts or updates items keyed on item_name and writes the
	// stored ids back into the slice.
	UpsertItemsByName(ctx context.Context, items []*domain.InventoryItem) (int, error)
}

type ModelRepository interface {
	// GetActiveModel returns the newest active registry row or ErrNoActiveModel.
	GetActiveModel(ctx context.Context) (*domain.ModelRegistry, error)
	UpsertModel(ctx context.Context, model *domain.ModelRegistry) error
}

type PredictionRepository interface {
	// SavePrediction upserts the dashboard prediction and appends the history row
	// in one transaction.
	SavePrediction(ctx context.Context, prediction *domain.Prediction, history *domain.PredictionHistory) error
	ListLatest(ctx context.Context) ([]domain.Prediction, error)
	ListHistory(ctx context.Context, itemID uuid.NullUUID, limit int) ([]domain.PredictionHistory, error)
}

type OptimizationRepository interface {
	InsertOptimization(ctx context.Context, opt *domain.CostOptimization) error
	ListOptimizations(ctx context.Context, itemID uuid.NullUUID, limit int) ([]domain.CostOptimization, error)
}

type AlertRepository interface {
	InsertAlerts(ctx context.Context, alerts []*domain.AlertHistory) error
	ListAlerts(ctx context.Context, filter domain.AlertFilter) ([]domain.AlertHistory, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	Resolve(ctx context.Context, id uuid.UUID, resolvedBy uuid.NullUUID, notes *string) error
}

type DashboardRepository interface {
	// GetSummary counts items below minimum and items at or below criticalPct
	// percent of their minimum.
	GetSummary(ctx context.Context, criticalPct float64) (*domain.DashboardSummary, error)
}

// Store bundles every repository the services need.
type Store struct {
	Inventory     InventoryRepository
	Models        ModelRepository
	Predictions   PredictionRepository
	Optimizations OptimizationRepository
	Alerts        AlertRepository
	Dashboard     DashboardRepository
}
