package domain

import "time"

// RunPredictionsRequest is the body of the run-predictions function.
type RunPredictionsRequest struct {
	RunAll           bool        `json:"run_all"`
	ItemID           string      `json:"item_id"`
	SinglePrediction *ItemFields `json:"single_prediction"`
}

// PredictionOutcome is the per-item payload returned by a prediction run.
type PredictionOutcome struct {
	ItemID               string             `json:"item_id"`
	EstimatedDemand      int                `json:"estimated_demand"`
	InventoryShortfall   int                `json:"inventory_shortfall"`
	ReplenishmentNeeds   int                `json:"replenishment_needs"`
	FeatureContributions map[string]float64 `json:"feature_contributions"`
}

// ItemFailure reports an item a batch run could not complete.
type ItemFailure struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Error    string `json:"error"`
}

type RunPredictionsResult struct {
	Success         bool                `json:"success"`
	Predictions     []PredictionOutcome `json:"predictions"`
	Failures        []ItemFailure       `json:"failures"`
	AlertsGenerated int                 `json:"alerts_generated"`
	ModelVersion    string              `json:"model_version"`
	Partial         bool                `json:"partial"`
}

// DemoPredictionResult is returned for ad-hoc predictions, nothing is stored.
type DemoPredictionResult struct {
	Success              bool               `json:"success"`
	EstimatedDemand      int                `json:"estimated_demand"`
	InventoryShortfall   int                `json:"inventory_shortfall"`
	ReplenishmentNeeds   int                `json:"replenishment_needs"`
	FeatureContributions map[string]float64 `json:"feature_contributions"`
	ModelVersion         string             `json:"model_version"`
}

// RunOptimizationRequest is the body of the calculate-cost-optimization function.
type RunOptimizationRequest struct {
	RunAll bool   `json:"run_all"`
	ItemID string `json:"item_id"`
}

type OptimizationOutcome struct {
	ItemID               string  `json:"item_id"`
	ItemName             string  `json:"item_name"`
	EOQ                  int     `json:"eoq"`
	ReorderPoint         int     `json:"reorder_point"`
	SafetyStock          int     `json:"safety_stock"`
	OptimalOrderQuantity float64 `json:"optimal_order_quantity"`
	EstimatedAnnualCost  float64 `json:"estimated_annual_cost"`
	CurrentStock         int     `json:"current_stock"`
	ShouldReorder        bool    `json:"should_reorder"`
}

type RunOptimizationResult struct {
	Success       bool                  `json:"success"`
	Optimizations []OptimizationOutcome `json:"optimizations"`
	Failures      []ItemFailure         `json:"failures"`
	TotalItems    int                   `json:"total_items"`
	Partial       bool                  `json:"partial"`
}

type SeedStats struct {
	InventoryItems int `json:"inventory_items"`
	Predictions    int `json:"predictions"`
	Alerts         int `json:"alerts"`
}

type SeedResult struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Stats   SeedStats `json:"stats"`
}

// DashboardSummary aggregates the headline numbers of the dashboard view
type DashboardSummary struct {
	TotalItems      int       `json:"total_items" db:"total_items"`
	TotalStockValue float64   `json:"total_stock_value" db:"total_stock_value"`
	LowStockItems   int       `json:"low_stock_items" db:"low_stock_items"`
	CriticalItems   int       `json:"critical_items" db:"critical_items"`
	UnreadAlerts    int       `json:"unread_alerts" db:"unread_alerts"`
	GeneratedAt     time.Time `json:"generated_at" db:"-"`
}

// ImportRowError describes a CSV row that was not imported. Row is 1-based and
// counts the header line.
type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResult struct {
	Success    bool              `json:"success"`
	Imported   int               `json:"imported"`
	Skipped    int               `json:"skipped"`
	Errors     []ImportRowError  `json:"errors"`
	Mapping    map[string]string `json:"mapping"`
	ArchiveKey string            `json:"archive_key,omitempty"`
}

// DashboardOverview is the landing view: headline numbers plus the items and
// alerts that need attention.
type DashboardOverview struct {
	Summary        *DashboardSummary `json:"summary"`
	LowStockItems  []InventoryItem   `json:"low_stock_items"`
	CriticalAlerts []AlertHistory    `json:"critical_alerts"`
	Predictions    []Prediction      `json:"predictions"`
}
