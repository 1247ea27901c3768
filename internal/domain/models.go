package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InventoryItem is a stocked hospital item.
type InventoryItem struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	ItemName        string          `json:"item_name" db:"item_name"`
	ItemType        ItemType        `json:"item_type" db:"item_type"`
	CurrentStock    int             `json:"current_stock" db:"current_stock"`
	MinRequired     int             `json:"min_required" db:"min_required"`
	MaxCapacity     int             `json:"max_capacity" db:"max_capacity"`
	UnitCost        decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	AvgUsagePerDay  int             `json:"avg_usage_per_day" db:"avg_usage_per_day"`
	RestockLeadTime int             `json:"restock_lead_time" db:"restock_lead_time"`
	VendorName      *string         `json:"vendor_name,omitempty" db:"vendor_name"`
	CreatedBy       uuid.NullUUID   `json:"created_by" db:"created_by"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// Fields returns the numeric inputs the forecast functions work on.
func (i InventoryItem) Fields() ItemFields {
	return ItemFields{
		ItemName:        i.ItemName,
		ItemType:        string(i.ItemType),
		CurrentStock:    i.CurrentStock,
		MinRequired:     i.MinRequired,
		MaxCapacity:     i.MaxCapacity,
		AvgUsagePerDay:  i.AvgUsagePerDay,
		RestockLeadTime: i.RestockLeadTime,
		UnitCost:        i.UnitCost,
		VendorName:      i.VendorName,
	}
}

// ItemFields is an item without identity, as posted for ad-hoc predictions.
type ItemFields struct {
	ItemName        string          `json:"item_name"`
	ItemType        string          `json:"item_type"`
	CurrentStock    int             `json:"current_stock"`
	MinRequired     int             `json:"min_required"`
	MaxCapacity     int             `json:"max_capacity"`
	AvgUsagePerDay  int             `json:"avg_usage_per_day"`
	RestockLeadTime int             `json:"restock_lead_time"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	VendorName      *string         `json:"vendor_name,omitempty"`
}

// Prediction is the latest demand estimate shown on the dashboard, one per item.
type Prediction struct {
	ID                 uuid.UUID     `json:"id" db:"id"`
	ItemID             uuid.UUID     `json:"item_id" db:"item_id"`
	ItemName           string        `json:"item_name,omitempty" db:"item_name"`
	EstimatedDemand    int           `json:"estimated_demand" db:"estimated_demand"`
	InventoryShortfall int           `json:"inventory_shortfall" db:"inventory_shortfall"`
	ReplenishmentNeeds int           `json:"replenishment_needs" db:"replenishment_needs"`
	CreatedBy          uuid.NullUUID `json:"created_by" db:"created_by"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
}

// PredictionHistory keeps every prediction run with its model attribution.
type PredictionHistory struct {
	ID                   uuid.UUID         `json:"id" db:"id"`
	ItemID               uuid.UUID         `json:"item_id" db:"item_id"`
	ModelID              uuid.NullUUID     `json:"model_id" db:"model_id"`
	ModelVersion         string            `json:"model_version" db:"model_version"`
	EstimatedDemand      int               `json:"estimated_demand" db:"estimated_demand"`
	InventoryShortfall   int               `json:"inventory_shortfall" db:"inventory_shortfall"`
	ReplenishmentNeeds   int               `json:"replenishment_needs" db:"replenishment_needs"`
	ConfidenceScore      float64           `json:"confidence_score" db:"confidence_score"`
	FeatureValues        datatypes.JSONMap `json:"feature_values" db:"feature_values"`
	FeatureContributions datatypes.JSONMap `json:"feature_contributions" db:"feature_contributions"`
	CreatedBy            uuid.NullUUID     `json:"created_by" db:"created_by"`
	CreatedAt            time.Time         `json:"created_at" db:"created_at"`
}

// ModelRegistry describes a versioned forecast formula configuration.
type ModelRegistry struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	ModelName         string            `json:"model_name" db:"model_name"`
	ModelVersion      string            `json:"model_version" db:"model_version"`
	MAE               *float64          `json:"mae" db:"mae"`
	RMSE              *float64          `json:"rmse" db:"rmse"`
	R2                *float64          `json:"r2_score" db:"r2_score"`
	Hyperparameters   datatypes.JSONMap `json:"hyperparameters" db:"hyperparameters"`
	FeatureImportance datatypes.JSONMap `json:"feature_importance" db:"feature_importance"`
	IsActive          bool              `json:"is_active" db:"is_active"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
}

// CostOptimization is one optimization run for one item.
type CostOptimization struct {
	ID                   uuid.UUID         `json:"id" db:"id"`
	ItemID               uuid.UUID         `json:"item_id" db:"item_id"`
	EOQ                  int               `json:"eoq" db:"eoq"`
	ReorderPoint         int               `json:"reorder_point" db:"reorder_point"`
	SafetyStock          int               `json:"safety_stock" db:"safety_stock"`
	OptimalOrderQuantity float64           `json:"optimal_order_quantity" db:"optimal_order_quantity"`
	EstimatedAnnualCost  float64           `json:"estimated_annual_cost" db:"estimated_annual_cost"`
	Parameters           datatypes.JSONMap `json:"parameters" db:"parameters"`
	CreatedBy            uuid.NullUUID     `json:"created_by" db:"created_by"`
	CreatedAt            time.Time         `json:"created_at" db:"created_at"`
}

// AlertHistory is a generated notification.
type AlertHistory struct {
	ID              uuid.UUID         `json:"id" db:"id"`
	AlertType       string            `json:"alert_type" db:"alert_type"`
	Severity        Severity          `json:"severity" db:"severity"`
	Title           string            `json:"title" db:"title"`
	Message         string            `json:"message" db:"message"`
	Metadata        datatypes.JSONMap `json:"metadata" db:"metadata"`
	IsRead          bool              `json:"is_read" db:"is_read"`
	ItemID          uuid.NullUUID     `json:"item_id" db:"item_id"`
	ResolvedAt      *time.Time        `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedBy      uuid.NullUUID     `json:"resolved_by" db:"resolved_by"`
	ResolutionNotes *string           `json:"resolution_notes,omitempty" db:"resolution_notes"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
}

// Identity is the caller resolved from a bearer credential.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

// UserRef returns the caller as a nullable column value.
func (i *Identity) UserRef() uuid.NullUUID {
	if i == nil || i.UserID == uuid.Nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: i.UserID, Valid: true}
}

// ItemFilter narrows inventory listings.
type ItemFilter struct {
	ItemType ItemType
	LowStock bool
}

// AlertFilter narrows alert listings.
type AlertFilter struct {
	UnreadOnly bool
	Severity   Severity
	Limit      int
}
