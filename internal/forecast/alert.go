package forecast

import (
	"fmt"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/google/uuid"
)

// AlertThresholds are stock percentages of min_required. At or below Critical
// raises a critical alert, below Warning a warning.
type AlertThresholds struct {
	Critical float64
	Warning  float64
}

func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{Critical: 10, Warning: 20}
}

// StockPercentage returns current stock as a percentage of min_required.
func StockPercentage(currentStock, minRequired int) (float64, error) {
	if minRequired == 0 {
		return 0, domain.ErrZeroMinRequired
	}
	// multiply first so whole percentages stay exact
	return float64(currentStock) * 100 / float64(minRequired), nil
}

// EvaluateStock returns a candidate alert when the item's stock percentage falls
// into the critical or warning band. Items without a minimum never alert.
func EvaluateStock(item domain.InventoryItem, predictedDemand int, th AlertThresholds) (*domain.AlertHistory, bool) {
	pct, err := StockPercentage(item.CurrentStock, item.MinRequired)
	if err != nil {
		return nil, false
	}

	var (
		severity  domain.Severity
		alertType string
		title     string
	)
	switch {
	case pct <= th.Critical:
		severity = domain.SeverityCritical
		alertType = domain.AlertTypeCriticalStock
		title = "Critical Stock Alert: " + item.ItemName
	case pct < th.Warning:
		severity = domain.SeverityWarning
		alertType = domain.AlertTypeLowStock
		title = "Low Stock Warning: " + item.ItemName
	default:
		return nil, false
	}

	return &domain.AlertHistory{
		ID:        uuid.New(),
		AlertType: alertType,
		Severity:  severity,
		Title:     title,
		Message: fmt.Sprintf("%s is at %.1f%% of minimum required stock (%d of %d units).",
			item.ItemName, pct, item.CurrentStock, item.MinRequired),
		Metadata: map[string]interface{}{
			"current_stock":    item.CurrentStock,
			"min_required":     item.MinRequired,
			"predicted_demand": predictedDemand,
			"stock_percentage": roundFloat(pct, 1),
		},
		ItemID: uuid.NullUUID{UUID: item.ID, Valid: item.ID != uuid.Nil},
	}, true
}

// BelowMinimumAlert is the informational alert raised for seeded items whose
// stock is under min_required.
func BelowMinimumAlert(item domain.InventoryItem, predictedDemand int) (*domain.AlertHistory, bool) {
	if item.CurrentStock >= item.MinRequired {
		return nil, false
	}
	severity := domain.SeverityWarning
	if pct, err := StockPercentage(item.CurrentStock, item.MinRequired); err == nil && pct <= DefaultAlertThresholds().Critical {
		severity = domain.SeverityCritical
	}
	return &domain.AlertHistory{
		ID:        uuid.New(),
		AlertType: domain.AlertTypeBelowMinimum,
		Severity:  severity,
		Title:     "Below Minimum Stock: " + item.ItemName,
		Message: fmt.Sprintf("%s has %d units in stock, below the minimum of %d.",
			item.ItemName, item.CurrentStock, item.MinRequired),
		Metadata: map[string]interface{}{
			"current_stock":    item.CurrentStock,
			"min_required":     item.MinRequired,
			"predicted_demand": predictedDemand,
		},
		ItemID: uuid.NullUUID{UUID: item.ID, Valid: item.ID != uuid.Nil},
	}, true
}
