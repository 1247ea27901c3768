package forecast

import "github.com/SuhaniChatterjee/medstock-wise/internal/domain"

// DemandEstimate is the result of Estimate.
type DemandEstimate struct {
	EstimatedDemand      int
	InventoryShortfall   int
	ReplenishmentNeeds   int
	FeatureContributions map[string]float64
}

// Estimate computes lead-time demand and the stock gaps for one item.
//
// Demand is usage per day times lead time. Shortfall is how far stock sits below
// the minimum, replenishment how far it sits below lead-time demand; both floor at 0.
func Estimate(item domain.ItemFields, model ModelConfig) DemandEstimate {
	demand := item.AvgUsagePerDay * item.RestockLeadTime

	demandBase := float64(demand)
	if demand == 0 {
		demandBase = 1
	}
	capacityBase := float64(item.MaxCapacity)
	if item.MaxCapacity == 0 {
		capacityBase = 1
	}

	c := model.Coefficients
	return DemandEstimate{
		EstimatedDemand:    demand,
		InventoryShortfall: maxInt(0, item.MinRequired-item.CurrentStock),
		ReplenishmentNeeds: maxInt(0, demand-item.CurrentStock),
		FeatureContributions: map[string]float64{
			FeatureUsage:       roundFloat(c.Usage*float64(item.AvgUsagePerDay)/demandBase, 4),
			FeatureLeadTime:    roundFloat(c.LeadTime*float64(item.RestockLeadTime)/demandBase, 4),
			FeatureStock:       roundFloat(c.Stock*float64(item.CurrentStock)/capacityBase, 4),
			FeatureMinRequired: roundFloat(c.MinRequired*float64(item.MinRequired)/capacityBase, 4),
		},
	}
}

// FeatureValues returns the raw inputs recorded next to a prediction.
func FeatureValues(item domain.ItemFields) map[string]interface{} {
	return map[string]interface{}{
		FeatureUsage:       item.AvgUsagePerDay,
		FeatureLeadTime:    item.RestockLeadTime,
		FeatureStock:       item.CurrentStock,
		FeatureMinRequired: item.MinRequired,
		"max_capacity":     item.MaxCapacity,
		"unit_cost":        item.UnitCost.InexactFloat64(),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
