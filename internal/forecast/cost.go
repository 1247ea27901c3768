package forecast

import (
	"fmt"
	"math"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
)

const daysPerYear = 365

// CostParams are the fixed cost assumptions of the optimizer.
type CostParams struct {
	OrderingCost      float64 // per order
	HoldingRate       float64 // fraction of unit cost per year
	ServiceZ          float64 // service level z-score
	DemandVariability float64 // demand std dev as a fraction of daily usage
}

func DefaultCostParams() CostParams {
	return CostParams{
		OrderingCost:      50,
		HoldingRate:       0.25,
		ServiceZ:          1.65,
		DemandVariability: 0.2,
	}
}

// CostResult holds the optimizer outputs. EOQ, ReorderPoint and SafetyStock are
// rounded up; the remaining fields keep their precision.
type CostResult struct {
	EOQ                  int
	ReorderPoint         int
	SafetyStock          int
	OptimalOrderQuantity float64
	EstimatedAnnualCost  float64

	AnnualDemand       float64
	HoldingCostPerUnit float64
	NumberOfOrders     float64
	AnnualOrderingCost float64
	AnnualHoldingCost  float64
}

// Optimize computes the economic order quantity, safety stock and reorder point
// for one item.
//
// A zero unit cost (or holding rate) leaves EOQ undefined and fails with
// ErrZeroHoldingCost. An item with demand but no order capacity fails with
// ErrZeroOrderQuantity. An item without demand optimizes to zero orders.
func Optimize(item domain.ItemFields, params CostParams) (CostResult, error) {
	unitCost := item.UnitCost.InexactFloat64()
	annualDemand := float64(item.AvgUsagePerDay) * daysPerYear
	holdingCost := unitCost * params.HoldingRate
	if holdingCost <= 0 {
		return CostResult{}, fmt.Errorf("%w: unit cost %s, holding rate %.2f",
			domain.ErrZeroHoldingCost, item.UnitCost.String(), params.HoldingRate)
	}

	eoq := math.Sqrt(2 * annualDemand * params.OrderingCost / holdingCost)

	demandStdDev := float64(item.AvgUsagePerDay) * params.DemandVariability
	leadTimeStdDev := math.Sqrt(float64(item.RestockLeadTime))
	safetyStock := params.ServiceZ * demandStdDev * leadTimeStdDev

	reorderPoint := float64(item.AvgUsagePerDay*item.RestockLeadTime) + safetyStock

	optimalQty := math.Min(math.Ceil(eoq), float64(item.MaxCapacity))

	var orders float64
	if optimalQty > 0 {
		orders = annualDemand / optimalQty
	} else if annualDemand > 0 {
		return CostResult{}, fmt.Errorf("%w: max capacity %d", domain.ErrZeroOrderQuantity, item.MaxCapacity)
	}

	orderingCost := orders * params.OrderingCost
	averageInventory := optimalQty/2 + safetyStock
	annualHolding := averageInventory * holdingCost
	total := orderingCost + annualHolding + annualDemand*unitCost

	return CostResult{
		EOQ:                  ceilInt(eoq),
		ReorderPoint:         ceilInt(reorderPoint),
		SafetyStock:          ceilInt(safetyStock),
		OptimalOrderQuantity: optimalQty,
		EstimatedAnnualCost:  roundFloat(total, 2),
		AnnualDemand:         annualDemand,
		HoldingCostPerUnit:   holdingCost,
		NumberOfOrders:       orders,
		AnnualOrderingCost:   orderingCost,
		AnnualHoldingCost:    annualHolding,
	}, nil
}

// ShouldReorder reports whether stock has reached the reorder point.
func ShouldReorder(currentStock, reorderPoint int) bool {
	return currentStock <= reorderPoint
}

// Parameters is the record of inputs and intermediates stored with a run.
func (r CostResult) Parameters(params CostParams) map[string]interface{} {
	return map[string]interface{}{
		"ordering_cost":         params.OrderingCost,
		"holding_cost_rate":     params.HoldingRate,
		"service_level_z":       params.ServiceZ,
		"demand_variability":    params.DemandVariability,
		"annual_demand":         r.AnnualDemand,
		"holding_cost_per_unit": r.HoldingCostPerUnit,
		"number_of_orders":      roundFloat(r.NumberOfOrders, 4),
		"annual_ordering_cost":  roundFloat(r.AnnualOrderingCost, 2),
		"annual_holding_cost":   roundFloat(r.AnnualHoldingCost, 2),
	}
}
