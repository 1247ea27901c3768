package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// maxUnitCost is the first amount that no longer fits NUMERIC(12, 2).
var maxUnitCost = decimal.New(1, 10)

// Normalize trims text fields, canonicalizes item_type and checks the numeric
// bounds enforced by the store. Errors wrap ErrInvalidItem or ErrInvalidItemType.
func (f *ItemFields) Normalize() error {
	f.ItemName = strings.TrimSpace(f.ItemName)
	if f.ItemName == "" {
		return fmt.Errorf("%w: item_name is required", ErrInvalidItem)
	}

	t, err := ParseItemType(f.ItemType)
	if err != nil {
		return err
	}
	f.ItemType = string(t)

	for _, n := range []struct {
		name  string
		value int
	}{
		{"current_stock", f.CurrentStock},
		{"min_required", f.MinRequired},
		{"max_capacity", f.MaxCapacity},
		{"avg_usage_per_day", f.AvgUsagePerDay},
		{"restock_lead_time", f.RestockLeadTime},
	} {
		if n.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidItem, n.name)
		}
		if n.value > math.MaxInt32 {
			return fmt.Errorf("%w: %s is out of range", ErrInvalidItem, n.name)
		}
	}
	if f.UnitCost.IsNegative() {
		return fmt.Errorf("%w: unit_cost must not be negative", ErrInvalidItem)
	}
	f.UnitCost = f.UnitCost.Round(2)
	if f.UnitCost.GreaterThanOrEqual(maxUnitCost) {
		return fmt.Errorf("%w: unit_cost is out of range", ErrInvalidItem)
	}

	if f.VendorName != nil {
		v := strings.TrimSpace(*f.VendorName)
		if v == "" {
			f.VendorName = nil
		} else {
			f.VendorName = &v
		}
	}
	return nil
}

// Apply copies validated fields onto an item.
func (i *InventoryItem) Apply(f ItemFields) {
	i.ItemName = f.ItemName
	i.ItemType = ItemType(f.ItemType)
	i.CurrentStock = f.CurrentStock
	i.MinRequired = f.MinRequired
	i.MaxCapacity = f.MaxCapacity
	i.UnitCost = f.UnitCost
	i.AvgUsagePerDay = f.AvgUsagePerDay
	i.RestockLeadTime = f.RestockLeadTime
	i.VendorName = f.VendorName
}
