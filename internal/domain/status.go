package domain

import (
	"fmt"
	"strings"
)

type ItemType string

const (
	ItemTypeEquipment  ItemType = "Equipment"
	ItemTypeConsumable ItemType = "Consumable"
)

// Free-text categories found in uploaded sheets and older demo rows. The store
// only accepts the two canonical types.
var itemTypeAliases = map[string]ItemType{
	"equipment":        ItemTypeEquipment,
	"device":           ItemTypeEquipment,
	"devices":          ItemTypeEquipment,
	"machine":          ItemTypeEquipment,
	"machines":         ItemTypeEquipment,
	"consumable":       ItemTypeConsumable,
	"consumables":      ItemTypeConsumable,
	"ppe":              ItemTypeConsumable,
	"medical supplies": ItemTypeConsumable,
	"medical supply":   ItemTypeConsumable,
	"supplies":         ItemTypeConsumable,
	"medication":       ItemTypeConsumable,
	"medications":      ItemTypeConsumable,
}

// ParseItemType normalizes a category label (case-insensitive) to an ItemType.
func ParseItemType(label string) (ItemType, error) {
	key := strings.Join(strings.Fields(strings.ToLower(label)), " ")
	if t, ok := itemTypeAliases[key]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidItemType, label)
}

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

var severities = map[string]Severity{
	"info":     SeverityInfo,
	"warning":  SeverityWarning,
	"critical": SeverityCritical,
}

// ParseSeverity returns the severity for a given label (case-insensitive).
func ParseSeverity(label string) (Severity, bool) {
	s, ok := severities[strings.ToLower(strings.TrimSpace(label))]
	return s, ok
}

const (
	AlertTypeCriticalStock = "critical_stock"
	AlertTypeLowStock      = "low_stock"
	AlertTypeBelowMinimum  = "below_minimum"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// ParseRole maps a token claim to a Role; unknown values are treated as staff.
func ParseRole(label string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(label))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleManager:
		return RoleManager
	default:
		return RoleStaff
	}
}
