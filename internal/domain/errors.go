package domain

import "errors"

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNoActiveModel     = errors.New("no active model found")
	ErrNoItemsFound      = errors.New("no inventory items found")
	ErrNotFound          = errors.New("not found")
	ErrPersistence       = errors.New("store persistence failure")
	ErrInvalidItem       = errors.New("invalid inventory item")
	ErrInvalidItemType   = errors.New("item_type must be Equipment or Consumable")
	ErrZeroHoldingCost   = errors.New("holding cost per unit is zero")
	ErrZeroOrderQuantity = errors.New("optimal order quantity is zero")
	ErrZeroMinRequired   = errors.New("min_required is zero")
)
