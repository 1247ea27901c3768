package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SuhaniChatterjee/medstock-wise/internal/cache"
	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/SuhaniChatterjee/medstock-wise/internal/repository"
	"github.com/SuhaniChatterjee/medstock-wise/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var tracer = telemetry.Tracer("service")

// loadItems resolves the items a batch request targets. item_id wins over
// run_all; a request selecting nothing is treated like an empty result.
func loadItems(ctx context.Context, repo repository.InventoryRepository, runAll bool, itemID string) ([]domain.InventoryItem, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID != "" {
		id, err := uuid.Parse(itemID)
		if err != nil {
			return nil, fmt.Errorf("%w: item_id %q is not a uuid", domain.ErrInvalidItem, itemID)
		}
		item, err := repo.GetItem(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoItemsFound
		}
		if err != nil {
			return nil, err
		}
		return []domain.InventoryItem{*item}, nil
	}

	if !runAll {
		return nil, domain.ErrNoItemsFound
	}

	items, err := repo.ListItems(ctx, domain.ItemFilter{})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrNoItemsFound
	}
	return items, nil
}

func itemFailure(item domain.InventoryItem, err error) domain.ItemFailure {
	return domain.ItemFailure{
		ItemID:   item.ID.String(),
		ItemName: item.ItemName,
		Error:    err.Error(),
	}
}

func invalidateDashboard(ctx context.Context, c cache.DashboardSummaryCache) {
	if err := c.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("dashboard: cache invalidation failed")
	}
}

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func parseOptionalID(raw string) (uuid.NullUUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.NullUUID{}, fmt.Errorf("%w: %q is not a uuid", domain.ErrInvalidItem, raw)
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}
