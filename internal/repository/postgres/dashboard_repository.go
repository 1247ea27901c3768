package postgres

import (
	"context"
	"fmt"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/jmoiron/sqlx"
)

type dashboardRepository struct {
	db *DB
}

func NewDashboardRepository(db *DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) GetSummary(ctx context.Context, criticalPct float64) (*domain.DashboardSummary, error) {
	query := `
		SELECT
			COUNT(*) AS total_items,
			COALESCE(SUM(current_stock * unit_cost), 0)::float8 AS total_stock_value,
			COUNT(*) FILTER (WHERE current_stock < min_required) AS low_stock_items,
			COUNT(*) FILTER (
				WHERE min_required > 0 AND current_stock * 100.0 <= min_required * $1
			) AS critical_items,
			(SELECT COUNT(*) FROM alert_history WHERE is_read = FALSE) AS unread_alerts
		FROM inventory_items
	`

	var summary domain.DashboardSummary
	if err := sqlx.GetContext(ctx, r.db, &summary, query, criticalPct); err != nil {
		return nil, fmt.Errorf("error getting dashboard summary: %w", err)
	}

	return &summary, nil
}
