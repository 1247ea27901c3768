package postgres

import (
	"context"
	"fmt"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type optimizationRepository struct {
	db *DB
}

func NewOptimizationRepository(db *DB) *optimizationRepository {
	return &optimizationRepository{db: db}
}

func (r *optimizationRepository) InsertOptimization(ctx context.Context, opt *domain.CostOptimization) error {
	if opt.ID == uuid.Nil {
		opt.ID = uuid.New()
	}

	query := `
		INSERT INTO cost_optimizations (
			id, item_id, eoq, reorder_point, safety_stock, optimal_order_quantity,
			estimated_annual_cost, parameters, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		opt.ID,
		opt.ItemID,
		opt.EOQ,
		opt.ReorderPoint,
		opt.SafetyStock,
		opt.OptimalOrderQuantity,
		opt.EstimatedAnnualCost,
		jsonOrEmpty(opt.Parameters),
		opt.CreatedBy,
	).Scan(&opt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cost optimization: %w", err)
	}

	return nil
}

func (r *optimizationRepository) ListOptimizations(ctx context.Context, itemID uuid.NullUUID, limit int) ([]domain.CostOptimization, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, item_id, eoq, reorder_point, safety_stock, optimal_order_quantity,
			estimated_annual_cost, parameters, created_by, created_at
		FROM cost_optimizations
		WHERE ($1::uuid IS NULL OR item_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	var optimizations []domain.CostOptimization
	if err := sqlx.SelectContext(ctx, r.db, &optimizations, query, itemID, limit); err != nil {
		return nil, fmt.Errorf("failed to list cost optimizations: %w", err)
	}

	return optimizations, nil
}
