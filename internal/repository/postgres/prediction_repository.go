package postgres

import (
	"context"
	"fmt"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gorm.io/datatypes"
)

type predictionRepository struct {
	db *DB
}

func NewPredictionRepository(db *DB) *predictionRepository {
	return &predictionRepository{db: db}
}

func (r *predictionRepository) SavePrediction(ctx context.Context, p *domain.Prediction, h *domain.PredictionHistory) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		upsert := `
			INSERT INTO predictions (
				id, item_id, estimated_demand, inventory_shortfall, replenishment_needs, created_by, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (item_id)
			DO UPDATE SET
				estimated_demand = EXCLUDED.estimated_demand,
				inventory_shortfall = EXCLUDED.inventory_shortfall,
				replenishment_needs = EXCLUDED.replenishment_needs,
				created_by = EXCLUDED.created_by,
				created_at = NOW()
			RETURNING id, created_at
		`
		err := tx.QueryRowxContext(ctx, upsert,
			p.ID, p.ItemID, p.EstimatedDemand, p.InventoryShortfall, p.ReplenishmentNeeds, p.CreatedBy,
		).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert prediction: %w", err)
		}

		insert := `
			INSERT INTO prediction_history (
				id, item_id, model_id, model_version, estimated_demand, inventory_shortfall,
				replenishment_needs, confidence_score, feature_values, feature_contributions, created_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING created_at
		`
		err = tx.QueryRowxContext(ctx, insert,
			h.ID, h.ItemID, h.ModelID, h.ModelVersion, h.EstimatedDemand, h.InventoryShortfall,
			h.ReplenishmentNeeds, h.ConfidenceScore, jsonOrEmpty(h.FeatureValues),
			jsonOrEmpty(h.FeatureContributions), h.CreatedBy,
		).Scan(&h.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert prediction history: %w", err)
		}

		return nil
	})
}

func (r *predictionRepository) ListLatest(ctx context.Context) ([]domain.Prediction, error) {
	query := `
		SELECT p.id, p.item_id, i.item_name, p.estimated_demand, p.inventory_shortfall,
			p.replenishment_needs, p.created_by, p.created_at
		FROM predictions p
		JOIN inventory_items i ON i.id = p.item_id
		ORDER BY p.replenishment_needs DESC, i.item_name
	`

	var predictions []domain.Prediction
	if err := sqlx.SelectContext(ctx, r.db, &predictions, query); err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}

	return predictions, nil
}

func (r *predictionRepository) ListHistory(ctx context.Context, itemID uuid.NullUUID, limit int) ([]domain.PredictionHistory, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, item_id, model_id, model_version, estimated_demand, inventory_shortfall,
			replenishment_needs, confidence_score, feature_values, feature_contributions,
			created_by, created_at
		FROM prediction_history
		WHERE ($1::uuid IS NULL OR item_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	var history []domain.PredictionHistory
	if err := sqlx.SelectContext(ctx, r.db, &history, query, itemID, limit); err != nil {
		return nil, fmt.Errorf("failed to list prediction history: %w", err)
	}

	return history, nil
}

// jsonOrEmpty keeps NOT NULL jsonb columns from receiving NULL.
func jsonOrEmpty(m datatypes.JSONMap) datatypes.JSONMap {
	if m == nil {
		return datatypes.JSONMap{}
	}
	return m
}
