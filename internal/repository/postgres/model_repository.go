package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type modelRepository struct {
	db *DB
}

func NewModelRepository(db *DB) *modelRepository {
	return &modelRepository{db: db}
}

func (r *modelRepository) GetActiveModel(ctx context.Context) (*domain.ModelRegistry, error) {
	query := `
		SELECT id, model_name, model_version, mae, rmse, r2_score,
			hyperparameters, feature_importance, is_active, created_at
		FROM model_registry
		WHERE is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`

	var model domain.ModelRegistry
	if err := sqlx.GetContext(ctx, r.db, &model, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoActiveModel
		}
		return nil, fmt.Errorf("failed to load active model: %w", err)
	}

	return &model, nil
}

func (r *modelRepository) UpsertModel(ctx context.Context, model *domain.ModelRegistry) error {
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}

	query := `
		INSERT INTO model_registry (
			id, model_name, model_version, mae, rmse, r2_score,
			hyperparameters, feature_importance, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (model_version)
		DO UPDATE SET
			model_name = EXCLUDED.model_name,
			mae = EXCLUDED.mae,
			rmse = EXCLUDED.rmse,
			r2_score = EXCLUDED.r2_score,
			hyperparameters = EXCLUDED.hyperparameters,
			feature_importance = EXCLUDED.feature_importance,
			is_active = EXCLUDED.is_active
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		model.ID,
		model.ModelName,
		model.ModelVersion,
		model.MAE,
		model.RMSE,
		model.R2,
		jsonOrEmpty(model.Hyperparameters),
		jsonOrEmpty(model.FeatureImportance),
		model.IsActive,
	).Scan(&model.ID, &model.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert model %s: %w", model.ModelVersion, err)
	}

	return nil
}
