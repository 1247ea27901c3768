package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type alertRepository struct {
	db *DB
}

func NewAlertRepository(db *DB) *alertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) InsertAlerts(ctx context.Context, alerts []*domain.AlertHistory) error {
	if len(alerts) == 0 {
		return nil
	}

	query := `
		INSERT INTO alert_history (
			id, alert_type, severity, title, message, metadata, is_read, item_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, alert := range alerts {
			if alert.ID == uuid.Nil {
				alert.ID = uuid.New()
			}
			err := stmt.QueryRowxContext(ctx,
				alert.ID,
				alert.AlertType,
				alert.Severity,
				alert.Title,
				alert.Message,
				jsonOrEmpty(alert.Metadata),
				alert.IsRead,
				alert.ItemID,
			).Scan(&alert.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert alert: %w", err)
			}
		}
		return nil
	})
}

func (r *alertRepository) ListAlerts(ctx context.Context, filter domain.AlertFilter) ([]domain.AlertHistory, error) {
	query := `
		SELECT id, alert_type, severity, title, message, metadata, is_read, item_id,
			resolved_at, resolved_by, resolution_notes, created_at
		FROM alert_history
		WHERE 1=1
	`

	var args []interface{}
	var conditions []string
	argCounter := 1

	if filter.UnreadOnly {
		conditions = append(conditions, "is_read = FALSE")
	}

	if filter.Severity != "" {
		conditions = append(conditions, fmt.Sprintf("severity = $%d", argCounter))
		args = append(args, filter.Severity)
		argCounter++
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argCounter)
	args = append(args, limit)

	var alerts []domain.AlertHistory
	if err := sqlx.SelectContext(ctx, r.db, &alerts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	return alerts, nil
}

func (r *alertRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE alert_history SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}

	return expectAffected(res, "alert", id)
}

func (r *alertRepository) Resolve(ctx context.Context, id uuid.UUID, resolvedBy uuid.NullUUID, notes *string) error {
	query := `
		UPDATE alert_history
		SET is_read = TRUE, resolved_at = $2, resolved_by = $3, resolution_notes = $4
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, nowUTC(), resolvedBy, notes)
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}

	return expectAffected(res, "alert", id)
}
