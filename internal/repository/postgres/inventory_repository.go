package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const itemColumns = `
	id, item_name, item_type, current_stock, min_required, max_capacity,
	unit_cost, avg_usage_per_day, restock_lead_time, vendor_name,
	created_by, created_at, updated_at`

type inventoryRepository struct {
	db *DB
}

func NewInventoryRepository(db *DB) *inventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.InventoryItem, error) {
	query := `SELECT` + itemColumns + ` FROM inventory_items WHERE 1=1`

	var args []interface{}
	var conditions []string
	argCounter := 1

	if filter.ItemType != "" {
		conditions = append(conditions, fmt.Sprintf("item_type = $%d", argCounter))
		args = append(args, filter.ItemType)
		argCounter++
	}

	if filter.LowStock {
		conditions = append(conditions, "current_stock < min_required")
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY item_name"

	var items []domain.InventoryItem
	if err := sqlx.SelectContext(ctx, r.db, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list inventory items: %w", err)
	}

	return items, nil
}

func (r *inventoryRepository) GetItem(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	query := `SELECT` + itemColumns + ` FROM inventory_items WHERE id = $1`

	var item domain.InventoryItem
	if err := sqlx.GetContext(ctx, r.db, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("inventory item %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}

	return &item, nil
}

func (r *inventoryRepository) CreateItem(ctx context.Context, item *domain.InventoryItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	query := `
		INSERT INTO inventory_items (
			id, item_name, item_type, current_stock, min_required, max_capacity,
			unit_cost, avg_usage_per_day, restock_lead_time, vendor_name, created_by
		) VALUES (
			:id, :item_name, :item_type, :current_stock, :min_required, :max_capacity,
			:unit_cost, :avg_usage_per_day, :restock_lead_time, :vendor_name, :created_by
		)
		RETURNING created_at, updated_at
	`

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, item)
	if err != nil {
		return fmt.Errorf("failed to insert inventory item: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&item.CreatedAt, &item.UpdatedAt); err != nil {
			return fmt.Errorf("failed to read inventory item timestamps: %w", err)
		}
	}

	return rows.Err()
}

func (r *inventoryRepository) UpdateItem(ctx context.Context, item *domain.InventoryItem) error {
	query := `
		UPDATE inventory_items SET
			item_name = :item_name,
			item_type = :item_type,
			current_stock = :current_stock,
			min_required = :min_required,
			max_capacity = :max_capacity,
			unit_cost = :unit_cost,
			avg_usage_per_day = :avg_usage_per_day,
			restock_lead_time = :restock_lead_time,
			vendor_name = :vendor_name,
			updated_at = NOW()
		WHERE id = :id
	`

	res, err := sqlx.NamedExecContext(ctx, r.db, query, item)
	if err != nil {
		return fmt.Errorf("failed to update inventory item: %w", err)
	}

	return expectAffected(res, "inventory item", item.ID)
}

func (r *inventoryRepository) Restock(ctx context.Context, id uuid.UUID, quantity int) (*domain.InventoryItem, error) {
	query := `
		UPDATE inventory_items
		SET current_stock = LEAST(current_stock + $2, GREATEST(max_capacity, current_stock)),
			updated_at = NOW()
		WHERE id = $1
		RETURNING` + itemColumns

	var item domain.InventoryItem
	if err := sqlx.GetContext(ctx, r.db, &item, query, id, quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("inventory item %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to restock inventory item: %w", err)
	}

	return &item, nil
}

func (r *inventoryRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}

	return expectAffected(res, "inventory item", id)
}

func (r *inventoryRepository) UpsertItemsByName(ctx context.Context, items []*domain.InventoryItem) (int, error) {
	query := `
		INSERT INTO inventory_items (
			id, item_name, item_type, current_stock, min_required, max_capacity,
			unit_cost, avg_usage_per_day, restock_lead_time, vendor_name, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (item_name)
		DO UPDATE SET
			item_type = EXCLUDED.item_type,
			current_stock = EXCLUDED.current_stock,
			min_required = EXCLUDED.min_required,
			max_capacity = EXCLUDED.max_capacity,
			unit_cost = EXCLUDED.unit_cost,
			avg_usage_per_day = EXCLUDED.avg_usage_per_day,
			restock_lead_time = EXCLUDED.restock_lead_time,
			vendor_name = EXCLUDED.vendor_name,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	count := 0
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, item := range items {
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			err := stmt.QueryRowxContext(ctx,
				item.ID,
				item.ItemName,
				item.ItemType,
				item.CurrentStock,
				item.MinRequired,
				item.MaxCapacity,
				item.UnitCost,
				item.AvgUsagePerDay,
				item.RestockLeadTime,
				item.VendorName,
				item.CreatedBy,
			).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to upsert inventory item %q: %w", item.ItemName, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func expectAffected(res sql.Result, entity string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
