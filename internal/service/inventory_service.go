package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/SuhaniChatterjee/medstock-wise/internal/analytics"
	"github.com/SuhaniChatterjee/medstock-wise/internal/cache"
	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/SuhaniChatterjee/medstock-wise/internal/repository"
	"github.com/SuhaniChatterjee/medstock-wise/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type InventoryService struct {
	items   repository.InventoryRepository
	cache   cache.DashboardSummaryCache
	archive storage.ObjectStorage
	now     func() time.Time
}

func NewInventoryService(store *repository.Store, cacheImpl cache.DashboardSummaryCache, archive storage.ObjectStorage) *InventoryService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	if archive == nil {
		archive = storage.NewNoopStorage()
	}
	return &InventoryService{items: store.Inventory, cache: cacheImpl, archive: archive, now: time.Now}
}

func (s *InventoryService) List(ctx context.Context, filter domain.ItemFilter) ([]domain.InventoryItem, error) {
	items, err := s.items.ListItems(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = make([]domain.InventoryItem, 0)
	}
	return items, nil
}

func (s *InventoryService) Get(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	return s.items.GetItem(ctx, id)
}

func (s *InventoryService) Create(ctx context.Context, identity *domain.Identity, fields domain.ItemFields) (*domain.InventoryItem, error) {
	if err := fields.Normalize(); err != nil {
		return nil, err
	}

	item := &domain.InventoryItem{ID: uuid.New(), CreatedBy: identity.UserRef()}
	item.Apply(fields)
	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	invalidateDashboard(ctx, s.cache)
	return item, nil
}

func (s *InventoryService) Update(ctx context.Context, id uuid.UUID, fields domain.ItemFields) (*domain.InventoryItem, error) {
	if err := fields.Normalize(); err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Apply(fields)
	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	invalidateDashboard(ctx, s.cache)
	return item, nil
}

// Restock adds quantity units, never going past max capacity.
func (s *InventoryService) Restock(ctx context.Context, id uuid.UUID, quantity int) (*domain.InventoryItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidItem)
	}

	item, err := s.items.Restock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}

	invalidateDashboard(ctx, s.cache)
	return item, nil
}

func (s *InventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.items.DeleteItem(ctx, id); err != nil {
		return err
	}
	invalidateDashboard(ctx, s.cache)
	return nil
}

// Import upserts the valid rows of an uploaded CSV or XLSX sheet by item name
// and archives the raw file. A name repeated in the sheet keeps its last row.
func (s *InventoryService) Import(ctx context.Context, identity *domain.Identity, filename string, data []byte) (*domain.ImportResult, error) {
	ctx, span := tracer.Start(ctx, "InventoryService.Import")
	defer span.End()

	var err error
	sheet := data
	if analytics.IsSpreadsheet(filename) {
		if sheet, err = analytics.ConvertXLSXToCSV(data); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidItem, err)
		}
	}

	parsed, err := analytics.ParseInventoryCSV(bytes.NewReader(sheet))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidItem, err)
	}

	rowErrors := append([]domain.ImportRowError(nil), parsed.Errors...)
	lastRow := make(map[string]int)
	for i, row := range parsed.Rows {
		lastRow[strings.ToLower(row.Fields.ItemName)] = i
	}

	items := make([]*domain.InventoryItem, 0, len(lastRow))
	for i, row := range parsed.Rows {
		if keep := lastRow[strings.ToLower(row.Fields.ItemName)]; keep != i {
			rowErrors = append(rowErrors, domain.ImportRowError{
				Row:   row.Row,
				Error: fmt.Sprintf("duplicate item_name %q, superseded by row %d", row.Fields.ItemName, parsed.Rows[keep].Row),
			})
			continue
		}
		item := &domain.InventoryItem{CreatedBy: identity.UserRef()}
		item.Apply(row.Fields)
		items = append(items, item)
	}

	imported := 0
	if len(items) > 0 {
		imported, err = s.items.UpsertItemsByName(ctx, items)
		if err != nil {
			return nil, fmt.Errorf("%w: import: %v", domain.ErrPersistence, err)
		}
		invalidateDashboard(ctx, s.cache)
	}

	result := &domain.ImportResult{
		Success:  true,
		Imported: imported,
		Skipped:  len(rowErrors),
		Errors:   rowErrors,
		Mapping:  parsed.Mapping,
	}

	if s.archive.Enabled() {
		key := storage.UploadKey(s.now(), filename)
		if err := s.archive.UploadObject(ctx, key, data, http.DetectContentType(data)); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("import: failed to archive upload")
		} else {
			result.ArchiveKey = key
		}
	}

	log.Info().Int("imported", imported).Int("skipped", result.Skipped).Msg("import: file processed")
	return result, nil
}
