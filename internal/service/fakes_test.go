package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/SuhaniChatterjee/medstock-wise/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errStoreDown = errors.New("connection refused")

// fakeStore is an in-memory implementation of every repository interface.
type fakeStore struct {
	mu            sync.Mutex
	items         map[uuid.UUID]*domain.InventoryItem
	models        []*domain.ModelRegistry
	predictions   map[uuid.UUID]*domain.Prediction
	history       []*domain.PredictionHistory
	optimizations []*domain.CostOptimization
	alerts        []*domain.AlertHistory

	failSave     map[uuid.UUID]bool
	failOptimize map[uuid.UUID]bool
	failAlerts   bool
	summaryCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:        make(map[uuid.UUID]*domain.InventoryItem),
		predictions:  make(map[uuid.UUID]*domain.Prediction),
		failSave:     make(map[uuid.UUID]bool),
		failOptimize: make(map[uuid.UUID]bool),
	}
}

func (f *fakeStore) store() *repository.Store {
	return &repository.Store{
		Inventory:     f,
		Models:        f,
		Predictions:   f,
		Optimizations: f,
		Alerts:        f,
		Dashboard:     f,
	}
}

func (f *fakeStore) addItem(name string, usage, lead, stock, min, max int, cost string) *domain.InventoryItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := &domain.InventoryItem{
		ID:              uuid.New(),
		ItemName:        name,
		ItemType:        domain.ItemTypeConsumable,
		CurrentStock:    stock,
		MinRequired:     min,
		MaxCapacity:     max,
		UnitCost:        decimal.RequireFromString(cost),
		AvgUsagePerDay:  usage,
		RestockLeadTime: lead,
	}
	f.items[item.ID] = item
	return item
}

func (f *fakeStore) activateModel(version string) *domain.ModelRegistry {
	f.mu.Lock()
	defer f.mu.Unlock()
	r2 := 0.9
	m := &domain.ModelRegistry{ID: uuid.New(), ModelName: "test", ModelVersion: version, R2: &r2, IsActive: true, CreatedAt: time.Now()}
	f.models = append(f.models, m)
	return m
}

func (f *fakeStore) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.InventoryItem
	for _, item := range f.items {
		if filter.ItemType != "" && item.ItemType != filter.ItemType {
			continue
		}
		if filter.LowStock && item.CurrentStock >= item.MinRequired {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemName < out[j].ItemName })
	return out, nil
}

func (f *fakeStore) GetItem(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("inventory item %s: %w", id, domain.ErrNotFound)
	}
	cp := *item
	return &cp, nil
}

func (f *fakeStore) CreateItem(ctx context.Context, item *domain.InventoryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateItem(ctx context.Context, item *domain.InventoryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[item.ID]; !ok {
		return fmt.Errorf("inventory item %s: %w", item.ID, domain.ErrNotFound)
	}
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeStore) Restock(ctx context.Context, id uuid.UUID, quantity int) (*domain.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("inventory item %s: %w", id, domain.ErrNotFound)
	}
	limit := item.MaxCapacity
	if item.CurrentStock > limit {
		limit = item.CurrentStock
	}
	item.CurrentStock += quantity
	if item.CurrentStock > limit {
		item.CurrentStock = limit
	}
	cp := *item
	return &cp, nil
}

func (f *fakeStore) DeleteItem(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return fmt.Errorf("inventory item %s: %w", id, domain.ErrNotFound)
	}
	delete(f.items, id)
	return nil
}

func (f *fakeStore) UpsertItemsByName(ctx context.Context, items []*domain.InventoryItem) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range items {
		for id, existing := range f.items {
			if existing.ItemName == item.ItemName {
				item.ID = id
				break
			}
		}
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		cp := *item
		f.items[item.ID] = &cp
	}
	return len(items), nil
}

func (f *fakeStore) GetActiveModel(ctx context.Context) (*domain.ModelRegistry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.models) - 1; i >= 0; i-- {
		if f.models[i].IsActive {
			return f.models[i], nil
		}
	}
	return nil, domain.ErrNoActiveModel
}

func (f *fakeStore) UpsertModel(ctx context.Context, model *domain.ModelRegistry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.models {
		if m.ModelVersion == model.ModelVersion {
			model.ID = m.ID
			f.models[i] = model
			return nil
		}
	}
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}
	f.models = append(f.models, model)
	return nil
}

func (f *fakeStore) SavePrediction(ctx context.Context, p *domain.Prediction, h *domain.PredictionHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave[p.ItemID] {
		return errStoreDown
	}
	f.predictions[p.ItemID] = p
	f.history = append(f.history, h)
	return nil
}

func (f *fakeStore) ListLatest(ctx context.Context) ([]domain.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Prediction
	for _, p := range f.predictions {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeStore) ListHistory(ctx context.Context, itemID uuid.NullUUID, limit int) ([]domain.PredictionHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.PredictionHistory
	for _, h := range f.history {
		if itemID.Valid && h.ItemID != itemID.UUID {
			continue
		}
		out = append(out, *h)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) InsertOptimization(ctx context.Context, opt *domain.CostOptimization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOptimize[opt.ItemID] {
		return errStoreDown
	}
	f.optimizations = append(f.optimizations, opt)
	return nil
}

func (f *fakeStore) ListOptimizations(ctx context.Context, itemID uuid.NullUUID, limit int) ([]domain.CostOptimization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CostOptimization
	for _, o := range f.optimizations {
		if itemID.Valid && o.ItemID != itemID.UUID {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeStore) InsertAlerts(ctx context.Context, alerts []*domain.AlertHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAlerts {
		return errStoreDown
	}
	f.alerts = append(f.alerts, alerts...)
	return nil
}

func (f *fakeStore) ListAlerts(ctx context.Context, filter domain.AlertFilter) ([]domain.AlertHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AlertHistory
	for _, a := range f.alerts {
		if filter.UnreadOnly && a.IsRead {
			continue
		}
		if filter.Severity != "" && a.Severity != filter.Severity {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.ID == id {
			a.IsRead = true
			return nil
		}
	}
	return fmt.Errorf("alert %s: %w", id, domain.ErrNotFound)
}

func (f *fakeStore) Resolve(ctx context.Context, id uuid.UUID, resolvedBy uuid.NullUUID, notes *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.ID == id {
			now := time.Now()
			a.IsRead = true
			a.ResolvedAt = &now
			a.ResolvedBy = resolvedBy
			a.ResolutionNotes = notes
			return nil
		}
	}
	return fmt.Errorf("alert %s: %w", id, domain.ErrNotFound)
}

func (f *fakeStore) GetSummary(ctx context.Context, criticalPct float64) (*domain.DashboardSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryCalls++
	s := &domain.DashboardSummary{TotalItems: len(f.items)}
	for _, item := range f.items {
		s.TotalStockValue += item.UnitCost.Mul(decimal.NewFromInt(int64(item.CurrentStock))).InexactFloat64()
		if item.CurrentStock < item.MinRequired {
			s.LowStockItems++
		}
		if item.MinRequired > 0 && float64(item.CurrentStock)*100 <= float64(item.MinRequired)*criticalPct {
			s.CriticalItems++
		}
	}
	for _, a := range f.alerts {
		if !a.IsRead {
			s.UnreadAlerts++
		}
	}
	return s, nil
}

// memoryCache is a DashboardSummaryCache that records invalidations.
type memoryCache struct {
	mu            sync.Mutex
	summary       *domain.DashboardSummary
	invalidations int
}

func (c *memoryCache) GetSummary(ctx context.Context) (*domain.DashboardSummary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.summary == nil {
		return nil, false, nil
	}
	cp := *c.summary
	return &cp, true, nil
}

func (c *memoryCache) SetSummary(ctx context.Context, summary *domain.DashboardSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *summary
	c.summary = &cp
	return nil
}

func (c *memoryCache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = nil
	c.invalidations++
	return nil
}

// memoryArchive records uploaded objects.
type memoryArchive struct {
	objects map[string][]byte
}

func (a *memoryArchive) Enabled() bool { return true }

func (a *memoryArchive) UploadObject(ctx context.Context, key string, data []byte, contentType string) error {
	if a.objects == nil {
		a.objects = make(map[string][]byte)
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("empty key")
	}
	a.objects[key] = data
	return nil
}

func testIdentity() *domain.Identity {
	return &domain.Identity{UserID: uuid.New(), Email: "manager@example.org", Role: domain.RoleManager}
}
