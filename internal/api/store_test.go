package api

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/SuhaniChatterjee/medstock-wise/internal/repository"
	"github.com/google/uuid"
)

// memStore keeps every table in memory for router tests.
type memStore struct {
	mu            sync.Mutex
	items         map[uuid.UUID]domain.InventoryItem
	models        []domain.ModelRegistry
	predictions   map[uuid.UUID]domain.Prediction
	history       []domain.PredictionHistory
	optimizations []domain.CostOptimization
	alerts        []domain.AlertHistory
}

func newMemStore() *memStore {
	return &memStore{
		items:       make(map[uuid.UUID]domain.InventoryItem),
		predictions: make(map[uuid.UUID]domain.Prediction),
	}
}

func (m *memStore) store() *repository.Store {
	return &repository.Store{Inventory: m, Models: m, Predictions: m, Optimizations: m, Alerts: m, Dashboard: m}
}

func notFound(kind string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}

func (m *memStore) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.InventoryItem
	for _, it := range m.items {
		if filter.ItemType != "" && it.ItemType != filter.ItemType {
			continue
		}
		if filter.LowStock && it.CurrentStock >= it.MinRequired {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemName < out[j].ItemName })
	return out, nil
}

func (m *memStore) GetItem(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, notFound("inventory item", id)
	}
	return &it, nil
}

func (m *memStore) CreateItem(ctx context.Context, item *domain.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = *item
	return nil
}

func (m *memStore) UpdateItem(ctx context.Context, item *domain.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return notFound("inventory item", item.ID)
	}
	m.items[item.ID] = *item
	return nil
}

func (m *memStore) Restock(ctx context.Context, id uuid.UUID, quantity int) (*domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, notFound("inventory item", id)
	}
	it.CurrentStock += quantity
	if it.CurrentStock > it.MaxCapacity {
		it.CurrentStock = it.MaxCapacity
	}
	m.items[id] = it
	return &it, nil
}

func (m *memStore) DeleteItem(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return notFound("inventory item", id)
	}
	delete(m.items, id)
	return nil
}

func (m *memStore) UpsertItemsByName(ctx context.Context, items []*domain.InventoryItem) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		for id, existing := range m.items {
			if existing.ItemName == item.ItemName {
				item.ID = id
			}
		}
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		m.items[item.ID] = *item
	}
	return len(items), nil
}

func (m *memStore) GetActiveModel(ctx context.Context) (*domain.ModelRegistry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.models) - 1; i >= 0; i-- {
		if m.models[i].IsActive {
			model := m.models[i]
			return &model, nil
		}
	}
	return nil, domain.ErrNoActiveModel
}

func (m *memStore) UpsertModel(ctx context.Context, model *domain.ModelRegistry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.models {
		if m.models[i].ModelVersion == model.ModelVersion {
			model.ID = m.models[i].ID
			m.models[i] = *model
			return nil
		}
	}
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}
	m.models = append(m.models, *model)
	return nil
}

func (m *memStore) SavePrediction(ctx context.Context, p *domain.Prediction, h *domain.PredictionHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[p.ItemID] = *p
	m.history = append(m.history, *h)
	return nil
}

func (m *memStore) ListLatest(ctx context.Context) ([]domain.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Prediction
	for _, p := range m.predictions {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) ListHistory(ctx context.Context, itemID uuid.NullUUID, limit int) ([]domain.PredictionHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PredictionHistory
	for _, h := range m.history {
		if !itemID.Valid || h.ItemID == itemID.UUID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memStore) InsertOptimization(ctx context.Context, opt *domain.CostOptimization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.optimizations = append(m.optimizations, *opt)
	return nil
}

func (m *memStore) ListOptimizations(ctx context.Context, itemID uuid.NullUUID, limit int) ([]domain.CostOptimization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CostOptimization(nil), m.optimizations...), nil
}

func (m *memStore) InsertAlerts(ctx context.Context, alerts []*domain.AlertHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range alerts {
		m.alerts = append(m.alerts, *a)
	}
	return nil
}

func (m *memStore) ListAlerts(ctx context.Context, filter domain.AlertFilter) ([]domain.AlertHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AlertHistory
	for _, a := range m.alerts {
		if filter.UnreadOnly && a.IsRead {
			continue
		}
		if filter.Severity != "" && a.Severity != filter.Severity {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			m.alerts[i].IsRead = true
			return nil
		}
	}
	return notFound("alert", id)
}

func (m *memStore) Resolve(ctx context.Context, id uuid.UUID, resolvedBy uuid.NullUUID, notes *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			m.alerts[i].IsRead = true
			m.alerts[i].ResolvedBy = resolvedBy
			m.alerts[i].ResolutionNotes = notes
			return nil
		}
	}
	return notFound("alert", id)
}

func (m *memStore) GetSummary(ctx context.Context, criticalPct float64) (*domain.DashboardSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &domain.DashboardSummary{TotalItems: len(m.items)}
	for _, it := range m.items {
		if it.CurrentStock < it.MinRequired {
			s.LowStockItems++
		}
	}
	for _, a := range m.alerts {
		if !a.IsRead {
			s.UnreadAlerts++
		}
	}
	return s, nil
}
