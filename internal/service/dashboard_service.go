package service

import (
	"context"
	"time"

	"github.com/SuhaniChatterjee/medstock-wise/internal/cache"
	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/SuhaniChatterjee/medstock-wise/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const overviewAlertLimit = 10

type DashboardService struct {
	store       *repository.Store
	cache       cache.DashboardSummaryCache
	criticalPct float64
	now         func() time.Time
}

func NewDashboardService(store *repository.Store, cacheImpl cache.DashboardSummaryCache, criticalPct float64) *DashboardService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &DashboardService{store: store, cache: cacheImpl, criticalPct: criticalPct, now: time.Now}
}

// GetSummary serves the headline numbers from cache when possible.
func (s *DashboardService) GetSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	if summary, ok, err := s.cache.GetSummary(ctx); err == nil && ok {
		return summary, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("dashboard: cache get summary failed")
	}

	summary, err := s.store.Dashboard.GetSummary(ctx, s.criticalPct)
	if err != nil {
		return nil, err
	}
	summary.GeneratedAt = s.now().UTC()

	if err := s.cache.SetSummary(ctx, summary); err != nil {
		log.Warn().Err(err).Msg("dashboard: cache set summary failed")
	}

	return summary, nil
}

// GetOverview loads the summary, low-stock items, unread critical alerts and
// latest predictions concurrently.
func (s *DashboardService) GetOverview(ctx context.Context) (*domain.DashboardOverview, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.GetOverview")
	defer span.End()

	overview := &domain.DashboardOverview{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.GetSummary(gctx)
		overview.Summary = summary
		return err
	})
	g.Go(func() error {
		items, err := s.store.Inventory.ListItems(gctx, domain.ItemFilter{LowStock: true})
		overview.LowStockItems = items
		return err
	})
	g.Go(func() error {
		alerts, err := s.store.Alerts.ListAlerts(gctx, domain.AlertFilter{
			UnreadOnly: true,
			Severity:   domain.SeverityCritical,
			Limit:      overviewAlertLimit,
		})
		overview.CriticalAlerts = alerts
		return err
	})
	g.Go(func() error {
		predictions, err := s.store.Predictions.ListLatest(gctx)
		overview.Predictions = predictions
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if overview.LowStockItems == nil {
		overview.LowStockItems = make([]domain.InventoryItem, 0)
	}
	if overview.CriticalAlerts == nil {
		overview.CriticalAlerts = make([]domain.AlertHistory, 0)
	}
	if overview.Predictions == nil {
		overview.Predictions = make([]domain.Prediction, 0)
	}
	return overview, nil
}
