package service

import (
	"context"
	"strings"

	"github.com/SuhaniChatterjee/medstock-wise/internal/cache"
	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/SuhaniChatterjee/medstock-wise/internal/repository"
	"github.com/google/uuid"
)

type AlertService struct {
	alerts repository.AlertRepository
	cache  cache.DashboardSummaryCache
}

func NewAlertService(repo repository.AlertRepository, cacheImpl cache.DashboardSummaryCache) *AlertService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &AlertService{alerts: repo, cache: cacheImpl}
}

func (s *AlertService) List(ctx context.Context, filter domain.AlertFilter) ([]domain.AlertHistory, error) {
	filter.Limit = clampLimit(filter.Limit)
	alerts, err := s.alerts.ListAlerts(ctx, filter)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = make([]domain.AlertHistory, 0)
	}
	return alerts, nil
}

func (s *AlertService) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.alerts.MarkRead(ctx, id); err != nil {
		return err
	}
	invalidateDashboard(ctx, s.cache)
	return nil
}

// Resolve stamps the resolver and time on an alert and marks it read.
func (s *AlertService) Resolve(ctx context.Context, identity *domain.Identity, id uuid.UUID, notes string) error {
	var notesRef *string
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		notesRef = &trimmed
	}
	if err := s.alerts.Resolve(ctx, id, identity.UserRef(), notesRef); err != nil {
		return err
	}
	invalidateDashboard(ctx, s.cache)
	return nil
}
