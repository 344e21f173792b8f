package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
)

const adminStatsCacheKey = "dashboard:admin"

type dashboardStore interface {
	AdminStats(ctx context.Context) (*models.DashboardStats, error)
	InternStats(ctx context.Context, internID string) (*models.DashboardStats, error)
}

type unreadCounter interface {
	UnreadCount(ctx context.Context, principal models.Session) (int, error)
}

// DashboardService serves the dashboard counters. The admin backlog is
// shared by every admin and cached; unread counts are always live.
type DashboardService struct {
	repo   dashboardStore
	inbox  unreadCounter
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
	now    Clock
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(repo dashboardStore, inbox unreadCounter, cache *CacheService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, inbox: inbox, cache: cache, ttl: ttl, logger: logger, now: systemClock}
}

// Stats returns the counters for the calling principal.
func (s *DashboardService) Stats(ctx context.Context, principal models.Session) (*models.DashboardStats, error) {
	var (
		stats *models.DashboardStats
		err   error
	)
	if principal.Role.IsAdmin() {
		stats, err = s.adminStats(ctx)
	} else {
		stats, err = s.repo.InternStats(ctx, principal.PrincipalID)
		if err == nil {
			stats.GeneratedAt = s.now()
		}
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load dashboard")
	}

	unread, err := s.inbox.UnreadCount(ctx, principal)
	if err != nil {
		return nil, err
	}
	stats.UnreadNotifications = unread
	return stats, nil
}

func (s *DashboardService) adminStats(ctx context.Context) (*models.DashboardStats, error) {
	var cached models.DashboardStats
	if s.cache.Get(ctx, adminStatsCacheKey, &cached) {
		return &cached, nil
	}
	stats, err := s.repo.AdminStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.GeneratedAt = s.now()
	s.cache.Set(ctx, adminStatsCacheKey, stats, s.ttl)
	return stats, nil
}

// Invalidate drops the cached admin counters.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s == nil {
		return
	}
	s.cache.Invalidate(ctx, adminStatsCacheKey)
}
