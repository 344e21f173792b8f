package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intern-portal-api/internal/models"
)

// DashboardRepository aggregates workflow counters.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository creates a new instance of DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// AdminStats returns the global review backlog.
func (r *DashboardRepository) AdminStats(ctx context.Context) (*models.DashboardStats, error) {
	const query = `SELECT
	(SELECT COUNT(*) FROM interns WHERE approval_status = 'pending') AS pending_interns,
	(SELECT COUNT(*) FROM interns WHERE approval_status = 'approved') AS approved_interns,
	(SELECT COUNT(*) FROM logbooks WHERE status = 'pending') AS ungraded_logbooks,
	(SELECT COUNT(*) FROM leave_requests WHERE status = 'Pending') AS pending_leave,
	(SELECT COUNT(*) FROM complaints WHERE status = 'pending') AS pending_complaints,
	(SELECT COUNT(*) FROM project_uploads) AS project_uploads`
	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("load admin dashboard stats: %w", err)
	}
	return &stats, nil
}

// InternStats returns the counters scoped to a single intern.
func (r *DashboardRepository) InternStats(ctx context.Context, internID string) (*models.DashboardStats, error) {
	const query = `SELECT
	(SELECT COUNT(*) FROM logbooks WHERE intern_id = $1 AND status = 'pending') AS ungraded_logbooks,
	(SELECT COUNT(*) FROM leave_requests WHERE intern_id = $1 AND status = 'Pending') AS pending_leave,
	(SELECT COUNT(*) FROM complaints WHERE intern_id = $1 AND status = 'pending') AS pending_complaints,
	(SELECT COUNT(*) FROM project_uploads WHERE intern_id = $1) AS project_uploads`
	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query, internID); err != nil {
		return nil, fmt.Errorf("load intern dashboard stats: %w", err)
	}
	return &stats, nil
}
