package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
)

func TestMemorySessionRepositoryLifecycle(t *testing.T) {
	repo := NewMemorySessionRepository()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, models.Session{ID: "s-1", PrincipalID: "intern-1", Role: models.RoleIntern, ExpiresAt: now.Add(time.Hour)}))
	s, err := repo.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleIntern, s.Role)

	now = now.Add(2 * time.Hour)
	_, err = repo.Get(ctx, "s-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, repo.Save(ctx, models.Session{ID: "s-2", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Delete(ctx, "s-2"))
	_, err = repo.Get(ctx, "s-2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "portal:")
	var dest models.DashboardStats
	assert.ErrorIs(t, repo.Get(context.Background(), "dashboard", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "dashboard", dest, time.Minute))
	assert.NoError(t, repo.Delete(context.Background(), "dashboard"))
}
