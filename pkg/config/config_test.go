package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("LOGBOOK_CUTOFF_WEEKDAY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "portal_sid", cfg.Session.CookieName)
	assert.Equal(t, time.Monday, cfg.Workflow.LogbookCutoffDay)
	assert.Equal(t, 9, cfg.Workflow.LogbookCutoffHour)
	assert.Equal(t, 5, cfg.Pagination.SubmissionLimit)
	assert.Equal(t, 10, cfg.Pagination.NotificationLimit)
	assert.Equal(t, int64(5*1024*1024), cfg.Uploads.MaxFileSizeBytes)
	assert.Contains(t, cfg.Uploads.AllowedMIMEs, "application/pdf")
	assert.Equal(t, 1024, cfg.Mail.QueueSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LOGBOOK_CUTOFF_WEEKDAY", "friday")
	t.Setenv("LOGBOOK_CUTOFF_HOUR", "42")
	t.Setenv("MAIL_PROVIDER", "SMTP")
	t.Setenv("SESSION_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Friday, cfg.Workflow.LogbookCutoffDay)
	assert.Equal(t, 23, cfg.Workflow.LogbookCutoffHour)
	assert.Equal(t, MailProviderSMTP, cfg.Mail.Provider)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
}

func TestWorkflowLocation(t *testing.T) {
	assert.Equal(t, time.UTC, WorkflowConfig{}.Location())
	assert.Equal(t, time.UTC, WorkflowConfig{Timezone: "Not/AZone"}.Location())
}
