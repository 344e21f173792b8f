package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(PageRequest{Page: 5, Limit: 10}, 23)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 23, p.TotalCount)
	assert.Equal(t, 5, p.CurrentPage)

	assert.Equal(t, 0, NewPagination(PageRequest{Page: 1, Limit: 5}, 0).TotalPages)
	assert.Equal(t, 1, NewPagination(PageRequest{Page: 1, Limit: 5}, 5).TotalPages)
}

func TestNewPageRequestCoerces(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, Limit: 5}, NewPageRequest(0, -3, 5, 100))
	assert.Equal(t, PageRequest{Page: 2, Limit: 100}, NewPageRequest(2, 500, 5, 100))
	assert.Equal(t, 20, PageRequest{Page: 3, Limit: 10}.Offset())
}

func TestDashboardLink(t *testing.T) {
	assert.Equal(t, "/admin_dashboard.html#logbooks?id=42", DashboardLink(NotifyAdmin, SectionLogbooks, "42"))
	assert.Equal(t, "/user_dashboard.html#messages", DashboardLink(NotifyUser, SectionMessages, ""))
}

func TestRecipientRole(t *testing.T) {
	admin := AdminRecipient(Admin{ID: "a1", FirstName: "Grace", LastName: "Hopper"})
	assert.Equal(t, NotifyAdmin, admin.Role())
	assert.Equal(t, "Grace Hopper", admin.Name)
	assert.Equal(t, NotifyUser, InternRecipient(Intern{ID: "i1", FirstName: "Ada"}).Role())
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	assert.True(t, Session{ExpiresAt: now}.Expired(now))
	assert.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
}

func TestAttachmentPresent(t *testing.T) {
	var a *Attachment
	assert.False(t, a.Present())
	assert.True(t, (&Attachment{Data: []byte{1}}).Present())
}
