package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the server-side record behind a session cookie or bearer token.
type Session struct {
	ID          string    `json:"id"`
	PrincipalID string    `json:"principal_id"`
	Role        Role      `json:"role"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session has lapsed at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionClaims is the JWT payload of a bearer token. It only references
// the session so logout revokes both transports.
type SessionClaims struct {
	SessionID string `json:"sid"`
	Role      Role   `json:"role"`
	jwt.RegisteredClaims
}

// DashboardStats is the admin dashboard counter set.
type DashboardStats struct {
	PendingInterns      int       `db:"pending_interns" json:"pending_interns"`
	ApprovedInterns     int       `db:"approved_interns" json:"approved_interns"`
	UngradedLogbooks    int       `db:"ungraded_logbooks" json:"ungraded_logbooks"`
	PendingLeave        int       `db:"pending_leave" json:"pending_leave"`
	PendingComplaints   int       `db:"pending_complaints" json:"pending_complaints"`
	ProjectUploads      int       `db:"project_uploads" json:"project_uploads"`
	UnreadNotifications int       `db:"unread_notifications" json:"unread_notifications"`
	GeneratedAt         time.Time `db:"-" json:"generated_at"`
}
