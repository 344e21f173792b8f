package models

import (
	"fmt"
	"time"
)

// NotificationRole tags the recipient kind of a notification.
type NotificationRole string

const (
	NotifyAdmin NotificationRole = "admin"
	NotifyUser  NotificationRole = "user"
)

// Dashboard sections notifications link into.
const (
	SectionPendingUsers  = "pending_users"
	SectionLogbooks      = "logbooks"
	SectionLeaveRequests = "leave_requests"
	SectionComplaints    = "complaints"
	SectionProjects      = "projects"
	SectionMessages      = "messages"
)

// Notification is an inbox entry for one recipient.
type Notification struct {
	ID            string           `db:"id" json:"id"`
	RecipientID   string           `db:"recipient_id" json:"recipient_id"`
	RecipientRole NotificationRole `db:"recipient_role" json:"recipient_role"`
	SenderID      *string          `db:"sender_id" json:"sender_id,omitempty"`
	Message       string           `db:"message" json:"message"`
	Section       string           `db:"section" json:"section"`
	EntityID      *string          `db:"entity_id" json:"entity_id,omitempty"`
	Link          string           `db:"link" json:"link"`
	IsRead        bool             `db:"is_read" json:"is_read"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}

// DashboardLink builds the deep link /{role}_dashboard.html#{section}?id={entityId}.
func DashboardLink(role NotificationRole, section, entityID string) string {
	link := fmt.Sprintf("/%s_dashboard.html#%s", role, section)
	if entityID != "" {
		link += "?id=" + entityID
	}
	return link
}

// RecipientKind distinguishes admin and intern recipients.
type RecipientKind string

const (
	RecipientAdmin  RecipientKind = "admin"
	RecipientIntern RecipientKind = "intern"
)

// Recipient is a notification target resolved to a single id and kind.
type Recipient struct {
	Kind  RecipientKind
	ID    string
	Email string
	Name  string
}

// Role maps the recipient kind onto the stored notification role.
func (r Recipient) Role() NotificationRole {
	if r.Kind == RecipientAdmin {
		return NotifyAdmin
	}
	return NotifyUser
}

// AdminRecipient builds a recipient from an admin row.
func AdminRecipient(a Admin) Recipient {
	return Recipient{Kind: RecipientAdmin, ID: a.ID, Email: a.Email, Name: a.FullName()}
}

// InternRecipient builds a recipient from an intern row.
func InternRecipient(i Intern) Recipient {
	return Recipient{Kind: RecipientIntern, ID: i.ID, Email: i.Email, Name: i.FullName()}
}

// Message is a broadcast from an admin to every approved intern.
type Message struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Body       string    `db:"body" json:"body"`
	HasFile    bool      `db:"has_file" json:"has_file"`
	FileName   *string   `db:"file_name" json:"file_name,omitempty"`
	CreatedBy  string    `db:"created_by" json:"created_by"`
	AuthorName string    `db:"author_name" json:"author_name,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	File *Attachment `db:"-" json:"-"`
}
