package dto

import (
	"time"

	"github.com/noah-isme/intern-portal-api/internal/models"
)

// BroadcastMessageRequest sends a message to every approved intern.
type BroadcastMessageRequest struct {
	Title string             `json:"title" form:"title" validate:"required,max=255"`
	Body  string             `json:"body" form:"body" validate:"required,max=10000"`
	File  *models.Attachment `json:"-" form:"-"`
}

// BroadcastResult reports the persisted message and its fan-out size.
type BroadcastResult struct {
	Message    models.Message `json:"message"`
	Recipients int            `json:"recipients"`
}

// DownloadLinkResponse carries a signed, time-limited download URL.
type DownloadLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UnreadCountResponse reports unread inbox entries.
type UnreadCountResponse struct {
	Unread int `json:"unread"`
}

// MarkAllReadResponse reports how many notifications changed.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
