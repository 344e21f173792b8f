package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-portal-api/internal/middleware"
)

// Handlers groups every HTTP handler mounted by Register.
type Handlers struct {
	Auth          *AuthHandler
	Interns       *InternHandler
	Admins        *AdminHandler
	Logbooks      *LogbookHandler
	Leave         *LeaveHandler
	Complaints    *ComplaintHandler
	Projects      *ProjectHandler
	Messages      *MessageHandler
	Notifications *NotificationHandler
	Dashboard     *DashboardHandler
}

// Register mounts the portal routes under prefix. authenticate resolves the
// caller's session; role guards run after it.
func Register(r gin.IRouter, prefix string, h Handlers, authenticate gin.HandlerFunc) {
	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/register", h.Interns.Register)
	api.GET("/files/:token", h.Projects.Resolve)

	private := api.Group("", authenticate)
	private.POST("/auth/logout", h.Auth.Logout)
	private.GET("/auth/me", h.Auth.Me)
	private.GET("/dashboard", h.Dashboard.Stats)

	private.GET("/notifications", h.Notifications.List)
	private.GET("/notifications/unread-count", h.Notifications.Unread)
	private.POST("/notifications/read-all", h.Notifications.MarkAllRead)
	private.POST("/notifications/:id/read", h.Notifications.MarkRead)

	private.GET("/messages", h.Messages.List)
	private.GET("/messages/:id/file", h.Messages.File)

	private.GET("/interns/:id", h.Interns.Get)
	private.GET("/interns/:id/picture", h.Interns.Picture)
	private.GET("/logbooks", h.Logbooks.List)
	private.GET("/logbooks/:id", h.Logbooks.Get)
	private.GET("/logbooks/:id/attachment", h.Logbooks.Attachment)
	private.GET("/leave-requests", h.Leave.List)
	private.GET("/leave-requests/:id", h.Leave.Get)
	private.GET("/leave-requests/:id/attachment", h.Leave.Attachment)
	private.GET("/complaints", h.Complaints.List)
	private.GET("/complaints/:id", h.Complaints.Get)
	private.GET("/projects", h.Projects.List)
	private.GET("/projects/:id/download", h.Projects.Download)

	intern := private.Group("", middleware.RequireIntern())
	intern.POST("/logbooks", h.Logbooks.Submit)
	intern.POST("/leave-requests", h.Leave.Submit)
	intern.POST("/complaints", h.Complaints.Submit)
	intern.POST("/projects", h.Projects.Upload)

	admin := private.Group("", middleware.RequireAdmin())
	admin.GET("/admins", h.Admins.List)
	admin.POST("/admins", h.Admins.Create)
	admin.GET("/interns", h.Interns.List)
	admin.POST("/interns/:id/approve", h.Interns.Approve)
	admin.POST("/interns/:id/reject", h.Interns.Reject)
	admin.GET("/interns/:id/logbooks/export", h.Logbooks.Export)
	admin.POST("/logbooks/:id/grade", h.Logbooks.Grade)
	admin.POST("/leave-requests/:id/review", h.Leave.Review)
	admin.POST("/complaints/:id/review", h.Complaints.Review)
	admin.DELETE("/projects/:id", h.Projects.Delete)
	admin.GET("/projects/:id/link", h.Projects.Link)
	admin.POST("/messages", h.Messages.Broadcast)
}
