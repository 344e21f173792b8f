package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/middleware"
	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
)

type fakeProjectSrv struct{}

func (fakeProjectSrv) Upload(context.Context, models.Session, dto.UploadProjectRequest) (*models.ProjectUpload, error) {
	return nil, appErrors.ErrInternal
}

func (fakeProjectSrv) List(context.Context, models.Session, int, int) ([]models.ProjectUpload, *models.Pagination, error) {
	return nil, nil, nil
}

func (fakeProjectSrv) Download(context.Context, models.Session, string) (*models.Attachment, error) {
	return nil, appErrors.ErrNotFound
}

func (fakeProjectSrv) Delete(context.Context, models.Session, string) error {
	return nil
}

func (fakeProjectSrv) Link(context.Context, models.Session, string) (*dto.DownloadLinkResponse, error) {
	return &dto.DownloadLinkResponse{URL: "http://portal/files/tok"}, nil
}

func (fakeProjectSrv) ResolveLink(_ context.Context, token string) (*models.Attachment, error) {
	if token == "expired" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
	}
	return &models.Attachment{Data: []byte("zip"), MimeType: "application/zip", Filename: "project.zip"}, nil
}

// testAuthenticate stands in for the session middleware, reading the role
// from a header.
func testAuthenticate(c *gin.Context) {
	role := c.GetHeader("X-Test-Role")
	if role == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Set(middleware.ContextSessionKey, &models.Session{ID: "s", PrincipalID: "p-1", Role: models.Role(role)})
	c.Next()
}

func buildRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	Register(router, "/api/v1", Handlers{
		Auth:          NewAuthHandler(&fakeAuthSrv{}, CookieConfig{Name: "portal_session"}),
		Interns:       NewInternHandler(&fakeInternSrv{}, &fakeApprovalSrv{}, 0),
		Admins:        &AdminHandler{},
		Logbooks:      NewLogbookHandler(&fakeLogbookSrv{}, 0),
		Leave:         &LeaveHandler{},
		Complaints:    &ComplaintHandler{},
		Projects:      NewProjectHandler(fakeProjectSrv{}, 0),
		Messages:      &MessageHandler{},
		Notifications: NewNotificationHandler(&fakeInboxSrv{}),
		Dashboard:     NewDashboardHandler(&fakeDashboardSrv{}),
	}, testAuthenticate)
	return router
}

func TestRouterGuards(t *testing.T) {
	router := buildRouter()

	cases := []struct {
		name   string
		method string
		path   string
		role   models.Role
		status int
	}{
		{name: "dashboard needs session", method: http.MethodGet, path: "/api/v1/dashboard", status: http.StatusUnauthorized},
		{name: "dashboard for intern", method: http.MethodGet, path: "/api/v1/dashboard", role: models.RoleIntern, status: http.StatusOK},
		{name: "intern cannot approve", method: http.MethodPost, path: "/api/v1/interns/i-1/approve", role: models.RoleIntern, status: http.StatusForbidden},
		{name: "admin cannot submit logbook", method: http.MethodPost, path: "/api/v1/logbooks", role: models.RoleAdmin, status: http.StatusForbidden},
		{name: "superadmin mints link", method: http.MethodGet, path: "/api/v1/projects/p-1/link", role: models.RoleSuperAdmin, status: http.StatusOK},
		{name: "unread count is not an id", method: http.MethodGet, path: "/api/v1/notifications/unread-count", role: models.RoleIntern, status: http.StatusOK},
		{name: "signed link is public", method: http.MethodGet, path: "/api/v1/files/good", status: http.StatusOK},
		{name: "expired signed link", method: http.MethodGet, path: "/api/v1/files/expired", status: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.role != "" {
				req.Header.Set("X-Test-Role", string(tc.role))
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, tc.status, rec.Code)
		})
	}
}
