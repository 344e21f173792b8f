package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
	"github.com/noah-isme/intern-portal-api/pkg/logger"
	"github.com/noah-isme/intern-portal-api/pkg/response"
)

// ContextSessionKey is the gin context key storing the resolved session.
const ContextSessionKey = "currentSession"

// SessionResolver loads sessions from a cookie value or a bearer token.
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionID string) (*models.Session, error)
	ResolveToken(ctx context.Context, token string) (*models.Session, error)
}

// Session protects routes by requiring a live session. The session cookie
// wins over an Authorization bearer token when both are sent.
func Session(resolver SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := resolve(c, resolver, cookieName)
		if err != nil {
			response.Abort(c, err)
			return
		}
		c.Set(ContextSessionKey, session)
		c.Set(logger.PrincipalKey, session.PrincipalID)
		c.Next()
	}
}

func resolve(c *gin.Context, resolver SessionResolver, cookieName string) (*models.Session, error) {
	if id, err := c.Cookie(cookieName); err == nil && id != "" {
		return resolver.ResolveSession(c.Request.Context(), id)
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, appErrors.ErrUnauthorized
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return resolver.ResolveToken(c.Request.Context(), strings.TrimSpace(parts[1]))
}

// CurrentSession returns the session attached by Session.
func CurrentSession(c *gin.Context) (models.Session, bool) {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return models.Session{}, false
	}
	session, ok := value.(*models.Session)
	if !ok || session == nil {
		return models.Session{}, false
	}
	return *session, true
}
