package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	"github.com/noah-isme/intern-portal-api/internal/repository"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
)

type adminCredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
}

type internCredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Intern, error)
}

// SessionStore persists server-side sessions.
type SessionStore interface {
	Save(ctx context.Context, s models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	SessionTTL  time.Duration
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
}

// AuthService authenticates admins and interns and manages their sessions.
type AuthService struct {
	admins    adminCredentialStore
	interns   internCredentialStore
	sessions  SessionStore
	hasher    PasswordHasher
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       Clock
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(admins adminCredentialStore, interns internCredentialStore, sessions SessionStore, hasher PasswordHasher, validate *validator.Validate, logger *zap.Logger, cfg AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.TokenExpiry <= 0 || cfg.TokenExpiry > cfg.SessionTTL {
		cfg.TokenExpiry = cfg.SessionTTL
	}
	return &AuthService{admins: admins, interns: interns, sessions: sessions, hasher: hasher, validator: validate, logger: logger, config: cfg, now: systemClock}
}

// Authenticate checks the credentials against admins first and interns
// second. It has no side effects.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*dto.PrincipalInfo, error) {
	email = strings.TrimSpace(email)

	admin, err := s.admins.FindByEmail(ctx, email)
	switch {
	case err == nil:
		ok, verifyErr := s.hasher.Verify(admin.PasswordHash, password)
		if verifyErr != nil {
			s.logger.Error("admin password hash unreadable", zap.String("admin_id", admin.ID), zap.Error(verifyErr))
			return nil, appErrors.Internal(verifyErr, "failed to verify credentials")
		}
		if ok {
			return &dto.PrincipalInfo{ID: admin.ID, Role: admin.Role, Email: admin.Email, FirstName: admin.FirstName, LastName: admin.LastName}, nil
		}
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Internal(err, "failed to load account")
	}

	intern, err := s.interns.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Internal(err, "failed to load account")
	}
	ok, err := s.hasher.Verify(intern.PasswordHash, password)
	if err != nil {
		s.logger.Warn("intern password hash unreadable", zap.String("intern_id", intern.ID), zap.Error(err))
		return nil, appErrors.ErrInvalidCredentials
	}
	if !ok {
		return nil, appErrors.ErrInvalidCredentials
	}

	switch intern.ApprovalStatus {
	case models.ApprovalApproved:
	case models.ApprovalRejected:
		return nil, appErrors.Clone(appErrors.ErrPendingApproval, "registration was not approved")
	default:
		return nil, appErrors.ErrPendingApproval
	}
	return &dto.PrincipalInfo{ID: intern.ID, Role: models.RoleIntern, Email: intern.Email, FirstName: intern.FirstName, LastName: intern.LastName}, nil
}

// Login authenticates and opens a session. The session is returned so the
// transport can set its cookie.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, *models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Validation(err, "invalid login payload")
	}

	principal, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	session := models.Session{
		ID:          uuid.NewString(),
		PrincipalID: principal.ID,
		Role:        principal.Role,
		Email:       principal.Email,
		FirstName:   principal.FirstName,
		LastName:    principal.LastName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.config.SessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, nil, appErrors.Internal(err, "failed to create session")
	}

	token, expiresAt, err := s.issueToken(session)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to create access token")
	}

	s.logger.Info("login succeeded", zap.String("principal_id", principal.ID), zap.String("role", string(principal.Role)))
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Principal:   *principal,
	}, &session, nil
}

// Logout deletes the session. Unknown sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return appErrors.Internal(err, "failed to end session")
	}
	return nil
}

// ResolveSession loads a live session by id.
func (s *AuthService) ResolveSession(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired or invalid")
		}
		return nil, appErrors.Internal(err, "failed to load session")
	}
	if session.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			s.logger.Warn("failed to delete expired session", zap.String("session_id", sessionID), zap.Error(err))
		}
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired or invalid")
	}
	return session, nil
}

// ResolveToken validates a bearer token and loads the session it names.
func (s *AuthService) ResolveToken(ctx context.Context, tokenString string) (*models.Session, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	return s.ResolveSession(ctx, claims.SessionID)
}

func (s *AuthService) issueToken(session models.Session) (string, time.Time, error) {
	issuedAt := session.CreatedAt
	expiresAt := issuedAt.Add(s.config.TokenExpiry)
	claims := &models.SessionClaims{
		SessionID: session.ID,
		Role:      session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   session.PrincipalID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
