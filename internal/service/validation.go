package service

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/intern-portal-api/internal/repository"
	"github.com/noah-isme/intern-portal-api/pkg/database"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
)

var isoWeekPattern = regexp.MustCompile(`^\d{4}-W\d{2}$`)

// NewValidator returns a validator with the portal's custom rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("iso_week", func(fl validator.FieldLevel) bool {
		return isoWeekPattern.MatchString(fl.Field().String())
	})
	return v
}

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// isMissing reports whether a lookup found no row. A malformed id cannot
// match any row, so it counts as missing.
func isMissing(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || database.IsInvalidInput(err)
}

// mapStoreError converts repository sentinels into API errors.
func mapStoreError(err error, notFoundMsg, internalMsg string) error {
	switch {
	case err == nil:
		return nil
	case isMissing(err):
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMsg)
	case errors.Is(err, repository.ErrAlreadyProcessed):
		return appErrors.Wrap(err, appErrors.ErrAlreadyProcessed.Code, appErrors.ErrAlreadyProcessed.Status, appErrors.ErrAlreadyProcessed.Message)
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "record already exists")
	default:
		return appErrors.Internal(err, internalMsg)
	}
}
