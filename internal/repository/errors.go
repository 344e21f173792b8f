package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/intern-portal-api/pkg/database"
)

var (
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrAlreadyProcessed is returned when a review targets a row that has
	// already left its pending state.
	ErrAlreadyProcessed = errors.New("record already processed")
	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = errors.New("session not found")
)

// DuplicateError names the violated constraint.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate record (%s)", e.Constraint)
}

// Is lets errors.Is(err, ErrDuplicate) match.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

func mapWriteError(op string, err error) error {
	if constraint, ok := database.IsUniqueViolation(err); ok {
		return &DuplicateError{Constraint: constraint}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// conditions accumulates positional WHERE clauses.
type conditions struct {
	clauses []string
	args    []interface{}
}

// add appends a clause where every "?" refers to the same new argument.
func (c *conditions) add(clause string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, strings.ReplaceAll(clause, "?", fmt.Sprintf("$%d", len(c.args))))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// window appends LIMIT/OFFSET placeholders and returns the clause.
func (c *conditions) window(limit, offset int) (string, []interface{}) {
	args := append(append([]interface{}{}, c.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}
