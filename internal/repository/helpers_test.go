package repository

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestConditionsNumbering(t *testing.T) {
	var c conditions
	c.add("intern_id = ?", "i-1")
	c.add("(a LIKE ? OR b LIKE ?)", "%x%")
	require.Equal(t, " WHERE intern_id = $1 AND (a LIKE $2 OR b LIKE $2)", c.where())

	window, args := c.window(10, 20)
	require.Equal(t, " LIMIT $3 OFFSET $4", window)
	require.Equal(t, []interface{}{"i-1", "%x%", 10, 20}, args)
	require.Len(t, c.args, 2)
}
