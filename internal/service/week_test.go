package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
)

func testCalendar() WeekCalendar {
	return WeekCalendar{Location: time.UTC, CutoffDay: time.Monday, CutoffHour: 9}
}

func TestParseISOWeek(t *testing.T) {
	w, err := ParseISOWeek("2026-W09")
	require.NoError(t, err)
	assert.Equal(t, ISOWeek{Year: 2026, Week: 9}, w)
	assert.Equal(t, "2026-W09", w.String())

	_, err = ParseISOWeek("2026-W53")
	assert.NoError(t, err)

	for _, raw := range []string{"2025-W53", "2026-W00", "2026-9", "W09-2026"} {
		_, err := ParseISOWeek(raw)
		assert.Error(t, err, raw)
	}
}

func TestWeekWindow(t *testing.T) {
	opens, closes := testCalendar().Window(ISOWeek{Year: 2026, Week: 10})
	assert.Equal(t, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), opens)
	assert.Equal(t, time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC), closes)

	fri := WeekCalendar{Location: time.UTC, CutoffDay: time.Friday, CutoffHour: 17}
	_, closes = fri.Window(ISOWeek{Year: 2026, Week: 10})
	assert.Equal(t, time.Date(2026, time.March, 13, 17, 0, 0, 0, time.UTC), closes)
}

func TestResolveDefaultWeek(t *testing.T) {
	cal := testCalendar()

	w, err := cal.Resolve("", time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2026-W10", w.String())

	w, err = cal.Resolve("", time.Date(2026, time.March, 9, 8, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2026-W10", w.String(), "monday morning still targets the previous week")

	w, err = cal.Resolve("", time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2026-W11", w.String())
}

func TestResolveExplicitWeek(t *testing.T) {
	cal := testCalendar()
	now := time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

	w, err := cal.Resolve("2026-W10", now)
	require.NoError(t, err)
	assert.Equal(t, 10, w.Week)

	_, err = cal.Resolve("2026-W11", now)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = cal.Resolve("2026-W09", now)
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Contains(t, err.Error(), "closed")

	_, err = cal.Resolve("2026-W99", now)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestResolveUsesCalendarTimezone(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	cal := WeekCalendar{Location: loc, CutoffDay: time.Monday, CutoffHour: 9}

	// 02:30 UTC on Monday is already 09:30 in UTC+7, past the cutoff.
	w, err := cal.Resolve("", time.Date(2026, time.March, 9, 2, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2026-W11", w.String())
}
