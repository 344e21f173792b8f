package service

import (
	"fmt"
	"strconv"
	"time"

	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
)

// ISOWeek identifies an ISO-8601 week.
type ISOWeek struct {
	Year int
	Week int
}

// String renders the week as 2026-W09.
func (w ISOWeek) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}

// ParseISOWeek parses the YYYY-Www notation.
func ParseISOWeek(raw string) (ISOWeek, error) {
	if !isoWeekPattern.MatchString(raw) {
		return ISOWeek{}, fmt.Errorf("week %q is not in YYYY-Www format", raw)
	}
	year, _ := strconv.Atoi(raw[:4])
	week, _ := strconv.Atoi(raw[6:])
	w := ISOWeek{Year: year, Week: week}
	if y, wk := w.monday(time.UTC).ISOWeek(); y != year || wk != week {
		return ISOWeek{}, fmt.Errorf("week %q does not exist", raw)
	}
	return w, nil
}

// monday returns 00:00 on the Monday that opens the week in loc.
func (w ISOWeek) monday(loc *time.Location) time.Time {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, loc)
	offset := (int(jan4.Weekday()) + 6) % 7
	week1 := jan4.AddDate(0, 0, -offset)
	return week1.AddDate(0, 0, (w.Week-1)*7)
}

// WeekCalendar pins logbook weeks to a single timezone and cutoff rule:
// week W accepts reports from its Monday 00:00 until CutoffDay at
// CutoffHour in the following week.
type WeekCalendar struct {
	Location   *time.Location
	CutoffDay  time.Weekday
	CutoffHour int
}

// Current returns the ISO week containing now.
func (c WeekCalendar) Current(now time.Time) ISOWeek {
	y, w := now.In(c.loc()).ISOWeek()
	return ISOWeek{Year: y, Week: w}
}

// Window returns the submission window of week w.
func (c WeekCalendar) Window(w ISOWeek) (opens, closes time.Time) {
	opens = w.monday(c.loc())
	nextMonday := opens.AddDate(0, 0, 7)
	offset := (int(c.CutoffDay) + 6) % 7
	closes = nextMonday.AddDate(0, 0, offset).Add(time.Duration(c.CutoffHour) * time.Hour)
	return opens, closes
}

// Resolve picks the target week for a submission made at now. An empty raw
// value selects the current week, unless the previous week is still within
// its cutoff, in which case that week is chosen.
func (c WeekCalendar) Resolve(raw string, now time.Time) (ISOWeek, error) {
	if raw == "" {
		current := c.Current(now)
		prev := c.Current(now.AddDate(0, 0, -7))
		if _, closes := c.Window(prev); now.Before(closes) {
			return prev, nil
		}
		return current, nil
	}

	w, err := ParseISOWeek(raw)
	if err != nil {
		return ISOWeek{}, appErrors.Validation(err, err.Error())
	}
	opens, closes := c.Window(w)
	if now.Before(opens) {
		return ISOWeek{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("week %s has not started yet", w))
	}
	if !now.Before(closes) {
		return ISOWeek{}, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("submissions for week %s closed on %s", w, closes.Format("Monday 02 Jan 2006 15:04 MST")))
	}
	return w, nil
}

func (c WeekCalendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
