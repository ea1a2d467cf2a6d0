package submission

import (
	"errors"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrDateInvalid       = errors.New("not a valid date")
	ErrDateNotSelectable = errors.New("date is outside the selectable range")
)

// DatePicker offers calendar days from Min through today, in Location.
// Days outside that range cannot be selected at all.
type DatePicker struct {
	Min      time.Time
	Location *time.Location
	Now      func() time.Time
}

func NewDatePicker(loc *time.Location) DatePicker {
	if loc == nil {
		loc = time.UTC
	}
	return DatePicker{
		Min:      time.Date(1900, time.January, 1, 0, 0, 0, 0, loc),
		Location: loc,
		Now:      time.Now,
	}
}

func (p DatePicker) loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Today is midnight of the current day.
func (p DatePicker) Today() time.Time {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return startOfDay(now().In(p.loc()))
}

func (p DatePicker) Max() time.Time {
	return p.Today()
}

// Selectable compares calendar days only; today is selectable.
func (p DatePicker) Selectable(day time.Time) bool {
	d := startOfDay(day.In(p.loc()))
	min := startOfDay(p.Min.In(p.loc()))
	return !d.Before(min) && !d.After(p.Max())
}

// Select parses a YYYY-MM-DD day. The returned time is midnight in the
// picker's location; a refused day returns the zero time.
func (p DatePicker) Select(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	day, err := time.ParseInLocation(DateLayout, raw, p.loc())
	if err != nil {
		return time.Time{}, ErrDateInvalid
	}
	if !p.Selectable(day) {
		return time.Time{}, ErrDateNotSelectable
	}
	return day, nil
}

// Bounds renders min and max for an <input type="date">.
func (p DatePicker) Bounds() (string, string) {
	return p.Min.In(p.loc()).Format(DateLayout), p.Max().Format(DateLayout)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
