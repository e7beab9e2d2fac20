package market

import (
	"fmt"
	"time"
)

// closedWindow is a daily wall-clock interval during which the exchange takes
// no orders. Start is inclusive, End exclusive.
type closedWindow struct {
	startHour, startMin int
	endHour, endMin     int
}

func (w closedWindow) contains(t time.Time) bool {
	mins := t.Hour()*60 + t.Minute()
	return mins >= w.startHour*60+w.startMin && mins < w.endHour*60+w.endMin
}

func (w closedWindow) endOn(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), w.endHour, w.endMin, 0, 0, day.Location())
}

// Calendar answers whether the exchange accepts orders at a given instant.
// The defaults model the Taiwan futures exchange: the after-hours session
// hands over to the day session between 03:45 and 08:45, the day session
// closes from 13:45 until the 15:00 after-hours open, and weekends are closed
// outright.
type Calendar struct {
	loc     *time.Location
	windows []closedWindow
}

// DefaultTimezone is the exchange-local timezone.
const DefaultTimezone = "Asia/Taipei"

// NewCalendar creates a calendar for the named timezone. An empty name uses
// the exchange default.
func NewCalendar(tz string) (*Calendar, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return &Calendar{
		loc: loc,
		windows: []closedWindow{
			{3, 45, 8, 45},
			{13, 45, 15, 0},
		},
	}, nil
}

// IsOpen reports whether orders are accepted at t.
func (c *Calendar) IsOpen(t time.Time) bool {
	local := t.In(c.loc)
	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return false
	}
	for _, w := range c.windows {
		if w.contains(local) {
			return false
		}
	}
	return true
}

// NextOpen returns the first instant at or after t when orders are accepted.
func (c *Calendar) NextOpen(t time.Time) time.Time {
	local := t.In(c.loc)
	for {
		if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
			// Skip to midnight of the next day.
			local = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc).Add(24 * time.Hour)
			continue
		}
		closed := false
		for _, w := range c.windows {
			if w.contains(local) {
				local = w.endOn(local)
				closed = true
				break
			}
		}
		if !closed {
			return local
		}
	}
}

// UntilOpen returns how long from t until the next open instant. Zero when
// the market is already open.
func (c *Calendar) UntilOpen(t time.Time) time.Duration {
	if c.IsOpen(t) {
		return 0
	}
	return c.NextOpen(t).Sub(t)
}
