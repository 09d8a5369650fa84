// Package businesstime normalizes wall-clock arithmetic to the bakery's
// single business timezone. Nothing else in the module converts between
// instants and local days; callers go through an Authority.
package businesstime

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// DefaultZone is the mountain-time zone the bakery operates in.
const DefaultZone = "America/Boise"

// WallClock holds business-local fields of an instant.
type WallClock struct {
	Year    int
	Month   time.Month
	Day     int
	Hour    int
	Minute  int
	Weekday time.Weekday
}

// Date drops the time-of-day fields.
func (w WallClock) Date() Date {
	return Date{Year: w.Year, Month: w.Month, Day: w.Day}
}

// TimeOfDay drops the calendar fields.
func (w WallClock) TimeOfDay() TimeOfDay {
	return TimeOfDay{Hour: w.Hour, Minute: w.Minute}
}

// Authority converts instants to and from business time.
type Authority struct {
	loc *time.Location
	now func() time.Time
}

// Option customizes an Authority.
type Option func(*Authority)

// WithNow replaces the instant source, mainly for tests.
func WithNow(fn func() time.Time) Option {
	return func(a *Authority) {
		if fn != nil {
			a.now = fn
		}
	}
}

// New loads the IANA zone and returns an Authority bound to it. An empty zone
// selects DefaultZone.
func New(zone string, opts ...Option) (*Authority, error) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load business timezone %q: %w", zone, err)
	}
	a := &Authority{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// MustNew is New for zones known to exist.
func MustNew(zone string, opts ...Option) *Authority {
	a, err := New(zone, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Authority) Location() *time.Location {
	return a.loc
}

// Now returns the current instant expressed in the business timezone.
func (a *Authority) Now() time.Time {
	return a.now().In(a.loc)
}

// ToBusinessTime returns the business-local wall-clock fields of t.
func (a *Authority) ToBusinessTime(t time.Time) WallClock {
	local := t.In(a.loc)
	y, m, d := local.Date()
	return WallClock{
		Year:    y,
		Month:   m,
		Day:     d,
		Hour:    local.Hour(),
		Minute:  local.Minute(),
		Weekday: local.Weekday(),
	}
}

// DateOf returns the business-local calendar date of t.
func (a *Authority) DateOf(t time.Time) Date {
	return DateOf(t.In(a.loc))
}

// Today is DateOf(Now()).
func (a *Authority) Today() Date {
	return a.DateOf(a.Now())
}

// ISODate formats t's business-local date as YYYY-MM-DD.
func (a *Authority) ISODate(t time.Time) string {
	return a.DateOf(t).String()
}

// At returns the instant at which the business-local clock reads tod on d.
// Times inside a DST gap are normalized forward by the zone rules.
func (a *Authority) At(d Date, tod TimeOfDay) time.Time {
	return time.Date(d.Year, d.Month, d.Day, tod.Hour, tod.Minute, 0, 0, a.loc)
}
