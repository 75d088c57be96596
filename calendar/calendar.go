/*
Package calendar provides date and time-of-day arithmetic for the reservation
engine.

PURPOSE:
  The facility books resources in 30-minute blocks on naive local dates.
  This package owns the two value types everything else is built on:

  - Date:  a calendar day, wire format MM-DD-YYYY
  - Clock: a time of day, wire format HH:MM

  Times of day are reduced to half-hour indices (0..47) for interval
  arithmetic, and dates project onto ISO week buckets for weekly quotas.

KEY CONCEPTS:
  - HalfHour: integer index hh*2 + mm/30 of a 30-minute slot within a day
  - Business hours: Sunday closed, Saturday 10:00-16:00, weekdays 9:00-18:00
  - Inclusive date ranges: a reservation from 04-28 to 04-29 occupies both days

SEE ALSO:
  - booking/policy.go: admission rules built on these predicates
*/
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// DATE - Naive local calendar day
// =============================================================================

// DateLayout is the wire format for dates. Parsing also accepts
// unpadded month/day components ("4-9-2022").
const DateLayout = "01-02-2006"

const parseLayout = "1-2-2006"

type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an MM-DD-YYYY date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(parseLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustDate parses s and panics on failure. For tests and constants.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Today returns the current local date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func (d Date) String() string { return d.t.Format(DateLayout) }

// ISO renders the date as YYYY-MM-DD. Used in user-facing rejection text.
func (d Date) ISO() string { return d.t.Format("2006-01-02") }

func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Before(o Date) bool    { return d.t.Before(o.t) }
func (d Date) After(o Date) bool     { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool     { return d.t.Equal(o.t) }
func (d Date) AddDays(n int) Date    { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// DaysBetween returns to - from in whole days.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// Between reports whether d lies in the inclusive range [start, end].
func (d Date) Between(start, end Date) bool {
	return DaysBetween(start, d) >= 0 && DaysBetween(d, end) >= 0
}

// DaysInRange expands the inclusive range [start, end] into individual days.
// Returns nil when end precedes start.
func DaysInRange(start, end Date) []Date {
	var days []Date
	for cur := start; !cur.After(end); cur = cur.AddDays(1) {
		days = append(days, cur)
	}
	return days
}

// WeekBucket is the ISO (year, week) pair a date falls into. Weekly
// per-customer quotas are counted per bucket.
type WeekBucket struct {
	Year int
	Week int
}

func (d Date) WeekBucket() WeekBucket {
	y, w := d.t.ISOWeek()
	return WeekBucket{Year: y, Week: w}
}

// =============================================================================
// CLOCK - Time of day at minute precision
// =============================================================================

type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses an HH:MM (24-hour) time string. Both components must be
// bare digits; signs, spaces and trailing text are rejected. Alignment to the
// half hour is a business rule, not a format rule, so 11:15 parses fine here
// and is rejected later by the admission policy.
func ParseClock(s string) (Clock, error) {
	hh, mm, found := strings.Cut(s, ":")
	if !found || !allDigits(hh) || !allDigits(mm) {
		return Clock{}, fmt.Errorf("invalid time %q", s)
	}
	c := Clock{Hour: mustAtoi(hh), Minute: mustAtoi(mm)}
	if c.Hour > 23 || c.Minute > 59 {
		return Clock{}, fmt.Errorf("invalid time %q: out of range", s)
	}
	return c, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// mustAtoi converts a digits-only string; callers validate first.
func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// MustClock parses s and panics on failure. For tests and constants.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// Aligned reports whether the clock sits on an hour or half-hour boundary.
func (c Clock) Aligned() bool { return c.Minute == 0 || c.Minute == 30 }

// Index reduces the clock to its half-hour slot index (0..47). Minutes that
// are not aligned truncate downward; callers reject unaligned times first.
func (c Clock) Index() HalfHour { return HalfHour(c.Hour*2 + c.Minute/30) }

func (c Clock) BeforeOrEqual(o Clock) bool { return c.Index() <= o.Index() }

// =============================================================================
// HALF-HOUR INDEX - 30-minute slot within a day
// =============================================================================

type HalfHour int

// SlotsPerHour converts hour counts into half-hour index distance.
const SlotsPerHour HalfHour = 2

// Facility opening boundaries, as half-hour indices.
const (
	weekdayOpen   HalfHour = 18 // 09:00
	weekdayClose  HalfHour = 36 // 18:00
	saturdayOpen  HalfHour = 20 // 10:00
	saturdayClose HalfHour = 32 // 16:00
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share at least one slot.
func Overlaps(aStart, aEnd, bStart, bEnd HalfHour) bool {
	return !(aEnd <= bStart || bEnd <= aStart)
}

// OpenFor reports whether the facility is open for the whole window
// [start, end) on the given day.
//
//	Sunday:   closed
//	Saturday: 10:00-16:00
//	Weekdays: 09:00-18:00
func OpenFor(start, end HalfHour, day Date) bool {
	switch day.Weekday() {
	case time.Sunday:
		return false
	case time.Saturday:
		return start >= saturdayOpen && end <= saturdayClose
	default:
		return start >= weekdayOpen && end <= weekdayClose
	}
}
