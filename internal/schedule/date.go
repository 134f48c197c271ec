package schedule

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day or zone attached. Rule
// matching is pure calendar arithmetic, so dates are compared as dates
// rather than as instants or ISO strings.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates an instant to its calendar date in the instant's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// At combines the date with a clock minute into a UTC instant.
func (d Date) At(cm ClockMinute) time.Time {
	return time.Date(d.Year, d.Month, d.Day, cm.Hour(), cm.Minute(), 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) Equal(o Date) bool {
	return d == o
}

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) After(o Date) bool {
	return o.Before(d)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// AddMonthsSameDay returns the date n months later with the same day of
// month, or ok=false when the target month has no such day (Jan 31 + 1
// month has no Feb 31; time.AddDate would silently normalize it into
// March, which is the wrong answer for monthly recurrence).
func (d Date) AddMonthsSameDay(n int) (Date, bool) {
	t := time.Date(d.Year, d.Month+time.Month(n), d.Day, 0, 0, 0, 0, time.UTC)
	if t.Day() != d.Day {
		return Date{}, false
	}
	return DateOf(t), true
}

// ClockMinute is a time of day expressed as minutes since midnight.
type ClockMinute int

// ParseClock parses HH:MM (24h).
func ParseClock(s string) (ClockMinute, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return ClockMinute(t.Hour()*60 + t.Minute()), nil
}

// ClockOf truncates an instant to its minute of day.
func ClockOf(t time.Time) ClockMinute {
	return ClockMinute(t.Hour()*60 + t.Minute())
}

func MustClock(s string) ClockMinute {
	cm, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return cm
}

func (c ClockMinute) Hour() int   { return int(c) / 60 }
func (c ClockMinute) Minute() int { return int(c) % 60 }

func (c ClockMinute) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Valid reports whether the value falls within a single day.
func (c ClockMinute) Valid() bool {
	return c >= 0 && c < 24*60
}
