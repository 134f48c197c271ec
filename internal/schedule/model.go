package schedule

import (
	"time"

	"github.com/google/uuid"
)

type RecurrenceType string

const (
	RecurNone    RecurrenceType = "none"
	RecurDaily   RecurrenceType = "daily"
	RecurWeekly  RecurrenceType = "weekly"
	RecurMonthly RecurrenceType = "monthly"
)

func (r RecurrenceType) Valid() bool {
	switch r {
	case RecurNone, RecurDaily, RecurWeekly, RecurMonthly:
		return true
	}
	return false
}

// DeleteMode selects which occurrences of a recurring rule to remove.
type DeleteMode string

const (
	DeleteAll              DeleteMode = "all"
	DeleteThisOnly         DeleteMode = "this_only"
	DeleteThisAndFollowing DeleteMode = "this_and_following"
)

func (m DeleteMode) Valid() bool {
	switch m {
	case DeleteAll, DeleteThisOnly, DeleteThisAndFollowing:
		return true
	}
	return false
}

// Window is a half-open [Start, End) span within a single day.
type Window struct {
	Start ClockMinute
	End   ClockMinute
}

func (w Window) Contains(cm ClockMinute) bool {
	return cm >= w.Start && cm < w.End
}

// WeeklyTemplate is the legacy availability source: one window per
// provider per weekday, every week, no anchor and no end.
type WeeklyTemplate struct {
	ID         int64
	ProviderID uuid.UUID
	Weekday    time.Weekday
	Start      ClockMinute
	End        ClockMinute
	CreatedAt  time.Time
}

// AvailabilityRule is the current availability source: a window anchored
// at a date and repeated per RecurrenceType until RecurrenceEnd, if set.
// Rules are soft-deleted via Active.
type AvailabilityRule struct {
	ID            uuid.UUID
	ProviderID    uuid.UUID
	Anchor        Date
	Start         ClockMinute
	End           ClockMinute
	Recurrence    RecurrenceType
	RecurrenceEnd *Date
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OccursOn reports whether the rule produces an occurrence on d.
func (r AvailabilityRule) OccursOn(d Date) bool {
	if !r.Active {
		return false
	}
	if d.Before(r.Anchor) {
		return false
	}
	if r.RecurrenceEnd != nil && d.After(*r.RecurrenceEnd) {
		return false
	}
	switch r.Recurrence {
	case RecurNone:
		return d.Equal(r.Anchor)
	case RecurDaily:
		return true
	case RecurWeekly:
		return d.Weekday() == r.Anchor.Weekday()
	case RecurMonthly:
		return d.Day == r.Anchor.Day
	}
	return false
}

func (r AvailabilityRule) Window() Window {
	return Window{Start: r.Start, End: r.End}
}

// BlackoutDate voids every window a provider would otherwise have on Day.
type BlackoutDate struct {
	ID         int64
	ProviderID uuid.UUID
	Day        Date
	Reason     *string
	CreatedAt  time.Time
}
