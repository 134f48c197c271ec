package schedule

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotRecurring = errors.New("rule does not recur")
	ErrNoOccurrence = errors.New("rule has no occurrence on that date")
	ErrUnknownMode  = errors.New("unknown delete mode")
	ErrRuleNotFound = errors.New("availability rule not found")
	ErrInactiveRule = errors.New("availability rule is inactive")
)

// EditPlan describes how a rule set changes when occurrences are removed.
// The editor is pure; persisting the plan is the service's job.
type EditPlan struct {
	// Deactivate turns the original rule off entirely.
	Deactivate bool
	// Update, when non-nil, replaces the original rule's fields.
	Update *AvailabilityRule
	// Create, when non-nil, is a new rule carrying the tail of a split.
	Create *AvailabilityRule
}

// NextOccurrence returns the first occurrence strictly after d on the
// rule's cadence, ignoring RecurrenceEnd. MONTHLY steps over months that
// lack the anchor's day of month.
func (r AvailabilityRule) NextOccurrence(d Date) Date {
	switch r.Recurrence {
	case RecurDaily:
		return d.AddDays(1)
	case RecurWeekly:
		return d.AddDays(7)
	case RecurMonthly:
		for n := 1; ; n++ {
			if next, ok := d.AddMonthsSameDay(n); ok {
				return next
			}
		}
	}
	return d
}

// PrevOccurrence returns the last occurrence strictly before d on the
// rule's cadence.
func (r AvailabilityRule) PrevOccurrence(d Date) Date {
	switch r.Recurrence {
	case RecurDaily:
		return d.AddDays(-1)
	case RecurWeekly:
		return d.AddDays(-7)
	case RecurMonthly:
		for n := 1; ; n++ {
			if prev, ok := d.AddMonthsSameDay(-n); ok {
				return prev
			}
		}
	}
	return d
}

// RemoveOccurrence plans the removal of occurrences of a recurring rule
// relative to instance date d, which must be a date the rule currently
// produces.
//
// DeleteAll deactivates the rule. DeleteThisOnly removes exactly the
// occurrence at d: at the anchor the anchor advances one step; at a
// bounded rule's end the end regresses one step; in the interior the rule
// splits in two around d. DeleteThisAndFollowing truncates the rule to the
// day before d, or deactivates it when d is the anchor.
func RemoveOccurrence(rule AvailabilityRule, d Date, mode DeleteMode) (EditPlan, error) {
	if rule.Recurrence == RecurNone {
		return EditPlan{}, ErrNotRecurring
	}
	if !rule.Active {
		return EditPlan{}, ErrInactiveRule
	}
	if !rule.OccursOn(d) {
		return EditPlan{}, ErrNoOccurrence
	}

	switch mode {
	case DeleteAll:
		return EditPlan{Deactivate: true}, nil

	case DeleteThisOnly:
		return planThisOnly(rule, d), nil

	case DeleteThisAndFollowing:
		if d.Equal(rule.Anchor) {
			return EditPlan{Deactivate: true}, nil
		}
		updated := rule
		end := d.AddDays(-1)
		updated.RecurrenceEnd = &end
		return EditPlan{Update: &updated}, nil
	}

	return EditPlan{}, ErrUnknownMode
}

func planThisOnly(rule AvailabilityRule, d Date) EditPlan {
	next := rule.NextOccurrence(d)

	if d.Equal(rule.Anchor) {
		// A bounded rule whose only remaining occurrence is the anchor
		// cannot advance; it simply ends.
		if rule.RecurrenceEnd != nil && next.After(*rule.RecurrenceEnd) {
			return EditPlan{Deactivate: true}
		}
		updated := rule
		updated.Anchor = next
		return EditPlan{Update: &updated}
	}

	if rule.RecurrenceEnd != nil && d.Equal(*rule.RecurrenceEnd) {
		updated := rule
		prev := rule.PrevOccurrence(d)
		updated.RecurrenceEnd = &prev
		return EditPlan{Update: &updated}
	}

	// Interior occurrence: truncate the original before d. A successor
	// rule carries the tail unless d was the last producible occurrence.
	updated := rule
	endBefore := d.AddDays(-1)
	updated.RecurrenceEnd = &endBefore
	plan := EditPlan{Update: &updated}

	if rule.RecurrenceEnd == nil || !next.After(*rule.RecurrenceEnd) {
		tail := rule
		tail.ID = uuid.Nil // assigned on insert
		tail.Anchor = next
		tail.RecurrenceEnd = rule.RecurrenceEnd
		plan.Create = &tail
	}
	return plan
}
