package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weeklyRule(anchor Date, end *Date) AvailabilityRule {
	return AvailabilityRule{
		ID:            uuid.New(),
		ProviderID:    uuid.New(),
		Anchor:        anchor,
		Start:         MustClock("09:00"),
		End:           MustClock("12:00"),
		Recurrence:    RecurWeekly,
		RecurrenceEnd: end,
		Active:        true,
	}
}

// applyPlan mirrors what the service persists, so occurrence sets can be
// compared before and after an edit.
func applyPlan(rule AvailabilityRule, plan EditPlan) []AvailabilityRule {
	var out []AvailabilityRule
	switch {
	case plan.Deactivate:
		// gone
	case plan.Update != nil:
		out = append(out, *plan.Update)
	default:
		out = append(out, rule)
	}
	if plan.Create != nil {
		out = append(out, *plan.Create)
	}
	return out
}

func occursAny(rules []AvailabilityRule, d Date) bool {
	for _, r := range rules {
		if r.OccursOn(d) {
			return true
		}
	}
	return false
}

func TestNextOccurrence(t *testing.T) {
	anchor := NewDate(2026, time.February, 2)

	daily := AvailabilityRule{Recurrence: RecurDaily}
	assert.Equal(t, anchor.AddDays(1), daily.NextOccurrence(anchor))

	weekly := AvailabilityRule{Recurrence: RecurWeekly}
	assert.Equal(t, anchor.AddDays(7), weekly.NextOccurrence(anchor))

	monthly := AvailabilityRule{Recurrence: RecurMonthly}
	assert.Equal(t, NewDate(2026, time.March, 2), monthly.NextOccurrence(anchor))

	// Jan 31 monthly: February is skipped entirely.
	assert.Equal(t, NewDate(2026, time.March, 31),
		monthly.NextOccurrence(NewDate(2026, time.January, 31)))
}

func TestPrevOccurrence(t *testing.T) {
	weekly := AvailabilityRule{Recurrence: RecurWeekly}
	assert.Equal(t, NewDate(2026, time.February, 2),
		weekly.PrevOccurrence(NewDate(2026, time.February, 9)))

	monthly := AvailabilityRule{Recurrence: RecurMonthly}
	// Mar 31 monthly stepping back: February has no 31st.
	assert.Equal(t, NewDate(2026, time.January, 31),
		monthly.PrevOccurrence(NewDate(2026, time.March, 31)))
}

func TestRemoveOccurrence_All(t *testing.T) {
	rule := weeklyRule(NewDate(2026, time.February, 2), nil)

	plan, err := RemoveOccurrence(rule, NewDate(2026, time.February, 16), DeleteAll)
	require.NoError(t, err)
	assert.True(t, plan.Deactivate)
	assert.Nil(t, plan.Update)
	assert.Nil(t, plan.Create)
}

func TestRemoveOccurrence_ThisOnlyAtAnchor(t *testing.T) {
	anchor := NewDate(2026, time.February, 2)
	rule := weeklyRule(anchor, nil)

	plan, err := RemoveOccurrence(rule, anchor, DeleteThisOnly)
	require.NoError(t, err)
	require.NotNil(t, plan.Update)
	assert.False(t, plan.Deactivate)
	assert.Nil(t, plan.Create)
	assert.Equal(t, anchor.AddDays(7), plan.Update.Anchor)

	after := applyPlan(rule, plan)
	assert.False(t, occursAny(after, anchor), "old anchor date must become unavailable")
	assert.True(t, occursAny(after, anchor.AddDays(7)), "anchor+7 must remain available")
}

func TestRemoveOccurrence_ThisOnlyAtAnchorOfExhaustedRule(t *testing.T) {
	// The anchor is the only occurrence the bounded rule can produce;
	// advancing would leave an empty range, so the rule ends instead.
	anchor := NewDate(2026, time.February, 2)
	end := NewDate(2026, time.February, 6)
	rule := weeklyRule(anchor, &end)

	plan, err := RemoveOccurrence(rule, anchor, DeleteThisOnly)
	require.NoError(t, err)
	assert.True(t, plan.Deactivate)
	assert.Nil(t, plan.Update)
	assert.Nil(t, plan.Create)
}

func TestRemoveOccurrence_ThisOnlyAtRecurrenceEnd(t *testing.T) {
	anchor := NewDate(2026, time.February, 2)
	end := NewDate(2026, time.February, 23)
	rule := weeklyRule(anchor, &end)

	plan, err := RemoveOccurrence(rule, end, DeleteThisOnly)
	require.NoError(t, err)
	require.NotNil(t, plan.Update)
	assert.Nil(t, plan.Create)
	require.NotNil(t, plan.Update.RecurrenceEnd)
	assert.Equal(t, NewDate(2026, time.February, 16), *plan.Update.RecurrenceEnd)
}

func TestRemoveOccurrence_ThisOnlyInteriorSplit(t *testing.T) {
	anchor := NewDate(2026, time.February, 2)
	end := NewDate(2026, time.March, 2)
	rule := weeklyRule(anchor, &end)
	interior := NewDate(2026, time.February, 16)

	plan, err := RemoveOccurrence(rule, interior, DeleteThisOnly)
	require.NoError(t, err)
	require.NotNil(t, plan.Update)
	require.NotNil(t, plan.Create)

	// Head truncated to the day before the removed occurrence.
	require.NotNil(t, plan.Update.RecurrenceEnd)
	assert.Equal(t, interior.AddDays(-1), *plan.Update.RecurrenceEnd)

	// Tail picks up at the next occurrence and keeps the original end.
	assert.Equal(t, interior.AddDays(7), plan.Create.Anchor)
	require.NotNil(t, plan.Create.RecurrenceEnd)
	assert.Equal(t, end, *plan.Create.RecurrenceEnd)
	assert.Equal(t, rule.Start, plan.Create.Start)
	assert.Equal(t, rule.End, plan.Create.End)
	assert.Equal(t, rule.Recurrence, plan.Create.Recurrence)
}

func TestRemoveOccurrence_SplitIntegrity(t *testing.T) {
	anchor := NewDate(2026, time.February, 2)
	end := NewDate(2026, time.March, 30)
	rule := weeklyRule(anchor, &end)
	interior := NewDate(2026, time.March, 2)

	plan, err := RemoveOccurrence(rule, interior, DeleteThisOnly)
	require.NoError(t, err)
	after := applyPlan(rule, plan)

	// Every date in the original bounds keeps its availability except
	// exactly the removed occurrence.
	for d := anchor.AddDays(-7); !d.After(end.AddDays(7)); d = d.AddDays(1) {
		want := rule.OccursOn(d) && !d.Equal(interior)
		assert.Equalf(t, want, occursAny(after, d), "date %s", d)
	}
}

func TestRemoveOccurrence_ThisOnlyLastOccurrenceOfBoundedRule(t *testing.T) {
	// End falls between cadence points: Feb 20 is past the Feb 16
	// occurrence but before Feb 23, so Feb 16 is the last occurrence and
	// removing it needs no tail rule.
	anchor := NewDate(2026, time.February, 2)
	end := NewDate(2026, time.February, 20)
	rule := weeklyRule(anchor, &end)

	plan, err := RemoveOccurrence(rule, NewDate(2026, time.February, 16), DeleteThisOnly)
	require.NoError(t, err)
	require.NotNil(t, plan.Update)
	assert.Nil(t, plan.Create)
	assert.Equal(t, NewDate(2026, time.February, 15), *plan.Update.RecurrenceEnd)
}

func TestRemoveOccurrence_ThisAndFollowing(t *testing.T) {
	anchor := NewDate(2026, time.February, 2)
	rule := weeklyRule(anchor, nil)
	from := NewDate(2026, time.February, 16)

	plan, err := RemoveOccurrence(rule, from, DeleteThisAndFollowing)
	require.NoError(t, err)
	require.NotNil(t, plan.Update)
	assert.Nil(t, plan.Create)
	require.NotNil(t, plan.Update.RecurrenceEnd)
	assert.Equal(t, from.AddDays(-1), *plan.Update.RecurrenceEnd)

	after := applyPlan(rule, plan)
	assert.True(t, occursAny(after, anchor))
	assert.True(t, occursAny(after, anchor.AddDays(7)))
	assert.False(t, occursAny(after, from))
	assert.False(t, occursAny(after, from.AddDays(7)))
}

func TestRemoveOccurrence_ThisAndFollowingAtAnchor(t *testing.T) {
	anchor := NewDate(2026, time.February, 2)
	rule := weeklyRule(anchor, nil)

	plan, err := RemoveOccurrence(rule, anchor, DeleteThisAndFollowing)
	require.NoError(t, err)
	assert.True(t, plan.Deactivate)
}

func TestRemoveOccurrence_Errors(t *testing.T) {
	anchor := NewDate(2026, time.February, 2)

	t.Run("non-recurring rule", func(t *testing.T) {
		rule := weeklyRule(anchor, nil)
		rule.Recurrence = RecurNone
		_, err := RemoveOccurrence(rule, anchor, DeleteThisOnly)
		assert.ErrorIs(t, err, ErrNotRecurring)
	})

	t.Run("date off cadence", func(t *testing.T) {
		rule := weeklyRule(anchor, nil)
		_, err := RemoveOccurrence(rule, anchor.AddDays(3), DeleteThisOnly)
		assert.ErrorIs(t, err, ErrNoOccurrence)
	})

	t.Run("inactive rule", func(t *testing.T) {
		rule := weeklyRule(anchor, nil)
		rule.Active = false
		_, err := RemoveOccurrence(rule, anchor, DeleteThisOnly)
		assert.ErrorIs(t, err, ErrInactiveRule)
	})

	t.Run("unknown mode", func(t *testing.T) {
		rule := weeklyRule(anchor, nil)
		_, err := RemoveOccurrence(rule, anchor, DeleteMode("bogus"))
		assert.ErrorIs(t, err, ErrUnknownMode)
	})
}

func TestRemoveOccurrence_MonthlySplitSkipsShortMonths(t *testing.T) {
	rule := AvailabilityRule{
		ID:         uuid.New(),
		Anchor:     NewDate(2025, time.December, 31),
		Start:      MustClock("09:00"),
		End:        MustClock("10:00"),
		Recurrence: RecurMonthly,
		Active:     true,
	}

	plan, err := RemoveOccurrence(rule, NewDate(2026, time.January, 31), DeleteThisOnly)
	require.NoError(t, err)
	require.NotNil(t, plan.Create)
	// Next monthly occurrence after Jan 31 skips February.
	assert.Equal(t, NewDate(2026, time.March, 31), plan.Create.Anchor)
}
