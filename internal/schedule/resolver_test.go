package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotStrings(slots []ClockMinute) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.String())
	}
	return out
}

func TestResolveDay_WeeklyTemplateOnly(t *testing.T) {
	providerID := uuid.New()
	templates := []WeeklyTemplate{{
		ProviderID: providerID,
		Weekday:    time.Monday,
		Start:      MustClock("09:00"),
		End:        MustClock("17:00"),
	}}

	monday := NewDate(2026, time.February, 2)
	require.Equal(t, time.Monday, monday.Weekday())

	day := ResolveDay(templates, nil, nil, monday)
	assert.True(t, day.Available)
	require.Len(t, day.Slots, 16)
	assert.Equal(t, "09:00", day.Slots[0].String())
	assert.Equal(t, "16:30", day.Slots[15].String())

	tuesday := monday.AddDays(1)
	day = ResolveDay(templates, nil, nil, tuesday)
	assert.False(t, day.Available)
	assert.Empty(t, day.Slots)
}

func TestResolveDay_WeeklyRuleWithEnd(t *testing.T) {
	end := NewDate(2026, time.February, 23)
	rules := []AvailabilityRule{{
		ID:            uuid.New(),
		ProviderID:    uuid.New(),
		Anchor:        NewDate(2026, time.February, 2), // Monday
		Start:         MustClock("09:00"),
		End:           MustClock("12:00"),
		Recurrence:    RecurWeekly,
		RecurrenceEnd: &end,
		Active:        true,
	}}

	day := ResolveDay(nil, rules, nil, NewDate(2026, time.February, 9))
	assert.True(t, day.Available)
	assert.Equal(t,
		[]string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"},
		slotStrings(day.Slots),
	)

	// Past the recurrence end.
	day = ResolveDay(nil, rules, nil, NewDate(2026, time.March, 2))
	assert.False(t, day.Available)

	// Before the anchor.
	day = ResolveDay(nil, rules, nil, NewDate(2026, time.January, 26))
	assert.False(t, day.Available)

	// A Wednesday inside the range does not match the weekly cadence.
	day = ResolveDay(nil, rules, nil, NewDate(2026, time.February, 11))
	assert.False(t, day.Available)
}

func TestRuleOccursOn(t *testing.T) {
	anchor := NewDate(2026, time.February, 2)
	base := AvailabilityRule{
		Anchor: anchor,
		Start:  MustClock("09:00"),
		End:    MustClock("10:00"),
		Active: true,
	}

	tests := []struct {
		name       string
		recurrence RecurrenceType
		date       Date
		want       bool
	}{
		{"none matches anchor", RecurNone, anchor, true},
		{"none rejects other days", RecurNone, anchor.AddDays(1), false},
		{"daily matches any day in range", RecurDaily, anchor.AddDays(13), true},
		{"weekly matches same weekday", RecurWeekly, anchor.AddDays(14), true},
		{"weekly rejects other weekdays", RecurWeekly, anchor.AddDays(3), false},
		{"monthly matches same day of month", RecurMonthly, NewDate(2026, time.June, 2), true},
		{"monthly rejects other days", RecurMonthly, NewDate(2026, time.June, 3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := base
			rule.Recurrence = tt.recurrence
			assert.Equal(t, tt.want, rule.OccursOn(tt.date))
		})
	}
}

func TestRuleOccursOn_MonthlyShortMonthSkips(t *testing.T) {
	rule := AvailabilityRule{
		Anchor:     NewDate(2026, time.January, 31),
		Start:      MustClock("09:00"),
		End:        MustClock("10:00"),
		Recurrence: RecurMonthly,
		Active:     true,
	}

	// No 31st in February or April: those months produce nothing.
	assert.False(t, rule.OccursOn(NewDate(2026, time.February, 28)))
	assert.True(t, rule.OccursOn(NewDate(2026, time.March, 31)))
	assert.False(t, rule.OccursOn(NewDate(2026, time.April, 30)))
	assert.True(t, rule.OccursOn(NewDate(2026, time.May, 31)))
}

func TestRuleOccursOn_Inactive(t *testing.T) {
	rule := AvailabilityRule{
		Anchor:     NewDate(2026, time.February, 2),
		Recurrence: RecurDaily,
		Active:     false,
	}
	assert.False(t, rule.OccursOn(NewDate(2026, time.February, 10)))
}

func TestResolveDay_BlackoutVoidsEverything(t *testing.T) {
	providerID := uuid.New()
	monday := NewDate(2026, time.February, 2)

	templates := []WeeklyTemplate{{
		ProviderID: providerID,
		Weekday:    time.Monday,
		Start:      MustClock("09:00"),
		End:        MustClock("17:00"),
	}}
	rules := []AvailabilityRule{{
		ProviderID: providerID,
		Anchor:     monday,
		Start:      MustClock("18:00"),
		End:        MustClock("20:00"),
		Recurrence: RecurDaily,
		Active:     true,
	}}
	blackouts := []BlackoutDate{{ProviderID: providerID, Day: monday}}

	day := ResolveDay(templates, rules, blackouts, monday)
	assert.False(t, day.Available)
	assert.Empty(t, day.Slots)

	// The blackout is for that date only.
	day = ResolveDay(templates, rules, blackouts, monday.AddDays(1))
	assert.True(t, day.Available)
}

func TestResolveDay_OverlappingSourcesDeduplicate(t *testing.T) {
	monday := NewDate(2026, time.February, 2)

	// Template 09:00-12:00 and rule 10:00-14:00 overlap for 10:00-12:00;
	// both systems describe the same calendar, so overlap merges quietly.
	templates := []WeeklyTemplate{{
		Weekday: time.Monday,
		Start:   MustClock("09:00"),
		End:     MustClock("12:00"),
	}}
	rules := []AvailabilityRule{{
		Anchor:     monday,
		Start:      MustClock("10:00"),
		End:        MustClock("14:00"),
		Recurrence: RecurWeekly,
		Active:     true,
	}}

	day := ResolveDay(templates, rules, nil, monday)
	require.True(t, day.Available)
	assert.Equal(t,
		[]string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30", "13:00", "13:30"},
		slotStrings(day.Slots),
	)
}

func TestResolveDay_Idempotent(t *testing.T) {
	monday := NewDate(2026, time.February, 2)
	templates := []WeeklyTemplate{{
		Weekday: time.Monday,
		Start:   MustClock("09:00"),
		End:     MustClock("11:00"),
	}}

	first := ResolveDay(templates, nil, nil, monday)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ResolveDay(templates, nil, nil, monday))
	}
}

func TestWindowsContain_HalfOpen(t *testing.T) {
	windows := []Window{{Start: MustClock("09:00"), End: MustClock("12:00")}}

	assert.True(t, WindowsContain(windows, MustClock("09:00")))
	assert.True(t, WindowsContain(windows, MustClock("11:59")))
	assert.False(t, WindowsContain(windows, MustClock("12:00")))
	assert.False(t, WindowsContain(windows, MustClock("08:59")))
	assert.False(t, WindowsContain(nil, MustClock("09:00")))
}
