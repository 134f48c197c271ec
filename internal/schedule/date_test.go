package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-02-02")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2026, time.February, 2), d)
	assert.Equal(t, "2026-02-02", d.String())
	assert.Equal(t, time.Monday, d.Weekday())

	_, err = ParseDate("02/02/2026")
	assert.Error(t, err)
}

func TestDateOrdering(t *testing.T) {
	a := NewDate(2026, time.February, 2)
	b := NewDate(2026, time.February, 9)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Before(a))
	assert.True(t, a.Equal(a))

	assert.True(t, NewDate(2025, time.December, 31).Before(NewDate(2026, time.January, 1)))
}

func TestDateAddDays(t *testing.T) {
	d := NewDate(2026, time.February, 28)
	assert.Equal(t, NewDate(2026, time.March, 1), d.AddDays(1))
	assert.Equal(t, NewDate(2026, time.February, 27), d.AddDays(-1))

	// 2028 is a leap year.
	assert.Equal(t, NewDate(2028, time.February, 29), NewDate(2028, time.February, 28).AddDays(1))
}

func TestAddMonthsSameDay(t *testing.T) {
	d := NewDate(2026, time.January, 31)

	_, ok := d.AddMonthsSameDay(1)
	assert.False(t, ok, "February has no 31st")

	next, ok := d.AddMonthsSameDay(2)
	require.True(t, ok)
	assert.Equal(t, NewDate(2026, time.March, 31), next)

	mid := NewDate(2026, time.March, 15)
	next, ok = mid.AddMonthsSameDay(1)
	require.True(t, ok)
	assert.Equal(t, NewDate(2026, time.April, 15), next)

	prev, ok := mid.AddMonthsSameDay(-1)
	require.True(t, ok)
	assert.Equal(t, NewDate(2026, time.February, 15), prev)
}

func TestParseClock(t *testing.T) {
	cm, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, ClockMinute(9*60+30), cm)
	assert.Equal(t, "09:30", cm.String())
	assert.Equal(t, 9, cm.Hour())
	assert.Equal(t, 30, cm.Minute())

	_, err = ParseClock("25:00")
	assert.Error(t, err)
	_, err = ParseClock("9am")
	assert.Error(t, err)
}

func TestClockOfAndDateAt(t *testing.T) {
	instant := time.Date(2026, time.February, 2, 14, 30, 12, 0, time.UTC)
	assert.Equal(t, MustClock("14:30"), ClockOf(instant))
	assert.Equal(t, NewDate(2026, time.February, 2), DateOf(instant))

	at := NewDate(2026, time.February, 2).At(MustClock("14:30"))
	assert.Equal(t, time.Date(2026, time.February, 2, 14, 30, 0, 0, time.UTC), at)
}
