package schedule

import "sort"

// SlotStep is the fixed interval between bookable slot starts.
const SlotStep ClockMinute = 30

// windowSource normalizes the two availability systems: each source is a
// date predicate plus the window it contributes when the predicate holds.
// The resolver never cares which system a window came from.
type windowSource interface {
	matches(d Date) bool
	window() Window
}

type templateSource struct{ t WeeklyTemplate }

func (s templateSource) matches(d Date) bool { return d.Weekday() == s.t.Weekday }
func (s templateSource) window() Window      { return Window{Start: s.t.Start, End: s.t.End} }

type ruleSource struct{ r AvailabilityRule }

func (s ruleSource) matches(d Date) bool { return s.r.OccursOn(d) }
func (s ruleSource) window() Window      { return s.r.Window() }

// DaySchedule is the resolved availability picture for one provider-date.
type DaySchedule struct {
	Available bool
	Slots     []ClockMinute
}

// DayWindows merges both availability systems into the windows open on
// date. A blackout on the date voids everything. The returned windows may
// overlap; both systems describe the same calendar, so overlap is expected
// rather than an error.
func DayWindows(templates []WeeklyTemplate, rules []AvailabilityRule, blackouts []BlackoutDate, date Date) []Window {
	for _, b := range blackouts {
		if b.Day.Equal(date) {
			return nil
		}
	}

	sources := make([]windowSource, 0, len(templates)+len(rules))
	for _, t := range templates {
		sources = append(sources, templateSource{t})
	}
	for _, r := range rules {
		sources = append(sources, ruleSource{r})
	}

	var windows []Window
	for _, src := range sources {
		if src.matches(date) {
			windows = append(windows, src.window())
		}
	}
	return windows
}

// SlotStarts expands windows into slot-start times at SlotStep intervals,
// from each window's start inclusive to its end exclusive, deduplicated
// across overlapping windows and sorted ascending.
func SlotStarts(windows []Window) []ClockMinute {
	seen := make(map[ClockMinute]struct{})
	for _, w := range windows {
		for cm := w.Start; cm < w.End; cm += SlotStep {
			seen[cm] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}

	slots := make([]ClockMinute, 0, len(seen))
	for cm := range seen {
		slots = append(slots, cm)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots
}

// ResolveDay is the pure availability resolver: blackout check, window
// collection from both systems, slot expansion.
func ResolveDay(templates []WeeklyTemplate, rules []AvailabilityRule, blackouts []BlackoutDate, date Date) DaySchedule {
	slots := SlotStarts(DayWindows(templates, rules, blackouts, date))
	return DaySchedule{
		Available: len(slots) > 0,
		Slots:     slots,
	}
}

// WindowsContain reports half-open containment of a clock minute in any of
// the windows.
func WindowsContain(windows []Window, cm ClockMinute) bool {
	for _, w := range windows {
		if w.Contains(cm) {
			return true
		}
	}
	return false
}
