package engine_test

import (
	"testing"
	"time"

	"github.com/warp/attribution-engine/engine"
)

func TestParseISODuration(t *testing.T) {
	cases := []struct {
		in    string
		hours float64
		ok    bool
	}{
		{"PT8H", 8, true},
		{"PT7H30M", 7.5, true},
		{"PT45M", 0.75, true},
		{"PT1H30M15S", 1.504166666666666666666666667, true},
		{"PT90M", 1.5, true},
		{"P1DT2H", 26, true},
		{"P1D", 24, true},
		{"PT", 0, true},
		{"pt2h", 2, true},
		{"", 0, false},
		{"P", 0, false},
		{"8H", 0, false},
		{"PT8", 0, false},
		{"PTXH", 0, false},
		{"PT30M1H", 0, false}, // designators out of order
		{"P3W", 0, false},     // week designator not produced upstream
	}

	for _, tc := range cases {
		got, ok := engine.ParseISODuration(tc.in)
		if ok != tc.ok {
			t.Errorf("%q: ok=%v, want %v", tc.in, ok, tc.ok)
			continue
		}
		if ok && !got.Sub(h(tc.hours)).Abs().LessThan(h(0.000001)) {
			t.Errorf("%q: got %s hours, want %v", tc.in, got, tc.hours)
		}
	}
}

func TestEntryHours_FallsBackToStartEndDelta(t *testing.T) {
	// GIVEN: An entry with a malformed duration string but valid start/end
	// WHEN: Resolving its hours
	// THEN: The start/end delta is used

	e := engine.TimeEntry{Interval: engine.TimeInterval{
		Start:    at(2025, time.January, 6, 9, 0),
		End:      at(2025, time.January, 6, 16, 30),
		Duration: "not-a-duration",
	}}
	mustEqual(t, "hours", e.Hours(), h(7.5))
}

func TestEntryHours_MalformedEverything_DegradesToZero(t *testing.T) {
	// Data errors never surface as errors: a fully malformed interval is a
	// zero-duration entry, and an inverted interval is too.

	e := engine.TimeEntry{Interval: engine.TimeInterval{Duration: "garbage"}}
	mustEqual(t, "no interval", e.Hours(), h(0))

	e = engine.TimeEntry{Interval: engine.TimeInterval{
		Start: at(2025, time.January, 6, 16, 0),
		End:   at(2025, time.January, 6, 9, 0),
	}}
	mustEqual(t, "inverted interval", e.Hours(), h(0))
}

func TestEntryHours_DurationStringWinsOverDelta(t *testing.T) {
	e := engine.TimeEntry{Interval: engine.TimeInterval{
		Start:    at(2025, time.January, 6, 9, 0),
		End:      at(2025, time.January, 6, 17, 0),
		Duration: "PT6H",
	}}
	mustEqual(t, "hours", e.Hours(), h(6))
}
