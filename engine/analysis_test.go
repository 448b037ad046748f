/*
analysis_test.go - Specification tests for the attribution engine

PURPOSE:
  These tests serve as EXECUTABLE SPECIFICATIONS of the engine's behavior.
  Each worked scenario documents one rule of the hour/money attribution and
  validates the full ComputeAnalysis pipeline end to end.

READING THESE TESTS:
  Each test has GIVEN/WHEN/THEN comments explaining the scenario and asserts
  with decimal equality (never float comparison).

Shared helpers for the engine_test package live in this file.
*/
package engine_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/attribution-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func h(n float64) decimal.Decimal { return decimal.NewFromFloat(n) }

func dk(year int, month time.Month, day int) engine.DateKey {
	return engine.NewDateKey(year, month, day)
}

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func workEntry(id, user string, start time.Time, duration string) engine.TimeEntry {
	return engine.TimeEntry{
		ID:       id,
		UserID:   engine.UserID(user),
		Type:     engine.EntryRegular,
		Interval: engine.TimeInterval{Start: start, Duration: duration},
	}
}

func billableEntry(id, user string, start time.Time, duration string, rate float64) engine.TimeEntry {
	e := workEntry(id, user, start, duration)
	e.Billable = true
	e.HourlyRate = h(rate)
	return e
}

func taggedEntry(id, user string, kind engine.EntryType, start time.Time, duration string) engine.TimeEntry {
	e := workEntry(id, user, start, duration)
	e.Type = kind
	return e
}

func singleDayInput(cfg engine.Config, date engine.DateKey, entries ...engine.TimeEntry) engine.Input {
	return engine.Input{
		Entries: entries,
		Config:  cfg,
		Range:   engine.DateRange{Start: date, End: date},
	}
}

func mustEqual(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s: got %s, want %s", name, got, want)
	}
}

// oneUser extracts the single expected UserAnalysis.
func oneUser(t *testing.T, results []engine.UserAnalysis) engine.UserAnalysis {
	t.Helper()
	if len(results) != 1 {
		t.Fatalf("expected 1 user analysis, got %d", len(results))
	}
	return results[0]
}

// =============================================================================
// WORKED SCENARIOS
// =============================================================================

func TestScenario_DailyThreshold_TenHourDay(t *testing.T) {
	// GIVEN: 8h daily threshold, one 10h billable entry at rate 50
	// WHEN: Computing the analysis
	// THEN: regular=8, overtime=2, regularPay=400, otPay=2*50*1.5=150

	cfg := engine.DefaultConfig()
	date := dk(2025, time.January, 6)
	in := singleDayInput(cfg, date, billableEntry("e1", "u1", at(2025, time.January, 6, 9, 0), "PT10H", 50))

	ua := oneUser(t, engine.ComputeAnalysis(in))
	day := ua.Days[date]

	mustEqual(t, "regular", day.Regular, h(8))
	mustEqual(t, "overtime", day.Overtime, h(2))
	mustEqual(t, "earned", day.Money.Earned, h(550)) // 400 regular + 150 overtime
	mustEqual(t, "totals.overtime", ua.Totals.Overtime, h(2))
}

func TestScenario_APIHoliday_ForcesAllOvertime(t *testing.T) {
	// GIVEN: The day is an authoritative holiday (capacity forced to 0)
	//        with a single 8h REGULAR entry
	// WHEN: Computing the analysis
	// THEN: overtime=8, regular=0, IsHoliday=true

	cfg := engine.DefaultConfig()
	date := dk(2025, time.December, 25)
	in := singleDayInput(cfg, date, workEntry("e1", "u1", at(2025, time.December, 25, 9, 0), "PT8H"))
	in.Holidays = engine.HolidayCalendar{
		"u1": {date: {Name: "Christmas Day"}},
	}

	ua := oneUser(t, engine.ComputeAnalysis(in))
	day := ua.Days[date]

	if !day.Context.IsHoliday || day.Context.HolidayName != "Christmas Day" {
		t.Fatalf("expected holiday context, got %+v", day.Context)
	}
	mustEqual(t, "capacity", day.Context.CapacityHours, h(0))
	mustEqual(t, "overtime", day.Overtime, h(8))
	mustEqual(t, "regular", day.Regular, h(0))
}

func TestScenario_PTOEntryTag_IsInformationalOnly(t *testing.T) {
	// GIVEN: An entry tagged HOLIDAY (PTO) for 8h plus a REGULAR 2h entry,
	//        with no authoritative holiday or time-off data
	// WHEN: Computing the analysis
	// THEN: regular=10, overtime=0, vacationEntryHours=8 - the tag never
	//       touches the day context or consumes capacity

	cfg := engine.DefaultConfig()
	date := dk(2025, time.January, 6)
	in := singleDayInput(cfg, date,
		taggedEntry("e1", "u1", engine.EntryHoliday, at(2025, time.January, 6, 0, 0), "PT8H"),
		workEntry("e2", "u1", at(2025, time.January, 6, 9, 0), "PT2H"),
	)

	ua := oneUser(t, engine.ComputeAnalysis(in))
	day := ua.Days[date]

	if day.Context.IsHoliday || day.Context.IsTimeOffDay {
		t.Fatalf("PTO entry tag must not set day-context flags: %+v", day.Context)
	}
	mustEqual(t, "regular", day.Regular, h(10))
	mustEqual(t, "overtime", day.Overtime, h(0))
	mustEqual(t, "vacationEntryHours", day.VacationEntryHours, h(8))
}

func TestScenario_BothBasis_FortyFiveHourWeek(t *testing.T) {
	// GIVEN: basis=both, dailyThreshold=8, weeklyThreshold=40; one user logs
	//        9h/day Monday through Friday (45h week)
	// WHEN: Computing the analysis
	// THEN: dailyOT total=5, weeklyOT total=5, combined=max(5,5)=5 (not 10),
	//       overlap=5, and the reported overtime for the range is 5

	cfg := engine.DefaultConfig()
	cfg.OvertimeBasis = engine.BasisBoth

	monday := dk(2025, time.January, 6)
	var entries []engine.TimeEntry
	for i := 0; i < 5; i++ {
		entries = append(entries, workEntry("e", "u1", at(2025, time.January, 6+i, 9, 0), "PT9H"))
	}
	in := engine.Input{
		Entries: entries,
		Config:  cfg,
		Range:   engine.DateRange{Start: monday, End: monday.AddDays(4)},
	}

	ua := oneUser(t, engine.ComputeAnalysis(in))

	mustEqual(t, "dailyOvertime", ua.Totals.DailyOvertime, h(5))
	mustEqual(t, "weeklyOvertime", ua.Totals.WeeklyOvertime, h(5))
	mustEqual(t, "combinedOvertime", ua.Totals.CombinedOvertime, h(5))
	mustEqual(t, "overlapOvertime", ua.Totals.OverlapOvertime, h(5))
	mustEqual(t, "overtime", ua.Totals.Overtime, h(5))
	mustEqual(t, "regular", ua.Totals.Regular, h(40))

	// Monday crosses only the daily threshold; Friday carries the weekly tail.
	mustEqual(t, "monday overtime", ua.Days[monday].Overtime, h(1))
	mustEqual(t, "friday overtime", ua.Days[monday.AddDays(4)].Overtime, h(5))
}

func TestScenario_WeeklyBasis_IgnoresDailyCapacity(t *testing.T) {
	// GIVEN: basis=weekly, weeklyThreshold=40; 10h/day Monday through Thursday
	// WHEN: Computing the analysis
	// THEN: no overtime (40h == threshold), despite four 10h days

	cfg := engine.DefaultConfig()
	cfg.OvertimeBasis = engine.BasisWeekly

	monday := dk(2025, time.January, 6)
	var entries []engine.TimeEntry
	for i := 0; i < 4; i++ {
		entries = append(entries, workEntry("e", "u1", at(2025, time.January, 6+i, 8, 0), "PT10H"))
	}
	in := engine.Input{
		Entries: entries,
		Config:  cfg,
		Range:   engine.DateRange{Start: monday, End: monday.AddDays(4)},
	}

	ua := oneUser(t, engine.ComputeAnalysis(in))
	mustEqual(t, "overtime", ua.Totals.Overtime, h(0))
	mustEqual(t, "regular", ua.Totals.Regular, h(40))
}

// =============================================================================
// STRUCTURAL PROPERTIES
// =============================================================================

func TestGapFilling_ZeroEntryDaysGetDayResults(t *testing.T) {
	// GIVEN: A 5-day window with entries on a single day
	// WHEN: Computing the analysis
	// THEN: Every date in the window has a DayResult with a resolved context

	cfg := engine.DefaultConfig()
	start := dk(2025, time.March, 3)
	in := engine.Input{
		Entries: []engine.TimeEntry{workEntry("e1", "u1", at(2025, time.March, 5, 9, 0), "PT4H")},
		Config:  cfg,
		Range:   engine.DateRange{Start: start, End: start.AddDays(4)},
	}

	ua := oneUser(t, engine.ComputeAnalysis(in))
	if len(ua.Days) != 5 {
		t.Fatalf("expected 5 day results, got %d", len(ua.Days))
	}
	empty := ua.Days[start]
	mustEqual(t, "empty day total", empty.Total, h(0))
	mustEqual(t, "empty day capacity", empty.Context.CapacityHours, cfg.DailyThresholdHours)
}

func TestConservation_NoHoursCreatedOrLost(t *testing.T) {
	// GIVEN: A mixed day of work, break, and PTO-tagged entries
	// WHEN: Computing the analysis
	// THEN: regular + overtime == sum of all entry durations

	cfg := engine.DefaultConfig()
	date := dk(2025, time.January, 6)
	in := singleDayInput(cfg, date,
		workEntry("e1", "u1", at(2025, time.January, 6, 8, 0), "PT6H"),
		taggedEntry("e2", "u1", engine.EntryBreak, at(2025, time.January, 6, 12, 0), "PT1H"),
		workEntry("e3", "u1", at(2025, time.January, 6, 14, 0), "PT5H"),
		taggedEntry("e4", "u1", engine.EntryTimeOff, at(2025, time.January, 6, 20, 0), "PT2H"),
	)

	ua := oneUser(t, engine.ComputeAnalysis(in))
	day := ua.Days[date]

	mustEqual(t, "total", day.Total, h(14))
	mustEqual(t, "regular+overtime", day.Regular.Add(day.Overtime), day.Total)
	mustEqual(t, "overtime", day.Overtime, h(3)) // 11h of work against 8h capacity
	mustEqual(t, "breaks", day.Breaks, h(1))
	mustEqual(t, "vacationEntryHours", day.VacationEntryHours, h(2))
}

func TestIdempotence_IdenticalInputsIdenticalOutputs(t *testing.T) {
	// GIVEN: A non-trivial input
	// WHEN: Computing the analysis twice
	// THEN: The outputs are structurally identical (no hidden clock reads)

	cfg := engine.DefaultConfig()
	cfg.OvertimeBasis = engine.BasisBoth
	monday := dk(2025, time.January, 6)
	in := engine.Input{
		Entries: []engine.TimeEntry{
			billableEntry("e1", "u1", at(2025, time.January, 6, 9, 0), "PT10H", 50),
			workEntry("e2", "u2", at(2025, time.January, 7, 9, 0), "PT9H"),
		},
		Config: cfg,
		Range:  engine.DateRange{Start: monday, End: monday.AddDays(6)},
	}

	first := engine.ComputeAnalysis(in)
	second := engine.ComputeAnalysis(in)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two runs over identical inputs diverged")
	}
}

func TestUsers_SortedAndSelfContained(t *testing.T) {
	// GIVEN: Entries for several users in scrambled order
	// WHEN: Computing the analysis
	// THEN: One analysis per user, ordered by user ID

	cfg := engine.DefaultConfig()
	date := dk(2025, time.January, 6)
	in := singleDayInput(cfg, date,
		workEntry("e1", "zeta", at(2025, time.January, 6, 9, 0), "PT8H"),
		workEntry("e2", "alpha", at(2025, time.January, 6, 9, 0), "PT8H"),
		workEntry("e3", "mid", at(2025, time.January, 6, 9, 0), "PT8H"),
	)

	results := engine.ComputeAnalysis(in)
	if len(results) != 3 {
		t.Fatalf("expected 3 users, got %d", len(results))
	}
	for i, want := range []engine.UserID{"alpha", "mid", "zeta"} {
		if results[i].UserID != want {
			t.Errorf("user %d: got %s, want %s", i, results[i].UserID, want)
		}
	}
}

func TestTimeOffDay_ReducesCapacity(t *testing.T) {
	// GIVEN: A half-day (4h) of approved time off and 6h of logged work
	// WHEN: Computing the analysis
	// THEN: Capacity is 8-4=4, so 2h of the work is overtime

	cfg := engine.DefaultConfig()
	date := dk(2025, time.January, 6)
	in := singleDayInput(cfg, date, workEntry("e1", "u1", at(2025, time.January, 6, 9, 0), "PT6H"))
	in.TimeOff = engine.TimeOffCalendar{
		"u1": {date: {Hours: h(4)}},
	}

	ua := oneUser(t, engine.ComputeAnalysis(in))
	day := ua.Days[date]

	if !day.Context.IsTimeOffDay {
		t.Fatal("expected time-off day flag")
	}
	mustEqual(t, "capacity", day.Context.CapacityHours, h(4))
	mustEqual(t, "overtime", day.Overtime, h(2))
	mustEqual(t, "regular", day.Regular, h(4))
}
