/*
analysis.go - ComputeAnalysis entry point

PURPOSE:
  Runs the four pipeline stages over a reporting window and assembles the
  per-user, per-day output:

    1. Group entries by user / canonical day / ISO week   (grouper.go)
    2. Resolve the day context for every date in range     (context.go)
    3. Attribute hours: daily fold, weekly fold, combine   (attribution.go)
    4. Price the attributed hours                          (money.go)

  Every date in the window gets a DayResult, even with no entries, so export
  layers can render gapless rows. Entries whose start day falls outside the
  window are ignored.

BOTH-BASIS ACCOUNTING:
  Daily and weekly overtime are computed independently. The day-level
  reported overtime is max(dailyOT, weeklyOT) for that day. The range-level
  overlap/combined totals are computed per ISO week - overlap is
  min(week's daily-OT sum, week's weekly OT), combined is the max - and
  summed across weeks, so hours are never double-counted or lost.

PURITY:
  No I/O, no shared mutable state, no clock reads. Safe to call concurrently
  with different inputs; same inputs always produce identical output.
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// ComputeAnalysis computes the per-user hour and money breakdown for the
// reporting window. The caller is responsible for validating Config and
// Range beforehand (see ValidateConfig); data errors inside entries degrade
// to safe defaults and never surface as errors.
func ComputeAnalysis(in Input) []UserAnalysis {
	g := Group(in.Entries, in.location())

	results := make([]UserAnalysis, 0, len(g.ByUser))
	for _, userID := range g.Users() {
		results = append(results, analyzeUser(userID, g, in))
	}
	return results
}

func analyzeUser(userID UserID, g Grouping, in Input) UserAnalysis {
	basis := in.Config.OvertimeBasis
	if basis == "" {
		basis = BasisDaily
	}

	// Stage 2+3a: resolve context and run the daily fold for every date in
	// the window. Zero-entry days still get a context for gap-filling.
	days := make(map[DateKey]*DayResult)
	entryPtrs := make(map[DateKey][]*AttributedEntry)
	for _, date := range in.Range.Dates() {
		ctx := ResolveDayContext(userID, date, in.Config, in.Overrides, in.Profiles, in.Holidays, in.TimeOff)

		ptrs := make([]*AttributedEntry, 0, len(g.ByUser[userID][date]))
		for _, e := range sortByStart(g.ByUser[userID][date]) {
			ptrs = append(ptrs, &AttributedEntry{Entry: e, Hours: e.Hours()})
		}
		if basis != BasisWeekly {
			AttributeDay(ptrs, ctx)
		}

		days[date] = &DayResult{Context: ctx}
		entryPtrs[date] = ptrs
	}

	// Stage 3b: weekly fold across each ISO week's in-window entries,
	// chronological across days.
	if basis != BasisDaily {
		for _, week := range userWeeks(g, userID) {
			var weekEntries []*AttributedEntry
			for _, date := range g.Weeks[userID][week] {
				if in.Range.Contains(date) {
					weekEntries = append(weekEntries, entryPtrs[date]...)
				}
			}
			AttributeWeek(weekEntries, in.Config.WeeklyThresholdHours)
		}
	}

	// Stage 3c+4: finalize the per-entry split for the basis, price it, and
	// aggregate per day.
	for date, day := range days {
		for _, e := range entryPtrs[date] {
			finalizeEntry(e, basis)
			day.Money = day.Money.Add(PriceEntry(*e, day.Context))
			accumulateEntry(day, *e)
			day.Entries = append(day.Entries, *e)
		}
		day.Overtime = dayOvertime(day, basis)
		day.Regular = day.Total.Sub(day.Overtime)
	}

	ua := UserAnalysis{
		UserID:   userID,
		UserName: userName(userID, g, in.Profiles),
		Days:     days,
	}
	ua.Totals = aggregateTotals(&ua, g, userID, in.Range, basis)
	return ua
}

// accumulateEntry folds one attributed entry into the day's hour buckets.
func accumulateEntry(day *DayResult, e AttributedEntry) {
	day.Total = day.Total.Add(e.Hours)
	day.DailyOvertime = day.DailyOvertime.Add(e.DailyOvertime)
	day.WeeklyOvertime = day.WeeklyOvertime.Add(e.WeeklyOvertime)

	switch e.Entry.Kind() {
	case EntryRegular:
		day.Worked = day.Worked.Add(e.Hours)
	case EntryBreak:
		day.Breaks = day.Breaks.Add(e.Hours)
	case EntryHoliday, EntryTimeOff:
		day.VacationEntryHours = day.VacationEntryHours.Add(e.Hours)
	}

	if e.Entry.Billable {
		day.BillableHours = day.BillableHours.Add(e.Hours)
	} else {
		day.NonBillableHours = day.NonBillableHours.Add(e.Hours)
	}
}

// dayOvertime is the day's reported overtime under the configured basis.
func dayOvertime(day *DayResult, basis OvertimeBasis) decimal.Decimal {
	switch basis {
	case BasisWeekly:
		return day.WeeklyOvertime
	case BasisBoth:
		return decimal.Max(day.DailyOvertime, day.WeeklyOvertime)
	default:
		return day.DailyOvertime
	}
}

func aggregateTotals(ua *UserAnalysis, g Grouping, userID UserID, rng DateRange, basis OvertimeBasis) Totals {
	var t Totals
	for _, day := range ua.Days {
		t.Total = t.Total.Add(day.Total)
		t.Worked = t.Worked.Add(day.Worked)
		t.DailyOvertime = t.DailyOvertime.Add(day.DailyOvertime)
		t.WeeklyOvertime = t.WeeklyOvertime.Add(day.WeeklyOvertime)
		t.VacationEntryHours = t.VacationEntryHours.Add(day.VacationEntryHours)
		t.Breaks = t.Breaks.Add(day.Breaks)
		t.BillableHours = t.BillableHours.Add(day.BillableHours)
		t.NonBillableHours = t.NonBillableHours.Add(day.NonBillableHours)
		t.Money = t.Money.Add(day.Money)
	}

	// Overlap/combined are per-week quantities: summing per-day maxima
	// would double-count a week whose daily and weekly overtime cover the
	// same underlying hours.
	for _, week := range userWeeks(g, userID) {
		daily, weekly := decimal.Zero, decimal.Zero
		for _, date := range g.Weeks[userID][week] {
			if day, ok := ua.Days[date]; ok {
				daily = daily.Add(day.DailyOvertime)
				weekly = weekly.Add(day.WeeklyOvertime)
			}
		}
		t.OverlapOvertime = t.OverlapOvertime.Add(decimal.Min(daily, weekly))
		t.CombinedOvertime = t.CombinedOvertime.Add(decimal.Max(daily, weekly))
	}

	switch basis {
	case BasisWeekly:
		t.Overtime = t.WeeklyOvertime
	case BasisBoth:
		t.Overtime = t.CombinedOvertime
	default:
		t.Overtime = t.DailyOvertime
	}
	t.Regular = t.Total.Sub(t.Overtime)
	return t
}

// userWeeks returns the user's ISO weeks carrying entries, in ascending order.
func userWeeks(g Grouping, userID UserID) []WeekKey {
	weeks := make([]WeekKey, 0, len(g.Weeks[userID]))
	for week := range g.Weeks[userID] {
		weeks = append(weeks, week)
	}
	sortWeekKeys(weeks)
	return weeks
}

func userName(userID UserID, g Grouping, profiles Profiles) string {
	if name := g.Names[userID]; name != "" {
		return name
	}
	if profile, ok := profiles[userID]; ok && profile.Name != "" {
		return profile.Name
	}
	return string(userID)
}
