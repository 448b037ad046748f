/*
attribution.go - Tail attribution of regular vs. overtime hours

PURPOSE:
  Third stage of the pipeline. Splits logged hours into regular and overtime
  by folding a running total over the entries in chronological order: once
  cumulative capacity-consuming work crosses the threshold, everything after
  the crossing point is overtime. An entry straddling the threshold is split
  within itself.

RULES:
  - Only REGULAR (work) entries consume capacity.
  - BREAK entries and PTO-tagged entries (HOLIDAY/TIME_OFF) are always 100%
    regular and never push later work into overtime.
  - The daily fold runs per day against the resolved day capacity; the
    weekly fold runs across the user's whole ISO week (Monday start, entries
    ordered chronologically across days) against the weekly threshold,
    independent of daily capacity.

The fold carries an explicit accumulator; there is no shared state, so
independent users and days can be attributed concurrently by the caller.
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// assignOvertime records one entry's overtime portion for a given basis.
type assignOvertime func(e *AttributedEntry, overtime decimal.Decimal)

func assignDaily(e *AttributedEntry, overtime decimal.Decimal)  { e.DailyOvertime = overtime }
func assignWeekly(e *AttributedEntry, overtime decimal.Decimal) { e.WeeklyOvertime = overtime }

// attributeSequence folds the tail-attribution accumulator over entries in
// the order given, splitting each capacity-consuming entry against the
// remaining threshold. Entries must already be in chronological order.
func attributeSequence(entries []*AttributedEntry, threshold decimal.Decimal, assign assignOvertime) {
	running := decimal.Zero
	for _, e := range entries {
		if e.Entry.Kind() != EntryRegular {
			assign(e, decimal.Zero)
			continue
		}
		remaining := decimal.Max(decimal.Zero, threshold.Sub(running))
		regular := decimal.Min(e.Hours, remaining)
		assign(e, e.Hours.Sub(regular))
		running = running.Add(e.Hours)
	}
}

// AttributeDay splits one day's entries (chronologically ordered) against the
// day's effective capacity, recording per-entry daily overtime.
func AttributeDay(entries []*AttributedEntry, ctx DayContext) {
	attributeSequence(entries, ctx.CapacityHours, assignDaily)
}

// AttributeWeek splits a week's entries (chronologically ordered across
// days) against the weekly threshold, recording per-entry weekly overtime.
func AttributeWeek(entries []*AttributedEntry, weeklyThreshold decimal.Decimal) {
	attributeSequence(entries, weeklyThreshold, assignWeekly)
}

// finalizeEntry derives the reported Regular/Overtime split for the
// configured basis from the per-basis portions.
func finalizeEntry(e *AttributedEntry, basis OvertimeBasis) {
	switch basis {
	case BasisWeekly:
		e.Overtime = e.WeeklyOvertime
	case BasisBoth:
		e.Overtime = decimal.Max(e.DailyOvertime, e.WeeklyOvertime)
	default:
		e.Overtime = e.DailyOvertime
	}
	e.Regular = e.Hours.Sub(e.Overtime)
}
