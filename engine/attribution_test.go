package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attribution-engine/engine"
)

func attributed(entries ...engine.TimeEntry) []*engine.AttributedEntry {
	out := make([]*engine.AttributedEntry, len(entries))
	for i, e := range entries {
		out[i] = &engine.AttributedEntry{Entry: e, Hours: e.Hours()}
	}
	return out
}

func dayContext(capacity float64) engine.DayContext {
	return engine.DayContext{
		CapacityHours:   h(capacity),
		Multiplier:      h(1.5),
		Tier2Multiplier: h(2),
	}
}

func TestAttributeDay_SplitsEntryStraddlingThreshold(t *testing.T) {
	// GIVEN: 8h capacity, a 6h entry then a 4h entry
	// WHEN: Attributing the day
	// THEN: The second entry splits 2h regular / 2h overtime within itself

	entries := attributed(
		workEntry("e1", "u1", at(2025, time.January, 6, 8, 0), "PT6H"),
		workEntry("e2", "u1", at(2025, time.January, 6, 15, 0), "PT4H"),
	)
	engine.AttributeDay(entries, dayContext(8))

	assert.True(t, entries[0].DailyOvertime.IsZero(), "first entry fully regular")
	assert.True(t, entries[1].DailyOvertime.Equal(h(2)), "second entry carries the tail")
}

func TestAttributeDay_OvertimeAccruesOnTheTail(t *testing.T) {
	// GIVEN: 8h capacity and three 4h entries
	// WHEN: Attributing the day
	// THEN: Overtime lands entirely on the latest-starting entry

	entries := attributed(
		workEntry("e1", "u1", at(2025, time.January, 6, 6, 0), "PT4H"),
		workEntry("e2", "u1", at(2025, time.January, 6, 10, 0), "PT4H"),
		workEntry("e3", "u1", at(2025, time.January, 6, 15, 0), "PT4H"),
	)
	engine.AttributeDay(entries, dayContext(8))

	assert.True(t, entries[0].DailyOvertime.IsZero())
	assert.True(t, entries[1].DailyOvertime.IsZero())
	assert.True(t, entries[2].DailyOvertime.Equal(h(4)))
}

func TestAttributeDay_PTONeutrality(t *testing.T) {
	// GIVEN: An 8h PTO-tagged entry and a break logged before 8h of work
	// WHEN: Attributing against 8h capacity
	// THEN: The work stays fully regular - PTO tags and breaks never consume
	//       capacity or push later work into overtime

	entries := attributed(
		taggedEntry("e1", "u1", engine.EntryHoliday, at(2025, time.January, 6, 0, 0), "PT8H"),
		taggedEntry("e2", "u1", engine.EntryBreak, at(2025, time.January, 6, 8, 0), "PT1H"),
		workEntry("e3", "u1", at(2025, time.January, 6, 9, 0), "PT8H"),
	)
	engine.AttributeDay(entries, dayContext(8))

	for _, e := range entries {
		assert.True(t, e.DailyOvertime.IsZero(), "entry %s should have no overtime", e.Entry.ID)
	}
}

func TestAttributeDay_ZeroCapacityMakesAllWorkOvertime(t *testing.T) {
	entries := attributed(workEntry("e1", "u1", at(2025, time.January, 6, 9, 0), "PT5H"))
	engine.AttributeDay(entries, dayContext(0))
	assert.True(t, entries[0].DailyOvertime.Equal(h(5)))
}

func TestAttributeDay_TotalSplitIndependentOfEntryGranularity(t *testing.T) {
	// GIVEN: The same 10 chronological work hours, once as one entry and
	//        once as four entries
	// WHEN: Attributing both against 8h capacity
	// THEN: The total regular/overtime split is identical; only the
	//       distribution across entries differs

	single := attributed(workEntry("e1", "u1", at(2025, time.January, 6, 8, 0), "PT10H"))
	split := attributed(
		workEntry("e1", "u1", at(2025, time.January, 6, 8, 0), "PT3H"),
		workEntry("e2", "u1", at(2025, time.January, 6, 11, 0), "PT3H"),
		workEntry("e3", "u1", at(2025, time.January, 6, 14, 0), "PT2H"),
		workEntry("e4", "u1", at(2025, time.January, 6, 16, 0), "PT2H"),
	)
	engine.AttributeDay(single, dayContext(8))
	engine.AttributeDay(split, dayContext(8))

	sum := func(entries []*engine.AttributedEntry) decimal.Decimal {
		total := decimal.Zero
		for _, e := range entries {
			total = total.Add(e.DailyOvertime)
		}
		return total
	}
	require.True(t, sum(single).Equal(h(2)))
	assert.True(t, sum(single).Equal(sum(split)))
}

func TestAttributeWeek_FoldsAcrossDays(t *testing.T) {
	// GIVEN: 40h weekly threshold and 45h of work spread across five days
	// WHEN: Attributing the week in chronological order
	// THEN: The final 5h are weekly overtime, all on the last entry

	var entries []*engine.AttributedEntry
	for i := 0; i < 5; i++ {
		entries = append(entries, attributed(workEntry("e", "u1", at(2025, time.January, 6+i, 9, 0), "PT9H"))...)
	}
	engine.AttributeWeek(entries, h(40))

	for i := 0; i < 4; i++ {
		assert.True(t, entries[i].WeeklyOvertime.IsZero(), "day %d", i)
	}
	assert.True(t, entries[4].WeeklyOvertime.Equal(h(5)))
}

func TestAttributeWeek_IndependentOfDailyAttribution(t *testing.T) {
	// GIVEN: Entries already carrying daily overtime portions
	// WHEN: Running the weekly fold
	// THEN: Daily portions are untouched; weekly is computed on its own

	entries := attributed(
		workEntry("e1", "u1", at(2025, time.January, 6, 8, 0), "PT10H"),
		workEntry("e2", "u1", at(2025, time.January, 7, 8, 0), "PT10H"),
	)
	engine.AttributeDay(entries[:1], dayContext(8))
	engine.AttributeDay(entries[1:], dayContext(8))
	engine.AttributeWeek(entries, h(15))

	assert.True(t, entries[0].DailyOvertime.Equal(h(2)))
	assert.True(t, entries[1].DailyOvertime.Equal(h(2)))
	assert.True(t, entries[0].WeeklyOvertime.IsZero())
	assert.True(t, entries[1].WeeklyOvertime.Equal(h(5)))
}
