/*
grouper.go - Entry bucketing by user, day, and ISO week

PURPOSE:
  First stage of the pipeline. Buckets raw entries per user and per canonical
  calendar day, and indexes which days of each ISO week carry entries, for
  weekly-basis accounting.

BUCKETING RULE:
  An entry belongs to the day its START instant falls on in the canonical
  timezone, even when it spans midnight (22:00-02:00 is 4h on the start day,
  0h on the next). Entries with no parsable start at all are skipped; entries
  with malformed durations are kept at zero duration. Grouping never errors
  on data.
*/
package engine

import (
	"sort"
	"time"
)

// Grouping is the bucketed view of the input entries.
type Grouping struct {
	// ByUser maps user -> day -> entries started that day (unordered;
	// attribution re-sorts by start time).
	ByUser map[UserID]map[DateKey][]TimeEntry

	// Weeks maps user -> ISO week -> the days of that week carrying
	// entries, sorted ascending.
	Weeks map[UserID]map[WeekKey][]DateKey

	// Names carries the last-seen display name per user.
	Names map[UserID]string
}

// Group buckets entries by user and canonical calendar day in loc.
func Group(entries []TimeEntry, loc *time.Location) Grouping {
	g := Grouping{
		ByUser: make(map[UserID]map[DateKey][]TimeEntry),
		Weeks:  make(map[UserID]map[WeekKey][]DateKey),
		Names:  make(map[UserID]string),
	}

	for _, e := range entries {
		if e.UserID == "" || e.Interval.Start.IsZero() {
			continue
		}
		day := DateKeyFromTime(e.Interval.Start, loc)

		days, ok := g.ByUser[e.UserID]
		if !ok {
			days = make(map[DateKey][]TimeEntry)
			g.ByUser[e.UserID] = days
		}
		days[day] = append(days[day], e)

		if e.UserName != "" {
			g.Names[e.UserID] = e.UserName
		}
	}

	for userID, days := range g.ByUser {
		weeks := make(map[WeekKey][]DateKey)
		for day := range days {
			week := day.Week()
			weeks[week] = append(weeks[week], day)
		}
		for week := range weeks {
			sortDateKeys(weeks[week])
		}
		g.Weeks[userID] = weeks
	}

	return g
}

// Users returns the bucketed user IDs in a stable order.
func (g Grouping) Users() []UserID {
	ids := make([]UserID, 0, len(g.ByUser))
	for id := range g.ByUser {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// sortByStart orders a day's entries chronologically, falling back to entry
// ID for identical starts so attribution stays deterministic.
func sortByStart(entries []TimeEntry) []TimeEntry {
	sorted := make([]TimeEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Interval.Start, sorted[j].Interval.Start
		if !a.Equal(b) {
			return a.Before(b)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
