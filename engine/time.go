/*
time.go - Typed calendar values for date bucketing

PURPOSE:
  Provides DateKey, a (year, month, day) value type with total ordering and
  explicit canonical-timezone construction, and WeekKey, the ISO-8601 week
  (Monday start) used for weekly-basis accounting.

  String-keyed date maps are a classic source of locale/format bugs; a typed
  key with one canonical String() form avoids them while still marshaling to
  "YYYY-MM-DD" for JSON map keys.

SEE ALSO:
  - grouper.go: Buckets entries by DateKey and WeekKey
*/
package engine

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// DATE KEY - One calendar day in the canonical timezone
// =============================================================================

type DateKey struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDateKey(year int, month time.Month, day int) DateKey {
	return DateKey{Year: year, Month: month, Day: day}
}

// DateKeyFromTime buckets an instant into a calendar day in loc.
// An entry belongs to the day it started in the canonical timezone, even
// when it spans midnight.
func DateKeyFromTime(t time.Time, loc *time.Location) DateKey {
	local := t.In(loc)
	return DateKey{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// ParseDateKey parses the canonical "YYYY-MM-DD" form.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return DateKey{}, fmt.Errorf("invalid date key %q: %w", s, err)
	}
	return DateKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d DateKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Time returns the day's midnight in UTC. Used for calendar arithmetic only;
// bucketing always goes through DateKeyFromTime with an explicit zone.
func (d DateKey) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d DateKey) IsZero() bool { return d == DateKey{} }

func (d DateKey) Weekday() time.Weekday { return d.Time().Weekday() }

func (d DateKey) AddDays(n int) DateKey {
	t := d.Time().AddDate(0, 0, n)
	return DateKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Compare returns -1, 0, or +1 for calendar ordering.
func (d DateKey) Compare(o DateKey) int {
	a, b := d.Time(), o.Time()
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func (d DateKey) Before(o DateKey) bool { return d.Compare(o) < 0 }
func (d DateKey) After(o DateKey) bool  { return d.Compare(o) > 0 }

// Week returns the ISO-8601 week this day belongs to (weeks start Monday).
func (d DateKey) Week() WeekKey {
	year, week := d.Time().ISOWeek()
	return WeekKey{Year: year, Week: week}
}

// MarshalText / UnmarshalText let DateKey serve as a JSON map key.
func (d DateKey) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DateKey) UnmarshalText(text []byte) error {
	parsed, err := ParseDateKey(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func sortDateKeys(keys []DateKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
}

// =============================================================================
// WEEK KEY - ISO-8601 week, Monday start
// =============================================================================

type WeekKey struct {
	Year int
	Week int
}

func (w WeekKey) String() string { return fmt.Sprintf("%04d-W%02d", w.Year, w.Week) }

func (w WeekKey) Before(o WeekKey) bool {
	if w.Year != o.Year {
		return w.Year < o.Year
	}
	return w.Week < o.Week
}

func sortWeekKeys(keys []WeekKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
}

// =============================================================================
// DATE RANGE - Inclusive reporting window
// =============================================================================

type DateRange struct {
	Start DateKey
	End   DateKey
}

// Dates enumerates every day in the range in ascending order.
// An inverted range yields nothing.
func (r DateRange) Dates() []DateKey {
	if r.End.Before(r.Start) {
		return nil
	}
	var days []DateKey
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (r DateRange) Contains(d DateKey) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}
