/*
duration.go - Lenient ISO-8601 duration parsing

PURPOSE:
  Upstream time-log APIs report entry durations as ISO-8601 strings
  ("PT7H30M", "PT45M", "PT1H30M15S"). Malformed or missing strings must
  degrade to the start/end delta or to zero, never to an error: a financial
  report with one bad row should still render.

SUPPORTED FORM:
  P[nD][T[nH][nM][nS]] - the day/time designators produced by time-log
  exports. Week/month/year designators are not produced upstream and parse
  as malformed (zero).
*/
package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	secondsPerHour = decimal.NewFromInt(3600)
	minutesPerHour = decimal.NewFromInt(60)
	hoursPerDay    = decimal.NewFromInt(24)
)

// ParseISODuration parses an ISO-8601 duration into hours.
// Returns ok=false for anything it cannot fully parse.
func ParseISODuration(s string) (decimal.Decimal, bool) {
	if len(s) < 2 || (s[0] != 'P' && s[0] != 'p') {
		return decimal.Zero, false
	}
	rest := s[1:]

	datePart := rest
	timePart := ""
	if i := strings.IndexAny(rest, "Tt"); i >= 0 {
		datePart, timePart = rest[:i], rest[i+1:]
	}

	total := decimal.Zero

	days, leftover, ok := takeComponent(datePart, 'D')
	if !ok || leftover != "" {
		return decimal.Zero, false
	}
	total = total.Add(days.Mul(hoursPerDay))

	hours, leftover, ok := takeComponent(timePart, 'H')
	if !ok {
		return decimal.Zero, false
	}
	minutes, leftover, ok := takeComponent(leftover, 'M')
	if !ok {
		return decimal.Zero, false
	}
	seconds, leftover, ok := takeComponent(leftover, 'S')
	if !ok || leftover != "" {
		return decimal.Zero, false
	}

	total = total.Add(hours)
	total = total.Add(minutes.Div(minutesPerHour))
	total = total.Add(seconds.Div(secondsPerHour))
	return total, true
}

// takeComponent consumes a leading "<number><designator>" from s, if present.
// Returns the value (zero when absent) and the unconsumed remainder.
func takeComponent(s string, designator byte) (decimal.Decimal, string, bool) {
	if s == "" {
		return decimal.Zero, "", true
	}
	i := 0
	for i < len(s) && (s[i] == '.' || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}
	if i == 0 || i >= len(s) {
		return decimal.Zero, s, i == 0 // bare number with no designator is malformed
	}
	upper := s[i] &^ 0x20 // ASCII uppercase
	if upper != designator {
		return decimal.Zero, s, true // component absent, leave for the next designator
	}
	value, err := decimal.NewFromString(s[:i])
	if err != nil {
		return decimal.Zero, s, false
	}
	return value, s[i+1:], true
}

// intervalHours resolves an interval's duration in hours: the ISO duration
// string when parsable, otherwise the end-start delta, otherwise zero.
// Negative deltas (end before start) degrade to zero.
func intervalHours(iv TimeInterval) decimal.Decimal {
	if iv.Duration != "" {
		if hours, ok := ParseISODuration(iv.Duration); ok {
			return hours
		}
	}
	if !iv.Start.IsZero() && !iv.End.IsZero() {
		delta := iv.End.Sub(iv.Start)
		if delta > 0 {
			return decimal.NewFromFloat(delta.Seconds()).Div(secondsPerHour)
		}
	}
	return decimal.Zero
}
