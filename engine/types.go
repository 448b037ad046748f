/*
Package engine implements the overtime attribution engine.

PURPOSE:
  Given raw time-log entries, an overtime configuration, and authoritative
  per-user schedule data (profiles, overrides, holidays, time-off), the engine
  computes for every user and every calendar day in a reporting window the
  exact split of logged hours into regular and overtime, and derives the
  billable/non-billable and earned/cost/profit money breakdown from that split.

KEY CONCEPTS IN THIS FILE (types.go):
  - TimeEntry: One logged interval, owned by the caller, never mutated
  - Config: The workspace overtime rules (basis, thresholds, premiums)
  - Override: Per-user schedule overrides (global, weekly, or per-day mode)
  - DayContext: The resolved per-day facts (capacity, holiday/time-off flags)
  - UserAnalysis / DayResult: The computed output

DESIGN PRINCIPLES:
  1. Purity: ComputeAnalysis is a pure function. Same inputs, same output.
  2. Precision: Uses decimal.Decimal to avoid floating-point errors in
     hour and money arithmetic.
  3. Graceful degradation: malformed entry data becomes zero-duration,
     never an error. Financial reports degrade, they do not abort.
  4. Authoritative flags: holiday/time-off/non-working status comes only
     from the supplied calendars, never from entry type tags.

SEE ALSO:
  - analysis.go:    ComputeAnalysis entry point
  - context.go:     Day-context resolution (override precedence cascade)
  - attribution.go: Tail attribution of regular vs. overtime hours
  - money.go:       Two-tier premium pricing
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string

// =============================================================================
// TIME ENTRY - One logged interval
// =============================================================================

// EntryType classifies a logged entry. HOLIDAY and TIME_OFF are PTO entry
// tags: purely informational, they never influence the day context.
type EntryType string

const (
	EntryRegular EntryType = "REGULAR"
	EntryBreak   EntryType = "BREAK"
	EntryHoliday EntryType = "HOLIDAY"
	EntryTimeOff EntryType = "TIME_OFF"
)

// IsPTO reports whether the type is one of the informational PTO tags.
func (t EntryType) IsPTO() bool { return t == EntryHoliday || t == EntryTimeOff }

// AmountType labels a precomputed money amount carried on an entry.
type AmountType string

const (
	AmountEarned AmountType = "EARNED"
	AmountCost   AmountType = "COST"
	AmountProfit AmountType = "PROFIT"
)

type EntryAmount struct {
	Type  AmountType
	Value decimal.Decimal
}

// TimeInterval is the logged interval of an entry. Start/End may be zero and
// Duration may be empty or malformed; the engine degrades to zero duration
// rather than erroring.
type TimeInterval struct {
	Start    time.Time
	End      time.Time
	Duration string // ISO-8601, e.g. "PT7H30M"
}

// TimeEntry is one logged interval. Immutable; the engine never mutates it.
type TimeEntry struct {
	ID       string
	UserID   UserID
	UserName string
	Type     EntryType
	Interval TimeInterval
	Billable bool

	// Rates may be absent (zero). EarnedRate wins over HourlyRate when set.
	HourlyRate decimal.Decimal
	EarnedRate decimal.Decimal
	CostRate   decimal.Decimal

	// Precomputed amounts from the upstream system. Informational only,
	// carried through to the output; the engine always recomputes money
	// from rates.
	Amounts []EntryAmount
}

// Kind normalizes the entry type: absent means REGULAR.
func (e TimeEntry) Kind() EntryType {
	if e.Type == "" {
		return EntryRegular
	}
	return e.Type
}

// EffectiveEarnedRate returns EarnedRate when set, otherwise HourlyRate.
func (e TimeEntry) EffectiveEarnedRate() decimal.Decimal {
	if !e.EarnedRate.IsZero() {
		return e.EarnedRate
	}
	return e.HourlyRate
}

// Hours resolves the entry duration in hours: the ISO-8601 duration string
// when parsable, otherwise the start/end delta, otherwise zero.
func (e TimeEntry) Hours() decimal.Decimal {
	return intervalHours(e.Interval)
}

// =============================================================================
// CONFIG - Workspace overtime rules
// =============================================================================

// OvertimeBasis selects which threshold overtime is measured against.
type OvertimeBasis string

const (
	BasisDaily  OvertimeBasis = "daily"
	BasisWeekly OvertimeBasis = "weekly"
	BasisBoth   OvertimeBasis = "both"
)

// Config holds the workspace-level overtime rules. The engine does not
// validate it on the hot path; callers use ValidateConfig before invoking.
type Config struct {
	OvertimeBasis        OvertimeBasis
	DailyThresholdHours  decimal.Decimal
	WeeklyThresholdHours decimal.Decimal

	// Tier-1 premium applied to all overtime up to Tier2ThresholdHours.
	OvertimeMultiplier decimal.Decimal

	// Tier-2 premium beyond Tier2ThresholdHours of overtime.
	// A zero threshold disables tier 2: all overtime is tier 1.
	Tier2ThresholdHours decimal.Decimal
	Tier2Multiplier     decimal.Decimal

	UseProfileCapacity    bool
	UseProfileWorkingDays bool
	ApplyHolidays         bool
	ApplyTimeOff          bool
}

// DefaultConfig returns the standard ruleset: 8h/day, 40h/week, daily basis,
// 1.5x overtime, no tier-2 band.
func DefaultConfig() Config {
	return Config{
		OvertimeBasis:        BasisDaily,
		DailyThresholdHours:  decimal.NewFromInt(8),
		WeeklyThresholdHours: decimal.NewFromInt(40),
		OvertimeMultiplier:   decimal.NewFromFloat(1.5),
		Tier2Multiplier:      decimal.NewFromInt(2),
		ApplyHolidays:        true,
		ApplyTimeOff:         true,
	}
}

// =============================================================================
// OVERRIDES - Per-user schedule overrides
// =============================================================================

// OverrideMode selects which override map is consulted. Maps belonging to
// inactive modes are inert: a populated Weekly map has no effect unless the
// mode is ModeWeekly.
type OverrideMode string

const (
	ModeGlobal OverrideMode = "global"
	ModeWeekly OverrideMode = "weekly"
	ModePerDay OverrideMode = "perDay"
)

// OverrideValues carries the four independently-resolved override fields.
// A nil field means "not set at this level, fall through the cascade".
type OverrideValues struct {
	Capacity        *decimal.Decimal
	Multiplier      *decimal.Decimal
	Tier2Threshold  *decimal.Decimal
	Tier2Multiplier *decimal.Decimal
}

// Override is one user's schedule override. Global values apply in any mode;
// Weekly applies per ISO weekday when Mode is ModeWeekly; PerDay applies per
// calendar date when Mode is ModePerDay.
type Override struct {
	Mode   OverrideMode
	Global OverrideValues
	Weekly map[time.Weekday]OverrideValues
	PerDay map[DateKey]OverrideValues
}

// =============================================================================
// EXTERNAL SCHEDULE DATA - Profiles, holidays, time-off
// =============================================================================

// Profile is the per-user workspace profile.
type Profile struct {
	UserID            UserID
	Name              string
	WorkCapacityHours *decimal.Decimal
	// WorkingDays, when non-empty and UseProfileWorkingDays is on, marks
	// weekdays outside the set as non-working (capacity forced to zero).
	WorkingDays map[time.Weekday]bool
}

// Holiday is one pre-flattened holiday day (multi-day ranges are expanded
// to individual days by the caller).
type Holiday struct {
	Name string
}

// TimeOffDay is one approved time-off day. A full day zeroes capacity;
// a partial day reduces it by Hours, floored at zero.
type TimeOffDay struct {
	Hours     decimal.Decimal
	IsFullDay bool
}

type (
	Profiles        map[UserID]Profile
	Overrides       map[UserID]Override
	HolidayCalendar map[UserID]map[DateKey]Holiday
	TimeOffCalendar map[UserID]map[DateKey]TimeOffDay
)

// =============================================================================
// DAY CONTEXT - Resolved per-day facts
// =============================================================================

// DayContext holds the authoritative facts for one (user, date): the
// effective capacity after the override cascade and holiday/time-off
// adjustments, and the premium multipliers in force.
//
// Invariants:
//   - IsHoliday || IsNonWorkingDay  => CapacityHours == 0
//   - IsTimeOffDay                  => CapacityHours == max(0, base - TimeOffHours)
type DayContext struct {
	Date DateKey

	CapacityHours       decimal.Decimal
	Multiplier          decimal.Decimal
	Tier2ThresholdHours decimal.Decimal
	Tier2Multiplier     decimal.Decimal

	IsHoliday   bool
	HolidayName string

	IsNonWorkingDay bool

	IsTimeOffDay bool
	TimeOffHours decimal.Decimal
}

// =============================================================================
// OUTPUT - Per-user, per-day analysis
// =============================================================================

// AttributedEntry is an input entry annotated with its hour attribution.
// DailyOvertime and WeeklyOvertime are the independent per-basis portions;
// Overtime is the reported portion under the configured basis.
type AttributedEntry struct {
	Entry TimeEntry

	Hours          decimal.Decimal
	Regular        decimal.Decimal
	Overtime       decimal.Decimal
	DailyOvertime  decimal.Decimal
	WeeklyOvertime decimal.Decimal
}

// MoneyBreakdown is the derived money split for some set of hours.
type MoneyBreakdown struct {
	Earned decimal.Decimal
	Cost   decimal.Decimal
	Profit decimal.Decimal
}

func (m MoneyBreakdown) Add(o MoneyBreakdown) MoneyBreakdown {
	return MoneyBreakdown{
		Earned: m.Earned.Add(o.Earned),
		Cost:   m.Cost.Add(o.Cost),
		Profit: m.Profit.Add(o.Profit),
	}
}

// DayResult is the computed result for one (user, date). Every date in the
// reporting window gets a DayResult, even with no entries, so that export
// layers can render gapless data.
type DayResult struct {
	Context DayContext
	Entries []AttributedEntry

	Total    decimal.Decimal // all logged hours (work + breaks + PTO tags)
	Worked   decimal.Decimal // capacity-consuming (REGULAR) hours only
	Regular  decimal.Decimal
	Overtime decimal.Decimal

	DailyOvertime  decimal.Decimal
	WeeklyOvertime decimal.Decimal

	VacationEntryHours decimal.Decimal
	Breaks             decimal.Decimal

	BillableHours    decimal.Decimal
	NonBillableHours decimal.Decimal

	Money MoneyBreakdown
}

// Totals aggregates a user's results over the reporting window.
//
// Under BasisBoth, OverlapOvertime and CombinedOvertime are computed per ISO
// week (min/max of that week's daily-overtime sum and weekly overtime) and
// then summed across weeks, so a 45h week against 8h/40h thresholds reports
// 5h combined, not 10h.
type Totals struct {
	Total    decimal.Decimal
	Worked   decimal.Decimal
	Regular  decimal.Decimal
	Overtime decimal.Decimal

	DailyOvertime    decimal.Decimal
	WeeklyOvertime   decimal.Decimal
	OverlapOvertime  decimal.Decimal
	CombinedOvertime decimal.Decimal

	VacationEntryHours decimal.Decimal
	Breaks             decimal.Decimal

	BillableHours    decimal.Decimal
	NonBillableHours decimal.Decimal

	Money MoneyBreakdown
}

// UserAnalysis is the output unit: one user's day-by-day breakdown plus
// aggregated totals. Constructed fresh on every ComputeAnalysis call and
// never mutated after return.
type UserAnalysis struct {
	UserID   UserID
	UserName string
	Days     map[DateKey]*DayResult
	Totals   Totals
}

// SortedDates returns the day keys in ascending calendar order.
func (ua *UserAnalysis) SortedDates() []DateKey {
	keys := make([]DateKey, 0, len(ua.Days))
	for k := range ua.Days {
		keys = append(keys, k)
	}
	sortDateKeys(keys)
	return keys
}

// =============================================================================
// INPUT - Everything ComputeAnalysis needs
// =============================================================================

// Input bundles the entries, rules, schedule data, and reporting window.
// TimeZone is the canonical zone for date bucketing (viewer profile zone,
// falling back to workspace zone, falling back to UTC - resolved by the
// caller, supplied explicitly so the engine never reads ambient state).
type Input struct {
	Entries []TimeEntry
	Config  Config
	Range   DateRange

	Profiles  Profiles
	Overrides Overrides
	Holidays  HolidayCalendar
	TimeOff   TimeOffCalendar

	TimeZone *time.Location
}

func (in Input) location() *time.Location {
	if in.TimeZone != nil {
		return in.TimeZone
	}
	return time.UTC
}
