/*
context.go - Day-context resolution

PURPOSE:
  Second stage of the pipeline. For each (user, date) resolves the effective
  capacity, premium multipliers, and holiday/non-working/time-off flags by
  running the override precedence cascade and then applying the authoritative
  calendars.

PRECEDENCE CASCADE (highest to lowest), per field, independently:
  1. Per-day override   - only when the user's mode is perDay and the date
                          has a value
  2. Weekly override    - only when the mode is weekly and the weekday has
                          a value
  3. Global override    - the user's global value, any mode
  4. Profile capacity   - capacity chain only, when UseProfileCapacity is on
  5. Config default

  Each field (capacity, multiplier, tier-2 threshold, tier-2 multiplier)
  walks its own chain: a user may override capacity but inherit the
  workspace multiplier. Maps belonging to inactive modes are inert - a
  populated weekly map is ignored unless the mode is weekly. A cascade
  level with no value falls through; a miss is never an error.

AUTHORITATIVE FLAGS (never derived from entry type tags):
  - Holiday: forces capacity to 0 absolutely, overriding the whole cascade.
  - Non-working weekday (profile): forces capacity to 0, unless a holiday
    already claimed the day.
  - Time-off: reduces capacity by the recorded hours (full day -> 0),
    floored at 0. Skipped on holidays.
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESOLVER CHAIN - First match wins
// =============================================================================

// valueResolver is one cascade level: nil means "no value here, fall through".
type valueResolver func() *decimal.Decimal

func resolveFirst(fallback decimal.Decimal, chain ...valueResolver) decimal.Decimal {
	for _, level := range chain {
		if v := level(); v != nil {
			return *v
		}
	}
	return fallback
}

// overrideField selects one of the four override fields.
type overrideField func(OverrideValues) *decimal.Decimal

func capacityField(v OverrideValues) *decimal.Decimal   { return v.Capacity }
func multiplierField(v OverrideValues) *decimal.Decimal { return v.Multiplier }
func tier2ThresholdField(v OverrideValues) *decimal.Decimal {
	return v.Tier2Threshold
}
func tier2MultiplierField(v OverrideValues) *decimal.Decimal {
	return v.Tier2Multiplier
}

// overrideChain builds the three override levels of the cascade for one field.
func overrideChain(ov *Override, date DateKey, field overrideField) []valueResolver {
	if ov == nil {
		none := func() *decimal.Decimal { return nil }
		return []valueResolver{none, none, none}
	}
	perDay := func() *decimal.Decimal {
		if ov.Mode != ModePerDay {
			return nil
		}
		if values, ok := ov.PerDay[date]; ok {
			return field(values)
		}
		return nil
	}
	weekly := func() *decimal.Decimal {
		if ov.Mode != ModeWeekly {
			return nil
		}
		if values, ok := ov.Weekly[date.Weekday()]; ok {
			return field(values)
		}
		return nil
	}
	global := func() *decimal.Decimal { return field(ov.Global) }
	return []valueResolver{perDay, weekly, global}
}

// =============================================================================
// DAY CONTEXT RESOLUTION
// =============================================================================

// ResolveDayContext determines the effective capacity, multipliers, and
// holiday/non-working/time-off flags for one (user, date).
func ResolveDayContext(
	userID UserID,
	date DateKey,
	cfg Config,
	overrides Overrides,
	profiles Profiles,
	holidays HolidayCalendar,
	timeOff TimeOffCalendar,
) DayContext {
	var ov *Override
	if o, ok := overrides[userID]; ok {
		ov = &o
	}
	profile, hasProfile := profiles[userID]

	profileCapacity := func() *decimal.Decimal {
		if !cfg.UseProfileCapacity || !hasProfile {
			return nil
		}
		return profile.WorkCapacityHours
	}

	capacity := resolveFirst(cfg.DailyThresholdHours,
		append(overrideChain(ov, date, capacityField), profileCapacity)...)
	multiplier := resolveFirst(cfg.OvertimeMultiplier,
		overrideChain(ov, date, multiplierField)...)
	tier2Threshold := resolveFirst(cfg.Tier2ThresholdHours,
		overrideChain(ov, date, tier2ThresholdField)...)
	tier2Multiplier := resolveFirst(cfg.Tier2Multiplier,
		overrideChain(ov, date, tier2MultiplierField)...)

	ctx := DayContext{
		Date:                date,
		CapacityHours:       capacity,
		Multiplier:          multiplier,
		Tier2ThresholdHours: tier2Threshold,
		Tier2Multiplier:     tier2Multiplier,
		TimeOffHours:        decimal.Zero,
	}

	if cfg.ApplyHolidays {
		if holiday, ok := holidays[userID][date]; ok {
			ctx.IsHoliday = true
			ctx.HolidayName = holiday.Name
			ctx.CapacityHours = decimal.Zero
			return ctx
		}
	}

	// Non-working days zero capacity but do not suppress the time-off flag;
	// only holidays do that.
	if cfg.UseProfileWorkingDays && hasProfile && isNonWorkingDay(profile, date.Weekday()) {
		ctx.IsNonWorkingDay = true
		ctx.CapacityHours = decimal.Zero
	}

	if cfg.ApplyTimeOff {
		if off, ok := timeOff[userID][date]; ok {
			ctx.IsTimeOffDay = true
			if off.IsFullDay {
				ctx.TimeOffHours = ctx.CapacityHours
				ctx.CapacityHours = decimal.Zero
			} else {
				ctx.TimeOffHours = off.Hours
				ctx.CapacityHours = decimal.Max(decimal.Zero, ctx.CapacityHours.Sub(off.Hours))
			}
		}
	}

	return ctx
}

// isNonWorkingDay reports whether the profile excludes the weekday.
// A profile without working-day data never marks days non-working.
func isNonWorkingDay(p Profile, weekday time.Weekday) bool {
	if len(p.WorkingDays) == 0 {
		return false
	}
	return !p.WorkingDays[weekday]
}
