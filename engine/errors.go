/*
errors.go - Sentinel errors and caller-side validation

PURPOSE:
  The engine's error taxonomy is deliberately small:

  - Data errors (malformed durations, missing user/date) are recovered
    locally with safe defaults and never surface as errors. Reports degrade
    gracefully rather than abort.
  - Configuration errors are caller-contract violations. The hot path does
    not defend against them; callers run ValidateConfig / ValidateRange
    before invoking ComputeAnalysis.
  - Cascade misses (e.g. mode says weekly but no weekly map) fall through
    to the next precedence level, never an error.

USAGE:
    if err := engine.ValidateConfig(cfg); err != nil { ... }
    if errors.Is(err, engine.ErrNegativeThreshold) { ... }
*/
package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNegativeThreshold is returned when a daily/weekly/tier-2 threshold
	// is negative.
	ErrNegativeThreshold = errors.New("negative overtime threshold")

	// ErrInvalidMultiplier is returned when a premium multiplier is below 1.
	ErrInvalidMultiplier = errors.New("overtime multiplier below 1")

	// ErrUnknownBasis is returned for an overtime basis outside
	// daily/weekly/both (empty means daily).
	ErrUnknownBasis = errors.New("unknown overtime basis")

	// ErrInvalidRange is returned when a reporting window ends before it
	// starts.
	ErrInvalidRange = errors.New("invalid date range")
)

// =============================================================================
// CALLER-SIDE VALIDATION
// =============================================================================

var one = decimal.NewFromInt(1)

// ValidateConfig checks the caller contract for Config. ComputeAnalysis does
// not repeat these checks.
func ValidateConfig(cfg Config) error {
	switch cfg.OvertimeBasis {
	case BasisDaily, BasisWeekly, BasisBoth, "":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBasis, cfg.OvertimeBasis)
	}

	for name, threshold := range map[string]decimal.Decimal{
		"daily":  cfg.DailyThresholdHours,
		"weekly": cfg.WeeklyThresholdHours,
		"tier2":  cfg.Tier2ThresholdHours,
	} {
		if threshold.IsNegative() {
			return fmt.Errorf("%w: %s", ErrNegativeThreshold, name)
		}
	}

	if cfg.OvertimeMultiplier.LessThan(one) {
		return fmt.Errorf("%w: overtime multiplier %s", ErrInvalidMultiplier, cfg.OvertimeMultiplier)
	}
	if !cfg.Tier2ThresholdHours.IsZero() && cfg.Tier2Multiplier.LessThan(one) {
		return fmt.Errorf("%w: tier-2 multiplier %s", ErrInvalidMultiplier, cfg.Tier2Multiplier)
	}
	return nil
}

// ValidateRange checks that the reporting window is well-formed.
func ValidateRange(r DateRange) error {
	if r.Start.IsZero() || r.End.IsZero() || r.End.Before(r.Start) {
		return fmt.Errorf("%w: %s..%s", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}
