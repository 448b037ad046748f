/*
money.go - Two-tier premium pricing

PURPOSE:
  Fourth stage of the pipeline. Applies the two-tier overtime premium to
  attributed hours and derives the earned/cost/profit money breakdown.

TIERS:
  tier1 = min(overtime, tier2Threshold)   (all overtime when threshold is 0)
  tier2 = overtime - tier1

PRICING:
  earned = billable ? regular*rate + tier1*rate*mult + tier2*rate*tier2Mult : 0
  cost   = the same split priced at the cost rate, regardless of billability
           (cost is incurred whether or not the time is billable)
  profit = billable ? earned - cost : 0
           (non-billable time recognizes no revenue, so profit is exactly 0,
           never negative)

Money is carried in whatever currency unit the input rates use; the engine
performs no conversion.
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// splitTiers divides overtime hours into the tier-1 and tier-2 premium bands.
// A zero or negative tier-2 threshold disables tier 2 entirely.
func splitTiers(overtime, tier2Threshold decimal.Decimal) (tier1, tier2 decimal.Decimal) {
	if tier2Threshold.LessThanOrEqual(decimal.Zero) {
		return overtime, decimal.Zero
	}
	tier1 = decimal.Min(overtime, tier2Threshold)
	tier2 = decimal.Max(decimal.Zero, overtime.Sub(tier2Threshold))
	return tier1, tier2
}

// pricedHours applies the regular/tier1/tier2 split at one rate.
func pricedHours(regular, tier1, tier2, rate decimal.Decimal, ctx DayContext) decimal.Decimal {
	pay := regular.Mul(rate)
	pay = pay.Add(tier1.Mul(rate).Mul(ctx.Multiplier))
	pay = pay.Add(tier2.Mul(rate).Mul(ctx.Tier2Multiplier))
	return pay
}

// PriceHours derives the money breakdown for an attributed hour split.
func PriceHours(regular, overtime decimal.Decimal, ctx DayContext, earnedRate, costRate decimal.Decimal, billable bool) MoneyBreakdown {
	tier1, tier2 := splitTiers(overtime, ctx.Tier2ThresholdHours)

	var breakdown MoneyBreakdown
	breakdown.Cost = pricedHours(regular, tier1, tier2, costRate, ctx)
	breakdown.Earned = decimal.Zero
	breakdown.Profit = decimal.Zero
	if billable {
		breakdown.Earned = pricedHours(regular, tier1, tier2, earnedRate, ctx)
		breakdown.Profit = breakdown.Earned.Sub(breakdown.Cost)
	}
	return breakdown
}

// PriceEntry prices one attributed entry with its own rates and billability.
func PriceEntry(e AttributedEntry, ctx DayContext) MoneyBreakdown {
	return PriceHours(e.Regular, e.Overtime, ctx, e.Entry.EffectiveEarnedRate(), e.Entry.CostRate, e.Entry.Billable)
}
