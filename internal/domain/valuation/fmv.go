package valuation

import (
	"math"

	"github.com/partscout/partscout/pkg/types/listing"
)

// Anchor constants.  A listing with no detectable price anchors at
// defaultAnchor USD; any declared price is floored at minAnchor so junk
// prices cannot collapse the range.
const (
	defaultAnchor = 300.0
	minAnchor     = 50.0
)

// Range spread relative to the mid point.  Low and high are derived from
// mid, never computed independently, which guarantees Low < Mid < High for
// every positive mid.
const (
	lowSpread  = 0.88
	highSpread = 1.18
)

// Price-signal thresholds: an ask inside [0.9, 1.1] x mid reads as
// at-market.
const (
	underMarketRatio = 0.9
	overMarketRatio  = 1.1
)

// Valuate combines the factor breakdown into an anchored three-point
// market range and classifies the ask price against it.  Pure function;
// the returned result is freshly constructed per call.
func (c *Calculator) Valuate(ctx listing.ListingContext) listing.ValuationResult {
	f := c.Factors(ctx)

	anchor := defaultAnchor
	if ctx.Price != nil {
		anchor = *ctx.Price
	}
	anchor = math.Max(anchor, minAnchor)

	mid := int(math.Round(anchor * f.Age * f.Condition * f.Availability * f.Demand))
	rng := listing.MarketRange{
		Low:  int(math.Round(float64(mid) * lowSpread)),
		Mid:  mid,
		High: int(math.Round(float64(mid) * highSpread)),
	}

	return listing.ValuationResult{
		BaseAnchor:         anchor,
		AgeBand:            string(f.AgeBand),
		AgeFactor:          f.Age,
		ConditionFactor:    f.Condition,
		AvailabilityFactor: f.Availability,
		DemandFactor:       f.Demand,
		MarketRange:        rng,
		FairMarketValue:    mid,
		PriceSignal:        classifyPrice(ctx.Price, mid),
	}
}

// classifyPrice labels an ask price against the mid estimate.  A missing
// price reads as at-market, not unknown; confidence normalization is where
// the absence of a price shows up.
func classifyPrice(price *float64, mid int) listing.PriceSignal {
	if price == nil || mid <= 0 {
		return listing.PriceAtMarket
	}
	m := float64(mid)
	switch {
	case *price < m*underMarketRatio:
		return listing.PriceUnderMarket
	case *price > m*overMarketRatio:
		return listing.PriceOverMarket
	default:
		return listing.PriceAtMarket
	}
}
