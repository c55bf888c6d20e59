package intelligence

import (
	"math"

	"github.com/partscout/partscout/pkg/types/listing"
)

// Flag thresholds.
const (
	minTenureMonths    = 6
	maxPickupMiles     = 90.0
	deviationFlagRatio = 0.35
	highEngineMiles    = 120000.0
	minVerifiedSignals = 200
)

// Advisory flag text.  Flags never alter the numeric score; the scorer's
// normalization already penalizes the same underlying conditions.
const (
	flagUnknownPlatform = "Unrecognized platform: verify the seller and payment protection before committing."
	flagFetchFailed     = "Listing details could not be fetched live; the score relies on fallback signals."
	flagNewSeller       = "Seller account is under 6 months old: verify history before committing."
	flagFarPickup       = "Pickup distance exceeds 90 miles: factor travel cost or shipping risk."
	flagUnderMarket     = "Priced under market: verify authenticity and condition before paying."
	flagOverMarket      = "Priced over market: comparable parts are listed for less."
	flagLargeDeviation  = "Price deviates more than 35% from the estimated market value."
	flagUsedPart        = "Used part: request serials, casting numbers, and service records."
	flagNoEngineMiles   = "Engine mileage not stated: ask for documented mileage before purchase."
	flagHighEngineMiles = "High engine mileage (120,000+ miles): budget for wear items and request a compression test."
	flagThinBrandRecord = "Brand has a thin verified sales record: comparison data is limited."
)

// Flags emits the ordered advisory list for in.  Conditions are evaluated
// independently; any subset may fire.  Platform cautions lead, followed by
// seller, price, condition, and brand checks, always in the same order so
// identical inputs produce identical output.
func Flags(in Inputs) []string {
	ctx := in.Context
	flags := make([]string, 0, 8)

	if !ctx.IsMarketplaceSource {
		flags = append(flags, flagUnknownPlatform)
	}
	if !ctx.SourceFetched {
		flags = append(flags, flagFetchFailed)
	}
	if ctx.SellerTenureMonths < minTenureMonths {
		flags = append(flags, flagNewSeller)
	}
	if ctx.DistanceMiles > maxPickupMiles {
		flags = append(flags, flagFarPickup)
	}
	if in.Valuation.PriceSignal == listing.PriceUnderMarket {
		flags = append(flags, flagUnderMarket)
	}
	if in.Valuation.PriceSignal == listing.PriceOverMarket {
		flags = append(flags, flagOverMarket)
	}
	if deviationExceeds(ctx.Price, in.Valuation.MarketRange.Mid, deviationFlagRatio) {
		flags = append(flags, flagLargeDeviation)
	}
	if ctx.Condition == listing.ConditionUsed {
		flags = append(flags, flagUsedPart)
	}
	if ctx.Category == listing.CategoryEngine {
		switch {
		case ctx.EngineMiles == nil:
			flags = append(flags, flagNoEngineMiles)
		case *ctx.EngineMiles >= highEngineMiles:
			flags = append(flags, flagHighEngineMiles)
		}
	}
	if in.Reputation.VerifiedSignals < minVerifiedSignals {
		flags = append(flags, flagThinBrandRecord)
	}

	return flags
}

func deviationExceeds(price *float64, mid int, ratio float64) bool {
	if price == nil || mid <= 0 {
		return false
	}
	return math.Abs(*price-float64(mid))/float64(mid) > ratio
}
