package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partscout/partscout/pkg/types/listing"
)

func TestValuate_RangeInvariant(t *testing.T) {
	c := newTestCalculator()

	contexts := []listing.ListingContext{
		{Category: listing.CategoryBrakes, Condition: listing.ConditionNew, Title: strPtr("Brembo GT kit")},
		{Category: listing.CategoryEngine, Condition: listing.ConditionUsed, Price: f64Ptr(600), EngineMiles: f64Ptr(140000)},
		{Category: listing.CategoryAudio, Condition: listing.ConditionUsed, Price: f64Ptr(50)},
		{Category: listing.CategoryTires, Condition: listing.ConditionAftermarket, Price: f64Ptr(9999), IsMarketplaceSource: true},
		{},
	}
	for i, ctx := range contexts {
		res := c.Valuate(ctx)
		assert.Less(t, res.MarketRange.Low, res.MarketRange.Mid, "case %d", i)
		assert.Less(t, res.MarketRange.Mid, res.MarketRange.High, "case %d", i)
		assert.GreaterOrEqual(t, res.MarketRange.Low, 0, "case %d", i)
		assert.Equal(t, res.MarketRange.Mid, res.FairMarketValue, "case %d", i)
		assert.Equal(t, res.MarketRange.Low, int(math.Round(float64(res.MarketRange.Mid)*0.88)), "case %d", i)
		assert.Equal(t, res.MarketRange.High, int(math.Round(float64(res.MarketRange.Mid)*1.18)), "case %d", i)
	}
}

func TestValuate_AnchorDefaults(t *testing.T) {
	c := newTestCalculator()

	// No price: anchor is the 300 USD default.
	res := c.Valuate(listing.ListingContext{Condition: listing.ConditionNew})
	assert.Equal(t, 300.0, res.BaseAnchor)

	// Junk price: floored at 50.
	res = c.Valuate(listing.ListingContext{Condition: listing.ConditionNew, Price: f64Ptr(5)})
	assert.Equal(t, 50.0, res.BaseAnchor)

	// Sane price passes through.
	res = c.Valuate(listing.ListingContext{Condition: listing.ConditionNew, Price: f64Ptr(450)})
	assert.Equal(t, 450.0, res.BaseAnchor)
}

// Mirrors the new Brembo brake kit walkthrough: no price, marketplace
// source, so mid = round(300 * 1.0 * 1.0 * 1.1 * 1.1).
func TestValuate_NewBrakeKitWalkthrough(t *testing.T) {
	c := newTestCalculator()

	res := c.Valuate(listing.ListingContext{
		Title:               strPtr("Brembo GT kit"),
		Category:            listing.CategoryBrakes,
		Condition:           listing.ConditionNew,
		IsMarketplaceSource: true,
	})

	assert.Equal(t, string(AgeBandNew), res.AgeBand)
	assert.Equal(t, 1.0, res.AgeFactor)
	assert.Equal(t, 1.0, res.ConditionFactor)
	assert.Equal(t, 1.1, res.DemandFactor)
	assert.Equal(t, 1.1, res.AvailabilityFactor)
	assert.Equal(t, 300.0, res.BaseAnchor)
	assert.Equal(t, int(math.Round(300*1.0*1.0*1.1*1.1)), res.MarketRange.Mid)
	assert.Equal(t, listing.PriceAtMarket, res.PriceSignal)
}

// Mirrors the high-mileage used engine walkthrough: the 0.78 mileage
// factor lowers mid, and the ask is classified against that lower mid.
func TestValuate_HighMileageEngineWalkthrough(t *testing.T) {
	c := newTestCalculator()

	ctx := listing.ListingContext{
		Category:    listing.CategoryEngine,
		Condition:   listing.ConditionUsed,
		EngineMiles: f64Ptr(140000),
		Price:       f64Ptr(600),
	}
	res := c.Valuate(ctx)

	require.InDelta(t, 0.507, res.ConditionFactor, 1e-9) // 0.65 * 0.78
	// Used with no title/year falls into the 7-15 band (OEM 0.72).
	wantMid := int(math.Round(600 * 0.72 * 0.507 * 1.0 * 1.1))
	assert.Equal(t, wantMid, res.MarketRange.Mid)
	// 600 against a ~241 mid is far over market.
	assert.Equal(t, listing.PriceOverMarket, res.PriceSignal)
}

func TestClassifyPrice(t *testing.T) {
	c := newTestCalculator()

	// The ask price is also the anchor, so the classification is driven by
	// the factor product: above ~1.11 the ask reads under market, below
	// ~0.9 it reads over market.

	// New marketplace engine: product = 1.0 * 1.0 * 1.1 * 1.1 = 1.21.
	under := listing.ListingContext{
		Category:            listing.CategoryEngine,
		Condition:           listing.ConditionNew,
		IsMarketplaceSource: true,
		Price:               f64Ptr(1000),
	}
	assert.Equal(t, listing.PriceUnderMarket, c.Valuate(under).PriceSignal)

	// Used tires, private source: product = 0.72 * 0.65 * 1.0 * 1.0 = 0.468.
	over := listing.ListingContext{
		Category:  listing.CategoryTires,
		Condition: listing.ConditionUsed,
		Price:     f64Ptr(1000),
	}
	assert.Equal(t, listing.PriceOverMarket, c.Valuate(over).PriceSignal)

	// New tires, private source: product = 1.0, mid tracks the ask.
	at := listing.ListingContext{
		Category:  listing.CategoryTires,
		Condition: listing.ConditionNew,
		Price:     f64Ptr(1000),
	}
	assert.Equal(t, listing.PriceAtMarket, c.Valuate(at).PriceSignal)

	// Absent price reads as at-market.
	noPrice := listing.ListingContext{Category: listing.CategoryTires, Condition: listing.ConditionNew}
	assert.Equal(t, listing.PriceAtMarket, c.Valuate(noPrice).PriceSignal)
}
