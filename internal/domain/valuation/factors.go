// Package valuation derives fair-market-value estimates for secondhand
// part listings.  It is split into two stages: the factor calculator
// (age, condition, availability, demand multipliers from categorical
// inputs) and the FMV classifier (anchor price, three-point market range,
// price-signal classification).  Every function is pure; lookup tables are
// immutable after construction so the calculator is referentially
// transparent and safe for concurrent use.
package valuation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/partscout/partscout/pkg/types/listing"
)

// AgeBand buckets the effective age of a part.
type AgeBand string

const (
	AgeBandNew    AgeBand = "new_0_1"
	AgeBand1to3   AgeBand = "years_1_3"
	AgeBand3to7   AgeBand = "years_3_7"
	AgeBand7to15  AgeBand = "years_7_15"
	AgeBand15Plus AgeBand = "years_15_plus"
)

// PartType distinguishes original-equipment from performance aftermarket
// parts for age-depreciation purposes.
type PartType string

const (
	PartTypeOEM         PartType = "OEM"
	PartTypePerformance PartType = "Performance"
)

// Factors is the multiplier breakdown produced by the calculator.
type Factors struct {
	AgeBand      AgeBand
	PartType     PartType
	Age          float64
	Condition    float64
	Availability float64
	Demand       float64
}

// Title patterns for best-effort age inference when no manufacture year is
// supplied.  Checked in this exact priority order.
var (
	newKeywordsRe = regexp.MustCompile(`(?i)\b(new|sealed|unused|bnib|nib)\b`)
	vintageRe     = regexp.MustCompile(`(?i)(15\s*\+|vintage|classic|\bnla\b|no longer available)`)
	range7to15Re  = regexp.MustCompile(`(?i)7\s*-\s*15\s*(?:yrs?|years?)`)
	range3to7Re   = regexp.MustCompile(`(?i)3\s*-\s*7\s*(?:yrs?|years?)`)
	range1to3Re   = regexp.MustCompile(`(?i)1\s*-\s*3\s*(?:yrs?|years?)`)
	yearsOldRe    = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:yrs?|years?)\s*old`)
)

// ageFactorTable maps [PartType][AgeBand] to the age depreciation
// multiplier.  Performance parts depreciate faster: tuned parts see harder
// use and their fitment market thins out sooner.
var defaultAgeFactors = map[PartType]map[AgeBand]float64{
	PartTypeOEM: {
		AgeBandNew:    1.0,
		AgeBand1to3:   0.92,
		AgeBand3to7:   0.82,
		AgeBand7to15:  0.72,
		AgeBand15Plus: 0.6,
	},
	PartTypePerformance: {
		AgeBandNew:    1.0,
		AgeBand1to3:   0.9,
		AgeBand3to7:   0.78,
		AgeBand7to15:  0.66,
		AgeBand15Plus: 0.55,
	},
}

// defaultConditionFactors maps declared condition to its base multiplier.
var defaultConditionFactors = map[listing.Condition]float64{
	listing.ConditionNew:         1.0,
	listing.ConditionAftermarket: 0.75,
	listing.ConditionUsed:        0.65,
}

// defaultDemandFactors maps category to its fixed demand multiplier.
// Unknown categories default to 1.0.
var defaultDemandFactors = map[listing.Category]float64{
	listing.CategoryEngine:       1.1,
	listing.CategoryBrakes:       1.1,
	listing.CategoryTransmission: 1.05,
	listing.CategoryRims:         1.05,
	listing.CategoryExhaust:      1.05,
	listing.CategorySuspension:   1.0,
	listing.CategoryTires:        1.0,
	listing.CategoryChassis:      1.0,
	listing.CategoryAudio:        0.95,
}

// marketplaceAvailability is applied when the listing comes from a known
// online marketplace; unknown origins get 1.0.
const marketplaceAvailability = 1.1

// Calculator derives valuation factors from categorical listing inputs.
// Tables are fixed at construction.  The clock is injectable so year-based
// age inference is deterministic under test.
type Calculator struct {
	ageFactors       map[PartType]map[AgeBand]float64
	conditionFactors map[listing.Condition]float64
	demandFactors    map[listing.Category]float64
	now              func() time.Time
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithClock replaces the calculator's time source.
func WithClock(now func() time.Time) CalculatorOption {
	return func(c *Calculator) { c.now = now }
}

// NewCalculator constructs a Calculator with the built-in factor tables.
func NewCalculator(opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		ageFactors:       defaultAgeFactors,
		conditionFactors: defaultConditionFactors,
		demandFactors:    defaultDemandFactors,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Factors computes the full multiplier breakdown for ctx.
func (c *Calculator) Factors(ctx listing.ListingContext) Factors {
	partType := partTypeFor(ctx.Condition)
	band := c.AgeBand(ctx)

	return Factors{
		AgeBand:      band,
		PartType:     partType,
		Age:          c.ageFactors[partType][band],
		Condition:    c.conditionFactor(ctx),
		Availability: availabilityFactor(ctx.IsMarketplaceSource),
		Demand:       c.demandFactor(ctx.Category),
	}
}

// AgeBand infers the age band for ctx.  When a manufacture year is present
// the band is computed from calendar age (clamped to [0, 80]); otherwise
// the title is scanned with the fixed-priority heuristics, and failing
// those, the declared condition picks a default band.
func (c *Calculator) AgeBand(ctx listing.ListingContext) AgeBand {
	if ctx.PartYear != nil {
		age := float64(c.now().Year() - *ctx.PartYear)
		age = clamp(age, 0, 80)
		switch {
		case age <= 1:
			return AgeBandNew
		case age <= 3:
			return AgeBand1to3
		case age <= 7:
			return AgeBand3to7
		case age <= 15:
			return AgeBand7to15
		default:
			return AgeBand15Plus
		}
	}

	if ctx.Title != nil {
		if band, ok := bandFromTitle(*ctx.Title); ok {
			return band
		}
	}

	// Condition-based default, the weakest signal.
	switch ctx.Condition {
	case listing.ConditionAftermarket:
		return AgeBand1to3
	case listing.ConditionUsed:
		return AgeBand7to15
	case listing.ConditionNew:
		return AgeBandNew
	default:
		return AgeBand3to7
	}
}

// bandFromTitle applies the title heuristics in priority order: explicit
// new keywords, vintage/15+ markers, explicit numeric ranges (widest
// first), then "N years old" phrasing.
func bandFromTitle(title string) (AgeBand, bool) {
	switch {
	case newKeywordsRe.MatchString(title):
		return AgeBandNew, true
	case vintageRe.MatchString(title):
		return AgeBand15Plus, true
	case range7to15Re.MatchString(title):
		return AgeBand7to15, true
	case range3to7Re.MatchString(title):
		return AgeBand3to7, true
	case range1to3Re.MatchString(title):
		return AgeBand1to3, true
	}

	if m := yearsOldRe.FindStringSubmatch(title); m != nil {
		n, err := strconv.Atoi(strings.TrimSpace(m[1]))
		if err == nil {
			switch {
			case n > 15:
				return AgeBand15Plus, true
			case n >= 8:
				return AgeBand7to15, true
			case n >= 4:
				return AgeBand3to7, true
			case n >= 1:
				return AgeBand1to3, true
			}
		}
	}

	return "", false
}

func partTypeFor(cond listing.Condition) PartType {
	if cond == listing.ConditionAftermarket {
		return PartTypePerformance
	}
	return PartTypeOEM
}

// conditionFactor multiplies the declared-condition base by the engine
// mileage factor and rounds to 3 decimals.  Mileage only applies to used
// or aftermarket engines; a missing reading costs nothing here (the risk
// flag generator surfaces it instead).
func (c *Calculator) conditionFactor(ctx listing.ListingContext) float64 {
	base, ok := c.conditionFactors[ctx.Condition]
	if !ok {
		// Unknown condition assumes the conservative Used multiplier.
		base = defaultConditionFactors[listing.ConditionUsed]
	}
	return round3(base * engineMileageFactor(ctx))
}

// engineMileageFactor returns the mileage multiplier, 1.0 whenever it does
// not apply.
func engineMileageFactor(ctx listing.ListingContext) float64 {
	if ctx.Category != listing.CategoryEngine ||
		ctx.Condition == listing.ConditionNew ||
		ctx.EngineMiles == nil {
		return 1.0
	}
	miles := *ctx.EngineMiles
	switch {
	case miles <= 30000:
		return 1.0
	case miles <= 60000:
		return 0.95
	case miles <= 100000:
		return 0.88
	case miles <= 150000:
		return 0.78
	default:
		return 0.68
	}
}

func availabilityFactor(marketplace bool) float64 {
	if marketplace {
		return marketplaceAvailability
	}
	return 1.0
}

func (c *Calculator) demandFactor(cat listing.Category) float64 {
	if f, ok := c.demandFactors[cat]; ok {
		return f
	}
	return 1.0
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
