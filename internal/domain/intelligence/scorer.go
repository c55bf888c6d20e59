// Package intelligence computes the composite trust/deal score and the
// advisory risk flags for a listing.  Both stages are pure functions over
// the listing context, its resolved brand reputation, and its valuation;
// nothing here performs I/O or holds state across calls.
package intelligence

import (
	"math"

	"github.com/partscout/partscout/pkg/types/listing"
)

// Inputs bundles everything the scorer and the flag generator consume.
type Inputs struct {
	Context    listing.ListingContext
	Reputation listing.BrandReputationRecord
	Valuation  listing.ValuationResult
}

// Weights blend the six normalized signals into the composite.  They must
// sum to 1.0.
type Weights struct {
	Reputation float64
	Demand     float64
	Distance   float64
	Tenure     float64
	PriceFit   float64
	Confidence float64
}

// DefaultWeights is the canonical weight set.  Price fit dominates: a
// listing priced far from its estimated value should not be rescued by
// reputation or proximity.
var DefaultWeights = Weights{
	Reputation: 0.20,
	Demand:     0.12,
	Distance:   0.12,
	Tenure:     0.14,
	PriceFit:   0.32,
	Confidence: 0.10,
}

// Normalization constants.
const (
	repFloor    = 3.5 // a 3.5-star brand normalizes to zero reputation signal
	repSpan     = 1.5
	demandFloor = 0.85
	demandSpan  = 0.35
	maxDistance = 220.0 // miles at which proximity signal bottoms out
	tenureSpan  = 24.0  // months of tenure for a full trust signal

	neutralPriceNorm = 0.62 // price fit when the ask or the mid is unknown
	priceNormFloor   = 0.2

	confidenceBase    = 0.55
	confidenceFetched = 0.20
	confidencePrice   = 0.15
	confidenceTitle   = 0.05
	confidenceGeo     = 0.05
	confidenceFloor   = 0.35
)

// Overpricing penalty constants: past ratio 1 the composite loses 4.5
// points per unit of ratio (capped at 3.5), and hard caps kick in at the
// high end of the range, at 1.35x, and at 1.6x.
const (
	penaltySlope     = 4.5
	penaltyMax       = 3.5
	capAboveHigh     = 4.8
	capRatio135      = 3.8
	capRatio160      = 2.8
	ratioCapModerate = 1.35
	ratioCapSevere   = 1.6
)

// Scorer computes composite scores with a fixed weight set.
type Scorer struct {
	weights Weights
}

// NewScorer constructs a Scorer with the canonical weights.
func NewScorer() *Scorer {
	return &Scorer{weights: DefaultWeights}
}

// NewScorerWithWeights constructs a Scorer with a custom weight set.
// Callers are responsible for weights summing to 1.0.
func NewScorerWithWeights(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score normalizes the six signals, blends them, applies the
// price-deviation penalty, and returns the composite with its input
// breakdown and the ordered risk flags.
func (s *Scorer) Score(in Inputs) listing.IntelligenceResult {
	norms := normalize(in)

	weighted := s.weights.Reputation*norms.RepNorm +
		s.weights.Demand*norms.DemandNorm +
		s.weights.Distance*norms.DistanceNorm +
		s.weights.Tenure*norms.TenureNorm +
		s.weights.PriceFit*norms.PriceNorm +
		s.weights.Confidence*norms.ConfidenceNorm

	score := math.Round(clamp(weighted, 0.1, 1)*100) / 10

	score = applyOverpricingPenalty(score, in)

	// Final rounding and range clamp.
	score = math.Round(score*10) / 10
	score = clamp(score, 1, 10)

	return listing.IntelligenceResult{
		ScoreInputs: norms,
		Score10:     score,
		RiskFlags:   Flags(in),
	}
}

// normalize maps each raw signal into [0,1].
func normalize(in Inputs) listing.ScoreInputs {
	ctx := in.Context

	priceNorm := neutralPriceNorm
	mid := float64(in.Valuation.MarketRange.Mid)
	if ctx.Price != nil && mid > 0 {
		priceNorm = clamp(1-math.Abs(*ctx.Price-mid)/mid, priceNormFloor, 1)
	}

	confidence := confidenceBase
	if ctx.SourceFetched {
		confidence += confidenceFetched
	}
	if ctx.Price != nil {
		confidence += confidencePrice
	}
	if ctx.Title != nil && *ctx.Title != "" {
		confidence += confidenceTitle
	}
	if ctx.HasBuyerGeo {
		confidence += confidenceGeo
	}

	return listing.ScoreInputs{
		RepNorm:        clamp((in.Reputation.Score5-repFloor)/repSpan, 0, 1),
		DemandNorm:     clamp((in.Valuation.DemandFactor-demandFloor)/demandSpan, 0, 1),
		DistanceNorm:   clamp(1-ctx.DistanceMiles/maxDistance, 0, 1),
		TenureNorm:     clamp(ctx.SellerTenureMonths/tenureSpan, 0, 1),
		PriceNorm:      priceNorm,
		ConfidenceNorm: clamp(confidence, confidenceFloor, 1),
	}
}

// applyOverpricingPenalty subtracts the ratio-scaled penalty and enforces
// the hard caps.  Overpricing must dominate the final score: reputation,
// demand, and proximity cannot rescue a listing priced far above its
// estimated value.
func applyOverpricingPenalty(score float64, in Inputs) float64 {
	mid := float64(in.Valuation.MarketRange.Mid)
	if in.Context.Price == nil || mid <= 0 {
		return score
	}

	ratio := *in.Context.Price / mid
	if ratio > 1 {
		score -= math.Min((ratio-1)*penaltySlope, penaltyMax)
	}
	if *in.Context.Price > float64(in.Valuation.MarketRange.High) {
		score = math.Min(score, capAboveHigh)
	}
	if ratio >= ratioCapModerate {
		score = math.Min(score, capRatio135)
	}
	if ratio >= ratioCapSevere {
		score = math.Min(score, capRatio160)
	}
	return score
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
