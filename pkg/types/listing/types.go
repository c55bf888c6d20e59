// Package listing defines the shared data model of the valuation and risk
// engine: the immutable per-request ListingContext, the valuation and
// intelligence result types, and the collaborator DTOs.  Both the serving
// layer and the client SDK consume these types, so the engine has exactly
// one wire shape.
package listing

import (
	"strings"
	"time"

	"github.com/partscout/partscout/pkg/types/common"
)

// Category classifies a part listing.
type Category string

const (
	CategoryEngine       Category = "Engine"
	CategorySuspension   Category = "Suspension"
	CategoryTransmission Category = "Transmission"
	CategoryBrakes       Category = "Brakes"
	CategoryRims         Category = "Rims"
	CategoryTires        Category = "Tires"
	CategoryExhaust      Category = "Exhaust"
	CategoryChassis      Category = "Chassis"
	CategoryAudio        Category = "Audio"
)

// Condition classifies the declared state of a part.
type Condition string

const (
	ConditionNew         Condition = "New"
	ConditionUsed        Condition = "Used"
	ConditionAftermarket Condition = "Aftermarket"
)

// PriceSignal classifies an ask price against the FMV mid point.
type PriceSignal string

const (
	PriceUnderMarket PriceSignal = "Under market"
	PriceAtMarket    PriceSignal = "At market"
	PriceOverMarket  PriceSignal = "Over market"
)

// ParseCategory normalizes a free-form category string.  Unrecognized input
// returns ("", false); the factor tables treat an unknown category as a
// neutral default, so callers may still score with a zero Category.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "engine":
		return CategoryEngine, true
	case "suspension":
		return CategorySuspension, true
	case "transmission":
		return CategoryTransmission, true
	case "brakes":
		return CategoryBrakes, true
	case "rims":
		return CategoryRims, true
	case "tires":
		return CategoryTires, true
	case "exhaust":
		return CategoryExhaust, true
	case "chassis":
		return CategoryChassis, true
	case "audio":
		return CategoryAudio, true
	}
	return "", false
}

// ParseCondition normalizes a free-form condition string.
func ParseCondition(s string) (Condition, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new":
		return ConditionNew, true
	case "used":
		return ConditionUsed, true
	case "aftermarket":
		return ConditionAftermarket, true
	}
	return "", false
}

// ListingContext is the immutable input to a single scoring request.
// Optional fields are pointers; nil means "unknown", never zero.  The
// context is constructed fresh per request and discarded with the response.
type ListingContext struct {
	// Title is the free-text listing title, used for brand resolution and
	// best-effort age inference.
	Title *string `json:"title,omitempty"`

	Category  Category  `json:"category"`
	Condition Condition `json:"condition"`

	// Price is the declared or detected ask price in USD.
	Price *float64 `json:"price,omitempty"`

	// PartYear is the manufacture year, used to infer the age band.
	PartYear *int `json:"part_year,omitempty"`

	// EngineMiles is only meaningful when Category is Engine.
	EngineMiles *float64 `json:"engine_miles,omitempty"`

	// IsMarketplaceSource reports whether the listing came from a known
	// online marketplace rather than an unknown origin.
	IsMarketplaceSource bool `json:"is_marketplace_source"`

	// DistanceMiles and SellerTenureMonths are contextual signals, either
	// supplied by live telemetry or derived by the fallback signal provider.
	DistanceMiles      float64 `json:"distance_miles"`
	SellerTenureMonths float64 `json:"seller_tenure_months"`

	// SourceFetched reports whether listing metadata was fetched live.
	SourceFetched bool `json:"source_fetched"`

	// HasBuyerGeo reports whether the buyer location was resolved.
	HasBuyerGeo bool `json:"has_buyer_geo"`
}

// BrandReputationRecord is a static reputation entry for a known brand.
type BrandReputationRecord struct {
	BrandKey        string  `json:"brand_key"`
	Score5          float64 `json:"score5"`
	VerifiedSignals int     `json:"verified_signals"`
}

// MarketRange is the three-point fair-market-value range in whole USD.
// Invariant: Low < Mid < High.
type MarketRange struct {
	Low  int `json:"low"`
	Mid  int `json:"mid"`
	High int `json:"high"`
}

// ValuationResult carries the factor breakdown and the FMV classification
// for one listing.
type ValuationResult struct {
	BaseAnchor         float64     `json:"base_anchor"`
	AgeBand            string      `json:"age_band"`
	AgeFactor          float64     `json:"age_factor"`
	ConditionFactor    float64     `json:"condition_factor"`
	AvailabilityFactor float64     `json:"availability_factor"`
	DemandFactor       float64     `json:"demand_factor"`
	MarketRange        MarketRange `json:"market_range"`
	FairMarketValue    int         `json:"fair_market_value"`
	PriceSignal        PriceSignal `json:"price_signal"`
}

// ScoreInputs are the normalized [0,1] signals feeding the composite score.
type ScoreInputs struct {
	PriceNorm      float64 `json:"price_norm"`
	RepNorm        float64 `json:"rep_norm"`
	DemandNorm     float64 `json:"demand_norm"`
	DistanceNorm   float64 `json:"distance_norm"`
	TenureNorm     float64 `json:"tenure_norm"`
	ConfidenceNorm float64 `json:"confidence_norm"`
}

// IntelligenceResult carries the composite trust/deal score and the ordered
// advisory risk flags.
type IntelligenceResult struct {
	ScoreInputs ScoreInputs `json:"score_inputs"`

	// Score10 is in [1.0, 10.0], rounded to one decimal.
	Score10 float64 `json:"score10"`

	// RiskFlags are advisory only; they never alter Score10.
	RiskFlags []string `json:"risk_flags"`
}

// ScoreResult is the full output of one scoring request.
type ScoreResult struct {
	Valuation    ValuationResult    `json:"valuation"`
	Intelligence IntelligenceResult `json:"intelligence"`
}

// Metadata is the structured output of the listing-metadata fetcher.
// Failures never surface as errors; they resolve to Fetched=false.
type Metadata struct {
	Title         *string  `json:"title,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	LocationText  *string  `json:"location_text,omitempty"`
	PlatformKnown bool     `json:"platform_known"`
	Fetched       bool     `json:"fetched"`
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ScoreRecord is the persisted form of one scoring request, kept as an
// audit trail of valuations.
type ScoreRecord struct {
	ID          common.ID   `json:"id"`
	ListingURL  string      `json:"listing_url,omitempty"`
	Title       string      `json:"title,omitempty"`
	Category    Category    `json:"category"`
	Condition   Condition   `json:"condition"`
	Price       *float64    `json:"price,omitempty"`
	FMVLow      int         `json:"fmv_low"`
	FMVMid      int         `json:"fmv_mid"`
	FMVHigh     int         `json:"fmv_high"`
	PriceSignal PriceSignal `json:"price_signal"`
	Score10     float64     `json:"score10"`
	RiskFlags   []string    `json:"risk_flags"`
	CreatedAt   time.Time   `json:"created_at"`
}
