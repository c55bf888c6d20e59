package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/partscout/partscout/internal/application/scoring"
	apperrors "github.com/partscout/partscout/pkg/errors"
	"github.com/partscout/partscout/pkg/types/common"
	"github.com/partscout/partscout/pkg/types/listing"
)

// ScoringObserver records completed scoring runs for metrics.
type ScoringObserver interface {
	ObserveScoring(priceSignal string, elapsed time.Duration)
}

// ScoreHandler serves the scoring endpoints.
type ScoreHandler struct {
	service  *scoring.Service
	observer ScoringObserver
}

// NewScoreHandler constructs a ScoreHandler.  observer may be nil.
func NewScoreHandler(service *scoring.Service, observer ScoringObserver) *ScoreHandler {
	return &ScoreHandler{service: service, observer: observer}
}

// scoreListingRequest is the POST /listings/score body.  Category and
// condition arrive as free-form strings and are normalized server-side;
// unknown values fall back to the documented defaults rather than
// erroring.
type scoreListingRequest struct {
	Title              *string  `json:"title"`
	Category           string   `json:"category"`
	Condition          string   `json:"condition"`
	Price              *float64 `json:"price"`
	PartYear           *int     `json:"part_year"`
	EngineMiles        *float64 `json:"engine_miles"`
	ListingURL         string   `json:"listing_url"`
	BuyerZip           string   `json:"buyer_zip"`
	DistanceMiles      *float64 `json:"distance_miles"`
	SellerTenureMonths *float64 `json:"seller_tenure_months"`
	MarketplaceSource  bool     `json:"marketplace_source"`
}

// analyzeListingRequest is the POST /listings/analyze body.
type analyzeListingRequest struct {
	URL         string   `json:"url" binding:"required"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	PartYear    *int     `json:"part_year"`
	EngineMiles *float64 `json:"engine_miles"`
	BuyerZip    string   `json:"buyer_zip"`
	Price       *float64 `json:"price"`
}

// Score handles POST /api/v1/listings/score.
func (h *ScoreHandler) Score(c *gin.Context) {
	var req scoreListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidParam("invalid request body: "+err.Error()))
		return
	}

	category, _ := listing.ParseCategory(req.Category)
	condition, _ := listing.ParseCondition(req.Condition)

	started := time.Now()
	out, err := h.service.Score(c.Request.Context(), scoring.Request{
		Title:               req.Title,
		Category:            category,
		Condition:           condition,
		Price:               req.Price,
		PartYear:            req.PartYear,
		EngineMiles:         req.EngineMiles,
		ListingURL:          req.ListingURL,
		BuyerZip:            req.BuyerZip,
		DistanceMiles:       req.DistanceMiles,
		SellerTenureMonths:  req.SellerTenureMonths,
		IsMarketplaceSource: req.MarketplaceSource,
		SourceFetched:       false,
		HasBuyerGeo:         false,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.observe(out, started)
	respond(c, http.StatusOK, out)
}

// Analyze handles POST /api/v1/listings/analyze.
func (h *ScoreHandler) Analyze(c *gin.Context) {
	var req analyzeListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidParam("invalid request body: "+err.Error()))
		return
	}

	category, _ := listing.ParseCategory(req.Category)
	condition, _ := listing.ParseCondition(req.Condition)

	started := time.Now()
	out, err := h.service.Analyze(c.Request.Context(), scoring.AnalyzeRequest{
		URL:         req.URL,
		Category:    category,
		Condition:   condition,
		PartYear:    req.PartYear,
		EngineMiles: req.EngineMiles,
		BuyerZip:    req.BuyerZip,
		Price:       req.Price,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.observe(out, started)
	respond(c, http.StatusOK, out)
}

// Get handles GET /api/v1/scores/:id.
func (h *ScoreHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondError(c, apperrors.InvalidParam("score id is required"))
		return
	}

	rec, err := h.service.GetScore(c.Request.Context(), common.ID(id))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, rec)
}

// List handles GET /api/v1/scores.  With ?url= it returns the most
// recent score for that listing instead of the global history.
func (h *ScoreHandler) List(c *gin.Context) {
	if url := c.Query("url"); url != "" {
		rec, err := h.service.LatestForURL(c.Request.Context(), url)
		if err != nil {
			respondError(c, err)
			return
		}
		if rec == nil {
			respondError(c, apperrors.New(apperrors.ErrCodeScoreNotFound, "listing has not been scored"))
			return
		}
		respond(c, http.StatusOK, []*listing.ScoreRecord{rec})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	records, err := h.service.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, records)
}

func (h *ScoreHandler) observe(out *scoring.Outcome, started time.Time) {
	if h.observer == nil {
		return
	}
	h.observer.ObserveScoring(string(out.Result.Valuation.PriceSignal), time.Since(started))
}
