// Package scoring orchestrates one scoring request end to end: resolve the
// brand, derive valuation factors and the FMV range, compute the composite
// trust score and risk flags, then persist and publish the outcome.  The
// pipeline stages themselves are pure; everything fallible lives behind the
// collaborator interfaces declared in this package, and every collaborator
// failure degrades to reduced-confidence scoring rather than an error.
package scoring

import (
	"context"
	"regexp"
	"time"

	"github.com/partscout/partscout/internal/domain/brand"
	"github.com/partscout/partscout/internal/domain/intelligence"
	"github.com/partscout/partscout/internal/domain/valuation"
	"github.com/partscout/partscout/internal/infrastructure/monitoring/logging"
	"github.com/partscout/partscout/pkg/errors"
	"github.com/partscout/partscout/pkg/types/common"
	"github.com/partscout/partscout/pkg/types/listing"
)

// ─────────────────────────────────────────────────────────────────────────────
// Collaborator contracts
// ─────────────────────────────────────────────────────────────────────────────

// MetadataFetcher retrieves structured listing metadata from a URL.  It
// must not return an error: any failure resolves to Fetched=false so the
// pipeline scores with reduced confidence instead of crashing.
type MetadataFetcher interface {
	Fetch(ctx context.Context, url string) listing.Metadata
}

// Geocoder resolves a ZIP code to coordinates, returning nil on any
// failure.
type Geocoder interface {
	Resolve(ctx context.Context, zip string) *listing.GeoPoint
}

// DistanceCalculator computes the distance in miles between two points.
type DistanceCalculator func(a, b listing.GeoPoint) float64

// Signals are the simulated telemetry values produced when live data is
// unavailable.
type Signals struct {
	DistanceMiles float64
	TenureMonths  float64
	SellerRating  float64
}

// SignalProvider derives stable fallback signals from a cache key.
// Identical keys must always yield identical Signals, so repeated runs on
// the same listing score the same way.
type SignalProvider interface {
	Derive(key string) Signals
}

// ScoreRepository persists scoring outcomes as an audit trail.
type ScoreRepository interface {
	Save(ctx context.Context, rec *listing.ScoreRecord) error
	FindByID(ctx context.Context, id common.ID) (*listing.ScoreRecord, error)
	FindRecentByURL(ctx context.Context, url string) (*listing.ScoreRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*listing.ScoreRecord, error)
}

// EventPublisher emits a scored-listing event for downstream consumers.
type EventPublisher interface {
	PublishScored(ctx context.Context, rec *listing.ScoreRecord) error
}

// ─────────────────────────────────────────────────────────────────────────────
// Requests and outcomes
// ─────────────────────────────────────────────────────────────────────────────

// Request is one scoring request before signal enrichment.  Nil optional
// fields mean "unknown"; nil DistanceMiles or SellerTenureMonths are
// filled from the fallback signal provider.
type Request struct {
	Title       *string
	Category    listing.Category
	Condition   listing.Condition
	Price       *float64
	PartYear    *int
	EngineMiles *float64

	ListingURL string
	BuyerZip   string

	DistanceMiles      *float64
	SellerTenureMonths *float64

	// IsMarketplaceSource and SourceFetched are set by the analyze path
	// from fetch results; direct callers may set them from their own
	// knowledge of the listing origin.
	IsMarketplaceSource bool
	SourceFetched       bool
	HasBuyerGeo         bool
}

// AnalyzeRequest scores a listing straight from its URL: metadata is
// fetched live, the buyer/seller distance is computed when both ends
// geocode, and everything missing falls back to simulated signals.
type AnalyzeRequest struct {
	URL         string
	Category    listing.Category
	Condition   listing.Condition
	PartYear    *int
	EngineMiles *float64
	BuyerZip    string

	// Price overrides the detected ask price when set.
	Price *float64
}

// Outcome is the full result of one scoring request.
type Outcome struct {
	Record *listing.ScoreRecord `json:"record,omitempty"`
	Result listing.ScoreResult  `json:"result"`

	// SellerRating is simulated display telemetry; it does not feed the
	// composite score.
	SellerRating float64 `json:"seller_rating,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Service
// ─────────────────────────────────────────────────────────────────────────────

// Service wires the pure scoring pipeline to its collaborators.  The
// repository and publisher are optional: when nil, outcomes are simply not
// persisted or announced (the CLI runs this way).
type Service struct {
	brands   *brand.Resolver
	calc     *valuation.Calculator
	scorer   *intelligence.Scorer
	signals  SignalProvider
	fetcher  MetadataFetcher
	geocoder Geocoder
	distance DistanceCalculator
	repo     ScoreRepository
	events   EventPublisher
	logger   logging.Logger
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

// WithFetcher installs the listing-metadata fetcher used by Analyze.
func WithFetcher(f MetadataFetcher) ServiceOption {
	return func(s *Service) { s.fetcher = f }
}

// WithGeo installs the geocoder and distance calculator used by Analyze.
func WithGeo(g Geocoder, d DistanceCalculator) ServiceOption {
	return func(s *Service) { s.geocoder = g; s.distance = d }
}

// WithRepository installs the score audit-trail repository.
func WithRepository(r ScoreRepository) ServiceOption {
	return func(s *Service) { s.repo = r }
}

// WithPublisher installs the scored-event publisher.
func WithPublisher(p EventPublisher) ServiceOption {
	return func(s *Service) { s.events = p }
}

// NewService constructs a scoring Service.  The brand resolver, factor
// calculator, composite scorer, and fallback signal provider are
// mandatory; everything else is optional.
func NewService(
	brands *brand.Resolver,
	calc *valuation.Calculator,
	scorer *intelligence.Scorer,
	signals SignalProvider,
	logger logging.Logger,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		brands:  brands,
		calc:    calc,
		scorer:  scorer,
		signals: signals,
		logger:  logger.Named("scoring"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScoreContext runs the pure pipeline over a fully-populated listing
// context.  It cannot fail: every stage has a documented default for
// unknown input.
func (s *Service) ScoreContext(lc listing.ListingContext) listing.ScoreResult {
	title := ""
	if lc.Title != nil {
		title = *lc.Title
	}
	rep := s.brands.Resolve(title)
	val := s.calc.Valuate(lc)
	intel := s.scorer.Score(intelligence.Inputs{
		Context:    lc,
		Reputation: rep,
		Valuation:  val,
	})
	return listing.ScoreResult{Valuation: val, Intelligence: intel}
}

// Score enriches req with fallback signals where live telemetry is
// missing, runs the pipeline, persists the outcome, and publishes the
// scored event.  Persistence and publish failures are logged and absorbed;
// the caller always receives the score.
func (s *Service) Score(ctx context.Context, req Request) (*Outcome, error) {
	lc, rating := s.buildContext(req)
	result := s.ScoreContext(lc)

	rec := s.record(lc, result, req.ListingURL)
	s.store(ctx, rec)

	return &Outcome{Record: rec, Result: result, SellerRating: rating}, nil
}

// Analyze fetches listing metadata from req.URL, derives the buyer/seller
// distance when both ends geocode, and scores the assembled context.  A
// failed fetch degrades to reduced-confidence scoring with simulated
// signals; it is never an error.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*Outcome, error) {
	if req.URL == "" {
		return nil, errors.InvalidParam("listing URL is required")
	}

	meta := listing.Metadata{}
	if s.fetcher != nil {
		meta = s.fetcher.Fetch(ctx, req.URL)
	}

	scoreReq := Request{
		Title:               meta.Title,
		Category:            req.Category,
		Condition:           req.Condition,
		Price:               req.Price,
		PartYear:            req.PartYear,
		EngineMiles:         req.EngineMiles,
		ListingURL:          req.URL,
		BuyerZip:            req.BuyerZip,
		IsMarketplaceSource: meta.PlatformKnown,
		SourceFetched:       meta.Fetched,
	}
	if scoreReq.Price == nil {
		scoreReq.Price = meta.Price
	}

	miles, buyerResolved := s.resolveDistance(ctx, meta, req.BuyerZip)
	scoreReq.HasBuyerGeo = buyerResolved
	if miles != nil {
		scoreReq.DistanceMiles = miles
	}

	return s.Score(ctx, scoreReq)
}

// GetScore returns a persisted scoring outcome by ID.
func (s *Service) GetScore(ctx context.Context, id common.ID) (*listing.ScoreRecord, error) {
	if s.repo == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "score history is not enabled")
	}
	return s.repo.FindByID(ctx, id)
}

// LatestForURL returns the most recent persisted outcome for a listing
// URL, or nil when the listing has never been scored.
func (s *Service) LatestForURL(ctx context.Context, url string) (*listing.ScoreRecord, error) {
	if s.repo == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "score history is not enabled")
	}
	if url == "" {
		return nil, errors.InvalidParam("listing URL is required")
	}
	return s.repo.FindRecentByURL(ctx, url)
}

// ListRecent returns the most recent persisted outcomes, newest first.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*listing.ScoreRecord, error) {
	if s.repo == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "score history is not enabled")
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, limit)
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal assembly
// ─────────────────────────────────────────────────────────────────────────────

// buildContext fills missing distance/tenure from the fallback signal
// provider and returns the immutable context plus the simulated seller
// rating.
func (s *Service) buildContext(req Request) (listing.ListingContext, float64) {
	sig := s.signals.Derive(signalKey(req))

	distance := sig.DistanceMiles
	if req.DistanceMiles != nil {
		distance = *req.DistanceMiles
	}
	tenure := sig.TenureMonths
	if req.SellerTenureMonths != nil {
		tenure = *req.SellerTenureMonths
	}

	return listing.ListingContext{
		Title:               req.Title,
		Category:            req.Category,
		Condition:           req.Condition,
		Price:               req.Price,
		PartYear:            req.PartYear,
		EngineMiles:         req.EngineMiles,
		IsMarketplaceSource: req.IsMarketplaceSource,
		DistanceMiles:       distance,
		SellerTenureMonths:  tenure,
		SourceFetched:       req.SourceFetched,
		HasBuyerGeo:         req.HasBuyerGeo,
	}, sig.SellerRating
}

// signalKey picks the most stable identifier available for fallback
// signal derivation: URL, then title, then a fixed key.  The same listing
// must map to the same key on every run.
func signalKey(req Request) string {
	if req.ListingURL != "" {
		return req.ListingURL
	}
	if req.Title != nil && *req.Title != "" {
		return *req.Title
	}
	return "listing:unknown"
}

var zipRe = regexp.MustCompile(`\b(\d{5})\b`)

// resolveDistance geocodes the buyer ZIP and the ZIP embedded in the
// listing's location text, returning the computed miles when both resolve.
// The boolean reports whether the buyer end resolved, which feeds the
// confidence signal independently of the seller end.
func (s *Service) resolveDistance(ctx context.Context, meta listing.Metadata, buyerZip string) (*float64, bool) {
	if s.geocoder == nil || s.distance == nil || buyerZip == "" {
		return nil, false
	}

	buyer := s.geocoder.Resolve(ctx, buyerZip)
	if buyer == nil {
		return nil, false
	}

	if meta.LocationText == nil {
		return nil, true
	}
	m := zipRe.FindStringSubmatch(*meta.LocationText)
	if m == nil {
		return nil, true
	}
	seller := s.geocoder.Resolve(ctx, m[1])
	if seller == nil {
		return nil, true
	}

	miles := s.distance(*buyer, *seller)
	return &miles, true
}

// record builds the persisted form of one outcome.
func (s *Service) record(lc listing.ListingContext, res listing.ScoreResult, url string) *listing.ScoreRecord {
	title := ""
	if lc.Title != nil {
		title = *lc.Title
	}
	return &listing.ScoreRecord{
		ID:          common.GenerateID("score"),
		ListingURL:  url,
		Title:       title,
		Category:    lc.Category,
		Condition:   lc.Condition,
		Price:       lc.Price,
		FMVLow:      res.Valuation.MarketRange.Low,
		FMVMid:      res.Valuation.MarketRange.Mid,
		FMVHigh:     res.Valuation.MarketRange.High,
		PriceSignal: res.Valuation.PriceSignal,
		Score10:     res.Intelligence.Score10,
		RiskFlags:   res.Intelligence.RiskFlags,
		CreatedAt:   time.Now().UTC(),
	}
}

// store persists and publishes best-effort.  A failed write or publish
// must not cost the caller their score.
func (s *Service) store(ctx context.Context, rec *listing.ScoreRecord) {
	if s.repo != nil {
		if err := s.repo.Save(ctx, rec); err != nil {
			s.logger.Warn("failed to persist score record",
				logging.String("id", string(rec.ID)), logging.Err(err))
		}
	}
	if s.events != nil {
		if err := s.events.PublishScored(ctx, rec); err != nil {
			s.logger.Warn("failed to publish scored event",
				logging.String("id", string(rec.ID)), logging.Err(err))
		}
	}
}
