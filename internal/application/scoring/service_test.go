package scoring_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partscout/partscout/internal/application/scoring"
	"github.com/partscout/partscout/internal/domain/brand"
	"github.com/partscout/partscout/internal/domain/intelligence"
	"github.com/partscout/partscout/internal/domain/valuation"
	"github.com/partscout/partscout/internal/infrastructure/monitoring/logging"
	"github.com/partscout/partscout/internal/infrastructure/signals"
	"github.com/partscout/partscout/pkg/errors"
	"github.com/partscout/partscout/pkg/types/common"
	"github.com/partscout/partscout/pkg/types/listing"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type stubFetcher struct {
	meta  listing.Metadata
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, _ string) listing.Metadata {
	f.calls++
	return f.meta
}

type stubGeocoder struct {
	points map[string]*listing.GeoPoint
}

func (g *stubGeocoder) Resolve(_ context.Context, zip string) *listing.GeoPoint {
	return g.points[zip]
}

type memoryRepo struct {
	saved  []*listing.ScoreRecord
	failOn bool
}

func (r *memoryRepo) Save(_ context.Context, rec *listing.ScoreRecord) error {
	if r.failOn {
		return errors.Internal("write refused")
	}
	r.saved = append(r.saved, rec)
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id common.ID) (*listing.ScoreRecord, error) {
	for _, rec := range r.saved {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, errors.NotFound("score record " + string(id) + " not found")
}

func (r *memoryRepo) FindRecentByURL(_ context.Context, url string) (*listing.ScoreRecord, error) {
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].ListingURL == url {
			return r.saved[i], nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) ListRecent(_ context.Context, limit int) ([]*listing.ScoreRecord, error) {
	if limit > len(r.saved) {
		limit = len(r.saved)
	}
	return r.saved[len(r.saved)-limit:], nil
}

type memoryPublisher struct {
	published []*listing.ScoreRecord
}

func (p *memoryPublisher) PublishScored(_ context.Context, rec *listing.ScoreRecord) error {
	p.published = append(p.published, rec)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func fixedClock() time.Time {
	return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
}

func newService(t *testing.T, opts ...scoring.ServiceOption) *scoring.Service {
	t.Helper()
	return scoring.NewService(
		brand.NewResolver(),
		valuation.NewCalculator(valuation.WithClock(fixedClock)),
		intelligence.NewScorer(),
		signals.NewSimulator(),
		logging.NewNopLogger(),
		opts...,
	)
}

// straightDistance is a fake distance calculator with obvious geometry.
func straightDistance(a, b listing.GeoPoint) float64 {
	dx := a.Lat - b.Lat
	if dx < 0 {
		dx = -dx
	}
	return dx * 10
}

// ─────────────────────────────────────────────────────────────────────────────
// Score
// ─────────────────────────────────────────────────────────────────────────────

func TestScore_PersistsAndPublishes(t *testing.T) {
	repo := &memoryRepo{}
	pub := &memoryPublisher{}
	svc := newService(t, scoring.WithRepository(repo), scoring.WithPublisher(pub))

	out, err := svc.Score(context.Background(), scoring.Request{
		Title:               strPtr("Bilstein B8 front shocks, brand new"),
		Category:            listing.CategorySuspension,
		Condition:           listing.ConditionNew,
		Price:               f64Ptr(360),
		ListingURL:          "https://www.ebay.com/itm/42",
		DistanceMiles:       f64Ptr(30),
		SellerTenureMonths:  f64Ptr(18),
		IsMarketplaceSource: true,
		SourceFetched:       true,
		HasBuyerGeo:         true,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Record)

	assert.True(t, strings.HasPrefix(string(out.Record.ID), "score_"))
	assert.Equal(t, out.Result.Valuation.MarketRange.Mid, out.Record.FMVMid)
	assert.Equal(t, out.Result.Intelligence.Score10, out.Record.Score10)
	assert.Equal(t, listing.PriceAtMarket, out.Record.PriceSignal)
	assert.Empty(t, out.Record.RiskFlags)

	require.Len(t, repo.saved, 1)
	require.Len(t, pub.published, 1)
	assert.Equal(t, out.Record.ID, repo.saved[0].ID)
	assert.Equal(t, out.Record.ID, pub.published[0].ID)
}

func TestScore_SucceedsWithoutRepoOrPublisher(t *testing.T) {
	svc := newService(t)

	out, err := svc.Score(context.Background(), scoring.Request{
		Title:     strPtr("used alternator"),
		Category:  listing.CategoryEngine,
		Condition: listing.ConditionUsed,
		Price:     f64Ptr(120),
	})
	require.NoError(t, err)
	require.NotNil(t, out.Record)
	assert.Greater(t, out.Result.Intelligence.Score10, 0.0)
}

func TestScore_PersistFailureDoesNotFailScoring(t *testing.T) {
	repo := &memoryRepo{failOn: true}
	svc := newService(t, scoring.WithRepository(repo))

	out, err := svc.Score(context.Background(), scoring.Request{
		Title:     strPtr("Bilstein B8 shocks"),
		Category:  listing.CategorySuspension,
		Condition: listing.ConditionNew,
		Price:     f64Ptr(400),
	})
	require.NoError(t, err)
	assert.NotNil(t, out.Record)
	assert.Empty(t, repo.saved)
}

func TestScore_FallbackSignalsFillMissingTelemetry(t *testing.T) {
	svc := newService(t)
	sim := signals.NewSimulator()
	url := "https://craigslist.org/parts/991.html"
	want := sim.Derive(url)

	out, err := svc.Score(context.Background(), scoring.Request{
		Title:      strPtr("OEM radiator"),
		Category:   listing.CategoryEngine,
		Condition:  listing.ConditionUsed,
		Price:      f64Ptr(150),
		ListingURL: url,
	})
	require.NoError(t, err)
	assert.Equal(t, want.SellerRating, out.SellerRating)
}

func TestScore_ProvidedTelemetryWinsOverFallback(t *testing.T) {
	svc := newService(t)

	with, err := svc.Score(context.Background(), scoring.Request{
		Title:              strPtr("OEM radiator"),
		Category:           listing.CategoryEngine,
		Condition:          listing.ConditionUsed,
		Price:              f64Ptr(150),
		ListingURL:         "https://craigslist.org/parts/991.html",
		DistanceMiles:      f64Ptr(5),
		SellerTenureMonths: f64Ptr(60),
	})
	require.NoError(t, err)

	// 5 miles and 60 months should never raise the proximity or tenure
	// cautions.
	for _, flag := range with.Result.Intelligence.RiskFlags {
		assert.NotContains(t, flag, "Pickup distance")
		assert.NotContains(t, flag, "Seller account")
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Analyze
// ─────────────────────────────────────────────────────────────────────────────

func TestAnalyze_RequiresURL(t *testing.T) {
	svc := newService(t)
	_, err := svc.Analyze(context.Background(), scoring.AnalyzeRequest{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeBadRequest, errors.GetCode(err))
}

func TestAnalyze_FetchedMetadataFeedsScoring(t *testing.T) {
	fetcher := &stubFetcher{meta: listing.Metadata{
		Title:         strPtr("Ohlins Road and Track coilover kit, brand new"),
		Price:         f64Ptr(1800),
		LocationText:  strPtr("Austin, TX 78701"),
		PlatformKnown: true,
		Fetched:       true,
	}}
	geo := &stubGeocoder{points: map[string]*listing.GeoPoint{
		"78701": {Lat: 30.27, Lon: -97.74},
		"78641": {Lat: 30.56, Lon: -97.85},
	}}
	svc := newService(t,
		scoring.WithFetcher(fetcher),
		scoring.WithGeo(geo, straightDistance),
	)

	out, err := svc.Analyze(context.Background(), scoring.AnalyzeRequest{
		URL:       "https://www.ebay.com/itm/777",
		Category:  listing.CategorySuspension,
		Condition: listing.ConditionNew,
		BuyerZip:  "78641",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, "Ohlins Road and Track coilover kit, brand new", out.Record.Title)
	require.NotNil(t, out.Record.Price)
	assert.Equal(t, 1800.0, *out.Record.Price)

	// Both ZIPs resolved, so no fallback cautions about platform or
	// fetch should appear.
	assert.Empty(t, out.Result.Intelligence.RiskFlags)
}

// A buyer ZIP that geocodes still earns the geo confidence bonus even
// when the listing carries no location text to resolve the seller end.
func TestAnalyze_BuyerGeoBonusSurvivesMissingSellerLocation(t *testing.T) {
	fetcher := &stubFetcher{meta: listing.Metadata{
		PlatformKnown: true,
		Fetched:       true,
	}}
	geo := &stubGeocoder{points: map[string]*listing.GeoPoint{
		"78641": {Lat: 30.56, Lon: -97.85},
	}}
	svc := newService(t,
		scoring.WithFetcher(fetcher),
		scoring.WithGeo(geo, straightDistance),
	)

	out, err := svc.Analyze(context.Background(), scoring.AnalyzeRequest{
		URL:       "https://www.ebay.com/itm/901",
		Category:  listing.CategoryBrakes,
		Condition: listing.ConditionUsed,
		BuyerZip:  "78641",
	})
	require.NoError(t, err)

	// Base 0.55 + fetched 0.20 + buyer geo 0.05; no title or price.
	assert.InDelta(t, 0.80, out.Result.Intelligence.ScoreInputs.ConfidenceNorm, 1e-9)
}

func TestAnalyze_PriceOverrideBeatsDetectedPrice(t *testing.T) {
	fetcher := &stubFetcher{meta: listing.Metadata{
		Title:         strPtr("Bosch fuel pump, new"),
		Price:         f64Ptr(95),
		PlatformKnown: true,
		Fetched:       true,
	}}
	svc := newService(t, scoring.WithFetcher(fetcher))

	out, err := svc.Analyze(context.Background(), scoring.AnalyzeRequest{
		URL:       "https://www.ebay.com/itm/13",
		Category:  listing.CategoryEngine,
		Condition: listing.ConditionNew,
		Price:     f64Ptr(240),
	})
	require.NoError(t, err)
	require.NotNil(t, out.Record.Price)
	assert.Equal(t, 240.0, *out.Record.Price)
}

func TestAnalyze_FailedFetchDegradesToFallbackScoring(t *testing.T) {
	fetcher := &stubFetcher{meta: listing.Metadata{Fetched: false}}
	svc := newService(t, scoring.WithFetcher(fetcher))

	out, err := svc.Analyze(context.Background(), scoring.AnalyzeRequest{
		URL:       "https://unknown-forum.example/thread/5",
		Category:  listing.CategoryRims,
		Condition: listing.ConditionUsed,
	})
	require.NoError(t, err)

	flags := out.Result.Intelligence.RiskFlags
	require.NotEmpty(t, flags)
	assert.Contains(t, flags[0], "platform")
	assert.Contains(t, flags[1], "could not be fetched")
}

// Re-analyzing the same degraded listing must reproduce the exact same
// outcome: every fallback value is derived from the URL, never from
// randomness.
func TestAnalyze_DegradedOutcomeIsReproducible(t *testing.T) {
	fetcher := &stubFetcher{meta: listing.Metadata{Fetched: false}}
	svc := newService(t, scoring.WithFetcher(fetcher))

	req := scoring.AnalyzeRequest{
		URL:       "https://unknown-forum.example/thread/5",
		Category:  listing.CategoryRims,
		Condition: listing.ConditionUsed,
	}
	first, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Result, second.Result)
	assert.Equal(t, first.SellerRating, second.SellerRating)
}

// ─────────────────────────────────────────────────────────────────────────────
// History
// ─────────────────────────────────────────────────────────────────────────────

func TestGetScore_RoundTrip(t *testing.T) {
	repo := &memoryRepo{}
	svc := newService(t, scoring.WithRepository(repo))

	out, err := svc.Score(context.Background(), scoring.Request{
		Title:     strPtr("JL Audio subwoofer"),
		Category:  listing.CategoryAudio,
		Condition: listing.ConditionUsed,
		Price:     f64Ptr(200),
	})
	require.NoError(t, err)

	got, err := svc.GetScore(context.Background(), out.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Record.Score10, got.Score10)

	_, err = svc.GetScore(context.Background(), "score_missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestGetScore_WithoutRepository(t *testing.T) {
	svc := newService(t)
	_, err := svc.GetScore(context.Background(), "score_x")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeServiceUnavailable, errors.GetCode(err))
}

func TestLatestForURL(t *testing.T) {
	repo := &memoryRepo{}
	svc := newService(t, scoring.WithRepository(repo))
	url := "https://www.ebay.com/itm/555"

	_, err := svc.Score(context.Background(), scoring.Request{
		Title:      strPtr("Borla ATAK exhaust"),
		Category:   listing.CategoryExhaust,
		Condition:  listing.ConditionNew,
		Price:      f64Ptr(500),
		ListingURL: url,
	})
	require.NoError(t, err)

	second, err := svc.Score(context.Background(), scoring.Request{
		Title:      strPtr("Borla ATAK exhaust"),
		Category:   listing.CategoryExhaust,
		Condition:  listing.ConditionNew,
		Price:      f64Ptr(450),
		ListingURL: url,
	})
	require.NoError(t, err)

	got, err := svc.LatestForURL(context.Background(), url)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.Record.ID, got.ID)

	got, err = svc.LatestForURL(context.Background(), "https://www.ebay.com/itm/never")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = svc.LatestForURL(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeBadRequest, errors.GetCode(err))
}

func TestLatestForURL_WithoutRepository(t *testing.T) {
	svc := newService(t)
	_, err := svc.LatestForURL(context.Background(), "https://www.ebay.com/itm/1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeServiceUnavailable, errors.GetCode(err))
}
