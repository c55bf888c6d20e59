// Package metadata fetches and parses listing pages from marketplace
// URLs.  The fetcher is polite (robots.txt, per-host rate limits, a body
// size cap) and fail-soft: every failure mode resolves to a Metadata
// value with Fetched=false so scoring degrades instead of erroring.
package metadata

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/partscout/partscout/internal/config"
	"github.com/partscout/partscout/internal/infrastructure/monitoring/logging"
	"github.com/partscout/partscout/pkg/types/listing"
)

// Cache stores parsed metadata keyed by listing URL so repeated scoring
// of the same listing does not refetch the page.  Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (listing.Metadata, bool)
	Set(ctx context.Context, key string, meta listing.Metadata)
}

// OutcomeRecorder observes the terminal state of each fetch for metrics.
type OutcomeRecorder interface {
	RecordFetch(host, outcome string)
}

// Fetch outcome labels.
const (
	outcomeOK          = "ok"
	outcomeCacheHit    = "cache_hit"
	outcomeInvalidURL  = "invalid_url"
	outcomeRobotsDeny  = "robots_denied"
	outcomeHTTPError   = "http_error"
	outcomeBadStatus   = "bad_status"
	outcomeParseFailed = "parse_failed"
)

// Fetcher retrieves and parses listing pages.
type Fetcher struct {
	cfg     config.FetcherConfig
	client  *http.Client
	robots  *gocache.Cache
	cache   Cache
	metrics OutcomeRecorder
	logger  logging.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	flight   singleflight.Group
}

// FetcherOption configures optional collaborators.
type FetcherOption func(*Fetcher)

// WithCache installs a metadata cache in front of live fetches.
func WithCache(c Cache) FetcherOption {
	return func(f *Fetcher) { f.cache = c }
}

// WithMetrics installs a fetch outcome recorder.
func WithMetrics(m OutcomeRecorder) FetcherOption {
	return func(f *Fetcher) { f.metrics = m }
}

// NewFetcher constructs a Fetcher from configuration.
func NewFetcher(cfg config.FetcherConfig, logger logging.Logger, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		cfg:    cfg,
		logger: logger.Named("fetcher"),
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= cfg.MaxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		robots:   gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		limiters: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the listing page at rawURL and extracts its title,
// price, and location.  It never returns an error: the zero-value
// degradation path is Metadata{Fetched: false} with PlatformKnown still
// reflecting the host table, so the caller keeps the platform signal even
// when the page is unreachable.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) listing.Metadata {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		f.record("", outcomeInvalidURL)
		return listing.Metadata{}
	}
	host := parsed.Host
	known := KnownMarketplace(host)

	if f.cache != nil {
		if meta, ok := f.cache.Get(ctx, rawURL); ok {
			f.record(host, outcomeCacheHit)
			return meta
		}
	}

	// Concurrent requests for the same URL share one fetch.
	v, _, _ := f.flight.Do(rawURL, func() (interface{}, error) {
		return f.fetchLive(ctx, parsed, rawURL, host, known), nil
	})
	return v.(listing.Metadata)
}

// fetchLive performs the robots check, rate limiting, HTTP request, and
// parse for one listing URL.
func (f *Fetcher) fetchLive(ctx context.Context, parsed *url.URL, rawURL, host string, known bool) listing.Metadata {
	if f.cfg.RespectRobots && !f.robotsAllowed(ctx, parsed) {
		f.record(host, outcomeRobotsDeny)
		f.logger.Info("fetch denied by robots.txt", logging.String("host", host))
		return metadataFrom(nil, nil, nil, known, false)
	}

	if err := f.waitTurn(ctx, host); err != nil {
		f.record(host, outcomeHTTPError)
		return metadataFrom(nil, nil, nil, known, false)
	}

	body, ok := f.get(ctx, rawURL, host)
	if !ok {
		return metadataFrom(nil, nil, nil, known, false)
	}

	title, location, price, err := parsePage(strings.NewReader(body))
	if err != nil {
		f.record(host, outcomeParseFailed)
		f.logger.Warn("listing page unparseable",
			logging.String("host", host), logging.Err(err))
		return metadataFrom(nil, nil, nil, known, false)
	}

	meta := metadataFrom(title, location, price, known, true)
	if f.cache != nil {
		f.cache.Set(ctx, rawURL, meta)
	}
	f.record(host, outcomeOK)
	return meta
}

// get performs the HTTP request and returns the size-capped body.
func (f *Fetcher) get(ctx context.Context, rawURL, host string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		f.record(host, outcomeHTTPError)
		return "", false
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		f.record(host, outcomeHTTPError)
		f.logger.Warn("listing fetch failed",
			logging.String("host", host), logging.Err(err))
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.record(host, outcomeBadStatus)
		f.logger.Warn("listing fetch returned non-200",
			logging.String("host", host), logging.Int("status", resp.StatusCode))
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		f.record(host, outcomeHTTPError)
		return "", false
	}
	return string(body), true
}

// robotsAllowed fetches and caches the host's robots.txt, then checks the
// path against our user agent.  An unreachable or unparseable robots.txt
// allows the fetch; an explicit disallow blocks it.
func (f *Fetcher) robotsAllowed(ctx context.Context, u *url.URL) bool {
	var group *robotstxt.Group
	if cached, ok := f.robots.Get(u.Host); ok {
		group = cached.(*robotstxt.Group)
	} else {
		group = f.loadRobots(ctx, u)
		f.robots.SetDefault(u.Host, group)
	}
	if group == nil {
		return true
	}
	return group.Test(u.Path)
}

// loadRobots returns the agent group for this host, or nil when robots.txt
// is absent or unreadable.
func (f *Fetcher) loadRobots(ctx context.Context, u *url.URL) *robotstxt.Group {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data.FindGroup(f.cfg.UserAgent)
}

// waitTurn enforces the per-host request rate.
func (f *Fetcher) waitTurn(ctx context.Context, host string) error {
	f.mu.Lock()
	limiter, ok := f.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(f.cfg.RequestsPerSecond), 1)
		f.limiters[host] = limiter
	}
	f.mu.Unlock()
	return limiter.Wait(ctx)
}

func (f *Fetcher) record(host, outcome string) {
	if f.metrics != nil {
		f.metrics.RecordFetch(host, outcome)
	}
}
