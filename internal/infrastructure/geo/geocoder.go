package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"

	gocache "github.com/patrickmn/go-cache"

	"github.com/partscout/partscout/internal/config"
	"github.com/partscout/partscout/internal/infrastructure/monitoring/logging"
	"github.com/partscout/partscout/pkg/types/listing"
)

// maxResponseBytes caps geocoding response bodies.  Zippopotam payloads
// are a few hundred bytes; anything larger is malformed.
const maxResponseBytes = 64 * 1024

var validZipRe = regexp.MustCompile(`^\d{5}$`)

// zippopotamResponse mirrors the fields we read from the lookup payload.
// Coordinates arrive as JSON strings.
type zippopotamResponse struct {
	Places []struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"places"`
}

// Geocoder resolves US ZIP codes through the Zippopotam API with an
// in-process TTL cache in front.  Resolve never returns an error: any
// failure resolves to nil and the caller degrades to simulated distance.
type Geocoder struct {
	endpoint string
	client   *http.Client
	cache    *gocache.Cache
	logger   logging.Logger
}

// NewGeocoder constructs a Geocoder from configuration.
func NewGeocoder(cfg config.GeoConfig, logger logging.Logger) *Geocoder {
	return &Geocoder{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
		cache:    gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		logger:   logger.Named("geo"),
	}
}

// Resolve returns the coordinates for a five-digit ZIP, or nil when the
// ZIP is malformed, the lookup fails, or the response cannot be parsed.
func (g *Geocoder) Resolve(ctx context.Context, zip string) *listing.GeoPoint {
	if !validZipRe.MatchString(zip) {
		return nil
	}
	if cached, ok := g.cache.Get(zip); ok {
		point := cached.(listing.GeoPoint)
		return &point
	}

	point := g.lookup(ctx, zip)
	if point == nil {
		return nil
	}
	g.cache.SetDefault(zip, *point)
	return point
}

func (g *Geocoder) lookup(ctx context.Context, zip string) *listing.GeoPoint {
	url := fmt.Sprintf("%s/%s", g.endpoint, zip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		g.logger.Warn("geocode request build failed",
			logging.String("zip", zip), logging.Err(err))
		return nil
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("geocode lookup failed",
			logging.String("zip", zip), logging.Err(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("geocode lookup returned non-200",
			logging.String("zip", zip), logging.Int("status", resp.StatusCode))
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		g.logger.Warn("geocode response read failed",
			logging.String("zip", zip), logging.Err(err))
		return nil
	}

	var payload zippopotamResponse
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Places) == 0 {
		g.logger.Warn("geocode response unparseable", logging.String("zip", zip))
		return nil
	}

	lat, latErr := strconv.ParseFloat(payload.Places[0].Latitude, 64)
	lon, lonErr := strconv.ParseFloat(payload.Places[0].Longitude, 64)
	if latErr != nil || lonErr != nil {
		g.logger.Warn("geocode coordinates unparseable", logging.String("zip", zip))
		return nil
	}

	return &listing.GeoPoint{Lat: lat, Lon: lon}
}
