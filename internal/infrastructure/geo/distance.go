// Package geo resolves ZIP codes to coordinates and measures great-circle
// distances between them.  Lookups are cached and fail soft: a geocoding
// failure returns nil so callers fall back to simulated distance instead
// of surfacing an error.
package geo

import (
	"math"

	"github.com/partscout/partscout/pkg/types/listing"
)

// earthRadiusMiles is the mean Earth radius in statute miles.
const earthRadiusMiles = 3958.8

// HaversineMiles returns the great-circle distance between two points in
// statute miles.
func HaversineMiles(a, b listing.GeoPoint) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
