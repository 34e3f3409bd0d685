// Package weather extracts coordinates from map links and enriches gems with
// current conditions, caching by rounded coordinate pair.
package weather

import (
	"regexp"
	"strconv"

	"github.com/trailgems/discovery-cli/internal/model"
)

// Map URLs embed coordinates in a few shapes. Ordered by how often the
// provider emits each form.
var coordPatterns = []*regexp.Regexp{
	// .../maps?q=45.52,-122.68 or ...&q=45.52,-122.68
	regexp.MustCompile(`[?&]q=(-?\d+\.?\d*),(-?\d+\.?\d*)`),
	// .../@45.52,-122.68,15z
	regexp.MustCompile(`@(-?\d+\.?\d*),(-?\d+\.?\d*)`),
	// .../place/45.52,-122.68
	regexp.MustCompile(`place/(-?\d+\.?\d*),(-?\d+\.?\d*)`),
}

// ExtractCoordinates pulls a lat/lng pair out of a map URL. Returns nil when
// no pattern matches or the values fall outside valid ranges.
func ExtractCoordinates(mapURL string) *model.Coordinates {
	if mapURL == "" {
		return nil
	}
	for _, re := range coordPatterns {
		m := re.FindStringSubmatch(mapURL)
		if m == nil {
			continue
		}
		lat, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		coords := &model.Coordinates{Lat: lat, Lng: lng}
		if coords.Valid() {
			return coords
		}
	}
	return nil
}
