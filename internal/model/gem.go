package model

// FilterStatus represents the outcome of the hidden-gem filter.
type FilterStatus string

const (
	FilterStatusSuccess  FilterStatus = "success"
	FilterStatusZeroGems FilterStatus = "zero_gems"
	FilterStatusError    FilterStatus = "error"
)

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite and within range.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Candidate is a raw place returned by the search provider, pre-filtering.
type Candidate struct {
	Name        string       `json:"name"`
	PlaceID     string       `json:"place_id"`
	Rating      float64      `json:"rating"`
	ReviewCount int          `json:"review_count"`
	Location    *Coordinates `json:"location,omitempty"`
	Types       []string     `json:"types,omitempty"`
}

// GemCandidate is a candidate that passed the hidden-gem filter. It carries
// no new fields; the distinct type marks the lifecycle stage.
type GemCandidate Candidate

// EnrichedGem is a gem candidate plus provider detail data. ReviewsText is a
// newline-joined, quote-wrapped concatenation of raw review snippets and may
// be empty.
type EnrichedGem struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	MapURL      string  `json:"map_url"`
	ReviewsText string  `json:"reviews_content"`
}

// Analysis holds the narrated insights for a gem.
type Analysis struct {
	WhySpecial             string `json:"whySpecial"`
	BestTime               string `json:"bestTime"`
	InsiderTip             string `json:"insiderTip"`
	ClothingRecommendation string `json:"clothingRecommendation,omitempty"`
}

// WeatherRecord is the normalized weather view attached to a gem. Nullable
// fields are pointers so the placeholder fallbacks serialize as JSON null.
type WeatherRecord struct {
	Temperature      *float64 `json:"temperature"`
	Conditions       string   `json:"conditions"`
	Humidity         *int     `json:"humidity"`
	HasPrecipitation bool     `json:"hasPrecipitation"`
}

// PresentedGem is the final shape returned to the caller. Field names match
// the external API contract.
type PresentedGem struct {
	PlaceName   string         `json:"placeName"`
	Address     string         `json:"address"`
	Coordinates *Coordinates   `json:"coordinates,omitempty"`
	Rating      float64        `json:"rating"`
	ReviewCount int            `json:"reviewCount"`
	Photos      []string       `json:"photos"`
	MapURL      string         `json:"map_url,omitempty"`
	Analysis    Analysis       `json:"analysis"`
	Weather     *WeatherRecord `json:"weather,omitempty"`
}

// DiscoveryResult is the response body for a discovery request.
type DiscoveryResult struct {
	Gems           []PresentedGem `json:"gems"`
	ProcessingTime float64        `json:"processingTime"`
	Query          string         `json:"query"`
}
