// Package gems implements the hidden-gem filter and per-gem detail
// enrichment.
package gems

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/trailgems/discovery-cli/internal/model"
)

// defaultMaxGems caps how many survivors advance to detail fetching.
const defaultMaxGems = 3

// defaultMinReviews is the floor below which a place has too little signal
// to call a gem.
const defaultMinReviews = 10

// minRating is the quality floor for a hidden gem.
const minRating = 3.5

// businessKeywords disqualify a candidate by name: commercial venues are not
// hidden outdoor gems even when their review profile fits.
var businessKeywords = []string{
	"restaurant",
	"cafe",
	"café",
	"coffee",
	"hotel",
	"motel",
	"shop",
	"store",
	"bar",
	"gym",
	"mall",
	"salon",
}

// businessTypes disqualify a candidate by provider category tag.
var businessTypes = map[string]bool{
	"restaurant":         true,
	"cafe":               true,
	"bar":                true,
	"lodging":            true,
	"shopping_mall":      true,
	"store":              true,
	"gym":                true,
	"school":             true,
	"travel_agency":      true,
	"car_repair":         true,
	"real_estate_agency": true,
}

// FilterResult is the outcome of filtering a candidate list.
type FilterResult struct {
	Status model.FilterStatus
	Gems   []model.GemCandidate
}

// Filter reduces raw candidates to at most maxGems hidden gems: places with
// a healthy rating but far fewer reviews than their peers. Non-positive
// limits fall back to the defaults. It is a pure function over its input;
// every outcome is encoded in the status.
func Filter(candidates []model.Candidate, maxGems, minReviews int) FilterResult {
	if maxGems <= 0 {
		maxGems = defaultMaxGems
	}
	if minReviews <= 0 {
		minReviews = defaultMinReviews
	}
	if len(candidates) == 0 {
		return FilterResult{Status: model.FilterStatusZeroGems}
	}

	var totalReviews int
	for _, c := range candidates {
		totalReviews += c.ReviewCount
	}
	avgReviews := float64(totalReviews) / float64(len(candidates))
	upperThreshold := avgReviews / 2

	// The threshold can legitimately fall below the review floor on small
	// or skewed candidate sets; that yields zero gems, not an error.
	zap.L().Info("filter: computed hidden-gem threshold",
		zap.Int("candidates", len(candidates)),
		zap.Float64("avg_reviews", avgReviews),
		zap.Float64("upper_threshold", upperThreshold),
	)

	var survivors []model.GemCandidate
	for _, c := range candidates {
		if isBusiness(c) {
			continue
		}
		if c.ReviewCount < minReviews || float64(c.ReviewCount) > upperThreshold {
			continue
		}
		if c.Rating < minRating {
			continue
		}
		survivors = append(survivors, model.GemCandidate(c))
	}

	if len(survivors) == 0 {
		return FilterResult{Status: model.FilterStatusZeroGems}
	}

	// Ties keep input order.
	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Rating > survivors[j].Rating
	})
	if len(survivors) > maxGems {
		survivors = survivors[:maxGems]
	}

	return FilterResult{Status: model.FilterStatusSuccess, Gems: survivors}
}

// isBusiness reports whether a candidate looks like a commercial venue by
// name keyword or category tag. Candidates without names or tags pass.
func isBusiness(c model.Candidate) bool {
	name := strings.ToLower(c.Name)
	for _, kw := range businessKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	for _, t := range c.Types {
		if businessTypes[strings.ToLower(t)] {
			return true
		}
	}
	return false
}
