package weather

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trailgems/discovery-cli/internal/model"
	"github.com/trailgems/discovery-cli/internal/resilience"
	"github.com/trailgems/discovery-cli/pkg/weatherapi"
)

// Placeholder records keep the response shape intact when enrichment cannot
// produce real conditions.
func weatherUnavailable() *model.WeatherRecord {
	return &model.WeatherRecord{Conditions: "Weather unavailable"}
}

func locationUnavailable() *model.WeatherRecord {
	return &model.WeatherRecord{Conditions: "Location unavailable"}
}

// resolveCoordinates prefers the gem's explicit coordinates and falls back
// to extracting them from the map URL. A zero component counts as missing;
// narration emits {0, 0} when it has nothing.
func resolveCoordinates(gem *model.PresentedGem) *model.Coordinates {
	if c := gem.Coordinates; c != nil && c.Valid() && c.Lat != 0 && c.Lng != 0 {
		return c
	}
	return ExtractCoordinates(gem.MapURL)
}

// Enricher attaches current conditions and coordinates to presented gems.
type Enricher struct {
	client      weatherapi.Client
	cache       *Cache
	concurrency int
	policy      resilience.Policy
}

// NewEnricher creates an enricher backed by the given provider client and
// cache.
func NewEnricher(client weatherapi.Client, cache *Cache, concurrency int) *Enricher {
	if concurrency <= 0 {
		concurrency = 1
	}
	policy := resilience.WeatherPolicy()
	policy.OnRetry = resilience.RetryLogger("weather", "fetch")
	return &Enricher{
		client:      client,
		cache:       cache,
		concurrency: concurrency,
		policy:      policy,
	}
}

// Enrich fills in Weather and Coordinates for each gem in place. A gem whose
// map URL yields no coordinates, or whose weather fetch fails after retries,
// gets a placeholder record; the batch never fails.
func (e *Enricher) Enrich(ctx context.Context, gems []model.PresentedGem) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range gems {
		i := i
		g.Go(func() error {
			e.enrichOne(ctx, &gems[i])
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Enricher) enrichOne(ctx context.Context, gem *model.PresentedGem) {
	coords := resolveCoordinates(gem)
	if coords == nil {
		zap.L().Debug("weather: no usable coordinates",
			zap.String("place", gem.PlaceName),
		)
		gem.Weather = locationUnavailable()
		return
	}
	gem.Coordinates = coords

	if cached, ok := e.cache.Get(coords.Lat, coords.Lng); ok {
		gem.Weather = &cached
		return
	}

	record, err := resilience.DoVal(ctx, e.policy, func(ctx context.Context) (*model.WeatherRecord, error) {
		return e.client.FetchWeather(ctx, coords.Lat, coords.Lng)
	})
	if err != nil {
		zap.L().Warn("weather: fetch failed, using placeholder",
			zap.String("place", gem.PlaceName),
			zap.Float64("lat", coords.Lat),
			zap.Float64("lng", coords.Lng),
			zap.Error(err),
		)
		gem.Weather = weatherUnavailable()
		return
	}

	e.cache.Put(coords.Lat, coords.Lng, *record)
	gem.Weather = record
}
