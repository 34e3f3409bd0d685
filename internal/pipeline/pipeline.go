// Package pipeline orchestrates a discovery run: search, filter, detail
// fetch, narration, parsing, weather enrichment.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/trailgems/discovery-cli/internal/config"
	"github.com/trailgems/discovery-cli/internal/gems"
	"github.com/trailgems/discovery-cli/internal/model"
	"github.com/trailgems/discovery-cli/internal/narrate"
	"github.com/trailgems/discovery-cli/internal/parse"
	"github.com/trailgems/discovery-cli/internal/resilience"
	"github.com/trailgems/discovery-cli/internal/weather"
	"github.com/trailgems/discovery-cli/pkg/places"
)

// Pipeline wires the discovery stages together.
type Pipeline struct {
	cfg          *config.Config
	places       places.Client
	details      *gems.DetailFetcher
	narrator     narrate.Narrator
	enricher     *weather.Enricher
	searchPolicy resilience.Policy
}

// New creates a Pipeline with all dependencies.
func New(
	cfg *config.Config,
	placesClient places.Client,
	details *gems.DetailFetcher,
	narrator narrate.Narrator,
	enricher *weather.Enricher,
) *Pipeline {
	searchPolicy := resilience.SearchPolicy()
	searchPolicy.OnRetry = resilience.RetryLogger("places", "text_search")
	return &Pipeline{
		cfg:          cfg,
		places:       placesClient,
		details:      details,
		narrator:     narrator,
		enricher:     enricher,
		searchPolicy: searchPolicy,
	}
}

// Run executes a full discovery for the query. Degrades rather than fails:
// an empty filter result, an unusable narration, or missing weather all
// produce a valid (possibly empty) result. Only search transport failure and
// context cancellation surface as errors.
func (p *Pipeline) Run(ctx context.Context, query string) (*model.DiscoveryResult, error) {
	log := zap.L().With(zap.String("query", query))
	log.Info("pipeline: starting discovery")
	start := time.Now()

	result := &model.DiscoveryResult{
		Gems:  []model.PresentedGem{},
		Query: query,
	}

	// Stage 1: search.
	stageStart := time.Now()
	candidates, err := p.search(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: search")
	}
	log.Info("pipeline: search complete",
		zap.Int("candidates", len(candidates)),
		zap.Duration("duration", time.Since(stageStart)),
	)

	// Stage 2: filter.
	filtered := gems.Filter(candidates, p.cfg.Pipeline.MaxGems, p.cfg.Pipeline.MinReviews)
	log.Info("pipeline: filter complete",
		zap.String("status", string(filtered.Status)),
		zap.Int("gems", len(filtered.Gems)),
	)
	if filtered.Status != model.FilterStatusSuccess {
		result.ProcessingTime = time.Since(start).Seconds()
		return result, nil
	}

	// Stage 3: details.
	stageStart = time.Now()
	enriched := p.details.Fetch(ctx, filtered.Gems)
	log.Info("pipeline: details complete",
		zap.Int("enriched", len(enriched)),
		zap.Duration("duration", time.Since(stageStart)),
	)
	if len(enriched) == 0 {
		result.ProcessingTime = time.Since(start).Seconds()
		return result, nil
	}

	// Stages 4-5: narrate and parse. A narration failure degrades to
	// presenting the enriched gems without insights.
	stageStart = time.Now()
	presented := p.narrateAndParse(ctx, query, enriched, log)
	log.Info("pipeline: narration complete",
		zap.Int("gems", len(presented)),
		zap.Duration("duration", time.Since(stageStart)),
	)

	// Stage 6: weather.
	stageStart = time.Now()
	p.enricher.Enrich(ctx, presented)
	log.Info("pipeline: weather complete",
		zap.Duration("duration", time.Since(stageStart)),
	)

	result.Gems = presented
	result.ProcessingTime = time.Since(start).Seconds()
	log.Info("pipeline: discovery finished",
		zap.Int("gems", len(result.Gems)),
		zap.Float64("processing_time_s", result.ProcessingTime),
	)
	return result, nil
}

// search runs the text search under the search retry profile and converts
// hits into candidates. A non-OK provider status is an empty candidate set,
// not an error.
func (p *Pipeline) search(ctx context.Context, query string) ([]model.Candidate, error) {
	resp, err := resilience.DoVal(ctx, p.searchPolicy, func(ctx context.Context) (*places.TextSearchResponse, error) {
		return p.places.TextSearch(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	if resp.Status != places.StatusOK {
		zap.L().Info("pipeline: search returned no results",
			zap.String("status", resp.Status),
		)
		return nil, nil
	}

	candidates := make([]model.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		c := model.Candidate{
			Name:        r.Name,
			PlaceID:     r.PlaceID,
			Rating:      r.Rating,
			ReviewCount: r.UserRatingsTotal,
			Types:       r.Types,
		}
		if r.Geometry != nil {
			c.Location = &model.Coordinates{
				Lat: r.Geometry.Location.Lat,
				Lng: r.Geometry.Location.Lng,
			}
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// narrateAndParse produces presented gems from enriched ones. When narration
// fails or parsing recovers nothing, the enriched gems are presented with
// placeholder analysis instead of dropping the result.
func (p *Pipeline) narrateAndParse(ctx context.Context, query string, enriched []model.EnrichedGem, log *zap.Logger) []model.PresentedGem {
	raw, err := p.narrator.Narrate(ctx, query, enriched)
	if err != nil {
		log.Warn("pipeline: narration failed, presenting without insights", zap.Error(err))
		return parse.PresentWithoutAnalysis(enriched)
	}

	presented := parse.Parse(raw)
	if len(presented) == 0 {
		log.Warn("pipeline: narration yielded no parseable gems, presenting without insights")
		return parse.PresentWithoutAnalysis(enriched)
	}
	return presented
}
