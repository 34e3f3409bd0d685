package main

import (
	"time"

	"github.com/trailgems/discovery-cli/internal/config"
	"github.com/trailgems/discovery-cli/internal/gems"
	"github.com/trailgems/discovery-cli/internal/narrate"
	"github.com/trailgems/discovery-cli/internal/pipeline"
	"github.com/trailgems/discovery-cli/internal/weather"
	"github.com/trailgems/discovery-cli/pkg/anthropic"
	"github.com/trailgems/discovery-cli/pkg/places"
	"github.com/trailgems/discovery-cli/pkg/weatherapi"
)

// initPipeline builds the discovery pipeline from configuration. Fails fast
// on missing credentials.
func initPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}

	placesClient := places.NewClient(cfg.Places.Key, places.WithBaseURL(cfg.Places.BaseURL))
	aiClient := anthropic.NewClient(cfg.Anthropic.Key)
	weatherClient := weatherapi.NewClient(cfg.Weather.Key,
		weatherapi.WithBaseURL(cfg.Weather.BaseURL),
		weatherapi.WithTimeout(time.Duration(cfg.Weather.TimeoutSecs)*time.Second),
	)

	return pipeline.New(
		cfg,
		placesClient,
		gems.NewDetailFetcher(placesClient, cfg.Pipeline.ItemConcurrency),
		narrate.New(aiClient, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens),
		weather.NewEnricher(
			weatherClient,
			weather.NewCache(time.Duration(cfg.Weather.CacheTTLSecs)*time.Second),
			cfg.Pipeline.ItemConcurrency,
		),
	), nil
}
