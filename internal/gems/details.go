package gems

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trailgems/discovery-cli/internal/model"
	"github.com/trailgems/discovery-cli/internal/resilience"
	"github.com/trailgems/discovery-cli/pkg/places"
)

// DetailFetcher enriches filtered gems with reviews and addresses from the
// places provider.
type DetailFetcher struct {
	client      places.Client
	concurrency int
	policy      resilience.Policy
}

// NewDetailFetcher creates a fetcher with the given per-request concurrency
// cap.
func NewDetailFetcher(client places.Client, concurrency int) *DetailFetcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	policy := resilience.DetailPolicy()
	policy.OnRetry = resilience.RetryLogger("places", "details")
	return &DetailFetcher{
		client:      client,
		concurrency: concurrency,
		policy:      policy,
	}
}

// Fetch loads place details for every gem concurrently. A gem whose detail
// call fails after retries is dropped rather than failing the batch; the
// returned slice preserves the input order of the survivors.
func (f *DetailFetcher) Fetch(ctx context.Context, candidates []model.GemCandidate) []model.EnrichedGem {
	results := make([]*model.EnrichedGem, len(candidates))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			enriched, err := f.fetchOne(ctx, c)
			if err != nil {
				zap.L().Warn("details: skipping gem after failed fetch",
					zap.String("place", c.Name),
					zap.String("place_id", c.PlaceID),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			results[i] = enriched
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.EnrichedGem, 0, len(candidates))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (f *DetailFetcher) fetchOne(ctx context.Context, c model.GemCandidate) (*model.EnrichedGem, error) {
	resp, err := resilience.DoVal(ctx, f.policy, func(ctx context.Context) (*places.DetailsResponse, error) {
		return f.client.Details(ctx, c.PlaceID)
	})
	if err != nil {
		return nil, err
	}

	detail := resp.Result
	return &model.EnrichedGem{
		Name:        c.Name,
		Address:     detail.FormattedAddress,
		Rating:      c.Rating,
		ReviewCount: c.ReviewCount,
		MapURL:      detail.URL,
		ReviewsText: joinReviews(detail.Reviews),
	}, nil
}

// joinReviews quotes each review and joins them on newlines so the narration
// prompt can distinguish voices. Provider order is kept; a review without
// text still contributes an empty quoted entry.
func joinReviews(reviews []places.Review) string {
	quoted := make([]string, 0, len(reviews))
	for _, r := range reviews {
		quoted = append(quoted, fmt.Sprintf("%q", r.Text))
	}
	return strings.Join(quoted, "\n")
}
