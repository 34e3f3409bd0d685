// Package narrate turns enriched gems into reader-facing stories via the
// text-generation provider. The output is requested as JSON but treated as
// untrusted text; recovery lives in the parse package.
package narrate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/trailgems/discovery-cli/internal/model"
	"github.com/trailgems/discovery-cli/internal/resilience"
	"github.com/trailgems/discovery-cli/pkg/anthropic"
)

const systemPrompt = `You are the storyteller for a hidden-gem discovery service.

You receive structured JSON data about hidden outdoor gems: places with
strong ratings but few reviews. Analyze each gem's "reviews_content" and
transform it into an engaging recommendation.

For EACH gem, generate this JSON format:

{
    "gems": [
        {
            "placeName": "Name from input",
            "address": "Address from input",
            "map_url": "map_url from input",
            "rating": rating from input (number),
            "reviewCount": review_count from input (number),
            "analysis": {
                "whySpecial": "2-3 sentences explaining why this is a hidden gem",
                "bestTime": "Best time to visit based on reviews",
                "insiderTip": "1-2 sentences with a practical insider tip",
                "clothingRecommendation": "One sentence on what to wear, if the reviews hint at conditions"
            }
        }
    ]
}

RULES:
1. Return ONLY valid JSON - no Markdown, no extra text
2. Analyze reviews_content to generate meaningful insights
3. Keep analysis concise (2-3 sentences max for whySpecial, 1 for others)
4. Return the complete JSON starting with {"gems": [...]}`

// zeroGemsMessage is what a caller sees when the filter found nothing.
const zeroGemsMessage = "I couldn't get you this time... I searched high and low, but I couldn't " +
	"find any spots matching your strict criteria in this area. " +
	"Try searching for a broader area or a different activity!"

// Narrator produces narration text for a set of gems.
type Narrator interface {
	Narrate(ctx context.Context, query string, gems []model.EnrichedGem) (string, error)
}

type narrator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	policy    resilience.Policy
}

// New creates a narrator using the given model.
func New(client anthropic.Client, modelName string, maxTokens int64) Narrator {
	policy := resilience.NarratePolicy()
	policy.OnRetry = resilience.RetryLogger("anthropic", "narrate")
	return &narrator{
		client:    client,
		model:     modelName,
		maxTokens: maxTokens,
		policy:    policy,
	}
}

// Narrate asks the model to story-tell the gems. Returns the raw response
// text; format recovery is the caller's job.
func (n *narrator) Narrate(ctx context.Context, query string, gems []model.EnrichedGem) (string, error) {
	if len(gems) == 0 {
		return zeroGemsMessage, nil
	}

	prompt, err := buildPrompt(query, gems)
	if err != nil {
		return "", err
	}

	resp, err := resilience.DoVal(ctx, n.policy, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return n.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     n.model,
			MaxTokens: n.maxTokens,
			System:    systemPrompt,
			Messages: []anthropic.Message{
				{Role: "user", Content: prompt},
			},
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "narrate: create message")
	}

	resp.Usage.Log(n.model, "narrate")
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", eris.New("narrate: empty response from model")
	}

	zap.L().Debug("narrate: received response",
		zap.String("stop_reason", resp.StopReason),
		zap.Int("response_len", len(text)),
	)
	return text, nil
}

// buildPrompt serializes the gems into the user message.
func buildPrompt(query string, gems []model.EnrichedGem) (string, error) {
	payload, err := json.MarshalIndent(map[string]any{
		"status": "success",
		"query":  query,
		"gems":   gems,
	}, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "narrate: marshal gems")
	}
	return fmt.Sprintf("Here are the hidden gems found for the search %q:\n\n%s", query, string(payload)), nil
}
