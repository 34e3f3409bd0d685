package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailgems/discovery-cli/internal/model"
)

const gemsJSON = `{
  "gems": [
    {
      "placeName": "Fern Hollow Falls",
      "address": "Fern Hollow Rd, Portland, OR",
      "rating": 4.6,
      "reviewCount": 23,
      "map_url": "https://maps.google.com/?q=45.5231,-122.6765",
      "analysis": {
        "whySpecial": "A mossy cascade most hikers walk right past",
        "bestTime": "Early morning after rain",
        "insiderTip": "Park at the lower lot and take the unmarked spur",
        "clothingRecommendation": "Waterproof boots"
      }
    }
  ]
}`

func TestParse_FencedJSON(t *testing.T) {
	raw := "Here are your hidden gems!\n```json\n" + gemsJSON + "\n```\nEnjoy!"

	gems := Parse(raw)

	require.Len(t, gems, 1)
	g := gems[0]
	assert.Equal(t, "Fern Hollow Falls", g.PlaceName)
	assert.Equal(t, "Fern Hollow Rd, Portland, OR", g.Address)
	assert.Equal(t, 4.6, g.Rating)
	assert.Equal(t, 23, g.ReviewCount)
	assert.Equal(t, "A mossy cascade most hikers walk right past", g.Analysis.WhySpecial)
	assert.Equal(t, "Waterproof boots", g.Analysis.ClothingRecommendation)
}

func TestParse_FencedWithoutLanguageTag(t *testing.T) {
	raw := "```\n" + gemsJSON + "\n```"
	gems := Parse(raw)
	require.Len(t, gems, 1)
	assert.Equal(t, "Fern Hollow Falls", gems[0].PlaceName)
}

func TestParse_BareJSON(t *testing.T) {
	gems := Parse(gemsJSON)
	require.Len(t, gems, 1)
	assert.Equal(t, "Fern Hollow Falls", gems[0].PlaceName)
}

func TestParse_GemsObjectEmbeddedInProse(t *testing.T) {
	raw := "I found some wonderful spots for you. " + gemsJSON + " Let me know if you want more!"
	gems := Parse(raw)
	require.Len(t, gems, 1)
	assert.Equal(t, "Fern Hollow Falls", gems[0].PlaceName)
}

func TestParse_BracesInsideStringsDoNotConfuseScan(t *testing.T) {
	raw := `Note: {"gems": [{"placeName": "Brace {Canyon}", "rating": 4.5, "reviewCount": 12, "analysis": {"whySpecial": "s", "bestTime": "t", "insiderTip": "i"}}]}`
	gems := Parse(raw)
	require.Len(t, gems, 1)
	assert.Equal(t, "Brace {Canyon}", gems[0].PlaceName)
}

func TestParse_MarkdownFallback(t *testing.T) {
	raw := `Here are three hidden gems I found for you!

### 1. Fern Hollow Falls
⭐ 4.6 rating
👤 23 reviews
📍 Location: Fern Hollow Rd, Portland, OR
**Why it's a Hidden Gem:** A mossy cascade most hikers walk right past.
💡 Insider Tip: Park at the lower lot and take the unmarked spur.

### 2. Basalt Pools
⭐ 4.2
👤 18 reviews
`

	gems := Parse(raw)

	require.Len(t, gems, 2)
	assert.Equal(t, "Fern Hollow Falls", gems[0].PlaceName)
	assert.Equal(t, 4.6, gems[0].Rating)
	assert.Equal(t, 23, gems[0].ReviewCount)
	assert.Equal(t, "Fern Hollow Rd, Portland, OR", gems[0].Address)
	assert.Equal(t, "A mossy cascade most hikers walk right past.", gems[0].Analysis.WhySpecial)
	assert.Equal(t, "Park at the lower lot and take the unmarked spur.", gems[0].Analysis.InsiderTip)

	// Missing fields fall back to placeholders.
	assert.Equal(t, "Basalt Pools", gems[1].PlaceName)
	assert.Equal(t, "Address not available", gems[1].Address)
	assert.Equal(t, "A hidden gem worth exploring", gems[1].Analysis.WhySpecial)
	assert.Equal(t, "Check local hours", gems[1].Analysis.BestTime)
	assert.Equal(t, "Visit during off-peak hours for the best experience", gems[1].Analysis.InsiderTip)
}

func TestParse_ProseWithNoGems(t *testing.T) {
	gems := Parse("I'm sorry, I couldn't find any hidden gems matching your search. Try widening the area!")
	assert.Empty(t, gems)
}

func TestParse_EmptyInput(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("   \n  "))
}

func TestParse_NormalizeDerivesCoordinatesAndPhotos(t *testing.T) {
	gems := Parse(gemsJSON)

	require.Len(t, gems, 1)
	g := gems[0]
	require.NotNil(t, g.Coordinates)
	assert.InDelta(t, 45.5231, g.Coordinates.Lat, 0.0001)
	assert.InDelta(t, -122.6765, g.Coordinates.Lng, 0.0001)
	require.Len(t, g.Photos, 2)
	assert.Equal(t, g.MapURL, g.Photos[0])
	assert.Equal(t, placeholderPhoto, g.Photos[1])
}

func TestPresentWithoutAnalysis(t *testing.T) {
	enriched := []model.EnrichedGem{
		{
			Name:        "Fern Hollow Falls",
			Address:     "Fern Hollow Rd, Portland, OR",
			Rating:      4.6,
			ReviewCount: 23,
			MapURL:      "https://maps.google.com/?q=45.5231,-122.6765",
		},
		{Name: "Basalt Pools", Rating: 4.2, ReviewCount: 18},
	}

	gems := PresentWithoutAnalysis(enriched)

	require.Len(t, gems, 2)
	assert.Equal(t, "Fern Hollow Falls", gems[0].PlaceName)
	assert.Equal(t, "Fern Hollow Rd, Portland, OR", gems[0].Address)
	assert.Equal(t, defaultWhySpecial, gems[0].Analysis.WhySpecial)
	require.NotNil(t, gems[0].Coordinates)
	require.Len(t, gems[0].Photos, 2)

	assert.Equal(t, defaultAddress, gems[1].Address)
	assert.Nil(t, gems[1].Coordinates)
	require.Len(t, gems[1].Photos, 1)
	assert.Equal(t, placeholderPhoto, gems[1].Photos[0])
}

func TestParse_EmptyGemsArrayFallsThrough(t *testing.T) {
	// An explicit empty gems array is a valid "nothing found" answer.
	gems := Parse(`{"gems": []}`)
	assert.Empty(t, gems)
}
