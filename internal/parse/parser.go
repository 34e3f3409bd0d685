// Package parse recovers structured gems from narration output. Models are
// asked for JSON but return fenced blocks, prose-wrapped objects, or plain
// markdown often enough that extraction runs as a strategy chain, most
// trusted first.
package parse

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/trailgems/discovery-cli/internal/model"
	"github.com/trailgems/discovery-cli/internal/weather"
)

// Placeholder values for gems missing a field after extraction.
const (
	defaultWhySpecial = "A hidden gem worth exploring"
	defaultBestTime   = "Check local hours"
	defaultInsiderTip = "Visit during off-peak hours for the best experience"
	defaultAddress    = "Address not available"
)

// placeholderPhoto fills the photo strip when the provider gives us nothing
// visual to show.
const placeholderPhoto = "https://images.unsplash.com/photo-1559827260-dc66d52bef19?w=800"

// gemsPayload is the JSON shape the narration prompt asks for.
type gemsPayload struct {
	Gems []model.PresentedGem `json:"gems"`
}

var (
	fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	gemsKey     = regexp.MustCompile(`\{\s*"gems"`)

	mdHeading = regexp.MustCompile(`^(?:#{1,4}\s*(?:\d+\.\s*)?|\*\*\d+\.\s*|\d+\.\s+\*\*)(.+?)(?:\*\*)?\s*$`)
	mdFloat   = regexp.MustCompile(`\d+(?:\.\d+)?`)
	mdInt     = regexp.MustCompile(`\d+`)
)

// Parse extracts gems from raw narration output. Strategies run in order of
// trust: fenced JSON, a "gems" object embedded in prose, an outermost brace
// scan, then markdown recovery. Extraction never fails; text that yields no
// gems produces an empty slice.
func Parse(raw string) []model.PresentedGem {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	type strategy struct {
		name string
		fn   func(string) []model.PresentedGem
	}
	strategies := []strategy{
		{"fenced_json", parseFencedJSON},
		{"gems_object", parseGemsObject},
		{"brace_scan", parseBraceScan},
		{"markdown", parseMarkdown},
	}

	for _, s := range strategies {
		gems := s.fn(raw)
		if len(gems) == 0 {
			continue
		}
		zap.L().Info("parse: extracted gems",
			zap.String("strategy", s.name),
			zap.Int("gems", len(gems)),
		)
		for i := range gems {
			normalize(&gems[i])
		}
		return gems
	}

	zap.L().Warn("parse: no gems recoverable from response",
		zap.Int("response_len", len(raw)),
	)
	return nil
}

// parseFencedJSON pulls the first fenced code block and decodes it.
func parseFencedJSON(raw string) []model.PresentedGem {
	m := fencedBlock.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	return decodeGems(m[1])
}

// parseGemsObject locates a {"gems": ...} object anywhere in the text and
// decodes the balanced braces from there.
func parseGemsObject(raw string) []model.PresentedGem {
	loc := gemsKey.FindStringIndex(raw)
	if loc == nil {
		return nil
	}
	obj := balancedBraces(raw[loc[0]:])
	if obj == "" {
		return nil
	}
	return decodeGems(obj)
}

// parseBraceScan takes everything between the first { and the last } and
// hopes for the best.
func parseBraceScan(raw string) []model.PresentedGem {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil
	}
	return decodeGems(raw[start : end+1])
}

// decodeGems unmarshals a candidate JSON snippet into the gems payload.
// Accepts either the wrapped object or a bare array.
func decodeGems(snippet string) []model.PresentedGem {
	snippet = strings.TrimSpace(snippet)

	var payload gemsPayload
	if err := json.Unmarshal([]byte(snippet), &payload); err == nil && len(payload.Gems) > 0 {
		return payload.Gems
	}

	var bare []model.PresentedGem
	if err := json.Unmarshal([]byte(snippet), &bare); err == nil && len(bare) > 0 {
		return bare
	}
	return nil
}

// balancedBraces returns the prefix of s covering the first balanced { } run.
// Quote and escape state is tracked so braces inside strings don't count.
func balancedBraces(s string) string {
	depth := 0
	inString := false
	escaped := false
	for i, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[:i+1]
				}
			}
		}
	}
	return ""
}

// parseMarkdown recovers gems from a prose listing. Headings open a gem;
// marker lines fill in fields.
func parseMarkdown(raw string) []model.PresentedGem {
	var gems []model.PresentedGem
	var current *model.PresentedGem

	flush := func() {
		if current == nil {
			return
		}
		gems = append(gems, *current)
		current = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := mdHeading.FindStringSubmatch(line); m != nil && !strings.ContainsAny(line, "⭐👤📍💡") {
			name := strings.Trim(strings.TrimSpace(m[1]), "*")
			if name != "" {
				flush()
				current = &model.PresentedGem{PlaceName: name}
			}
			continue
		}
		if current == nil {
			continue
		}

		switch {
		case strings.Contains(line, "⭐"):
			if v := mdFloat.FindString(line); v != "" {
				current.Rating, _ = strconv.ParseFloat(v, 64)
			}
		case strings.Contains(line, "👤"):
			if v := mdInt.FindString(line); v != "" {
				current.ReviewCount, _ = strconv.Atoi(v)
			}
		case strings.Contains(line, "📍"):
			current.Address = markerText(line, "📍")
		case strings.Contains(line, "Why it's a Hidden Gem:"):
			current.Analysis.WhySpecial = markerText(line, "Why it's a Hidden Gem:")
		case strings.Contains(line, "💡 Insider Tip:"):
			current.Analysis.InsiderTip = markerText(line, "💡 Insider Tip:")
		case strings.Contains(line, "Best Time:"):
			current.Analysis.BestTime = markerText(line, "Best Time:")
		}
	}
	flush()

	return gems
}

// markerText returns the trimmed text after the marker, with markdown bold
// stripped. A "Location:" label after the pin marker is dropped too.
func markerText(line, marker string) string {
	idx := strings.Index(line, marker)
	text := line[idx+len(marker):]
	text = strings.ReplaceAll(text, "**", "")
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "Location:")
	return strings.TrimSpace(text)
}

// PresentWithoutAnalysis converts enriched gems straight to the presented
// shape with placeholder insights. Used when narration is unusable so a
// degraded result still reaches the caller.
func PresentWithoutAnalysis(gems []model.EnrichedGem) []model.PresentedGem {
	out := make([]model.PresentedGem, 0, len(gems))
	for _, g := range gems {
		p := model.PresentedGem{
			PlaceName:   g.Name,
			Address:     g.Address,
			Rating:      g.Rating,
			ReviewCount: g.ReviewCount,
			MapURL:      g.MapURL,
		}
		normalize(&p)
		out = append(out, p)
	}
	return out
}

// normalize fills placeholders for missing fields and derives coordinates
// and photos from the map URL.
func normalize(gem *model.PresentedGem) {
	if gem.Address == "" {
		gem.Address = defaultAddress
	}
	if gem.Analysis.WhySpecial == "" {
		gem.Analysis.WhySpecial = defaultWhySpecial
	}
	if gem.Analysis.BestTime == "" {
		gem.Analysis.BestTime = defaultBestTime
	}
	if gem.Analysis.InsiderTip == "" {
		gem.Analysis.InsiderTip = defaultInsiderTip
	}
	if gem.Coordinates == nil && gem.MapURL != "" {
		gem.Coordinates = weather.ExtractCoordinates(gem.MapURL)
	}
	if len(gem.Photos) == 0 {
		if gem.MapURL != "" {
			gem.Photos = append(gem.Photos, gem.MapURL)
		}
		gem.Photos = append(gem.Photos, placeholderPhoto)
	}
}
