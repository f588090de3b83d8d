package analysis

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

const (
	minScore     = 0
	maxScore     = 10
	defaultScore = 5
)

var (
	marketImpactPattern = regexp.MustCompile(`(?i)market\s*impact.*?(\d+)`)
	viabilityPattern    = regexp.MustCompile(`(?i)viability.*?(\d+)`)
	jsonFencePattern    = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n\\s*```")
	jsonObjectPattern   = regexp.MustCompile(`(?s)\{.*\}`)
)

// ScoreSource records how a score was obtained.
type ScoreSource string

const (
	SourceJSON    ScoreSource = "json"
	SourceText    ScoreSource = "text"
	SourceDefault ScoreSource = "default"
)

// RankingResult is a ranking plus where each score came from.
type RankingResult struct {
	models.Ranking
	MarketImpactSource ScoreSource
	ViabilitySource    ScoreSource
}

// ExtractRanking reads market impact and viability scores from a model
// response. JSON is tried first, then "market impact ... N" style text, then
// the midpoint. Scores are clamped to [0, 10].
func ExtractRanking(text string) models.Ranking {
	return ExtractRankingDetailed(text).Ranking
}

// ExtractRankingDetailed is ExtractRanking with the source of each score.
func ExtractRankingDetailed(text string) RankingResult {
	obj := parseJSONObject(text)

	mi, miSrc := score(obj, "marketImpact", marketImpactPattern, text)
	v, vSrc := score(obj, "viability", viabilityPattern, text)

	return RankingResult{
		Ranking:            models.Ranking{MarketImpact: mi, Viability: v},
		MarketImpactSource: miSrc,
		ViabilitySource:    vSrc,
	}
}

func score(obj map[string]any, key string, pattern *regexp.Regexp, text string) (int, ScoreSource) {
	if n, ok := jsonNumber(obj, key); ok {
		return clamp(n), SourceJSON
	}
	if m := pattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return clamp(n), SourceText
		}
		// Too many digits for an int is still far above the range.
		return maxScore, SourceText
	}
	return defaultScore, SourceDefault
}

func clamp(n int) int {
	if n < minScore {
		return minScore
	}
	if n > maxScore {
		return maxScore
	}
	return n
}

// parseJSONObject finds a JSON object in text: the whole text, a ```json
// fenced block, or the outermost braces.
func parseJSONObject(text string) map[string]any {
	candidates := []string{strings.TrimSpace(text)}
	if m := jsonFencePattern.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, m[1])
	}
	if m := jsonObjectPattern.FindString(text); m != "" {
		candidates = append(candidates, m)
	}
	for _, c := range candidates {
		var obj map[string]any
		if err := json.Unmarshal([]byte(c), &obj); err == nil {
			return obj
		}
	}
	return nil
}

func jsonNumber(obj map[string]any, key string) (int, bool) {
	raw, ok := obj[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		if v > maxScore {
			return maxScore, true
		}
		if v < minScore {
			return minScore, true
		}
		return int(math.Round(v)), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return jsonNumber(map[string]any{key: f}, key)
	default:
		return 0, false
	}
}
