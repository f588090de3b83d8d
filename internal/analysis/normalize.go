package analysis

import (
	"strings"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
)

// NormalizeText returns the free-text content of a provider response.
// Adapters decode choices[0].message.content and the local response field
// into Response.Text before tagging, so each kind only needs trimming here.
func NormalizeText(resp llm.Response) string {
	switch resp.Kind {
	case llm.KindChat:
		return strings.TrimSpace(resp.Text)
	case llm.KindLocal:
		return strings.TrimSpace(resp.Text)
	default:
		// Zero Response from a failed call.
		return strings.TrimSpace(resp.Text)
	}
}

// NormalizeRanking extracts the scored ranking from a provider response.
func NormalizeRanking(resp llm.Response) RankingResult {
	return ExtractRankingDetailed(NormalizeText(resp))
}
