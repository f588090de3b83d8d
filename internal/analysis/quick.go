package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/logging"
	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

const toolPreamble = "This tool is used by developers to dump all their new business ideas and AI generates enhancements and business cases."

var (
	enhancementPrompt    = "You are an AI thought enhancer as a part of a thought organizer tool. " + toolPreamble + " Provide a thoughtful enhancement to the following thought."
	marketResearchPrompt = "You are an AI Market Researcher as a part of a thought organizer tool. " + toolPreamble + " Provide market research insights for the following thought."
	businessCasePrompt   = "You are an AI Business Case Designer as a part of a thought organizer tool. " + toolPreamble + " Develop a comprehensive business case for the following thought, including potential revenue streams, target market, competitive landscape, and key value propositions."
	rankingPrompt        = `Provide market impact and viability scores (0-10). Respond with a description that includes the scores, like: "Market Impact: X/10, Viability: Y/10"`
)

// QuickAnalyzer runs the fixed four-part analysis of a thought. The parts do
// not depend on each other and are requested concurrently.
type QuickAnalyzer struct {
	gen    Generator
	logger *logging.Logger
}

// NewQuickAnalyzer creates a QuickAnalyzer.
func NewQuickAnalyzer(gen Generator, logger *logging.Logger) *QuickAnalyzer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &QuickAnalyzer{gen: gen, logger: logger}
}

// Analyze returns the enhancement, market research, business case and
// ranking for content. A failed part is left empty; a failed ranking
// defaults to the midpoint.
func (q *QuickAnalyzer) Analyze(ctx context.Context, content string) models.AIResponse {
	parts := []struct {
		name   string
		system string
	}{
		{"enhancement", enhancementPrompt},
		{"marketResearch", marketResearchPrompt},
		{"businessCase", businessCasePrompt},
		{"ranking", rankingPrompt},
	}
	// A failed part keeps the zero Response, which normalizes to "" and the
	// midpoint ranking.
	responses := make([]llm.Response, len(parts))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range parts {
		g.Go(func() error {
			resp, err := q.gen.GenerateWithFallback(gctx, llm.Request{Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: p.system},
				{Role: llm.RoleUser, Content: content},
			}}, nil)
			if err != nil {
				q.logger.Warn("quick analysis part failed", "part", p.name, "error", err)
				return nil
			}
			responses[i] = resp
			return nil
		})
	}
	_ = g.Wait()

	scored := NormalizeRanking(responses[3])
	q.logger.Debug("quick analysis ranked",
		"market_impact", scored.MarketImpact, "market_impact_source", scored.MarketImpactSource,
		"viability", scored.Viability, "viability_source", scored.ViabilitySource)

	return models.AIResponse{
		Enhancement:    NormalizeText(responses[0]),
		MarketResearch: NormalizeText(responses[1]),
		BusinessCase:   NormalizeText(responses[2]),
		Ranking:        scored.Ranking,
	}
}
