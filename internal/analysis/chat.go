package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/llm"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/logging"
	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

const (
	ChatErrorReply = "I apologize, but I encountered an error processing your request."
	ChatEmptyReply = "I apologize, but I encountered an unexpected response format."
)

// Chat answers follow-up questions about a thought.
type Chat struct {
	gen    Generator
	logger *logging.Logger
}

// NewChat creates a Chat.
func NewChat(gen Generator, logger *logging.Logger) *Chat {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Chat{gen: gen, logger: logger}
}

// Reply generates the assistant's answer to the last message in history.
// Failures are reported as an apology rather than an error so the
// conversation can continue.
func (c *Chat) Reply(ctx context.Context, history []models.ChatMessage, thought *models.ThoughtChatContext) string {
	if len(history) == 0 {
		return ChatEmptyReply
	}
	resp, err := c.gen.GenerateWithFallback(ctx, llm.Request{Messages: BuildChatMessages(history, thought)}, nil)
	if err != nil {
		c.logger.Warn("chat completion failed", "error", err)
		return ChatErrorReply
	}
	text := NormalizeText(resp)
	if text == "" {
		return ChatEmptyReply
	}
	return text
}

// BuildChatMessages prefixes the history with a system message describing
// the thought, when one is given.
func BuildChatMessages(history []models.ChatMessage, thought *models.ThoughtChatContext) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+1)
	if thought != nil {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: contextMessage(thought)})
	}
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	return msgs
}

func contextMessage(t *models.ThoughtChatContext) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful AI assistant. Consider the following context for this conversation, but make sure to directly address the user's latest question:\n\n")
	sb.WriteString("Context:\n")
	sb.WriteString("Original Thought: " + t.ThoughtContent)
	line := func(label, value string) {
		if value != "" {
			sb.WriteString("\n" + label + ": " + value)
		}
	}
	line("Enhancement", t.Enhancement)
	line("Market Research", t.MarketResearch)
	line("Business Case", t.BusinessCase)
	for _, a := range t.Analysis {
		line(a.Name, a.Content)
	}
	if t.Ranking != nil {
		line("Ranking", fmt.Sprintf("Market Impact: %d/10, Viability: %d/10", t.Ranking.MarketImpact, t.Ranking.Viability))
	}
	return sb.String()
}
