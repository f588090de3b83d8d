package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/logging"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/repository"
	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

// ThoughtService captures thoughts and runs them through their section's
// workflow.
type ThoughtService struct {
	mu       sync.Mutex
	store    repository.Repository
	sections *SectionService
	runner   WorkflowRunner
	quick    QuickAnalyzer
	chat     ChatResponder
	logger   *logging.Logger
	now      func() time.Time
}

// NewThoughtService creates a new ThoughtService.
func NewThoughtService(store repository.Repository, sections *SectionService, runner WorkflowRunner, quick QuickAnalyzer, chat ChatResponder, logger *logging.Logger) *ThoughtService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ThoughtService{
		store:    store,
		sections: sections,
		runner:   runner,
		quick:    quick,
		chat:     chat,
		logger:   logger,
		now:      time.Now,
	}
}

// Add stores a new thought and analyzes it with the section workflow.
func (s *ThoughtService) Add(ctx context.Context, sectionID, content string) (*models.Thought, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &ValidationError{Field: "content", Message: "is required"}
	}
	section, err := s.sections.Get(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	thought := models.Thought{
		ID:        uuid.New().String(),
		Content:   content,
		SectionID: sectionID,
		Status:    models.ThoughtStatusPending,
		CreatedAt: s.now().UTC(),
	}
	err = s.mutate(ctx, sectionID, func(thoughts []models.Thought) ([]models.Thought, error) {
		return append(thoughts, thought), nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("thought added", "section_id", sectionID, "thought_id", thought.ID)

	return s.analyze(ctx, section, thought.ID, content)
}

// Analyze re-runs the section workflow for an existing thought.
func (s *ThoughtService) Analyze(ctx context.Context, sectionID, thoughtID string) (*models.Thought, error) {
	section, err := s.sections.Get(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	thought, err := s.Get(ctx, sectionID, thoughtID)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, section, thoughtID, thought.Content)
}

// Retry clears a previous analysis, marks the thought as analyzing and runs
// the workflow again.
func (s *ThoughtService) Retry(ctx context.Context, sectionID, thoughtID string) (*models.Thought, error) {
	section, err := s.sections.Get(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	var content string
	err = s.update(ctx, sectionID, thoughtID, func(t *models.Thought) {
		t.Status = models.ThoughtStatusAnalyzing
		t.AIAnalysis = nil
		content = t.Content
	})
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, section, thoughtID, content)
}

// Edit changes a thought's content and re-analyzes it.
func (s *ThoughtService) Edit(ctx context.Context, sectionID, thoughtID, content string) (*models.Thought, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &ValidationError{Field: "content", Message: "is required"}
	}
	section, err := s.sections.Get(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	err = s.update(ctx, sectionID, thoughtID, func(t *models.Thought) {
		t.Content = content
		t.Status = models.ThoughtStatusAnalyzing
		t.AIAnalysis = nil
		t.Ranking = nil
		t.Insights = nil
	})
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, section, thoughtID, content)
}

// Delete removes a thought.
func (s *ThoughtService) Delete(ctx context.Context, sectionID, thoughtID string) error {
	return s.mutate(ctx, sectionID, func(thoughts []models.Thought) ([]models.Thought, error) {
		for i := range thoughts {
			if thoughts[i].ID == thoughtID {
				return append(thoughts[:i], thoughts[i+1:]...), nil
			}
		}
		return nil, notFound("thought", thoughtID)
	})
}

// Get returns one thought.
func (s *ThoughtService) Get(ctx context.Context, sectionID, thoughtID string) (*models.Thought, error) {
	thoughts, err := s.store.LoadThoughts(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	for i := range thoughts {
		if thoughts[i].ID == thoughtID {
			return &thoughts[i], nil
		}
	}
	return nil, notFound("thought", thoughtID)
}

// List returns the thoughts of a section ordered by sortBy. A limit of zero
// or less returns everything.
func (s *ThoughtService) List(ctx context.Context, sectionID string, sortBy models.SortOption, limit int) ([]models.Thought, error) {
	if sortBy == "" {
		sortBy = models.SortByDate
	}
	if !sortBy.Valid() {
		return nil, &ValidationError{Field: "sort", Message: "unknown sort option " + string(sortBy)}
	}
	if _, err := s.sections.Get(ctx, sectionID); err != nil {
		return nil, err
	}
	thoughts, err := s.store.LoadThoughts(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	SortThoughts(thoughts, sortBy)
	if limit > 0 && len(thoughts) > limit {
		thoughts = thoughts[:limit]
	}
	return thoughts, nil
}

// SortThoughts orders thoughts in place. Dates sort newest first and scores
// highest first; unranked thoughts count as zero.
func SortThoughts(thoughts []models.Thought, sortBy models.SortOption) {
	key := func(t models.Thought) int {
		if t.Ranking == nil {
			return 0
		}
		switch sortBy {
		case models.SortByMarketImpact:
			return t.Ranking.MarketImpact
		case models.SortByViability:
			return t.Ranking.Viability
		default:
			return t.Ranking.TotalScore()
		}
	}
	sort.SliceStable(thoughts, func(i, j int) bool {
		if sortBy == models.SortByDate {
			return thoughts[i].CreatedAt.After(thoughts[j].CreatedAt)
		}
		return key(thoughts[i]) > key(thoughts[j])
	})
}

// Rank runs the quick analysis and stores its scores on the thought.
func (s *ThoughtService) Rank(ctx context.Context, sectionID, thoughtID string) (*models.Thought, error) {
	thought, err := s.Get(ctx, sectionID, thoughtID)
	if err != nil {
		return nil, err
	}
	insights := s.quick.Analyze(ctx, thought.Content)

	var out models.Thought
	err = s.update(ctx, sectionID, thoughtID, func(t *models.Thought) {
		ranking := insights.Ranking
		t.Ranking = &ranking
		t.Insights = &insights
		out = *t
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("thought ranked", "thought_id", thoughtID,
		"market_impact", insights.Ranking.MarketImpact, "viability", insights.Ranking.Viability)
	return &out, nil
}

// Chat appends message to the thought's conversation, asks for a reply and
// returns the assistant message.
func (s *ThoughtService) Chat(ctx context.Context, sectionID, thoughtID, message string) (*models.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, &ValidationError{Field: "message", Message: "is required"}
	}
	section, err := s.sections.Get(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	thought, err := s.Get(ctx, sectionID, thoughtID)
	if err != nil {
		return nil, err
	}

	userMsg := models.ChatMessage{
		ID:        uuid.New().String(),
		Role:      models.ChatRoleUser,
		Content:   message,
		Timestamp: s.now().UTC(),
	}
	history := append(append([]models.ChatMessage{}, thought.ChatHistory...), userMsg)
	reply := s.chat.Reply(ctx, history, ChatContext(section, thought))

	assistantMsg := models.ChatMessage{
		ID:        uuid.New().String(),
		Role:      models.ChatRoleAssistant,
		Content:   reply,
		Timestamp: s.now().UTC(),
	}
	err = s.update(ctx, sectionID, thoughtID, func(t *models.Thought) {
		t.ChatHistory = append(t.ChatHistory, userMsg, assistantMsg)
	})
	if err != nil {
		return nil, err
	}
	return &assistantMsg, nil
}

// ClearChat drops a thought's conversation.
func (s *ThoughtService) ClearChat(ctx context.Context, sectionID, thoughtID string) error {
	return s.update(ctx, sectionID, thoughtID, func(t *models.Thought) {
		t.ChatHistory = nil
	})
}

// ChatContext collects what is known about a thought for a chat about it.
// Only successful workflow steps are included, labelled by step name.
func ChatContext(section *models.Section, thought *models.Thought) *models.ThoughtChatContext {
	cc := &models.ThoughtChatContext{ThoughtContent: thought.Content, Ranking: thought.Ranking}
	if in := thought.Insights; in != nil {
		cc.Enhancement = in.Enhancement
		cc.MarketResearch = in.MarketResearch
		cc.BusinessCase = in.BusinessCase
	}
	if thought.AIAnalysis == nil {
		return cc
	}
	names := make(map[string]string, len(section.Workflow))
	for _, step := range section.Workflow {
		names[step.ID] = step.Name
	}
	for _, r := range thought.AIAnalysis.Steps {
		if r.Failed() || r.Content == "" {
			continue
		}
		name := names[r.StepID]
		if name == "" {
			name = r.StepID
		}
		cc.Analysis = append(cc.Analysis, models.NamedContent{Name: name, Content: r.Content})
	}
	return cc
}

// analyze runs the workflow outside the lock and stores the outcome. A run
// that aborts marks the thought as errored and returns the error.
func (s *ThoughtService) analyze(ctx context.Context, section *models.Section, thoughtID, content string) (*models.Thought, error) {
	start := s.now()
	result, runErr := s.runner.Run(ctx, content, section.Workflow)

	var out models.Thought
	err := s.update(ctx, section.ID, thoughtID, func(t *models.Thought) {
		if runErr != nil {
			t.Status = models.ThoughtStatusError
		} else {
			analysis := result
			t.Status = models.ThoughtStatusCompleted
			t.AIAnalysis = &analysis
		}
		out = *t
	})
	if err != nil {
		return nil, err
	}
	if runErr != nil {
		s.logger.Error("workflow run failed", "thought_id", thoughtID, "error", runErr)
		return &out, runErr
	}
	s.logger.Info("thought analyzed", "thought_id", thoughtID, "steps", len(result.Steps),
		"duration", s.now().Sub(start).String())
	return &out, nil
}

// update applies fn to one thought and stamps UpdatedAt.
func (s *ThoughtService) update(ctx context.Context, sectionID, thoughtID string, fn func(*models.Thought)) error {
	return s.mutate(ctx, sectionID, func(thoughts []models.Thought) ([]models.Thought, error) {
		for i := range thoughts {
			if thoughts[i].ID == thoughtID {
				now := s.now().UTC()
				thoughts[i].UpdatedAt = &now
				fn(&thoughts[i])
				return thoughts, nil
			}
		}
		return nil, notFound("thought", thoughtID)
	})
}

// mutate is a locked load-modify-save of a section's thoughts.
func (s *ThoughtService) mutate(ctx context.Context, sectionID string, fn func([]models.Thought) ([]models.Thought, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	thoughts, err := s.store.LoadThoughts(ctx, sectionID)
	if err != nil {
		return err
	}
	thoughts, err = fn(thoughts)
	if err != nil {
		return err
	}
	return s.store.SaveThoughts(ctx, sectionID, thoughts)
}
