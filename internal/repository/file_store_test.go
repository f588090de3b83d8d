package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

var created = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sampleSection(id string) models.Section {
	tmpl, _ := models.TemplateByID("thought-analysis")
	return models.Section{ID: id, Name: "Ideas", Workflow: tmpl.Steps, CreatedAt: created, UpdatedAt: created}
}

func sampleThoughts(sectionID string) []models.Thought {
	return []models.Thought{
		{ID: "t1", Content: "podcast search", SectionID: sectionID, Status: models.ThoughtStatusPending, CreatedAt: created},
		{
			ID: "t2", Content: "recipe planner", SectionID: sectionID, Status: models.ThoughtStatusCompleted, CreatedAt: created,
			AIAnalysis: &models.ThoughtAnalysis{Status: models.AnalysisStatusCompleted, Steps: []models.StepResult{{StepID: "step1", Content: "more"}}},
			Ranking:    &models.Ranking{MarketImpact: 7, Viability: 4},
		},
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		sections, err := store.LoadSections(ctx)
		require.NoError(t, err)
		assert.Empty(t, sections)
		assert.NotNil(t, sections)

		thoughts, err := store.LoadThoughts(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, thoughts)
	})

	t.Run("sections round trip", func(t *testing.T) {
		want := []models.Section{sampleSection("s1"), sampleSection("s2")}
		require.NoError(t, store.SaveSections(ctx, want))

		got, err := store.LoadSections(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.FileExists(t, filepath.Join(dir, "sections.json"))
	})

	t.Run("thoughts per section", func(t *testing.T) {
		want := sampleThoughts("s1")
		require.NoError(t, store.SaveThoughts(ctx, "s1", want))

		got, err := store.LoadThoughts(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.FileExists(t, filepath.Join(dir, "thoughts_s1.json"))

		other, err := store.LoadThoughts(ctx, "s2")
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteThoughts(ctx, "s1"))
		require.NoError(t, store.DeleteThoughts(ctx, "s1"))
		got, err := store.LoadThoughts(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("rejects path ids", func(t *testing.T) {
		_, err := store.LoadThoughts(ctx, "../etc")
		assert.Error(t, err)
		assert.Error(t, store.SaveThoughts(ctx, "", nil))
	})

	t.Run("corrupt file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "thoughts_bad.json"), []byte("{not json"), 0o644))
		_, err := store.LoadThoughts(ctx, "bad")
		assert.Error(t, err)
	})

	assert.NoError(t, store.Ping(ctx))
}
