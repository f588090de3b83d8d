package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("thoughts"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	store := NewPostgresStore(pool)
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.Ping(ctx))

	t.Run("Sections", func(t *testing.T) {
		empty, err := store.LoadSections(ctx)
		require.NoError(t, err)
		assert.Empty(t, empty)

		want := []models.Section{sampleSection("b"), sampleSection("a")}
		require.NoError(t, store.SaveSections(ctx, want))
		got, err := store.LoadSections(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		require.NoError(t, store.SaveSections(ctx, want[:1]))
		got, err = store.LoadSections(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("Thoughts", func(t *testing.T) {
		want := sampleThoughts("s1")
		require.NoError(t, store.SaveThoughts(ctx, "s1", want))
		require.NoError(t, store.SaveThoughts(ctx, "s2", want[:1]))

		got, err := store.LoadThoughts(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, want, got)

		require.NoError(t, store.DeleteThoughts(ctx, "s1"))
		got, err = store.LoadThoughts(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = store.LoadThoughts(ctx, "s2")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
