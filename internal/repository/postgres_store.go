package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS sections (
	id         TEXT PRIMARY KEY,
	position   INT NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS thoughts (
	section_id TEXT NOT NULL,
	id         TEXT NOT NULL,
	position   INT NOT NULL,
	status     TEXT NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (section_id, id)
);
CREATE INDEX IF NOT EXISTS thoughts_section_position_idx ON thoughts (section_id, position);
`

// PostgresStore is a PostgreSQL implementation of Repository. Each record is
// kept as a JSONB document next to the columns used for ordering.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// LoadSections returns all sections.
func (s *PostgresStore) LoadSections(ctx context.Context) ([]models.Section, error) {
	rows, err := s.db.Query(ctx, "SELECT data FROM sections ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := []models.Section{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var section models.Section
		if err := json.Unmarshal(data, &section); err != nil {
			return nil, fmt.Errorf("failed to decode section: %w", err)
		}
		sections = append(sections, section)
	}
	return sections, rows.Err()
}

// SaveSections replaces all sections in one transaction.
func (s *PostgresStore) SaveSections(ctx context.Context, sections []models.Section) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM sections"); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for i, section := range sections {
			data, err := json.Marshal(section)
			if err != nil {
				return err
			}
			batch.Queue("INSERT INTO sections (id, position, data) VALUES ($1, $2, $3)", section.ID, i, data)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// LoadThoughts returns the thoughts of a section.
func (s *PostgresStore) LoadThoughts(ctx context.Context, sectionID string) ([]models.Thought, error) {
	rows, err := s.db.Query(ctx, "SELECT data FROM thoughts WHERE section_id = $1 ORDER BY position", sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	thoughts := []models.Thought{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var thought models.Thought
		if err := json.Unmarshal(data, &thought); err != nil {
			return nil, fmt.Errorf("failed to decode thought: %w", err)
		}
		thoughts = append(thoughts, thought)
	}
	return thoughts, rows.Err()
}

// SaveThoughts replaces the thoughts of a section in one transaction.
func (s *PostgresStore) SaveThoughts(ctx context.Context, sectionID string, thoughts []models.Thought) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM thoughts WHERE section_id = $1", sectionID); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for i, thought := range thoughts {
			data, err := json.Marshal(thought)
			if err != nil {
				return err
			}
			batch.Queue("INSERT INTO thoughts (section_id, id, position, status, data) VALUES ($1, $2, $3, $4, $5)",
				sectionID, thought.ID, i, string(thought.Status), data)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// DeleteThoughts removes every thought of a section.
func (s *PostgresStore) DeleteThoughts(ctx context.Context, sectionID string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM thoughts WHERE section_id = $1", sectionID)
	return err
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
