package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

const sectionsFile = "sections.json"

// FileStore keeps sections and thoughts as JSON files in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func thoughtsFile(sectionID string) (string, error) {
	if sectionID == "" || strings.ContainsAny(sectionID, `/\`) || sectionID == "." || sectionID == ".." {
		return "", fmt.Errorf("invalid section id %q", sectionID)
	}
	return "thoughts_" + sectionID + ".json", nil
}

// LoadSections returns all sections.
func (s *FileStore) LoadSections(ctx context.Context) ([]models.Section, error) {
	var sections []models.Section
	if err := s.read(sectionsFile, &sections); err != nil {
		return nil, err
	}
	if sections == nil {
		sections = []models.Section{}
	}
	return sections, nil
}

// SaveSections replaces the stored sections.
func (s *FileStore) SaveSections(ctx context.Context, sections []models.Section) error {
	if sections == nil {
		sections = []models.Section{}
	}
	return s.write(sectionsFile, sections)
}

// LoadThoughts returns the thoughts of a section.
func (s *FileStore) LoadThoughts(ctx context.Context, sectionID string) ([]models.Thought, error) {
	name, err := thoughtsFile(sectionID)
	if err != nil {
		return nil, err
	}
	var thoughts []models.Thought
	if err := s.read(name, &thoughts); err != nil {
		return nil, err
	}
	if thoughts == nil {
		thoughts = []models.Thought{}
	}
	return thoughts, nil
}

// SaveThoughts replaces the thoughts of a section.
func (s *FileStore) SaveThoughts(ctx context.Context, sectionID string, thoughts []models.Thought) error {
	name, err := thoughtsFile(sectionID)
	if err != nil {
		return err
	}
	if thoughts == nil {
		thoughts = []models.Thought{}
	}
	return s.write(name, thoughts)
}

// DeleteThoughts removes the thoughts file of a section.
func (s *FileStore) DeleteThoughts(ctx context.Context, sectionID string) error {
	name, err := thoughtsFile(sectionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Ping checks that the data directory is still there.
func (s *FileStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func (s *FileStore) read(name string, v any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// write replaces the file atomically through a temp file and rename.
func (s *FileStore) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, name))
}
