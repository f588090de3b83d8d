package repository

import (
	"context"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

const sectionsKey = "\x00sections"

// Cached keeps recently loaded lists in an LRU in front of another
// Repository. Entries are stored encoded so callers never share memory with
// the cache.
type Cached struct {
	next  Repository
	cache *lru.Cache[string, []byte]
}

// NewCached wraps next with an LRU of the given size.
func NewCached(next Repository, size int) (*Cached, error) {
	if size <= 0 {
		size = 64
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: cache}, nil
}

// LoadSections returns all sections.
func (c *Cached) LoadSections(ctx context.Context) ([]models.Section, error) {
	var sections []models.Section
	if c.hit(sectionsKey, &sections) {
		return sections, nil
	}
	sections, err := c.next.LoadSections(ctx)
	if err != nil {
		return nil, err
	}
	c.store(sectionsKey, sections)
	return sections, nil
}

// SaveSections replaces the stored sections.
func (c *Cached) SaveSections(ctx context.Context, sections []models.Section) error {
	c.cache.Remove(sectionsKey)
	if err := c.next.SaveSections(ctx, sections); err != nil {
		return err
	}
	c.store(sectionsKey, sections)
	return nil
}

// LoadThoughts returns the thoughts of a section.
func (c *Cached) LoadThoughts(ctx context.Context, sectionID string) ([]models.Thought, error) {
	var thoughts []models.Thought
	if c.hit(sectionID, &thoughts) {
		return thoughts, nil
	}
	thoughts, err := c.next.LoadThoughts(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	c.store(sectionID, thoughts)
	return thoughts, nil
}

// SaveThoughts replaces the thoughts of a section.
func (c *Cached) SaveThoughts(ctx context.Context, sectionID string, thoughts []models.Thought) error {
	c.cache.Remove(sectionID)
	if err := c.next.SaveThoughts(ctx, sectionID, thoughts); err != nil {
		return err
	}
	c.store(sectionID, thoughts)
	return nil
}

// DeleteThoughts removes every thought of a section.
func (c *Cached) DeleteThoughts(ctx context.Context, sectionID string) error {
	c.cache.Remove(sectionID)
	return c.next.DeleteThoughts(ctx, sectionID)
}

// Ping checks the wrapped repository.
func (c *Cached) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

func (c *Cached) hit(key string, v any) bool {
	data, ok := c.cache.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.cache.Remove(key)
		return false
	}
	return true
}

func (c *Cached) store(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.cache.Add(key, data)
}
