// Package compose holds the pre-submission batch: the ordered, editable list
// of staging entries a user assembles before jobs are created. The composer
// owns its entries exclusively; the scheduler only ever sees copies.
package compose

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/providers/prompt"
)

// Mode tracks which input surface drives the batch.
type Mode string

const (
	ModeText  Mode = "text"
	ModeImage Mode = "image"
)

// Direction selects the neighbor for Move.
type Direction int

const (
	DirectionUp   Direction = -1
	DirectionDown Direction = 1
)

// Composer is one feature area's batch staging list.
type Composer struct {
	mu       sync.Mutex
	entries  []domain.BatchEntry
	mode     Mode
	bulkText string
	rewriter prompt.Rewriter
	logger   zerolog.Logger
}

func NewComposer(rewriter prompt.Rewriter, logger zerolog.Logger) *Composer {
	return &Composer{mode: ModeText, rewriter: rewriter, logger: logger}
}

// Append adds entries to the end of the list and replays the current bulk
// text so fresh rows pick up their positional prompt.
func (c *Composer) Append(entries []domain.BatchEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entries...)
	c.associateBulkLocked()
}

// Entries returns a snapshot copy of the current list.
func (c *Composer) Entries() []domain.BatchEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.BatchEntry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Clone()
	}
	return out
}

// Len reports the number of staged entries.
func (c *Composer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Mode reports the current input mode.
func (c *Composer) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches the input mode; script imports force image mode.
func (c *Composer) SetMode(mode Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
}

// Move swaps the entry at index with its neighbor in the given direction.
// Out-of-range indices and boundary moves are no-ops.
func (c *Composer) Move(index int, dir Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	target := index + int(dir)
	if index < 0 || index >= len(c.entries) || target < 0 || target >= len(c.entries) {
		return
	}
	c.entries[index], c.entries[target] = c.entries[target], c.entries[index]
}

// Duplicate inserts a copy of the entry at index immediately after it. The
// copy gets a fresh id and a suffixed prompt so its provenance stays visible.
func (c *Composer) Duplicate(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.entries) {
		return fmt.Errorf("duplicate: index %d out of range", index)
	}
	dup := c.entries[index].Clone()
	dup.ID = domain.NewBatchEntry(dup.SourceName, nil).ID
	if dup.Prompt != "" {
		dup.Prompt += " (copy)"
	}
	c.entries = append(c.entries, domain.BatchEntry{})
	copy(c.entries[index+2:], c.entries[index+1:])
	c.entries[index+1] = dup
	return nil
}

// Remove deletes the entry with the given id.
func (c *Composer) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e.ID == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
}

// SetPrompt overwrites the prompt of the entry with the given id.
func (c *Composer) SetPrompt(id, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		if c.entries[i].ID == id {
			c.entries[i].Prompt = text
			return nil
		}
	}
	return fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
}

// RewritePrompt sends the entry's current prompt to the enhancement service
// and stores the returned text. On failure the prompt is left unchanged and
// the error is returned. The composer lock is not held across the remote
// call, so rewrites on different entries proceed independently.
func (c *Composer) RewritePrompt(ctx context.Context, id string) error {
	c.mu.Lock()
	var current string
	found := false
	for _, e := range c.entries {
		if e.ID == id {
			current = e.Prompt
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
	}

	improved, err := c.rewriter.Rewrite(ctx, current)
	if err != nil {
		c.logger.Warn().Err(err).Str("entry_id", id).Msg("compose: prompt rewrite failed")
		return fmt.Errorf("rewrite prompt: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		if c.entries[i].ID == id {
			c.entries[i].Prompt = improved
			return nil
		}
	}
	// Entry was removed while the rewrite was in flight; drop the result.
	return fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
}

// SetBulkText stores the shared multi-line text and re-runs the positional
// association: line i fills entry i's prompt, but only when that prompt is
// still empty. Hand-edited prompts are never clobbered.
func (c *Composer) SetBulkText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bulkText = text
	c.associateBulkLocked()
}

// BulkText returns the shared multi-line text.
func (c *Composer) BulkText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bulkText
}

// Clear drops all entries and the bulk text.
func (c *Composer) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.bulkText = ""
}

func (c *Composer) associateBulkLocked() {
	if c.bulkText == "" {
		return
	}
	lines := strings.Split(strings.ReplaceAll(c.bulkText, "\r\n", "\n"), "\n")
	for i := 0; i < len(lines) && i < len(c.entries); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || c.entries[i].Prompt != "" {
			continue
		}
		c.entries[i].Prompt = line
	}
}
