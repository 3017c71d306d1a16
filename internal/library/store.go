// Package library lists and loads the stored script documents the importer
// can pull scenes from. Documents are opaque JSON payloads here; parsing
// belongs to the script package.
package library

import (
	"context"
	"sync"
	"time"

	"studio/internal/domain"
)

// Meta describes one stored document for listing.
type Meta struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the library collaborator surface.
type Store interface {
	List(ctx context.Context) ([]Meta, error)
	// Get returns the raw document payload or domain.ErrNotFound.
	Get(ctx context.Context, id string) ([]byte, error)
}

// Memory keeps documents in process, for development and tests.
type Memory struct {
	mu   sync.Mutex
	meta []Meta
	docs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

// Put registers a document payload under the given id.
func (m *Memory) Put(id, title string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		m.meta = append(m.meta, Meta{ID: id, Title: title, UpdatedAt: time.Now()})
	}
	m.docs[id] = payload
}

func (m *Memory) List(ctx context.Context) ([]Meta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Meta, len(m.meta))
	copy(out, m.meta)
	return out, nil
}

func (m *Memory) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return payload, nil
}

var _ Store = (*Memory)(nil)
