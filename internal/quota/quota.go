// Package quota implements the usage accounting collaborator. The scheduler
// consults it before a batch is admitted and debits one unit per finished job.
package quota

import (
	"context"
	"fmt"
	"sync"

	"studio/internal/domain"
)

// Service checks and debits per-user, per-feature usage.
type Service interface {
	// Check returns nil when the user may create n more jobs for the
	// feature, or an error wrapping domain.ErrQuotaDenied.
	Check(ctx context.Context, userID, feature string, n int) error
	// Debit records n consumed units.
	Debit(ctx context.Context, userID, feature string, n int) error
}

// Memory is an in-process ledger used in development and tests.
type Memory struct {
	mu    sync.Mutex
	limit int
	used  map[string]int
}

func NewMemory(limit int) *Memory {
	return &Memory{limit: limit, used: make(map[string]int)}
}

func (m *Memory) Check(ctx context.Context, userID, feature string, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := userID + "/" + feature
	if m.used[key]+n > m.limit {
		remaining := m.limit - m.used[key]
		if remaining < 0 {
			remaining = 0
		}
		return fmt.Errorf("%w: need %d, %d remaining", domain.ErrQuotaDenied, n, remaining)
	}
	return nil
}

func (m *Memory) Debit(ctx context.Context, userID, feature string, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used[userID+"/"+feature] += n
	return nil
}

// Used reports consumed units, for tests and the stats endpoint.
func (m *Memory) Used(userID, feature string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used[userID+"/"+feature]
}

var _ Service = (*Memory)(nil)
