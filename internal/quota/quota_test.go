package quota

import (
	"context"
	"errors"
	"testing"

	"studio/internal/domain"
)

func TestMemoryCheckAndDebit(t *testing.T) {
	m := NewMemory(3)
	ctx := context.Background()

	if err := m.Check(ctx, "u1", "storyboard", 3); err != nil {
		t.Fatalf("check within limit: %v", err)
	}
	if err := m.Check(ctx, "u1", "storyboard", 4); !errors.Is(err, domain.ErrQuotaDenied) {
		t.Fatalf("check above limit err = %v, want ErrQuotaDenied", err)
	}

	if err := m.Debit(ctx, "u1", "storyboard", 2); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if got := m.Used("u1", "storyboard"); got != 2 {
		t.Fatalf("used = %d, want 2", got)
	}
	if err := m.Check(ctx, "u1", "storyboard", 2); !errors.Is(err, domain.ErrQuotaDenied) {
		t.Fatal("check ignored prior debits")
	}
	if err := m.Check(ctx, "u1", "storyboard", 1); err != nil {
		t.Fatalf("check for remaining unit: %v", err)
	}
}

func TestMemoryLedgerIsPerUserPerFeature(t *testing.T) {
	m := NewMemory(1)
	ctx := context.Background()

	if err := m.Debit(ctx, "u1", "storyboard", 1); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if err := m.Check(ctx, "u1", "storyboard", 1); !errors.Is(err, domain.ErrQuotaDenied) {
		t.Fatal("exhausted bucket still admits")
	}
	// A different feature and a different user each have their own bucket.
	if err := m.Check(ctx, "u1", "character", 1); err != nil {
		t.Errorf("other feature blocked: %v", err)
	}
	if err := m.Check(ctx, "u2", "storyboard", 1); err != nil {
		t.Errorf("other user blocked: %v", err)
	}
}
