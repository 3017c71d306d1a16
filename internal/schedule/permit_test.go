package schedule

import "testing"

func TestSharedPermitOwnership(t *testing.T) {
	p := NewSharedPermit()

	if !p.TryAcquire("a") {
		t.Fatal("fresh permit not acquirable")
	}
	if p.TryAcquire("b") {
		t.Fatal("held permit acquired by second owner")
	}
	if p.TryAcquire("a") {
		t.Fatal("held permit re-acquired by its own owner")
	}

	// Only the owner may release.
	p.Release("b")
	if !p.Held() {
		t.Fatal("release by non-owner freed the permit")
	}
	p.Release("a")
	if p.Held() {
		t.Fatal("owner release did not free the permit")
	}
}

func TestSharedPermitNotifiesOnRelease(t *testing.T) {
	p := NewSharedPermit()
	fired := 0
	p.Notify(func() { fired++ })

	p.TryAcquire("a")
	p.Release("a")
	if fired != 1 {
		t.Fatalf("observer fired %d times, want 1", fired)
	}

	// A no-op release must not wake observers.
	p.Release("a")
	if fired != 1 {
		t.Fatalf("observer fired %d times after no-op release, want 1", fired)
	}
}

func TestSharedPermitRejectsEmptyOwner(t *testing.T) {
	p := NewSharedPermit()
	if p.TryAcquire("") {
		t.Fatal("permit acquired with empty owner")
	}
}
