package schedule

import "sync"

// RenderPermit is the application-wide mutual exclusion over generation
// calls. Independent feature areas each hold a scheduler, but the host
// application allows at most one synthesis call in flight across all of
// them. The permit is injected at scheduler construction; it is never
// ambient global state.
type RenderPermit interface {
	// TryAcquire claims the permit for owner. It returns false when the
	// permit is already held, including by the same owner.
	TryAcquire(owner string) bool
	// Release frees the permit if and only if owner holds it. Releasing a
	// permit held by someone else is a no-op.
	Release(owner string)
	// Held reports whether the permit is currently claimed.
	Held() bool
	// Notify registers a callback invoked after every release, so idle
	// schedulers can re-evaluate their queues.
	Notify(fn func())
}

// SharedPermit is the in-process RenderPermit shared by all feature areas.
type SharedPermit struct {
	mu        sync.Mutex
	holder    string
	observers []func()
}

func NewSharedPermit() *SharedPermit {
	return &SharedPermit{}
}

func (p *SharedPermit) TryAcquire(owner string) bool {
	if owner == "" {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.holder != "" {
		return false
	}
	p.holder = owner
	return true
}

func (p *SharedPermit) Release(owner string) {
	p.mu.Lock()
	if p.holder != owner {
		p.mu.Unlock()
		return
	}
	p.holder = ""
	observers := make([]func(), len(p.observers))
	copy(observers, p.observers)
	p.mu.Unlock()

	// Callbacks run without the permit mutex held; an observer is free to
	// re-acquire immediately.
	for _, fn := range observers {
		fn()
	}
}

func (p *SharedPermit) Held() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.holder != ""
}

// Holder reports the current owner, for tests and diagnostics.
func (p *SharedPermit) Holder() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.holder
}

func (p *SharedPermit) Notify(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

var _ RenderPermit = (*SharedPermit)(nil)
