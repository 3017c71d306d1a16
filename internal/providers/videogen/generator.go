package videogen

import "context"

// Request carries everything a synthesis call needs. Secondary is only set
// for start/end transition jobs.
type Request struct {
	Prompt      string
	AspectRatio string
	Resolution  string
	Primary     []byte
	Secondary   []byte
	Kind        string
	RequestID   string
}

// Result is the normalized representation of a generated clip. Handle is a
// reference the rest of the pipeline can fetch the media by; Data is set when
// the backend returned the bytes inline.
type Result struct {
	Handle string
	Format string
	Length int
	Data   []byte
}

// Generator performs one synthesis call per job. Implementations must be safe
// for concurrent use; the schedulers sharing one generator never issue more
// than one call at a time, but independent feature areas may hold separate
// instances.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}
