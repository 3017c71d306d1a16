package prompt

import (
	"context"
	"strings"
)

// Rewriter sends a prompt to the enhancement collaborator and returns the
// improved text. On failure the caller keeps the original prompt.
type Rewriter interface {
	Rewrite(ctx context.Context, prompt string) (string, error)
}

// StaticRewriter is the keyless development implementation. It applies a
// deterministic embellishment so the rewrite path stays exercisable without
// the remote service.
type StaticRewriter struct{}

func NewStaticRewriter() *StaticRewriter {
	return &StaticRewriter{}
}

func (s *StaticRewriter) Rewrite(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return "A cinematic establishing shot, soft natural light, shallow depth of field", nil
	}
	if strings.HasSuffix(trimmed, ".") {
		trimmed = strings.TrimSuffix(trimmed, ".")
	}
	return trimmed + ", cinematic lighting, high detail, smooth camera motion", nil
}

var _ Rewriter = (*StaticRewriter)(nil)
