// Package safety gates uploads before they may join a batch. Every asset is
// checked exactly once; while a check batch is in flight further uploads are
// rejected so each verdict stays attributable to one visible check.
package safety

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"studio/internal/domain"
)

// Verdict is the outcome of one content check.
type Verdict struct {
	Safe   bool
	Reason string
}

// Validator performs the remote content check for a single asset.
type Validator interface {
	Validate(ctx context.Context, payload []byte) (Verdict, error)
}

// Upload is one candidate asset presented to the gate.
type Upload struct {
	Name    string
	Payload []byte
}

// Rejection reports an asset the gate refused, with the verdict's reason.
type Rejection struct {
	Name   string
	Reason string
}

// Gate serializes content checks for upload batches.
type Gate struct {
	mu        sync.Mutex
	checking  bool
	validator Validator
	logger    zerolog.Logger
}

func NewGate(validator Validator, logger zerolog.Logger) *Gate {
	return &Gate{validator: validator, logger: logger}
}

// Checking reports whether a check batch is currently in flight.
func (g *Gate) Checking() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checking
}

// Admit checks each upload in order and returns batch entries for the assets
// that passed plus a rejection per asset that did not. Rejected assets are
// dropped; a validator transport failure also counts as a rejection so a
// flaky moderation backend can never let an unchecked asset through. If a
// previous batch is still being checked, nothing is admitted and
// domain.ErrCheckInProgress is returned.
func (g *Gate) Admit(ctx context.Context, uploads []Upload) ([]domain.BatchEntry, []Rejection, error) {
	g.mu.Lock()
	if g.checking {
		g.mu.Unlock()
		return nil, nil, domain.ErrCheckInProgress
	}
	g.checking = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.checking = false
		g.mu.Unlock()
	}()

	var entries []domain.BatchEntry
	var rejected []Rejection
	for _, up := range uploads {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		verdict, err := g.validator.Validate(ctx, up.Payload)
		if err != nil {
			g.logger.Warn().Err(err).Str("asset", up.Name).Msg("safety: check failed")
			rejected = append(rejected, Rejection{Name: up.Name, Reason: "content check unavailable"})
			continue
		}
		if !verdict.Safe {
			rejErr := &domain.UnsafeAssetError{Name: up.Name, Reason: verdict.Reason}
			g.logger.Info().Err(rejErr).Str("asset", up.Name).Msg("safety: asset rejected")
			rejected = append(rejected, Rejection{Name: up.Name, Reason: verdict.Reason})
			continue
		}
		entries = append(entries, domain.NewBatchEntry(up.Name, up.Payload))
	}
	return entries, rejected, nil
}
