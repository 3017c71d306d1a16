// Package merge concatenates the media of completed, merge-selected jobs
// into one output artifact by sequential re-encoding.
package merge

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"studio/internal/domain"
)

// Target output sizes. The first clip's aspect ratio decides which one the
// whole merge uses.
const (
	landscapeWidth  = 1280
	landscapeHeight = 720
	portraitWidth   = 720
	portraitHeight  = 1280
)

// Clip is one completed job's media, in merge order.
type Clip struct {
	JobID       string
	Handle      string
	AspectRatio string
	Data        []byte
}

// Fetcher resolves a result handle into media bytes when the clip data is
// not already in memory.
type Fetcher interface {
	Fetch(ctx context.Context, handle string) ([]byte, error)
}

// Encoder consumes clips sequentially and produces a single encoded output.
// Start is called once, then AddClip per clip in order, then Finish.
type Encoder interface {
	Start(ctx context.Context, width, height int) error
	AddClip(ctx context.Context, media []byte) error
	Finish(ctx context.Context) ([]byte, error)
}

// Engine drives one merge operation at a time.
type Engine struct {
	encoder Encoder
	fetcher Fetcher
	logger  zerolog.Logger
}

func NewEngine(encoder Encoder, fetcher Fetcher, logger zerolog.Logger) *Engine {
	return &Engine{encoder: encoder, fetcher: fetcher, logger: logger}
}

// Merge re-encodes the clips in order into one output. Fewer than two clips
// is rejected before any encoder work. A clip that cannot be fetched or
// encoded is logged and skipped; failure of the encoder itself aborts the
// merge with no partial output.
func (e *Engine) Merge(ctx context.Context, clips []Clip) ([]byte, error) {
	if len(clips) < 2 {
		return nil, domain.ErrTooFewClips
	}

	width, height := surfaceSize(clips[0].AspectRatio)
	if err := e.encoder.Start(ctx, width, height); err != nil {
		return nil, fmt.Errorf("%w: start encoder: %v", domain.ErrMergeFailed, err)
	}

	for _, clip := range clips {
		media := clip.Data
		if len(media) == 0 {
			fetched, err := e.fetcher.Fetch(ctx, clip.Handle)
			if err != nil {
				e.logger.Warn().Err(err).Str("job_id", clip.JobID).Msg("merge: clip fetch failed, skipping")
				continue
			}
			media = fetched
		}
		if err := e.encoder.AddClip(ctx, media); err != nil {
			e.logger.Warn().Err(err).Str("job_id", clip.JobID).Msg("merge: clip encode failed, skipping")
			continue
		}
	}

	out, err := e.encoder.Finish(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: finalize: %v", domain.ErrMergeFailed, err)
	}
	e.logger.Info().Int("clips", len(clips)).Int("bytes", len(out)).Msg("merge: output ready")
	return out, nil
}

func surfaceSize(aspect string) (int, int) {
	switch strings.TrimSpace(aspect) {
	case "9:16", "3:4", "portrait":
		return portraitWidth, portraitHeight
	default:
		return landscapeWidth, landscapeHeight
	}
}
