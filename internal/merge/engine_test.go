package merge

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"studio/internal/domain"
)

type fakeEncoder struct {
	width, height int
	added         [][]byte
	startErr      error
	addErr        func(media []byte) error
	finishErr     error
}

func (f *fakeEncoder) Start(ctx context.Context, width, height int) error {
	f.width, f.height = width, height
	return f.startErr
}

func (f *fakeEncoder) AddClip(ctx context.Context, media []byte) error {
	if f.addErr != nil {
		if err := f.addErr(media); err != nil {
			return err
		}
	}
	f.added = append(f.added, media)
	return nil
}

func (f *fakeEncoder) Finish(ctx context.Context) ([]byte, error) {
	if f.finishErr != nil {
		return nil, f.finishErr
	}
	return bytes.Join(f.added, []byte("|")), nil
}

type fakeFetcher struct {
	fetch func(handle string) ([]byte, error)
}

func (f fakeFetcher) Fetch(ctx context.Context, handle string) ([]byte, error) {
	return f.fetch(handle)
}

func newEngine(enc Encoder, fetch func(string) ([]byte, error)) *Engine {
	return NewEngine(enc, fakeFetcher{fetch: fetch}, zerolog.New(io.Discard))
}

func TestMergeRejectsFewerThanTwoClips(t *testing.T) {
	enc := &fakeEncoder{}
	e := newEngine(enc, nil)

	for _, clips := range [][]Clip{nil, {{JobID: "a", Data: []byte("x")}}} {
		if _, err := e.Merge(context.Background(), clips); !errors.Is(err, domain.ErrTooFewClips) {
			t.Fatalf("Merge(%d clips) err = %v, want ErrTooFewClips", len(clips), err)
		}
	}
	if enc.width != 0 {
		t.Fatal("encoder started before clip count was validated")
	}
}

func TestMergeConcatenatesInOrder(t *testing.T) {
	enc := &fakeEncoder{}
	e := newEngine(enc, nil)

	out, err := e.Merge(context.Background(), []Clip{
		{JobID: "a", AspectRatio: "16:9", Data: []byte("one")},
		{JobID: "b", Data: []byte("two")},
		{JobID: "c", Data: []byte("three")},
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if string(out) != "one|two|three" {
		t.Errorf("output = %q", out)
	}
	if enc.width != landscapeWidth || enc.height != landscapeHeight {
		t.Errorf("surface = %dx%d, want %dx%d", enc.width, enc.height, landscapeWidth, landscapeHeight)
	}
}

func TestMergeFirstClipAspectPicksPortrait(t *testing.T) {
	enc := &fakeEncoder{}
	e := newEngine(enc, nil)

	_, err := e.Merge(context.Background(), []Clip{
		{JobID: "a", AspectRatio: "9:16", Data: []byte("one")},
		{JobID: "b", AspectRatio: "16:9", Data: []byte("two")},
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if enc.width != portraitWidth || enc.height != portraitHeight {
		t.Errorf("surface = %dx%d, want portrait", enc.width, enc.height)
	}
}

func TestMergeFetchesClipsWithoutData(t *testing.T) {
	enc := &fakeEncoder{}
	e := newEngine(enc, func(handle string) ([]byte, error) {
		if handle == "remote/b.mp4" {
			return []byte("fetched-b"), nil
		}
		return nil, errors.New("no such handle")
	})

	out, err := e.Merge(context.Background(), []Clip{
		{JobID: "a", Data: []byte("local-a")},
		{JobID: "b", Handle: "remote/b.mp4"},
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if string(out) != "local-a|fetched-b" {
		t.Errorf("output = %q", out)
	}
}

func TestMergeSkipsFailingClips(t *testing.T) {
	enc := &fakeEncoder{addErr: func(media []byte) error {
		if string(media) == "poison" {
			return errors.New("decoder choke")
		}
		return nil
	}}
	e := newEngine(enc, func(handle string) ([]byte, error) {
		return nil, errors.New("gone")
	})

	out, err := e.Merge(context.Background(), []Clip{
		{JobID: "a", Data: []byte("one")},
		{JobID: "b", Handle: "missing"},
		{JobID: "c", Data: []byte("poison")},
		{JobID: "d", Data: []byte("two")},
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if string(out) != "one|two" {
		t.Errorf("output = %q, want surviving clips only", out)
	}
}

func TestMergeEncoderFailureAborts(t *testing.T) {
	for name, enc := range map[string]*fakeEncoder{
		"start":  {startErr: errors.New("no binary")},
		"finish": {finishErr: errors.New("mux failed")},
	} {
		t.Run(name, func(t *testing.T) {
			e := newEngine(enc, nil)
			_, err := e.Merge(context.Background(), []Clip{
				{JobID: "a", Data: []byte("one")},
				{JobID: "b", Data: []byte("two")},
			})
			if !errors.Is(err, domain.ErrMergeFailed) {
				t.Fatalf("err = %v, want ErrMergeFailed", err)
			}
		})
	}
}
