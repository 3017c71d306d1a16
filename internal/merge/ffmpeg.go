package merge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FFmpegEncoder implements Encoder by staging clips in a temp directory and
// concatenating them with ffmpeg's concat demuxer, scaled onto one shared
// surface size. One encoder instance serves one merge; build a fresh one per
// operation.
type FFmpegEncoder struct {
	binary  string
	workDir string
	width   int
	height  int
	clips   []string
}

func NewFFmpegEncoder(binary string) *FFmpegEncoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegEncoder{binary: binary}
}

func (f *FFmpegEncoder) Start(ctx context.Context, width, height int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.workDir != "" {
		return errors.New("encoder already started")
	}
	if _, err := exec.LookPath(f.binary); err != nil {
		return fmt.Errorf("ffmpeg not available: %w", err)
	}
	dir, err := os.MkdirTemp("", "merge-*")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	f.workDir = dir
	f.width = width
	f.height = height
	return nil
}

func (f *FFmpegEncoder) AddClip(ctx context.Context, media []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.workDir == "" {
		return errors.New("encoder not started")
	}
	if len(media) == 0 {
		return errors.New("empty clip")
	}
	path := filepath.Join(f.workDir, fmt.Sprintf("clip-%03d.mp4", len(f.clips)))
	if err := os.WriteFile(path, media, 0o644); err != nil {
		return fmt.Errorf("stage clip: %w", err)
	}
	f.clips = append(f.clips, path)
	return nil
}

func (f *FFmpegEncoder) Finish(ctx context.Context) ([]byte, error) {
	if f.workDir == "" {
		return nil, errors.New("encoder not started")
	}
	defer func() {
		_ = os.RemoveAll(f.workDir)
		f.workDir = ""
		f.clips = nil
	}()

	if len(f.clips) == 0 {
		return nil, errors.New("no clips staged")
	}

	listPath := filepath.Join(f.workDir, "clips.txt")
	var list strings.Builder
	for _, clip := range f.clips {
		fmt.Fprintf(&list, "file '%s'\n", clip)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return nil, fmt.Errorf("write concat list: %w", err)
	}

	outPath := filepath.Join(f.workDir, "merged.mp4")
	cmd := exec.CommandContext(ctx, f.binary, f.concatArgs(listPath, outPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg concat: %w: %s", err, tail(string(out), 400))
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read merged output: %w", err)
	}
	return data, nil
}

// concatArgs builds the ffmpeg invocation: concat demuxer input, every clip
// scaled and padded onto the shared surface, H.264 at a web-safe pixel
// format.
func (f *FFmpegEncoder) concatArgs(listPath, outPath string) []string {
	scale := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		f.width, f.height, f.width, f.height,
	)
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-vf", scale,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		outPath,
	}
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

var _ Encoder = (*FFmpegEncoder)(nil)
