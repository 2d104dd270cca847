// Package frames expands a planned timeline into the numbered frame
// files ffmpeg consumes. Only the first frame of a segment touches the
// image pipeline; the rest of the segment is byte copies of it.
package frames

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/crashserver/crashfaces/internal/cache"
	"github.com/crashserver/crashfaces/internal/sequence"
	"github.com/crashserver/crashfaces/internal/source"
)

// FramePattern is the ffmpeg-style name pattern of produced files.
const FramePattern = "frame_%06d.jpg"

// Materializer turns Timelines into frame directories.
type Materializer struct {
	Source     source.Source
	Cache      *cache.Cache // nil disables the cache (direct resize per segment)
	Size       int
	BlackWhite bool
	Quality    int

	// Progress, when set, is called after every written frame with
	// the running and total frame counts.
	Progress func(done, total int)
}

// Write materializes tl into dir. Cancellation is cooperative: the
// context is checked between frames, never mid-file.
func (m *Materializer) Write(ctx context.Context, tl *sequence.Timeline, dir string) error {
	done := 0
	for _, seg := range tl.Segments {
		if err := ctx.Err(); err != nil {
			return err
		}

		head := framePath(dir, seg.Start)
		if err := m.writeHead(seg.Source, head); err != nil {
			return fmt.Errorf("segment at frame %d (%s): %w", seg.Start, seg.Source, err)
		}
		done++
		m.report(done, tl.TotalFrames)

		for f := seg.Start + 1; f < seg.End; f++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := copyFile(head, framePath(dir, f)); err != nil {
				return fmt.Errorf("copy frame %d: %w", f, err)
			}
			done++
			m.report(done, tl.TotalFrames)
		}
	}
	return nil
}

// WriteStill appends count copies of a ready-made frame file starting
// at frame index start. Used for outro cards.
func WriteStill(ctx context.Context, stillPath, dir string, start, count int) error {
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := copyFile(stillPath, framePath(dir, start+i)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Materializer) writeHead(ref, path string) error {
	if m.Cache != nil {
		resolved, err := m.Cache.Resolve(m.Source, ref)
		if err != nil {
			return err
		}
		return copyFile(resolved, path)
	}

	img, err := m.Source.Render(ref)
	if err != nil {
		return err
	}
	quality := m.Quality
	if quality <= 0 {
		quality = 85
	}
	return cache.WriteOptimized(path, img, m.Size, m.BlackWhite, quality)
}

func (m *Materializer) report(done, total int) {
	if m.Progress != nil {
		m.Progress(done, total)
	}
}

func framePath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf(FramePattern, index))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
