// Package cache keeps resized, compressed copies of pool images on
// disk so repeated renders skip the expensive decode+resize step.
// Entries are keyed by source name, target size and style; an entry is
// reused only while it is newer than its source.
package cache

import (
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/crashserver/crashfaces/internal/source"
	"github.com/crashserver/crashfaces/internal/system"
)

const defaultQuality = 85

// Cache is a directory of optimized square JPEG copies. Entries live
// in a per-input subdirectory so pools whose images share basenames
// (or PDF documents, whose refs are always page_0001 onward) never
// collide in a shared cache dir.
type Cache struct {
	Dir        string
	Size       int
	BlackWhite bool
	Quality    int
}

func New(dir, input string, size int, blackWhite bool) *Cache {
	return &Cache{
		Dir:        filepath.Join(dir, scopeName(input)),
		Size:       size,
		BlackWhite: blackWhite,
		Quality:    defaultQuality,
	}
}

// scopeName derives the cache subdirectory for an input: its cleaned
// basename plus a short hash of the absolute path, so inputs that
// share a basename still get separate scopes.
func scopeName(input string) string {
	abs, err := filepath.Abs(input)
	if err != nil {
		abs = input
	}
	h := fnv.New32a()
	h.Write([]byte(abs))

	base := filepath.Base(strings.TrimSuffix(input, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("%s_%08x", base, h.Sum32())
}

// Key returns the cache filename for a pool reference.
func (c *Cache) Key(ref string) string {
	base := strings.TrimSuffix(ref, filepath.Ext(ref))
	suffix := fmt.Sprintf("_%d", c.Size)
	if c.BlackWhite {
		suffix += "_bw"
	}
	return base + suffix + ".jpg"
}

// Resolve returns the path of the optimized copy of ref, producing it
// if missing or stale.
func (c *Cache) Resolve(src source.Source, ref string) (string, error) {
	path := filepath.Join(c.Dir, c.Key(ref))

	srcTime, err := src.ModTime(ref)
	if err != nil {
		return "", err
	}
	if fi, err := os.Stat(path); err == nil && fi.ModTime().After(srcTime) {
		return path, nil
	}

	img, err := src.Render(ref)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return "", err
	}
	if err := WriteOptimized(path, img, c.Size, c.BlackWhite, c.quality()); err != nil {
		return "", err
	}
	return path, nil
}

// Warm fills the cache for the whole pool in parallel. The first
// failing image aborts the remaining work.
func (c *Cache) Warm(ctx context.Context, src source.Source, workers int) error {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, ref := range src.Refs() {
		ref := ref
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := c.Resolve(src, ref); err != nil {
				return fmt.Errorf("optimize %s: %w", ref, err)
			}
			return nil
		})
	}

	return g.Wait()
}

func (c *Cache) quality() int {
	if c.Quality > 0 {
		return c.Quality
	}
	return defaultQuality
}

// WriteOptimized resizes img to a size x size square (aspect ratio is
// intentionally not preserved), applies the optional black-and-white
// style and writes an optimized JPEG. The scaling buffer comes from a
// shared pool so parallel warming does not churn the GC.
func WriteOptimized(path string, img image.Image, size int, blackWhite bool, quality int) error {
	if blackWhite {
		img = grayscale(img)
	}

	dst := system.AcquireRGBA(image.Rect(0, 0, size, size))
	defer system.ReleaseRGBA(dst)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return jpeg.Encode(f, dst, &jpeg.Options{Quality: quality})
}

// Optimize performs the in-memory part of WriteOptimized.
func Optimize(img image.Image, size int, blackWhite bool) *image.RGBA {
	if blackWhite {
		img = grayscale(img)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func grayscale(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			out.Set(x, y, color.RGBA{R: g.Y, G: g.Y, B: g.Y, A: 255})
		}
	}
	return out
}
