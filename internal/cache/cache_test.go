package cache

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/crashserver/crashfaces/internal/source"
)

func newTestSource(t *testing.T, names ...string) (*source.ImageSource, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		img := image.NewRGBA(image.Rect(0, 0, 32, 16))
		for y := 0; y < 16; y++ {
			for x := 0; x < 32; x++ {
				img.Set(x, y, color.RGBA{R: uint8(8 * x), G: uint8(16 * y), B: 200, A: 255})
			}
		}
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}

	src, err := source.NewImageSource(dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { src.Close() })
	return src, dir
}

func TestKeyNaming(t *testing.T) {
	c := New(t.TempDir(), "pool", 1080, false)
	if got := c.Key("portrait.png"); got != "portrait_1080.jpg" {
		t.Errorf("key = %s, want portrait_1080.jpg", got)
	}

	bw := New(t.TempDir(), "pool", 720, true)
	if got := bw.Key("portrait.jpeg"); got != "portrait_720_bw.jpg" {
		t.Errorf("key = %s, want portrait_720_bw.jpg", got)
	}
}

func TestResolveCreatesSquareJPEG(t *testing.T) {
	src, dir := newTestSource(t, "a.png")
	c := New(t.TempDir(), dir, 64, false)

	path, err := c.Resolve(src, "a.png")
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Errorf("cached image is %dx%d, want 64x64", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestResolveReusesFreshEntry(t *testing.T) {
	src, dir := newTestSource(t, "a.png")
	c := New(t.TempDir(), dir, 32, false)

	first, err := c.Resolve(src, "a.png")
	if err != nil {
		t.Fatal(err)
	}
	// Push the cache entry into the future so it counts as fresh.
	future := time.Now().Add(time.Hour)
	os.Chtimes(first, future, future)

	second, err := c.Resolve(src, "a.png")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("expected same cache path, got %s and %s", first, second)
	}

	fi, err := os.Stat(second)
	if err != nil {
		t.Fatal(err)
	}
	if !fi.ModTime().Equal(future) {
		t.Error("fresh cache entry was rewritten")
	}
}

func TestResolveRefreshesStaleEntry(t *testing.T) {
	src, srcDir := newTestSource(t, "a.png")
	c := New(t.TempDir(), srcDir, 32, false)

	path, err := c.Resolve(src, "a.png")
	if err != nil {
		t.Fatal(err)
	}

	// Make the source newer than the cache entry.
	past := time.Now().Add(-time.Hour)
	os.Chtimes(path, past, past)
	now := time.Now()
	os.Chtimes(filepath.Join(srcDir, "a.png"), now, now)

	if _, err := c.Resolve(src, "a.png"); err != nil {
		t.Fatal(err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.ModTime().Equal(past) {
		t.Error("stale cache entry was not rewritten")
	}
}

func newSolidSource(t *testing.T, name string, c color.RGBA) (*source.ImageSource, string) {
	t.Helper()
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	src, err := source.NewImageSource(dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { src.Close() })
	return src, dir
}

func TestResolveScopedPerInput(t *testing.T) {
	shared := t.TempDir()

	redSrc, redDir := newSolidSource(t, "a.png", color.RGBA{R: 255, A: 255})
	blueSrc, blueDir := newSolidSource(t, "a.png", color.RGBA{B: 255, A: 255})

	redCache := New(shared, redDir, 16, false)
	redPath, err := redCache.Resolve(redSrc, "a.png")
	if err != nil {
		t.Fatal(err)
	}

	// The second pool's source is older than the first pool's cache
	// entry, so a shared key would pass the freshness check and serve
	// the wrong image.
	old := time.Now().Add(-time.Hour)
	os.Chtimes(filepath.Join(blueDir, "a.png"), old, old)

	blueCache := New(shared, blueDir, 16, false)
	bluePath, err := blueCache.Resolve(blueSrc, "a.png")
	if err != nil {
		t.Fatal(err)
	}

	if redPath == bluePath {
		t.Fatalf("pools share the cache entry %s", redPath)
	}

	f, err := os.Open(bluePath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	r, _, b, _ := img.At(8, 8).RGBA()
	if b <= r {
		t.Errorf("second pool was served the wrong image: pixel r=%d b=%d, want blue", r>>8, b>>8)
	}
}

func TestScopeNameSeparatesSameBasename(t *testing.T) {
	a := scopeName("projects/one/images")
	b := scopeName("projects/two/images")
	if a == b {
		t.Errorf("inputs with the same basename share scope %s", a)
	}
	if scopeName("projects/one/images") != a {
		t.Error("scope name is not stable for the same input")
	}
}

func TestOptimizeBlackWhite(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 250, G: 10, B: 10, A: 255})
		}
	}

	out := Optimize(img, 8, true)
	r, g, b, _ := out.At(4, 4).RGBA()
	if r != g || g != b {
		t.Errorf("pixel not gray: r=%d g=%d b=%d", r>>8, g>>8, b>>8)
	}
}

func TestWarmFillsWholePool(t *testing.T) {
	src, dir := newTestSource(t, "a.png", "b.png", "c.png")
	c := New(t.TempDir(), dir, 16, false)

	if err := c.Warm(context.Background(), src, 2); err != nil {
		t.Fatal(err)
	}

	for _, ref := range src.Refs() {
		if _, err := os.Stat(filepath.Join(c.Dir, c.Key(ref))); err != nil {
			t.Errorf("missing cache entry for %s: %v", ref, err)
		}
	}
}

func TestWarmHonorsCancellation(t *testing.T) {
	src, dir := newTestSource(t, "a.png", "b.png")
	c := New(t.TempDir(), dir, 16, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Warm(ctx, src, 1); err == nil {
		t.Error("expected error from cancelled context")
	}
}
