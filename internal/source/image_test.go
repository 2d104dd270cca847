package source

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestImageSourceDirectoryScan(t *testing.T) {
	dir := t.TempDir()

	writeTestPNG(t, filepath.Join(dir, "b.png"), 4, 4)
	writeTestPNG(t, filepath.Join(dir, "a.png"), 4, 4)
	writeTestPNG(t, filepath.Join(dir, "c.png"), 4, 4)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0644)
	os.Mkdir(filepath.Join(dir, "sub"), 0755)

	src, err := NewImageSource(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if src.Count() != 3 {
		t.Fatalf("got %d images, want 3", src.Count())
	}

	want := []string{"a.png", "b.png", "c.png"}
	refs := src.Refs()
	for i, w := range want {
		if refs[i] != w {
			t.Errorf("refs[%d] = %s, want %s", i, refs[i], w)
		}
	}
}

func TestImageSourceSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "only.png")
	writeTestPNG(t, path, 8, 6)

	src, err := NewImageSource(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if src.Count() != 1 {
		t.Fatalf("got %d images, want 1", src.Count())
	}

	img, err := src.Render("only.png")
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("decoded %dx%d, want 8x6", img.Bounds().Dx(), img.Bounds().Dy())
	}

	if _, err := src.ModTime("only.png"); err != nil {
		t.Errorf("mod time failed: %v", err)
	}
}

func TestImageSourceUnknownRef(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "a.png"), 2, 2)

	src, err := NewImageSource(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	_, err = src.Render("missing.png")
	var refErr *UnknownRefError
	if !errors.As(err, &refErr) {
		t.Errorf("got %v, want UnknownRefError", err)
	}
}
