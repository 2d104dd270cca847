package config

import (
	"path/filepath"
	"testing"
)

func TestRecipeRoundTrip(t *testing.T) {
	cfg := &Config{
		Duration:      45,
		FPS:           24,
		FrameDuration: 0.8,
		FreezeProb:    0.15,
		FreezeMin:     2,
		FreezeMax:     5,
		Seed:          "42",
		Size:          1080,
		BlackWhite:    true,
		QRURL:         "https://crashserver.fr",
		QRSeconds:     2,
	}

	path := filepath.Join(t.TempDir(), "recipe.yaml")
	if err := WriteRecipe(RecipeOf(cfg), path); err != nil {
		t.Fatal(err)
	}

	r, err := ReadRecipe(path)
	if err != nil {
		t.Fatal(err)
	}

	var got Config
	r.Apply(&got)

	if got.Duration != cfg.Duration || got.FPS != cfg.FPS || got.FrameDuration != cfg.FrameDuration {
		t.Errorf("timing settings lost: %+v", got)
	}
	if got.FreezeProb != cfg.FreezeProb || got.FreezeMin != cfg.FreezeMin || got.FreezeMax != cfg.FreezeMax {
		t.Errorf("freeze settings lost: %+v", got)
	}
	if got.Seed != cfg.Seed || got.Size != cfg.Size || !got.BlackWhite {
		t.Errorf("style settings lost: %+v", got)
	}
	if got.QRURL != cfg.QRURL || got.QRSeconds != cfg.QRSeconds {
		t.Errorf("outro settings lost: %+v", got)
	}
}

func TestReadRecipeMissingFile(t *testing.T) {
	if _, err := ReadRecipe(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing recipe")
	}
}
