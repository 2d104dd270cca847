package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	InputPath   string
	OutputVideo string
	CacheDir    string
	NoCache     bool

	Duration      float64
	FPS           int
	FrameDuration float64
	FreezeProb    float64
	FreezeMin     float64
	FreezeMax     float64
	Seed          string

	Size       int
	BlackWhite bool
	Workers    int
	DPI        int

	QRURL     string
	QRSeconds float64

	VideoEncoder string
	Quality      int
	ShowStats    bool
	BuildVersion string
}

type EncodeParams struct {
	Size    int
	FPS     int
	Encoder string
	Quality int
}

// Recipe is the reproducible subset of a render configuration, stored
// as YAML so a run can be repeated later with identical settings.
type Recipe struct {
	Duration      float64 `yaml:"duration"`
	FPS           int     `yaml:"fps"`
	FrameDuration float64 `yaml:"frame_duration"`
	FreezeProb    float64 `yaml:"freeze_probability"`
	FreezeMin     float64 `yaml:"freeze_min"`
	FreezeMax     float64 `yaml:"freeze_max"`
	Seed          string  `yaml:"seed,omitempty"`
	Size          int     `yaml:"size"`
	BlackWhite    bool    `yaml:"black_white"`
	QRURL         string  `yaml:"qr_url,omitempty"`
	QRSeconds     float64 `yaml:"qr_seconds,omitempty"`
}

// RecipeOf extracts the reproducible settings from a full config.
func RecipeOf(c *Config) Recipe {
	return Recipe{
		Duration:      c.Duration,
		FPS:           c.FPS,
		FrameDuration: c.FrameDuration,
		FreezeProb:    c.FreezeProb,
		FreezeMin:     c.FreezeMin,
		FreezeMax:     c.FreezeMax,
		Seed:          c.Seed,
		Size:          c.Size,
		BlackWhite:    c.BlackWhite,
		QRURL:         c.QRURL,
		QRSeconds:     c.QRSeconds,
	}
}

// Apply copies the recipe values onto a config.
func (r Recipe) Apply(c *Config) {
	c.Duration = r.Duration
	c.FPS = r.FPS
	c.FrameDuration = r.FrameDuration
	c.FreezeProb = r.FreezeProb
	c.FreezeMin = r.FreezeMin
	c.FreezeMax = r.FreezeMax
	c.Seed = r.Seed
	c.Size = r.Size
	c.BlackWhite = r.BlackWhite
	c.QRURL = r.QRURL
	c.QRSeconds = r.QRSeconds
}

// WriteRecipe writes a recipe to a YAML file.
func WriteRecipe(r Recipe, path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadRecipe reads a recipe from a YAML file.
func ReadRecipe(path string) (Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Recipe{}, err
	}

	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Recipe{}, err
	}
	return r, nil
}
