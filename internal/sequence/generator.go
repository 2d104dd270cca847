package sequence

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// GeneratorConfig is the immutable input of Generate.
type GeneratorConfig struct {
	// TotalFrames is the frame budget of the whole video, >= 1.
	TotalFrames int
	// FPS is the output frame rate, >= 1.
	FPS int
	// FrameDuration is how long one image is shown, in seconds, > 0.
	FrameDuration float64
	// FreezeProb is the probability of a freeze segment, in [0, 1].
	FreezeProb float64
	// FreezeMin and FreezeMax bound the freeze duration multiplier,
	// 1 <= FreezeMin <= FreezeMax. Callers clamp user input before
	// building the config; Generate rejects out-of-range values
	// instead of clamping them again.
	FreezeMin float64
	FreezeMax float64
	// Seed, when non-nil, makes the run reproducible. Ignored if the
	// caller passes its own rand source to Generate.
	Seed *int64
}

// Validate checks the config without producing anything.
func (c GeneratorConfig) Validate() error {
	switch {
	case c.TotalFrames < 1:
		return &InvalidConfigError{Reason: "total frames must be >= 1"}
	case c.FPS < 1:
		return &InvalidConfigError{Reason: "fps must be >= 1"}
	case c.FrameDuration <= 0:
		return &InvalidConfigError{Reason: "frame duration must be > 0"}
	case c.FreezeProb < 0 || c.FreezeProb > 1:
		return &InvalidConfigError{Reason: "freeze probability must be in [0, 1]"}
	case c.FreezeMin < 1:
		return &InvalidConfigError{Reason: "freeze multiplier min must be >= 1"}
	case c.FreezeMax < c.FreezeMin:
		return &InvalidConfigError{Reason: "freeze multiplier max must be >= min"}
	}
	return nil
}

// BaseDuration returns the nominal per-image duration in frames,
// never below one frame.
func (c GeneratorConfig) BaseDuration() int {
	d := int(math.Floor(c.FrameDuration * float64(c.FPS)))
	if d < 1 {
		d = 1
	}
	return d
}

// Generate builds the timeline plan for one render.
//
// pool is an ordered, read-only set of opaque image references;
// selection is uniform and independent per segment, so consecutive
// repeats are possible and expected with small pools.
//
// rng is the random source for the run. Passing an explicit source
// keeps Generate a pure function of (config, pool, random stream) and
// lets callers run generations concurrently without sharing state.
// When rng is nil, one is derived from cfg.Seed, or from the clock if
// no seed is set.
func Generate(cfg GeneratorConfig, pool []string, rng *rand.Rand) (*Timeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, &EmptyPoolError{}
	}
	if rng == nil {
		seed := time.Now().UnixNano()
		if cfg.Seed != nil {
			seed = *cfg.Seed
		}
		rng = rand.New(rand.NewSource(seed))
	}

	base := cfg.BaseDuration()
	tl := &Timeline{TotalFrames: cfg.TotalFrames, FPS: cfg.FPS}

	cursor := 0
	for cursor < cfg.TotalFrames {
		kind := Normal
		duration := base
		if rng.Float64() < cfg.FreezeProb {
			kind = Freeze
			mult := cfg.FreezeMin + rng.Float64()*(cfg.FreezeMax-cfg.FreezeMin)
			duration = int(math.Floor(float64(base) * mult))
		}
		// The last segment is truncated to exactly fill the budget.
		if remain := cfg.TotalFrames - cursor; duration > remain {
			duration = remain
		}
		if duration <= 0 {
			break
		}

		src := pool[rng.Intn(len(pool))]
		tl.Segments = append(tl.Segments, Segment{
			Start:  cursor,
			End:    cursor + duration,
			Kind:   kind,
			Source: src,
		})
		cursor += duration
	}

	return tl, nil
}

// ParseSeed interprets the user-facing seed field: empty means no seed,
// an integer is used directly, anything else is hashed.
func ParseSeed(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &v
	}
	h := fnv.New32a()
	h.Write([]byte(s))
	v := int64(h.Sum32())
	return &v
}
