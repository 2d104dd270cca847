// Package sequence plans the randomized frame timeline of a slideshow.
// It decides which source image is shown for which span of video frames,
// including randomly stretched "freeze" spans, and guarantees the plan
// tiles the requested frame budget exactly.
package sequence

import (
	"fmt"
)

// Kind classifies a timeline segment.
type Kind int

const (
	// Normal segments show an image for the base duration.
	Normal Kind = iota
	// Freeze segments hold an image for a randomly stretched duration.
	Freeze
)

func (k Kind) String() string {
	if k == Freeze {
		return "freeze"
	}
	return "normal"
}

// Segment is one span of the timeline: a single source image shown for
// the half-open frame range [Start, End).
type Segment struct {
	Start  int
	End    int
	Kind   Kind
	Source string
}

// Duration returns the segment length in frames.
func (s Segment) Duration() int {
	return s.End - s.Start
}

// StartSeconds returns the presentation time of the first frame.
func (s Segment) StartSeconds(fps int) float64 {
	return float64(s.Start) / float64(fps)
}

// EndSeconds returns the presentation time just past the last frame.
func (s Segment) EndSeconds(fps int) float64 {
	return float64(s.End) / float64(fps)
}

// Timeline is the ordered, immutable plan for one render. Segments are
// contiguous and tile [0, TotalFrames) exactly.
type Timeline struct {
	Segments    []Segment
	TotalFrames int
	FPS         int
}

// Stats summarizes a timeline for logging and preview readouts.
type Stats struct {
	Segments     int
	NormalCount  int
	FreezeCount  int
	NormalFrames int
	FreezeFrames int
}

// Stats counts segments and frames per kind.
func (t *Timeline) Stats() Stats {
	var st Stats
	st.Segments = len(t.Segments)
	for _, seg := range t.Segments {
		if seg.Kind == Freeze {
			st.FreezeCount++
			st.FreezeFrames += seg.Duration()
		} else {
			st.NormalCount++
			st.NormalFrames += seg.Duration()
		}
	}
	return st
}

// DurationSeconds returns the total presentation time of the timeline.
func (t *Timeline) DurationSeconds() float64 {
	return float64(t.TotalFrames) / float64(t.FPS)
}

// InvalidConfigError reports a rejected GeneratorConfig. It is returned
// before any segment is produced.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid generator config: %s", e.Reason)
}

// EmptyPoolError reports that the image pool had no candidates.
type EmptyPoolError struct{}

func (e *EmptyPoolError) Error() string {
	return "image pool is empty"
}
