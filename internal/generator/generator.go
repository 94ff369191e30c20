// Package generator builds synthetic swipe recordings from dictionary
// words, for decoder testing and practice material.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/verte-zerg/gliss/internal/dict"
	"github.com/verte-zerg/gliss/internal/geom"
	"github.com/verte-zerg/gliss/internal/layout"
	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/record"
)

// Options controls how synthetic gestures are shaped.
type Options struct {
	// Jitter is the per-sample positional noise standard deviation as a
	// fraction of the key width. Zero traces the ideal path exactly.
	Jitter float64
	// Speed is the simulated swipe speed in pixels per second.
	Speed float64
	// SamplePitch is the distance between consecutive synthetic samples
	// in pixels.
	SamplePitch float64
	// GapMs is the pause between consecutive gestures.
	GapMs uint64
}

// DefaultOptions returns gesture shaping values that resemble a relaxed
// human swipe on a phone-sized layout.
func DefaultOptions() Options {
	return Options{
		Jitter:      0.12,
		Speed:       700,
		SamplePitch: 14,
		GapMs:       350,
	}
}

// Generator produces randomized synthetic swipe recordings.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator for tests.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Words selects count dictionary words uniformly at random.
func (g *Generator) Words(d *dict.Dictionary, count int) []string {
	entries := d.Entries()
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, entries[g.rnd.Intn(len(entries))].Word)
	}
	return result
}

// WeightedWords selects count words with a bias toward words containing
// weak letters, so practice material exercises the keys the user misses.
// factor scales the bias; zero degenerates to uniform selection.
func (g *Generator) WeightedWords(d *dict.Dictionary, count int, weak map[rune]struct{}, factor float64) []string {
	entries := d.Entries()
	weights := make([]float64, len(entries))
	total := 0.0
	for i, e := range entries {
		weakCount := 0
		for _, r := range e.Word {
			if _, ok := weak[r]; ok {
				weakCount++
			}
		}
		w := 1.0 + float64(weakCount)*factor
		weights[i] = w
		total += w
	}

	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		r := g.rnd.Float64() * total
		acc := 0.0
		idx := 0
		for j, w := range weights {
			acc += w
			if r <= acc {
				idx = j
				break
			}
		}
		result = append(result, entries[idx].Word)
	}
	return result
}

// Trace synthesizes the touch events of one swipe-typed word: the ideal
// key-center path, densified to the sample pitch, with Gaussian jitter
// and timestamps derived from the simulated speed.
func (g *Generator) Trace(lay *layout.Layout, word string, opts Options, startMs uint64) ([]model.TouchEvent, error) {
	ideal := lay.IdealPath(word)
	if len(ideal) == 0 {
		return nil, fmt.Errorf("word %q has no keys on layout %s", word, lay.Name())
	}
	pts := densify(ideal, opts.SamplePitch)
	sigma := opts.Jitter * lay.AverageKeyWidth()

	events := make([]model.TouchEvent, 0, len(pts))
	t := startMs
	var prev geom.Point
	for i, p := range pts {
		if sigma > 0 && i > 0 && i < len(pts)-1 {
			// Endpoints stay clean so the anchor keys are unambiguous.
			p.X += g.rnd.NormFloat64() * sigma
			p.Y += g.rnd.NormFloat64() * sigma
		}
		if i > 0 {
			dist := math.Hypot(p.X-prev.X, p.Y-prev.Y)
			dt := uint64(dist / opts.Speed * 1000)
			if dt == 0 {
				dt = 1
			}
			t += dt
		}
		phase := model.TouchMove
		switch i {
		case 0:
			phase = model.TouchDown
		case len(pts) - 1:
			phase = model.TouchUp
		}
		events = append(events, model.TouchEvent{X: p.X, Y: p.Y, T: t, Phase: phase})
		prev = p
	}
	if len(events) == 1 {
		// Single-key words still need a lift.
		events = append(events, model.TouchEvent{
			X: events[0].X, Y: events[0].Y, T: t + 1, Phase: model.TouchUp,
		})
	}
	return events, nil
}

// Recording synthesizes a full multi-word swipe recording.
func (g *Generator) Recording(lay *layout.Layout, lang string, words []string, opts Options) (*record.Recording, error) {
	rec := &record.Recording{
		Layout:   lay.Name(),
		Lang:     lang,
		Captured: time.Now(),
	}
	var t uint64 = 1
	for _, word := range words {
		events, err := g.Trace(lay, word, opts, t)
		if err != nil {
			return nil, err
		}
		rec.Events = append(rec.Events, events...)
		t = events[len(events)-1].T + opts.GapMs
	}
	return rec, nil
}

// densify inserts evenly spaced points along each segment so the synthetic
// stream resembles a touch sensor's sampling rate.
func densify(pts []geom.Point, pitch float64) []geom.Point {
	if len(pts) < 2 || pitch <= 0 {
		return pts
	}
	out := []geom.Point{pts[0]}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dist := math.Hypot(b.X-a.X, b.Y-a.Y)
		steps := int(dist / pitch)
		for s := 1; s <= steps; s++ {
			f := float64(s) / float64(steps+1)
			out = append(out, geom.Point{X: a.X + (b.X-a.X)*f, Y: a.Y + (b.Y-a.Y)*f})
		}
		out = append(out, b)
	}
	return out
}
