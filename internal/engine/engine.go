// Package engine turns a raw touch stream into classified gestures and
// ranked word candidates.
//
// Sample ingestion runs synchronously on the caller's event-delivery
// goroutine — every call is O(1) amortized and never drops a touch sample.
// Ranking a finished swipe is the expensive part and runs on a background
// goroutine; starting a new gesture cancels an in-flight ranking, and a
// completed-but-stale result is discarded rather than delivered.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/gliss/internal/dict"
	"github.com/verte-zerg/gliss/internal/gesture"
	"github.com/verte-zerg/gliss/internal/hitbox"
	"github.com/verte-zerg/gliss/internal/layout"
	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/rank"
	"github.com/verte-zerg/gliss/internal/sequence"
	"github.com/verte-zerg/gliss/internal/track"
	"github.com/verte-zerg/gliss/internal/tuning"
)

// Config assembles an Engine.
type Config struct {
	Tuning     tuning.Tuning
	Layout     *layout.Layout
	Dictionary *dict.Dictionary
	// Logger for anomalies; nil falls back to slog.Default().
	Logger *slog.Logger
	// EventBuffer is the event channel capacity. Zero means 64.
	EventBuffer int
	// ShowPath enables advisory PathEvents for a trail renderer.
	ShowPath bool
	// Disabled turns off swipe decoding: gestures still classify, but no
	// ranking runs and no candidates are emitted.
	Disabled bool
}

// activeGesture bundles the per-gesture pipeline. Layout and dictionary are
// captured once at touch-down, so a layout switch mid-gesture cannot race
// with decoding.
type activeGesture struct {
	id         uint64
	tracker    *track.Tracker
	classifier *gesture.Classifier
	crossings  *hitbox.CrossingTracker
	lay        *layout.Layout
	d          *dict.Dictionary
}

// Engine is the gesture decoding pipeline.
type Engine struct {
	tun    tuning.Tuning
	hits   *hitbox.Engine
	log    *slog.Logger
	events chan Event

	showPath bool
	disabled bool

	mu       sync.Mutex
	lay      *layout.Layout
	d        *dict.Dictionary
	gen      uint64
	rankStop context.CancelFunc
	closed   bool

	current *activeGesture
	wg      sync.WaitGroup
}

// New validates the configuration and returns a ready Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Layout == nil {
		return nil, fmt.Errorf("layout is required")
	}
	if cfg.Dictionary == nil {
		return nil, fmt.Errorf("dictionary is required")
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	buffer := cfg.EventBuffer
	if buffer <= 0 {
		buffer = 64
	}
	return &Engine{
		tun:      cfg.Tuning,
		hits:     hitbox.NewEngine(cfg.Tuning),
		log:      log,
		events:   make(chan Event, buffer),
		showPath: cfg.ShowPath,
		disabled: cfg.Disabled,
		lay:      cfg.Layout,
		d:        cfg.Dictionary,
	}, nil
}

// Events returns the engine's output channel. It closes after Close once
// all in-flight work has drained.
func (e *Engine) Events() <-chan Event { return e.events }

// SetLayout swaps the layout snapshot used by subsequent gestures. An
// in-flight gesture keeps the snapshot it started with.
func (e *Engine) SetLayout(l *layout.Layout) {
	if l == nil {
		return
	}
	e.mu.Lock()
	e.lay = l
	e.mu.Unlock()
}

// SetDictionary swaps the dictionary used by subsequent gestures.
func (e *Engine) SetDictionary(d *dict.Dictionary) {
	if d == nil {
		return
	}
	e.mu.Lock()
	e.d = d
	e.mu.Unlock()
}

// HandleTouch feeds one host touch event. Must be called from a single
// goroutine.
func (e *Engine) HandleTouch(ev model.TouchEvent) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	switch ev.Phase {
	case model.TouchDown:
		e.beginGesture(ev)
	case model.TouchMove:
		e.moveGesture(ev)
	case model.TouchUp:
		e.endGesture(ev, false)
	case model.TouchCancel:
		e.endGesture(ev, true)
	}
}

func (e *Engine) beginGesture(ev model.TouchEvent) {
	e.mu.Lock()
	e.gen++
	id := e.gen
	lay, d := e.lay, e.d
	// A new gesture obsoletes any in-flight ranking.
	if e.rankStop != nil {
		e.rankStop()
		e.rankStop = nil
	}
	e.mu.Unlock()

	g := &activeGesture{
		id:         id,
		tracker:    track.New(e.tun, lay.AverageKeyWidth()),
		classifier: gesture.New(e.tun, lay),
		crossings:  hitbox.NewCrossingTracker(e.tun, lay, e.hits, e.log),
		lay:        lay,
		d:          d,
	}
	g.classifier.Begin()
	e.current = g
	e.feedSample(g, model.PathPoint{X: ev.X, Y: ev.Y, T: ev.T})
}

func (e *Engine) moveGesture(ev model.TouchEvent) {
	g := e.current
	if g == nil {
		return
	}
	e.feedSample(g, model.PathPoint{X: ev.X, Y: ev.Y, T: ev.T})
}

func (e *Engine) feedSample(g *activeGesture, p model.PathPoint) {
	if !g.tracker.Add(p) {
		return
	}
	kept := g.tracker.Path()
	g.crossings.Feed(kept[len(kept)-1], g.tracker.Velocity())
	if e.showPath {
		e.emitAdvisory(PathEvent{Gesture: g.id, Path: kept})
	}
}

func (e *Engine) endGesture(ev model.TouchEvent, cancelled bool) {
	g := e.current
	if g == nil {
		return
	}
	e.current = nil

	e.feedSample(g, model.PathPoint{X: ev.X, Y: ev.Y, T: ev.T})
	before := len(g.tracker.Path())
	path := g.tracker.Finish()
	if len(path) > before {
		// The lift sample was force-kept; the crossings must see it too.
		g.crossings.Feed(path[len(path)-1], g.tracker.Velocity())
	}

	var result model.GestureResult
	if cancelled {
		result = g.classifier.Cancel(path)
	} else {
		result = g.classifier.End(path, g.tracker.PeakVelocity())
	}
	e.emit(GestureEvent{Gesture: g.id, Result: result})

	if result.Kind != model.GestureSwipeType || e.disabled {
		return
	}

	crossings := g.crossings.Finish()
	raw := sequence.Build(e.tun, crossings)
	e.dispatchRanking(g, raw, path, crossings)
}

// dispatchRanking scores candidates on a background goroutine so the
// sampling path never waits on the dictionary scan.
func (e *Engine) dispatchRanking(g *activeGesture, raw string, path model.Path, crossings []model.KeyCrossing) {
	ctx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		cancel()
		return
	}
	e.rankStop = cancel
	e.mu.Unlock()

	ranker := rank.New(e.tun, g.lay, g.d)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()
		started := time.Now()
		candidates := ranker.Rank(ctx, raw, path, crossings)
		latency := time.Since(started)

		e.mu.Lock()
		stale := e.closed || g.id != e.gen || ctx.Err() != nil
		e.mu.Unlock()
		if stale {
			e.log.Debug("discarding stale ranking result", "gesture", g.id)
			return
		}
		e.emit(CandidatesEvent{
			Gesture:     g.id,
			RawSequence: raw,
			Candidates:  candidates,
			Latency:     latency,
		})
	}()
}

// emit blocks until the consumer takes the event: required events apply
// back-pressure instead of silently vanishing.
func (e *Engine) emit(ev Event) {
	e.events <- ev
}

// emitAdvisory drops the event when the channel is full.
func (e *Engine) emitAdvisory(ev Event) {
	select {
	case e.events <- ev:
	default:
		e.log.Debug("dropping advisory event, channel full")
	}
}

// Close cancels in-flight ranking, waits for workers, and closes the event
// channel. The engine is unusable afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	if e.rankStop != nil {
		e.rankStop()
		e.rankStop = nil
	}
	e.mu.Unlock()

	e.wg.Wait()
	close(e.events)
}
