package engine

import (
	"testing"
	"time"

	"github.com/verte-zerg/gliss/internal/dict"
	"github.com/verte-zerg/gliss/internal/layout"
	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/tuning"
)

func newTestEngine(t *testing.T, entries []model.DictionaryEntry) *Engine {
	t.Helper()
	e, err := New(Config{
		Tuning:     tuning.Default(),
		Layout:     layout.QWERTY(80),
		Dictionary: dict.New("en", entries),
	})
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	return e
}

// swipe feeds a touch sequence through the given waypoints, interpolating
// move samples between them.
func swipe(e *Engine, waypoints []model.PathPoint) {
	e.HandleTouch(model.TouchEvent{X: waypoints[0].X, Y: waypoints[0].Y, T: waypoints[0].T, Phase: model.TouchDown})
	for i := 1; i < len(waypoints); i++ {
		prev, next := waypoints[i-1], waypoints[i]
		const steps = 8
		for s := 1; s <= steps; s++ {
			f := float64(s) / steps
			e.HandleTouch(model.TouchEvent{
				X:     prev.X + (next.X-prev.X)*f,
				Y:     prev.Y + (next.Y-prev.Y)*f,
				T:     prev.T + uint64(float64(next.T-prev.T)*f),
				Phase: model.TouchMove,
			})
		}
	}
	last := waypoints[len(waypoints)-1]
	e.HandleTouch(model.TouchEvent{X: last.X, Y: last.Y, T: last.T, Phase: model.TouchUp})
}

func nextGesture(t *testing.T, e *Engine) GestureEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-e.Events():
			if !ok {
				t.Fatalf("event channel closed while waiting for a gesture")
			}
			if g, isGesture := ev.(GestureEvent); isGesture {
				return g
			}
		case <-deadline:
			t.Fatalf("timed out waiting for a gesture event")
		}
	}
}

func nextCandidates(t *testing.T, e *Engine) CandidatesEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-e.Events():
			if !ok {
				t.Fatalf("event channel closed while waiting for candidates")
			}
			if c, isCandidates := ev.(CandidatesEvent); isCandidates {
				return c
			}
		case <-deadline:
			t.Fatalf("timed out waiting for a candidates event")
		}
	}
}

func TestSwipeTypeEndToEnd(t *testing.T) {
	e := newTestEngine(t, []model.DictionaryEntry{
		{Word: "test", Frequency: 500},
		{Word: "rest", Frequency: 10},
	})
	defer e.Close()

	// t -> e -> s -> t through the QWERTY key centers, 400ms total.
	swipe(e, []model.PathPoint{
		{X: 360, Y: 48, T: 0},
		{X: 200, Y: 48, T: 130},
		{X: 160, Y: 144, T: 260},
		{X: 360, Y: 48, T: 400},
	})

	g := nextGesture(t, e)
	if g.Result.Kind != model.GestureSwipeType {
		t.Fatalf("expected swipe-type, got %v", g.Result.Kind)
	}
	c := nextCandidates(t, e)
	if len(c.Candidates) == 0 {
		t.Fatalf("expected candidates")
	}
	if c.Candidates[0].Word != "test" {
		t.Fatalf("expected test on top, got %q (raw %q)", c.Candidates[0].Word, c.RawSequence)
	}
	if c.Gesture != g.Gesture {
		t.Fatalf("expected candidates for gesture %d, got %d", g.Gesture, c.Gesture)
	}
}

func TestCursorMoveEmitsNoCandidates(t *testing.T) {
	e := newTestEngine(t, []model.DictionaryEntry{{Word: "test", Frequency: 1}})

	swipe(e, []model.PathPoint{
		{X: 360, Y: 336, T: 0},
		{X: 60, Y: 336, T: 200},
	})

	g := nextGesture(t, e)
	if g.Result.Kind != model.GestureCursorMove {
		t.Fatalf("expected cursor-move, got %v", g.Result.Kind)
	}
	if g.Result.Direction != model.DirectionLeft {
		t.Fatalf("expected left direction, got %v", g.Result.Direction)
	}

	// Closing drains workers; no candidates event may appear.
	e.Close()
	for ev := range e.Events() {
		if _, isCandidates := ev.(CandidatesEvent); isCandidates {
			t.Fatalf("unexpected candidates for a cursor move")
		}
	}
}

func TestTapClassification(t *testing.T) {
	e := newTestEngine(t, []model.DictionaryEntry{{Word: "test", Frequency: 1}})
	defer e.Close()

	e.HandleTouch(model.TouchEvent{X: 40, Y: 48, T: 0, Phase: model.TouchDown})
	e.HandleTouch(model.TouchEvent{X: 42, Y: 49, T: 60, Phase: model.TouchUp})

	g := nextGesture(t, e)
	if g.Result.Kind != model.GestureTap {
		t.Fatalf("expected tap, got %v", g.Result.Kind)
	}
}

func TestCancelledTouchSequence(t *testing.T) {
	e := newTestEngine(t, []model.DictionaryEntry{{Word: "test", Frequency: 1}})
	defer e.Close()

	e.HandleTouch(model.TouchEvent{X: 360, Y: 48, T: 0, Phase: model.TouchDown})
	e.HandleTouch(model.TouchEvent{X: 260, Y: 48, T: 100, Phase: model.TouchMove})
	e.HandleTouch(model.TouchEvent{X: 200, Y: 48, T: 150, Phase: model.TouchCancel})

	g := nextGesture(t, e)
	if g.Result.Kind != model.GestureCancelled {
		t.Fatalf("expected cancelled, got %v", g.Result.Kind)
	}
}

func TestDisabledEngineSkipsRanking(t *testing.T) {
	e, err := New(Config{
		Tuning:     tuning.Default(),
		Layout:     layout.QWERTY(80),
		Dictionary: dict.New("en", []model.DictionaryEntry{{Word: "test", Frequency: 500}}),
		Disabled:   true,
	})
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}

	swipe(e, []model.PathPoint{
		{X: 360, Y: 48, T: 0},
		{X: 200, Y: 48, T: 130},
		{X: 160, Y: 144, T: 260},
		{X: 360, Y: 48, T: 400},
	})
	g := nextGesture(t, e)
	if g.Result.Kind != model.GestureSwipeType {
		t.Fatalf("expected classification to still run, got %v", g.Result.Kind)
	}
	e.Close()
	for ev := range e.Events() {
		if _, isCandidates := ev.(CandidatesEvent); isCandidates {
			t.Fatalf("disabled engine must not emit candidates")
		}
	}
}

func TestPathEventsOnlyWhenEnabled(t *testing.T) {
	e, err := New(Config{
		Tuning:     tuning.Default(),
		Layout:     layout.QWERTY(80),
		Dictionary: dict.New("en", []model.DictionaryEntry{{Word: "test", Frequency: 1}}),
		ShowPath:   true,
	})
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	defer e.Close()

	e.HandleTouch(model.TouchEvent{X: 40, Y: 48, T: 0, Phase: model.TouchDown})
	e.HandleTouch(model.TouchEvent{X: 140, Y: 48, T: 50, Phase: model.TouchMove})
	e.HandleTouch(model.TouchEvent{X: 240, Y: 48, T: 100, Phase: model.TouchUp})

	sawPath := false
	deadline := time.After(2 * time.Second)
	for !sawPath {
		select {
		case ev := <-e.Events():
			switch ev.(type) {
			case PathEvent:
				sawPath = true
			case GestureEvent:
				if !sawPath {
					t.Fatalf("expected path events before the gesture event")
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for a path event")
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	e := newTestEngine(t, []model.DictionaryEntry{{Word: "test", Frequency: 1}})
	e.Close()
	e.Close()
	e.HandleTouch(model.TouchEvent{X: 0, Y: 0, T: 0, Phase: model.TouchDown})
}
