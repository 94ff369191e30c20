package hitbox

import (
	"testing"

	"github.com/verte-zerg/gliss/internal/geom"
	"github.com/verte-zerg/gliss/internal/layout"
	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/tuning"
)

func testKey() model.KeyGeometry {
	return model.KeyGeometry{
		Label:  "g",
		Bounds: geom.Rect{X: 0, Y: 0, W: 80, H: 96},
		Type:   model.KeyCharacter,
	}
}

func TestMembershipPeaksAtCenter(t *testing.T) {
	e := NewEngine(tuning.Default())
	key := testKey()
	center := key.Bounds.Center()
	if conf := e.Membership(center, key, 600); conf < 0.999 {
		t.Fatalf("expected confidence ~1 at key center, got %v", conf)
	}
	far := e.Membership(center.Add(geom.Pt(200, 0)), key, 600)
	if far > 0.01 {
		t.Fatalf("expected near-zero confidence far from the key, got %v", far)
	}
}

func TestMembershipWidensWithVelocity(t *testing.T) {
	e := NewEngine(tuning.Default())
	key := testKey()
	off := key.Bounds.Center().Add(geom.Pt(30, 0))
	slow := e.Membership(off, key, 100)
	normal := e.Membership(off, key, 600)
	fast := e.Membership(off, key, 1500)
	veryFast := e.Membership(off, key, 2500)
	if !(slow < normal && normal < fast && fast < veryFast) {
		t.Fatalf("expected monotone widening: %v %v %v %v", slow, normal, fast, veryFast)
	}
}

func TestSensitivityScalesRadius(t *testing.T) {
	tun := tuning.Default()
	base := NewEngine(tun)
	tun.Sensitivity = 1.5
	wide := NewEngine(tun)
	key := testKey()
	off := key.Bounds.Center().Add(geom.Pt(30, 0))
	if wide.Membership(off, key, 600) <= base.Membership(off, key, 600) {
		t.Fatalf("expected higher sensitivity to widen detection")
	}
}

func TestZeroAreaKeyYieldsZero(t *testing.T) {
	e := NewEngine(tuning.Default())
	key := testKey()
	key.Bounds.W = 0
	if conf := e.Membership(geom.Pt(0, 0), key, 600); conf != 0 {
		t.Fatalf("expected zero confidence for zero-area key, got %v", conf)
	}
}

func TestCrossingsInEntryOrder(t *testing.T) {
	tun := tuning.Default()
	lay := layout.QWERTY(80)
	tracker := NewCrossingTracker(tun, lay, NewEngine(tun), nil)

	// Straight pass through q, w, e centers; the finger lingers on e.
	samples := []model.PathPoint{
		{X: 40, Y: 48, T: 0},
		{X: 120, Y: 48, T: 40},
		{X: 200, Y: 48, T: 80},
		{X: 205, Y: 50, T: 120},
	}
	for _, p := range samples {
		tracker.Feed(p, 600)
	}
	crossings := tracker.Finish()
	if len(crossings) != 3 {
		t.Fatalf("expected 3 crossings, got %d: %+v", len(crossings), crossings)
	}
	want := []string{"q", "w", "e"}
	for i, c := range crossings {
		if c.Key != want[i] {
			t.Fatalf("expected crossing %d to be %q, got %q", i, want[i], c.Key)
		}
		if c.Confidence < tun.MinMeanConfidence {
			t.Fatalf("expected surviving crossings to clear the confidence floor")
		}
	}
	// The final crossing was still open at path end.
	if crossings[2].ExitPoint != nil {
		t.Fatalf("expected the dangling crossing to have no exit point")
	}
	if crossings[2].Duration != 40 {
		t.Fatalf("expected dangling duration up to the final sample, got %d", crossings[2].Duration)
	}
}

func TestGlancingTouchDiscarded(t *testing.T) {
	tun := tuning.Default()
	lay := layout.QWERTY(80)
	tracker := NewCrossingTracker(tun, lay, NewEngine(tun), nil)

	// Through q's center and away again within 10ms: under min dwell.
	tracker.Feed(model.PathPoint{X: 40, Y: 48, T: 0}, 600)
	tracker.Feed(model.PathPoint{X: 400, Y: 300, T: 10}, 600)
	if crossings := tracker.Finish(); len(crossings) != 0 {
		t.Fatalf("expected glancing touch to be discarded, got %+v", crossings)
	}
	if tracker.Discarded() == 0 {
		t.Fatalf("expected the discard counter to record the rejection")
	}
}

func TestNegativeDurationClampedNotPropagated(t *testing.T) {
	tun := tuning.Default()
	lay := layout.QWERTY(80)
	tracker := NewCrossingTracker(tun, lay, NewEngine(tun), nil)

	// Clock skew: the closing sample claims an earlier time than entry.
	tracker.Feed(model.PathPoint{X: 40, Y: 48, T: 100}, 600)
	tracker.Feed(model.PathPoint{X: 400, Y: 300, T: 50}, 600)
	// Clamped to zero duration and therefore filtered as noise.
	if crossings := tracker.Finish(); len(crossings) != 0 {
		t.Fatalf("expected clamped crossing to be filtered, got %+v", crossings)
	}
}
