// Package track accumulates raw touch samples into resampled gesture paths.
package track

import (
	"math"

	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/tuning"
)

// Tracker performs adaptive resampling over a raw touch stream. A raw
// sample is kept when the distance since the last kept sample exceeds a
// fraction of the average key width, or when the local turn angle exceeds
// the curvature threshold — sharp corners survive even when a fast swipe
// under-samples them.
//
// Tracker is not safe for concurrent use; the engine feeds it from the
// single event-delivery goroutine.
type Tracker struct {
	tun         tuning.Tuning
	minDistance float64
	minTurnRad  float64

	path     model.Path
	lastRaw  model.PathPoint
	haveRaw  bool
	peakVel  float64
	finished bool
}

// New returns a Tracker for one gesture. avgKeyWidth scales the minimum
// sample distance; it comes from the layout snapshot.
func New(tun tuning.Tuning, avgKeyWidth float64) *Tracker {
	return &Tracker{
		tun:         tun,
		minDistance: tun.MinSampleDistanceRatio * avgKeyWidth,
		minTurnRad:  tun.CurvatureThresholdDeg * math.Pi / 180,
	}
}

// Add feeds one raw sample and reports whether it was kept. Timestamps
// that go backwards are clamped to the previous sample's time rather than
// rejected; the host clock is not trusted to be perfect.
func (t *Tracker) Add(p model.PathPoint) bool {
	if t.finished {
		return false
	}
	if t.haveRaw && p.T < t.lastRaw.T {
		p.T = t.lastRaw.T
	}
	t.lastRaw = p
	t.haveRaw = true

	if len(t.path) == 0 {
		t.path = append(t.path, p)
		return true
	}

	last := t.path[len(t.path)-1]
	dist := p.Pos().Distance(last.Pos())
	if dist >= t.minDistance || t.turnAngle(p) >= t.minTurnRad {
		t.trackVelocity(last, p, dist)
		t.path = append(t.path, p)
		return true
	}
	return false
}

// turnAngle measures the angle between the previous displacement vector and
// the displacement toward the candidate sample.
func (t *Tracker) turnAngle(p model.PathPoint) float64 {
	n := len(t.path)
	if n < 2 {
		return 0
	}
	prev := t.path[n-2].Pos()
	last := t.path[n-1].Pos()
	a := last.Sub(prev)
	b := p.Pos().Sub(last)
	return a.Angle(b)
}

func (t *Tracker) trackVelocity(last, p model.PathPoint, dist float64) {
	dt := p.T - last.T
	if dt == 0 {
		return
	}
	v := dist / float64(dt) * 1000
	if v > t.peakVel {
		t.peakVel = v
	}
}

// Velocity estimates the instantaneous speed in px/s over the trailing
// window of kept samples. A path too short to measure yields zero.
func (t *Tracker) Velocity() float64 {
	n := len(t.path)
	if n < 2 {
		return 0
	}
	start := n - t.tun.VelocityWindow
	if start < 0 {
		start = 0
	}
	var dist float64
	for i := start + 1; i < n; i++ {
		dist += t.path[i].Pos().Distance(t.path[i-1].Pos())
	}
	dt := t.path[n-1].T - t.path[start].T
	if dt == 0 {
		return 0
	}
	return dist / float64(dt) * 1000
}

// PeakVelocity returns the highest speed observed between kept samples.
func (t *Tracker) PeakVelocity() float64 { return t.peakVel }

// Path returns the kept samples so far. Callers must not mutate it.
func (t *Tracker) Path() model.Path { return t.path }

// Finish closes the gesture: the final raw sample is always kept so the
// path ends where the finger lifted, and the path is returned for
// classification. Further Add calls are ignored.
func (t *Tracker) Finish() model.Path {
	if t.finished {
		return t.path
	}
	t.finished = true
	if t.haveRaw && len(t.path) > 0 {
		last := t.path[len(t.path)-1]
		if t.lastRaw != last {
			t.trackVelocity(last, t.lastRaw, t.lastRaw.Pos().Distance(last.Pos()))
			t.path = append(t.path, t.lastRaw)
		}
	}
	return t.path
}
