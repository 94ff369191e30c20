// Package gesture classifies finished touch paths.
package gesture

import (
	"math"

	"github.com/verte-zerg/gliss/internal/layout"
	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/tuning"
)

// State is the classifier's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateTracking
	StateDone
)

// Classifier is a per-gesture state machine: Idle until the first touch,
// Tracking while the finger moves, Done once a terminal classification has
// been produced at touch-up or cancel.
type Classifier struct {
	tun   tuning.Tuning
	lay   *layout.Layout
	state State
}

// New returns a Classifier bound to one layout snapshot.
func New(tun tuning.Tuning, lay *layout.Layout) *Classifier {
	return &Classifier{tun: tun, lay: lay}
}

// State returns the current lifecycle state.
func (c *Classifier) State() State { return c.state }

// Begin moves the classifier into Tracking. Begin on an already-tracking
// classifier restarts it; hosts occasionally lose the Up event.
func (c *Classifier) Begin() {
	c.state = StateTracking
}

// Cancel terminates the gesture without classification.
func (c *Classifier) Cancel(path model.Path) model.GestureResult {
	c.state = StateDone
	return model.GestureResult{
		Kind:          model.GestureCancelled,
		Path:          path,
		TotalDistance: path.TotalDistance(),
		Duration:      path.Duration(),
	}
}

// End classifies the finished path. Priority order matters: swipe-to-type
// must win over direction-based gestures whenever at least two character
// keys were actually crossed, otherwise fast swipes that start near the
// space key would never type words.
func (c *Classifier) End(path model.Path, peakVelocity float64) model.GestureResult {
	c.state = StateDone
	result := model.GestureResult{
		Kind:          model.GestureCancelled,
		Path:          path,
		TotalDistance: path.TotalDistance(),
		Duration:      path.Duration(),
		PeakVelocity:  peakVelocity,
	}
	if len(path) < 2 {
		if len(path) == 1 {
			// A single sample is a touch with no movement: a tap.
			result.Kind = model.GestureTap
		}
		return result
	}

	if result.TotalDistance < c.tun.TapMaxDistance && result.Duration < c.tun.TapMaxDurationMs {
		result.Kind = model.GestureTap
		return result
	}

	touched := c.distinctCharacterKeys(path)
	if touched >= 2 &&
		result.TotalDistance >= c.tun.SwipeTypeMinDistance &&
		result.Duration >= c.tun.SwipeTypeMinDuration {
		result.Kind = model.GestureSwipeType
		return result
	}

	dx := path[len(path)-1].X - path[0].X
	dy := path[len(path)-1].Y - path[0].Y
	origin, onKey := c.lay.KeyAt(path[0].Pos())

	if onKey && origin.Label == layout.DeleteLabel && dx <= -c.tun.DeleteMinDistance {
		result.Kind = model.GestureSwipeDelete
		result.Direction = model.DirectionLeft
		result.Magnitude = -dx
		return result
	}

	if onKey && origin.Label == layout.SpaceLabel &&
		touched < 2 &&
		math.Abs(dx) >= c.tun.CursorMoveMinDistance &&
		math.Abs(dx) >= c.tun.CursorMoveAxisRatio*math.Abs(dy) {
		result.Kind = model.GestureCursorMove
		if dx < 0 {
			result.Direction = model.DirectionLeft
		} else {
			result.Direction = model.DirectionRight
		}
		result.Magnitude = math.Abs(dx)
		return result
	}

	return result
}

// distinctCharacterKeys counts character keys whose bounds contain at least
// one path sample. Plain containment is enough here; the probabilistic
// membership test only matters for decoding, not classification.
func (c *Classifier) distinctCharacterKeys(path model.Path) int {
	seen := make(map[string]struct{}, 8)
	for _, p := range path {
		k, ok := c.lay.KeyAt(p.Pos())
		if !ok || k.Type != model.KeyCharacter {
			continue
		}
		seen[k.Label] = struct{}{}
	}
	return len(seen)
}
