// Package hitbox decides which keys a touch path plausibly belongs to and
// converts per-sample memberships into discrete key crossings.
package hitbox

import (
	"math"

	"github.com/verte-zerg/gliss/internal/geom"
	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/tuning"
)

// Engine computes probabilistic key membership with a Gaussian falloff over
// the size-normalized offset from the key center. The effective key size
// adapts to swipe velocity: fast swipes under-sample key centers, so the
// detection region widens to compensate; slow deliberate swipes tighten.
type Engine struct {
	tun tuning.Tuning
}

// NewEngine returns a membership engine for the given tuning.
func NewEngine(tun tuning.Tuning) *Engine {
	return &Engine{tun: tun}
}

// Membership returns the confidence in [0, 1] that the point belongs to the
// key at the given instantaneous velocity. Zero-area keys yield zero.
func (e *Engine) Membership(p geom.Point, key model.KeyGeometry, velocity float64) float64 {
	if key.Bounds.Empty() {
		return 0
	}
	scale := e.velocityScale(velocity) * e.tun.BaseRadiusRatio * e.tun.Sensitivity
	effW := key.Bounds.W * scale
	effH := key.Bounds.H * scale
	if effW <= 0 || effH <= 0 {
		return 0
	}
	off := p.Sub(key.Bounds.Center())
	nx := off.X / effW
	ny := off.Y / effH
	d := math.Sqrt(nx*nx + ny*ny)
	z := d / e.tun.GaussianSigma
	return math.Exp(-0.5 * z * z)
}

// Inside reports whether the confidence clears the acceptance threshold.
func (e *Engine) Inside(confidence float64) bool {
	return confidence >= e.tun.AcceptThreshold
}

func (e *Engine) velocityScale(velocity float64) float64 {
	switch {
	case velocity > e.tun.VeryFastSpeed:
		return e.tun.VeryFastScale
	case velocity > e.tun.FastSpeed:
		return e.tun.FastScale
	case velocity > e.tun.NormalSpeed:
		return e.tun.NormalScale
	default:
		return e.tun.SlowScale
	}
}
