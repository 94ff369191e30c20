// Package tuning collects every empirical constant of the decoder in one
// place so thresholds can be tuned and tested independently of the
// algorithms that consume them.
package tuning

import "fmt"

// Tuning holds the decoder's tunable constants. All distances are in pixels
// unless stated otherwise; durations are in milliseconds.
type Tuning struct {
	// Sensitivity multiplies the effective key detection radius globally.
	Sensitivity float64

	// Path resampling.

	// MinSampleDistanceRatio is the fraction of the average key width a
	// touch must travel before a new sample is kept.
	MinSampleDistanceRatio float64
	// CurvatureThresholdDeg keeps a sample regardless of distance when the
	// turn angle between consecutive displacement vectors exceeds it.
	CurvatureThresholdDeg float64
	// VelocityWindow is the number of trailing kept samples used to
	// estimate instantaneous velocity.
	VelocityWindow int

	// Gesture classification.

	TapMaxDistance        float64
	TapMaxDurationMs      uint64
	SwipeTypeMinDistance  float64
	SwipeTypeMinDuration  uint64
	DeleteMinDistance     float64
	CursorMoveMinDistance float64
	// CursorMoveAxisRatio is how many times larger the horizontal
	// displacement must be than the vertical one for a cursor move.
	CursorMoveAxisRatio float64

	// Key membership.

	// GaussianSigma controls the falloff of the membership test over the
	// size-normalized offset from the key center.
	GaussianSigma float64
	// BaseRadiusRatio is the baseline effective detection radius as a
	// fraction of the key size at normal swipe speed.
	BaseRadiusRatio float64
	// AcceptThreshold is the minimum confidence for a point to count as
	// inside a key.
	AcceptThreshold float64
	// Velocity bands widen or tighten the effective key size. Speeds are
	// px/s, scales are multipliers on the base radius.
	VeryFastSpeed float64
	VeryFastScale float64
	FastSpeed     float64
	FastScale     float64
	NormalSpeed   float64
	NormalScale   float64
	SlowScale     float64

	// Crossing filtering.

	MinDwellMs        uint64
	MinMeanConfidence float64

	// Sequence building.

	// RepeatGapMs is the minimum time since a key was last appended before
	// a second crossing of the same key counts as a doubled letter.
	RepeatGapMs uint64

	// Candidate ranking.

	// LengthTolerance is the fractional band around the raw sequence
	// length when pruning dictionary words.
	LengthTolerance float64
	// AnchorKeys is how many nearest character keys around the path's
	// first and last points anchor the pruning pass.
	AnchorKeys int
	// ResamplePoints is the fixed point count both paths are resampled to
	// before shape comparison.
	ResamplePoints int
	// ShapeDecay and LocationDecay convert mean distances (normalized by
	// key width) into similarities via exp(-decay*distance).
	ShapeDecay    float64
	LocationDecay float64
	// Score weights. Location dominates: position on a touch keyboard is
	// the strongest signal.
	ShapeWeight     float64
	LocationWeight  float64
	FrequencyWeight float64
	// LiteralBonusWeight rewards candidates whose letters literally match
	// the raw key sequence.
	LiteralBonusWeight float64
	// VelocityConsistencyWeight is an experimental term with no validated
	// measurement method yet. Zero disables it.
	VelocityConsistencyWeight float64
	// MaxCandidates caps the pool surviving pruning, keeping the
	// highest-frequency entries, so ranking stays under its latency budget.
	MaxCandidates int
}

// Default returns the shipped tuning values.
func Default() Tuning {
	return Tuning{
		Sensitivity: 1.0,

		MinSampleDistanceRatio: 0.3,
		CurvatureThresholdDeg:  30,
		VelocityWindow:         5,

		TapMaxDistance:        25,
		TapMaxDurationMs:      250,
		SwipeTypeMinDistance:  80,
		SwipeTypeMinDuration:  100,
		DeleteMinDistance:     100,
		CursorMoveMinDistance: 60,
		CursorMoveAxisRatio:   1.5,

		GaussianSigma:   0.5,
		BaseRadiusRatio: 0.4,
		AcceptThreshold: 0.3,
		VeryFastSpeed:   2000,
		VeryFastScale:   1.75,
		FastSpeed:       1000,
		FastScale:       1.375,
		NormalSpeed:     500,
		NormalScale:     1.0,
		SlowScale:       0.75,

		MinDwellMs:        18,
		MinMeanConfidence: 0.4,

		RepeatGapMs: 90,

		LengthTolerance:           0.18,
		AnchorKeys:                3,
		ResamplePoints:            32,
		ShapeDecay:                2.0,
		LocationDecay:             2.5,
		ShapeWeight:               0.35,
		LocationWeight:            0.45,
		FrequencyWeight:           0.15,
		LiteralBonusWeight:        0.05,
		VelocityConsistencyWeight: 0,
		MaxCandidates:             250,
	}
}

// Validate reports the first implausible value, if any.
func (t Tuning) Validate() error {
	if t.Sensitivity <= 0 {
		return fmt.Errorf("sensitivity must be positive")
	}
	if t.MinSampleDistanceRatio <= 0 || t.MinSampleDistanceRatio > 1 {
		return fmt.Errorf("min sample distance ratio must be in (0, 1]")
	}
	if t.VelocityWindow < 2 {
		return fmt.Errorf("velocity window must be at least 2")
	}
	if t.GaussianSigma <= 0 {
		return fmt.Errorf("gaussian sigma must be positive")
	}
	if t.AcceptThreshold <= 0 || t.AcceptThreshold >= 1 {
		return fmt.Errorf("accept threshold must be in (0, 1)")
	}
	if t.AnchorKeys < 1 {
		return fmt.Errorf("anchor keys must be at least 1")
	}
	if t.ResamplePoints < 2 {
		return fmt.Errorf("resample points must be at least 2")
	}
	if t.MaxCandidates < 1 {
		return fmt.Errorf("max candidates must be at least 1")
	}
	total := t.ShapeWeight + t.LocationWeight + t.FrequencyWeight
	if total <= 0 {
		return fmt.Errorf("score weights must sum to a positive value")
	}
	return nil
}
