package tuning

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML tuning file. Pointer fields distinguish
// absent keys from explicit zero values, so a partial file only overrides
// what it names.
type FileConfig struct {
	Decoder DecoderConfig `toml:"decoder"`
	Scoring ScoringConfig `toml:"scoring"`
}

// DecoderConfig maps detection and classification settings.
type DecoderConfig struct {
	Sensitivity            *float64 `toml:"sensitivity"`
	MinSampleDistanceRatio *float64 `toml:"min-sample-distance-ratio"`
	CurvatureThresholdDeg  *float64 `toml:"curvature-threshold-deg"`
	TapMaxDistance         *float64 `toml:"tap-max-distance"`
	TapMaxDurationMs       *uint64  `toml:"tap-max-duration-ms"`
	SwipeTypeMinDistance   *float64 `toml:"swipe-min-distance"`
	SwipeTypeMinDuration   *uint64  `toml:"swipe-min-duration-ms"`
	DeleteMinDistance      *float64 `toml:"delete-min-distance"`
	CursorMoveMinDistance  *float64 `toml:"cursor-min-distance"`
	AcceptThreshold        *float64 `toml:"accept-threshold"`
	MinDwellMs             *uint64  `toml:"min-dwell-ms"`
	MinMeanConfidence      *float64 `toml:"min-mean-confidence"`
	RepeatGapMs            *uint64  `toml:"repeat-gap-ms"`
}

// ScoringConfig maps ranking settings.
type ScoringConfig struct {
	LengthTolerance           *float64 `toml:"length-tolerance"`
	AnchorKeys                *int     `toml:"anchor-keys"`
	ShapeWeight               *float64 `toml:"shape-weight"`
	LocationWeight            *float64 `toml:"location-weight"`
	FrequencyWeight           *float64 `toml:"frequency-weight"`
	LiteralBonusWeight        *float64 `toml:"literal-bonus-weight"`
	VelocityConsistencyWeight *float64 `toml:"velocity-consistency-weight"`
	MaxCandidates             *int     `toml:"max-candidates"`
}

// Load reads a TOML tuning file and applies it over the defaults.
// Missing file is not an error; the defaults are returned.
func Load(path string) (Tuning, error) {
	t := Default()
	if path == "" {
		return t, fmt.Errorf("tuning path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, fmt.Errorf("failed to stat tuning file: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return t, fmt.Errorf("failed to decode tuning file: %w", err)
	}
	cfg.apply(&t)
	if err := t.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid tuning file %s: %w", path, err)
	}
	return t, nil
}

func (c FileConfig) apply(t *Tuning) {
	d := c.Decoder
	setFloat(&t.Sensitivity, d.Sensitivity)
	setFloat(&t.MinSampleDistanceRatio, d.MinSampleDistanceRatio)
	setFloat(&t.CurvatureThresholdDeg, d.CurvatureThresholdDeg)
	setFloat(&t.TapMaxDistance, d.TapMaxDistance)
	setUint(&t.TapMaxDurationMs, d.TapMaxDurationMs)
	setFloat(&t.SwipeTypeMinDistance, d.SwipeTypeMinDistance)
	setUint(&t.SwipeTypeMinDuration, d.SwipeTypeMinDuration)
	setFloat(&t.DeleteMinDistance, d.DeleteMinDistance)
	setFloat(&t.CursorMoveMinDistance, d.CursorMoveMinDistance)
	setFloat(&t.AcceptThreshold, d.AcceptThreshold)
	setUint(&t.MinDwellMs, d.MinDwellMs)
	setFloat(&t.MinMeanConfidence, d.MinMeanConfidence)
	setUint(&t.RepeatGapMs, d.RepeatGapMs)

	s := c.Scoring
	setFloat(&t.LengthTolerance, s.LengthTolerance)
	setInt(&t.AnchorKeys, s.AnchorKeys)
	setFloat(&t.ShapeWeight, s.ShapeWeight)
	setFloat(&t.LocationWeight, s.LocationWeight)
	setFloat(&t.FrequencyWeight, s.FrequencyWeight)
	setFloat(&t.LiteralBonusWeight, s.LiteralBonusWeight)
	setFloat(&t.VelocityConsistencyWeight, s.VelocityConsistencyWeight)
	setInt(&t.MaxCandidates, s.MaxCandidates)
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setUint(dst *uint64, src *uint64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
