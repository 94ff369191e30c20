// Package model defines shared data structures.
package model

import "github.com/verte-zerg/gliss/internal/geom"

// PathPoint is a single touch sample. T is milliseconds since an arbitrary
// epoch and is monotonically non-decreasing within a path.
type PathPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	T uint64  `json:"t"`
}

// Pos returns the sample position as a geom.Point.
func (p PathPoint) Pos() geom.Point {
	return geom.Point{X: p.X, Y: p.Y}
}

// Path is an ordered sequence of touch samples. A path with fewer than two
// points cannot form a gesture.
type Path []PathPoint

// Duration returns the elapsed milliseconds between the first and last sample.
func (p Path) Duration() uint64 {
	if len(p) < 2 {
		return 0
	}
	return p[len(p)-1].T - p[0].T
}

// TotalDistance returns the summed straight-line distance along the path.
func (p Path) TotalDistance() float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += p[i].Pos().Distance(p[i-1].Pos())
	}
	return total
}

// KeyType distinguishes character keys from control keys.
type KeyType int

const (
	// KeyCharacter keys contribute letters to decoded sequences.
	KeyCharacter KeyType = iota
	// KeyControl keys (space, backspace, shift, ...) never decode to letters.
	KeyControl
)

// KeyGeometry describes one visible key.
type KeyGeometry struct {
	Label  string
	Bounds geom.Rect
	Type   KeyType
}

// KeyCrossing records one contiguous interval during which the path was
// judged to be on a given key. ExitPoint is nil when the key was still
// active at path end. Confidence is fixed at creation time.
type KeyCrossing struct {
	Key        string
	EntryPoint PathPoint
	ExitPoint  *PathPoint
	EntryTime  uint64
	Duration   uint64
	Confidence float64
}

// GestureKind is the terminal classification of a touch sequence.
type GestureKind int

const (
	GestureCancelled GestureKind = iota
	GestureTap
	GestureSwipeType
	GestureSwipeDelete
	GestureCursorMove
)

func (k GestureKind) String() string {
	switch k {
	case GestureTap:
		return "tap"
	case GestureSwipeType:
		return "swipe-type"
	case GestureSwipeDelete:
		return "swipe-delete"
	case GestureCursorMove:
		return "cursor-move"
	case GestureCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Direction is the horizontal direction of a cursor-move or delete gesture.
type Direction int

const (
	DirectionNone  Direction = 0
	DirectionLeft  Direction = -1
	DirectionRight Direction = 1
)

// GestureResult is the classifier's output for one finished touch sequence.
type GestureResult struct {
	Kind          GestureKind
	Path          Path
	TotalDistance float64
	Duration      uint64
	PeakVelocity  float64
	// Direction is set for cursor-move and swipe-delete gestures only.
	Direction Direction
	// Magnitude is the absolute net horizontal displacement in pixels,
	// set alongside Direction.
	Magnitude float64
}

// DictionaryEntry is one read-only word with its corpus frequency.
type DictionaryEntry struct {
	Word      string
	Frequency uint32
}

// WordCandidate is one ranked decoding of a swipe. Scores are relative
// within a single ranking call, not normalized across calls.
type WordCandidate struct {
	Word  string
	Score float64
	// Fallback marks the raw key sequence returned when no dictionary
	// word survived pruning.
	Fallback bool
}

// TouchPhase describes one event in the host's touch stream.
type TouchPhase int

const (
	TouchDown TouchPhase = iota
	TouchMove
	TouchUp
	TouchCancel
)

// TouchEvent is the reduced form of a host input event.
type TouchEvent struct {
	X     float64    `json:"x"`
	Y     float64    `json:"y"`
	T     uint64     `json:"t"`
	Phase TouchPhase `json:"phase"`
}

// DecodeRecord captures one finished gesture for the history store.
type DecodeRecord struct {
	At           int64 // unix milliseconds
	Layout       string
	Lang         string
	Kind         GestureKind
	RawSequence  string
	TopWord      string
	CandidateCnt int
	LatencyMs    int64
	Fallback     bool
}

// KeyStat aggregates crossing quality for one key across gestures.
type KeyStat struct {
	Key       string
	Crossings int
	Discarded int
	MeanDwell float64
	MeanScore float64
}
