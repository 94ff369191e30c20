package engine

import (
	"time"

	"github.com/verte-zerg/gliss/internal/model"
)

// Event is a decoder output delivered on the engine's event channel. The
// channel replaces per-listener callbacks so ordering and back-pressure are
// explicit: gesture and candidate events block the producer when the
// consumer falls behind, path events are advisory and get dropped instead.
type Event interface {
	isEvent()
}

// PathEvent carries the kept samples so far, for an optional visual trail
// renderer. Purely advisory; losing one never affects decoding.
type PathEvent struct {
	Gesture uint64
	Path    model.Path
}

// GestureEvent is emitted once per finished touch sequence.
type GestureEvent struct {
	Gesture uint64
	Result  model.GestureResult
}

// CandidatesEvent is emitted asynchronously after a swipe-type gesture.
// The caller commits the top candidate and may display alternates.
type CandidatesEvent struct {
	Gesture     uint64
	RawSequence string
	Candidates  []model.WordCandidate
	Latency     time.Duration
}

func (PathEvent) isEvent()       {}
func (GestureEvent) isEvent()    {}
func (CandidatesEvent) isEvent() {}
