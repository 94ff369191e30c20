// Package record reads and writes gesture recordings: a captured touch
// stream plus the layout context it was captured on. Recordings are the
// interchange format between a capturing host and the decode and replay
// commands.
package record

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/verte-zerg/gliss/internal/model"
)

// Recording is one captured session. Events are host touch samples in
// capture order; timestamps are milliseconds from an arbitrary origin.
type Recording struct {
	Layout   string             `json:"layout"`
	Lang     string             `json:"lang,omitempty"`
	Captured time.Time          `json:"captured,omitempty"`
	Events   []model.TouchEvent `json:"events"`
}

// Validate checks that the recording is replayable.
func (r *Recording) Validate() error {
	if r.Layout == "" {
		return fmt.Errorf("recording has no layout name")
	}
	if len(r.Events) == 0 {
		return fmt.Errorf("recording has no events")
	}
	if r.Events[0].Phase != model.TouchDown {
		return fmt.Errorf("recording must start with a touch-down event")
	}
	var last uint64
	for i, ev := range r.Events {
		if ev.T < last {
			return fmt.Errorf("event %d moves backwards in time (%d -> %d)", i, last, ev.T)
		}
		last = ev.T
	}
	return nil
}

// Gestures splits the event stream into complete down..up/cancel runs.
// Trailing events without a terminating phase are dropped.
func (r *Recording) Gestures() [][]model.TouchEvent {
	var out [][]model.TouchEvent
	var current []model.TouchEvent
	for _, ev := range r.Events {
		switch ev.Phase {
		case model.TouchDown:
			current = []model.TouchEvent{ev}
		case model.TouchMove:
			if current != nil {
				current = append(current, ev)
			}
		case model.TouchUp, model.TouchCancel:
			if current != nil {
				current = append(current, ev)
				out = append(out, current)
				current = nil
			}
		}
	}
	return out
}

// Load reads and validates a recording file.
func Load(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}
	var r Recording
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse recording: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recording %s: %w", path, err)
	}
	return &r, nil
}

// Save writes the recording as indented JSON.
func Save(r *Recording, path string) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid recording: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode recording: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write recording: %w", err)
	}
	return nil
}
