package replay

import (
	"testing"
	"time"

	"github.com/verte-zerg/gliss/internal/layout"
	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/record"
)

func TestKeyRowsGroupsByVerticalPosition(t *testing.T) {
	lay := layout.QWERTY(80)
	rows := keyRows(lay)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0][0].Label != "q" {
		t.Fatalf("expected q first, got %q", rows[0][0].Label)
	}
	last := rows[len(rows)-1]
	for _, key := range last {
		if key.Type != model.KeyControl {
			t.Fatalf("bottom row must be controls, got %q", key.Label)
		}
	}
}

func TestCandidateRowsMarksFallback(t *testing.T) {
	rows := candidateRows([]model.WordCandidate{
		{Word: "test", Score: 0.91},
		{Word: "tst", Score: 0.05, Fallback: true},
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "test" || rows[0][1] != "0.910" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1][0] != "tst *" {
		t.Fatalf("fallback marker missing: %v", rows[1])
	}
}

func TestNextDelayScalesAndCaps(t *testing.T) {
	rec := &record.Recording{
		Layout: "qwerty",
		Events: []model.TouchEvent{
			{T: 0, Phase: model.TouchDown},
			{T: 100, Phase: model.TouchMove},
			{T: 5000, Phase: model.TouchUp},
		},
	}
	m := &Model{rec: rec, speed: 2, idx: 1}
	if got := m.nextDelay(); got != 50*time.Millisecond {
		t.Fatalf("expected 50ms, got %s", got)
	}
	m.idx = 2
	if got := m.nextDelay(); got != maxStepDelay {
		t.Fatalf("long pauses must cap at %s, got %s", maxStepDelay, got)
	}
}
