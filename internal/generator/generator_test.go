package generator

import (
	"testing"

	"github.com/verte-zerg/gliss/internal/dict"
	"github.com/verte-zerg/gliss/internal/layout"
	"github.com/verte-zerg/gliss/internal/model"
)

func TestTraceShapesATouchStream(t *testing.T) {
	lay := layout.QWERTY(80)
	g := NewSeeded(1)

	events, err := g.Trace(lay, "test", DefaultOptions(), 1)
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if len(events) < 4 {
		t.Fatalf("expected a dense sample stream, got %d events", len(events))
	}
	if events[0].Phase != model.TouchDown {
		t.Fatalf("first phase = %v, want TouchDown", events[0].Phase)
	}
	if events[len(events)-1].Phase != model.TouchUp {
		t.Fatalf("last phase = %v, want TouchUp", events[len(events)-1].Phase)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Phase == model.TouchDown {
			t.Fatalf("unexpected TouchDown at index %d", i)
		}
		if events[i].T <= events[i-1].T {
			t.Fatalf("timestamps not increasing at index %d: %d <= %d", i, events[i].T, events[i-1].T)
		}
	}

	// Endpoints are jitter-free key centers.
	tKey, _ := lay.Key("t")
	c := tKey.Bounds.Center()
	if events[0].X != c.X || events[0].Y != c.Y {
		t.Fatalf("start = (%v, %v), want t center (%v, %v)", events[0].X, events[0].Y, c.X, c.Y)
	}
	last := events[len(events)-1]
	if last.X != c.X || last.Y != c.Y {
		t.Fatalf("end = (%v, %v), want t center (%v, %v)", last.X, last.Y, c.X, c.Y)
	}
}

func TestTraceRejectsOffLayoutWord(t *testing.T) {
	g := NewSeeded(1)
	if _, err := g.Trace(layout.QWERTY(80), "123", DefaultOptions(), 1); err == nil {
		t.Fatal("expected an error for a word with no keys")
	}
}

func TestRecordingValidates(t *testing.T) {
	lay := layout.QWERTY(80)
	g := NewSeeded(7)

	rec, err := g.Recording(lay, "en", []string{"test", "rest"}, DefaultOptions())
	if err != nil {
		t.Fatalf("Recording: %v", err)
	}
	if err := rec.Validate(); err != nil {
		t.Fatalf("synthetic recording failed validation: %v", err)
	}
	if got := len(rec.Gestures()); got != 2 {
		t.Fatalf("gesture count = %d, want 2", got)
	}
}

func TestWeightedWordsPrefersWeakLetters(t *testing.T) {
	d := dict.New("en", []model.DictionaryEntry{
		{Word: "zzz", Frequency: 10},
		{Word: "aaa", Frequency: 10},
	})
	g := NewSeeded(3)

	weak := map[rune]struct{}{'z': {}}
	words := g.WeightedWords(d, 60, weak, 100)
	counts := map[string]int{}
	for _, w := range words {
		counts[w]++
	}
	if counts["zzz"] <= counts["aaa"] {
		t.Fatalf("weak-letter bias missing: zzz=%d aaa=%d", counts["zzz"], counts["aaa"])
	}
}
