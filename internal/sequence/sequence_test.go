package sequence

import (
	"testing"

	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/tuning"
)

func crossing(key string, entry uint64) model.KeyCrossing {
	return model.KeyCrossing{Key: key, EntryTime: entry, Duration: 30, Confidence: 0.8}
}

func TestBuildSimpleSequence(t *testing.T) {
	got := Build(tuning.Default(), []model.KeyCrossing{
		crossing("c", 0),
		crossing("a", 50),
		crossing("t", 100),
	})
	if got != "cat" {
		t.Fatalf("expected cat, got %q", got)
	}
}

func TestDoubledLetterWithDeliberatePause(t *testing.T) {
	// Two passes over l separated by more than the repeat gap: hello,
	// not helo.
	got := Build(tuning.Default(), []model.KeyCrossing{
		crossing("h", 0),
		crossing("e", 60),
		crossing("l", 120),
		crossing("l", 260),
		crossing("o", 330),
	})
	if got != "hello" {
		t.Fatalf("expected hello, got %q", got)
	}
}

func TestAccidentalLingeringCollapses(t *testing.T) {
	got := Build(tuning.Default(), []model.KeyCrossing{
		crossing("n", 0),
		crossing("o", 60),
		crossing("o", 100), // 40ms later: same dwell, not a repeat
	})
	if got != "no" {
		t.Fatalf("expected no, got %q", got)
	}
}

func TestRepeatThenDifferentKey(t *testing.T) {
	// A suppressed repeat must not block a later legitimate repeat.
	got := Build(tuning.Default(), []model.KeyCrossing{
		crossing("a", 0),
		crossing("a", 40),  // collapsed
		crossing("a", 200), // deliberate second a
		crossing("b", 260),
	})
	if got != "aab" {
		t.Fatalf("expected aab, got %q", got)
	}
}

func TestEmptyCrossings(t *testing.T) {
	if got := Build(tuning.Default(), nil); got != "" {
		t.Fatalf("expected empty sequence, got %q", got)
	}
}
