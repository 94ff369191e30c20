package rank

import (
	"context"
	"reflect"
	"testing"

	"github.com/verte-zerg/gliss/internal/dict"
	"github.com/verte-zerg/gliss/internal/geom"
	"github.com/verte-zerg/gliss/internal/layout"
	"github.com/verte-zerg/gliss/internal/model"
	"github.com/verte-zerg/gliss/internal/tuning"
)

// testPath returns a path through the key centers of the word's letters,
// spread over the given duration.
func testPath(t *testing.T, lay *layout.Layout, word string, durationMs uint64) (model.Path, []model.KeyCrossing) {
	t.Helper()
	centers := lay.IdealPath(word)
	if len(centers) < 2 {
		t.Fatalf("word %q has fewer than 2 resolvable letters", word)
	}
	step := durationMs / uint64(len(centers)-1)
	var path model.Path
	var crossings []model.KeyCrossing
	for i, c := range centers {
		p := model.PathPoint{X: c.X, Y: c.Y, T: uint64(i) * step}
		path = append(path, p)
		crossings = append(crossings, model.KeyCrossing{
			Key:        string([]rune(word)[i]),
			EntryPoint: p,
			EntryTime:  p.T,
			Duration:   30,
			Confidence: 0.9,
		})
	}
	return path, crossings
}

func TestScenarioTestBeatsRest(t *testing.T) {
	lay := layout.QWERTY(80)
	d := dict.New("en", []model.DictionaryEntry{
		{Word: "test", Frequency: 500},
		{Word: "rest", Frequency: 10},
	})
	r := New(tuning.Default(), lay, d)
	path, crossings := testPath(t, lay, "test", 400)

	got := r.Rank(context.Background(), "test", path, crossings)
	if len(got) == 0 {
		t.Fatalf("expected candidates")
	}
	if got[0].Word != "test" {
		t.Fatalf("expected test as top candidate, got %q", got[0].Word)
	}
}

func TestDeterministicRanking(t *testing.T) {
	lay := layout.QWERTY(80)
	d := dict.New("en", []model.DictionaryEntry{
		{Word: "test", Frequency: 500},
		{Word: "rest", Frequency: 10},
		{Word: "tet", Frequency: 50},
		{Word: "text", Frequency: 200},
	})
	r := New(tuning.Default(), lay, d)
	path, crossings := testPath(t, lay, "test", 400)

	first := r.Rank(context.Background(), "test", path, crossings)
	second := r.Rank(context.Background(), "test", path, crossings)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected bit-identical rankings, got %v vs %v", first, second)
	}
}

// mirrorLayout builds a three-key layout where b and c are mirror images
// across the horizontal line a path travels along, so candidates "ab" and
// "ac" score identically on shape and location.
func mirrorLayout(t *testing.T) *layout.Layout {
	t.Helper()
	l, err := layout.New("mirror", []model.KeyGeometry{
		{Label: "a", Bounds: geom.Rect{X: 0, Y: 48, W: 80, H: 96}, Type: model.KeyCharacter},
		{Label: "b", Bounds: geom.Rect{X: 80, Y: 0, W: 80, H: 96}, Type: model.KeyCharacter},
		{Label: "c", Bounds: geom.Rect{X: 80, Y: 96, W: 80, H: 96}, Type: model.KeyCharacter},
	})
	if err != nil {
		t.Fatalf("failed to build layout: %v", err)
	}
	return l
}

func TestFrequencyBreaksSymmetricTie(t *testing.T) {
	lay := mirrorLayout(t)
	path := model.Path{
		{X: 40, Y: 96, T: 0},
		{X: 80, Y: 96, T: 100},
		{X: 120, Y: 96, T: 200},
	}
	// Raw sequence "aq" is equidistant (edit distance 1) from both words,
	// so the literal bonus ties too.
	rank := func(freqAB, freqAC uint32) string {
		d := dict.New("en", []model.DictionaryEntry{
			{Word: "ab", Frequency: freqAB},
			{Word: "ac", Frequency: freqAC},
		})
		got := New(tuning.Default(), lay, d).Rank(context.Background(), "aq", path, nil)
		if len(got) != 2 {
			t.Fatalf("expected both candidates to survive, got %v", got)
		}
		return got[0].Word
	}
	if top := rank(100, 5); top != "ab" {
		t.Fatalf("expected higher-frequency ab on top, got %q", top)
	}
	if top := rank(5, 100); top != "ac" {
		t.Fatalf("expected higher-frequency ac on top, got %q", top)
	}
}

func TestEmptyDictionaryFallsBackToRawSequence(t *testing.T) {
	lay := layout.QWERTY(80)
	r := New(tuning.Default(), lay, dict.New("en", nil))
	path, crossings := testPath(t, lay, "test", 400)

	got := r.Rank(context.Background(), "test", path, crossings)
	if len(got) != 1 {
		t.Fatalf("expected exactly one fallback candidate, got %v", got)
	}
	if got[0].Word != "test" || !got[0].Fallback {
		t.Fatalf("expected raw-sequence fallback, got %+v", got[0])
	}
}

func TestNoCandidatesOutsideLengthBand(t *testing.T) {
	lay := layout.QWERTY(80)
	d := dict.New("en", []model.DictionaryEntry{
		{Word: "testing", Frequency: 500}, // too long for a 4-key sequence
	})
	r := New(tuning.Default(), lay, d)
	path, crossings := testPath(t, lay, "test", 400)

	got := r.Rank(context.Background(), "test", path, crossings)
	if len(got) != 1 || !got[0].Fallback {
		t.Fatalf("expected fallback when pruning removes everything, got %v", got)
	}
}

func TestCancelledContextReturnsNil(t *testing.T) {
	lay := layout.QWERTY(80)
	d := dict.New("en", []model.DictionaryEntry{{Word: "test", Frequency: 500}})
	r := New(tuning.Default(), lay, d)
	path, crossings := testPath(t, lay, "test", 400)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := r.Rank(ctx, "test", path, crossings); got != nil {
		t.Fatalf("expected nil for cancelled ranking, got %v", got)
	}
}

func TestEmptyRawSequenceYieldsNothing(t *testing.T) {
	lay := layout.QWERTY(80)
	d := dict.New("en", []model.DictionaryEntry{{Word: "test", Frequency: 500}})
	r := New(tuning.Default(), lay, d)
	path, _ := testPath(t, lay, "test", 400)

	if got := r.Rank(context.Background(), "", path, nil); len(got) != 0 {
		t.Fatalf("expected no candidates for an empty sequence, got %v", got)
	}
}

func TestResampleUniform(t *testing.T) {
	pts := resample([]geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, 5)
	if len(pts) != 5 {
		t.Fatalf("expected 5 points, got %d", len(pts))
	}
	for i, p := range pts {
		want := float64(i) * 2.5
		if diff := p.X - want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("expected x=%v at index %d, got %v", want, i, p.X)
		}
	}
}

func TestDTWIdenticalSequencesAreZero(t *testing.T) {
	seq := []geom.Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 0}}
	if d := dtwDistance(seq, seq); d != 0 {
		t.Fatalf("expected zero distance for identical sequences, got %v", d)
	}
}

func TestLiteralMatchRatio(t *testing.T) {
	if sim := literalMatch("test", "test"); sim != 1 {
		t.Fatalf("expected perfect literal match, got %v", sim)
	}
	if sim := literalMatch("test", "rest"); sim != 0.75 {
		t.Fatalf("expected 0.75 for one substitution over four runes, got %v", sim)
	}
}
