package layout

import (
	"path/filepath"
	"testing"

	"github.com/verte-zerg/gliss/internal/geom"
	"github.com/verte-zerg/gliss/internal/model"
)

func TestQWERTYShape(t *testing.T) {
	l := QWERTY(80)
	if got := len(l.CharacterKeys()); got != 26 {
		t.Fatalf("expected 26 character keys, got %d", got)
	}
	if _, ok := l.Key(SpaceLabel); !ok {
		t.Fatalf("expected a space key")
	}
	if _, ok := l.Key(DeleteLabel); !ok {
		t.Fatalf("expected a backspace key")
	}
	if l.AverageKeyWidth() <= 0 {
		t.Fatalf("expected positive average key width")
	}
}

func TestKeyAt(t *testing.T) {
	l := QWERTY(80)
	q, _ := l.Key("q")
	k, ok := l.KeyAt(q.Bounds.Center())
	if !ok || k.Label != "q" {
		t.Fatalf("expected q at its own center, got %v (%v)", k.Label, ok)
	}
	if _, ok := l.KeyAt(geom.Pt(-500, -500)); ok {
		t.Fatalf("expected no key far outside the layout")
	}
}

func TestNearestCharacterKeysDeterministic(t *testing.T) {
	l := QWERTY(80)
	g, _ := l.Key("g")
	center := g.Bounds.Center()
	first := l.NearestCharacterKeys(center, 3)
	second := l.NearestCharacterKeys(center, 3)
	if len(first) != 3 || first[0].Label != "g" {
		t.Fatalf("expected g to be its own nearest key, got %+v", first)
	}
	for i := range first {
		if first[i].Label != second[i].Label {
			t.Fatalf("expected deterministic ordering, got %v vs %v", first[i].Label, second[i].Label)
		}
	}
}

func TestIdealPathSkipsControlAndUnknown(t *testing.T) {
	l := QWERTY(80)
	pts := l.IdealPath("ab9")
	if len(pts) != 2 {
		t.Fatalf("expected 2 resolvable letters, got %d", len(pts))
	}
}

func TestRejectsZeroAreaKey(t *testing.T) {
	_, err := New("broken", []model.KeyGeometry{
		{Label: "a", Bounds: geom.Rect{W: 0, H: 10}},
	})
	if err == nil {
		t.Fatalf("expected zero-area key to be rejected")
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qwerty.json")
	src := QWERTY(80)
	if err := SaveFile(src, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Name() != src.Name() || len(loaded.Keys()) != len(src.Keys()) {
		t.Fatalf("expected identical layout after round trip")
	}
	space, ok := loaded.Key(SpaceLabel)
	if !ok || space.Type != model.KeyControl {
		t.Fatalf("expected space to stay a control key")
	}
}
