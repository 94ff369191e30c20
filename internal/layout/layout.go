// Package layout provides immutable key layout snapshots for the decoder.
package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/gliss/internal/geom"
	"github.com/verte-zerg/gliss/internal/model"
)

// Layout is an immutable snapshot of the visible keys of one keyboard layer.
// The decoder treats one Layout reference as valid for the duration of a
// single gesture; layout switches produce a new snapshot.
type Layout struct {
	name    string
	keys    []model.KeyGeometry
	byLabel map[string]int
	avgW    float64
	avgH    float64
}

// New builds a Layout from key geometries. Keys with empty labels or
// zero-area bounds are rejected.
func New(name string, keys []model.KeyGeometry) (*Layout, error) {
	if name == "" {
		return nil, fmt.Errorf("layout name is required")
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("layout has no keys")
	}
	l := &Layout{
		name:    name,
		keys:    make([]model.KeyGeometry, len(keys)),
		byLabel: make(map[string]int, len(keys)),
	}
	copy(l.keys, keys)
	var sumW, sumH float64
	for i, k := range l.keys {
		if k.Label == "" {
			return nil, fmt.Errorf("key %d has an empty label", i)
		}
		if k.Bounds.Empty() {
			return nil, fmt.Errorf("key %q has zero-area bounds", k.Label)
		}
		if _, dup := l.byLabel[k.Label]; dup {
			return nil, fmt.Errorf("duplicate key label %q", k.Label)
		}
		l.byLabel[k.Label] = i
		sumW += k.Bounds.W
		sumH += k.Bounds.H
	}
	l.avgW = sumW / float64(len(l.keys))
	l.avgH = sumH / float64(len(l.keys))
	return l, nil
}

// Name returns the layout's identifier.
func (l *Layout) Name() string { return l.name }

// Keys returns the layout's keys. Callers must not mutate the slice.
func (l *Layout) Keys() []model.KeyGeometry { return l.keys }

// AverageKeyWidth returns the mean key width, the decoder's base unit for
// resampling distances and score normalization.
func (l *Layout) AverageKeyWidth() float64 { return l.avgW }

// Key looks up a key by label.
func (l *Layout) Key(label string) (model.KeyGeometry, bool) {
	i, ok := l.byLabel[label]
	if !ok {
		return model.KeyGeometry{}, false
	}
	return l.keys[i], true
}

// KeyAt returns the topmost key whose bounds contain the point.
func (l *Layout) KeyAt(p geom.Point) (model.KeyGeometry, bool) {
	for _, k := range l.keys {
		if k.Bounds.Contains(p) {
			return k, true
		}
	}
	return model.KeyGeometry{}, false
}

// CharacterKeys returns only the keys that decode to letters.
func (l *Layout) CharacterKeys() []model.KeyGeometry {
	out := make([]model.KeyGeometry, 0, len(l.keys))
	for _, k := range l.keys {
		if k.Type == model.KeyCharacter {
			out = append(out, k)
		}
	}
	return out
}

// NearestCharacterKeys returns the n character keys whose centers are
// closest to p, nearest first. Ties break alphabetically so results are
// deterministic.
func (l *Layout) NearestCharacterKeys(p geom.Point, n int) []model.KeyGeometry {
	chars := l.CharacterKeys()
	sort.Slice(chars, func(i, j int) bool {
		di := chars[i].Bounds.Center().Distance(p)
		dj := chars[j].Bounds.Center().Distance(p)
		if di == dj {
			return chars[i].Label < chars[j].Label
		}
		return di < dj
	})
	if n > len(chars) {
		n = len(chars)
	}
	return chars[:n]
}

// IdealPath returns the polyline through the key centers of the word's
// letters. Letters without a matching character key are skipped; fewer than
// one resolvable letter yields nil.
func (l *Layout) IdealPath(word string) []geom.Point {
	var pts []geom.Point
	for _, r := range word {
		k, ok := l.Key(strings.ToLower(string(r)))
		if !ok || k.Type != model.KeyCharacter {
			continue
		}
		pts = append(pts, k.Bounds.Center())
	}
	return pts
}
