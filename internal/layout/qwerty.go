package layout

import (
	"github.com/verte-zerg/gliss/internal/geom"
	"github.com/verte-zerg/gliss/internal/model"
)

// SpaceLabel and DeleteLabel are the control keys the classifier anchors
// cursor-move and swipe-delete gestures to.
const (
	SpaceLabel  = "space"
	DeleteLabel = "backspace"
)

var qwertyRows = []string{
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
}

// Row stagger offsets in key-width units, matching a phone keyboard.
var qwertyStagger = []float64{0, 0.5, 1.5}

// QWERTY generates a staggered QWERTY layout with the given key pitch.
// The bottom row carries the space and backspace control keys.
func QWERTY(pitch float64) *Layout {
	if pitch <= 0 {
		pitch = 80
	}
	keyW := pitch
	keyH := pitch * 1.2
	var keys []model.KeyGeometry
	for row, letters := range qwertyRows {
		x := qwertyStagger[row] * keyW
		y := float64(row) * keyH
		for _, r := range letters {
			keys = append(keys, model.KeyGeometry{
				Label:  string(r),
				Bounds: geom.Rect{X: x, Y: y, W: keyW, H: keyH},
				Type:   model.KeyCharacter,
			})
			x += keyW
		}
	}
	bottomY := float64(len(qwertyRows)) * keyH
	keys = append(keys,
		model.KeyGeometry{
			Label:  DeleteLabel,
			Bounds: geom.Rect{X: 8 * keyW, Y: bottomY, W: 2 * keyW, H: keyH},
			Type:   model.KeyControl,
		},
		model.KeyGeometry{
			Label:  SpaceLabel,
			Bounds: geom.Rect{X: 2 * keyW, Y: bottomY, W: 5 * keyW, H: keyH},
			Type:   model.KeyControl,
		},
	)
	l, err := New("qwerty", keys)
	if err != nil {
		// Generated geometry is valid by construction.
		panic(err)
	}
	return l
}
