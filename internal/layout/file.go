package layout

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/verte-zerg/gliss/internal/geom"
	"github.com/verte-zerg/gliss/internal/model"
)

// fileLayout is the JSON schema of a layout file: the same shape the
// original product stored its layout definitions in.
type fileLayout struct {
	Name string    `json:"name"`
	Keys []fileKey `json:"keys"`
}

type fileKey struct {
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
	Control bool   `json:"control,omitempty"`
}

// LoadFile reads a layout from a JSON file.
func LoadFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	var fl fileLayout
	if err := json.Unmarshal(data, &fl); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	keys := make([]model.KeyGeometry, 0, len(fl.Keys))
	for _, k := range fl.Keys {
		kt := model.KeyCharacter
		if k.Control {
			kt = model.KeyControl
		}
		keys = append(keys, model.KeyGeometry{
			Label:  k.Label,
			Bounds: geom.Rect{X: k.X, Y: k.Y, W: k.W, H: k.H},
			Type:   kt,
		})
	}
	return New(fl.Name, keys)
}

// SaveFile writes the layout as JSON, for exporting the built-in layouts.
func SaveFile(l *Layout, path string) error {
	fl := fileLayout{Name: l.Name()}
	for _, k := range l.Keys() {
		fl.Keys = append(fl.Keys, fileKey{
			Label:  k.Label,
			X:      k.Bounds.X,
			Y:      k.Bounds.Y,
			W:      k.Bounds.W,
			H:      k.Bounds.H,
			Control: k.Type == model.KeyControl,
		})
	}
	data, err := json.MarshalIndent(fl, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write layout: %w", err)
	}
	return nil
}
