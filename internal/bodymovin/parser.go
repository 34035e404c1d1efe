package bodymovin

import (
	"encoding/json"
	"fmt"
)

// Parse decodes a Bodymovin JSON document and normalizes defaults. The
// returned composition is treated as immutable by the rest of the engine:
// parse once, share everywhere.
func Parse(data []byte) (*Composition, error) {
	var comp Composition
	if err := json.Unmarshal(data, &comp); err != nil {
		return nil, fmt.Errorf("failed to parse animation json: %w", err)
	}

	if comp.FrameRate <= 0 {
		return nil, fmt.Errorf("invalid frame rate %g: must be positive", comp.FrameRate)
	}
	if comp.OutPoint <= comp.InPoint {
		return nil, fmt.Errorf("invalid frame span ip=%g op=%g: op must be greater than ip",
			comp.InPoint, comp.OutPoint)
	}
	if len(comp.Layers) == 0 {
		return nil, fmt.Errorf("animation %q has no layers", comp.Name)
	}

	normalizeLayers(comp.Layers)
	for i := range comp.Assets {
		normalizeLayers(comp.Assets[i].Layers)
	}

	return &comp, nil
}

// normalizeLayers fills in format defaults that decode as zero values.
func normalizeLayers(layers []Layer) {
	for i := range layers {
		if layers[i].Stretch == 0 {
			layers[i].Stretch = 1
		}
	}
}
