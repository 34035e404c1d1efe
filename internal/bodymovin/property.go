package bodymovin

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is an animatable scalar property. The "k" payload is either a plain
// number or a keyframe list; Animated tells which. Absent properties are
// represented by nil *Value pointers on the owning struct, so a zero Value
// is a static 0.
type Value struct {
	Animated  bool
	Static    float64
	Keyframes []Keyframe
}

// UnmarshalJSON accepts {"a":0,"k":12}, {"a":0,"k":[12]} and
// {"a":1,"k":[{keyframes}]}.
func (v *Value) UnmarshalJSON(data []byte) error {
	raw, err := decodeRawProperty(data)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		v.Static = f
		return nil
	}

	// Some exporters wrap static scalars in a one-element array.
	var arr []float64
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) > 0 {
			v.Static = arr[0]
		}
		return nil
	}

	var kfs []Keyframe
	if err := json.Unmarshal(raw, &kfs); err != nil {
		return fmt.Errorf("failed to decode scalar property: %w", err)
	}
	v.Animated = true
	v.Keyframes = kfs
	return nil
}

// MultiValue is an animatable vector property (positions, scales, colors,
// gradient stop tables). Component count follows the document.
type MultiValue struct {
	Animated  bool
	Static    []float64
	Keyframes []Keyframe
}

// UnmarshalJSON accepts {"a":0,"k":[x,y]}, {"a":0,"k":x} and
// {"a":1,"k":[{keyframes}]}.
func (m *MultiValue) UnmarshalJSON(data []byte) error {
	raw, err := decodeRawProperty(data)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	var arr []float64
	if err := json.Unmarshal(raw, &arr); err == nil {
		m.Static = arr
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		m.Static = []float64{f}
		return nil
	}

	var kfs []Keyframe
	if err := json.Unmarshal(raw, &kfs); err != nil {
		return fmt.Errorf("failed to decode vector property: %w", err)
	}
	m.Animated = true
	m.Keyframes = kfs
	return nil
}

// ShapeProp is an animatable bezier path property ("ks" of path shapes,
// "pt" of masks).
type ShapeProp struct {
	Animated  bool
	Static    Bezier
	Keyframes []ShapeKeyframe
}

// UnmarshalJSON accepts {"a":0,"k":{bezier}} and {"a":1,"k":[{keyframes}]}.
func (s *ShapeProp) UnmarshalJSON(data []byte) error {
	raw, err := decodeRawProperty(data)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(raw, &s.Static); err != nil {
			return fmt.Errorf("failed to decode shape property: %w", err)
		}
		return nil
	}

	var kfs []ShapeKeyframe
	if err := json.Unmarshal(raw, &kfs); err != nil {
		return fmt.Errorf("failed to decode shape keyframes: %w", err)
	}
	s.Animated = true
	s.Keyframes = kfs
	return nil
}

// decodeRawProperty extracts the "k" payload of a property object.
func decodeRawProperty(data []byte) (json.RawMessage, error) {
	var raw struct {
		K json.RawMessage `json:"k"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to read property object: %w", err)
	}
	return raw.K, nil
}

// Keyframe is one numeric keyframe. The segment from this keyframe to the
// next starts at Start and ends at End (or at the next keyframe's Start
// when End is absent), shaped by the Out/In easing control points stored on
// this keyframe. Hold keyframes freeze Start until the next keyframe.
type Keyframe struct {
	// Time is the keyframe's frame number
	Time float64 `json:"t"`

	// Start and End values; scalars decode as one-element lists
	Start FloatList `json:"s"`
	End   FloatList `json:"e"`

	// In and Out are the easing control points of the segment leaving
	// this keyframe
	In  *Ease `json:"i"`
	Out *Ease `json:"o"`

	// Hold is 1 for hold keyframes
	Hold int `json:"h"`

	// OutTangent and InTangent bend the spatial path of position
	// keyframes ("to" / "ti"), relative to Start and End
	OutTangent []float64 `json:"to"`
	InTangent  []float64 `json:"ti"`
}

// ShapeKeyframe is one keyframe of a ShapeProp. Start and End each hold a
// single bezier wrapped in a list.
type ShapeKeyframe struct {
	Time  float64  `json:"t"`
	Start []Bezier `json:"s"`
	End   []Bezier `json:"e"`
	In    *Ease    `json:"i"`
	Out   *Ease    `json:"o"`
	Hold  int      `json:"h"`
}

// Ease holds cubic-bezier easing control coordinates. X and Y are either
// one shared value or one value per animated component.
type Ease struct {
	X FloatList `json:"x"`
	Y FloatList `json:"y"`
}

// FloatList decodes a JSON number or array of numbers into a slice.
type FloatList []float64

// Component returns the entry for the given component index, clamping to
// the last entry the way multi-component eases are defined.
func (l FloatList) Component(i int) float64 {
	if len(l) == 0 {
		return 0
	}
	if i >= len(l) {
		i = len(l) - 1
	}
	return l[i]
}

// UnmarshalJSON accepts 0.5, [0.5] and [0.2, 0.4].
func (l *FloatList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var arr []float64
		if err := json.Unmarshal(data, &arr); err != nil {
			return fmt.Errorf("failed to decode number list: %w", err)
		}
		*l = arr
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to decode number: %w", err)
	}
	*l = FloatList{f}
	return nil
}

// Bezier is a cubic bezier path payload: Vertices are absolute points,
// In/Out are control point offsets relative to their vertex. Closed paths
// connect the last vertex back to the first.
type Bezier struct {
	Closed   bool        `json:"c"`
	Vertices [][]float64 `json:"v"`
	In       [][]float64 `json:"i"`
	Out      [][]float64 `json:"o"`
}

// Empty reports whether the path has no vertices.
func (b Bezier) Empty() bool {
	return len(b.Vertices) == 0
}
