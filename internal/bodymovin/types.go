// Package bodymovin provides data structures and parsers for Lottie/Bodymovin
// animation documents. A document describes a composition: a timed stack of
// layers (shapes, solids, images, nulls, precomps) whose transforms and
// contents are driven by keyframed properties.
package bodymovin

import "time"

// LayerType identifies the kind of content a layer carries.
type LayerType int

// Layer types as stored in the "ty" field.
const (
	LayerPrecomp LayerType = 0
	LayerSolid   LayerType = 1
	LayerImage   LayerType = 2
	LayerNull    LayerType = 3
	LayerShape   LayerType = 4
	LayerText    LayerType = 5
	LayerAudio   LayerType = 6
)

// Composition is the root of a Bodymovin document. Frame numbers throughout
// the document (ip, op, keyframe times, markers) are expressed on the
// composition's own timeline at FrameRate frames per second.
type Composition struct {
	// Version is the Bodymovin exporter version, e.g. "5.7.4"
	Version string `json:"v"`

	// Name is the composition name from the authoring tool
	Name string `json:"nm"`

	// FrameRate is the playback rate in frames per second
	FrameRate float64 `json:"fr"`

	// InPoint is the first frame of the composition
	InPoint float64 `json:"ip"`

	// OutPoint is the frame the composition ends on (exclusive)
	OutPoint float64 `json:"op"`

	// Width and Height are the design size in pixels
	Width  int `json:"w"`
	Height int `json:"h"`

	// ThreeD is 1 when the document uses 3D features (not rendered here)
	ThreeD int `json:"ddd"`

	// Assets holds images and precompositions referenced by refId
	Assets []Asset `json:"assets"`

	// Layers is the layer stack, topmost first
	Layers []Layer `json:"layers"`

	// Markers are named points on the timeline
	Markers []Marker `json:"markers"`
}

// Frames returns the playable frame span (op - ip).
func (c *Composition) Frames() float64 {
	return c.OutPoint - c.InPoint
}

// Duration returns the wall-clock length of one playthrough.
func (c *Composition) Duration() time.Duration {
	if c.FrameRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames() / c.FrameRate * float64(time.Second))
}

// Asset finds an asset by its refId. Returns nil when absent.
func (c *Composition) Asset(id string) *Asset {
	for i := range c.Assets {
		if c.Assets[i].ID == id {
			return &c.Assets[i]
		}
	}
	return nil
}

// Marker finds a marker by name. The second result is false when absent.
func (c *Composition) Marker(name string) (Marker, bool) {
	for _, m := range c.Markers {
		if m.Name == name {
			return m, true
		}
	}
	return Marker{}, false
}

// Layer is one entry of a layer stack. Fields apply depending on Type:
// solids use SolidColor/SolidWidth/SolidHeight, images and precomps
// reference an Asset through RefID, shape layers carry Shapes.
type Layer struct {
	// Type selects the layer kind (see LayerType constants)
	Type LayerType `json:"ty"`

	// Name is the layer name from the authoring tool
	Name string `json:"nm"`

	// Index is the layer id used as a Parent reference by other layers
	Index int `json:"ind"`

	// Parent is the Index of the layer whose transform chain this layer
	// inherits. nil when the layer is not parented.
	Parent *int `json:"parent"`

	// RefID names the Asset rendered by image and precomp layers
	RefID string `json:"refId"`

	// Transform is the layer transform ("ks")
	Transform Transform `json:"ks"`

	// InPoint and OutPoint bound the frames the layer is visible on.
	// The layer renders while ip <= frame < op.
	InPoint  float64 `json:"ip"`
	OutPoint float64 `json:"op"`

	// StartTime shifts the layer's local timeline ("st")
	StartTime float64 `json:"st"`

	// Stretch is the time stretch factor ("sr", 1 when unset)
	Stretch float64 `json:"sr"`

	// Hidden layers are skipped entirely
	Hidden bool `json:"hd"`

	// AutoOrient is 1 when the layer rotates to follow its position path
	// (not rendered here)
	AutoOrient int `json:"ao"`

	// Shapes is the shape item list of shape layers
	Shapes []ShapeItem `json:"shapes"`

	// SolidColor is the "#rrggbb" color of solid layers, with
	// SolidWidth/SolidHeight the solid's size in pixels
	SolidColor  string  `json:"sc"`
	SolidWidth  float64 `json:"sw"`
	SolidHeight float64 `json:"sh"`

	// Width and Height give the viewport of precomp layers
	Width  float64 `json:"w"`
	Height float64 `json:"h"`

	// Masks are the layer's mask paths
	Masks []Mask `json:"masksProperties"`

	// MatteMode is set when the layer is matted by the layer above ("tt",
	// not rendered here). MatteSource marks the layer that supplies a
	// matte; such layers do not draw themselves.
	MatteMode   *int `json:"tt"`
	MatteSource int  `json:"td"`

	// TimeRemap is the time remapping curve of precomp layers ("tm",
	// not rendered here)
	TimeRemap *Value `json:"tm"`
}

// Transform is the animatable transform block ("ks") of layers and shape
// groups. All fields are optional; nil means the Bodymovin default
// (anchor/position 0,0; scale 100,100; rotation 0; opacity 100; skew 0).
type Transform struct {
	// Anchor is the anchor point in layer coordinates ("a")
	Anchor *MultiValue `json:"a"`

	// Position in parent coordinates ("p")
	Position *MultiValue `json:"p"`

	// Scale in percent, 100 meaning unscaled ("s")
	Scale *MultiValue `json:"s"`

	// Rotation in degrees, clockwise ("r")
	Rotation *Value `json:"r"`

	// Opacity in percent, 100 meaning opaque ("o")
	Opacity *Value `json:"o"`

	// Skew in degrees along SkewAxis degrees ("sk" / "sa")
	Skew     *Value `json:"sk"`
	SkewAxis *Value `json:"sa"`
}

// AnchorAt returns the anchor point at the given frame.
func (t *Transform) AnchorAt(frame float64) (x, y float64) {
	return t.Anchor.PointOr(frame, 0, 0)
}

// PositionAt returns the position at the given frame.
func (t *Transform) PositionAt(frame float64) (x, y float64) {
	return t.Position.PointOr(frame, 0, 0)
}

// ScaleAt returns the scale at the given frame as fractions (1 = 100%).
func (t *Transform) ScaleAt(frame float64) (sx, sy float64) {
	x, y := t.Scale.PointOr(frame, 100, 100)
	return x / 100, y / 100
}

// RotationAt returns the rotation at the given frame in degrees.
func (t *Transform) RotationAt(frame float64) float64 {
	return t.Rotation.AtOr(frame, 0)
}

// OpacityAt returns the opacity at the given frame as a fraction in [0, 1].
func (t *Transform) OpacityAt(frame float64) float64 {
	o := t.Opacity.AtOr(frame, 100) / 100
	if o < 0 {
		return 0
	}
	if o > 1 {
		return 1
	}
	return o
}

// SkewAt returns the skew angle and skew axis at the given frame in degrees.
func (t *Transform) SkewAt(frame float64) (skew, axis float64) {
	return t.Skew.AtOr(frame, 0), t.SkewAxis.AtOr(frame, 0)
}

// Asset is an entry of the composition's asset table: an image (Path/Dir
// point at the file, or a data: URI when Embedded) or a precomposition
// (Layers non-nil).
type Asset struct {
	// ID is the refId layers use to reference this asset
	ID string `json:"id"`

	// Width and Height of image assets in pixels
	Width  int `json:"w"`
	Height int `json:"h"`

	// Dir and Path locate image files; Path holds a data: URI when the
	// image is embedded ("u" / "p")
	Dir  string `json:"u"`
	Path string `json:"p"`

	// Embedded is 1 when Path is a data: URI ("e")
	Embedded int `json:"e"`

	// Layers marks this asset as a precomposition
	Layers []Layer `json:"layers"`
}

// IsPrecomp reports whether the asset is a precomposition.
func (a *Asset) IsPrecomp() bool {
	return len(a.Layers) > 0
}

// Mask is one mask path of a layer. Only additive masks ("a") are rendered;
// other modes decode but are skipped.
type Mask struct {
	// Mode is the mask mode: "a" add, "s" subtract, "i" intersect,
	// "n" none, "f" darken, "l" lighten
	Mode string `json:"mode"`

	// Inverted flips the mask ("inv")
	Inverted bool `json:"inv"`

	// Path is the mask shape ("pt")
	Path ShapeProp `json:"pt"`

	// Opacity of the mask in percent ("o")
	Opacity *Value `json:"o"`
}

// Marker is a named point on the composition timeline, usable as a playback
// segment of Duration frames starting at Frame.
type Marker struct {
	// Name is the marker comment ("cm")
	Name string `json:"cm"`

	// Frame is the marker time in composition frames ("tm")
	Frame float64 `json:"tm"`

	// Duration is the marker length in frames ("dr"), 0 for point markers
	Duration float64 `json:"dr"`
}
