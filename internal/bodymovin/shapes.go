package bodymovin

import (
	"encoding/json"
	"fmt"
)

// Shape item type tags as stored in the "ty" field.
const (
	ShapeGroup          = "gr"
	ShapePath           = "sh"
	ShapeRect           = "rc"
	ShapeEllipse        = "el"
	ShapeStar           = "sr"
	ShapeFill           = "fl"
	ShapeStroke         = "st"
	ShapeGradientFill   = "gf"
	ShapeGradientStroke = "gs"
	ShapeTransform      = "tr"
	ShapeTrim           = "tm"
	ShapeRepeater       = "rp"
	ShapeMerge          = "mm"
	ShapeRoundCorners   = "rd"
)

// ShapeItem is one entry of a shape layer's item list or of a group's "it"
// list. Items are polymorphic on the "ty" tag; exactly one of the kind
// fields below is non-nil, matching Type. Unknown tags decode into an item
// with only Type, Name and Hidden set, which renderers skip.
type ShapeItem struct {
	Type   string
	Name   string
	Hidden bool

	Group          *GroupShape
	Path           *PathShape
	Rect           *RectShape
	Ellipse        *EllipseShape
	Star           *StarShape
	Fill           *FillShape
	Stroke         *StrokeShape
	GradientFill   *GradientFillShape
	GradientStroke *GradientStrokeShape
	Transform      *Transform
	Trim           *TrimShape
	Repeater       *RepeaterShape
}

// UnmarshalJSON decodes the "ty" tag first and then the matching kind
// struct from the same object.
func (s *ShapeItem) UnmarshalJSON(data []byte) error {
	var head struct {
		Type   string `json:"ty"`
		Name   string `json:"nm"`
		Hidden bool   `json:"hd"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("failed to read shape item header: %w", err)
	}
	s.Type = head.Type
	s.Name = head.Name
	s.Hidden = head.Hidden

	var dst any
	switch head.Type {
	case ShapeGroup:
		s.Group = &GroupShape{}
		dst = s.Group
	case ShapePath:
		s.Path = &PathShape{}
		dst = s.Path
	case ShapeRect:
		s.Rect = &RectShape{}
		dst = s.Rect
	case ShapeEllipse:
		s.Ellipse = &EllipseShape{}
		dst = s.Ellipse
	case ShapeStar:
		s.Star = &StarShape{}
		dst = s.Star
	case ShapeFill:
		s.Fill = &FillShape{}
		dst = s.Fill
	case ShapeStroke:
		s.Stroke = &StrokeShape{}
		dst = s.Stroke
	case ShapeGradientFill:
		s.GradientFill = &GradientFillShape{}
		dst = s.GradientFill
	case ShapeGradientStroke:
		s.GradientStroke = &GradientStrokeShape{}
		dst = s.GradientStroke
	case ShapeTransform:
		s.Transform = &Transform{}
		dst = s.Transform
	case ShapeTrim:
		s.Trim = &TrimShape{}
		dst = s.Trim
	case ShapeRepeater:
		s.Repeater = &RepeaterShape{}
		dst = s.Repeater
	default:
		// Unknown or unsupported item: keep the tag, drop the payload.
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %q shape item: %w", head.Type, err)
	}
	return nil
}

// GroupShape nests a list of shape items under a shared transform (the
// group's "tr" item inside Items).
type GroupShape struct {
	Items []ShapeItem `json:"it"`
}

// FindTransform returns the group's transform item, or nil.
func (g *GroupShape) FindTransform() *Transform {
	for i := range g.Items {
		if g.Items[i].Type == ShapeTransform && g.Items[i].Transform != nil {
			return g.Items[i].Transform
		}
	}
	return nil
}

// PathShape is a free-form bezier path.
type PathShape struct {
	// Shape is the animatable bezier payload ("ks")
	Shape ShapeProp `json:"ks"`

	// Direction reverses winding when 3 ("d")
	Direction int `json:"d"`
}

// RectShape is a rectangle centered on Position.
type RectShape struct {
	Position  *MultiValue `json:"p"`
	Size      *MultiValue `json:"s"`
	Roundness *Value      `json:"r"`
	Direction int         `json:"d"`
}

// EllipseShape is an ellipse centered on Position.
type EllipseShape struct {
	Position  *MultiValue `json:"p"`
	Size      *MultiValue `json:"s"`
	Direction int         `json:"d"`
}

// Star kinds ("sy").
const (
	StarKindStar    = 1
	StarKindPolygon = 2
)

// StarShape is a parametric star or regular polygon centered on Position.
type StarShape struct {
	Position       *MultiValue `json:"p"`
	Points         *Value      `json:"pt"`
	Rotation       *Value      `json:"r"`
	OuterRadius    *Value      `json:"or"`
	OuterRoundness *Value      `json:"os"`
	InnerRadius    *Value      `json:"ir"`
	InnerRoundness *Value      `json:"is"`
	Kind           int         `json:"sy"`
	Direction      int         `json:"d"`
}

// Fill rules ("r" on fills).
const (
	FillRuleNonZero = 1
	FillRuleEvenOdd = 2
)

// FillShape paints the geometry accumulated in its group with a solid color.
type FillShape struct {
	// Color components in [0, 1] ("c")
	Color *MultiValue `json:"c"`

	// Opacity in percent ("o")
	Opacity *Value `json:"o"`

	// Rule is the fill rule (FillRuleNonZero or FillRuleEvenOdd)
	Rule int `json:"r"`
}

// Line caps ("lc") and joins ("lj"), numbered as in the format.
const (
	LineCapButt   = 1
	LineCapRound  = 2
	LineCapSquare = 3

	LineJoinMiter = 1
	LineJoinRound = 2
	LineJoinBevel = 3
)

// Dash element kinds ("n" inside "d").
const (
	DashLength = "d"
	DashGap    = "g"
	DashOffset = "o"
)

// Dash is one element of a stroke's dash pattern.
type Dash struct {
	Kind  string `json:"n"`
	Value *Value `json:"v"`
}

// StrokeShape strokes the geometry accumulated in its group.
type StrokeShape struct {
	Color      *MultiValue `json:"c"`
	Opacity    *Value      `json:"o"`
	Width      *Value      `json:"w"`
	Cap        int         `json:"lc"`
	Join       int         `json:"lj"`
	MiterLimit float64     `json:"ml"`
	Dashes     []Dash      `json:"d"`
}

// Gradient kinds ("t").
const (
	GradientLinear = 1
	GradientRadial = 2
)

// GradientStops is the raw stop table of a gradient ("g"): Count color
// stops stored as (offset, r, g, b) quads in Values, optionally followed
// by (offset, alpha) pairs.
type GradientStops struct {
	Count  int         `json:"p"`
	Values *MultiValue `json:"k"`
}

// GradientFillShape fills geometry with a linear or radial gradient.
type GradientFillShape struct {
	// Start and End points of the gradient axis ("s" / "e"); for radial
	// gradients Start is the center and End sets the radius
	Start *MultiValue `json:"s"`
	End   *MultiValue `json:"e"`

	// Kind is GradientLinear or GradientRadial ("t")
	Kind int `json:"t"`

	// Highlight length and angle of radial gradients ("h" / "a")
	Highlight      *Value `json:"h"`
	HighlightAngle *Value `json:"a"`

	Stops   GradientStops `json:"g"`
	Opacity *Value        `json:"o"`
	Rule    int           `json:"r"`
}

// GradientStrokeShape strokes geometry with a gradient.
type GradientStrokeShape struct {
	Start          *MultiValue   `json:"s"`
	End            *MultiValue   `json:"e"`
	Kind           int           `json:"t"`
	Highlight      *Value        `json:"h"`
	HighlightAngle *Value        `json:"a"`
	Stops          GradientStops `json:"g"`
	Opacity        *Value        `json:"o"`
	Width          *Value        `json:"w"`
	Cap            int           `json:"lc"`
	Join           int           `json:"lj"`
	MiterLimit     float64       `json:"ml"`
	Dashes         []Dash        `json:"d"`
}

// Trim modes ("m").
const (
	TrimSimultaneously = 1
	TrimIndividually   = 2
)

// TrimShape limits the group's geometry to a fraction of its arc length.
// Start and End are percentages, Offset is in degrees (360 = one full turn).
type TrimShape struct {
	Start  *Value `json:"s"`
	End    *Value `json:"e"`
	Offset *Value `json:"o"`
	Mode   int    `json:"m"`
}

// RepeaterShape draws the group's geometry Copies times, composing
// Transform once more for each copy.
type RepeaterShape struct {
	Copies    *Value            `json:"c"`
	Offset    *Value            `json:"o"`
	Transform RepeaterTransform `json:"tr"`
}

// RepeaterTransform is the per-copy transform of a repeater. StartOpacity
// applies to the first copy and EndOpacity to the last, with linear
// interpolation between.
type RepeaterTransform struct {
	Transform

	StartOpacity *Value `json:"so"`
	EndOpacity   *Value `json:"eo"`
}
