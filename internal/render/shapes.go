package render

import (
	"math"
	"sort"

	"github.com/gogpu/gg"

	"github.com/decker502/lottie/internal/bodymovin"
)

// shapeState carries the accumulated transform and opacity while walking a
// shape item tree. world maps group-local coordinates to device pixels.
type shapeState struct {
	world   gg.Matrix
	opacity float64
}

// modifier is a trim or repeater item in scope, remembered together with
// the device matrix of the group that declared it.
type modifier struct {
	trim  *bodymovin.TrimShape
	rep   *bodymovin.RepeaterShape
	world gg.Matrix
}

// paintBatch is one set of device-space subpaths to paint with a shared
// alpha factor. Repeaters expand a batch into one batch per copy.
type paintBatch struct {
	paths []subpath
	alpha float64
}

// drawShapes walks a shape item list in order. Geometry items accumulate
// device-space subpaths; paint items draw the geometry gathered so far;
// groups recurse with a composed state. Trim and repeater items apply to
// every paint in their scope, including nested groups.
func (r *Renderer) drawShapes(ctx *gg.Context, items []bodymovin.ShapeItem, frame float64, st shapeState, mods []modifier) error {
	for i := range items {
		it := &items[i]
		if it.Hidden {
			continue
		}
		switch it.Type {
		case bodymovin.ShapeTrim:
			if it.Trim != nil {
				mods = appendModifier(mods, modifier{trim: it.Trim, world: st.world})
			}
		case bodymovin.ShapeRepeater:
			if it.Repeater != nil {
				mods = appendModifier(mods, modifier{rep: it.Repeater, world: st.world})
			}
		}
	}

	var geom []subpath
	for i := range items {
		it := &items[i]
		if it.Hidden {
			continue
		}
		switch it.Type {
		case bodymovin.ShapeGroup:
			if it.Group == nil {
				continue
			}
			gst := st
			if tr := it.Group.FindTransform(); tr != nil {
				gst.world = st.world.Multiply(transformMatrix(tr, frame))
				gst.opacity = st.opacity * tr.OpacityAt(frame)
			}
			if err := r.drawShapes(ctx, it.Group.Items, frame, gst, mods); err != nil {
				return err
			}

		case bodymovin.ShapePath:
			if it.Path == nil {
				continue
			}
			if sp, ok := bezierSubpath(it.Path.Shape.At(frame)); ok {
				if it.Path.Direction == 3 {
					sp = sp.reversed()
				}
				geom = append(geom, sp.transformed(st.world))
			}

		case bodymovin.ShapeRect:
			if it.Rect == nil {
				continue
			}
			cx, cy := it.Rect.Position.PointOr(frame, 0, 0)
			w, h := it.Rect.Size.PointOr(frame, 0, 0)
			sp := rectSubpath(cx, cy, w, h, it.Rect.Roundness.At(frame))
			if it.Rect.Direction == 3 {
				sp = sp.reversed()
			}
			geom = append(geom, sp.transformed(st.world))

		case bodymovin.ShapeEllipse:
			if it.Ellipse == nil {
				continue
			}
			cx, cy := it.Ellipse.Position.PointOr(frame, 0, 0)
			w, h := it.Ellipse.Size.PointOr(frame, 0, 0)
			sp := ellipseSubpath(cx, cy, w/2, h/2)
			if it.Ellipse.Direction == 3 {
				sp = sp.reversed()
			}
			geom = append(geom, sp.transformed(st.world))

		case bodymovin.ShapeStar:
			if it.Star == nil {
				continue
			}
			if sp, ok := starSubpath(it.Star, frame); ok {
				geom = append(geom, sp.transformed(st.world))
			}

		case bodymovin.ShapeFill:
			if it.Fill == nil {
				continue
			}
			f := it.Fill
			alpha := f.Opacity.AtOr(frame, 100) / 100 * st.opacity
			col := colorComponents(f.Color, frame)
			err := r.paintFill(ctx, applyModifiers(geom, mods, frame), fillRule(f.Rule),
				func(a float64) gg.Brush {
					return gg.SolidRGBA(col[0], col[1], col[2], alpha*a)
				})
			if err != nil {
				return err
			}

		case bodymovin.ShapeGradientFill:
			if it.GradientFill == nil {
				continue
			}
			g := it.GradientFill
			alpha := g.Opacity.AtOr(frame, 100) / 100 * st.opacity
			err := r.paintFill(ctx, applyModifiers(geom, mods, frame), fillRule(g.Rule),
				func(a float64) gg.Brush {
					return gradientBrush(g.Kind, g.Start, g.End, g.Highlight, g.HighlightAngle,
						g.Stops, frame, st.world, alpha*a)
				})
			if err != nil {
				return err
			}

		case bodymovin.ShapeStroke:
			if it.Stroke == nil {
				continue
			}
			s := it.Stroke
			alpha := s.Opacity.AtOr(frame, 100) / 100 * st.opacity
			col := colorComponents(s.Color, frame)
			style := strokeStyle{
				width:      s.Width.AtOr(frame, 1),
				cap:        s.Cap,
				join:       s.Join,
				miterLimit: s.MiterLimit,
				dashes:     s.Dashes,
			}
			err := r.paintStroke(ctx, applyModifiers(geom, mods, frame), style, frame, st.world,
				func(a float64) gg.Brush {
					return gg.SolidRGBA(col[0], col[1], col[2], alpha*a)
				})
			if err != nil {
				return err
			}

		case bodymovin.ShapeGradientStroke:
			if it.GradientStroke == nil {
				continue
			}
			g := it.GradientStroke
			alpha := g.Opacity.AtOr(frame, 100) / 100 * st.opacity
			style := strokeStyle{
				width:      g.Width.AtOr(frame, 1),
				cap:        g.Cap,
				join:       g.Join,
				miterLimit: g.MiterLimit,
				dashes:     g.Dashes,
			}
			err := r.paintStroke(ctx, applyModifiers(geom, mods, frame), style, frame, st.world,
				func(a float64) gg.Brush {
					return gradientBrush(g.Kind, g.Start, g.End, g.Highlight, g.HighlightAngle,
						g.Stops, frame, st.world, alpha*a)
				})
			if err != nil {
				return err
			}

		case bodymovin.ShapeTransform, bodymovin.ShapeTrim, bodymovin.ShapeRepeater:
			// Transforms are read by the enclosing group; trims and
			// repeaters were collected above.

		case bodymovin.ShapeMerge:
			r.warnOnce("shape:mm", "merge paths are not supported, drawing operands as-is")

		case bodymovin.ShapeRoundCorners:
			r.warnOnce("shape:rd", "rounded corner modifiers are not supported")

		default:
			r.warnOnce("shape:"+it.Type, "unknown shape item %q skipped", it.Type)
		}
	}
	return nil
}

// appendModifier extends the in-scope modifier chain without aliasing the
// caller's backing array.
func appendModifier(mods []modifier, m modifier) []modifier {
	out := make([]modifier, len(mods), len(mods)+1)
	copy(out, mods)
	return append(out, m)
}

// applyModifiers runs the geometry through every trim and repeater in
// scope, innermost first, producing the batches a paint item draws.
func applyModifiers(geom []subpath, mods []modifier, frame float64) []paintBatch {
	batches := []paintBatch{{paths: geom, alpha: 1}}
	for i := len(mods) - 1; i >= 0; i-- {
		m := &mods[i]
		if m.trim != nil {
			batches = trimBatches(batches, m.trim, frame)
		}
		if m.rep != nil {
			batches = repeatBatches(batches, m.rep, frame, m.world)
		}
	}
	return batches
}

// trimBatches trims every subpath to the configured arc length range.
// Start and end are percentages, the offset shifts both by full turns of
// 360 degrees, so ranges can wrap around closed paths.
func trimBatches(batches []paintBatch, tm *bodymovin.TrimShape, frame float64) []paintBatch {
	s := tm.Start.AtOr(frame, 0) / 100
	e := tm.End.AtOr(frame, 100) / 100
	off := tm.Offset.At(frame) / 360

	lo := math.Min(s, e) + off
	span := math.Abs(e - s)
	if span <= 0 {
		return nil
	}
	if span > 1 {
		span = 1
	}
	lo -= math.Floor(lo)

	out := make([]paintBatch, 0, len(batches))
	for _, b := range batches {
		var paths []subpath
		for i := range b.paths {
			paths = append(paths, b.paths[i].trimmed(lo, span)...)
		}
		if len(paths) > 0 {
			out = append(out, paintBatch{paths: paths, alpha: b.alpha})
		}
	}
	return out
}

// repeatBatches replaces each batch with one copy per repeat, applying the
// repeater transform once more for every copy. The transform is conjugated
// through the declaring group's device matrix so copies land correctly even
// when the paint happens in a nested group.
func repeatBatches(batches []paintBatch, rep *bodymovin.RepeaterShape, frame float64, world gg.Matrix) []paintBatch {
	copies := int(math.Round(rep.Copies.AtOr(frame, 1)))
	if copies <= 0 {
		return nil
	}
	offset := int(math.Round(rep.Offset.At(frame)))

	so := rep.Transform.StartOpacity.AtOr(frame, 100) / 100
	eo := rep.Transform.EndOpacity.AtOr(frame, 100) / 100

	step := transformMatrix(&rep.Transform.Transform, frame)
	inv := world.Invert()

	out := make([]paintBatch, 0, len(batches)*copies)
	for k := 0; k < copies; k++ {
		local := matrixPower(step, offset+k)
		device := world.Multiply(local).Multiply(inv)

		alpha := so
		if copies > 1 {
			alpha = so + (eo-so)*float64(k)/float64(copies-1)
		}
		for _, b := range batches {
			out = append(out, paintBatch{
				paths: transformAll(b.paths, device),
				alpha: b.alpha * alpha,
			})
		}
	}
	return out
}

func matrixPower(m gg.Matrix, n int) gg.Matrix {
	if n < 0 {
		m = m.Invert()
		n = -n
	}
	out := gg.Identity()
	for i := 0; i < n; i++ {
		out = out.Multiply(m)
	}
	return out
}

func (r *Renderer) paintFill(ctx *gg.Context, batches []paintBatch, rule gg.FillRule, brushAt func(alpha float64) gg.Brush) error {
	for _, b := range batches {
		if len(b.paths) == 0 || b.alpha <= 0 {
			continue
		}
		emitSubpaths(ctx, b.paths)
		ctx.SetFillRule(rule)
		ctx.SetFillBrush(brushAt(b.alpha))
		if err := ctx.Fill(); err != nil {
			return err
		}
	}
	return nil
}

// strokeStyle gathers the stroke parameters shared by solid and gradient
// strokes.
type strokeStyle struct {
	width      float64
	cap        int
	join       int
	miterLimit float64
	dashes     []bodymovin.Dash
}

func (r *Renderer) paintStroke(ctx *gg.Context, batches []paintBatch, style strokeStyle, frame float64, world gg.Matrix, brushAt func(alpha float64) gg.Brush) error {
	// Geometry is already in device space, so line widths and dash
	// lengths scale with the world matrix.
	scale := matrixScale(world)
	width := style.width * scale
	if width <= 0 {
		return nil
	}

	ctx.SetLineWidth(width)
	ctx.SetLineCap(lineCap(style.cap))
	ctx.SetLineJoin(lineJoin(style.join))
	if style.miterLimit > 0 {
		ctx.SetMiterLimit(style.miterLimit)
	}

	var lengths []float64
	dashOffset := 0.0
	for _, d := range style.dashes {
		switch d.Kind {
		case bodymovin.DashOffset:
			dashOffset = d.Value.At(frame) * scale
		case bodymovin.DashLength, bodymovin.DashGap:
			lengths = append(lengths, d.Value.At(frame)*scale)
		}
	}
	if len(lengths) > 0 {
		ctx.SetDash(lengths...)
		ctx.SetDashOffset(dashOffset)
		defer func() {
			ctx.ClearDash()
			ctx.SetDashOffset(0)
		}()
	}

	for _, b := range batches {
		if len(b.paths) == 0 || b.alpha <= 0 {
			continue
		}
		emitSubpaths(ctx, b.paths)
		ctx.SetStrokeBrush(brushAt(b.alpha))
		if err := ctx.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

// matrixScale is the average absolute scale factor of an affine matrix,
// used to carry stroke widths into device space.
func matrixScale(m gg.Matrix) float64 {
	sx := math.Hypot(m.A, m.D)
	sy := math.Hypot(m.B, m.E)
	return (sx + sy) / 2
}

// colorComponents evaluates an animatable color, padding missing channels.
func colorComponents(c *bodymovin.MultiValue, frame float64) [3]float64 {
	out := [3]float64{}
	vals := c.At(frame)
	for i := 0; i < 3 && i < len(vals); i++ {
		out[i] = vals[i]
	}
	return out
}

func fillRule(rule int) gg.FillRule {
	if rule == bodymovin.FillRuleEvenOdd {
		return gg.FillRuleEvenOdd
	}
	return gg.FillRuleNonZero
}

func lineCap(c int) gg.LineCap {
	switch c {
	case bodymovin.LineCapRound:
		return gg.LineCapRound
	case bodymovin.LineCapSquare:
		return gg.LineCapSquare
	default:
		return gg.LineCapButt
	}
}

func lineJoin(j int) gg.LineJoin {
	switch j {
	case bodymovin.LineJoinRound:
		return gg.LineJoinRound
	case bodymovin.LineJoinBevel:
		return gg.LineJoinBevel
	default:
		return gg.LineJoinMiter
	}
}

// gradientBrush builds the gg brush for a gradient paint. Endpoints are
// authored in group-local coordinates while gg brushes sample device
// pixels, so both are pushed through the world matrix here.
func gradientBrush(kind int, start, end *bodymovin.MultiValue, highlight, highlightAngle *bodymovin.Value,
	stops bodymovin.GradientStops, frame float64, world gg.Matrix, alpha float64) gg.Brush {

	sx, sy := start.PointOr(frame, 0, 0)
	ex, ey := end.PointOr(frame, 0, 0)
	ds := world.TransformPoint(pt(sx, sy))
	de := world.TransformPoint(pt(ex, ey))

	colorStops := mergeGradientStops(stops, frame, alpha)

	if kind == bodymovin.GradientRadial {
		radius := math.Hypot(de.X-ds.X, de.Y-ds.Y)
		brush := gg.NewRadialGradientBrush(ds.X, ds.Y, 0, radius)
		for _, cs := range colorStops {
			brush.AddColorStop(cs.Offset, cs.Color)
		}

		// The highlight shifts the focal point along the gradient axis,
		// rotated by the highlight angle.
		h := highlight.At(frame) / 100
		if h != 0 {
			if h > 0.99 {
				h = 0.99
			} else if h < -0.99 {
				h = -0.99
			}
			localRad := math.Hypot(ex-sx, ey-sy)
			ang := math.Atan2(ey-sy, ex-sx) + highlightAngle.At(frame)*math.Pi/180
			focus := world.TransformPoint(pt(
				sx+math.Cos(ang)*localRad*h,
				sy+math.Sin(ang)*localRad*h,
			))
			brush.SetFocus(focus.X, focus.Y)
		}
		return brush
	}

	brush := gg.NewLinearGradientBrush(ds.X, ds.Y, de.X, de.Y)
	for _, cs := range colorStops {
		brush.AddColorStop(cs.Offset, cs.Color)
	}
	return brush
}

// mergeGradientStops folds the format's separate color and alpha stop
// tables into one stop list. The raw payload holds Count (offset, r, g, b)
// quads, optionally followed by (offset, alpha) pairs; the merged list
// carries a stop at every offset either table mentions.
func mergeGradientStops(stops bodymovin.GradientStops, frame float64, alpha float64) []gg.ColorStop {
	raw := stops.Values.At(frame)
	colorN := stops.Count
	if colorN <= 0 || colorN*4 > len(raw) {
		colorN = len(raw) / 4
	}
	if colorN == 0 {
		return nil
	}
	colors := raw[: colorN*4 : colorN*4]
	alphas := raw[colorN*4:]

	offsets := make([]float64, 0, colorN+len(alphas)/2)
	for i := 0; i < colorN; i++ {
		offsets = append(offsets, colors[i*4])
	}
	for i := 0; i+1 < len(alphas); i += 2 {
		offsets = append(offsets, alphas[i])
	}
	offsets = sortedUnique(offsets)

	out := make([]gg.ColorStop, 0, len(offsets))
	for _, t := range offsets {
		r, g, b := colorAt(colors, colorN, t)
		a := alphaAt(alphas, t)
		out = append(out, gg.ColorStop{
			Offset: t,
			Color:  gg.RGBA{R: r, G: g, B: b, A: a * alpha},
		})
	}
	return out
}

func sortedUnique(vals []float64) []float64 {
	sort.Float64s(vals)
	out := vals[:0]
	for i, v := range vals {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// colorAt linearly samples the (offset, r, g, b) quad table at offset t.
func colorAt(colors []float64, n int, t float64) (float64, float64, float64) {
	if t <= colors[0] {
		return colors[1], colors[2], colors[3]
	}
	last := (n - 1) * 4
	if t >= colors[last] {
		return colors[last+1], colors[last+2], colors[last+3]
	}
	for i := 1; i < n; i++ {
		hi := i * 4
		if colors[hi] < t {
			continue
		}
		lo := hi - 4
		span := colors[hi] - colors[lo]
		f := 0.0
		if span > 0 {
			f = (t - colors[lo]) / span
		}
		return colors[lo+1] + (colors[hi+1]-colors[lo+1])*f,
			colors[lo+2] + (colors[hi+2]-colors[lo+2])*f,
			colors[lo+3] + (colors[hi+3]-colors[lo+3])*f
	}
	return colors[last+1], colors[last+2], colors[last+3]
}

// alphaAt linearly samples the (offset, alpha) pair table at offset t,
// returning opaque when the gradient has no alpha stops.
func alphaAt(alphas []float64, t float64) float64 {
	n := len(alphas) / 2
	if n == 0 {
		return 1
	}
	if t <= alphas[0] {
		return alphas[1]
	}
	last := (n - 1) * 2
	if t >= alphas[last] {
		return alphas[last+1]
	}
	for i := 1; i < n; i++ {
		hi := i * 2
		if alphas[hi] < t {
			continue
		}
		lo := hi - 2
		span := alphas[hi] - alphas[lo]
		f := 0.0
		if span > 0 {
			f = (t - alphas[lo]) / span
		}
		return alphas[lo+1] + (alphas[hi+1]-alphas[lo+1])*f
	}
	return alphas[last+1]
}
