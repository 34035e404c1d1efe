package render

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/decker502/lottie/internal/bodymovin"
)

// Cubic arcs approximate quarter circles with this control point distance.
const kappa = 0.5519150244935105707435627

// lengthSamples is the flattening resolution used for arc length tables.
const lengthSamples = 16

// curveSeg is one cubic segment with absolute control points.
type curveSeg struct {
	c1, c2, to gg.Point
}

// subpath is a chain of cubic segments starting at start. Straight edges
// are stored as cubics with collinear control points so that trimming
// treats every segment uniformly. Closed subpaths carry their seam
// segment explicitly, keeping arc lengths over the whole outline.
type subpath struct {
	start  gg.Point
	curves []curveSeg
	closed bool
}

func pt(x, y float64) gg.Point {
	return gg.Point{X: x, Y: y}
}

func lerpPt(a, b gg.Point, t float64) gg.Point {
	return pt(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t)
}

// lineSeg builds a cubic that traces the straight line from a to b.
func lineSeg(a, b gg.Point) curveSeg {
	return curveSeg{
		c1: lerpPt(a, b, 1.0/3.0),
		c2: lerpPt(a, b, 2.0/3.0),
		to: b,
	}
}

func (s *subpath) lineTo(p gg.Point) {
	s.curves = append(s.curves, lineSeg(s.at(), p))
}

func (s *subpath) curveTo(c1, c2, p gg.Point) {
	s.curves = append(s.curves, curveSeg{c1: c1, c2: c2, to: p})
}

// at returns the current endpoint of the subpath.
func (s *subpath) at() gg.Point {
	if len(s.curves) == 0 {
		return s.start
	}
	return s.curves[len(s.curves)-1].to
}

func (s subpath) transformed(m gg.Matrix) subpath {
	out := subpath{
		start:  m.TransformPoint(s.start),
		curves: make([]curveSeg, len(s.curves)),
		closed: s.closed,
	}
	for i, c := range s.curves {
		out.curves[i] = curveSeg{
			c1: m.TransformPoint(c.c1),
			c2: m.TransformPoint(c.c2),
			to: m.TransformPoint(c.to),
		}
	}
	return out
}

// reversed flips the traversal direction of the subpath.
func (s subpath) reversed() subpath {
	n := len(s.curves)
	out := subpath{start: s.at(), closed: s.closed, curves: make([]curveSeg, 0, n)}
	for i := n - 1; i >= 0; i-- {
		c := s.curves[i]
		from := s.start
		if i > 0 {
			from = s.curves[i-1].to
		}
		out.curves = append(out.curves, curveSeg{c1: c.c2, c2: c.c1, to: from})
	}
	return out
}

func transformAll(paths []subpath, m gg.Matrix) []subpath {
	out := make([]subpath, len(paths))
	for i := range paths {
		out[i] = paths[i].transformed(m)
	}
	return out
}

// emitSubpaths replays the subpaths into the drawing context's current path.
func emitSubpaths(ctx *gg.Context, paths []subpath) {
	for i := range paths {
		s := &paths[i]
		ctx.MoveTo(s.start.X, s.start.Y)
		for _, c := range s.curves {
			ctx.CubicTo(c.c1.X, c.c1.Y, c.c2.X, c.c2.Y, c.to.X, c.to.Y)
		}
		if s.closed {
			ctx.ClosePath()
		}
	}
}

// bezierSubpath converts a decoded path payload, resolving the relative
// in/out tangents to absolute control points. Returns false for paths too
// small to draw.
func bezierSubpath(bez bodymovin.Bezier) (subpath, bool) {
	n := len(bez.Vertices)
	if n < 2 {
		return subpath{}, false
	}
	vertex := func(i int) gg.Point {
		v := bez.Vertices[i]
		if len(v) < 2 {
			return gg.Point{}
		}
		return pt(v[0], v[1])
	}
	tangent := func(list [][]float64, i int) gg.Point {
		if i >= len(list) || len(list[i]) < 2 {
			return gg.Point{}
		}
		return pt(list[i][0], list[i][1])
	}

	sp := subpath{start: vertex(0), closed: bez.Closed}
	segs := n - 1
	if bez.Closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		j := (i + 1) % n
		a, b := vertex(i), vertex(j)
		out := tangent(bez.Out, i)
		in := tangent(bez.In, j)
		sp.curveTo(pt(a.X+out.X, a.Y+out.Y), pt(b.X+in.X, b.Y+in.Y), b)
	}
	return sp, true
}

// rectSubpath traces a rectangle clockwise from just below the top right
// corner, matching the Bodymovin vertex order so trims land where After
// Effects puts them. r is the corner radius, clamped to half the short side.
func rectSubpath(cx, cy, w, h, r float64) subpath {
	hw, hh := w/2, h/2
	left, right := cx-hw, cx+hw
	top, bottom := cy-hh, cy+hh

	if limit := math.Min(hw, hh); r > limit {
		r = limit
	}
	if r <= 0 {
		sp := subpath{start: pt(right, top), closed: true}
		sp.lineTo(pt(right, bottom))
		sp.lineTo(pt(left, bottom))
		sp.lineTo(pt(left, top))
		sp.lineTo(pt(right, top))
		return sp
	}

	k := r * kappa
	sp := subpath{start: pt(right, top+r), closed: true}
	sp.lineTo(pt(right, bottom-r))
	sp.curveTo(pt(right, bottom-r+k), pt(right-r+k, bottom), pt(right-r, bottom))
	sp.lineTo(pt(left+r, bottom))
	sp.curveTo(pt(left+r-k, bottom), pt(left, bottom-r+k), pt(left, bottom-r))
	sp.lineTo(pt(left, top+r))
	sp.curveTo(pt(left, top+r-k), pt(left+r-k, top), pt(left+r, top))
	sp.lineTo(pt(right-r, top))
	sp.curveTo(pt(right-r+k, top), pt(right, top+r-k), pt(right, top+r))
	return sp
}

// ellipseSubpath traces an ellipse clockwise from the top vertex.
func ellipseSubpath(cx, cy, rx, ry float64) subpath {
	kx, ky := rx*kappa, ry*kappa
	sp := subpath{start: pt(cx, cy-ry), closed: true}
	sp.curveTo(pt(cx+kx, cy-ry), pt(cx+rx, cy-ky), pt(cx+rx, cy))
	sp.curveTo(pt(cx+rx, cy+ky), pt(cx+kx, cy+ry), pt(cx, cy+ry))
	sp.curveTo(pt(cx-kx, cy+ry), pt(cx-rx, cy+ky), pt(cx-rx, cy))
	sp.curveTo(pt(cx-rx, cy-ky), pt(cx-kx, cy-ry), pt(cx, cy-ry))
	return sp
}

// starSubpath synthesizes a polystar. Star kinds alternate between the
// outer and inner radius; polygons use the outer radius only. Roundness
// bends each vertex along the circumscribed circle.
func starSubpath(s *bodymovin.StarShape, frame float64) (subpath, bool) {
	points := int(math.Floor(s.Points.AtOr(frame, 5)))
	if points < 3 {
		return subpath{}, false
	}
	cx, cy := s.Position.PointOr(frame, 0, 0)
	rot := s.Rotation.At(frame) * math.Pi / 180
	dir := 1.0
	if s.Direction == 3 {
		dir = -1
	}

	star := s.Kind != bodymovin.StarKindPolygon
	outerRad := s.OuterRadius.At(frame)
	innerRad := s.InnerRadius.At(frame)
	outerRound := s.OuterRoundness.At(frame) / 100
	innerRound := s.InnerRoundness.At(frame) / 100

	n := points
	if star {
		n = points * 2
	}
	step := 2 * math.Pi / float64(n) * dir
	outerPerim := 2 * math.Pi * outerRad / float64(n*2)
	innerPerim := 2 * math.Pi * innerRad / float64(n*2)
	if !star {
		// Polygon tangents span a quarter of the edge arc.
		outerPerim = 2 * math.Pi * outerRad / (float64(n) * 4)
	}

	type triple struct {
		v, in, out gg.Point
	}
	pts := make([]triple, 0, n)
	ang := -math.Pi/2 + rot
	outer := true
	for i := 0; i < n; i++ {
		rad, round, perim := outerRad, outerRound, outerPerim
		if star && !outer {
			rad, round, perim = innerRad, innerRound, innerPerim
		}
		x := rad * math.Cos(ang)
		y := rad * math.Sin(ang)
		var ox, oy float64
		if x != 0 || y != 0 {
			l := math.Sqrt(x*x + y*y)
			ox, oy = y/l, -x/l
		}
		k := perim * round * dir
		v := pt(x+cx, y+cy)
		pts = append(pts, triple{
			v:   v,
			out: pt(v.X-ox*k, v.Y-oy*k),
			in:  pt(v.X+ox*k, v.Y+oy*k),
		})
		outer = !outer
		ang += step
	}

	sp := subpath{start: pts[0].v, closed: true}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sp.curveTo(pts[i].out, pts[j].in, pts[j].v)
	}
	return sp, true
}

// splitCurve divides a cubic segment at parameter t, returning the two
// halves. from is the segment's start point.
func splitCurve(from gg.Point, c curveSeg, t float64) (curveSeg, curveSeg) {
	ab := lerpPt(from, c.c1, t)
	bc := lerpPt(c.c1, c.c2, t)
	cd := lerpPt(c.c2, c.to, t)
	abc := lerpPt(ab, bc, t)
	bcd := lerpPt(bc, cd, t)
	mid := lerpPt(abc, bcd, t)
	return curveSeg{c1: ab, c2: abc, to: mid}, curveSeg{c1: bcd, c2: cd, to: c.to}
}

// curveLengths samples each segment into chords and returns the per-segment
// lengths plus the total.
func (s *subpath) curveLengths() ([]float64, float64) {
	lengths := make([]float64, len(s.curves))
	total := 0.0
	from := s.start
	for i, c := range s.curves {
		l := 0.0
		prev := from
		for k := 1; k <= lengthSamples; k++ {
			t := float64(k) / lengthSamples
			p := curvePointAt(from, c, t)
			l += math.Hypot(p.X-prev.X, p.Y-prev.Y)
			prev = p
		}
		lengths[i] = l
		total += l
		from = c.to
	}
	return lengths, total
}

func curvePointAt(from gg.Point, c curveSeg, t float64) gg.Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	cc := 3 * mt * t * t
	d := t * t * t
	return pt(
		a*from.X+b*c.c1.X+cc*c.c2.X+d*c.to.X,
		a*from.Y+b*c.c1.Y+cc*c.c2.Y+d*c.to.Y,
	)
}

// slice extracts the piece of the subpath between the length fractions
// f0 and f1 (0..1 along the subpath, f0 < f1) as an open subpath.
func (s *subpath) slice(f0, f1 float64) (subpath, bool) {
	lengths, total := s.curveLengths()
	if total <= 0 {
		return subpath{}, false
	}
	l0 := f0 * total
	l1 := f1 * total

	out := subpath{}
	started := false
	pos := 0.0
	from := s.start
	for i, c := range s.curves {
		segEnd := pos + lengths[i]
		if segEnd <= l0 || lengths[i] == 0 {
			pos = segEnd
			from = c.to
			continue
		}
		if pos >= l1 {
			break
		}
		t0 := 0.0
		if l0 > pos {
			t0 = (l0 - pos) / lengths[i]
		}
		t1 := 1.0
		if l1 < segEnd {
			t1 = (l1 - pos) / lengths[i]
		}

		seg := c
		segFrom := from
		if t0 > 0 {
			_, seg = splitCurve(from, c, t0)
			segFrom = curvePointAt(from, c, t0)
		}
		if t1 < 1 {
			// Rescale the second split point into the remaining span.
			local := (t1 - t0) / (1 - t0)
			seg, _ = splitCurve(segFrom, seg, local)
		}
		if !started {
			out.start = segFrom
			started = true
		}
		out.curves = append(out.curves, seg)

		pos = segEnd
		from = c.to
	}
	if !started {
		return subpath{}, false
	}
	return out, true
}

// trimmed applies a trim range to the subpath. lo is the start fraction
// after offset normalization and span is the trimmed extent; span >= 1
// keeps the whole subpath. Closed subpaths treat the range cyclically so a
// trim can run across the seam; open subpaths may split into two pieces.
func (s *subpath) trimmed(lo, span float64) []subpath {
	if span <= 0 {
		return nil
	}
	if span >= 1 {
		return []subpath{*s}
	}
	hi := lo + span

	if s.closed && hi > 1 {
		// Wrap across the seam: take [lo,1] and [0,hi-1] and join them
		// into one continuous open run.
		head, okHead := s.slice(lo, 1)
		tail, okTail := s.slice(0, hi-1)
		switch {
		case okHead && okTail:
			joined := head
			joined.lineToIfGap(tail.start)
			joined.curves = append(joined.curves, tail.curves...)
			return []subpath{joined}
		case okHead:
			return []subpath{head}
		case okTail:
			return []subpath{tail}
		}
		return nil
	}

	var out []subpath
	if piece, ok := s.slice(lo, math.Min(hi, 1)); ok {
		out = append(out, piece)
	}
	if hi > 1 {
		if piece, ok := s.slice(0, hi-1); ok {
			out = append(out, piece)
		}
	}
	return out
}

// lineToIfGap bridges the seam when joining two trimmed runs whose
// endpoints coincide only up to numeric noise.
func (s *subpath) lineToIfGap(p gg.Point) {
	cur := s.at()
	if math.Hypot(cur.X-p.X, cur.Y-p.Y) > 1e-9 {
		s.lineTo(p)
	}
}
