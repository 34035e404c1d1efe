package render

import (
	"math"
	"testing"

	"github.com/gogpu/gg"

	"github.com/decker502/lottie/internal/bodymovin"
)

func nearPoint(t *testing.T, got gg.Point, x, y, tol float64, what string) {
	t.Helper()
	if math.Abs(got.X-x) > tol || math.Abs(got.Y-y) > tol {
		t.Errorf("Expected %s=(%g, %g), got (%g, %g)", what, x, y, got.X, got.Y)
	}
}

// TestBezierSubpath_TangentResolution tests that the relative in/out
// tangents of a decoded path are resolved into absolute control points.
func TestBezierSubpath_TangentResolution(t *testing.T) {
	bez := bodymovin.Bezier{
		Vertices: [][]float64{{0, 0}, {10, 0}},
		Out:      [][]float64{{1, 2}, {0, 0}},
		In:       [][]float64{{0, 0}, {-1, -2}},
	}

	sp, ok := bezierSubpath(bez)
	if !ok {
		t.Fatal("Expected a drawable subpath, got ok=false")
	}
	if len(sp.curves) != 1 {
		t.Fatalf("Expected 1 segment for 2 open vertices, got %d", len(sp.curves))
	}
	nearPoint(t, sp.start, 0, 0, 1e-12, "start")
	nearPoint(t, sp.curves[0].c1, 1, 2, 1e-12, "c1")
	nearPoint(t, sp.curves[0].c2, 9, -2, 1e-12, "c2")
	nearPoint(t, sp.curves[0].to, 10, 0, 1e-12, "end")
	if sp.closed {
		t.Error("Expected open subpath for c=false")
	}
}

// TestBezierSubpath_ClosedSeam tests that closed paths gain an explicit
// seam segment back to the first vertex.
func TestBezierSubpath_ClosedSeam(t *testing.T) {
	bez := bodymovin.Bezier{
		Vertices: [][]float64{{0, 0}, {10, 0}, {10, 10}},
		Out:      [][]float64{{0, 0}, {0, 0}, {0, 0}},
		In:       [][]float64{{0, 0}, {0, 0}, {0, 0}},
		Closed:   true,
	}

	sp, ok := bezierSubpath(bez)
	if !ok {
		t.Fatal("Expected a drawable subpath, got ok=false")
	}
	if len(sp.curves) != 3 {
		t.Fatalf("Expected 3 segments for 3 closed vertices, got %d", len(sp.curves))
	}
	nearPoint(t, sp.curves[2].to, 0, 0, 1e-12, "seam end")
	if !sp.closed {
		t.Error("Expected closed subpath for c=true")
	}
}

// TestBezierSubpath_TooSmall tests degenerate payloads.
func TestBezierSubpath_TooSmall(t *testing.T) {
	for _, vertices := range [][][]float64{nil, {{1, 2}}} {
		if _, ok := bezierSubpath(bodymovin.Bezier{Vertices: vertices}); ok {
			t.Errorf("Expected ok=false for %d vertices", len(vertices))
		}
	}
}

// TestRectSubpath_Outline tests the sharp rectangle trace: clockwise from
// the top right corner, four edges, with the seam edge stored explicitly.
func TestRectSubpath_Outline(t *testing.T) {
	sp := rectSubpath(4, 3, 4, 4, 0)

	if !sp.closed {
		t.Error("Expected closed rectangle")
	}
	if len(sp.curves) != 4 {
		t.Fatalf("Expected 4 edges including the seam, got %d", len(sp.curves))
	}
	nearPoint(t, sp.start, 6, 1, 1e-12, "start")
	nearPoint(t, sp.curves[0].to, 6, 5, 1e-12, "corner 1")
	nearPoint(t, sp.curves[1].to, 2, 5, 1e-12, "corner 2")
	nearPoint(t, sp.curves[2].to, 2, 1, 1e-12, "corner 3")
	nearPoint(t, sp.curves[3].to, 6, 1, 1e-12, "seam end")

	_, total := sp.curveLengths()
	if math.Abs(total-16) > 1e-9 {
		t.Errorf("Expected perimeter 16, got %g", total)
	}
	t.Logf("✓ Rectangle traced with %d edges, perimeter %g", len(sp.curves), total)
}

// TestRectSubpath_RoundedClampsRadius tests that the corner radius never
// exceeds half the short side.
func TestRectSubpath_RoundedClampsRadius(t *testing.T) {
	sp := rectSubpath(0, 0, 4, 2, 5)

	if !sp.closed {
		t.Error("Expected closed rounded rectangle")
	}
	// Radius clamps to 1, so the trace starts at (right, top+1) = (2, 0).
	nearPoint(t, sp.start, 2, 0, 1e-12, "start")
	for i, c := range sp.curves {
		for _, p := range []gg.Point{c.c1, c.c2, c.to} {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) {
				t.Fatalf("Curve %d has NaN control points", i)
			}
		}
	}
}

// TestEllipseSubpath_Circumference tests the four arc approximation of a
// circle against the analytic circumference.
func TestEllipseSubpath_Circumference(t *testing.T) {
	sp := ellipseSubpath(0, 0, 50, 50)

	if len(sp.curves) != 4 {
		t.Fatalf("Expected 4 arcs, got %d", len(sp.curves))
	}
	nearPoint(t, sp.start, 0, -50, 1e-12, "top vertex")

	_, total := sp.curveLengths()
	want := 2 * math.Pi * 50
	if math.Abs(total-want)/want > 0.01 {
		t.Errorf("Expected circumference near %g, got %g", want, total)
	}
	t.Logf("✓ Circle arc length %g vs 2πr %g", total, want)
}

// TestStarSubpath_PointCounts tests the segment counts of stars and
// polygons and the -90 degree start angle.
func TestStarSubpath_PointCounts(t *testing.T) {
	star := &bodymovin.StarShape{
		Points:      &bodymovin.Value{Static: 5},
		OuterRadius: &bodymovin.Value{Static: 10},
		InnerRadius: &bodymovin.Value{Static: 4},
		Kind:        bodymovin.StarKindStar,
	}
	sp, ok := starSubpath(star, 0)
	if !ok {
		t.Fatal("Expected a drawable star")
	}
	if len(sp.curves) != 10 {
		t.Errorf("Expected 10 segments for a 5 point star, got %d", len(sp.curves))
	}
	// First vertex sits on the outer radius straight up from center.
	nearPoint(t, sp.start, 0, -10, 1e-9, "first star vertex")

	polygon := &bodymovin.StarShape{
		Points:      &bodymovin.Value{Static: 3},
		OuterRadius: &bodymovin.Value{Static: 10},
		Kind:        bodymovin.StarKindPolygon,
	}
	sp, ok = starSubpath(polygon, 0)
	if !ok {
		t.Fatal("Expected a drawable polygon")
	}
	if len(sp.curves) != 3 {
		t.Errorf("Expected 3 segments for a triangle, got %d", len(sp.curves))
	}
	if !sp.closed {
		t.Error("Expected closed polygon")
	}
}

// TestStarSubpath_TooFewPoints tests that degenerate stars are rejected.
func TestStarSubpath_TooFewPoints(t *testing.T) {
	star := &bodymovin.StarShape{
		Points:      &bodymovin.Value{Static: 2},
		OuterRadius: &bodymovin.Value{Static: 10},
	}
	if _, ok := starSubpath(star, 0); ok {
		t.Error("Expected ok=false for a 2 point star")
	}
}

// TestSubpathReversed tests direction flipping: endpoints swap and each
// segment's control points swap.
func TestSubpathReversed(t *testing.T) {
	sp := subpath{start: pt(0, 0)}
	sp.curveTo(pt(1, 2), pt(3, 4), pt(5, 0))
	sp.lineTo(pt(5, 5))

	rev := sp.reversed()
	nearPoint(t, rev.start, 5, 5, 1e-12, "reversed start")
	nearPoint(t, rev.at(), 0, 0, 1e-12, "reversed end")
	if len(rev.curves) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(rev.curves))
	}
	nearPoint(t, rev.curves[1].c1, 3, 4, 1e-12, "swapped c1")
	nearPoint(t, rev.curves[1].c2, 1, 2, 1e-12, "swapped c2")

	back := rev.reversed()
	nearPoint(t, back.start, 0, 0, 1e-12, "double reversed start")
	nearPoint(t, back.at(), 5, 5, 1e-12, "double reversed end")
}

// TestSubpathTransformed tests that transforms move start and controls.
func TestSubpathTransformed(t *testing.T) {
	sp := subpath{start: pt(1, 1), closed: true}
	sp.lineTo(pt(2, 1))

	moved := sp.transformed(gg.Translate(3, 4))
	nearPoint(t, moved.start, 4, 5, 1e-12, "translated start")
	nearPoint(t, moved.curves[0].to, 5, 5, 1e-12, "translated end")
	if !moved.closed {
		t.Error("Expected closed flag to survive transform")
	}
}

// TestSplitCurve_Midpoint tests de Casteljau subdivision on a straight
// segment, where the split point is the linear interpolant.
func TestSplitCurve_Midpoint(t *testing.T) {
	seg := lineSeg(pt(0, 0), pt(10, 0))
	first, second := splitCurve(pt(0, 0), seg, 0.5)

	nearPoint(t, first.to, 5, 0, 1e-9, "split point")
	nearPoint(t, second.to, 10, 0, 1e-12, "tail end")
}

// TestSubpathSlice_Line tests arc length slicing of a straight segment.
// Straight edges are stored as cubics with collinear third controls, which
// parameterize linearly, so fractional cuts are exact.
func TestSubpathSlice_Line(t *testing.T) {
	sp := subpath{start: pt(0, 0)}
	sp.lineTo(pt(10, 0))

	piece, ok := sp.slice(0.25, 0.75)
	if !ok {
		t.Fatal("Expected a slice, got ok=false")
	}
	if len(piece.curves) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(piece.curves))
	}
	nearPoint(t, piece.start, 2.5, 0, 1e-9, "slice start")
	nearPoint(t, piece.at(), 7.5, 0, 1e-9, "slice end")
}

// TestSubpathTrimmed_SpanBounds tests the whole-path and empty-span edges.
func TestSubpathTrimmed_SpanBounds(t *testing.T) {
	sp := rectSubpath(0.5, 0.5, 1, 1, 0)

	if got := sp.trimmed(0.3, 0); got != nil {
		t.Errorf("Expected nil for zero span, got %d pieces", len(got))
	}
	whole := sp.trimmed(0.3, 1)
	if len(whole) != 1 {
		t.Fatalf("Expected the whole path for span>=1, got %d pieces", len(whole))
	}
	if !whole[0].closed || len(whole[0].curves) != 4 {
		t.Error("Expected the untouched closed rectangle back")
	}
}

// TestSubpathTrimmed_OpenSplits tests that an offset trim on an open path
// wraps into two separate pieces.
func TestSubpathTrimmed_OpenSplits(t *testing.T) {
	sp := subpath{start: pt(0, 0)}
	sp.lineTo(pt(10, 0))

	pieces := sp.trimmed(0.75, 0.5)
	if len(pieces) != 2 {
		t.Fatalf("Expected 2 pieces, got %d", len(pieces))
	}
	nearPoint(t, pieces[0].start, 7.5, 0, 1e-9, "head start")
	nearPoint(t, pieces[0].at(), 10, 0, 1e-9, "head end")
	nearPoint(t, pieces[1].start, 0, 0, 1e-9, "tail start")
	nearPoint(t, pieces[1].at(), 2.5, 0, 1e-9, "tail end")
}

// TestSubpathTrimmed_ClosedWrapsSeam tests that a trim crossing the seam
// of a closed path comes back as one continuous run.
func TestSubpathTrimmed_ClosedWrapsSeam(t *testing.T) {
	// Unit square: start (1,0), then (1,1), (0,1), (0,0), seam to (1,0).
	sp := rectSubpath(0.5, 0.5, 1, 1, 0)

	pieces := sp.trimmed(0.7, 0.5)
	if len(pieces) != 1 {
		t.Fatalf("Expected one joined run across the seam, got %d pieces", len(pieces))
	}
	run := pieces[0]
	if run.closed {
		t.Error("Expected an open run after trimming")
	}
	// 0.7 of the perimeter lands at (0, 0.2) going up the left edge; the
	// run continues through the seam and 0.2 beyond onto the right edge.
	nearPoint(t, run.start, 0, 0.2, 1e-9, "run start")
	nearPoint(t, run.at(), 1, 0.8, 1e-9, "run end")
	if len(run.curves) != 3 {
		t.Errorf("Expected 3 segments (left remainder, seam, right part), got %d", len(run.curves))
	}
	t.Logf("✓ Seam wrap produced one run from (%g, %g) to (%g, %g)",
		run.start.X, run.start.Y, run.at().X, run.at().Y)
}

// TestCurveLengths_PerSegment tests the per-segment length table.
func TestCurveLengths_PerSegment(t *testing.T) {
	sp := subpath{start: pt(0, 0)}
	sp.lineTo(pt(3, 0))
	sp.lineTo(pt(3, 4))

	lengths, total := sp.curveLengths()
	if len(lengths) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(lengths))
	}
	if math.Abs(lengths[0]-3) > 1e-9 || math.Abs(lengths[1]-4) > 1e-9 {
		t.Errorf("Expected segment lengths [3 4], got %v", lengths)
	}
	if math.Abs(total-7) > 1e-9 {
		t.Errorf("Expected total 7, got %g", total)
	}
}
