package bodymovin

import "math"

// Property evaluation. All At methods are nil-safe and pure: they never
// mutate the document, so one parsed Composition can drive any number of
// players concurrently as long as each player samples from its own
// goroutine.

// At returns the scalar value at the given frame.
func (v *Value) At(frame float64) float64 {
	if v == nil {
		return 0
	}
	if !v.Animated || len(v.Keyframes) == 0 {
		return v.Static
	}
	return scalarAt(v.Keyframes, frame)
}

// AtOr returns the scalar value at the given frame, or def when the
// property is absent.
func (v *Value) AtOr(frame, def float64) float64 {
	if v == nil {
		return def
	}
	return v.At(frame)
}

// At returns the vector value at the given frame. The result is freshly
// allocated; use AtInto on hot paths.
func (m *MultiValue) At(frame float64) []float64 {
	return m.AtInto(frame, nil)
}

// AtInto returns the vector value at the given frame, reusing dst when it
// has sufficient capacity.
func (m *MultiValue) AtInto(frame float64, dst []float64) []float64 {
	if m == nil {
		return dst[:0]
	}
	if !m.Animated || len(m.Keyframes) == 0 {
		return append(dst[:0], m.Static...)
	}
	return vectorAt(m.Keyframes, frame, dst[:0])
}

// PointOr returns the first two components at the given frame, or the
// given defaults when the property is absent.
func (m *MultiValue) PointOr(frame, defX, defY float64) (float64, float64) {
	if m == nil {
		return defX, defY
	}
	var buf [4]float64
	vals := m.AtInto(frame, buf[:0])
	x, y := defX, defY
	if len(vals) > 0 {
		x = vals[0]
	}
	if len(vals) > 1 {
		y = vals[1]
	}
	return x, y
}

// At returns the bezier path at the given frame. Animated paths with
// mismatched vertex counts hold the earlier keyframe's path.
func (s *ShapeProp) At(frame float64) Bezier {
	if s == nil {
		return Bezier{}
	}
	if !s.Animated || len(s.Keyframes) == 0 {
		return s.Static
	}
	return shapeAt(s.Keyframes, frame)
}

// segmentIndex returns i such that times[i] <= frame < times[i+1].
// The caller guarantees times[0] <= frame < times[len-1].
func segmentIndex(n int, timeAt func(int) float64, frame float64) int {
	lo, hi := 0, n-1
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if timeAt(mid) <= frame {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

func scalarAt(kfs []Keyframe, frame float64) float64 {
	n := len(kfs)
	if frame <= kfs[0].Time {
		return kfs[0].Start.Component(0)
	}
	last := kfs[n-1]
	if frame >= last.Time {
		if len(last.Start) > 0 {
			return last.Start.Component(0)
		}
		if n >= 2 {
			return scalarSegmentEnd(&kfs[n-2], &last)
		}
		return 0
	}

	i := segmentIndex(n, func(j int) float64 { return kfs[j].Time }, frame)
	a, b := &kfs[i], &kfs[i+1]
	start := a.Start.Component(0)
	if a.Hold == 1 {
		return start
	}
	end := scalarSegmentEnd(a, b)
	p := easedProgress(a, frame, b.Time, 0)
	return start + (end-start)*p
}

// scalarSegmentEnd resolves the end value of the segment a -> b: the legacy
// "e" field when present, otherwise the next keyframe's start.
func scalarSegmentEnd(a, b *Keyframe) float64 {
	if len(a.End) > 0 {
		return a.End.Component(0)
	}
	if len(b.Start) > 0 {
		return b.Start.Component(0)
	}
	return a.Start.Component(0)
}

func vectorAt(kfs []Keyframe, frame float64, dst []float64) []float64 {
	n := len(kfs)
	if frame <= kfs[0].Time {
		return append(dst, kfs[0].Start...)
	}
	last := &kfs[n-1]
	if frame >= last.Time {
		if len(last.Start) > 0 {
			return append(dst, last.Start...)
		}
		if n >= 2 {
			return appendVectorEnd(dst, &kfs[n-2], last)
		}
		return dst
	}

	i := segmentIndex(n, func(j int) float64 { return kfs[j].Time }, frame)
	a, b := &kfs[i], &kfs[i+1]
	if a.Hold == 1 {
		return append(dst, a.Start...)
	}

	start := a.Start
	end := a.End
	if len(end) == 0 {
		end = b.Start
	}
	if len(end) == 0 {
		return append(dst, start...)
	}

	// Spatial position segments follow the cubic through the to/ti
	// tangents; other components interpolate linearly on the eased time.
	spatial := len(a.OutTangent) >= 2 && len(a.InTangent) >= 2 &&
		len(start) >= 2 && len(end) >= 2

	for c := 0; c < len(start); c++ {
		s := start[c]
		e := s
		if c < len(end) {
			e = end[c]
		}
		p := easedProgress(a, frame, b.Time, c)
		if spatial && c < 2 {
			c1 := s + a.OutTangent[c]
			c2 := e + a.InTangent[c]
			dst = append(dst, cubicPoint(s, c1, c2, e, p))
		} else {
			dst = append(dst, s+(e-s)*p)
		}
	}
	return dst
}

func appendVectorEnd(dst []float64, a, b *Keyframe) []float64 {
	if len(a.End) > 0 {
		return append(dst, a.End...)
	}
	if len(b.Start) > 0 {
		return append(dst, b.Start...)
	}
	return append(dst, a.Start...)
}

func shapeAt(kfs []ShapeKeyframe, frame float64) Bezier {
	n := len(kfs)
	if frame <= kfs[0].Time {
		return firstBezier(kfs[0].Start)
	}
	last := &kfs[n-1]
	if frame >= last.Time {
		if len(last.Start) > 0 {
			return last.Start[0]
		}
		if n >= 2 {
			prev := &kfs[n-2]
			if len(prev.End) > 0 {
				return prev.End[0]
			}
			return firstBezier(prev.Start)
		}
		return Bezier{}
	}

	i := segmentIndex(n, func(j int) float64 { return kfs[j].Time }, frame)
	a, b := &kfs[i], &kfs[i+1]
	start := firstBezier(a.Start)
	if a.Hold == 1 {
		return start
	}
	end := Bezier{}
	if len(a.End) > 0 {
		end = a.End[0]
	} else if len(b.Start) > 0 {
		end = b.Start[0]
	}
	if end.Empty() || len(end.Vertices) != len(start.Vertices) {
		return start
	}

	dt := b.Time - a.Time
	if dt <= 0 {
		return end
	}
	u := (frame - a.Time) / dt
	p := easeValue(a.Out, a.In, 0, u)
	return lerpBezier(start, end, p)
}

func firstBezier(list []Bezier) Bezier {
	if len(list) == 0 {
		return Bezier{}
	}
	return list[0]
}

// lerpBezier interpolates vertex and tangent arrays pointwise. Both paths
// have the same vertex count.
func lerpBezier(a, b Bezier, p float64) Bezier {
	out := Bezier{
		Closed:   a.Closed,
		Vertices: lerpPointList(a.Vertices, b.Vertices, p),
		In:       lerpPointList(a.In, b.In, p),
		Out:      lerpPointList(a.Out, b.Out, p),
	}
	return out
}

func lerpPointList(a, b [][]float64, p float64) [][]float64 {
	if len(a) == 0 {
		return nil
	}
	out := make([][]float64, len(a))
	for i := range a {
		av := a[i]
		pt := make([]float64, len(av))
		if i < len(b) {
			bv := b[i]
			for c := range av {
				if c < len(bv) {
					pt[c] = av[c] + (bv[c]-av[c])*p
				} else {
					pt[c] = av[c]
				}
			}
		} else {
			copy(pt, av)
		}
		out[i] = pt
	}
	return out
}

// easedProgress maps the frame into the segment a -> end time and applies
// the keyframe's easing for the given component.
func easedProgress(a *Keyframe, frame, endTime float64, component int) float64 {
	dt := endTime - a.Time
	if dt <= 0 {
		return 1
	}
	u := (frame - a.Time) / dt
	return easeValue(a.Out, a.In, component, u)
}

// easeValue remaps normalized time u through the cubic bezier
// (0,0)..(out.x,out.y)..(in.x,in.y)..(1,1). Missing control points mean
// linear easing.
func easeValue(out, in *Ease, component int, u float64) float64 {
	if u <= 0 {
		return 0
	}
	if u >= 1 {
		return 1
	}
	if out == nil && in == nil {
		return u
	}

	ox, oy := 1.0/3, 1.0/3
	ix, iy := 2.0/3, 2.0/3
	if out != nil {
		ox = clamp01(out.X.Component(component))
		oy = out.Y.Component(component)
	}
	if in != nil {
		ix = clamp01(in.X.Component(component))
		iy = in.Y.Component(component)
	}

	t := solveCubicX(ox, ix, u)
	p := cubicBasis(oy, iy, t)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return u
	}
	return p
}

// cubicBasis evaluates the bezier component with control values c1, c2 and
// endpoints 0 and 1.
func cubicBasis(c1, c2, t float64) float64 {
	mt := 1 - t
	return 3*mt*mt*t*c1 + 3*mt*t*t*c2 + t*t*t
}

// solveCubicX finds t with x(t) = u by Newton iteration, falling back to
// bisection when the derivative collapses.
func solveCubicX(x1, x2, u float64) float64 {
	t := u
	for i := 0; i < 8; i++ {
		x := cubicBasis(x1, x2, t) - u
		if math.Abs(x) < 1e-6 {
			return t
		}
		d := cubicDeriv(x1, x2, t)
		if math.Abs(d) < 1e-8 {
			break
		}
		t -= x / d
		if t < 0 || t > 1 {
			break
		}
	}

	lo, hi := 0.0, 1.0
	t = u
	for i := 0; i < 24; i++ {
		x := cubicBasis(x1, x2, t)
		if math.Abs(x-u) < 1e-6 {
			break
		}
		if x < u {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return t
}

func cubicDeriv(c1, c2, t float64) float64 {
	mt := 1 - t
	return 3*mt*mt*c1 + 6*mt*t*(c2-c1) + 3*t*t*(1-c2)
}

// cubicPoint evaluates a full cubic bezier p0..p3 at t.
func cubicPoint(p0, p1, p2, p3, t float64) float64 {
	mt := 1 - t
	return mt*mt*mt*p0 + 3*mt*mt*t*p1 + 3*mt*t*t*p2 + t*t*t*p3
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
