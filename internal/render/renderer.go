// Package render rasterizes parsed animation documents onto gg drawing
// contexts. A Renderer walks the composition's layer stack bottom to top,
// resolving parent chains and keyframed transforms, and hands shape
// geometry to the gg rasterizer in device space.
package render

import (
	"fmt"
	"log"
	"math"

	"github.com/gogpu/gg"

	"github.com/decker502/lottie/internal/bodymovin"
)

// maxPrecompDepth bounds precomp recursion so documents with circular
// asset references terminate.
const maxPrecompDepth = 16

// maxWarnings bounds the memoized warning set. Feature tags come from the
// document, so a degenerate file could mint an unbounded number of them.
const maxWarnings = 64

// Renderer draws one composition. It is not safe for concurrent use; a
// renderer belongs to the player that owns it.
type Renderer struct {
	comp   *bodymovin.Composition
	assets *AssetStore

	// scratch context reused for rasterizing layer masks
	maskCtx *gg.Context

	// one log line per unsupported feature, keyed by feature tag
	warned map[string]struct{}
}

// New creates a renderer for the composition. assets may be nil when the
// document has no image layers.
func New(comp *bodymovin.Composition, assets *AssetStore) *Renderer {
	return &Renderer{
		comp:   comp,
		assets: assets,
		warned: make(map[string]struct{}),
	}
}

// Render draws the composition at the given frame onto ctx. The animation
// is stretched to the context's size. The caller clears the context; Render
// only paints layer content.
func (r *Renderer) Render(ctx *gg.Context, frame float64) error {
	ctx.Identity()

	sx, sy := 1.0, 1.0
	if r.comp.Width > 0 {
		sx = float64(ctx.Width()) / float64(r.comp.Width)
	}
	if r.comp.Height > 0 {
		sy = float64(ctx.Height()) / float64(r.comp.Height)
	}

	if err := r.drawLayers(ctx, r.comp.Layers, frame, gg.Scale(sx, sy), 0); err != nil {
		return fmt.Errorf("failed to render frame %g: %w", frame, err)
	}
	return nil
}

// drawLayers paints a layer stack bottom to top. The stack is stored
// topmost first, so iteration runs backwards.
func (r *Renderer) drawLayers(ctx *gg.Context, layers []bodymovin.Layer, frame float64, root gg.Matrix, depth int) error {
	for i := len(layers) - 1; i >= 0; i-- {
		if err := r.drawLayer(ctx, layers, &layers[i], frame, root, depth); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawLayer(ctx *gg.Context, layers []bodymovin.Layer, l *bodymovin.Layer, frame float64, root gg.Matrix, depth int) error {
	if l.Hidden || l.MatteSource != 0 {
		return nil
	}
	if frame < l.InPoint || frame >= l.OutPoint {
		return nil
	}

	switch l.Type {
	case bodymovin.LayerText:
		r.warnOnce("layer:text", "text layers are not supported, skipping %q", l.Name)
		return nil
	case bodymovin.LayerAudio:
		r.warnOnce("layer:audio", "audio layers are not supported, skipping %q", l.Name)
		return nil
	case bodymovin.LayerNull:
		return nil
	}
	if l.MatteMode != nil {
		r.warnOnce("layer:matte", "track mattes are not supported, drawing %q unmatted", l.Name)
	}
	if l.TimeRemap != nil {
		r.warnOnce("layer:remap", "time remapping is not supported, playing %q linearly", l.Name)
	}

	t := localTime(l, frame)
	world := layerWorld(layers, l, frame, root)

	opacity := l.Transform.OpacityAt(t)
	if opacity <= 0 {
		return nil
	}
	layered := opacity < 1
	if layered {
		ctx.PushLayer(gg.BlendNormal, opacity)
	}

	masked, err := r.applyMasks(ctx, l, t, world)
	if err == nil {
		err = r.drawContent(ctx, l, t, world, depth)
	}
	if masked {
		ctx.Pop()
	}
	if layered {
		ctx.PopLayer()
	}
	return err
}

func (r *Renderer) drawContent(ctx *gg.Context, l *bodymovin.Layer, t float64, world gg.Matrix, depth int) error {
	switch l.Type {
	case bodymovin.LayerShape:
		return r.drawShapes(ctx, l.Shapes, t, shapeState{world: world, opacity: 1}, nil)
	case bodymovin.LayerSolid:
		return r.drawSolid(ctx, l, world)
	case bodymovin.LayerImage:
		return r.drawImageLayer(ctx, l, world)
	case bodymovin.LayerPrecomp:
		return r.drawPrecomp(ctx, l, t, world, depth)
	}
	return nil
}

func (r *Renderer) drawSolid(ctx *gg.Context, l *bodymovin.Layer, world gg.Matrix) error {
	if l.SolidWidth <= 0 || l.SolidHeight <= 0 {
		return nil
	}
	sp := rectSubpath(l.SolidWidth/2, l.SolidHeight/2, l.SolidWidth, l.SolidHeight, 0)
	emitSubpaths(ctx, []subpath{sp.transformed(world)})
	ctx.SetFillRule(gg.FillRuleNonZero)
	ctx.SetFillBrush(gg.SolidHex(l.SolidColor))
	return ctx.Fill()
}

func (r *Renderer) drawImageLayer(ctx *gg.Context, l *bodymovin.Layer, world gg.Matrix) error {
	asset := r.comp.Asset(l.RefID)
	if asset == nil || asset.IsPrecomp() || r.assets == nil {
		r.warnOnce("image:"+l.RefID, "image layer %q references missing asset %q", l.Name, l.RefID)
		return nil
	}
	img := r.assets.Image(asset)
	if img == nil {
		r.warnOnce("image:"+l.RefID, "image asset %q is unavailable, skipping layer %q", l.RefID, l.Name)
		return nil
	}

	w := float64(asset.Width)
	h := float64(asset.Height)
	if w <= 0 || h <= 0 {
		b := img.Bounds()
		w, h = float64(b.Dx()), float64(b.Dy())
	}

	// gg brushes sample device pixels, so the brush maps each pixel back
	// into image space through the inverse transform. This keeps rotated
	// and skewed image layers intact.
	inv := world.Invert()
	brush := gg.CustomBrush{
		Name: "image:" + asset.ID,
		Func: func(x, y float64) gg.RGBA {
			p := inv.TransformPoint(pt(x, y))
			return sampleImage(img, p.X, p.Y)
		},
	}

	sp := rectSubpath(w/2, h/2, w, h, 0)
	emitSubpaths(ctx, []subpath{sp.transformed(world)})
	ctx.SetFillRule(gg.FillRuleNonZero)
	ctx.SetFillBrush(brush)
	return ctx.Fill()
}

func (r *Renderer) drawPrecomp(ctx *gg.Context, l *bodymovin.Layer, t float64, world gg.Matrix, depth int) error {
	if depth >= maxPrecompDepth {
		r.warnOnce("precomp:depth", "precomp nesting exceeds %d levels, truncating", maxPrecompDepth)
		return nil
	}
	asset := r.comp.Asset(l.RefID)
	if asset == nil || !asset.IsPrecomp() {
		r.warnOnce("precomp:"+l.RefID, "precomp layer %q references missing asset %q", l.Name, l.RefID)
		return nil
	}

	clipped := l.Width > 0 && l.Height > 0
	if clipped {
		ctx.Push()
		sp := rectSubpath(l.Width/2, l.Height/2, l.Width, l.Height, 0)
		emitSubpaths(ctx, []subpath{sp.transformed(world)})
		ctx.Clip()
	}
	err := r.drawLayers(ctx, asset.Layers, t, world, depth+1)
	if clipped {
		ctx.Pop()
	}
	return err
}

// applyMasks rasterizes the layer's additive masks and installs them as
// the context mask, intersected with any mask already active (an enclosing
// masked precomp). Returns whether a ctx.Pop is owed.
func (r *Renderer) applyMasks(ctx *gg.Context, l *bodymovin.Layer, t float64, world gg.Matrix) (bool, error) {
	if len(l.Masks) == 0 {
		return false, nil
	}

	any := false
	for i := range l.Masks {
		m := &l.Masks[i]
		if m.Mode == "n" {
			continue
		}
		if m.Mode != "a" || m.Inverted {
			r.warnOnce("mask:"+m.Mode, "only additive masks are supported, ignoring masks on %q", l.Name)
			return false, nil
		}
		any = true
	}
	if !any {
		return false, nil
	}

	mask, err := r.rasterizeMasks(ctx, l.Masks, t, world)
	if err != nil {
		return false, err
	}
	if prev := ctx.GetMask(); prev != nil {
		intersectMask(mask, prev)
	}

	ctx.Push()
	ctx.SetMask(mask)
	return true, nil
}

// rasterizeMasks paints the mask paths white at their own opacity into a
// scratch context and lifts the alpha channel out as the layer mask.
func (r *Renderer) rasterizeMasks(ctx *gg.Context, masks []bodymovin.Mask, t float64, world gg.Matrix) (*gg.Mask, error) {
	w, h := ctx.Width(), ctx.Height()
	if r.maskCtx == nil || r.maskCtx.Width() != w || r.maskCtx.Height() != h {
		r.maskCtx = gg.NewContext(w, h)
	}
	mc := r.maskCtx
	mc.Identity()
	mc.ClearWithColor(gg.Transparent)

	for i := range masks {
		m := &masks[i]
		if m.Mode == "n" {
			continue
		}
		sp, ok := bezierSubpath(m.Path.At(t))
		if !ok {
			continue
		}
		emitSubpaths(mc, []subpath{sp.transformed(world)})
		mc.SetFillRule(gg.FillRuleNonZero)
		mc.SetFillBrush(gg.SolidRGBA(1, 1, 1, m.Opacity.AtOr(t, 100)/100))
		if err := mc.Fill(); err != nil {
			return nil, fmt.Errorf("failed to rasterize mask: %w", err)
		}
	}
	return gg.NewMaskFromAlpha(mc.Image()), nil
}

// intersectMask multiplies prev into dst in place.
func intersectMask(dst, prev *gg.Mask) {
	d := dst.Data()
	p := prev.Data()
	if len(d) != len(p) {
		return
	}
	for i := range d {
		d[i] = uint8(uint16(d[i]) * uint16(p[i]) / 255)
	}
}

// localTime maps a composition frame onto the layer's own timeline,
// honoring the start offset and time stretch.
func localTime(l *bodymovin.Layer, frame float64) float64 {
	sr := l.Stretch
	if sr == 0 {
		sr = 1
	}
	return (frame - l.StartTime) / sr
}

// layerWorld resolves the layer's device matrix, walking the parent chain.
// Parents contribute their transforms evaluated on their own timelines.
// Cycles in the chain terminate at the first repeated index.
func layerWorld(layers []bodymovin.Layer, l *bodymovin.Layer, frame float64, root gg.Matrix) gg.Matrix {
	m := transformMatrix(&l.Transform, localTime(l, frame))

	seen := map[int]bool{l.Index: true}
	cur := l
	for cur.Parent != nil && !seen[*cur.Parent] {
		seen[*cur.Parent] = true
		p := layerByIndex(layers, *cur.Parent)
		if p == nil {
			break
		}
		m = transformMatrix(&p.Transform, localTime(p, frame)).Multiply(m)
		cur = p
	}
	return root.Multiply(m)
}

func layerByIndex(layers []bodymovin.Layer, index int) *bodymovin.Layer {
	for i := range layers {
		if layers[i].Index == index {
			return &layers[i]
		}
	}
	return nil
}

// transformMatrix builds the local matrix of a transform block at a frame:
// translate to position, rotate, skew, scale, then shift by the anchor.
func transformMatrix(t *bodymovin.Transform, frame float64) gg.Matrix {
	px, py := t.PositionAt(frame)
	ax, ay := t.AnchorAt(frame)
	sx, sy := t.ScaleAt(frame)
	rot := t.RotationAt(frame)
	sk, sa := t.SkewAt(frame)

	m := gg.Translate(px, py)
	if rot != 0 {
		m = m.Multiply(gg.Rotate(rot * math.Pi / 180))
	}
	if sk != 0 {
		m = m.Multiply(skewMatrix(sk, sa))
	}
	if sx != 1 || sy != 1 {
		m = m.Multiply(gg.Scale(sx, sy))
	}
	if ax != 0 || ay != 0 {
		m = m.Multiply(gg.Translate(-ax, -ay))
	}
	return m
}

// skewMatrix shears along an axis rotated sa degrees from horizontal.
func skewMatrix(skewDeg, axisDeg float64) gg.Matrix {
	axis := axisDeg * math.Pi / 180
	shear := math.Tan(-skewDeg * math.Pi / 180)
	return gg.Rotate(axis).Multiply(gg.Shear(shear, 0)).Multiply(gg.Rotate(-axis))
}

func (r *Renderer) warnOnce(key, format string, args ...any) {
	if _, ok := r.warned[key]; ok {
		return
	}
	if len(r.warned) >= maxWarnings {
		if _, ok := r.warned[""]; !ok {
			r.warned[""] = struct{}{}
			log.Printf("[Render] further unsupported-feature warnings suppressed")
		}
		return
	}
	r.warned[key] = struct{}{}
	log.Printf("[Render] "+format, args...)
}
