package lottie

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/gogpu/gg"

	"github.com/decker502/lottie/internal/render"
)

// renderSlack, in frames, keeps a playhead that lands exactly on the out
// point inside the last layer window instead of one step past it.
const renderSlack = 1e-2

// Surface is an off-screen canvas animations are rasterized onto. The
// backing pixmap is owned by the surface, so pixel readback never copies
// through the canvas library.
type Surface struct {
	ctx        *gg.Context
	pix        *gg.Pixmap
	background gg.RGBA

	premul []byte

	renderer *render.Renderer
	bound    *Animation
}

// NewSurface creates a transparent w by h canvas.
func NewSurface(w, h int) (*Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", w, h)
	}
	pix := gg.NewPixmap(w, h)
	return &Surface{
		ctx:        gg.NewContext(w, h, gg.WithPixmap(pix)),
		pix:        pix,
		background: gg.Transparent,
	}, nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int {
	if s == nil || s.pix == nil {
		return 0
	}
	return s.pix.Width()
}

// Height returns the surface height in pixels.
func (s *Surface) Height() int {
	if s == nil || s.pix == nil {
		return 0
	}
	return s.pix.Height()
}

// SetBackground sets the color the surface is cleared to before each
// render. nil restores the transparent default.
func (s *Surface) SetBackground(c color.Color) {
	if s == nil {
		return
	}
	if c == nil {
		s.background = gg.Transparent
		return
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	s.background = gg.RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}

// Render rasterizes one frame of the animation onto the surface, stretched
// to the surface size. Frames outside the document's playable range clamp
// to its edges.
func (s *Surface) Render(anim *Animation, frame float64) error {
	if s == nil || s.ctx == nil {
		return errors.New("surface is not initialized")
	}
	if anim == nil || anim.comp == nil {
		return errors.New("no animation to render")
	}

	if s.renderer == nil || s.bound != anim {
		s.renderer = render.New(anim.comp, anim.assets)
		s.bound = anim
	}

	lo := anim.InPoint()
	hi := anim.OutPoint() - renderSlack
	if hi < lo {
		hi = lo
	}
	if frame < lo {
		frame = lo
	} else if frame > hi {
		frame = hi
	}

	s.ctx.ClearWithColor(s.background)
	return s.renderer.Render(s.ctx, frame)
}

// RGBAPremultiplied returns the rendered pixels as premultiplied RGBA
// bytes, the layout (*ebiten.Image).WritePixels expects. The returned
// buffer is reused by the next call.
func (s *Surface) RGBAPremultiplied() []byte {
	if s == nil || s.pix == nil {
		return nil
	}
	src := s.pix.Data()
	if cap(s.premul) < len(src) {
		s.premul = make([]byte, len(src))
	}
	dst := s.premul[:len(src)]
	for i := 0; i < len(src); i += 4 {
		a := uint32(src[i+3])
		dst[i+0] = uint8(uint32(src[i+0]) * a / 255)
		dst[i+1] = uint8(uint32(src[i+1]) * a / 255)
		dst[i+2] = uint8(uint32(src[i+2]) * a / 255)
		dst[i+3] = uint8(a)
	}
	return dst
}

// Image returns a straight-alpha copy of the surface pixels.
func (s *Surface) Image() *image.NRGBA {
	if s == nil || s.pix == nil {
		return nil
	}
	out := image.NewNRGBA(image.Rect(0, 0, s.pix.Width(), s.pix.Height()))
	copy(out.Pix, s.pix.Data())
	return out
}

// SavePNG writes the surface pixels to a PNG file.
func (s *Surface) SavePNG(p string) error {
	img := s.Image()
	if img == nil {
		return errors.New("surface is not initialized")
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", p, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %q: %w", p, err)
	}
	return f.Close()
}

// Context exposes the underlying canvas for overlay drawing between
// Render and readback.
func (s *Surface) Context() *gg.Context {
	if s == nil {
		return nil
	}
	return s.ctx
}
