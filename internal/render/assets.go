package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io/fs"
	"math"
	"path"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/gogpu/gg"

	"github.com/decker502/lottie/internal/bodymovin"
)

// AssetStore loads and caches the bitmaps of a document's image assets.
// Assets come either from a filesystem (the "u" directory plus "p" name)
// or inline as base64 data URIs. Decoded images are kept in straight
// alpha so the renderer's sampling brush can interpolate them directly.
type AssetStore struct {
	fsys   fs.FS
	images map[string]*image.NRGBA
	failed map[string]bool
}

// NewAssetStore creates a store reading file-based assets from fsys.
// fsys may be nil when every asset is embedded in the document.
func NewAssetStore(fsys fs.FS) *AssetStore {
	return &AssetStore{
		fsys:   fsys,
		images: make(map[string]*image.NRGBA),
		failed: make(map[string]bool),
	}
}

// Preload decodes every image asset of the composition up front, so
// playback never stalls on first use. All failures are collected; assets
// that failed stay unavailable but do not block the others.
func (s *AssetStore) Preload(comp *bodymovin.Composition) error {
	var errs []error
	for i := range comp.Assets {
		a := &comp.Assets[i]
		if a.IsPrecomp() {
			continue
		}
		if _, ok := s.images[a.ID]; ok {
			continue
		}
		img, err := s.load(a)
		if err != nil {
			s.failed[a.ID] = true
			errs = append(errs, fmt.Errorf("failed to load asset %q: %w", a.ID, err))
			continue
		}
		s.images[a.ID] = img
	}
	return errors.Join(errs...)
}

// Image returns the decoded bitmap of an asset, loading it on first use.
// Returns nil when the asset cannot be loaded; the failure is remembered
// so it is not retried every frame.
func (s *AssetStore) Image(a *bodymovin.Asset) *image.NRGBA {
	if a == nil {
		return nil
	}
	if img, ok := s.images[a.ID]; ok {
		return img
	}
	if s.failed[a.ID] {
		return nil
	}
	img, err := s.load(a)
	if err != nil {
		s.failed[a.ID] = true
		return nil
	}
	s.images[a.ID] = img
	return img
}

func (s *AssetStore) load(a *bodymovin.Asset) (*image.NRGBA, error) {
	if a.Path == "" {
		return nil, errors.New("asset has no path")
	}

	var data []byte
	var err error
	switch {
	case strings.HasPrefix(a.Path, "data:"):
		data, err = decodeDataURI(a.Path)
	case s.fsys != nil:
		data, err = fs.ReadFile(s.fsys, path.Join(a.Dir, a.Path))
	default:
		return nil, fmt.Errorf("no filesystem to read %q from", path.Join(a.Dir, a.Path))
	}
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return toNRGBA(img), nil
}

// decodeDataURI extracts the payload of a base64 data URI.
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.Index(uri, ",")
	if comma < 0 {
		return nil, errors.New("malformed data uri")
	}
	header, payload := uri[:comma], uri[comma+1:]
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("unsupported data uri encoding %q", header)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	return data, nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// sampleImage bilinearly samples the bitmap at (x, y) in image pixels.
// Coordinates arrive at pixel centers; points outside the bitmap are
// transparent. Interpolation happens premultiplied so transparent texels
// do not bleed color fringes into the edges.
func sampleImage(img *image.NRGBA, x, y float64) gg.RGBA {
	x -= 0.5
	y -= 0.5
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	top := lerpPremul(texel(img, x0, y0), texel(img, x0+1, y0), fx)
	bottom := lerpPremul(texel(img, x0, y0+1), texel(img, x0+1, y0+1), fx)
	return lerpPremul(top, bottom, fy)
}

func texel(img *image.NRGBA, x, y int) gg.RGBA {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return gg.Transparent
	}
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	return gg.RGBA{
		R: float64(p[0]) / 255,
		G: float64(p[1]) / 255,
		B: float64(p[2]) / 255,
		A: float64(p[3]) / 255,
	}
}

func lerpPremul(a, b gg.RGBA, t float64) gg.RGBA {
	pr := a.R*a.A + (b.R*b.A-a.R*a.A)*t
	pg := a.G*a.A + (b.G*b.A-a.G*a.A)*t
	pb := a.B*a.A + (b.B*b.A-a.B*a.A)*t
	pa := a.A + (b.A-a.A)*t
	if pa <= 0 {
		return gg.Transparent
	}
	return gg.RGBA{R: pr / pa, G: pg / pa, B: pb / pa, A: pa}
}
