package lottie

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/decker502/lottie/internal/bodymovin"
	"github.com/decker502/lottie/internal/render"
)

// Animation is a parsed Lottie document together with its decoded image
// assets. It is immutable after loading and safe to share across any number
// of players and sprites.
type Animation struct {
	comp   *bodymovin.Composition
	assets *render.AssetStore
}

// Marker is a named position on the animation timeline. Markers with a
// duration describe a playable segment starting at Frame.
type Marker struct {
	Name     string
	Frame    float64
	Duration float64
}

// Load reads and parses an animation document from r.
func Load(r io.Reader) (*Animation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read animation: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses an animation document held in memory. Image assets must
// be embedded as data URIs; file-based assets need LoadFile or LoadFS.
func LoadBytes(data []byte) (*Animation, error) {
	return loadBytes(data, nil)
}

// LoadFile reads and parses the animation at p. Image assets with relative
// paths are resolved against the file's directory.
func LoadFile(p string) (*Animation, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read animation file: %w", err)
	}
	return loadBytes(data, os.DirFS(filepath.Dir(p)))
}

// LoadFS reads and parses the named animation from fsys. Image assets are
// resolved relative to the file's directory within fsys, which makes
// embed.FS bundles work unchanged.
func LoadFS(fsys fs.FS, name string) (*Animation, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read animation %q: %w", name, err)
	}
	assetFS := fsys
	if dir := path.Dir(name); dir != "." && dir != "/" {
		sub, err := fs.Sub(fsys, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to root assets at %q: %w", dir, err)
		}
		assetFS = sub
	}
	return loadBytes(data, assetFS)
}

func loadBytes(data []byte, fsys fs.FS) (*Animation, error) {
	comp, err := bodymovin.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse animation: %w", err)
	}
	assets := render.NewAssetStore(fsys)
	if err := assets.Preload(comp); err != nil {
		// Missing bitmaps degrade to empty image layers at render time.
		log.Printf("[Animation] %q: %v", comp.Name, err)
	}
	return &Animation{comp: comp, assets: assets}, nil
}

// Name returns the composition name from the authoring tool.
func (a *Animation) Name() string {
	if a == nil || a.comp == nil {
		return ""
	}
	return a.comp.Name
}

// Version returns the Bodymovin exporter version string.
func (a *Animation) Version() string {
	if a == nil || a.comp == nil {
		return ""
	}
	return a.comp.Version
}

// Size returns the design size of the composition in pixels.
func (a *Animation) Size() (w, h float64) {
	if a == nil || a.comp == nil {
		return 0, 0
	}
	return float64(a.comp.Width), float64(a.comp.Height)
}

// FrameRate returns the native playback rate in frames per second.
func (a *Animation) FrameRate() float64 {
	if a == nil || a.comp == nil {
		return 0
	}
	return a.comp.FrameRate
}

// InPoint returns the first frame of the composition.
func (a *Animation) InPoint() float64 {
	if a == nil || a.comp == nil {
		return 0
	}
	return a.comp.InPoint
}

// OutPoint returns the frame the composition ends on.
func (a *Animation) OutPoint() float64 {
	if a == nil || a.comp == nil {
		return 0
	}
	return a.comp.OutPoint
}

// Frames returns the length of the composition in frames.
func (a *Animation) Frames() float64 {
	return a.OutPoint() - a.InPoint()
}

// Duration returns the length of one full playthrough at native speed.
func (a *Animation) Duration() time.Duration {
	fr := a.FrameRate()
	if fr <= 0 {
		return 0
	}
	return time.Duration(a.Frames() / fr * float64(time.Second))
}

// Markers returns the named timeline markers in document order.
func (a *Animation) Markers() []Marker {
	if a == nil || a.comp == nil {
		return nil
	}
	out := make([]Marker, 0, len(a.comp.Markers))
	for _, m := range a.comp.Markers {
		out = append(out, Marker{Name: m.Name, Frame: m.Frame, Duration: m.Duration})
	}
	return out
}

// Marker looks up a timeline marker by name.
func (a *Animation) Marker(name string) (Marker, bool) {
	if a == nil || a.comp == nil {
		return Marker{}, false
	}
	for _, m := range a.comp.Markers {
		if m.Name == name {
			return Marker{Name: m.Name, Frame: m.Frame, Duration: m.Duration}, true
		}
	}
	return Marker{}, false
}
