// cmd/lottie_info/main.go
// Prints a structural summary of a Lottie document: timing, markers,
// the layer tree and the asset inventory.
//
// Usage:
//   go run ./cmd/lottie_info [-json] <file.json> [more.json ...]

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/decker502/lottie/internal/bodymovin"
)

var asJSON = flag.Bool("json", false, "emit a machine-readable summary")

var layerTypeNames = map[bodymovin.LayerType]string{
	bodymovin.LayerPrecomp: "precomp",
	bodymovin.LayerSolid:   "solid",
	bodymovin.LayerImage:   "image",
	bodymovin.LayerNull:    "null",
	bodymovin.LayerShape:   "shape",
	bodymovin.LayerText:    "text",
	bodymovin.LayerAudio:   "audio",
}

// summary is the -json output shape.
type summary struct {
	File      string          `json:"file"`
	Name      string          `json:"name,omitempty"`
	Version   string          `json:"version,omitempty"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	FrameRate float64         `json:"frameRate"`
	InPoint   float64         `json:"inPoint"`
	OutPoint  float64         `json:"outPoint"`
	Duration  float64         `json:"durationSeconds"`
	Markers   []markerSummary `json:"markers,omitempty"`
	Layers    []layerSummary  `json:"layers"`
	Assets    []assetSummary  `json:"assets,omitempty"`
}

type markerSummary struct {
	Name     string  `json:"name"`
	Frame    float64 `json:"frame"`
	Duration float64 `json:"duration"`
}

type layerSummary struct {
	Index    int     `json:"index"`
	Name     string  `json:"name,omitempty"`
	Type     string  `json:"type"`
	Parent   *int    `json:"parent,omitempty"`
	InPoint  float64 `json:"inPoint"`
	OutPoint float64 `json:"outPoint"`
	Start    float64 `json:"startTime"`
	Stretch  float64 `json:"stretch,omitempty"`
	Hidden   bool    `json:"hidden,omitempty"`
	Shapes   int     `json:"shapeItems,omitempty"`
	Masks    int     `json:"masks,omitempty"`
	RefID    string  `json:"refId,omitempty"`
}

type assetSummary struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Path     string `json:"path,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Layers   int    `json:"layers,omitempty"`
	Embedded bool   `json:"embedded,omitempty"`
}

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: lottie_info [-json] <file.json> [more.json ...]")
		os.Exit(1)
	}

	for i, path := range flag.Args() {
		if i > 0 && !*asJSON {
			fmt.Println()
		}
		if err := report(path); err != nil {
			log.Fatalf("%s: %v", path, err)
		}
	}
}

func report(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	comp, err := bodymovin.Parse(data)
	if err != nil {
		return err
	}

	s := summarize(path, comp)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	printSummary(s)
	return nil
}

func summarize(path string, comp *bodymovin.Composition) *summary {
	s := &summary{
		File:      path,
		Name:      comp.Name,
		Version:   comp.Version,
		Width:     comp.Width,
		Height:    comp.Height,
		FrameRate: comp.FrameRate,
		InPoint:   comp.InPoint,
		OutPoint:  comp.OutPoint,
		Duration:  (comp.OutPoint - comp.InPoint) / comp.FrameRate,
	}

	for _, m := range comp.Markers {
		s.Markers = append(s.Markers, markerSummary{
			Name:     m.Name,
			Frame:    m.Frame,
			Duration: m.Duration,
		})
	}

	for i := range comp.Layers {
		s.Layers = append(s.Layers, summarizeLayer(&comp.Layers[i]))
	}

	for i := range comp.Assets {
		a := &comp.Assets[i]
		as := assetSummary{ID: a.ID}
		if a.IsPrecomp() {
			as.Kind = "precomp"
			as.Layers = len(a.Layers)
		} else {
			as.Kind = "image"
			as.Width = a.Width
			as.Height = a.Height
			as.Embedded = a.Embedded != 0 || strings.HasPrefix(a.Path, "data:")
			if !as.Embedded {
				as.Path = a.Dir + a.Path
			}
		}
		s.Assets = append(s.Assets, as)
	}

	return s
}

func summarizeLayer(l *bodymovin.Layer) layerSummary {
	name, ok := layerTypeNames[l.Type]
	if !ok {
		name = fmt.Sprintf("type-%d", l.Type)
	}
	ls := layerSummary{
		Index:    l.Index,
		Name:     l.Name,
		Type:     name,
		Parent:   l.Parent,
		InPoint:  l.InPoint,
		OutPoint: l.OutPoint,
		Start:    l.StartTime,
		Hidden:   l.Hidden,
		Masks:    len(l.Masks),
		RefID:    l.RefID,
	}
	if l.Stretch != 0 && l.Stretch != 1 {
		ls.Stretch = l.Stretch
	}
	if l.Type == bodymovin.LayerShape {
		ls.Shapes = countShapeItems(l.Shapes)
	}
	return ls
}

// countShapeItems counts shape items including everything nested in
// groups.
func countShapeItems(items []bodymovin.ShapeItem) int {
	n := 0
	for i := range items {
		n++
		if items[i].Group != nil {
			n += countShapeItems(items[i].Group.Items)
		}
	}
	return n
}

func printSummary(s *summary) {
	fmt.Printf("File: %s\n", s.File)
	if s.Name != "" {
		fmt.Printf("Name: %s\n", s.Name)
	}
	if s.Version != "" {
		fmt.Printf("Bodymovin version: %s\n", s.Version)
	}
	fmt.Printf("Size: %dx%d\n", s.Width, s.Height)
	fmt.Printf("Frame rate: %g fps\n", s.FrameRate)
	fmt.Printf("Frames: %g ~ %g (%.2fs)\n", s.InPoint, s.OutPoint, s.Duration)

	if len(s.Markers) > 0 {
		fmt.Printf("\nMarkers (%d):\n", len(s.Markers))
		for _, m := range s.Markers {
			if m.Duration > 0 {
				fmt.Printf("  %-20s frame %g, %g frames long\n", m.Name, m.Frame, m.Duration)
			} else {
				fmt.Printf("  %-20s frame %g\n", m.Name, m.Frame)
			}
		}
	}

	fmt.Printf("\nLayers (%d):\n", len(s.Layers))
	for _, l := range s.Layers {
		line := fmt.Sprintf("  #%-3d %-8s %-24s frames %g ~ %g", l.Index, l.Type, l.Name, l.InPoint, l.OutPoint)
		if l.Parent != nil {
			line += fmt.Sprintf("  parent #%d", *l.Parent)
		}
		if l.Start != 0 {
			line += fmt.Sprintf("  start %g", l.Start)
		}
		if l.Stretch != 0 {
			line += fmt.Sprintf("  stretch %g", l.Stretch)
		}
		if l.RefID != "" {
			line += fmt.Sprintf("  ref %q", l.RefID)
		}
		if l.Shapes > 0 {
			line += fmt.Sprintf("  %d shape items", l.Shapes)
		}
		if l.Masks > 0 {
			line += fmt.Sprintf("  %d masks", l.Masks)
		}
		if l.Hidden {
			line += "  [hidden]"
		}
		fmt.Println(line)
	}

	if len(s.Assets) > 0 {
		fmt.Printf("\nAssets (%d):\n", len(s.Assets))
		for _, a := range s.Assets {
			switch {
			case a.Kind == "precomp":
				fmt.Printf("  %-16s precomp, %d layers\n", a.ID, a.Layers)
			case a.Embedded:
				fmt.Printf("  %-16s image %dx%d, embedded\n", a.ID, a.Width, a.Height)
			default:
				fmt.Printf("  %-16s image %dx%d, %s\n", a.ID, a.Width, a.Height, a.Path)
			}
		}
	}
}
