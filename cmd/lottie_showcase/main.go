// cmd/lottie_showcase/main.go
// Grid showcase: plays many Lottie files side by side, paged.
//
// Usage:
//   go run ./cmd/lottie_showcase -config showcase.yaml

package main

import (
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/lottie"
	"github.com/decker502/lottie/internal/sampledata"
)

var (
	configPath = flag.String("config", "showcase.yaml", "config file or directory")
	startPage  = flag.Int("page", 1, "page to open first")
	verbose    = flag.Bool("v", false, "verbose logging")
)

const (
	cellPadding = 10
	rowsPerPage = 3
	hudHeight   = 16
	infoBarH    = 24
)

// speedSteps are the multipliers the S key cycles through.
var speedSteps = []float64{1, 2, 4, 0.25, 0.5}

// cell is one grid slot: a sprite plus the entry it was built from.
type cell struct {
	entry  AnimationEntry
	sprite *lottie.Sprite
}

// Game pages through the configured animations.
type Game struct {
	manager *Manager
	global  GlobalConfig

	entries      []AnimationEntry
	cells        []*cell
	currentPage  int
	totalPages   int
	cellsPerPage int

	paused   bool
	speedIdx int

	background   color.RGBA
	windowWidth  int
	windowHeight int
}

func NewGame(configPath string, page int) (*Game, error) {
	manager, err := NewManager(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	global := manager.Global()
	entries := manager.Entries()
	if len(entries) == 0 {
		return nil, fmt.Errorf("config has no animations")
	}
	log.Printf("[Showcase] config loaded: %d animations", len(entries))

	cellsPerPage := global.Columns * rowsPerPage
	totalPages := (len(entries) + cellsPerPage - 1) / cellsPerPage

	g := &Game{
		manager:      manager,
		global:       global,
		entries:      entries,
		totalPages:   totalPages,
		cellsPerPage: cellsPerPage,
		background:   parseHexColor(global.Background),
		windowWidth:  global.Columns*(global.CellWidth+cellPadding) + cellPadding,
		windowHeight: rowsPerPage*(global.CellHeight+cellPadding) + cellPadding + infoBarH,
	}

	if page < 1 || page > totalPages {
		page = 1
	}
	if err := g.loadPage(page - 1); err != nil {
		return nil, err
	}
	return g, nil
}

// loadPage swaps the visible cells for the given zero-based page.
func (g *Game) loadPage(page int) error {
	if page < 0 || page >= g.totalPages {
		return fmt.Errorf("page %d out of range (1 ~ %d)", page+1, g.totalPages)
	}

	for _, c := range g.cells {
		c.sprite.Destroy()
	}
	g.cells = g.cells[:0]

	start := page * g.cellsPerPage
	end := start + g.cellsPerPage
	if end > len(g.entries) {
		end = len(g.entries)
	}

	for _, entry := range g.entries[start:end] {
		sprite, err := g.loadEntry(entry)
		if err != nil {
			log.Printf("[Showcase] skipping %q: %v", entry.ID, err)
			continue
		}
		g.cells = append(g.cells, &cell{entry: entry, sprite: sprite})
		log.Printf("[Showcase] loaded %q (%s)", entry.ID, entry.File)
	}

	if len(g.cells) == 0 {
		return fmt.Errorf("no animation on page %d could be loaded", page+1)
	}

	g.currentPage = page
	g.applySpeed()
	return nil
}

// loadEntry builds the sprite for one cell, from disk or from the
// bundled sample set.
func (g *Game) loadEntry(entry AnimationEntry) (*lottie.Sprite, error) {
	if entry.Embedded {
		data, err := sampledata.ReadFile(entry.File)
		if err != nil {
			return nil, err
		}
		return lottie.NewSpriteFromBytes(data, g.spriteOptions(entry))
	}
	return lottie.NewSpriteFromFile(entry.File, g.spriteOptions(entry))
}

func (g *Game) spriteOptions(entry AnimationEntry) *lottie.SpriteOptions {
	autoplay := true
	if entry.Autoplay != nil {
		autoplay = *entry.Autoplay
	}
	return &lottie.SpriteOptions{
		Width:    g.global.CellWidth,
		Height:   g.global.CellHeight - hudHeight,
		Autoplay: autoplay && !g.paused,
		Loop:     entry.Loop,
		Speed:    entry.Speed,
		TPS:      g.global.TPS,
	}
}

// applySpeed pushes the current speed multiplier onto every cell.
func (g *Game) applySpeed() {
	mult := speedSteps[g.speedIdx]
	for _, c := range g.cells {
		base := c.entry.Speed
		if base == 0 {
			base = 1
		}
		c.sprite.SetSpeed(base * mult)
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
		for _, c := range g.cells {
			if g.paused {
				c.sprite.Pause()
			} else {
				c.sprite.Play()
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyRight) && g.currentPage < g.totalPages-1 {
		if err := g.loadPage(g.currentPage + 1); err != nil {
			log.Printf("[Showcase] %v", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) && g.currentPage > 0 {
		if err := g.loadPage(g.currentPage - 1); err != nil {
			log.Printf("[Showcase] %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		for _, c := range g.cells {
			c.sprite.Stop()
			if !g.paused {
				c.sprite.Play()
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.speedIdx = (g.speedIdx + 1) % len(speedSteps)
		g.applySpeed()
	}

	for _, c := range g.cells {
		if err := c.sprite.Update(); err != nil {
			log.Printf("[Showcase] %q: %v", c.entry.ID, err)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.background)

	for i, c := range g.cells {
		x, y := g.cellPosition(i)

		vector.StrokeRect(screen, float32(x), float32(y),
			float32(g.global.CellWidth), float32(g.global.CellHeight),
			1, color.RGBA{90, 90, 90, 255}, false)

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(x, y)
		c.sprite.Draw(screen, op)

		hud := fmt.Sprintf("%s  f%.0f", c.entry.Name, c.sprite.CurrentFrame())
		ebitenutil.DebugPrintAt(screen, hud, int(x)+4, int(y)+g.global.CellHeight-hudHeight)
	}

	state := "playing"
	if g.paused {
		state = "paused"
	}
	info := fmt.Sprintf("page %d/%d | %d cells | %s | speed x%g | space pause  arrows page  R restart  S speed",
		g.currentPage+1, g.totalPages, len(g.cells), state, speedSteps[g.speedIdx])
	ebitenutil.DebugPrintAt(screen, info, 8, g.windowHeight-infoBarH+4)
}

// cellPosition returns the top-left corner of the i-th cell.
func (g *Game) cellPosition(i int) (float64, float64) {
	row := i / g.global.Columns
	col := i % g.global.Columns

	x := float64(col*(g.global.CellWidth+cellPadding) + cellPadding)
	y := float64(row*(g.global.CellHeight+cellPadding) + cellPadding)
	return x, y
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.windowWidth, g.windowHeight
}

// parseHexColor reads "#rrggbb", falling back to dark gray.
func parseHexColor(s string) color.RGBA {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{48, 48, 48, 255}
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{48, 48, 48, 255}
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}
}

func main() {
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	game, err := NewGame(*configPath, *startPage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lottie_showcase: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(game.windowWidth, game.windowHeight)
	ebiten.SetWindowTitle("Lottie Showcase")
	ebiten.SetTPS(game.global.TPS)

	log.Printf("[Showcase] window %dx%d @ %d TPS", game.windowWidth, game.windowHeight, game.global.TPS)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
