//go:build mobile

// Package mobile provides the ebitenmobile binding entry point: a small
// viewer that plays the bundled sample animations, advancing on tap.
//
// Build with the ebitenmobile tool:
//
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.decker.lottie -o build/lottie.aar ./mobile
//	ebitenmobile bind -target ios -tags mobile -o build/Lottie.xcframework ./mobile
package mobile

import (
	"image/color"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/decker502/lottie"
	"github.com/decker502/lottie/internal/sampledata"
)

func init() {
	mobile.SetGame(newDemoGame())
}

// demoGame cycles through the bundled sample animations.
type demoGame struct {
	sprite  *lottie.Sprite
	names   []string
	index   int
	width   int
	height  int
	touches []ebiten.TouchID
}

func newDemoGame() *demoGame {
	g := &demoGame{names: sampledata.Names()}
	g.load(0)
	return g
}

// load swaps in the sample at index, keeping the old sprite on failure.
func (g *demoGame) load(index int) {
	if len(g.names) == 0 {
		return
	}
	index %= len(g.names)

	data, err := sampledata.ReadFile(g.names[index])
	if err != nil {
		log.Printf("[Mobile] %v", err)
		return
	}
	sprite, err := lottie.NewSpriteFromBytes(data, &lottie.SpriteOptions{Autoplay: true})
	if err != nil {
		log.Printf("[Mobile] failed to load %s: %v", g.names[index], err)
		return
	}

	if g.sprite != nil {
		g.sprite.Destroy()
	}
	g.sprite = sprite
	g.index = index
}

func (g *demoGame) Update() error {
	g.touches = inpututil.AppendJustPressedTouchIDs(g.touches[:0])
	if len(g.touches) > 0 {
		g.load(g.index + 1)
	}

	if err := g.sprite.Update(); err != nil {
		log.Printf("[Mobile] %v", err)
	}
	return nil
}

func (g *demoGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{24, 24, 28, 255})

	w, h := g.sprite.Size()
	if w == 0 || h == 0 || g.width == 0 || g.height == 0 {
		return
	}
	scale := math.Min(float64(g.width)/float64(w), float64(g.height)/float64(h)) * 0.8
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(
		(float64(g.width)-float64(w)*scale)/2,
		(float64(g.height)-float64(h)*scale)/2,
	)
	g.sprite.Draw(screen, op)
}

func (g *demoGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
