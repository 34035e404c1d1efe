// cmd/lottie_player/main.go
// Interactive Lottie player: transport controls, scrubbing, hot reload.
//
// Usage:
//   go run ./cmd/lottie_player -file animation.json
//
// The file is re-read whenever it changes on disk, so the player doubles
// as a live preview while an animation is being edited.

package main

import (
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/lottie"
)

var (
	filePath = flag.String("file", "", "Lottie JSON file to play (defaults to the last opened file)")
	verbose  = flag.Bool("v", false, "verbose logging")
)

const (
	windowWidth  = 960
	windowHeight = 640

	seekBarHeight = 8
	seekBarBottom = 64 // distance from the bottom edge, clears the control bar
	seekBarInset  = 24
)

// speedSteps are the multipliers the -/+ buttons walk through.
var speedSteps = []float64{0.25, 0.5, 0.75, 1, 1.5, 2, 3, 4}

type Game struct {
	sprite   *lottie.Sprite
	ui       *ebitenui.UI
	controls *ControlBar
	watcher  *Watcher
	settings *SettingsManager

	file      string
	loop      bool
	scale     float64
	speedIdx  int
	markerIdx int
	loadErr   string
}

func NewGame(file string, settings *SettingsManager) (*Game, error) {
	g := &Game{
		file:     file,
		settings: settings,
		loop:     settings.Settings().Loop,
		scale:    settings.Settings().Scale,
		speedIdx: nearestSpeedStep(settings.Settings().Speed),
	}

	sprite, err := g.loadSprite()
	if err != nil {
		return nil, err
	}
	g.sprite = sprite

	ui, controls, err := buildPlayerUI(
		g.togglePlay,
		g.stop,
		g.toggleLoop,
		g.stepSpeed,
		g.nextMarker,
		len(sprite.Animation().Markers()) > 0,
		sprite.IsPlaying(),
		g.loop,
		speedSteps[g.speedIdx],
	)
	if err != nil {
		return nil, err
	}
	g.ui = ui
	g.controls = controls

	watcher, err := NewWatcher(file)
	if err != nil {
		log.Printf("[Player] Warning: hot reload disabled: %v", err)
	} else {
		g.watcher = watcher
	}

	settings.SetLastFile(file)
	g.saveSettings()
	return g, nil
}

func (g *Game) loadSprite() (*lottie.Sprite, error) {
	loop := g.loop
	sprite, err := lottie.NewSpriteFromFile(g.file, &lottie.SpriteOptions{
		Autoplay: true,
		Loop:     &loop,
		Speed:    speedSteps[g.speedIdx],
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", g.file, err)
	}

	anim := sprite.Animation()
	log.Printf("[Player] ✓ loaded %s (%.0f frames @ %.0f fps, %d markers)",
		filepath.Base(g.file), anim.Frames(), anim.FrameRate(), len(anim.Markers()))
	return sprite, nil
}

// reload swaps in a fresh sprite while keeping the playhead position.
func (g *Game) reload() {
	frame := g.sprite.CurrentFrame()
	playing := g.sprite.IsPlaying()

	sprite, err := g.loadSprite()
	if err != nil {
		g.loadErr = err.Error()
		log.Printf("[Player] reload failed: %v", err)
		return
	}

	old := g.sprite
	g.sprite = sprite
	old.Destroy()
	g.loadErr = ""

	if playing {
		g.sprite.GoToAndPlay(frame)
	} else {
		g.sprite.GoToAndStop(frame)
	}
	g.controls.SetPlaying(g.sprite.IsPlaying())
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) togglePlay() {
	if g.sprite.IsPlaying() {
		g.sprite.Pause()
	} else {
		g.sprite.Play()
	}
	g.controls.SetPlaying(g.sprite.IsPlaying())
}

func (g *Game) stop() {
	g.sprite.Stop()
	g.controls.SetPlaying(false)
}

func (g *Game) toggleLoop() {
	g.loop = !g.loop
	g.sprite.SetLoop(g.loop)
	g.controls.SetLoop(g.loop)
	g.settings.SetLoop(g.loop)
	g.saveSettings()
}

func (g *Game) stepSpeed(step int) {
	idx := g.speedIdx + step
	if idx < 0 || idx >= len(speedSteps) {
		return
	}
	g.speedIdx = idx
	speed := speedSteps[idx]
	g.sprite.SetSpeed(speed)
	g.controls.SetSpeed(speed)
	g.settings.SetSpeed(speed)
	g.saveSettings()
}

// nextMarker cycles through the animation's markers in order.
func (g *Game) nextMarker() {
	markers := g.sprite.Animation().Markers()
	if len(markers) == 0 {
		return
	}
	m := markers[g.markerIdx%len(markers)]
	g.markerIdx++
	if err := g.sprite.PlayMarker(m.Name); err != nil {
		log.Printf("[Player] %v", err)
		return
	}
	g.controls.SetPlaying(true)
}

func (g *Game) setScale(scale float64) {
	if scale < 0.25 {
		scale = 0.25
	}
	if scale > 4 {
		scale = 4
	}
	g.scale = scale
	g.settings.SetScale(scale)
	g.saveSettings()
}

func (g *Game) saveSettings() {
	if err := g.settings.Save(); err != nil {
		log.Printf("[Player] %v", err)
	}
}

func (g *Game) Update() error {
	if g.watcher != nil {
		select {
		case name, ok := <-g.watcher.Events:
			if ok {
				log.Printf("[Player] change detected: %s", name)
				g.reload()
			}
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("[Player] watch error: %v", err)
			}
		default:
		}
	}

	g.handleKeys()
	g.handleSeekClick()

	if err := g.sprite.Update(); err != nil {
		log.Printf("[Player] %v", err)
	}
	// One-shot playback stops on its own; keep the button label honest.
	g.controls.SetPlaying(g.sprite.IsPlaying())

	g.ui.Update()
	return nil
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.togglePlay()
	}

	anim := g.sprite.Animation()
	if anim == nil {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		g.seekBy(-anim.FrameRate())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		g.seekBy(anim.FrameRate())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		g.setScale(g.scale * 1.25)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		g.setScale(g.scale / 1.25)
	}
}

// seekBy moves the playhead by a frame delta, keeping the play state.
func (g *Game) seekBy(frames float64) {
	target := g.sprite.CurrentFrame() + frames
	if g.sprite.IsPlaying() {
		g.sprite.GoToAndPlay(target)
	} else {
		g.sprite.GoToAndStop(target)
	}
}

// handleSeekClick maps a click on the seek bar to a timeline position.
func (g *Game) handleSeekClick() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	x, y := ebiten.CursorPosition()
	left, top, width := seekBarRect()
	if y < top-4 || y > top+seekBarHeight+4 || x < left || x > left+width {
		return
	}

	anim := g.sprite.Animation()
	if anim == nil {
		return
	}
	// Scrubbing addresses the whole timeline, not the active segment.
	g.sprite.ResetSegment()
	pr := float64(x-left) / float64(width)
	frame := anim.InPoint() + pr*(anim.OutPoint()-anim.InPoint())
	if g.sprite.IsPlaying() {
		g.sprite.GoToAndPlay(frame)
	} else {
		g.sprite.GoToAndStop(frame)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{24, 24, 28, 255})

	if w, h := g.sprite.Size(); w > 0 && h > 0 {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(g.scale, g.scale)
		op.GeoM.Translate(
			(windowWidth-float64(w)*g.scale)/2,
			(windowHeight-float64(h)*g.scale)/2,
		)
		g.sprite.Draw(screen, op)
	}

	g.drawSeekBar(screen)
	g.ui.Draw(screen)
	g.drawHUD(screen)
}

func (g *Game) drawSeekBar(screen *ebiten.Image) {
	anim := g.sprite.Animation()
	if anim == nil {
		return
	}
	left, top, width := seekBarRect()

	vector.DrawFilledRect(screen, float32(left), float32(top),
		float32(width), seekBarHeight, color.RGBA{58, 58, 66, 255}, false)

	span := anim.OutPoint() - anim.InPoint()
	if span <= 0 {
		return
	}
	pr := (g.sprite.CurrentFrame() - anim.InPoint()) / span
	vector.DrawFilledRect(screen, float32(left), float32(top),
		float32(pr)*float32(width), seekBarHeight, color.RGBA{120, 180, 255, 255}, false)

	for _, m := range anim.Markers() {
		mx := float64(left) + (m.Frame-anim.InPoint())/span*float64(width)
		vector.DrawFilledRect(screen, float32(mx), float32(top-3),
			2, seekBarHeight+6, color.RGBA{255, 200, 90, 255}, false)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	anim := g.sprite.Animation()
	if anim == nil {
		return
	}
	state := "paused"
	if g.sprite.IsPlaying() {
		state = "playing"
	}
	hud := fmt.Sprintf("%s | frame %.1f / %.0f | %s | x%g | scale %.2f | space play  arrows seek/scale",
		filepath.Base(g.file), g.sprite.CurrentFrame(), anim.OutPoint(),
		state, speedSteps[g.speedIdx], g.scale)
	ebitenutil.DebugPrintAt(screen, hud, 8, 8)

	if g.loadErr != "" {
		ebitenutil.DebugPrintAt(screen, "reload error: "+g.loadErr, 8, 24)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return windowWidth, windowHeight
}

func seekBarRect() (left, top, width int) {
	return seekBarInset, windowHeight - seekBarBottom, windowWidth - 2*seekBarInset
}

// nearestSpeedStep maps a saved speed back onto the step list.
func nearestSpeedStep(speed float64) int {
	best := 0
	for i, s := range speedSteps {
		if math.Abs(s-speed) < math.Abs(speedSteps[best]-speed) {
			best = i
		}
	}
	return best
}

func main() {
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	gdataManager, err := gdata.Open(gdata.Config{AppName: "lottie_player"})
	if err != nil {
		log.Printf("[Player] Warning: preferences unavailable: %v", err)
		gdataManager = nil
	}
	settings := NewSettingsManager(gdataManager)

	file := *filePath
	if file == "" {
		file = settings.Settings().LastFile
	}
	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: lottie_player -file animation.json")
		os.Exit(1)
	}

	game, err := NewGame(file, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lottie_player: %v\n", err)
		os.Exit(1)
	}
	defer game.Close()

	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle("Lottie Player - " + filepath.Base(file))

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
