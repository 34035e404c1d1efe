package lottie

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// SpriteOptions configures a Sprite. The zero value (and a nil pointer)
// means: composition-sized texture, paused start, looping, native speed,
// forward, transparent background.
type SpriteOptions struct {
	// Width and Height set the texture size in pixels; the animation is
	// stretched to fill it. Zero uses the composition size.
	Width  int
	Height int

	// Autoplay starts playback immediately.
	Autoplay bool

	// Loop wraps playback at the segment edge. nil means true.
	Loop *bool

	// Speed is the playback rate multiplier. Zero means 1; negative
	// values play in reverse.
	Speed float64

	// Direction is +1 forward, -1 reverse. Zero means forward.
	Direction int

	// TPS is how many Sprite.Update calls make up one second. Zero uses
	// ebiten.TPS().
	TPS int

	// Background fills the texture before each frame. nil keeps it
	// transparent.
	Background color.Color

	// FS supplies file-based image assets to NewSpriteFromBytes.
	FS fs.FS

	// OnComplete fires when a one-shot run finishes.
	OnComplete func()
	// OnLoop fires on each wrap with the total wrap count of the run.
	OnLoop func(count int)
	// OnProgress fires with the 0..1 segment position whenever the
	// playhead moves.
	OnProgress func(p float64)
	// OnFrame fires with the new playhead frame whenever it moves.
	OnFrame func(frame float64)
}

// Sprite plays an animation as an Ebitengine texture. Call Update once
// per game tick and Draw once per frame. All methods expect the game-loop
// goroutine; after Destroy (or on a zero Sprite) every method is a no-op.
type Sprite struct {
	anim    *Animation
	player  *Player
	surface *Surface
	texture *ebiten.Image

	lastFrame float64
	rendered  bool

	onComplete func()
	onLoop     func(int)
	onProgress func(float64)
	onFrame    func(float64)
}

// NewSprite wraps an already loaded animation in a sprite.
func NewSprite(anim *Animation, opts *SpriteOptions) (*Sprite, error) {
	if anim == nil || anim.comp == nil {
		return nil, errors.New("no animation to play")
	}
	if opts == nil {
		opts = &SpriteOptions{}
	}

	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = anim.comp.Width
	}
	if h <= 0 {
		h = anim.comp.Height
	}

	surface, err := NewSurface(w, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create sprite surface: %w", err)
	}
	surface.SetBackground(opts.Background)

	player := NewPlayer(anim)
	loop := true
	if opts.Loop != nil {
		loop = *opts.Loop
	}
	player.SetLoop(loop)
	if opts.Speed != 0 {
		player.SetSpeed(opts.Speed)
	}
	if opts.Direction != 0 {
		player.SetDirection(opts.Direction)
	}
	tps := opts.TPS
	if tps <= 0 {
		tps = ebiten.TPS()
	}
	player.SetTPS(tps)
	// Park the playhead at the start edge for the chosen direction.
	player.Stop()

	s := &Sprite{
		anim:       anim,
		player:     player,
		surface:    surface,
		texture:    ebiten.NewImage(w, h),
		onComplete: opts.OnComplete,
		onLoop:     opts.OnLoop,
		onProgress: opts.OnProgress,
		onFrame:    opts.OnFrame,
	}

	// The texture shows the first frame even before the first Update.
	if err := s.render(player.Frame()); err != nil {
		return nil, err
	}
	if opts.Autoplay {
		player.Play()
	}
	return s, nil
}

// NewSpriteFromFile loads the animation at path and wraps it in a sprite.
func NewSpriteFromFile(path string, opts *SpriteOptions) (*Sprite, error) {
	anim, err := LoadFile(path)
	if err != nil {
		log.Printf("[Sprite] %v", err)
		return nil, err
	}
	return NewSprite(anim, opts)
}

// NewSpriteFromBytes parses an animation document held in memory and
// wraps it in a sprite. File-based image assets resolve against opts.FS.
func NewSpriteFromBytes(data []byte, opts *SpriteOptions) (*Sprite, error) {
	var fsys fs.FS
	if opts != nil {
		fsys = opts.FS
	}
	anim, err := loadBytes(data, fsys)
	if err != nil {
		log.Printf("[Sprite] %v", err)
		return nil, err
	}
	return NewSprite(anim, opts)
}

// render rasterizes frame onto the surface and uploads it to the texture.
func (s *Sprite) render(frame float64) error {
	if err := s.surface.Render(s.anim, frame); err != nil {
		return fmt.Errorf("failed to render sprite frame: %w", err)
	}
	s.texture.WritePixels(s.surface.RGBAPremultiplied())
	s.lastFrame = frame
	s.rendered = true
	return nil
}

// renderNow refreshes the texture after a transport call moved the
// playhead while the game loop is between updates.
func (s *Sprite) renderNow() {
	if s.surface == nil || s.texture == nil {
		return
	}
	f := s.player.Frame()
	if s.rendered && f == s.lastFrame {
		return
	}
	if err := s.render(f); err != nil {
		log.Printf("[Sprite] %v", err)
	}
}

// Update advances playback by one tick, re-renders the texture when the
// visible frame changed and fires callbacks in the order frame, progress,
// loop, complete. Call it once per ebiten.Game.Update.
func (s *Sprite) Update() error {
	if s == nil || s.player == nil || s.surface == nil || s.texture == nil {
		return nil
	}
	ev := s.player.Advance(1)
	frame := s.player.Frame()
	if !s.rendered || frame != s.lastFrame {
		if err := s.render(frame); err != nil {
			return err
		}
	}
	if ev == EventNone {
		return nil
	}
	if s.onFrame != nil {
		s.onFrame(frame)
	}
	if s.onProgress != nil {
		s.onProgress(s.player.Progress())
	}
	if ev == EventLoop && s.onLoop != nil {
		s.onLoop(s.player.LoopCount())
	}
	if ev == EventComplete && s.onComplete != nil {
		s.onComplete()
	}
	return nil
}

// Draw blits the current texture onto screen. A nil op draws at the
// origin.
func (s *Sprite) Draw(screen *ebiten.Image, op *ebiten.DrawImageOptions) {
	if s == nil || s.texture == nil || screen == nil {
		return
	}
	if op == nil {
		op = &ebiten.DrawImageOptions{}
	}
	screen.DrawImage(s.texture, op)
}

// Image exposes the texture for scene-graph composition. The sprite keeps
// ownership; the image dies with Destroy.
func (s *Sprite) Image() *ebiten.Image {
	if s == nil {
		return nil
	}
	return s.texture
}

// Size returns the texture size in pixels.
func (s *Sprite) Size() (w, h int) {
	if s == nil {
		return 0, 0
	}
	return s.surface.Width(), s.surface.Height()
}

// Play starts or resumes playback.
func (s *Sprite) Play() {
	if s == nil {
		return
	}
	s.player.Play()
}

// Pause suspends playback, keeping the current frame on screen.
func (s *Sprite) Pause() {
	if s == nil {
		return
	}
	s.player.Pause()
}

// Stop suspends playback and rewinds to the segment start, refreshing the
// texture so it matches.
func (s *Sprite) Stop() {
	if s == nil || s.player == nil {
		return
	}
	s.player.Stop()
	s.renderNow()
}

// SetSpeed sets the playback rate multiplier. Negative values play in
// reverse; zero is ignored.
func (s *Sprite) SetSpeed(v float64) {
	if s == nil {
		return
	}
	s.player.SetSpeed(v)
}

// SetDirection sets the playback direction: positive forward, negative
// reverse.
func (s *Sprite) SetDirection(d int) {
	if s == nil {
		return
	}
	s.player.SetDirection(d)
}

// SetLoop switches between looping and one-shot playback.
func (s *Sprite) SetLoop(loop bool) {
	if s == nil {
		return
	}
	s.player.SetLoop(loop)
}

// GoToAndStop pauses on the given composition frame.
func (s *Sprite) GoToAndStop(frame float64) {
	if s == nil || s.player == nil {
		return
	}
	s.player.Seek(frame)
	s.player.Pause()
	s.renderNow()
}

// GoToAndPlay starts playback from the given composition frame.
func (s *Sprite) GoToAndPlay(frame float64) {
	if s == nil || s.player == nil {
		return
	}
	s.player.Seek(frame)
	s.player.Play()
	s.renderNow()
}

// GoToAndStopTime pauses at a position measured from the start of the
// animation.
func (s *Sprite) GoToAndStopTime(d time.Duration) {
	if s == nil || s.player == nil {
		return
	}
	s.GoToAndStop(s.frameAt(d))
}

// GoToAndPlayTime starts playback from a position measured from the start
// of the animation.
func (s *Sprite) GoToAndPlayTime(d time.Duration) {
	if s == nil || s.player == nil {
		return
	}
	s.GoToAndPlay(s.frameAt(d))
}

func (s *Sprite) frameAt(d time.Duration) float64 {
	return s.anim.InPoint() + d.Seconds()*s.anim.FrameRate()
}

// PlaySegment restricts playback to [from, to] and starts playing.
func (s *Sprite) PlaySegment(from, to float64) {
	if s == nil || s.player == nil {
		return
	}
	s.player.PlaySegment(from, to)
	s.renderNow()
}

// PlaySegments plays a sequence of segments back to back, completing
// after the last one.
func (s *Sprite) PlaySegments(segments [][2]float64) {
	if s == nil || s.player == nil {
		return
	}
	s.player.PlaySegments(segments)
	s.renderNow()
}

// PlayMarker plays the segment the named timeline marker describes.
func (s *Sprite) PlayMarker(name string) error {
	if s == nil || s.player == nil {
		return nil
	}
	if err := s.player.PlayMarker(name); err != nil {
		return err
	}
	s.renderNow()
	return nil
}

// ResetSegment restores the full composition range.
func (s *Sprite) ResetSegment() {
	if s == nil {
		return
	}
	s.player.ResetSegment()
}

// CurrentFrame returns the playhead position in composition frames.
func (s *Sprite) CurrentFrame() float64 {
	if s == nil {
		return 0
	}
	return s.player.Frame()
}

// Progress returns the playhead position as 0..1 within the active
// segment.
func (s *Sprite) Progress() float64 {
	if s == nil {
		return 0
	}
	return s.player.Progress()
}

// IsPlaying reports whether playback advances on Update.
func (s *Sprite) IsPlaying() bool {
	return s != nil && s.player.IsPlaying()
}

// Duration returns the length of one full playthrough at native speed.
func (s *Sprite) Duration() time.Duration {
	if s == nil {
		return 0
	}
	return s.anim.Duration()
}

// Animation returns the document this sprite plays.
func (s *Sprite) Animation() *Animation {
	if s == nil {
		return nil
	}
	return s.anim
}

// SetOnComplete replaces the completion callback. nil clears it.
func (s *Sprite) SetOnComplete(fn func()) {
	if s == nil {
		return
	}
	s.onComplete = fn
}

// SetOnLoop replaces the loop callback. nil clears it.
func (s *Sprite) SetOnLoop(fn func(count int)) {
	if s == nil {
		return
	}
	s.onLoop = fn
}

// SetOnProgress replaces the progress callback. nil clears it.
func (s *Sprite) SetOnProgress(fn func(p float64)) {
	if s == nil {
		return
	}
	s.onProgress = fn
}

// SetOnFrame replaces the frame callback. nil clears it.
func (s *Sprite) SetOnFrame(fn func(frame float64)) {
	if s == nil {
		return
	}
	s.onFrame = fn
}

// Destroy stops playback and releases the texture. The sprite is inert
// afterwards; calling Destroy again is harmless.
func (s *Sprite) Destroy() {
	if s == nil {
		return
	}
	if s.player != nil {
		s.player.Pause()
	}
	if s.texture != nil {
		s.texture.Deallocate()
	}
	s.texture = nil
	s.surface = nil
	s.player = nil
	s.anim = nil
	s.onComplete = nil
	s.onLoop = nil
	s.onProgress = nil
	s.onFrame = nil
}
