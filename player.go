package lottie

import (
	"fmt"
	"log"
	"math"
	"time"
)

// Event classifies what an Advance step did to the playhead.
type Event uint8

const (
	// EventNone means the playhead did not move.
	EventNone Event = iota
	// EventFrame means the playhead moved within the segment.
	EventFrame
	// EventLoop means the playhead wrapped around the segment.
	EventLoop
	// EventComplete means the run finished and playback stopped.
	EventComplete
)

// Player advances a playhead over an animation without rendering anything.
// It owns the transport state: speed, direction, looping and the active
// segment. Frames are absolute composition frames, the same values
// Animation.InPoint and OutPoint report.
//
// The zero Player and a Player over a nil animation are inert: every
// method is a no-op returning zero values.
type Player struct {
	anim *Animation

	frame     float64
	playing   bool
	completed bool

	speed     float64
	direction int
	loop      bool
	tps       float64

	from, to float64
	queue    [][2]float64
	loops    int
}

// NewPlayer creates a paused player positioned at the animation's in
// point, playing forward at native speed over the full composition.
// Looping is off until SetLoop.
func NewPlayer(anim *Animation) *Player {
	p := &Player{
		anim:      anim,
		speed:     1,
		direction: 1,
		tps:       60,
	}
	if anim != nil {
		p.from = anim.InPoint()
		p.to = anim.OutPoint()
		p.frame = p.from
	}
	return p
}

// Play starts or resumes playback. After a completed run the playhead
// restarts from the segment edge the current direction begins at.
func (p *Player) Play() {
	if p == nil || p.anim == nil {
		return
	}
	if p.completed {
		p.frame = p.startEdge()
		p.completed = false
		p.loops = 0
	}
	p.playing = true
}

// Pause suspends playback, keeping the playhead where it is.
func (p *Player) Pause() {
	if p == nil {
		return
	}
	p.playing = false
}

// Stop suspends playback and rewinds to the start of the active segment,
// dropping any queued segments.
func (p *Player) Stop() {
	if p == nil || p.anim == nil {
		return
	}
	p.playing = false
	p.completed = false
	p.queue = nil
	p.loops = 0
	p.frame = p.startEdge()
}

// IsPlaying reports whether the playhead advances on Advance.
func (p *Player) IsPlaying() bool {
	return p != nil && p.playing
}

// Seek moves the playhead to frame, clamped into the active segment.
func (p *Player) Seek(frame float64) {
	if p == nil || p.anim == nil {
		return
	}
	if frame < p.from {
		frame = p.from
	} else if frame > p.to {
		frame = p.to
	}
	p.frame = frame
	p.completed = false
}

// SeekProgress moves the playhead to a 0..1 position within the active
// segment.
func (p *Player) SeekProgress(pr float64) {
	if p == nil || p.anim == nil {
		return
	}
	if pr < 0 {
		pr = 0
	} else if pr > 1 {
		pr = 1
	}
	p.Seek(p.from + pr*(p.to-p.from))
}

// SetSpeed sets the playback rate multiplier. Negative values play in
// reverse at |v|. Zero is ignored.
func (p *Player) SetSpeed(v float64) {
	if p == nil {
		return
	}
	if v == 0 {
		log.Printf("[Player] ignoring zero speed")
		return
	}
	if v < 0 {
		p.direction = -1
		v = -v
	}
	p.speed = v
}

// Speed returns the playback rate multiplier.
func (p *Player) Speed() float64 {
	if p == nil {
		return 0
	}
	return p.speed
}

// SetDirection sets the playback direction: positive forward, negative
// reverse. Zero is ignored.
func (p *Player) SetDirection(d int) {
	if p == nil || d == 0 {
		return
	}
	if d > 0 {
		p.direction = 1
	} else {
		p.direction = -1
	}
}

// Direction returns +1 for forward playback, -1 for reverse.
func (p *Player) Direction() int {
	if p == nil {
		return 0
	}
	return p.direction
}

// SetLoop switches between looping and one-shot playback.
func (p *Player) SetLoop(loop bool) {
	if p == nil {
		return
	}
	p.loop = loop
}

// Loop reports whether playback wraps at the segment edge.
func (p *Player) Loop() bool {
	return p != nil && p.loop
}

// SetTPS tells the player how many Advance ticks make up one second.
// Non-positive values are ignored.
func (p *Player) SetTPS(tps int) {
	if p == nil || tps <= 0 {
		return
	}
	p.tps = float64(tps)
}

// PlaySegment restricts playback to [from, to] and starts playing from
// its direction-dependent edge. Reversed bounds swap; both clamp to the
// composition range. A zero-length segment completes on the next Advance.
func (p *Player) PlaySegment(from, to float64) {
	if p == nil || p.anim == nil {
		return
	}
	p.queue = nil
	p.setSegment(from, to)
	p.frame = p.startEdge()
	p.completed = false
	p.loops = 0
	p.playing = true
}

// PlaySegments plays a sequence of segments: the first immediately, each
// following one when its predecessor reaches its edge. Looping applies to
// the last segment only; without it the run completes there.
func (p *Player) PlaySegments(segments [][2]float64) {
	if p == nil || p.anim == nil || len(segments) == 0 {
		return
	}
	p.PlaySegment(segments[0][0], segments[0][1])
	if len(segments) > 1 {
		p.queue = append([][2]float64(nil), segments[1:]...)
	}
}

// PlayMarker plays the segment a named marker describes. Markers without
// a duration play from their frame to the end of the composition.
func (p *Player) PlayMarker(name string) error {
	if p == nil || p.anim == nil {
		return fmt.Errorf("no animation loaded")
	}
	m, ok := p.anim.Marker(name)
	if !ok {
		return fmt.Errorf("no marker %q in animation %q", name, p.anim.Name())
	}
	end := m.Frame + m.Duration
	if m.Duration <= 0 {
		end = p.anim.OutPoint()
	}
	p.PlaySegment(m.Frame, end)
	return nil
}

// ResetSegment restores the full composition range, clamping the playhead
// into it. Playback state is untouched.
func (p *Player) ResetSegment() {
	if p == nil || p.anim == nil {
		return
	}
	p.from = p.anim.InPoint()
	p.to = p.anim.OutPoint()
	p.queue = nil
	if p.frame < p.from {
		p.frame = p.from
	} else if p.frame > p.to {
		p.frame = p.to
	}
}

// Advance moves the playhead by the given number of ticks and reports the
// most significant thing that happened. The per-tick step is
// frameRate/tps adjusted by speed and direction. Looping wraps at the
// segment edge; one-shot runs park there, stop playback and report
// EventComplete exactly once.
func (p *Player) Advance(ticks float64) Event {
	if p == nil || p.anim == nil || !p.playing || ticks <= 0 {
		return EventNone
	}
	step := p.anim.FrameRate() / p.tps * p.speed * float64(p.direction) * ticks
	if step == 0 {
		return EventNone
	}

	prev := p.frame
	f := p.frame + step
	span := p.to - p.from
	forward := step > 0

	crossed := (forward && f >= p.to) || (!forward && f <= p.from)
	if !crossed {
		p.frame = f
		if p.frame == prev {
			return EventNone
		}
		return EventFrame
	}

	if len(p.queue) > 0 || span <= 0 || !p.loop {
		return p.finish(forward)
	}

	m := math.Mod(f-p.from, span)
	if m < 0 {
		m += span
	}
	p.frame = p.from + m

	wraps := 1
	if forward {
		if w := int(math.Floor((f - p.from) / span)); w > wraps {
			wraps = w
		}
	} else {
		if w := int(math.Floor((p.to - f) / span)); w > wraps {
			wraps = w
		}
	}
	p.loops += wraps
	return EventLoop
}

// finish parks the playhead at the boundary just crossed, then either
// flows into the next queued segment or completes the run.
func (p *Player) finish(forward bool) Event {
	if forward {
		p.frame = p.to
	} else {
		p.frame = p.from
	}
	if len(p.queue) > 0 {
		next := p.queue[0]
		p.queue = p.queue[1:]
		p.setSegment(next[0], next[1])
		p.frame = p.startEdge()
		return EventFrame
	}
	p.playing = false
	p.completed = true
	return EventComplete
}

// setSegment normalizes and installs a segment range.
func (p *Player) setSegment(from, to float64) {
	if from > to {
		from, to = to, from
	}
	lo, hi := p.anim.InPoint(), p.anim.OutPoint()
	if from < lo {
		from = lo
	} else if from > hi {
		from = hi
	}
	if to < lo {
		to = lo
	} else if to > hi {
		to = hi
	}
	p.from, p.to = from, to
}

// startEdge returns the segment edge playback begins at for the current
// direction.
func (p *Player) startEdge() float64 {
	if p.direction >= 0 {
		return p.from
	}
	return p.to
}

// Frame returns the current playhead position in composition frames.
func (p *Player) Frame() float64 {
	if p == nil {
		return 0
	}
	return p.frame
}

// Progress returns the playhead position as 0..1 within the active
// segment. Zero-length segments report 0 until they complete.
func (p *Player) Progress() float64 {
	if p == nil || p.anim == nil {
		return 0
	}
	span := p.to - p.from
	if span <= 0 {
		if p.completed {
			return 1
		}
		return 0
	}
	return (p.frame - p.from) / span
}

// Segment returns the active playback range.
func (p *Player) Segment() (from, to float64) {
	if p == nil {
		return 0, 0
	}
	return p.from, p.to
}

// Duration returns the length of the active segment at native speed.
func (p *Player) Duration() time.Duration {
	if p == nil || p.anim == nil {
		return 0
	}
	fr := p.anim.FrameRate()
	if fr <= 0 {
		return 0
	}
	return time.Duration((p.to - p.from) / fr * float64(time.Second))
}

// LoopCount returns how many times the current run has wrapped.
func (p *Player) LoopCount() int {
	if p == nil {
		return 0
	}
	return p.loops
}
