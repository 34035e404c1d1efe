package lottie

import (
	"math"
	"testing"
	"time"
)

// tickPlayer builds a player over the transport fixture stepping exactly
// one frame per Advance(1).
func tickPlayer(t *testing.T) *Player {
	t.Helper()
	p := NewPlayer(mustLoad(t, transportDoc))
	p.SetTPS(10)
	return p
}

// TestPlayerDefaults tests the initial transport state.
func TestPlayerDefaults(t *testing.T) {
	p := tickPlayer(t)

	if p.IsPlaying() {
		t.Error("Expected a new player to start paused")
	}
	if got := p.Frame(); got != 0 {
		t.Errorf("Expected playhead at the in point, got %g", got)
	}
	if p.Speed() != 1 || p.Direction() != 1 {
		t.Errorf("Expected speed 1 forward, got speed=%g direction=%d", p.Speed(), p.Direction())
	}
	if p.Loop() {
		t.Error("Expected looping off by default")
	}
	if from, to := p.Segment(); from != 0 || to != 40 {
		t.Errorf("Expected full segment [0,40], got [%g,%g]", from, to)
	}
	if got := p.Duration(); got != 4*time.Second {
		t.Errorf("Expected 4s segment duration, got %v", got)
	}
	if got := p.Progress(); got != 0 {
		t.Errorf("Expected zero progress, got %g", got)
	}
}

// TestPlayerAdvance tests basic stepping: paused players hold still,
// playing ones move by frameRate/tps per tick.
func TestPlayerAdvance(t *testing.T) {
	p := tickPlayer(t)

	if ev := p.Advance(1); ev != EventNone {
		t.Errorf("Expected no event while paused, got %v", ev)
	}

	p.Play()
	if !p.IsPlaying() {
		t.Fatal("Expected Play to start playback")
	}
	if ev := p.Advance(1); ev != EventFrame {
		t.Errorf("Expected a frame event, got %v", ev)
	}
	if got := p.Frame(); got != 1 {
		t.Errorf("Expected frame 1 after one tick, got %g", got)
	}

	p.Advance(2.5)
	if got := p.Frame(); math.Abs(got-3.5) > 1e-9 {
		t.Errorf("Expected frame 3.5 after 2.5 more ticks, got %g", got)
	}

	if got := p.Progress(); math.Abs(got-3.5/40) > 1e-9 {
		t.Errorf("Expected progress %g, got %g", 3.5/40, got)
	}
}

// TestPlayerTPSScalesStep tests the tick-to-frame conversion.
func TestPlayerTPSScalesStep(t *testing.T) {
	p := tickPlayer(t)
	p.SetTPS(20)
	p.Play()
	p.Advance(1)
	if got := p.Frame(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Expected half a frame per tick at 20 tps, got %g", got)
	}

	p.SetTPS(0)
	p.Advance(1)
	if got := p.Frame(); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Expected SetTPS(0) to be ignored, got frame %g", got)
	}
}

// TestPlayerOneShotCompletes tests that a non-looping run parks at the
// segment end, reports completion once and restarts on Play.
func TestPlayerOneShotCompletes(t *testing.T) {
	p := tickPlayer(t)
	p.PlaySegment(0, 3)

	if ev := p.Advance(1); ev != EventFrame {
		t.Fatalf("Expected a frame event, got %v", ev)
	}
	p.Advance(1)
	if ev := p.Advance(1); ev != EventComplete {
		t.Errorf("Expected completion at the segment end, got %v", ev)
	}
	if got := p.Frame(); got != 3 {
		t.Errorf("Expected playhead parked at 3, got %g", got)
	}
	if p.IsPlaying() {
		t.Error("Expected playback stopped after completion")
	}
	if got := p.Progress(); got != 1 {
		t.Errorf("Expected full progress after completion, got %g", got)
	}

	// Completion reports once; the playhead stays put.
	if ev := p.Advance(1); ev != EventNone {
		t.Errorf("Expected no further events, got %v", ev)
	}

	p.Play()
	if got := p.Frame(); got != 0 {
		t.Errorf("Expected restart from the segment start, got %g", got)
	}
	if !p.IsPlaying() {
		t.Error("Expected playback running after restart")
	}
}

// TestPlayerLoopWraps tests segment wrapping and loop counting.
func TestPlayerLoopWraps(t *testing.T) {
	p := tickPlayer(t)
	p.SetLoop(true)
	p.PlaySegment(0, 4)

	for i := 0; i < 3; i++ {
		if ev := p.Advance(1); ev != EventFrame {
			t.Fatalf("Tick %d: expected a frame event, got %v", i, ev)
		}
	}
	if ev := p.Advance(1); ev != EventLoop {
		t.Errorf("Expected a loop event at the segment end, got %v", ev)
	}
	if got := p.Frame(); got != 0 {
		t.Errorf("Expected wrap back to the segment start, got %g", got)
	}
	if got := p.LoopCount(); got != 1 {
		t.Errorf("Expected loop count 1, got %d", got)
	}
	if !p.IsPlaying() {
		t.Error("Expected playback to continue through the wrap")
	}

	// A large step can wrap more than once.
	if ev := p.Advance(9); ev != EventLoop {
		t.Errorf("Expected a loop event for the long step, got %v", ev)
	}
	if got := p.Frame(); math.Abs(got-1) > 1e-9 {
		t.Errorf("Expected frame 1 after wrapping twice, got %g", got)
	}
	if got := p.LoopCount(); got != 3 {
		t.Errorf("Expected loop count 3, got %d", got)
	}
}

// TestPlayerReverse tests reverse playback: starts at the out edge,
// wraps and completes at the in edge.
func TestPlayerReverse(t *testing.T) {
	t.Run("Completes", func(t *testing.T) {
		p := tickPlayer(t)
		p.SetDirection(-1)
		p.PlaySegment(0, 3)

		if got := p.Frame(); got != 3 {
			t.Fatalf("Expected reverse playback to start at 3, got %g", got)
		}
		p.Advance(1)
		p.Advance(1)
		if ev := p.Advance(1); ev != EventComplete {
			t.Errorf("Expected completion at the in edge, got %v", ev)
		}
		if got := p.Frame(); got != 0 {
			t.Errorf("Expected playhead parked at 0, got %g", got)
		}

		p.Play()
		if got := p.Frame(); got != 3 {
			t.Errorf("Expected reverse restart from the out edge, got %g", got)
		}
	})

	t.Run("Wraps", func(t *testing.T) {
		p := tickPlayer(t)
		p.SetLoop(true)
		p.SetDirection(-1)
		p.PlaySegment(0, 4)

		if ev := p.Advance(5); ev != EventLoop {
			t.Errorf("Expected a loop event, got %v", ev)
		}
		if got := p.Frame(); math.Abs(got-3) > 1e-9 {
			t.Errorf("Expected wrap to frame 3, got %g", got)
		}
	})
}

// TestPlayerSetSpeed tests the speed semantics: negatives flip direction,
// zero is ignored.
func TestPlayerSetSpeed(t *testing.T) {
	p := tickPlayer(t)

	p.SetSpeed(2)
	p.Play()
	p.Advance(1)
	if got := p.Frame(); got != 2 {
		t.Errorf("Expected double speed to step 2 frames, got %g", got)
	}

	p.SetSpeed(-0.5)
	if p.Direction() != -1 {
		t.Error("Expected negative speed to turn playback around")
	}
	if got := p.Speed(); got != 0.5 {
		t.Errorf("Expected speed magnitude 0.5, got %g", got)
	}

	p.SetSpeed(0)
	if got := p.Speed(); got != 0.5 {
		t.Errorf("Expected zero speed to be ignored, got %g", got)
	}
}

// TestPlayerSeek tests playhead moves and clamping.
func TestPlayerSeek(t *testing.T) {
	p := tickPlayer(t)
	p.PlaySegment(5, 10)
	p.Pause()

	p.Seek(20)
	if got := p.Frame(); got != 10 {
		t.Errorf("Expected seek to clamp to the segment end, got %g", got)
	}
	p.Seek(-1)
	if got := p.Frame(); got != 5 {
		t.Errorf("Expected seek to clamp to the segment start, got %g", got)
	}
	p.SeekProgress(0.5)
	if got := p.Frame(); math.Abs(got-7.5) > 1e-9 {
		t.Errorf("Expected mid-segment seek at 7.5, got %g", got)
	}
	p.SeekProgress(2)
	if got := p.Frame(); got != 10 {
		t.Errorf("Expected progress seek to clamp to 1, got frame %g", got)
	}
}

// TestPlayerSegments tests segment normalization and the playback queue.
func TestPlayerSegments(t *testing.T) {
	t.Run("ReversedBoundsSwap", func(t *testing.T) {
		p := tickPlayer(t)
		p.PlaySegment(30, 10)
		if from, to := p.Segment(); from != 10 || to != 30 {
			t.Errorf("Expected segment [10,30], got [%g,%g]", from, to)
		}
	})

	t.Run("BoundsClampToComposition", func(t *testing.T) {
		p := tickPlayer(t)
		p.PlaySegment(-5, 100)
		if from, to := p.Segment(); from != 0 || to != 40 {
			t.Errorf("Expected segment [0,40], got [%g,%g]", from, to)
		}
	})

	t.Run("QueueFlows", func(t *testing.T) {
		p := tickPlayer(t)
		p.PlaySegments([][2]float64{{0, 2}, {5, 7}})

		p.Advance(1)
		if ev := p.Advance(1); ev != EventFrame {
			t.Fatalf("Expected the queue hop to report a frame event, got %v", ev)
		}
		if got := p.Frame(); got != 5 {
			t.Errorf("Expected the next segment to start at 5, got %g", got)
		}
		if !p.IsPlaying() {
			t.Error("Expected playback to continue into the queued segment")
		}

		p.Advance(1)
		if ev := p.Advance(1); ev != EventComplete {
			t.Errorf("Expected completion after the last segment, got %v", ev)
		}
		if got := p.Frame(); got != 7 {
			t.Errorf("Expected playhead parked at 7, got %g", got)
		}
	})

	t.Run("QueueDrainsWhenLooping", func(t *testing.T) {
		p := tickPlayer(t)
		p.SetLoop(true)
		p.PlaySegments([][2]float64{{0, 2}, {5, 7}})

		p.Advance(1)
		if ev := p.Advance(1); ev != EventFrame {
			t.Fatalf("Expected the queue hop despite looping, got %v", ev)
		}
		if got := p.Frame(); got != 5 {
			t.Errorf("Expected the next segment to start at 5, got %g", got)
		}

		// The last segment is the one that loops.
		p.Advance(1)
		if ev := p.Advance(1); ev != EventLoop {
			t.Errorf("Expected the final segment to wrap, got %v", ev)
		}
		if got := p.Frame(); got != 5 {
			t.Errorf("Expected wrap to the final segment start, got %g", got)
		}
	})

	t.Run("ZeroLengthCompletesImmediately", func(t *testing.T) {
		p := tickPlayer(t)
		p.PlaySegment(5, 5)
		if ev := p.Advance(1); ev != EventComplete {
			t.Errorf("Expected immediate completion, got %v", ev)
		}
		if got := p.Frame(); got != 5 {
			t.Errorf("Expected playhead at 5, got %g", got)
		}
		if got := p.Progress(); got != 1 {
			t.Errorf("Expected full progress, got %g", got)
		}
	})

	t.Run("ResetRestoresFullRange", func(t *testing.T) {
		p := tickPlayer(t)
		p.PlaySegments([][2]float64{{10, 20}, {25, 30}})
		p.ResetSegment()
		if from, to := p.Segment(); from != 0 || to != 40 {
			t.Errorf("Expected segment [0,40], got [%g,%g]", from, to)
		}
		if got := p.Frame(); got != 10 {
			t.Errorf("Expected the playhead to stay at 10, got %g", got)
		}
	})
}

// TestPlayerMarkers tests marker-based segment playback.
func TestPlayerMarkers(t *testing.T) {
	p := tickPlayer(t)

	if err := p.PlayMarker("intro"); err != nil {
		t.Fatalf("PlayMarker failed: %v", err)
	}
	if from, to := p.Segment(); from != 5 || to != 15 {
		t.Errorf("Expected marker segment [5,15], got [%g,%g]", from, to)
	}
	if got := p.Frame(); got != 5 {
		t.Errorf("Expected playback from the marker frame, got %g", got)
	}

	// A zero-duration marker plays through to the end.
	if err := p.PlayMarker("tail"); err != nil {
		t.Fatalf("PlayMarker failed: %v", err)
	}
	if from, to := p.Segment(); from != 30 || to != 40 {
		t.Errorf("Expected marker segment [30,40], got [%g,%g]", from, to)
	}

	if err := p.PlayMarker("absent"); err == nil {
		t.Error("Expected an error for an unknown marker")
	}
}

// TestPlayerStop tests that Stop rewinds and drops queued segments.
func TestPlayerStop(t *testing.T) {
	p := tickPlayer(t)
	p.PlaySegments([][2]float64{{10, 20}, {25, 30}})
	p.Advance(1)
	p.Advance(1)

	p.Stop()
	if p.IsPlaying() {
		t.Error("Expected Stop to pause playback")
	}
	if got := p.Frame(); got != 10 {
		t.Errorf("Expected rewind to the segment start, got %g", got)
	}

	// The queue is gone: finishing the segment completes the run.
	p.Play()
	for i := 0; i < 9; i++ {
		p.Advance(1)
	}
	if ev := p.Advance(1); ev != EventComplete {
		t.Errorf("Expected completion with an empty queue, got %v", ev)
	}
}

// TestPlayerNilSafety tests that nil players and players without an
// animation are inert.
func TestPlayerNilSafety(t *testing.T) {
	for name, p := range map[string]*Player{
		"NilPlayer":   nil,
		"NoAnimation": NewPlayer(nil),
	} {
		t.Run(name, func(t *testing.T) {
			p.Play()
			p.Pause()
			p.Stop()
			p.Seek(10)
			p.SeekProgress(0.5)
			p.SetSpeed(2)
			p.SetDirection(-1)
			p.SetLoop(true)
			p.SetTPS(30)
			p.PlaySegment(0, 10)
			p.PlaySegments([][2]float64{{0, 1}})
			p.ResetSegment()
			if err := p.PlayMarker("intro"); err == nil {
				t.Error("Expected PlayMarker to fail without an animation")
			}
			if ev := p.Advance(1); ev != EventNone {
				t.Errorf("Expected no events, got %v", ev)
			}
			if p.Frame() != 0 || p.Progress() != 0 || p.Duration() != 0 {
				t.Error("Expected zero accessors")
			}
			if p.IsPlaying() {
				t.Error("Expected playback off")
			}
		})
	}
}
