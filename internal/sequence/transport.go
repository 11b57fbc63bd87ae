package sequence

import (
	"errors"
	"math"
)

// TransportState enumerates playback states.
type TransportState string

const (
	Stopped TransportState = "stopped"
	Playing TransportState = "playing"
	Paused  TransportState = "paused"
)

const (
	MinRate = 0.25
	MaxRate = 4.0
)

var ErrBadLoop = errors.New("loop end must be after loop start")

// Transport is the show clock a driver feeds into Scheduler.Tick. It turns
// real elapsed time into timeline position under play/pause, rate and loop.
type Transport struct {
	state TransportState
	posMs float64
	rate  float64

	loop               bool
	loopStart, loopEnd float64

	// EndMs pauses playback when reached without a loop. Zero disables it.
	EndMs float64
}

func NewTransport() *Transport {
	return &Transport{state: Stopped, rate: 1}
}

func (t *Transport) State() TransportState { return t.state }
func (t *Transport) Position() float64     { return t.posMs }
func (t *Transport) Rate() float64         { return t.rate }

// Play starts or resumes. Playing past EndMs restarts from zero.
func (t *Transport) Play() {
	if t.EndMs > 0 && !t.loop && t.posMs >= t.EndMs {
		t.posMs = 0
	}
	t.state = Playing
}

func (t *Transport) Pause() {
	if t.state == Playing {
		t.state = Paused
	}
}

// Stop halts and rewinds to zero.
func (t *Transport) Stop() {
	t.state = Stopped
	t.posMs = 0
}

// Seek moves the cursor; negative positions clamp to zero.
func (t *Transport) Seek(ms float64) {
	if math.IsNaN(ms) || ms < 0 {
		ms = 0
	}
	t.posMs = ms
}

// SetRate clamps r into [MinRate, MaxRate].
func (t *Transport) SetRate(r float64) {
	if math.IsNaN(r) {
		r = 1
	}
	t.rate = math.Max(MinRate, math.Min(MaxRate, r))
}

func (t *Transport) SetLoop(startMs, endMs float64) error {
	if !(endMs > startMs) || startMs < 0 {
		return ErrBadLoop
	}
	t.loop, t.loopStart, t.loopEnd = true, startMs, endMs
	return nil
}

func (t *Transport) ClearLoop() { t.loop = false }

// Loop reports the active loop region.
func (t *Transport) Loop() (startMs, endMs float64, ok bool) {
	return t.loopStart, t.loopEnd, t.loop
}

// Advance moves the cursor by realDeltaMs scaled by the rate and returns
// the new position. Only a playing transport moves.
func (t *Transport) Advance(realDeltaMs float64) float64 {
	if t.state != Playing || !(realDeltaMs > 0) {
		return t.posMs
	}
	t.posMs += realDeltaMs * t.rate
	switch {
	case t.loop && t.posMs >= t.loopEnd:
		span := t.loopEnd - t.loopStart
		t.posMs = t.loopStart + math.Mod(t.posMs-t.loopStart, span)
	case !t.loop && t.EndMs > 0 && t.posMs >= t.EndMs:
		t.posMs = t.EndMs
		t.state = Paused
	}
	return t.posMs
}
