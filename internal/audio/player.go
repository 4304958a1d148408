package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/sirupsen/logrus"
)

// State of a Player. Unavailable is terminal for the loaded payload; a
// new Load starts the cycle over.
type State int

const (
	StateIdle State = iota
	StateDecoding
	StateReady
	StatePlaying
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDecoding:
		return "decoding"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// output is the playback device. The real implementation is the beep
// speaker; tests substitute a fake so no audio hardware is needed.
type output interface {
	Init(rate beep.SampleRate) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

// speakerOutput wraps the process-wide beep speaker. The device is opened
// lazily on the first Play and stays open for the life of the process.
type speakerOutput struct {
	once sync.Once
	err  error
}

func (o *speakerOutput) Init(rate beep.SampleRate) error {
	o.once.Do(func() {
		o.err = speaker.Init(rate, rate.N(time.Second/10))
	})
	return o.err
}

func (o *speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (o *speakerOutput) Lock()                { speaker.Lock() }
func (o *speakerOutput) Unlock()              { speaker.Unlock() }

var defaultOutput output = &speakerOutput{}

// bufferStreamer streams a decoded Buffer from the beginning. Setting
// stopped under the output lock makes the mixer drop it.
type bufferStreamer struct {
	buf     *Buffer
	pos     int
	stopped bool
}

func (s *bufferStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.stopped || s.pos >= s.buf.Frames() {
		return 0, false
	}
	n := 0
	for n < len(samples) && s.pos < s.buf.Frames() {
		left := s.buf.Data[0][s.pos]
		right := left
		if len(s.buf.Data) > 1 {
			right = s.buf.Data[1][s.pos]
		}
		samples[n] = [2]float64{left, right}
		n++
		s.pos++
	}
	return n, true
}

func (s *bufferStreamer) Err() error { return nil }

// Player is the per-page audio lifecycle: decode on Load, play/pause
// toggle, rate control, and guaranteed release of the active handle when
// the page changes. At most one handle is active at a time.
type Player struct {
	out        output
	sampleRate int
	channels   int

	mu     sync.Mutex
	state  State
	buffer *Buffer
	rate   float64
	handle *bufferStreamer
}

// NewPlayer returns a Player expecting payloads in the given PCM format.
func NewPlayer(sampleRate, channels int) *Player {
	return newPlayer(defaultOutput, sampleRate, channels)
}

func newPlayer(out output, sampleRate, channels int) *Player {
	return &Player{
		out:        out,
		sampleRate: sampleRate,
		channels:   channels,
		state:      StateIdle,
		rate:       1.0,
	}
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Rate returns the playback rate applied to the next Play.
func (p *Player) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// SetRate stores the playback rate for the next Play. A handle that is
// already running keeps its rate until it is restarted.
func (p *Player) SetRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("playback rate must be positive, got %v", rate)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rate = rate
	return nil
}

// Load replaces the current payload. Any active playback is stopped and
// the previous buffer discarded first. An empty payload or a failed
// decode leaves the player Unavailable for this payload; there is no
// automatic re-decode.
func (p *Player) Load(payload string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.buffer = nil
	p.state = StateDecoding

	if payload == "" {
		p.state = StateUnavailable
		return
	}

	raw, err := Decode(payload)
	if err != nil {
		logrus.WithError(err).Warn("audio payload could not be decoded")
		p.state = StateUnavailable
		return
	}
	buf, err := DecodePCM(raw, p.sampleRate, p.channels)
	if err != nil {
		logrus.WithError(err).Warn("audio payload could not be decoded")
		p.state = StateUnavailable
		return
	}

	p.buffer = buf
	p.state = StateReady
}

// Play starts playback from the beginning at the current rate. If a
// handle is still active it is stopped first, so there is never more than
// one.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.buffer == nil {
		return fmt.Errorf("no audio loaded (state %s)", p.state)
	}
	if err := p.out.Init(beep.SampleRate(p.buffer.SampleRate)); err != nil {
		return fmt.Errorf("failed to open playback device: %w", err)
	}

	p.stopLocked()

	h := &bufferStreamer{buf: p.buffer}
	var streamer beep.Streamer = h
	if p.rate != 1.0 {
		streamer = beep.ResampleRatio(4, p.rate, h)
	}

	p.handle = h
	p.state = StatePlaying
	p.out.Play(beep.Seq(streamer, beep.Callback(func() {
		// called from the speaker goroutine while it holds the
		// device lock; hop to a fresh goroutine before taking p.mu
		go p.finished(h)
	})))
	return nil
}

// Pause stops the active handle and releases it. The next Play starts
// fresh from the beginning of the page.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Toggle plays when idle and pauses when playing.
func (p *Player) Toggle() error {
	p.mu.Lock()
	playing := p.state == StatePlaying
	p.mu.Unlock()

	if playing {
		p.Pause()
		return nil
	}
	return p.Play()
}

// Stop releases the active handle, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Close stops playback and discards the buffer. Safe to call from any
// state and always leaves the player Idle.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.buffer = nil
	p.state = StateIdle
}

// stopLocked releases the active handle. Callers hold p.mu.
func (p *Player) stopLocked() {
	if p.handle == nil {
		return
	}
	p.out.Lock()
	p.handle.stopped = true
	p.out.Unlock()
	p.handle = nil
	if p.state == StatePlaying {
		p.state = StateReady
	}
}

// finished runs when a handle drains naturally. A handle that was already
// superseded by Play or Stop is ignored.
func (p *Player) finished(h *bufferStreamer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle != h {
		return
	}
	p.handle = nil
	if p.state == StatePlaying {
		p.state = StateReady
	}
}
