package audio

import (
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/faiface/beep"
)

// fakeOutput records played streamers instead of opening a device.
type fakeOutput struct {
	mu        sync.Mutex
	initCalls int
	initRate  beep.SampleRate
	streams   []beep.Streamer
}

func (f *fakeOutput) Init(rate beep.SampleRate) error {
	f.initCalls++
	f.initRate = rate
	return nil
}

func (f *fakeOutput) Play(s beep.Streamer) {
	f.streams = append(f.streams, s)
}

func (f *fakeOutput) Lock()   { f.mu.Lock() }
func (f *fakeOutput) Unlock() { f.mu.Unlock() }

func testPayload(frames int) string {
	raw := pcmBytes(make([]int16, frames))
	return base64.StdEncoding.EncodeToString(raw)
}

// drain pulls samples until the streamer reports it is done and returns
// the total sample count produced.
func drain(s beep.Streamer) int {
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			return total
		}
	}
}

func waitForState(t *testing.T, p *Player, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("player state = %s, want %s", p.State(), want)
}

func TestLoadStates(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    State
	}{
		{name: "missing payload", payload: "", want: StateUnavailable},
		{name: "invalid base64", payload: "???", want: StateUnavailable},
		{name: "misaligned pcm", payload: base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), want: StateUnavailable},
		{name: "valid payload", payload: testPayload(480), want: StateReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPlayer(&fakeOutput{}, 24000, 1)
			p.Load(tt.payload)
			if got := p.State(); got != tt.want {
				t.Errorf("State() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPlayWithoutAudioFails(t *testing.T) {
	p := newPlayer(&fakeOutput{}, 24000, 1)
	if err := p.Play(); err == nil {
		t.Fatal("expected an error with nothing loaded")
	}
	p.Load("")
	if err := p.Play(); err == nil {
		t.Fatal("expected an error in the unavailable state")
	}
}

func TestPlayTwiceKeepsOneActiveHandle(t *testing.T) {
	out := &fakeOutput{}
	p := newPlayer(out, 24000, 1)
	p.Load(testPayload(4800))

	if err := p.Play(); err != nil {
		t.Fatalf("first Play() error = %v", err)
	}
	if err := p.Play(); err != nil {
		t.Fatalf("second Play() error = %v", err)
	}

	if len(out.streams) != 2 {
		t.Fatalf("streams submitted = %d, want 2", len(out.streams))
	}
	// the first handle must have been stopped before the second started
	if n := drain(out.streams[0]); n != 0 {
		t.Fatalf("first handle still produced %d samples after restart", n)
	}
	buf := make([][2]float64, 64)
	if n, ok := out.streams[1].Stream(buf); !ok || n == 0 {
		t.Fatal("second handle is not streaming")
	}
	if got := p.State(); got != StatePlaying {
		t.Fatalf("State() = %s, want %s", got, StatePlaying)
	}
}

func TestPauseReleasesHandle(t *testing.T) {
	out := &fakeOutput{}
	p := newPlayer(out, 24000, 1)
	p.Load(testPayload(4800))

	if err := p.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	p.Pause()

	if got := p.State(); got != StateReady {
		t.Fatalf("State() = %s, want %s", got, StateReady)
	}
	if n := drain(out.streams[0]); n != 0 {
		t.Fatalf("paused handle still produced %d samples", n)
	}

	// a fresh Play starts a new handle from the beginning
	if err := p.Play(); err != nil {
		t.Fatalf("Play() after Pause() error = %v", err)
	}
	if len(out.streams) != 2 {
		t.Fatalf("streams submitted = %d, want 2", len(out.streams))
	}
}

func TestNaturalEndReturnsToReady(t *testing.T) {
	out := &fakeOutput{}
	p := newPlayer(out, 24000, 1)
	p.Load(testPayload(240))

	if err := p.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	frames := 240 + 12000
	if n := drain(out.streams[0]); n != frames {
		t.Fatalf("drained %d samples, want %d", n, frames)
	}
	waitForState(t, p, StateReady)
}

func TestRateAppliesToNextPlay(t *testing.T) {
	out := &fakeOutput{}
	p := newPlayer(out, 24000, 1)
	p.Load(testPayload(4800))

	if err := p.SetRate(0); err == nil {
		t.Fatal("expected an error for a non-positive rate")
	}
	if err := p.SetRate(1.5); err != nil {
		t.Fatalf("SetRate() error = %v", err)
	}
	if err := p.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	// the resampled handle must still produce audio
	buf := make([][2]float64, 64)
	if n, ok := out.streams[0].Stream(buf); !ok || n == 0 {
		t.Fatal("resampled handle is not streaming")
	}
}

func TestToggle(t *testing.T) {
	out := &fakeOutput{}
	p := newPlayer(out, 24000, 1)
	p.Load(testPayload(4800))

	if err := p.Toggle(); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if got := p.State(); got != StatePlaying {
		t.Fatalf("State() = %s, want %s", got, StatePlaying)
	}
	if err := p.Toggle(); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if got := p.State(); got != StateReady {
		t.Fatalf("State() = %s, want %s", got, StateReady)
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	out := &fakeOutput{}
	p := newPlayer(out, 24000, 1)
	p.Load(testPayload(4800))

	if err := p.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	p.Close()

	if got := p.State(); got != StateIdle {
		t.Fatalf("State() = %s, want %s", got, StateIdle)
	}
	if n := drain(out.streams[0]); n != 0 {
		t.Fatalf("closed handle still produced %d samples", n)
	}
	if err := p.Play(); err == nil {
		t.Fatal("expected an error after Close")
	}
}

func TestLoadReplacingPayloadStopsPlayback(t *testing.T) {
	out := &fakeOutput{}
	p := newPlayer(out, 24000, 1)
	p.Load(testPayload(4800))

	if err := p.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	p.Load(testPayload(240))

	if got := p.State(); got != StateReady {
		t.Fatalf("State() = %s, want %s", got, StateReady)
	}
	if n := drain(out.streams[0]); n != 0 {
		t.Fatalf("superseded handle still produced %d samples", n)
	}
}
