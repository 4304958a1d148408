package reader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/CanerKarul/Masal-Yaraticisi/internal/audio"
	"github.com/CanerKarul/Masal-Yaraticisi/internal/cli/scheme/colours"
)

// rate presets offered in the reading loop.
var rates = map[string]float64{
	"1": 0.75, // slow
	"2": 1.0,  // normal
	"3": 1.5,  // fast
}

// Reader drives the page-by-page terminal reading experience: it renders
// the current page, forwards navigation to the orchestrator and owns the
// per-page audio player.
type Reader struct {
	session *Session
	orch    *Orchestrator
	player  *audio.Player
	in      io.Reader

	current     int
	loadedAudio string
	audioLoaded bool
}

func NewReader(session *Session, orch *Orchestrator, player *audio.Player, in io.Reader) *Reader {
	return &Reader{
		session: session,
		orch:    orch,
		player:  player,
		in:      in,
	}
}

// Run shows the story and loops over user commands until the reader quits
// or the context is cancelled. The player and orchestrator are always
// released on the way out.
func (r *Reader) Run(ctx context.Context) error {
	defer r.player.Close()
	defer r.orch.Close()

	s := r.session.Story()
	fmt.Println()
	colours.Title.Printf("📖 %s\n", s.Title)
	colours.Author.Printf("   %s\n", s.Subtitle)
	fmt.Printf("   ⏱️ About %d minutes | 📄 %d pages\n", (s.Meta.EstimatedDurationSeconds+59)/60, len(s.Pages))

	r.goTo(0)

	scanner := bufio.NewScanner(r.in)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		colours.Prompt.Print("\n🌟 [n]ext, [b]ack, [p]lay/pause, speed [1-3], [q]uit: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(strings.ToLower(scanner.Text()))

		switch input {
		case "n", "next", "":
			if r.current == r.session.PageCount()-1 {
				colours.Warning.Println("🌙 That was the last page. Sweet dreams!")
				continue
			}
			r.goTo(r.current + 1)
		case "b", "back":
			if r.current == 0 {
				colours.Info.Println("ℹ️  Already on the first page")
				continue
			}
			r.goTo(r.current - 1)
		case "p", "play", "pause":
			r.playPause()
		case "1", "2", "3":
			rate := rates[input]
			if err := r.player.SetRate(rate); err != nil {
				colours.Error.Printf("❌ %v\n", err)
				continue
			}
			colours.Success.Printf("✅ Reading speed set to %.2gx (applies to the next play)\n", rate)
		case "q", "quit":
			colours.Warning.Println("👋 Goodbye! Sweet dreams! 🌙")
			return nil
		default:
			colours.Info.Println("ℹ️  Use 'n', 'b', 'p', '1'-'3' or 'q'")
		}
	}
}

// goTo moves to another page: stop whatever is playing, kick off asset
// fetches for the new page (and its look-ahead), then render.
func (r *Reader) goTo(index int) {
	r.player.Stop()
	r.audioLoaded = false
	r.current = index
	r.orch.PageChanged(index)
	r.render()
	r.syncAudio()
}

// syncAudio rebuilds the decoded buffer whenever the page's audio payload
// changed since the last look, independent of the image state.
func (r *Reader) syncAudio() {
	page, ok := r.session.Page(r.current)
	if !ok {
		return
	}
	payload := ""
	if page.AudioURL != nil {
		payload = *page.AudioURL
	}
	if r.audioLoaded && payload == r.loadedAudio {
		return
	}
	r.loadedAudio = payload
	r.audioLoaded = true
	r.player.Load(payload)
}

func (r *Reader) playPause() {
	// assets may have arrived since the page was rendered
	r.syncAudio()

	switch r.player.State() {
	case audio.StateUnavailable:
		page, _ := r.session.Page(r.current)
		if page.AudioURL == nil {
			colours.Warning.Println("⏳ Audio is still being prepared, try again in a moment")
		} else {
			colours.Error.Println("❌ Audio is not available for this page")
		}
	default:
		if err := r.player.Toggle(); err != nil {
			colours.Error.Printf("❌ Playback error: %v\n", err)
			return
		}
		if r.player.State() == audio.StatePlaying {
			colours.Success.Println("🎵 Playing...")
		} else {
			colours.Warning.Println("⏸️  Paused")
		}
	}
}

func (r *Reader) render() {
	page, ok := r.session.Page(r.current)
	if !ok {
		return
	}

	fmt.Println()
	colours.Title.Printf("📄 Page %d / %d\n", page.PageNumber, r.session.PageCount())
	fmt.Println()
	colours.Narration.Printf("   %s\n", page.Text)
	fmt.Println()

	if page.ImageURL != nil {
		colours.Success.Println("   🖼️  Illustration ready")
	} else {
		colours.Info.Println("   🖼️  Illustration is being painted...")
	}
	if page.AudioURL != nil {
		colours.Success.Println("   🔊 Narration ready, press 'p' to listen")
	} else {
		colours.Info.Println("   🔊 Narration is being recorded...")
	}
}
