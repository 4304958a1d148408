package gen

import (
	"context"
	"fmt"

	"github.com/CanerKarul/Masal-Yaraticisi/internal/domain/story"
)

// Generator is the remote generation capability behind the whole app:
// one structured story call plus per-page image and speech calls.
type Generator interface {
	// GenerateStoryStructure returns the textual skeleton of a story.
	// Every page comes back without assets.
	GenerateStoryStructure(ctx context.Context, topic, heroName string, pageCount int) (*story.Story, error)

	// GenerateImage returns a base64 data URL for one page illustration.
	GenerateImage(ctx context.Context, prompt string, meta story.ImageMetadata) (string, error)

	// GenerateSpeech returns base64 raw 16-bit mono PCM narration audio.
	GenerateSpeech(ctx context.Context, text string) (string, error)
}

// SpeechBackend is the narrow interface a replacement speech engine must
// satisfy.
type SpeechBackend interface {
	GenerateSpeech(ctx context.Context, text string) (string, error)
}

// WithSpeechBackend returns a Generator that delegates speech synthesis
// to backend and everything else to base.
func WithSpeechBackend(base Generator, backend SpeechBackend) Generator {
	return &speechOverride{Generator: base, speech: backend}
}

type speechOverride struct {
	Generator
	speech SpeechBackend
}

func (s *speechOverride) GenerateSpeech(ctx context.Context, text string) (string, error) {
	return s.speech.GenerateSpeech(ctx, text)
}

// StructureError marks a failed or malformed structure generation. It is
// fatal for the whole story-creation attempt; no partial story is shown.
type StructureError struct {
	Reason string
	Err    error
}

func (e *StructureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("story structure: %s: %v", e.Reason, e.Err)
	}
	return "story structure: " + e.Reason
}

func (e *StructureError) Unwrap() error {
	return e.Err
}
