package gen

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/CanerKarul/Masal-Yaraticisi/internal/domain/story"
)

// MockGenerator is an offline Generator producing deterministic stories
// and short PCM tones. It backs --offline mode and the orchestration
// tests.
type MockGenerator struct {
	// Per-call failure switches.
	FailStructure bool
	FailImage     bool
	FailAudio     bool

	// Delay simulates backend latency on every call.
	Delay time.Duration

	// SampleRate of the generated tone; defaults to 24000.
	SampleRate int

	mu             sync.Mutex
	structureCalls int
	imageCalls     int
	audioCalls     int
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) GenerateStoryStructure(ctx context.Context, topic, heroName string, pageCount int) (*story.Story, error) {
	m.count(&m.structureCalls)
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.FailStructure {
		return nil, fmt.Errorf("mock structure failure")
	}

	hero := heroName
	if hero == "" {
		hero = "Kahraman"
	}
	s := &story.Story{
		Title:    "Bir Masal",
		Subtitle: fmt.Sprintf("%s ve %s", hero, topic),
		Meta: story.Meta{
			PageCount:                pageCount,
			EstimatedDurationSeconds: 45 * pageCount,
		},
	}
	for i := 1; i <= pageCount; i++ {
		s.Pages = append(s.Pages, story.Page{
			PageNumber:  i,
			Text:        fmt.Sprintf("Sayfa %d: %s, %s ile yeni bir şey keşfetti.", i, hero, topic),
			TTSText:     fmt.Sprintf("Sayfa %d. %s, %s ile yeni bir şey keşfetti.", i, hero, topic),
			ImagePrompt: fmt.Sprintf("%s, page %d, bright playful cartoon style", topic, i),
			ImageMetadata: story.ImageMetadata{
				Style:       "cartoon",
				AspectRatio: "4:3",
			},
		})
	}
	return s, nil
}

func (m *MockGenerator) GenerateImage(ctx context.Context, prompt string, meta story.ImageMetadata) (string, error) {
	m.count(&m.imageCalls)
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	if m.FailImage {
		return "", fmt.Errorf("mock image failure")
	}
	// 1x1 transparent PNG
	return "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==", nil
}

func (m *MockGenerator) GenerateSpeech(ctx context.Context, text string) (string, error) {
	m.count(&m.audioCalls)
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	if m.FailAudio {
		return "", fmt.Errorf("mock speech failure")
	}

	rate := m.SampleRate
	if rate <= 0 {
		rate = 24000
	}
	// a quarter second of a soft 440 Hz tone, scaled roughly with the
	// text so longer pages sound longer
	frames := rate/4 + len(text)*8
	raw := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		sample := int16(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		raw[i*2] = byte(sample)
		raw[i*2+1] = byte(sample >> 8)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Calls reports how many structure, image and speech requests were made.
func (m *MockGenerator) Calls() (structure, image, audio int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.structureCalls, m.imageCalls, m.audioCalls
}

func (m *MockGenerator) count(c *int) {
	m.mu.Lock()
	*c++
	m.mu.Unlock()
}

func (m *MockGenerator) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(m.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
