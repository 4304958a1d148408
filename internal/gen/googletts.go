package gen

import (
	"context"
	"encoding/base64"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

// GoogleSpeech synthesizes narration with the classic Google Cloud TTS
// API. It honours the same contract as the Gemini speech model (base64
// raw 16-bit mono PCM at a fixed sample rate) so the two backends are
// interchangeable behind WithSpeechBackend.
type GoogleSpeech struct {
	client       *texttospeech.Client
	voice        string
	languageCode string
	sampleRate   int32
}

func NewGoogleSpeech(ctx context.Context, voice, languageCode string, sampleRate int) (*GoogleSpeech, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS client: %w", err)
	}
	if voice == "" {
		voice = "tr-TR-Standard-A"
	}
	if languageCode == "" {
		languageCode = "tr-TR"
	}
	return &GoogleSpeech{
		client:       client,
		voice:        voice,
		languageCode: languageCode,
		sampleRate:   int32(sampleRate),
	}, nil
}

func (g *GoogleSpeech) GenerateSpeech(ctx context.Context, text string) (string, error) {
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.languageCode,
			Name:         g.voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   texttospeechpb.AudioEncoding_LINEAR16,
			SampleRateHertz: g.sampleRate,
		},
	}

	resp, err := g.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to synthesize speech: %w", err)
	}
	return base64.StdEncoding.EncodeToString(stripWAVHeader(resp.AudioContent)), nil
}

// ListVoices returns the voice names available for the configured
// language.
func (g *GoogleSpeech) ListVoices(ctx context.Context) ([]string, error) {
	resp, err := g.client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{
		LanguageCode: g.languageCode,
	})
	if err != nil {
		return nil, err
	}
	voices := make([]string, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		voices = append(voices, v.Name)
	}
	return voices, nil
}

func (g *GoogleSpeech) Close() error {
	return g.client.Close()
}

// LINEAR16 responses carry a 44-byte RIFF header in front of the raw
// samples; the playback pipeline wants headerless PCM.
func stripWAVHeader(b []byte) []byte {
	if len(b) > 44 && string(b[:4]) == "RIFF" {
		return b[44:]
	}
	return b
}
