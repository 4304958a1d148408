package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/CanerKarul/Masal-Yaraticisi/internal/domain/story"
	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiConfig configures the hosted generation backend.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	StructureModel string
	ImageModel     string
	SpeechModel    string
	Voice          string

	// Language of the generated story text.
	Language string
}

// GeminiClient talks to the Gemini and Imagen REST endpoints. It is the
// production Generator implementation.
type GeminiClient struct {
	cfg        GeminiConfig
	httpClient *http.Client
}

func NewGeminiClient(cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.StructureModel == "" {
		cfg.StructureModel = "gemini-2.5-flash"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "imagen-4.0-generate-001"
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = "gemini-2.5-flash-preview-tts"
	}
	if cfg.Voice == "" {
		cfg.Voice = "Kore"
	}
	if cfg.Language == "" {
		cfg.Language = "Turkish"
	}

	return &GeminiClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Wire types for the generateContent endpoint.

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType   string         `json:"responseMimeType,omitempty"`
	ResponseSchema     map[string]any `json:"responseSchema,omitempty"`
	ResponseModalities []string       `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig  `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

// Wire types for the Imagen predict endpoint.

type imagenRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenParameters struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio,omitempty"`
	Seed        *int64 `json:"seed,omitempty"`
}

type imagenResponse struct {
	Predictions []imagenPrediction `json:"predictions"`
}

type imagenPrediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

// storySchema constrains the structure response to the story shape.
var storySchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"title":    map[string]any{"type": "STRING"},
		"subtitle": map[string]any{"type": "STRING"},
		"pages": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"page_number":  map[string]any{"type": "INTEGER"},
					"text":         map[string]any{"type": "STRING"},
					"tts_text":     map[string]any{"type": "STRING"},
					"image_prompt": map[string]any{"type": "STRING"},
					"image_metadata": map[string]any{
						"type": "OBJECT",
						"properties": map[string]any{
							"style":        map[string]any{"type": "STRING"},
							"aspect_ratio": map[string]any{"type": "STRING"},
							"seed":         map[string]any{"type": "INTEGER", "nullable": true},
						},
						"required": []string{"style", "aspect_ratio"},
					},
				},
				"required": []string{"page_number", "text", "tts_text", "image_prompt", "image_metadata"},
			},
		},
		"meta": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"page_count":                 map[string]any{"type": "INTEGER"},
				"estimated_duration_seconds": map[string]any{"type": "INTEGER"},
			},
			"required": []string{"page_count", "estimated_duration_seconds"},
		},
	},
	"required": []string{"title", "subtitle", "pages", "meta"},
}

// GenerateStoryStructure asks the text model for the full page skeleton
// in one schema-constrained call.
func (c *GeminiClient) GenerateStoryStructure(ctx context.Context, topic, heroName string, pageCount int) (*story.Story, error) {
	systemPrompt := fmt.Sprintf(
		"You are a children's story composer for ages 3-8 and a UX-aware content generator. "+
			"Output MUST strictly follow the JSON schema provided. Language: %s. "+
			"Max 60 words per page. Ensure all content is safe, positive, and child-friendly. "+
			"The story should have a clear beginning, a simple middle part with a small challenge "+
			"or discovery, and a happy ending. Generate image prompts in a bright, playful cartoon style.",
		c.cfg.Language)
	userPrompt := fmt.Sprintf(
		"Generate a %d-page story about: '%s'. If provided, include the child's name: '%s'. "+
			"Include detailed image_prompt and tts_text for each page. Output only the JSON.",
		pageCount, topic, heroName)

	req := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: systemPrompt + "\n\nUSER:\n" + userPrompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   storySchema,
		},
	}

	var resp generateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", c.cfg.StructureModel)
	if err := c.post(ctx, path, req, &resp); err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(firstText(resp))
	if raw == "" {
		return nil, fmt.Errorf("empty structure response")
	}

	var s story.Story
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("failed to parse story JSON: %w", err)
	}
	return &s, nil
}

// GenerateImage renders one page illustration and returns it as a PNG
// data URL.
func (c *GeminiClient) GenerateImage(ctx context.Context, prompt string, meta story.ImageMetadata) (string, error) {
	aspect := meta.AspectRatio
	if aspect == "" {
		aspect = "4:3"
	}
	req := imagenRequest{
		Instances: []imagenInstance{{Prompt: prompt}},
		Parameters: imagenParameters{
			SampleCount: 1,
			AspectRatio: aspect,
			Seed:        meta.Seed,
		},
	}

	var resp imagenResponse
	path := fmt.Sprintf("/models/%s:predict", c.cfg.ImageModel)
	if err := c.post(ctx, path, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		return "", fmt.Errorf("no image was generated")
	}
	return "data:image/png;base64," + resp.Predictions[0].BytesBase64Encoded, nil
}

// GenerateSpeech narrates the text with the speech model and returns the
// base64 raw PCM payload.
func (c *GeminiClient) GenerateSpeech(ctx context.Context, text string) (string, error) {
	req := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: text}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: c.cfg.Voice},
				},
			},
		},
	}

	var resp generateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", c.cfg.SpeechModel)
	if err := c.post(ctx, path, req, &resp); err != nil {
		return "", err
	}

	data := firstInlineData(resp)
	if data == "" {
		return "", fmt.Errorf("no audio data received")
	}
	return data, nil
}

func (c *GeminiClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	logrus.WithField("path", path).Debug("calling generation backend")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode error: %w", err)
	}
	return nil
}

func firstText(resp generateContentResponse) string {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

func firstInlineData(resp generateContentResponse) string {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return p.InlineData.Data
			}
		}
	}
	return ""
}
