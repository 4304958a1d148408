package story

import "fmt"

// ImageMetadata describes how a page illustration should be rendered.
type ImageMetadata struct {
	Style       string `json:"style"`
	AspectRatio string `json:"aspect_ratio"`
	Seed        *int64 `json:"seed,omitempty"`
}

// Page is one spread of the story. ImageURL and AudioURL start out nil and
// are filled in later by asset generation; nil covers both "not requested
// yet" and "requested but failed", so revisiting a page retries the fetch.
type Page struct {
	PageNumber    int           `json:"page_number"`
	Text          string        `json:"text"`
	TTSText       string        `json:"tts_text"`
	ImagePrompt   string        `json:"image_prompt"`
	ImageMetadata ImageMetadata `json:"image_metadata"`
	ImageURL      *string       `json:"image_url,omitempty"`
	AudioURL      *string       `json:"audio_url,omitempty"`
}

type Meta struct {
	PageCount                int `json:"page_count"`
	EstimatedDurationSeconds int `json:"estimated_duration_seconds"`
}

// Story is the full generated tale. The page sequence is fixed once
// structure generation succeeds; only per-page asset fields change after
// that, and only through WithPageAssets.
type Story struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Pages    []Page `json:"pages"`
	Meta     Meta   `json:"meta"`
}

// AssetPatch carries generated assets for one page. A nil slot means the
// corresponding request failed or was never made.
type AssetPatch struct {
	Image *string
	Audio *string
}

// IsZero reports whether the patch carries nothing worth merging.
func (p AssetPatch) IsZero() bool {
	return p.Image == nil && p.Audio == nil
}

// HasAssets reports whether both the image and the audio artifact are
// attached to the page.
func (p Page) HasAssets() bool {
	return p.ImageURL != nil && p.AudioURL != nil
}

// applyAssets merges non-nil patch fields into the page. Nil fields are
// skipped rather than written, which makes the merge idempotent and safe
// against late or out-of-order completions.
func (p Page) applyAssets(patch AssetPatch) Page {
	if patch.Image != nil {
		p.ImageURL = patch.Image
	}
	if patch.Audio != nil {
		p.AudioURL = patch.Audio
	}
	return p
}

// WithPageAssets returns a story with the patch merged into the page at
// index. The page slice is shallow-copied and only the patched page is
// replaced, so untouched pages keep their identity and readers of the old
// snapshot stay consistent. Out-of-range indices return the receiver
// unchanged.
func (s *Story) WithPageAssets(index int, patch AssetPatch) *Story {
	if index < 0 || index >= len(s.Pages) {
		return s
	}
	pages := make([]Page, len(s.Pages))
	copy(pages, s.Pages)
	pages[index] = pages[index].applyAssets(patch)
	out := *s
	out.Pages = pages
	return &out
}

// Validate checks that a freshly generated structure is complete:
// wantPages pages numbered 1..N in order, each with narration, a speech
// variant and an image prompt.
func (s *Story) Validate(wantPages int) error {
	if s.Title == "" {
		return fmt.Errorf("story has no title")
	}
	if s.Subtitle == "" {
		return fmt.Errorf("story has no subtitle")
	}
	if len(s.Pages) != wantPages {
		return fmt.Errorf("expected %d pages, got %d", wantPages, len(s.Pages))
	}
	for i, p := range s.Pages {
		if p.PageNumber != i+1 {
			return fmt.Errorf("page %d has page_number %d", i+1, p.PageNumber)
		}
		if p.Text == "" {
			return fmt.Errorf("page %d has no text", p.PageNumber)
		}
		if p.TTSText == "" {
			return fmt.Errorf("page %d has no tts_text", p.PageNumber)
		}
		if p.ImagePrompt == "" {
			return fmt.Errorf("page %d has no image_prompt", p.PageNumber)
		}
	}
	return nil
}
