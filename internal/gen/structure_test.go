package gen

import (
	"context"
	"errors"
	"testing"

	"github.com/CanerKarul/Masal-Yaraticisi/internal/domain/story"
)

func TestRequestStructureValidPageCounts(t *testing.T) {
	r := NewStructureRequester(NewMockGenerator())

	for pages := MinPages; pages <= MaxPages; pages++ {
		s, err := r.RequestStructure(context.Background(), "uçan bir fil", "Ada", pages)
		if err != nil {
			t.Fatalf("pages=%d: RequestStructure() error = %v", pages, err)
		}
		if len(s.Pages) != pages {
			t.Fatalf("pages=%d: got %d pages", pages, len(s.Pages))
		}
		for _, p := range s.Pages {
			if p.ImageURL != nil || p.AudioURL != nil {
				t.Fatalf("pages=%d: page %d has assets right after structure generation", pages, p.PageNumber)
			}
		}
	}
}

func TestRequestStructureRejectsBadInput(t *testing.T) {
	r := NewStructureRequester(NewMockGenerator())

	tests := []struct {
		name  string
		topic string
		pages int
	}{
		{name: "empty topic", topic: "   ", pages: 5},
		{name: "too few pages", topic: "bir kedi", pages: 2},
		{name: "too many pages", topic: "bir kedi", pages: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.RequestStructure(context.Background(), tt.topic, "", tt.pages)
			var serr *StructureError
			if !errors.As(err, &serr) {
				t.Fatalf("error = %v, want *StructureError", err)
			}
		})
	}
}

func TestRequestStructureBackendFailureIsFatal(t *testing.T) {
	m := NewMockGenerator()
	m.FailStructure = true
	r := NewStructureRequester(m)

	s, err := r.RequestStructure(context.Background(), "uçan bir fil", "", 3)
	if s != nil {
		t.Fatal("no partial story may be returned on failure")
	}
	var serr *StructureError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *StructureError", err)
	}
}

type invalidStructureGen struct {
	MockGenerator
}

func (g *invalidStructureGen) GenerateStoryStructure(ctx context.Context, topic, heroName string, pageCount int) (*story.Story, error) {
	// schema-invalid: missing subtitle, wrong numbering
	return &story.Story{
		Title: "x",
		Pages: []story.Page{{PageNumber: 2, Text: "t", TTSText: "t", ImagePrompt: "p"}},
	}, nil
}

func TestRequestStructureRejectsMalformedStory(t *testing.T) {
	r := NewStructureRequester(&invalidStructureGen{})

	_, err := r.RequestStructure(context.Background(), "bir kedi", "", 3)
	var serr *StructureError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *StructureError", err)
	}
}
