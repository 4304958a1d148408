package gen

import (
	"context"
	"strings"

	"github.com/CanerKarul/Masal-Yaraticisi/internal/domain/story"
	"github.com/sirupsen/logrus"
)

// Page count bounds accepted for a story.
const (
	MinPages = 3
	MaxPages = 10
)

// StructureRequester produces the textual skeleton of a story. This is
// the only generation call that must fully succeed before anything is
// shown; an empty or malformed response fails the whole attempt.
type StructureRequester struct {
	gen Generator
}

func NewStructureRequester(g Generator) *StructureRequester {
	return &StructureRequester{gen: g}
}

// RequestStructure asks for a complete, schema-valid story. The returned
// story has every page's assets absent. There are no retries; calling
// again with the same inputs simply repeats the request.
func (r *StructureRequester) RequestStructure(ctx context.Context, topic, heroName string, pageCount int) (*story.Story, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, &StructureError{Reason: "topic is empty"}
	}
	if pageCount < MinPages || pageCount > MaxPages {
		return nil, &StructureError{Reason: "page count must be between 3 and 10"}
	}

	logrus.WithFields(logrus.Fields{
		"topic": topic,
		"pages": pageCount,
	}).Info("requesting story structure")

	s, err := r.gen.GenerateStoryStructure(ctx, topic, heroName, pageCount)
	if err != nil {
		return nil, &StructureError{Reason: "generation failed", Err: err}
	}
	if err := s.Validate(pageCount); err != nil {
		return nil, &StructureError{Reason: "invalid structure", Err: err}
	}

	// assets always start absent, whatever the model put in the fields
	for i := range s.Pages {
		s.Pages[i].ImageURL = nil
		s.Pages[i].AudioURL = nil
	}
	return s, nil
}
