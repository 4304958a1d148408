package reader

import (
	"sync"

	"github.com/CanerKarul/Masal-Yaraticisi/internal/domain/story"
)

// Session owns the story currently being read. It is the only piece of
// shared mutable state; all asset writes go through PatchPageAssets, and
// every write swaps in a copy-on-write snapshot, so readers always see a
// consistent story.
type Session struct {
	mu    sync.RWMutex
	story *story.Story
}

func NewSession(s *story.Story) *Session {
	return &Session{story: s}
}

// Story returns the current snapshot.
func (s *Session) Story() *story.Story {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.story
}

// Page returns a copy of the page at index, or false if out of range.
func (s *Session) Page(index int) (story.Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.story.Pages) {
		return story.Page{}, false
	}
	return s.story.Pages[index], true
}

func (s *Session) PageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.story.Pages)
}

// PatchPageAssets merges the patch into one page. Nil patch fields never
// overwrite existing values, so late or repeated patches are harmless.
func (s *Session) PatchPageAssets(index int, patch story.AssetPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.story = s.story.WithPageAssets(index, patch)
}
