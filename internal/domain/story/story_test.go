package story

import "testing"

func strptr(s string) *string { return &s }

func testStory(pages int) *Story {
	s := &Story{
		Title:    "Uçan Fil",
		Subtitle: "Gökyüzünde bir macera",
		Meta:     Meta{PageCount: pages, EstimatedDurationSeconds: 60 * pages},
	}
	for i := 1; i <= pages; i++ {
		s.Pages = append(s.Pages, Page{
			PageNumber:  i,
			Text:        "Bir varmış bir yokmuş...",
			TTSText:     "Bir varmış, bir yokmuş.",
			ImagePrompt: "a flying elephant, cartoon style",
			ImageMetadata: ImageMetadata{
				Style:       "cartoon",
				AspectRatio: "4:3",
			},
		})
	}
	return s
}

func TestWithPageAssetsMergesNonNilFields(t *testing.T) {
	s := testStory(3)
	patched := s.WithPageAssets(1, AssetPatch{Audio: strptr("cGNt")})

	if patched.Pages[1].AudioURL == nil || *patched.Pages[1].AudioURL != "cGNt" {
		t.Fatalf("audio not merged: %+v", patched.Pages[1])
	}
	if patched.Pages[1].ImageURL != nil {
		t.Fatalf("image should stay nil, got %v", *patched.Pages[1].ImageURL)
	}
	// the original snapshot is untouched
	if s.Pages[1].AudioURL != nil {
		t.Fatal("patch mutated the original story")
	}
}

func TestWithPageAssetsIsIdempotent(t *testing.T) {
	s := testStory(3)
	patch := AssetPatch{Audio: strptr("cGNt")}
	once := s.WithPageAssets(0, patch)
	twice := once.WithPageAssets(0, patch)

	if *once.Pages[0].AudioURL != *twice.Pages[0].AudioURL {
		t.Fatal("applying the same patch twice changed the page")
	}
	if twice.Pages[0].ImageURL != nil {
		t.Fatal("image appeared out of nowhere")
	}
}

func TestWithPageAssetsNeverRegressesPopulatedField(t *testing.T) {
	s := testStory(3)
	s = s.WithPageAssets(2, AssetPatch{Image: strptr("data:image/png;base64,aW1n")})

	// a nil incoming slot must not clear the existing value
	s = s.WithPageAssets(2, AssetPatch{Image: nil, Audio: strptr("cGNt")})

	if s.Pages[2].ImageURL == nil {
		t.Fatal("populated image_url was cleared by a nil patch field")
	}
	if s.Pages[2].AudioURL == nil {
		t.Fatal("audio was not merged alongside")
	}
}

func TestWithPageAssetsOutOfRange(t *testing.T) {
	s := testStory(3)
	for _, idx := range []int{-1, 3, 99} {
		if got := s.WithPageAssets(idx, AssetPatch{Image: strptr("x")}); got != s {
			t.Errorf("index %d: expected the receiver back, got a new story", idx)
		}
	}
}

func TestWithPageAssetsPreservesUntouchedPages(t *testing.T) {
	s := testStory(4)
	patched := s.WithPageAssets(1, AssetPatch{Audio: strptr("cGNt")})

	for i := range s.Pages {
		if i == 1 {
			continue
		}
		if patched.Pages[i] != s.Pages[i] {
			t.Errorf("page %d changed although it was not patched", i)
		}
	}
}

func TestHasAssets(t *testing.T) {
	p := Page{}
	if p.HasAssets() {
		t.Fatal("empty page reports assets")
	}
	p.ImageURL = strptr("img")
	if p.HasAssets() {
		t.Fatal("image alone should not count as complete")
	}
	p.AudioURL = strptr("pcm")
	if !p.HasAssets() {
		t.Fatal("both assets set but HasAssets is false")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Story)
		wantErr bool
	}{
		{name: "valid", mutate: func(s *Story) {}, wantErr: false},
		{name: "missing title", mutate: func(s *Story) { s.Title = "" }, wantErr: true},
		{name: "missing subtitle", mutate: func(s *Story) { s.Subtitle = "" }, wantErr: true},
		{name: "wrong page count", mutate: func(s *Story) { s.Pages = s.Pages[:2] }, wantErr: true},
		{name: "bad numbering", mutate: func(s *Story) { s.Pages[1].PageNumber = 7 }, wantErr: true},
		{name: "empty text", mutate: func(s *Story) { s.Pages[0].Text = "" }, wantErr: true},
		{name: "empty tts text", mutate: func(s *Story) { s.Pages[2].TTSText = "" }, wantErr: true},
		{name: "empty image prompt", mutate: func(s *Story) { s.Pages[1].ImagePrompt = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStory(3)
			tt.mutate(s)
			err := s.Validate(3)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
