package gen

import (
	"context"
	"sync"

	"github.com/CanerKarul/Masal-Yaraticisi/internal/domain/story"
	"github.com/sirupsen/logrus"
)

// AssetFetcher requests the image and audio artifact for one page. The
// two sub-requests run concurrently and fail independently: whichever one
// fails comes back as a nil slot while the other's result is still
// returned. There is no separate error channel at this layer.
type AssetFetcher struct {
	gen Generator
}

func NewAssetFetcher(g Generator) *AssetFetcher {
	return &AssetFetcher{gen: g}
}

// FetchAssets never fails outright; the worst case is a zero patch.
func (f *AssetFetcher) FetchAssets(ctx context.Context, ttsText, imagePrompt string, meta story.ImageMetadata) story.AssetPatch {
	var patch story.AssetPatch
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		img, err := f.gen.GenerateImage(ctx, imagePrompt, meta)
		if err != nil {
			logrus.WithError(err).WithField("prompt", imagePrompt).Warn("image generation failed")
			return
		}
		patch.Image = &img
	}()

	go func() {
		defer wg.Done()
		audio, err := f.gen.GenerateSpeech(ctx, ttsText)
		if err != nil {
			logrus.WithError(err).Warn("speech generation failed")
			return
		}
		patch.Audio = &audio
	}()

	wg.Wait()
	return patch
}
