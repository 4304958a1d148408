package reader

import (
	"context"
	"sync"
	"time"

	"github.com/CanerKarul/Masal-Yaraticisi/internal/domain/story"
	"github.com/sirupsen/logrus"
)

// DefaultLookaheadDelay before the next page's speculative fetch fires.
// The delay keeps the look-ahead from contending with the request just
// issued for the page being read.
const DefaultLookaheadDelay = 600 * time.Millisecond

// Fetcher requests both assets for one page. gen.AssetFetcher satisfies
// this.
type Fetcher interface {
	FetchAssets(ctx context.Context, ttsText, imagePrompt string, meta story.ImageMetadata) story.AssetPatch
}

// Orchestrator decides when page assets are fetched: eagerly for the page
// being read, speculatively for the one after it, and never twice for the
// same index while a fetch is outstanding. It is scoped to one reading
// session.
type Orchestrator struct {
	session *Session
	fetcher Fetcher
	delay   time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	inFlight  map[int]struct{}
	lookahead *time.Timer

	wg sync.WaitGroup
}

func NewOrchestrator(session *Session, fetcher Fetcher, lookaheadDelay time.Duration) *Orchestrator {
	if lookaheadDelay <= 0 {
		lookaheadDelay = DefaultLookaheadDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		session:  session,
		fetcher:  fetcher,
		delay:    lookaheadDelay,
		ctx:      ctx,
		cancel:   cancel,
		inFlight: make(map[int]struct{}),
	}
}

// PageChanged reacts to the displayed page index moving: fetch the page's
// assets now and, after the look-ahead delay, the next page's. A newer
// call cancels the pending look-ahead before it fires.
func (o *Orchestrator) PageChanged(index int) {
	o.EnsurePageAssets(index)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lookahead != nil {
		o.lookahead.Stop()
		o.lookahead = nil
	}
	next := index + 1
	if next >= o.session.PageCount() {
		return
	}
	o.lookahead = time.AfterFunc(o.delay, func() {
		o.EnsurePageAssets(next)
	})
}

// EnsurePageAssets requests assets for one page, at most once at a time
// per index. Pages that already have both assets are skipped; pages whose
// earlier fetch failed still have nil fields and are retried.
func (o *Orchestrator) EnsurePageAssets(index int) {
	page, ok := o.session.Page(index)
	if !ok {
		return
	}
	if page.HasAssets() {
		return
	}

	o.mu.Lock()
	if _, busy := o.inFlight[index]; busy {
		o.mu.Unlock()
		return
	}
	o.inFlight[index] = struct{}{}
	o.mu.Unlock()

	logrus.WithField("page", page.PageNumber).Debug("fetching page assets")

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		// clear in-flight membership on every outcome
		defer func() {
			o.mu.Lock()
			delete(o.inFlight, index)
			o.mu.Unlock()
		}()

		patch := o.fetcher.FetchAssets(o.ctx, page.TTSText, page.ImagePrompt, page.ImageMetadata)
		if patch.IsZero() {
			return
		}
		o.session.PatchPageAssets(index, patch)
	}()
}

// Close cancels the pending look-ahead, cancels the fetch context and
// waits for outstanding fetches to finish.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.lookahead != nil {
		o.lookahead.Stop()
		o.lookahead = nil
	}
	o.mu.Unlock()
	o.cancel()
	o.wg.Wait()
}
