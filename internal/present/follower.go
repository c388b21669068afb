package present

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/slidedeck/internal/position"
	"github.com/dgallion1/slidedeck/internal/slides"
)

// DefaultPollInterval is how often a Follower re-reads the shared position.
const DefaultPollInterval = 100 * time.Millisecond

// View is what the presenter display should show.
type View struct {
	Loading     bool
	Position    int
	HasPosition bool
	Slide       *slides.Slide
}

// Waiting reports that the slides are loaded but none matches the current
// position (not yet written, or out of range).
func (v View) Waiting() bool {
	return !v.Loading && v.Slide == nil
}

func (v View) same(o View) bool {
	if v.Loading != o.Loading || v.Position != o.Position || v.HasPosition != o.HasPosition {
		return false
	}
	if (v.Slide == nil) != (o.Slide == nil) {
		return false
	}
	return v.Slide == nil || v.Slide.Number == o.Slide.Number
}

// Follower keeps a secondary view in step with the presentation by polling
// the shared position store, with store notifications as a faster path.
type Follower struct {
	source   SlideSource
	store    position.Store
	key      string
	interval time.Duration
	log      *slog.Logger

	mu sync.Mutex
	// notifyMu serializes observer calls. It is never acquired while mu is
	// held.
	notifyMu  sync.Mutex
	slides    []slides.Slide
	loaded    bool
	pos       int
	hasPos    bool
	current   View
	version   uint64
	delivered uint64
	observers []func(View)

	running     bool
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

func NewFollower(source SlideSource, store position.Store, key string, interval time.Duration, log *slog.Logger) *Follower {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Follower{
		source:   source,
		store:    store,
		key:      key,
		interval: interval,
		log:      log,
		current:  View{Loading: true},
	}
}

// OnView registers fn to be called whenever the view changes. Observers are
// called one at a time without f's state lock, so they may call Current.
// Changes that arrive while an observer is busy are coalesced into the
// newest view. Register observers before Start.
func (f *Follower) OnView(fn func(View)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers = append(f.observers, fn)
}

// Current returns the latest view.
func (f *Follower) Current() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Start fetches the slides and begins polling. It does not block; call Stop
// to tear everything down.
func (f *Follower) Start(ctx context.Context) {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return
	}
	f.running = true
	runCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.mu.Unlock()

	unsubscribe := f.store.Subscribe(f.key, func(v string) {
		n, ok := position.Parse(v)
		f.observe(n, ok)
	})
	f.mu.Lock()
	f.unsubscribe = unsubscribe
	f.mu.Unlock()

	f.wg.Add(2)
	go func() {
		defer f.wg.Done()
		list, _ := f.source.FetchSlides(runCtx)
		f.setSlides(list)
	}()
	go func() {
		defer f.wg.Done()
		f.poll(runCtx)
	}()
}

// Stop cancels polling and the subscription and waits for both goroutines.
func (f *Follower) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.running = false
	cancel, unsubscribe := f.cancel, f.unsubscribe
	f.mu.Unlock()

	cancel()
	if unsubscribe != nil {
		unsubscribe()
	}
	f.wg.Wait()
}

func (f *Follower) poll(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		n, ok := position.Read(ctx, f.store, f.key)
		if ctx.Err() != nil {
			return
		}
		f.observe(n, ok)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (f *Follower) setSlides(list []slides.Slide) {
	f.mu.Lock()
	f.slides = list
	f.loaded = true
	if len(list) == 0 {
		f.log.Warn("no slides found")
	}
	f.updateLocked()
}

func (f *Follower) observe(n int, ok bool) {
	f.mu.Lock()
	f.pos, f.hasPos = n, ok
	f.updateLocked()
}

// updateLocked recomputes the view and notifies observers if it changed. It
// must be called with f.mu held and releases it.
func (f *Follower) updateLocked() {
	next := View{Loading: !f.loaded, Position: f.pos, HasPosition: f.hasPos}
	if f.loaded && f.hasPos {
		if s, ok := findByNumber(f.slides, f.pos); ok {
			next.Slide = &s
		}
	}
	if next.same(f.current) {
		f.mu.Unlock()
		return
	}
	f.current = next
	f.version++
	f.mu.Unlock()
	f.deliver()
}

// deliver hands the latest view to observers unless it was already sent.
func (f *Follower) deliver() {
	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()

	f.mu.Lock()
	if f.delivered == f.version {
		f.mu.Unlock()
		return
	}
	f.delivered = f.version
	view := f.current
	observers := append([]func(View){}, f.observers...)
	f.mu.Unlock()

	for _, fn := range observers {
		fn(view)
	}
}
