package present

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/dgallion1/slidedeck/internal/position"
	"github.com/dgallion1/slidedeck/internal/slides"
)

// State is the controller lifecycle. Ready is terminal.
type State int

const (
	StateLoading State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "loading"
}

// Key is a navigation input, independent of the terminal or browser that
// produced it.
type Key int

const (
	KeyRight Key = iota + 1
	KeyLeft
	KeyTogglePresenter
	KeyToggleNotes
	KeyToggleReferences
)

// MinSwipeDistance is the horizontal travel, in pixels, a swipe needs before
// it counts as navigation.
const MinSwipeDistance = 50.0

// Option configures a Controller.
type Option func(*Controller)

// WithInitialSlide sets the requested starting slide (a query parameter in
// the browser, a flag on the command line). It is applied once, when the
// slides first load.
func WithInitialSlide(raw string) Option {
	return func(c *Controller) {
		c.query = raw
	}
}

// Controller owns the current slide index of the main presentation view and
// publishes every change to the shared position store.
type Controller struct {
	mu sync.Mutex
	// pubMu orders store writes. It is never acquired while mu is held.
	pubMu sync.Mutex

	source SlideSource
	store  position.Store
	key    string
	log    *slog.Logger

	state     State
	slides    []slides.Slide
	metadata  *slides.Metadata
	index     int
	presenter bool
	notes     bool
	refs      bool

	query        string
	queryApplied bool

	// seq counts index changes; published is the last one written.
	seq       uint64
	published uint64

	listeners []func(number int)
}

func NewController(source SlideSource, store position.Store, key string, log *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		source: source,
		store:  store,
		key:    key,
		log:    log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers fn to be called with the 1-based slide number after
// an index change, once the store write is done. Listeners run without any
// controller lock held, so they may call Snapshot or navigate. Moves made
// concurrently can be coalesced into one call carrying the latest number.
func (c *Controller) OnChange(fn func(number int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Load fetches the slides and moves the controller to Ready. An empty result
// is final: the controller shows "no slides" and never retries. Calling Load
// again once Ready does nothing.
func (c *Controller) Load(ctx context.Context) {
	c.mu.Lock()
	if c.state == StateReady {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	list, meta := c.source.FetchSlides(ctx)

	c.mu.Lock()
	if c.state == StateReady {
		c.mu.Unlock()
		return
	}
	c.state = StateReady
	c.slides = list
	c.metadata = meta
	c.index = 0
	c.applyQueryLocked()
	if len(c.slides) == 0 {
		c.mu.Unlock()
		c.log.Warn("no slides found")
		return
	}
	c.commitLocked(ctx)
}

func (c *Controller) applyQueryLocked() {
	if c.queryApplied {
		return
	}
	c.queryApplied = true
	raw := strings.TrimSpace(c.query)
	if raw == "" || len(c.slides) == 0 {
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.log.Debug("ignoring non-numeric initial slide", "slide", raw)
		return
	}
	c.index = clamp(n, 1, len(c.slides)) - 1
}

// Next advances one slide, stopping at the last.
func (c *Controller) Next(ctx context.Context) {
	c.move(ctx, +1)
}

// Previous goes back one slide, stopping at the first.
func (c *Controller) Previous(ctx context.Context) {
	c.move(ctx, -1)
}

func (c *Controller) move(ctx context.Context, delta int) {
	c.mu.Lock()
	if c.state != StateReady || len(c.slides) == 0 {
		c.mu.Unlock()
		return
	}
	next := clamp(c.index+delta, 0, len(c.slides)-1)
	if next == c.index {
		c.mu.Unlock()
		return
	}
	c.index = next
	c.commitLocked(ctx)
}

// commitLocked records an index change and publishes it. It must be called
// with c.mu held and releases it.
func (c *Controller) commitLocked(ctx context.Context) {
	c.seq++
	c.mu.Unlock()
	c.publish(ctx)
}

// publish writes the latest index to the store, then notifies listeners.
// A change already covered by a newer write is skipped, so the stored
// position never moves backwards.
func (c *Controller) publish(ctx context.Context) {
	c.pubMu.Lock()
	c.mu.Lock()
	if c.published == c.seq {
		c.mu.Unlock()
		c.pubMu.Unlock()
		return
	}
	c.published = c.seq
	number := c.index + 1
	listeners := append([]func(int){}, c.listeners...)
	c.mu.Unlock()

	if err := position.Write(ctx, c.store, c.key, number); err != nil {
		c.log.Error("publish position failed", "slide", number, "error", err)
	}
	c.pubMu.Unlock()

	for _, fn := range listeners {
		fn(number)
	}
}

// HandleKey dispatches a navigation key.
func (c *Controller) HandleKey(ctx context.Context, k Key) {
	switch k {
	case KeyRight:
		c.Next(ctx)
	case KeyLeft:
		c.Previous(ctx)
	case KeyTogglePresenter:
		c.TogglePresenterMode()
	case KeyToggleNotes:
		c.toggle(&c.notes)
	case KeyToggleReferences:
		c.toggle(&c.refs)
	}
}

// Swipe interprets a touch gesture. Only mostly-horizontal swipes longer than
// MinSwipeDistance navigate; a leftward swipe advances.
func (c *Controller) Swipe(ctx context.Context, dx, dy float64) {
	if math.Abs(dx) <= MinSwipeDistance || math.Abs(dx) <= math.Abs(dy) {
		return
	}
	if dx < 0 {
		c.Next(ctx)
	} else {
		c.Previous(ctx)
	}
}

// TogglePresenterMode flips visibility of the in-view controls. The index is
// unaffected.
func (c *Controller) TogglePresenterMode() {
	c.toggle(&c.presenter)
}

func (c *Controller) toggle(flag *bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*flag = !*flag
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	State          State
	Index          int
	Total          int
	Slide          *slides.Slide
	Metadata       *slides.Metadata
	PresenterMode  bool
	ShowNotes      bool
	ShowReferences bool
}

// Empty reports the terminal "no slides" state.
func (s Snapshot) Empty() bool {
	return s.State == StateReady && s.Total == 0
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		State:          c.state,
		Index:          c.index,
		Total:          len(c.slides),
		Metadata:       c.metadata,
		PresenterMode:  c.presenter,
		ShowNotes:      c.notes,
		ShowReferences: c.refs,
	}
	if c.state == StateReady && len(c.slides) > 0 {
		s := c.slides[c.index]
		snap.Slide = &s
	}
	return snap
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
