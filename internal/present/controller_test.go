package present

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/dgallion1/slidedeck/internal/position"
	"github.com/dgallion1/slidedeck/internal/slides"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testKey = "currentSlide"

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type staticSource struct {
	list []slides.Slide
}

func (s staticSource) FetchSlides(context.Context) ([]slides.Slide, *slides.Metadata) {
	return s.list, &slides.Metadata{TotalSlides: len(s.list)}
}

func makeSlides(n int) []slides.Slide {
	out := make([]slides.Slide, n)
	for i := range out {
		out[i] = slides.Slide{
			ID:      fmt.Sprintf("slide-%d", i+1),
			Number:  i + 1,
			Title:   fmt.Sprintf("Slide %d", i+1),
			Content: slides.Sections{SpeakerNotes: slides.String(fmt.Sprintf("notes %d", i+1))},
			Persona: []string{"all"},
		}
	}
	return out
}

// failingStore rejects every write.
type failingStore struct {
	*position.MemoryStore
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("store offline")
}

func stored(t *testing.T, s position.Store) (int, bool) {
	t.Helper()
	return position.Read(context.Background(), s, testKey)
}

func TestController_LoadingUntilLoaded(t *testing.T) {
	ctx := context.Background()
	store := position.NewMemoryStore()
	c := NewController(staticSource{makeSlides(3)}, store, testKey, discardLogger())

	if snap := c.Snapshot(); snap.State != StateLoading || snap.Slide != nil {
		t.Fatalf("expected loading snapshot, got %+v", snap)
	}
	c.Next(ctx)
	if _, ok := stored(t, store); ok {
		t.Fatal("navigation while loading must not publish")
	}

	c.Load(ctx)
	snap := c.Snapshot()
	if snap.State != StateReady || snap.Index != 0 || snap.Total != 3 {
		t.Fatalf("unexpected snapshot after load: %+v", snap)
	}
	if snap.Slide == nil || snap.Slide.Number != 1 {
		t.Fatalf("expected slide 1, got %+v", snap.Slide)
	}
	if n, ok := stored(t, store); !ok || n != 1 {
		t.Errorf("expected position 1 after load, got %d, %v", n, ok)
	}
}

func TestController_NavigationSaturates(t *testing.T) {
	ctx := context.Background()
	store := position.NewMemoryStore()
	c := NewController(staticSource{makeSlides(4)}, store, testKey, discardLogger())
	c.Load(ctx)

	for range 10 {
		c.Previous(ctx)
		if idx := c.Snapshot().Index; idx < 0 {
			t.Fatalf("index went negative: %d", idx)
		}
	}
	if idx := c.Snapshot().Index; idx != 0 {
		t.Fatalf("expected index 0, got %d", idx)
	}

	for range 10 {
		c.Next(ctx)
		if idx := c.Snapshot().Index; idx >= 4 {
			t.Fatalf("index past end: %d", idx)
		}
	}
	if idx := c.Snapshot().Index; idx != 3 {
		t.Fatalf("expected index 3, got %d", idx)
	}
	if n, _ := stored(t, store); n != 4 {
		t.Errorf("expected stored position 4, got %d", n)
	}
}

func TestController_OnChangeSeesEveryMove(t *testing.T) {
	ctx := context.Background()
	c := NewController(staticSource{makeSlides(3)}, position.NewMemoryStore(), testKey, discardLogger())

	var got []int
	c.OnChange(func(n int) { got = append(got, n) })
	c.Load(ctx)
	c.Next(ctx)
	c.Next(ctx)
	c.Next(ctx) // saturated, no change
	c.Previous(ctx)

	want := []int{1, 2, 3, 2}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected changes %v, got %v", want, got)
	}
}

func TestController_EmptyDeck(t *testing.T) {
	ctx := context.Background()
	store := position.NewMemoryStore()
	c := NewController(staticSource{nil}, store, testKey, discardLogger())
	c.Load(ctx)
	c.Next(ctx)
	c.Previous(ctx)

	snap := c.Snapshot()
	if !snap.Empty() {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
	if snap.Slide != nil {
		t.Errorf("expected no slide, got %+v", snap.Slide)
	}
	if _, ok := stored(t, store); ok {
		t.Error("empty deck must not publish a position")
	}
}

func TestController_LoadOnce(t *testing.T) {
	ctx := context.Background()
	c := NewController(staticSource{makeSlides(3)}, position.NewMemoryStore(), testKey, discardLogger())
	c.Load(ctx)
	c.Next(ctx)
	c.Load(ctx)
	if idx := c.Snapshot().Index; idx != 1 {
		t.Errorf("second Load must not reset the index, got %d", idx)
	}
}

func TestController_HandleKey(t *testing.T) {
	ctx := context.Background()
	c := NewController(staticSource{makeSlides(3)}, position.NewMemoryStore(), testKey, discardLogger())
	c.Load(ctx)

	c.HandleKey(ctx, KeyRight)
	c.HandleKey(ctx, KeyRight)
	c.HandleKey(ctx, KeyLeft)
	if idx := c.Snapshot().Index; idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}

	c.HandleKey(ctx, KeyTogglePresenter)
	c.HandleKey(ctx, KeyToggleNotes)
	c.HandleKey(ctx, KeyToggleReferences)
	snap := c.Snapshot()
	if !snap.PresenterMode || !snap.ShowNotes || !snap.ShowReferences {
		t.Errorf("expected all toggles on, got %+v", snap)
	}
	if snap.Index != 1 {
		t.Errorf("toggles must not move the index, got %d", snap.Index)
	}

	c.TogglePresenterMode()
	if c.Snapshot().PresenterMode {
		t.Error("expected presenter mode off after second toggle")
	}
}

func TestController_Swipe(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy float64
		want   int
	}{
		{"left swipe advances", -80, 10, 2},
		{"right swipe goes back", 80, 10, 0},
		{"too short", -50, 0, 1},
		{"mostly vertical", -80, 120, 1},
		{"diagonal tie", -80, -80, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c := NewController(staticSource{makeSlides(3)}, position.NewMemoryStore(), testKey, discardLogger())
			c.Load(ctx)
			c.Next(ctx)

			c.Swipe(ctx, tt.dx, tt.dy)
			if idx := c.Snapshot().Index; idx != tt.want {
				t.Errorf("expected index %d, got %d", tt.want, idx)
			}
		})
	}
}

func TestController_InitialSlide(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"3", 2},
		{"1", 0},
		{"5", 4},
		{"99", 4},
		{"0", 0},
		{"-2", 0},
		{"abc", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("q=%q", tt.raw), func(t *testing.T) {
			store := position.NewMemoryStore()
			c := NewController(staticSource{makeSlides(5)}, store, testKey, discardLogger(), WithInitialSlide(tt.raw))
			c.Load(context.Background())
			if idx := c.Snapshot().Index; idx != tt.want {
				t.Errorf("expected index %d, got %d", tt.want, idx)
			}
			if n, _ := stored(t, store); n != tt.want+1 {
				t.Errorf("expected stored position %d, got %d", tt.want+1, n)
			}
		})
	}
}

func TestController_InitialSlideAppliedOnce(t *testing.T) {
	ctx := context.Background()
	c := NewController(staticSource{makeSlides(5)}, position.NewMemoryStore(), testKey, discardLogger(), WithInitialSlide("4"))
	c.Load(ctx)
	if idx := c.Snapshot().Index; idx != 3 {
		t.Fatalf("expected index 3, got %d", idx)
	}

	c.Previous(ctx)
	c.Load(ctx)
	if idx := c.Snapshot().Index; idx != 2 {
		t.Errorf("initial slide must not be reapplied, got index %d", idx)
	}
}

func TestController_StoreFailureDoesNotBlockNavigation(t *testing.T) {
	ctx := context.Background()
	c := NewController(staticSource{makeSlides(3)}, failingStore{position.NewMemoryStore()}, testKey, discardLogger())

	var got []int
	c.OnChange(func(n int) { got = append(got, n) })
	c.Load(ctx)
	c.Next(ctx)

	if idx := c.Snapshot().Index; idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}
	if fmt.Sprint(got) != "[1 2]" {
		t.Errorf("listeners should still fire, got %v", got)
	}
}

func TestController_ConcurrentNavigationWithListener(t *testing.T) {
	ctx := context.Background()
	store := position.NewMemoryStore()
	c := NewController(staticSource{makeSlides(50)}, store, testKey, discardLogger())

	var mu sync.Mutex
	last := 0
	c.OnChange(func(n int) {
		time.Sleep(time.Millisecond)
		if snap := c.Snapshot(); snap.Index+1 < n {
			t.Errorf("listener saw %d ahead of snapshot index %d", n, snap.Index)
		}
		mu.Lock()
		last = max(last, n)
		mu.Unlock()
	})
	c.Load(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 20 {
					c.Next(ctx)
				}
			}()
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("concurrent Next with a listener calling Snapshot did not finish")
	}

	if idx := c.Snapshot().Index; idx != 40 {
		t.Fatalf("expected index 40, got %d", idx)
	}
	if n, _ := stored(t, store); n != 41 {
		t.Errorf("expected stored position 41, got %d", n)
	}
	mu.Lock()
	defer mu.Unlock()
	if last != 41 {
		t.Errorf("expected listeners to reach 41, got %d", last)
	}
}

func TestController_ListenerMayNavigate(t *testing.T) {
	ctx := context.Background()
	store := position.NewMemoryStore()
	c := NewController(staticSource{makeSlides(3)}, store, testKey, discardLogger())

	// Skips straight from slide 1 to the end.
	c.OnChange(func(n int) {
		if n == 1 {
			c.Next(ctx)
			c.Next(ctx)
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Load(ctx)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("navigating from a listener did not finish")
	}

	if n, _ := stored(t, store); n != 3 {
		t.Errorf("expected stored position 3, got %d", n)
	}
}
