package present

import (
	"context"

	"github.com/dgallion1/slidedeck/internal/deck"
	"github.com/dgallion1/slidedeck/internal/slides"
)

// SlideSource resolves the deck for a view. Implementations never fail; an
// empty slice means there is nothing to show.
type SlideSource interface {
	FetchSlides(ctx context.Context) ([]slides.Slide, *slides.Metadata)
}

// LocalSource reads slides straight from a content store, for views running
// next to the markdown files instead of against a server.
type LocalSource struct {
	Store *deck.Store
}

func (s LocalSource) FetchSlides(context.Context) ([]slides.Slide, *slides.Metadata) {
	meta := s.Store.Metadata()
	return s.Store.All(), &meta
}

// findByNumber looks a slide up by its number rather than its index.
func findByNumber(list []slides.Slide, number int) (slides.Slide, bool) {
	for _, s := range list {
		if s.Number == number {
			return s, true
		}
	}
	return slides.Slide{}, false
}
