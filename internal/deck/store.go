package deck

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/slidedeck/internal/parser"
	"github.com/dgallion1/slidedeck/internal/slides"
)

// Store assembles slides from the catalog and the markdown content directory.
// Files are read on every call, so edits show up without a restart.
type Store struct {
	catalog    *slides.Catalog
	contentDir string
	log        *slog.Logger
}

func NewStore(catalog *slides.Catalog, contentDir string, log *slog.Logger) *Store {
	return &Store{
		catalog:    catalog,
		contentDir: contentDir,
		log:        log,
	}
}

// Catalog returns the catalog the store was built from.
func (s *Store) Catalog() *slides.Catalog {
	return s.catalog
}

// Assemble joins the definition for number with its parsed content. It
// reports false only when the catalog has no such slide.
func (s *Store) Assemble(number int) (slides.Slide, bool) {
	def, ok := s.catalog.Definition(number)
	if !ok {
		return slides.Slide{}, false
	}

	slide := slides.Slide{
		ID:      def.ID,
		Number:  def.Number,
		Title:   def.Title,
		Part:    s.catalog.PartFor(number),
		Persona: append([]string(nil), slides.DefaultPersona...),
	}

	sections, found := s.loadSections(number)
	if !found {
		slide.Content = slides.Sections{
			Title:   slides.String(def.Title),
			Content: slides.String(""),
		}
		return slide, true
	}

	if sections.Title == nil {
		sections.Title = slides.String(def.Title)
	}
	slide.Content = sections
	return slide, true
}

// All assembles every catalog slide in order.
func (s *Store) All() []slides.Slide {
	out := make([]slides.Slide, 0, s.catalog.Len())
	for _, def := range s.catalog.Definitions {
		if slide, ok := s.Assemble(def.Number); ok {
			out = append(out, slide)
		}
	}
	return out
}

// Metadata summarises the catalog.
func (s *Store) Metadata() slides.Metadata {
	return s.catalog.Metadata()
}

// Document is the full payload served to clients and written by the export.
func (s *Store) Document() slides.Document {
	meta := s.Metadata()
	return slides.Document{
		Slides:   s.All(),
		Metadata: &meta,
	}
}

// loadSections reads and parses the markdown mapped to number. It reports
// false when there is no mapping or the file cannot be read.
func (s *Store) loadSections(number int) (slides.Sections, bool) {
	slug, ok := s.catalog.FileFor(number)
	if !ok {
		return slides.Sections{}, false
	}

	path := filepath.Join(s.contentDir, slides.FileName(slug))
	log := s.log.With("slide", number, "path", path)

	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("slide content missing, using defaults")
		} else {
			log.Warn("read slide content failed, using defaults", "error", err)
		}
		return slides.Sections{}, false
	}

	sections, err := parser.ParseDocument(src)
	if err != nil {
		log.Warn("front matter ignored", "error", err)
	}
	return sections, true
}
