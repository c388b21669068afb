package slides

// Definition is one entry of the compiled-in slide catalog.
type Definition struct {
	Number int    `yaml:"number"` // 1-based position, contiguous across the catalog
	ID     string `yaml:"id"`     // Stable slug
	Title  string `yaml:"title"`
}

// Sections holds the named parts of a slide's markdown body.
// A nil field means the section was not present.
type Sections struct {
	Title             *string `json:"title,omitempty"`
	Content           *string `json:"content,omitempty"`
	SpeakerNotes      *string `json:"speakerNotes,omitempty"`
	VisualDescription *string `json:"visualDescription,omitempty"`
	References        *string `json:"references,omitempty"`
}

// Slide is a catalog definition joined with its parsed content.
type Slide struct {
	ID      string   `json:"id"`
	Number  int      `json:"number"`
	Title   string   `json:"title"`
	Content Sections `json:"content"`
	Part    string   `json:"part"`
	Persona []string `json:"persona"`
}

// Band is a named, inclusive range of slide numbers.
type Band struct {
	Name  string `json:"name" yaml:"name"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
}

// Contains reports whether number falls inside the band.
func (b Band) Contains(number int) bool {
	return number >= b.Start && number <= b.End
}

// Metadata summarises an assembled deck.
type Metadata struct {
	TotalSlides int    `json:"totalSlides"`
	Parts       []Band `json:"parts"`
}

// Document is the body served by the slide endpoint and written by the
// static export. Both must stay byte-compatible.
type Document struct {
	Slides   []Slide   `json:"slides"`
	Metadata *Metadata `json:"metadata"`
}

// DefaultPersona is the only audience value ever assigned.
var DefaultPersona = []string{"all"}

// Text dereferences an optional section, returning "" when absent.
func Text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// String returns a pointer to s, for building Sections literals.
func String(s string) *string {
	return &s
}

// EndpointPath is the relative path clients fetch the Document from, both
// from the live server and from a static host.
const EndpointPath = "/data/slides.json"
