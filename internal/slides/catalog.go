package slides

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// FileMapping maps a slide number to the slug of its legacy markdown file.
// Numbers without an entry have no markdown source.
type FileMapping map[int]string

// FileName returns the on-disk name for a legacy slug.
func FileName(slug string) string {
	return "slide-" + slug + ".md"
}

// Catalog is the ordered set of slide definitions plus the policy tables
// (file mapping, part bands) that go with them.
type Catalog struct {
	Definitions []Definition `yaml:"slides"`
	Files       FileMapping  `yaml:"files"`
	Parts       []Band       `yaml:"parts"`

	byNumber map[int]Definition
}

// NewCatalog validates and indexes a catalog.
func NewCatalog(defs []Definition, files FileMapping, parts []Band) (*Catalog, error) {
	c := &Catalog{
		Definitions: append([]Definition(nil), defs...),
		Files:       FileMapping{},
		Parts:       append([]Band(nil), parts...),
	}
	for n, slug := range files {
		c.Files[n] = slug
	}
	sort.Slice(c.Definitions, func(i, j int) bool { return c.Definitions[i].Number < c.Definitions[j].Number })
	sort.Slice(c.Parts, func(i, j int) bool { return c.Parts[i].Start < c.Parts[j].Start })
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.byNumber = make(map[int]Definition, len(c.Definitions))
	for _, d := range c.Definitions {
		c.byNumber[d.Number] = d
	}
	return c, nil
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// ParseCatalog decodes a YAML catalog and validates it.
func ParseCatalog(src []byte) (*Catalog, error) {
	var raw Catalog
	if err := yaml.Unmarshal(src, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewCatalog(raw.Definitions, raw.Files, raw.Parts)
}

// Validate checks that numbers are unique and contiguous from 1, that every
// file mapping references a defined number, and that the part bands cover
// 1..N exactly once. An empty catalog has no bands.
func (c *Catalog) Validate() error {
	seen := make(map[int]bool, len(c.Definitions))
	for _, d := range c.Definitions {
		if seen[d.Number] {
			return fmt.Errorf("duplicate slide number %d", d.Number)
		}
		seen[d.Number] = true
		if d.ID == "" {
			return fmt.Errorf("slide %d has no id", d.Number)
		}
	}
	n := len(c.Definitions)
	for i := 1; i <= n; i++ {
		if !seen[i] {
			return fmt.Errorf("slide numbers must be contiguous from 1 to %d, missing %d", n, i)
		}
	}

	for num, slug := range c.Files {
		if !seen[num] {
			return fmt.Errorf("file mapping %q references unknown slide %d", slug, num)
		}
		if slug == "" {
			return fmt.Errorf("file mapping for slide %d is empty", num)
		}
	}

	next := 1
	for _, b := range c.Parts {
		if b.Name == "" {
			return fmt.Errorf("part band %d-%d has no name", b.Start, b.End)
		}
		if b.Start != next {
			return fmt.Errorf("part %q starts at %d, expected %d", b.Name, b.Start, next)
		}
		if b.End < b.Start {
			return fmt.Errorf("part %q ends before it starts", b.Name)
		}
		next = b.End + 1
	}
	if next != n+1 {
		return fmt.Errorf("part bands cover 1..%d, catalog has %d slides", next-1, n)
	}
	return nil
}

// Len returns the number of slides in the catalog.
func (c *Catalog) Len() int {
	return len(c.Definitions)
}

// Definition looks up the definition for a slide number.
func (c *Catalog) Definition(number int) (Definition, bool) {
	d, ok := c.byNumber[number]
	return d, ok
}

// FileFor returns the legacy slug mapped to number, if any.
func (c *Catalog) FileFor(number int) (string, bool) {
	slug, ok := c.Files[number]
	return slug, ok
}

// PartFor returns the name of the band containing number, or "" when the
// number is outside every band.
func (c *Catalog) PartFor(number int) string {
	for _, b := range c.Parts {
		if b.Contains(number) {
			return b.Name
		}
	}
	return ""
}

// Metadata builds the read-only deck summary.
func (c *Catalog) Metadata() Metadata {
	return Metadata{
		TotalSlides: len(c.Definitions),
		Parts:       append([]Band(nil), c.Parts...),
	}
}
