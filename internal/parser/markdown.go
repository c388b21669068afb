package parser

import (
	"bytes"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/slidedeck/internal/slides"
)

// Section labels recognised in slide markdown. A chunk matches when its
// heading text begins with the label.
const (
	LabelSlideContent      = "Slide Content"
	LabelSpeakerNotes      = "Speaker Notes"
	LabelVisualDescription = "Visual Description"
	LabelReferences        = "References"
)

// ParseDocument strips front matter from a slide file and parses the body.
// Front matter is accepted but not used. If it cannot be decoded the whole
// source is parsed as markdown; the returned error only reports that.
func ParseDocument(src []byte) (slides.Sections, error) {
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return ParseSections(string(src)), err
	}
	return ParseSections(string(body)), nil
}

// ParseSections splits a markdown body on "## " headings and fills the named
// sections. Unknown headings are skipped and absent sections stay nil.
func ParseSections(body string) slides.Sections {
	var out slides.Sections
	for _, c := range splitChunks(body) {
		switch {
		case strings.HasPrefix(c.label, LabelSlideContent):
			title, content := slideContent(c.lines)
			out.Title = title
			out.Content = &content
		case strings.HasPrefix(c.label, LabelSpeakerNotes):
			out.SpeakerNotes = untilDivider(c.lines)
		case strings.HasPrefix(c.label, LabelVisualDescription):
			out.VisualDescription = untilDivider(c.lines)
		case strings.HasPrefix(c.label, LabelReferences):
			out.References = untilDivider(c.lines)
		}
	}
	return out
}

type chunk struct {
	label string
	lines []string
}

// splitChunks groups lines under each "## " heading. Text before the first
// heading is dropped.
func splitChunks(body string) []chunk {
	body = strings.ReplaceAll(body, "\r\n", "\n")

	var chunks []chunk
	var cur *chunk
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "## ") {
			chunks = append(chunks, chunk{label: strings.TrimSpace(line[3:])})
			cur = &chunks[len(chunks)-1]
			continue
		}
		if cur != nil {
			cur.lines = append(cur.lines, line)
		}
	}
	return chunks
}

// slideContent prefers a "### " sub-heading as the title with the text below
// it as content. Without one, the whole chunk is the content.
func slideContent(lines []string) (*string, string) {
	for i, line := range lines {
		if strings.HasPrefix(line, "### ") {
			title := strings.TrimSpace(line[4:])
			return &title, *untilDivider(lines[i+1:])
		}
	}

	// Without a sub-heading the whole section is content, minus the
	// trailing divider that separates it from the next section.
	end := len(lines)
	for end > 0 {
		t := strings.TrimSpace(lines[end-1])
		if t != "" && !isDivider(t) {
			break
		}
		end--
	}
	return nil, strings.TrimSpace(strings.Join(lines[:end], "\n"))
}

func untilDivider(lines []string) *string {
	end := len(lines)
	for i, line := range lines {
		if isDivider(strings.TrimSpace(line)) {
			end = i
			break
		}
	}
	s := strings.TrimSpace(strings.Join(lines[:end], "\n"))
	return &s
}

// isDivider matches the exact "---" rule the slide files use between
// sections. Other thematic breaks ("----", "***") stay part of the text.
func isDivider(line string) bool {
	return line == "---"
}

// RenderHTML converts a markdown fragment to HTML.
func RenderHTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
