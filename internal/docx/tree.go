package docx

import "strings"

type Align string

const (
	AlignLeft   Align = ""
	AlignCenter Align = "center"
)

// Paragraph styles defined in word/styles.xml.
const (
	StyleNormal   = ""
	StyleTitle    = "Title"
	StyleSubtitle = "Subtitle"
	StyleHeading1 = "Heading1"
	StyleHeading2 = "Heading2"
)

// Run is a span of text sharing one formatting. Size is in half-points;
// zero keeps the paragraph style's size.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	Size   int
}

type Paragraph struct {
	Runs         []Run
	Align        Align
	Style        string
	BorderBottom bool
	// SpacingAfter is in twentieths of a point; zero keeps the style default.
	SpacingAfter int
}

// Text concatenates the paragraph's runs.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Document is the word-processor tree produced by the builder, before it
// is packaged.
type Document struct {
	Title      string
	Paragraphs []Paragraph
}

func (d *Document) add(p ...Paragraph) {
	d.Paragraphs = append(d.Paragraphs, p...)
}

// PlainText renders one line per paragraph.
func PlainText(d *Document) string {
	if d == nil {
		return ""
	}
	lines := make([]string, 0, len(d.Paragraphs))
	for _, p := range d.Paragraphs {
		lines = append(lines, p.Text())
	}
	return strings.Join(lines, "\n")
}

func plain(text string) Paragraph {
	return Paragraph{Runs: []Run{{Text: text}}}
}

func bold(text string) Paragraph {
	return Paragraph{Runs: []Run{{Text: text, Bold: true}}}
}

func italic(text string) Paragraph {
	return Paragraph{Runs: []Run{{Text: text, Italic: true}}}
}
