// Package docx maps a CV document to a word-processor paragraph tree and
// packages it as an OOXML (.docx) file.
package docx

import (
	"fmt"
	"net/url"
	"strings"

	"neoncv/internal/download"
	"neoncv/internal/model"

	"golang.org/x/net/publicsuffix"
)

const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type Options struct {
	Filename string
	// Language selects the label set, e.g. meta.language.
	Language string
	// Strict turns sections without a registered renderer into an
	// ErrNoRenderer error instead of rendering them generically.
	Strict   bool
	Registry *Registry
	Labels   *Labels
}

type Builder struct {
	registry *Registry
	labels   Labels
	strict   bool
}

func NewBuilder(opts Options) *Builder {
	b := &Builder{registry: opts.Registry, labels: LabelsFor(opts.Language), strict: opts.Strict}
	if b.registry == nil {
		b.registry = DefaultRegistry()
	}
	if opts.Labels != nil {
		b.labels = *opts.Labels
	}
	return b
}

// BuildDocumentTree builds the paragraph tree with English labels and the
// default registry. It never fails: missing optional fields are skipped or
// replaced by placeholders.
func BuildDocumentTree(info model.PersonalInfo, sections []model.Section) *Document {
	doc, _ := NewBuilder(Options{}).Tree(info, sections)
	return doc
}

// Build builds the tree and packages it. The inputs are only read.
func Build(info model.PersonalInfo, sections []model.Section, opts Options) (download.Artifact, error) {
	doc, err := NewBuilder(opts).Tree(info, sections)
	if err != nil {
		return download.Artifact{}, err
	}
	data, err := Package(doc)
	if err != nil {
		return download.Artifact{}, err
	}
	return download.Artifact{
		Filename:    download.WithExtension(opts.Filename, ".docx"),
		ContentType: ContentType,
		Data:        data,
	}, nil
}

func (b *Builder) Tree(info model.PersonalInfo, sections []model.Section) (*Document, error) {
	l := b.labels
	doc := &Document{Title: orDefault(info.FullName, l.Name)}

	doc.add(Paragraph{
		Style:        StyleTitle,
		Align:        AlignCenter,
		SpacingAfter: 60,
		Runs:         []Run{{Text: orDefault(info.FullName, l.Name), Bold: true, Size: 36}},
	})
	if info.Headline != "" {
		doc.add(Paragraph{
			Style: StyleSubtitle,
			Align: AlignCenter,
			Runs:  []Run{{Text: info.Headline, Italic: true, Size: 24}},
		})
	}
	if contact := joinNonEmpty(" | ", info.Email, info.Phone, info.Location); contact != "" {
		doc.add(Paragraph{Align: AlignCenter, Runs: []Run{{Text: contact}}})
	}
	if links := linksLine(info); links != "" {
		doc.add(Paragraph{Align: AlignCenter, Runs: []Run{{Text: links, Size: 18}}})
	}
	if info.Summary != "" {
		doc.add(Paragraph{
			Style: StyleHeading1,
			Runs:  []Run{{Text: l.ProfessionalSummary, Bold: true}},
		}, plain(info.Summary))
	}

	for _, s := range model.VisibleSections(sections) {
		sr, ok := b.registry.Lookup(s.Type)
		if !ok {
			if b.strict {
				return nil, fmt.Errorf("%w: section %q has type %q", ErrNoRenderer, s.ID, s.Type)
			}
			sr = RendererFunc(renderGeneric)
		}
		doc.add(Paragraph{
			Style:        StyleHeading2,
			BorderBottom: true,
			SpacingAfter: 120,
			Runs:         []Run{{Text: strings.ToUpper(s.Title), Bold: true, Size: 24}},
		})
		doc.add(sr.Render(s, l)...)
	}
	return doc, nil
}

func linksLine(info model.PersonalInfo) string {
	parts := []string{info.Website, info.LinkedIn, info.GitHub, info.Twitter}
	for _, cl := range info.CustomLinks {
		if cl.URL == "" {
			continue
		}
		label := cl.Label
		if label == "" {
			label = urlLabel(cl.URL)
		}
		parts = append(parts, label+": "+cl.URL)
	}
	return joinNonEmpty(" | ", parts...)
}

// urlLabel names a link by its registrable domain, e.g. "medium.com" for
// https://blog.medium.com/x.
func urlLabel(raw string) string {
	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Hostname() == "" {
		return "link"
	}
	host := parsed.Hostname()
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return strings.TrimPrefix(etld, "www.")
	}
	return strings.TrimPrefix(host, "www.")
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
