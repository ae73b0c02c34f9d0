// Package layout renders a CV document into the plain built-in HTML page
// used when a caller has no pre-rendered template. The CV root node is
// #cv.
package layout

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"neoncv/internal/docx"
	"neoncv/internal/model"
)

// RootSelector names the node the rasterizer captures.
const RootSelector = "#cv"

//go:embed assets/template.html assets/style.css
var assets embed.FS

var funcs = template.FuncMap{
	"join":  strings.Join,
	"upper": strings.ToUpper,
}

var pageTemplate = template.Must(template.New("template.html").Funcs(funcs).ParseFS(assets, "assets/template.html"))

type Options struct {
	// CSS replaces the embedded stylesheet when non-empty.
	CSS string
}

type link struct {
	Label string
	URL   string
}

type entry struct {
	Heading    string
	Subheading string
	Meta       string
	Body       string
	Bullets    []string
	Tags       []string
	Links      []link
}

type section struct {
	ID      string
	Title   string
	Type    string
	Entries []entry
}

type page struct {
	Lang         string
	Name         string
	Headline     string
	AvatarURL    string
	Contact      []string
	Links        []link
	Summary      string
	SummaryTitle string
	Sections     []section
}

// Render executes the built-in template with the embedded stylesheet.
func Render(doc model.Document) (string, error) {
	return RenderWith(doc, Options{})
}

func RenderWith(doc model.Document, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, buildPage(doc)); err != nil {
		return "", fmt.Errorf("layout: execute template: %w", err)
	}
	html := buf.String()

	css := opts.CSS
	if css == "" {
		b, err := assets.ReadFile("assets/style.css")
		if err != nil {
			return "", fmt.Errorf("layout: read stylesheet: %w", err)
		}
		css = string(b)
	}
	// inject stylesheet at top of head so the page is self-contained
	cssBlock := "<style>" + css + "</style>"
	if strings.Contains(strings.ToLower(html), "<head>") {
		html = strings.Replace(html, "<head>", "<head>"+cssBlock, 1)
	} else {
		html = cssBlock + html
	}
	return html, nil
}

func buildPage(doc model.Document) page {
	l := docx.LabelsFor(doc.Meta.Language)
	info := doc.PersonalInfo
	p := page{
		Lang:         langOrDefault(doc.Meta.Language),
		Name:         info.FullName,
		Headline:     info.Headline,
		AvatarURL:    info.AvatarURL,
		Summary:      info.Summary,
		SummaryTitle: l.ProfessionalSummary,
	}
	if p.Name == "" {
		p.Name = l.Name
	}
	for _, c := range []string{info.Email, info.Phone, info.Location} {
		if c != "" {
			p.Contact = append(p.Contact, c)
		}
	}
	for _, u := range []struct{ label, url string }{
		{"Website", info.Website}, {"LinkedIn", info.LinkedIn}, {"GitHub", info.GitHub}, {"Twitter", info.Twitter},
	} {
		if u.url != "" {
			p.Links = append(p.Links, link{Label: u.label, URL: u.url})
		}
	}
	for _, cl := range info.CustomLinks {
		if cl.URL == "" {
			continue
		}
		label := cl.Label
		if label == "" {
			label = cl.URL
		}
		p.Links = append(p.Links, link{Label: label, URL: cl.URL})
	}

	for _, s := range model.VisibleSections(doc.Sections) {
		p.Sections = append(p.Sections, section{
			ID:      s.ID,
			Title:   s.Title,
			Type:    string(s.Type),
			Entries: entries(s, l),
		})
	}
	return p
}

func entries(s model.Section, l docx.Labels) []entry {
	if s.Type == model.SectionSkills {
		return skillEntries(s, l)
	}
	out := make([]entry, 0, len(s.Items))
	for _, item := range s.Items {
		out = append(out, itemEntry(item, l))
	}
	return out
}

func itemEntry(item model.Item, l docx.Labels) entry {
	switch v := item.(type) {
	case model.ExperienceItem:
		e := entry{Heading: v.Role, Subheading: v.Company, Body: v.Description, Bullets: v.Bullets, Tags: v.TechStack}
		e.Meta = dateRange(v.StartDate, v.EndDate, v.IsCurrent, l)
		if v.Location != "" {
			e.Meta = joinNonEmpty(" | ", e.Meta, v.Location)
		}
		return e
	case model.EducationItem:
		heading := v.Degree
		if v.FieldOfStudy != "" {
			heading = joinNonEmpty(" "+l.In+" ", v.Degree, v.FieldOfStudy)
		}
		meta := dateRange(v.StartDate, v.EndDate, v.IsCurrent, l)
		if v.GPA != "" {
			meta = joinNonEmpty(" | ", meta, l.GPA+": "+v.GPA)
		}
		return entry{Heading: heading, Subheading: v.Institution, Meta: meta, Bullets: v.Achievements}
	case model.ProjectItem:
		e := entry{Heading: v.Title, Body: v.Description, Tags: v.TechStack}
		if v.LiveURL != "" {
			e.Links = append(e.Links, link{Label: l.Live, URL: v.LiveURL})
		}
		if v.GithubURL != "" {
			e.Links = append(e.Links, link{Label: l.GitHub, URL: v.GithubURL})
		}
		return e
	case model.CertificationItem:
		e := entry{Heading: v.Name, Subheading: v.Issuer, Meta: v.Date, Body: v.Description}
		if v.CredentialURL != "" {
			e.Links = []link{{Label: v.CredentialURL, URL: v.CredentialURL}}
		}
		return e
	case model.LanguageItem:
		return entry{Heading: v.Name, Meta: string(v.Proficiency)}
	case model.AwardItem:
		return entry{Heading: v.Title, Subheading: v.Issuer, Meta: v.Date, Body: v.Description}
	case model.VolunteerItem:
		return entry{Heading: v.Role, Subheading: v.Organization, Meta: dateRange(v.StartDate, v.EndDate, false, l), Body: v.Description}
	case model.ReferenceItem:
		return entry{Heading: v.Name, Subheading: joinNonEmpty(", ", v.Title, v.Company), Meta: joinNonEmpty(" | ", v.Email, v.Phone), Body: v.Relationship}
	case model.PublicationItem:
		e := entry{Heading: v.Title, Subheading: v.Publisher, Meta: v.Date, Body: v.Description}
		if v.URL != "" {
			e.Links = []link{{Label: v.URL, URL: v.URL}}
		}
		return e
	case model.CustomItem:
		return entry{Heading: v.Title, Subheading: v.Subtitle, Meta: v.Date, Body: v.Content}
	default:
		title, desc := item.GenericFields()
		return entry{Heading: title, Body: desc}
	}
}

func skillEntries(s model.Section, l docx.Labels) []entry {
	var order []string
	groups := map[string][]string{}
	for _, item := range s.Items {
		name, _ := item.GenericFields()
		category := ""
		if sk, ok := item.(model.SkillItem); ok {
			category = sk.Category
		}
		if name == "" {
			continue
		}
		if category == "" {
			category = l.Other
		}
		if _, ok := groups[category]; !ok {
			order = append(order, category)
		}
		groups[category] = append(groups[category], name)
	}
	out := make([]entry, 0, len(order))
	for _, c := range order {
		out = append(out, entry{Heading: c, Tags: groups[c]})
	}
	return out
}

func dateRange(start, end string, current bool, l docx.Labels) string {
	if start == "" {
		return ""
	}
	if current || end == "" {
		end = l.Present
	}
	return start + " - " + end
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func langOrDefault(lang string) string {
	if lang == "" {
		return "en"
	}
	return lang
}
