package docx

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"neoncv/internal/model"
)

var (
	ErrNoRenderer        = errors.New("docx: no renderer for section type")
	ErrDuplicateRenderer = errors.New("docx: renderer already registered")
	ErrInvalidRenderer   = errors.New("docx: invalid renderer")
)

// SectionRenderer turns the items of one section into body paragraphs.
// The heading is written by the builder.
type SectionRenderer interface {
	Render(section model.Section, labels Labels) []Paragraph
}

type RendererFunc func(section model.Section, labels Labels) []Paragraph

func (f RendererFunc) Render(section model.Section, labels Labels) []Paragraph {
	return f(section, labels)
}

// Registry maps section types to renderers. Registration problems surface
// when Register is called, not while a document is being built.
type Registry struct {
	mu        sync.RWMutex
	renderers map[model.SectionType]SectionRenderer
}

func NewRegistry() *Registry {
	return &Registry{renderers: map[model.SectionType]SectionRenderer{}}
}

func (r *Registry) Register(t model.SectionType, sr SectionRenderer) error {
	if strings.TrimSpace(string(t)) == "" {
		return fmt.Errorf("%w: empty section type", ErrInvalidRenderer)
	}
	if sr == nil {
		return fmt.Errorf("%w: nil renderer for %q", ErrInvalidRenderer, t)
	}
	if f, ok := sr.(RendererFunc); ok && f == nil {
		return fmt.Errorf("%w: nil renderer for %q", ErrInvalidRenderer, t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.renderers[t]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRenderer, t)
	}
	r.renderers[t] = sr
	return nil
}

func (r *Registry) Lookup(t model.SectionType) (SectionRenderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sr, ok := r.renderers[t]
	return sr, ok
}

// DefaultRegistry binds a renderer to every built-in section type. Types
// without bespoke rules are bound to the generic renderer explicitly.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	bespoke := map[model.SectionType]RendererFunc{
		model.SectionExperience: renderExperience,
		model.SectionEducation:  renderEducation,
		model.SectionSkills:     renderSkills,
		model.SectionProjects:   renderProjects,
	}
	for _, t := range model.SectionTypes() {
		var sr SectionRenderer = RendererFunc(renderGeneric)
		if f, ok := bespoke[t]; ok {
			sr = f
		}
		// built-in types are distinct, Register cannot fail here
		_ = r.Register(t, sr)
	}
	return r
}

func renderExperience(section model.Section, l Labels) []Paragraph {
	var out []Paragraph
	for _, item := range section.Items {
		exp, ok := item.(model.ExperienceItem)
		if !ok {
			out = append(out, genericItem(item)...)
			continue
		}
		role := orDefault(exp.Role, l.Role)
		company := orDefault(exp.Company, l.Company)
		out = append(out, Paragraph{Runs: []Run{
			{Text: role, Bold: true},
			{Text: " " + l.At + " " + company},
		}})
		if exp.StartDate != "" {
			line := exp.StartDate + " - " + endOrPresent(exp.EndDate, exp.IsCurrent, l)
			if exp.Location != "" {
				line += " | " + exp.Location
			}
			out = append(out, italic(line))
		}
		if exp.Description != "" {
			out = append(out, plain(exp.Description))
		}
		for _, b := range exp.Bullets {
			out = append(out, plain("• "+b))
		}
		if len(exp.TechStack) > 0 {
			out = append(out, plain(l.Technologies+": "+strings.Join(exp.TechStack, ", ")))
		}
	}
	return out
}

func renderEducation(section model.Section, l Labels) []Paragraph {
	var out []Paragraph
	for _, item := range section.Items {
		edu, ok := item.(model.EducationItem)
		if !ok {
			out = append(out, genericItem(item)...)
			continue
		}
		heading := orDefault(edu.Degree, l.Degree)
		if edu.FieldOfStudy != "" {
			heading += " " + l.In + " " + edu.FieldOfStudy
		}
		out = append(out, bold(heading))
		if edu.Institution != "" {
			out = append(out, plain(edu.Institution))
		}
		var info []string
		if edu.StartDate != "" {
			info = append(info, edu.StartDate+" - "+endOrPresent(edu.EndDate, edu.IsCurrent, l))
		}
		if edu.GPA != "" {
			info = append(info, l.GPA+": "+edu.GPA)
		}
		if len(info) > 0 {
			out = append(out, italic(strings.Join(info, " | ")))
		}
	}
	return out
}

func renderSkills(section model.Section, l Labels) []Paragraph {
	var order []string
	byCategory := map[string][]string{}
	for _, item := range section.Items {
		var name, category string
		switch v := item.(type) {
		case model.SkillItem:
			name, category = v.Name, v.Category
		case model.GenericItem:
			name, _ = v.GenericFields()
			category, _ = v["category"].(string)
		default:
			name, _ = item.GenericFields()
		}
		if name == "" {
			continue
		}
		if category == "" {
			category = l.Other
		}
		if _, seen := byCategory[category]; !seen {
			order = append(order, category)
		}
		byCategory[category] = append(byCategory[category], name)
	}

	out := make([]Paragraph, 0, len(order))
	for _, cat := range order {
		out = append(out, Paragraph{Runs: []Run{
			{Text: cat + ": ", Bold: true},
			{Text: strings.Join(byCategory[cat], ", ")},
		}})
	}
	return out
}

func renderProjects(section model.Section, l Labels) []Paragraph {
	var out []Paragraph
	for _, item := range section.Items {
		p, ok := item.(model.ProjectItem)
		if !ok {
			out = append(out, genericItem(item)...)
			continue
		}
		out = append(out, bold(orDefault(p.Title, l.Project)))
		if p.Description != "" {
			out = append(out, plain(p.Description))
		}
		var links []string
		if p.LiveURL != "" {
			links = append(links, l.Live+": "+p.LiveURL)
		}
		if p.GithubURL != "" {
			links = append(links, l.GitHub+": "+p.GithubURL)
		}
		if len(links) > 0 {
			out = append(out, plain(strings.Join(links, " | ")))
		}
		if len(p.TechStack) > 0 {
			out = append(out, plain(l.Technologies+": "+strings.Join(p.TechStack, ", ")))
		}
	}
	return out
}

func renderGeneric(section model.Section, _ Labels) []Paragraph {
	var out []Paragraph
	for _, item := range section.Items {
		out = append(out, genericItem(item)...)
	}
	return out
}

func genericItem(item model.Item) []Paragraph {
	if item == nil {
		return nil
	}
	title, desc := item.GenericFields()
	var out []Paragraph
	if title != "" {
		out = append(out, bold(title))
	}
	if desc != "" {
		out = append(out, plain(desc))
	}
	return out
}

func endOrPresent(end string, current bool, l Labels) string {
	if current || end == "" {
		return l.Present
	}
	return end
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
