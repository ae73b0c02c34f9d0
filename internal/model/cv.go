package model

import (
	"encoding/json"
	"sort"
)

// Go models for the CV document shared by every exporter and template.

type CustomLink struct {
	Label string `json:"label,omitempty"`
	URL   string `json:"url"`
}

type PersonalInfo struct {
	FullName    string       `json:"fullName,omitempty"`
	Headline    string       `json:"headline,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Location    string       `json:"location,omitempty"`
	Website     string       `json:"website,omitempty"`
	LinkedIn    string       `json:"linkedin,omitempty"`
	GitHub      string       `json:"github,omitempty"`
	Twitter     string       `json:"twitter,omitempty"`
	CustomLinks []CustomLink `json:"customLinks"`
	AvatarURL   string       `json:"avatarUrl,omitempty"`
}

type SectionType string

const (
	SectionExperience     SectionType = "experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionProjects       SectionType = "projects"
	SectionCertifications SectionType = "certifications"
	SectionLanguages      SectionType = "languages"
	SectionAwards         SectionType = "awards"
	SectionVolunteer      SectionType = "volunteer"
	SectionReferences     SectionType = "references"
	SectionPublications   SectionType = "publications"
	SectionInterests      SectionType = "interests"
	SectionAbout          SectionType = "about"
	SectionCustom         SectionType = "custom"
)

// SectionTypes lists every section type with a known item shape.
func SectionTypes() []SectionType {
	return []SectionType{
		SectionExperience, SectionEducation, SectionSkills, SectionProjects,
		SectionCertifications, SectionLanguages, SectionAwards, SectionVolunteer,
		SectionReferences, SectionPublications, SectionInterests, SectionAbout, SectionCustom,
	}
}

// Known reports whether t has a dedicated item shape.
func (t SectionType) Known() bool {
	for _, k := range SectionTypes() {
		if k == t {
			return true
		}
	}
	return false
}

// Section is an ordered, typed container. Items always carry the shape
// selected by Type; decoding enforces this (see section_json.go).
type Section struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Type      SectionType `json:"type"`
	Order     int         `json:"order"`
	IsVisible bool        `json:"isVisible"`
	Items     []Item      `json:"items"`
}

// Meta is document-level metadata. Only Title, Language and TemplateID
// travel in the export envelope; anything else lands in Extra.
type Meta struct {
	Title      string                 `json:"title,omitempty"`
	Language   string                 `json:"language,omitempty"`
	TemplateID string                 `json:"templateId,omitempty"`
	Extra      map[string]interface{} `json:"-"`
}

func (m *Meta) UnmarshalJSON(data []byte) error {
	type plain Meta
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var all map[string]interface{}
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	// preserve other keys
	for k, v := range all {
		if k == "title" || k == "language" || k == "templateId" {
			continue
		}
		if p.Extra == nil {
			p.Extra = map[string]interface{}{}
		}
		p.Extra[k] = v
	}
	*m = Meta(p)
	return nil
}

// Whitelisted drops every field except title, language and templateId.
func (m Meta) Whitelisted() Meta {
	return Meta{Title: m.Title, Language: m.Language, TemplateID: m.TemplateID}
}

// Document is the in-memory CV: metadata, personal info and sections.
type Document struct {
	Meta         Meta         `json:"meta"`
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Sections     []Section    `json:"sections"`
}

// ExportData is the versioned JSON backup envelope.
type ExportData struct {
	Version      string       `json:"version"`
	ExportedAt   string       `json:"exportedAt"`
	Meta         Meta         `json:"meta"`
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Sections     []Section    `json:"sections"`
}

// Document converts an imported envelope back into a document.
func (e *ExportData) Document() Document {
	return Document{Meta: e.Meta, PersonalInfo: e.PersonalInfo, Sections: e.Sections}
}

// VisibleSections returns the sections that take part in rendering, sorted
// by Order ascending. Sections sharing an Order keep their input order.
// The input slice is not modified.
func VisibleSections(sections []Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		if s.IsVisible {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
