package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"neoncv/internal/model"
)

func readDocumentXML(t *testing.T, docxBytes []byte) string {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
	if err != nil {
		t.Fatalf("open docx: %v", err)
	}
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				t.Fatal(err)
			}
			defer rc.Close()
			b, err := io.ReadAll(rc)
			if err != nil {
				t.Fatal(err)
			}
			return string(b)
		}
	}
	t.Fatal("word/document.xml missing")
	return ""
}

func assertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected to contain %q in:\n%s", needle, haystack)
	}
}

func assertNotContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Fatalf("expected to not contain %q in:\n%s", needle, haystack)
	}
}

func TestBuildExcludesHiddenSections(t *testing.T) {
	sections := []model.Section{
		{ID: "s", Title: "Skills", Type: model.SectionSkills, Order: 1, IsVisible: true,
			Items: []model.Item{model.SkillItem{Name: "Go"}}},
		{ID: "r", Title: "References", Type: model.SectionReferences, Order: 2, IsVisible: false,
			Items: []model.Item{model.ReferenceItem{Name: "Grace"}}},
	}
	art, err := Build(model.PersonalInfo{FullName: "Ada"}, sections, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	text, err := ExtractText(art.Data)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	assertContains(t, text, "SKILLS")
	assertNotContains(t, text, "REFERENCES")
	assertNotContains(t, text, "Grace")

	if art.Filename != "cv.docx" || art.ContentType != ContentType {
		t.Errorf("artifact = %q %q", art.Filename, art.ContentType)
	}
}

func TestBuildOrdersSections(t *testing.T) {
	sections := []model.Section{
		{ID: "c", Title: "Third", Type: model.SectionInterests, Order: 3, IsVisible: true},
		{ID: "a", Title: "First", Type: model.SectionInterests, Order: 1, IsVisible: true},
		{ID: "b", Title: "Second", Type: model.SectionInterests, Order: 2, IsVisible: true},
	}
	text := PlainText(BuildDocumentTree(model.PersonalInfo{}, sections))
	first := strings.Index(text, "FIRST")
	second := strings.Index(text, "SECOND")
	third := strings.Index(text, "THIRD")
	if first < 0 || second < 0 || third < 0 || !(first < second && second < third) {
		t.Fatalf("headings out of order: first=%d second=%d third=%d\n%s", first, second, third, text)
	}
	if sections[0].ID != "c" {
		t.Errorf("input sections were reordered")
	}
}

func TestSkillsGroupedByFirstOccurrence(t *testing.T) {
	sections := []model.Section{{
		ID: "s", Title: "Skills", Type: model.SectionSkills, Order: 1, IsVisible: true,
		Items: []model.Item{
			model.SkillItem{Name: "Go", Category: "Backend"},
			model.SkillItem{Name: "React", Category: "Frontend"},
			model.SkillItem{Name: "Rust", Category: "Backend"},
			model.SkillItem{Name: "Figma"},
		},
	}}
	doc := BuildDocumentTree(model.PersonalInfo{}, sections)
	var lines []string
	for _, p := range doc.Paragraphs {
		if strings.Contains(p.Text(), ": ") {
			lines = append(lines, p.Text())
		}
	}
	want := []string{"Backend: Go, Rust", "Frontend: React", "Other: Figma"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("skill lines = %q, want %q", lines, want)
	}
}

func TestExperienceMissingFields(t *testing.T) {
	sections := []model.Section{{
		ID: "e", Title: "Experience", Type: model.SectionExperience, Order: 1, IsVisible: true,
		Items: []model.Item{model.ExperienceItem{Company: "Acme"}},
	}}
	doc := BuildDocumentTree(model.PersonalInfo{}, sections)
	text := PlainText(doc)
	assertContains(t, text, "Role at Acme")
	assertNotContains(t, text, " - ")
	assertNotContains(t, text, "Technologies")

	for _, p := range doc.Paragraphs {
		if p.Text() == "Role at Acme" && !p.Runs[0].Bold {
			t.Errorf("role run should be bold")
		}
	}
}

func TestExperienceFullItem(t *testing.T) {
	sections := []model.Section{{
		ID: "e", Title: "Experience", Type: model.SectionExperience, Order: 1, IsVisible: true,
		Items: []model.Item{
			model.ExperienceItem{Company: "Acme", Role: "Engineer", StartDate: "2020", IsCurrent: true, Location: "Lisbon",
				Description: "Built things", Bullets: []string{"Cut latency"}, TechStack: []string{"Go", "Postgres"}},
			model.ExperienceItem{Company: "Initech", Role: "Intern", StartDate: "2018", EndDate: "2019"},
		},
	}}
	lines := strings.Split(PlainText(BuildDocumentTree(model.PersonalInfo{}, sections)), "\n")
	want := []string{
		"Your Name",
		"EXPERIENCE",
		"Engineer at Acme",
		"2020 - Present | Lisbon",
		"Built things",
		"• Cut latency",
		"Technologies: Go, Postgres",
		"Intern at Initech",
		"2018 - 2019",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("lines:\n%s\nwant:\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
}

func TestEducationAndProjects(t *testing.T) {
	sections := []model.Section{
		{ID: "ed", Title: "Education", Type: model.SectionEducation, Order: 1, IsVisible: true,
			Items: []model.Item{
				model.EducationItem{Institution: "MIT", Degree: "BSc", FieldOfStudy: "CS", StartDate: "2010", EndDate: "2014", GPA: "3.9"},
				model.EducationItem{Institution: "Online"},
			}},
		{ID: "pr", Title: "Projects", Type: model.SectionProjects, Order: 2, IsVisible: true,
			Items: []model.Item{
				model.ProjectItem{Title: "neoncv", GithubURL: "https://github.com/x/neoncv", TechStack: []string{"Go"}},
				model.ProjectItem{LiveURL: "https://x.dev"},
			}},
	}
	text := PlainText(BuildDocumentTree(model.PersonalInfo{}, sections))
	for _, want := range []string{
		"BSc in CS\nMIT\n2010 - 2014 | GPA: 3.9",
		"Degree\nOnline\nPROJECTS",
		"neoncv\nGitHub: https://github.com/x/neoncv\nTechnologies: Go",
		"Project\nLive: https://x.dev",
	} {
		assertContains(t, text, want)
	}
}

func TestGenericSections(t *testing.T) {
	sections := []model.Section{
		{ID: "v", Title: "Volunteer", Type: model.SectionVolunteer, Order: 1, IsVisible: true,
			Items: []model.Item{model.VolunteerItem{Organization: "Red Cross", Description: "First aid"}}},
		{ID: "h", Title: "Hobbies", Type: "hobbies", Order: 2, IsVisible: true,
			Items: []model.Item{model.GenericItem{"name": "Chess", "content": "Club captain"}}},
	}
	text := PlainText(BuildDocumentTree(model.PersonalInfo{}, sections))
	assertContains(t, text, "VOLUNTEER\nRed Cross\nFirst aid")
	assertContains(t, text, "HOBBIES\nChess\nClub captain")
}

func TestHeaderLines(t *testing.T) {
	info := model.PersonalInfo{
		FullName: "Ada Lovelace",
		Headline: "Analyst",
		Email:    "ada@example.com",
		Location: "London",
		Summary:  "Poetical science.",
		GitHub:   "https://github.com/ada",
		CustomLinks: []model.CustomLink{
			{URL: "https://www.blog.medium.com/ada"},
			{Label: "Talk", URL: "https://youtu.be/x"},
		},
	}
	doc := BuildDocumentTree(info, nil)
	lines := strings.Split(PlainText(doc), "\n")
	want := []string{
		"Ada Lovelace",
		"Analyst",
		"ada@example.com | London",
		"https://github.com/ada | medium.com: https://www.blog.medium.com/ada | Talk: https://youtu.be/x",
		"Professional Summary",
		"Poetical science.",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("lines:\n%s\nwant:\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
	if !doc.Paragraphs[0].Runs[0].Bold || doc.Paragraphs[0].Align != AlignCenter {
		t.Errorf("name paragraph should be bold and centered")
	}
	if !doc.Paragraphs[1].Runs[0].Italic {
		t.Errorf("headline should be italic")
	}
}

func TestEmptyHeaderOmitsOptionalLines(t *testing.T) {
	doc := BuildDocumentTree(model.PersonalInfo{}, nil)
	if len(doc.Paragraphs) != 1 || doc.Paragraphs[0].Text() != "Your Name" {
		t.Errorf("paragraphs = %q", PlainText(doc))
	}
}

func TestLocalizedLabels(t *testing.T) {
	sections := []model.Section{{
		ID: "e", Title: "Experiência", Type: model.SectionExperience, Order: 1, IsVisible: true,
		Items: []model.Item{model.ExperienceItem{Company: "Acme", StartDate: "2020"}},
	}}
	doc, err := NewBuilder(Options{Language: "pt-BR"}).Tree(model.PersonalInfo{Summary: "Olá"}, sections)
	if err != nil {
		t.Fatal(err)
	}
	text := PlainText(doc)
	assertContains(t, text, "Resumo Profissional")
	assertContains(t, text, "Cargo na Acme")
	assertContains(t, text, "2020 - Atual")
	assertContains(t, text, "EXPERIÊNCIA")

	if LabelsFor("xx").Present != "Present" {
		t.Errorf("unknown language should fall back to English")
	}
}

func TestSectionHeadingHasBorder(t *testing.T) {
	sections := []model.Section{{ID: "a", Title: "Awards", Type: model.SectionAwards, Order: 1, IsVisible: true}}
	art, err := Build(model.PersonalInfo{}, sections, Options{Filename: "ada"})
	if err != nil {
		t.Fatal(err)
	}
	xmlText := readDocumentXML(t, art.Data)
	assertContains(t, xmlText, `<w:pBdr><w:bottom w:val="single"`)
	assertContains(t, xmlText, `<w:pgMar w:top="1080" w:right="1080" w:bottom="1080" w:left="1080"`)
	assertContains(t, xmlText, `<w:pStyle w:val="Heading2"></w:pStyle>`)
	if art.Filename != "ada.docx" {
		t.Errorf("filename = %q", art.Filename)
	}
}

func TestPackageContainsParts(t *testing.T) {
	data, err := Package(BuildDocumentTree(model.PersonalInfo{FullName: "A & B <C>"}, nil))
	if err != nil {
		t.Fatal(err)
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]bool{}
	for _, f := range reader.File {
		got[f.Name] = true
	}
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml",
		"word/_rels/document.xml.rels", "docProps/core.xml", "docProps/app.xml"} {
		if !got[name] {
			t.Errorf("missing part %s", name)
		}
	}
	text, err := ExtractText(data)
	if err != nil {
		t.Fatal(err)
	}
	if text != "A & B <C>" {
		t.Errorf("text = %q", text)
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	noop := RendererFunc(func(model.Section, Labels) []Paragraph { return nil })

	if err := r.Register("", noop); !errors.Is(err, ErrInvalidRenderer) {
		t.Errorf("empty type err = %v", err)
	}
	if err := r.Register("x", nil); !errors.Is(err, ErrInvalidRenderer) {
		t.Errorf("nil renderer err = %v", err)
	}
	if err := r.Register("x", RendererFunc(nil)); !errors.Is(err, ErrInvalidRenderer) {
		t.Errorf("nil func err = %v", err)
	}
	if err := r.Register("x", noop); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register("x", noop); !errors.Is(err, ErrDuplicateRenderer) {
		t.Errorf("duplicate err = %v", err)
	}
}

func TestDefaultRegistryCoversBuiltins(t *testing.T) {
	r := DefaultRegistry()
	for _, st := range model.SectionTypes() {
		if _, ok := r.Lookup(st); !ok {
			t.Errorf("no renderer for %s", st)
		}
	}
	if err := r.Register(model.SectionSkills, RendererFunc(renderGeneric)); !errors.Is(err, ErrDuplicateRenderer) {
		t.Errorf("overriding a built-in should fail, err = %v", err)
	}
}

func TestStrictModeRejectsUnknownTypes(t *testing.T) {
	sections := []model.Section{{ID: "h", Title: "Hobbies", Type: "hobbies", Order: 1, IsVisible: true}}

	_, err := Build(model.PersonalInfo{}, sections, Options{Strict: true})
	if !errors.Is(err, ErrNoRenderer) {
		t.Fatalf("strict build err = %v", err)
	}

	hidden := []model.Section{{ID: "h", Title: "Hobbies", Type: "hobbies", Order: 1, IsVisible: false}}
	if _, err := Build(model.PersonalInfo{}, hidden, Options{Strict: true}); err != nil {
		t.Errorf("hidden unknown section should not fail: %v", err)
	}

	reg := DefaultRegistry()
	if err := reg.Register("hobbies", RendererFunc(func(s model.Section, _ Labels) []Paragraph {
		return []Paragraph{plain("custom hobbies body")}
	})); err != nil {
		t.Fatal(err)
	}
	doc, err := NewBuilder(Options{Strict: true, Registry: reg}).Tree(model.PersonalInfo{}, sections)
	if err != nil {
		t.Fatalf("registered type failed: %v", err)
	}
	assertContains(t, PlainText(doc), "custom hobbies body")
}

func TestURLLabel(t *testing.T) {
	tests := map[string]string{
		"https://www.example.co.uk/path": "example.co.uk",
		"blog.medium.com/x":              "medium.com",
		"http://localhost:8080":          "localhost",
		"://":                            "link",
	}
	for in, want := range tests {
		if got := urlLabel(in); got != want {
			t.Errorf("urlLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
