package docx

import "strings"

// Labels holds the fixed strings the builder writes around document data.
type Labels struct {
	ProfessionalSummary string
	Present             string
	Technologies        string
	Live                string
	GitHub              string
	GPA                 string
	Other               string
	At                  string
	In                  string

	// placeholders for missing required-looking fields
	Name    string
	Role    string
	Company string
	Degree  string
	Project string
}

// DefaultLabels returns the English label set.
func DefaultLabels() Labels {
	return Labels{
		ProfessionalSummary: "Professional Summary",
		Present:             "Present",
		Technologies:        "Technologies",
		Live:                "Live",
		GitHub:              "GitHub",
		GPA:                 "GPA",
		Other:               "Other",
		At:                  "at",
		In:                  "in",
		Name:                "Your Name",
		Role:                "Role",
		Company:             "Company",
		Degree:              "Degree",
		Project:             "Project",
	}
}

var translatedLabels = map[string]Labels{
	"pt": {
		ProfessionalSummary: "Resumo Profissional",
		Present:             "Atual",
		Technologies:        "Tecnologias",
		Live:                "Online",
		GitHub:              "GitHub",
		GPA:                 "Média",
		Other:               "Outros",
		At:                  "na",
		In:                  "em",
		Name:                "Seu Nome",
		Role:                "Cargo",
		Company:             "Empresa",
		Degree:              "Curso",
		Project:             "Projeto",
	},
	"es": {
		ProfessionalSummary: "Resumen Profesional",
		Present:             "Actualidad",
		Technologies:        "Tecnologías",
		Live:                "En vivo",
		GitHub:              "GitHub",
		GPA:                 "Promedio",
		Other:               "Otros",
		At:                  "en",
		In:                  "en",
		Name:                "Tu Nombre",
		Role:                "Puesto",
		Company:             "Empresa",
		Degree:              "Título",
		Project:             "Proyecto",
	},
	"de": {
		ProfessionalSummary: "Berufliches Profil",
		Present:             "Heute",
		Technologies:        "Technologien",
		Live:                "Live",
		GitHub:              "GitHub",
		GPA:                 "Note",
		Other:               "Sonstiges",
		At:                  "bei",
		In:                  "in",
		Name:                "Ihr Name",
		Role:                "Position",
		Company:             "Unternehmen",
		Degree:              "Abschluss",
		Project:             "Projekt",
	},
	"fr": {
		ProfessionalSummary: "Profil Professionnel",
		Present:             "Présent",
		Technologies:        "Technologies",
		Live:                "En ligne",
		GitHub:              "GitHub",
		GPA:                 "Moyenne",
		Other:               "Autres",
		At:                  "chez",
		In:                  "en",
		Name:                "Votre Nom",
		Role:                "Poste",
		Company:             "Entreprise",
		Degree:              "Diplôme",
		Project:             "Projet",
	},
}

// LabelsFor picks a label set from a language tag such as "pt-BR" or
// "de". Unknown or empty tags get English.
func LabelsFor(language string) Labels {
	lang := strings.ToLower(strings.TrimSpace(language))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if l, ok := translatedLabels[lang]; ok {
		return l
	}
	return DefaultLabels()
}
