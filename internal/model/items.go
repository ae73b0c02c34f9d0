package model

// Item is one entry of a section. The set of implementations is closed:
// every concrete shape lives in this file.
type Item interface {
	isItem()
	// GenericFields returns the title-like (title ?? name ?? organization)
	// and description-like (description ?? content) values of the item.
	GenericFields() (title, description string)
}

type ExperienceItem struct {
	ID          string   `json:"id,omitempty"`
	Company     string   `json:"company,omitempty"`
	Role        string   `json:"role,omitempty"`
	Location    string   `json:"location,omitempty"`
	StartDate   string   `json:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty"`
	IsCurrent   bool     `json:"isCurrent"`
	Description string   `json:"description,omitempty"`
	Bullets     []string `json:"bullets"`
	TechStack   []string `json:"techStack"`
}

type EducationItem struct {
	ID           string   `json:"id,omitempty"`
	Institution  string   `json:"institution,omitempty"`
	Degree       string   `json:"degree,omitempty"`
	FieldOfStudy string   `json:"fieldOfStudy,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	IsCurrent    bool     `json:"isCurrent"`
	GPA          string   `json:"gpa,omitempty"`
	Achievements []string `json:"achievements"`
}

type SkillItem struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Category    string `json:"category,omitempty"`
	Proficiency int    `json:"proficiency,omitempty"`
}

type ProjectItem struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	TechStack   []string `json:"techStack"`
	LiveURL     string   `json:"liveUrl,omitempty"`
	GithubURL   string   `json:"githubUrl,omitempty"`
}

type CertificationItem struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name,omitempty"`
	Issuer        string `json:"issuer,omitempty"`
	Date          string `json:"date,omitempty"`
	ExpiryDate    string `json:"expiryDate,omitempty"`
	CredentialURL string `json:"credentialUrl,omitempty"`
	Description   string `json:"description,omitempty"`
}

// LanguageLevel is the closed set of spoken-language proficiencies.
type LanguageLevel string

const (
	LevelNative       LanguageLevel = "native"
	LevelFluent       LanguageLevel = "fluent"
	LevelAdvanced     LanguageLevel = "advanced"
	LevelIntermediate LanguageLevel = "intermediate"
	LevelBeginner     LanguageLevel = "beginner"
)

func (l LanguageLevel) Valid() bool {
	switch l {
	case LevelNative, LevelFluent, LevelAdvanced, LevelIntermediate, LevelBeginner:
		return true
	}
	return false
}

type LanguageItem struct {
	ID          string        `json:"id,omitempty"`
	Name        string        `json:"name,omitempty"`
	Proficiency LanguageLevel `json:"proficiency,omitempty"`
}

type AwardItem struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Issuer      string `json:"issuer,omitempty"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

type VolunteerItem struct {
	ID           string `json:"id,omitempty"`
	Organization string `json:"organization,omitempty"`
	Role         string `json:"role,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
	Description  string `json:"description,omitempty"`
}

type ReferenceItem struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	Title        string `json:"title,omitempty"`
	Company      string `json:"company,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

type PublicationItem struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	Date        string `json:"date,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

type InterestItem struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// CustomItem backs both "about" and "custom" sections.
type CustomItem struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Date     string `json:"date,omitempty"`
	Content  string `json:"content,omitempty"`
}

// GenericItem carries items of section types this build does not know, or
// items that no longer fit their section's shape. Keys are kept verbatim.
type GenericItem map[string]interface{}

func (ExperienceItem) isItem()    {}
func (EducationItem) isItem()     {}
func (SkillItem) isItem()         {}
func (ProjectItem) isItem()       {}
func (CertificationItem) isItem() {}
func (LanguageItem) isItem()      {}
func (AwardItem) isItem()         {}
func (VolunteerItem) isItem()     {}
func (ReferenceItem) isItem()     {}
func (PublicationItem) isItem()   {}
func (InterestItem) isItem()      {}
func (CustomItem) isItem()        {}
func (GenericItem) isItem()       {}

func (i ExperienceItem) GenericFields() (string, string) { return "", i.Description }
func (i EducationItem) GenericFields() (string, string)  { return "", "" }
func (i SkillItem) GenericFields() (string, string)      { return i.Name, "" }
func (i ProjectItem) GenericFields() (string, string)    { return i.Title, i.Description }
func (i CertificationItem) GenericFields() (string, string) {
	return i.Name, i.Description
}
func (i LanguageItem) GenericFields() (string, string)    { return i.Name, "" }
func (i AwardItem) GenericFields() (string, string)       { return i.Title, i.Description }
func (i VolunteerItem) GenericFields() (string, string)   { return i.Organization, i.Description }
func (i ReferenceItem) GenericFields() (string, string)   { return i.Name, "" }
func (i PublicationItem) GenericFields() (string, string) { return i.Title, i.Description }
func (i InterestItem) GenericFields() (string, string)    { return i.Name, i.Description }
func (i CustomItem) GenericFields() (string, string)      { return i.Title, i.Content }

func (g GenericItem) GenericFields() (string, string) {
	return firstString(g, "title", "name", "organization"), firstString(g, "description", "content")
}

// firstString returns the first key holding a non-empty string.
func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
