package model

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON decodes the items of a section into the shape selected by
// its type. An item that does not fit that shape is kept as a GenericItem
// instead of failing the whole document, so older and newer exports still
// import.
func (s *Section) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string          `json:"id"`
		Title     string          `json:"title"`
		Type      SectionType     `json:"type"`
		Order     int             `json:"order"`
		IsVisible bool            `json:"isVisible"`
		Items     json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	items, err := decodeItems(raw.Type, raw.Items)
	if err != nil {
		return fmt.Errorf("section %q: %w", raw.ID, err)
	}
	*s = Section{
		ID:        raw.ID,
		Title:     raw.Title,
		Type:      raw.Type,
		Order:     raw.Order,
		IsVisible: raw.IsVisible,
		Items:     items,
	}
	return nil
}

func decodeItems(t SectionType, data json.RawMessage) ([]Item, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var rawItems []json.RawMessage
	if err := json.Unmarshal(data, &rawItems); err != nil {
		return nil, fmt.Errorf("items must be an array: %w", err)
	}
	items := make([]Item, 0, len(rawItems))
	for _, r := range rawItems {
		it, err := decodeItem(t, r)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func decodeItem(t SectionType, data json.RawMessage) (Item, error) {
	var (
		it  Item
		err error
	)
	switch t {
	case SectionExperience:
		it, err = decodeAs[ExperienceItem](data)
	case SectionEducation:
		it, err = decodeAs[EducationItem](data)
	case SectionSkills:
		it, err = decodeAs[SkillItem](data)
	case SectionProjects:
		it, err = decodeAs[ProjectItem](data)
	case SectionCertifications:
		it, err = decodeAs[CertificationItem](data)
	case SectionLanguages:
		it, err = decodeAs[LanguageItem](data)
	case SectionAwards:
		it, err = decodeAs[AwardItem](data)
	case SectionVolunteer:
		it, err = decodeAs[VolunteerItem](data)
	case SectionReferences:
		it, err = decodeAs[ReferenceItem](data)
	case SectionPublications:
		it, err = decodeAs[PublicationItem](data)
	case SectionInterests:
		it, err = decodeAs[InterestItem](data)
	case SectionAbout, SectionCustom:
		it, err = decodeAs[CustomItem](data)
	default:
		return decodeAs[GenericItem](data)
	}
	if err == nil {
		return it, nil
	}
	// shape drift: keep the raw fields
	return decodeAs[GenericItem](data)
}

func decodeAs[T Item](data json.RawMessage) (Item, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
