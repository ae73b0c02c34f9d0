package model

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/export.schema.json
var exportSchema string

var exportSchemaLoader = gojsonschema.NewStringLoader(exportSchema)

// ValidateEnvelope validates a generic decoded JSON value against the export
// envelope schema. Only the envelope structure is checked, never item shapes.
func ValidateEnvelope(v interface{}) error {
	res, err := gojsonschema.Validate(exportSchemaLoader, gojsonschema.NewGoLoader(v))
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	// collect errors
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}

// ValidationResult holds the outcome of a strict document check.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}

// ValidateDocument checks the invariants the editor guarantees: skill
// proficiency within 1..5, language levels from the closed set and unique
// section ids. Exporters tolerate violations; callers that accept documents
// from outside the editor run this first.
func ValidateDocument(doc Document) *ValidationResult {
	result := &ValidationResult{Valid: true, Problems: []string{}}

	seen := map[string]bool{}
	for i, s := range doc.Sections {
		if s.ID != "" {
			if seen[s.ID] {
				result.Valid = false
				result.Problems = append(result.Problems, fmt.Sprintf("sections[%d].id %q is duplicated", i, s.ID))
			}
			seen[s.ID] = true
		}
		if s.Type == "" {
			result.Valid = false
			result.Problems = append(result.Problems, fmt.Sprintf("sections[%d].type is missing", i))
		}

		for j, it := range s.Items {
			switch v := it.(type) {
			case SkillItem:
				if v.Proficiency < 1 || v.Proficiency > 5 {
					result.Valid = false
					result.Problems = append(result.Problems, fmt.Sprintf("sections[%d].items[%d].proficiency must be 1-5, got %d", i, j, v.Proficiency))
				}
			case LanguageItem:
				if !v.Proficiency.Valid() {
					result.Valid = false
					result.Problems = append(result.Problems, fmt.Sprintf("sections[%d].items[%d].proficiency %q is not a language level", i, j, v.Proficiency))
				}
			case GenericItem:
				if s.Type.Known() {
					result.Valid = false
					result.Problems = append(result.Problems, fmt.Sprintf("sections[%d].items[%d] does not match the %s item shape", i, j, s.Type))
				}
			}
		}
	}
	return result
}
