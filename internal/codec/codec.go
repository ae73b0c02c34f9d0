// Package codec reads and writes the versioned JSON backup envelope.
//
// Every data problem is reported through ParseResult or ValidationResult;
// the functions here never panic on bad input and never return a Go error
// for malformed documents.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"neoncv/internal/model"
)

// FormatVersion is stamped into every envelope produced by Serialize.
const FormatVersion = "1.0"

// timestampLayout is ISO-8601 with millisecond precision in UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

type ParseResult struct {
	Success bool              `json:"success"`
	Data    *model.ExportData `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// Codec holds the clock used to stamp exportedAt. The zero value uses
// time.Now.
type Codec struct {
	Now func() time.Time
}

var std = &Codec{}

func (c *Codec) now() time.Time {
	if c == nil || c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Serialize wraps the document into an envelope and pretty-prints it with
// two-space indentation. Only title, language and templateId survive from
// meta.
func (c *Codec) Serialize(meta model.Meta, info model.PersonalInfo, sections []model.Section) (string, error) {
	env := model.ExportData{
		Version:      FormatVersion,
		ExportedAt:   c.now().UTC().Format(timestampLayout),
		Meta:         meta.Whitelisted(),
		PersonalInfo: info,
		Sections:     sections,
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return "", fmt.Errorf("encode export envelope: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Validate checks the envelope structure of a generically decoded value:
// version is a string, personalInfo an object, sections an array. Item
// shapes are left alone.
func (c *Codec) Validate(data interface{}) ValidationResult {
	if err := model.ValidateEnvelope(data); err != nil {
		return ValidationResult{Valid: false, Error: err.Error()}
	}
	return ValidationResult{Valid: true}
}

// Parse decodes and validates an envelope.
func (c *Codec) Parse(text string) ParseResult {
	var generic interface{}
	if err := json.Unmarshal([]byte(text), &generic); err != nil {
		return ParseResult{Success: false, Error: "invalid JSON: " + err.Error()}
	}
	if v := c.Validate(generic); !v.Valid {
		return ParseResult{Success: false, Error: v.Error}
	}
	var data model.ExportData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return ParseResult{Success: false, Error: "invalid export data: " + err.Error()}
	}
	return ParseResult{Success: true, Data: &data}
}

// ReadFrom drains r and parses its content. Read failures come back as an
// unsuccessful result.
func (c *Codec) ReadFrom(r io.Reader) ParseResult {
	b, err := io.ReadAll(r)
	if err != nil {
		return ParseResult{Success: false, Error: "failed to read file: " + err.Error()}
	}
	return c.Parse(string(b))
}

func (c *Codec) ReadFromFile(path string) ParseResult {
	f, err := os.Open(path)
	if err != nil {
		return ParseResult{Success: false, Error: "failed to read file: " + err.Error()}
	}
	defer f.Close()
	return c.ReadFrom(f)
}

func Serialize(meta model.Meta, info model.PersonalInfo, sections []model.Section) (string, error) {
	return std.Serialize(meta, info, sections)
}

func Validate(data interface{}) ValidationResult { return std.Validate(data) }

func Parse(text string) ParseResult { return std.Parse(text) }

func ReadFrom(r io.Reader) ParseResult { return std.ReadFrom(r) }

func ReadFromFile(path string) ParseResult { return std.ReadFromFile(path) }
