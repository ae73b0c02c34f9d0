package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"neoncv/internal/codec"
	"neoncv/internal/model"

	"gopkg.in/yaml.v3"
)

// LoadDocument reads a CV from a JSON or YAML file. Both the export
// envelope and a bare {meta, personalInfo, sections} document are accepted.
func LoadDocument(path string) (model.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = yamlToJSON(raw)
		if err != nil {
			return model.Document{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return decodeDocument(raw)
}

func decodeDocument(raw []byte) (model.Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return model.Document{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, ok := probe["version"]; ok {
		res := codec.Parse(string(raw))
		if !res.Success {
			return model.Document{}, fmt.Errorf("%s", res.Error)
		}
		return res.Data.Document(), nil
	}
	var doc model.Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return model.Document{}, fmt.Errorf("invalid document: %w", err)
	}
	return doc, nil
}

// yamlToJSON re-encodes YAML as JSON so the section decoder sees the same
// input either way.
func yamlToJSON(raw []byte) ([]byte, error) {
	var v interface{}
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	v, err := jsonCompatible(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func jsonCompatible(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, e := range t {
			c, err := jsonCompatible(e)
			if err != nil {
				return nil, err
			}
			t[k] = c
		}
		return t, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", k)
			}
			c, err := jsonCompatible(e)
			if err != nil {
				return nil, err
			}
			out[ks] = c
		}
		return out, nil
	case []interface{}:
		for i, e := range t {
			c, err := jsonCompatible(e)
			if err != nil {
				return nil, err
			}
			t[i] = c
		}
		return t, nil
	default:
		return v, nil
	}
}
