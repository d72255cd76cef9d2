package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RenderSchema renders a Schema as a JSON-Schema-like object for
// inclusion in an extraction prompt.
func RenderSchema(s Schema) string {
	props := make(map[string]interface{}, len(s.Properties))
	for _, p := range s.Properties {
		typ := p.Type
		if typ == "" {
			typ = "string"
		}
		if typ == "array" {
			props[p.Name] = map[string]interface{}{"type": "array", "items": renderItems(p.Items)}
			continue
		}
		props[p.Name] = map[string]interface{}{"type": typ}
	}

	data, err := json.MarshalIndent(map[string]interface{}{
		"type":       "object",
		"properties": props,
	}, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func renderItems(items []Property) map[string]interface{} {
	if len(items) == 0 {
		return map[string]interface{}{"type": "string"}
	}

	props := make(map[string]interface{}, len(items))
	for _, p := range items {
		typ := p.Type
		if typ == "" {
			typ = "string"
		}
		props[p.Name] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{"type": "object", "properties": props}
}

// DecodeResponse parses a provider response into a single record whose
// keys overlap the schema by at least 50%. The service is unreliable:
// it may return the object directly, a list of objects, a wrapper
// object nesting the real one, or all of that inside a markdown fence.
func DecodeResponse(raw string, schema Schema) (map[string]interface{}, error) {
	raw = StripMarkdownFences(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty extraction response")
	}

	var data interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("extraction response is not valid JSON: %w", err)
	}

	record := selectMatching(data, schema)
	if record == nil {
		return nil, fmt.Errorf("no object in extraction response matched the %s schema", schema.Name)
	}

	return record, nil
}

// selectMatching walks the decoded value looking for the first object
// whose keys overlap the schema sufficiently.
func selectMatching(data interface{}, schema Schema) map[string]interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		if keyOverlap(v, schema) {
			return v
		}
		// The service sometimes wraps the record, e.g. {"product": {...}}
		for _, nested := range v {
			if m, ok := nested.(map[string]interface{}); ok && keyOverlap(m, schema) {
				return m
			}
		}
	case []interface{}:
		for _, item := range v {
			if m, ok := item.(map[string]interface{}); ok && keyOverlap(m, schema) {
				return m
			}
		}
	}
	return nil
}

// keyOverlap reports whether at least half of the schema's keys are
// present in the record.
func keyOverlap(record map[string]interface{}, schema Schema) bool {
	keys := schema.Keys()
	if len(keys) == 0 {
		return false
	}

	matches := 0
	for _, k := range keys {
		if _, ok := record[k]; ok {
			matches++
		}
	}

	return float64(matches) >= float64(len(keys))*0.5
}

// StripMarkdownFences removes a surrounding ```json ... ``` or
// ``` ... ``` block if present.
func StripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSuffix(s, "```")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
