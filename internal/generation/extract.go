package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Extractor decodes the JSON object embedded in a model response into v.
type Extractor interface {
	Extract(raw string, v any) error
}

// BraceExtractor strips Markdown fences, slices from the first '{' to the
// last '}' and decodes that span. Nested braces inside prose can produce a
// wrong slice; model output is expected to hold one top-level object.
type BraceExtractor struct {
	// Schema, when set, must accept the sliced document.
	Schema *gojsonschema.Schema
}

func (e BraceExtractor) Extract(raw string, v any) error {
	span, err := jsonSpan(raw)
	if err != nil {
		return &noJSONObjectError{raw: truncateRunes(raw, maxRawPrefixRunes)}
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return newMalformedJSONError(raw, err)
	}
	if e.Schema != nil {
		if err := validateSchema(e.Schema, span); err != nil {
			return newMalformedJSONError(raw, err)
		}
	}
	return nil
}

// jsonSpan returns the candidate object text inside raw.
func jsonSpan(raw string) (string, error) {
	s := stripFences(strings.TrimSpace(raw))
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < 0 || end < start {
		return "", ErrNoJSONObjectFound
	}
	return s[start : end+1], nil
}

func stripFences(s string) string {
	open := strings.Index(s, "```")
	if open < 0 {
		return s
	}
	marker := "```"
	if strings.HasPrefix(s[open:], "```json") {
		marker = "```json"
	}
	s = s[:open] + s[open+len(marker):]
	if closing := strings.LastIndex(s, "```"); closing >= 0 {
		s = s[:closing] + s[closing+3:]
	}
	return strings.TrimSpace(s)
}

func validateSchema(schema *gojsonschema.Schema, doc string) error {
	result, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("schema violations: %s", strings.Join(msgs, "; "))
}
