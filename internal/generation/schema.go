package generation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// SectionTypes lists the section kinds a portfolio config may contain.
var SectionTypes = []string{
	"hero", "about", "experience", "projects", "skills",
	"education", "certifications", "testimonials", "contact", "custom",
}

const cvDataSchema = `{
  "type": "object",
  "properties": {
    "name":       {"type": ["string", "null"]},
    "headline":   {"type": ["string", "null"]},
    "bio":        {"type": ["string", "null"]},
    "email":      {"type": ["string", "null"]},
    "phone":      {"type": ["string", "null"]},
    "location":   {"type": ["string", "null"]},
    "website":    {"type": ["string", "null"]},
    "linkedin":   {"type": ["string", "null"]},
    "github":     {"type": ["string", "null"]},
    "skills":     {"type": ["array", "null"], "items": {"type": "string"}},
    "projects":   {"type": ["array", "null"], "items": {"type": "object"}},
    "experience": {"type": ["array", "null"], "items": {"type": "object"}},
    "education":  {"type": ["array", "null"], "items": {"type": "object"}}
  }
}`

const portfolioConfigSchemaTemplate = `{
  "type": "object",
  "required": ["sections"],
  "properties": {
    "theme": {
      "type": "object",
      "properties": {
        "primaryColor":   {"type": "string"},
        "secondaryColor": {"type": "string"},
        "fontFamily":     {"type": "string"},
        "layout":         {"type": "string"}
      }
    },
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type"],
        "properties": {
          "id":      {"type": "string"},
          "type":    {"enum": %s},
          "title":   {"type": "string"},
          "order":   {"type": "integer"},
          "visible": {"type": "boolean"},
          "content": {}
        }
      }
    }
  }
}`

// Schemas holds the compiled response schemas for structured tasks.
type Schemas struct {
	CVData          *gojsonschema.Schema
	PortfolioConfig *gojsonschema.Schema
}

// CompileSchemas builds the response schemas.
func CompileSchemas() (Schemas, error) {
	cv, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(cvDataSchema))
	if err != nil {
		return Schemas{}, fmt.Errorf("compile cv schema: %w", err)
	}
	portfolio, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(portfolioConfigSchema()))
	if err != nil {
		return Schemas{}, fmt.Errorf("compile portfolio schema: %w", err)
	}
	return Schemas{CVData: cv, PortfolioConfig: portfolio}, nil
}

func portfolioConfigSchema() string {
	enum := "["
	for i, t := range SectionTypes {
		if i > 0 {
			enum += ","
		}
		enum += fmt.Sprintf("%q", t)
	}
	enum += "]"
	return fmt.Sprintf(portfolioConfigSchemaTemplate, enum)
}
