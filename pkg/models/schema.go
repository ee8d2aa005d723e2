package models

import "github.com/xeipuuv/gojsonschema"

// JSONSchema represents a JSON Schema for step configuration validation
type JSONSchema struct {
	Type                 string               `json:"type"`
	Properties           map[string]*Property `json:"properties,omitempty"`
	Required             []string             `json:"required,omitempty"`
	AdditionalProperties *bool                `json:"additionalProperties,omitempty"`
	Title                string               `json:"title,omitempty"`
	Description          string               `json:"description,omitempty"`
}

// Property represents a JSON Schema property
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []any    `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
	Format      string   `json:"format,omitempty"`
	MinLength   *int     `json:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
}

// compile turns the schema into a reusable gojsonschema validator.
func (s *JSONSchema) compile() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(s))
}

func closedObject(title, description string, properties map[string]*Property) *JSONSchema {
	closed := false

	return &JSONSchema{
		Type:                 "object",
		Title:                title,
		Description:          description,
		Properties:           properties,
		AdditionalProperties: &closed,
	}
}

func stringProperty(description string, maxLength int) *Property {
	return &Property{Type: "string", Description: description, MaxLength: &maxLength}
}

func enumProperty(description string, values ...any) *Property {
	return &Property{Type: "string", Description: description, Enum: append([]any{""}, values...)}
}

func counterProperty(description string) *Property {
	minimum := 0.0

	return &Property{Type: "integer", Description: description, Minimum: &minimum}
}
