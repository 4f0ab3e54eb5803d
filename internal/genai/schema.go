package genai

import (
	"github.com/google/generative-ai-go/genai"
)

// Type is the JSON type of a Schema node.
type Type int

const (
	TypeString Type = iota + 1
	TypeNumber
	TypeInteger
	TypeBoolean
	TypeArray
	TypeObject
)

// Schema describes the JSON document a StructuredPrompt must produce. It covers the subset
// of JSON Schema that structured output modes accept.
type Schema struct {
	Type        Type
	Description string
	Enum        []string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	Nullable    bool
}

func (t Type) toGemini() genai.Type {
	switch t {
	case TypeString:
		return genai.TypeString
	case TypeNumber:
		return genai.TypeNumber
	case TypeInteger:
		return genai.TypeInteger
	case TypeBoolean:
		return genai.TypeBoolean
	case TypeArray:
		return genai.TypeArray
	case TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}

func (s *Schema) toGemini() *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        s.Type.toGemini(),
		Description: s.Description,
		Nullable:    s.Nullable,
		Items:       s.Items.toGemini(),
	}
	if len(s.Enum) > 0 {
		out.Enum = append([]string(nil), s.Enum...)
		if out.Type == genai.TypeString {
			out.Format = "enum"
		}
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = p.toGemini()
		}
	}
	if len(s.Required) > 0 {
		out.Required = append([]string(nil), s.Required...)
	}
	return out
}
