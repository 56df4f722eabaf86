package domain

import (
	"encoding/json"
	"fmt"
)

// ContentType is a schema definition for content items.
type ContentType struct {
	ID         string
	Name       string
	Definition TypeDefinition
}

// TypeDefinition is the server's full representation of a content type,
// kept verbatim so it can be persisted and replayed unchanged.
type TypeDefinition struct {
	Name string
	Raw  json.RawMessage
}

// NewTypeDefinition wraps raw, reading the type name from it.
func NewTypeDefinition(raw json.RawMessage) (TypeDefinition, error) {
	var head struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return TypeDefinition{}, fmt.Errorf("parse type definition: %w", err)
	}
	if head.Name == "" {
		return TypeDefinition{}, ErrValidation("type definition has no name")
	}
	return TypeDefinition{Name: head.Name, Raw: raw}, nil
}

type typeProperties struct {
	Properties struct {
		CustomEditors []string `json:"customEditors"`
		CustomForms   []string `json:"customForms"`
	} `json:"properties"`
}

func (d TypeDefinition) properties() typeProperties {
	var p typeProperties
	_ = json.Unmarshal(d.Raw, &p)
	return p
}

// CustomEditors returns the custom field editor components the type embeds.
func (d TypeDefinition) CustomEditors() []string {
	return d.properties().Properties.CustomEditors
}

// CustomForms returns the custom form components the type embeds.
func (d TypeDefinition) CustomForms() []string {
	return d.properties().Properties.CustomForms
}
