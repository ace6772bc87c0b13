// Package overlay applies declarative metadata overrides to sets of dynamic
// descriptors. Documents are keyed by property name and can be layered by
// scope before they are applied.
package overlay

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-descriptors/internal/hydrate"
	"gopkg.in/yaml.v3"
)

// Document declares metadata overrides keyed by property name. Version is
// optional; a stack merge takes it from the strongest layer that sets it.
type Document struct {
	Version    *int                       `json:"version,omitempty" yaml:"version,omitempty"`
	Properties map[string]PropertyOverlay `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// PropertyOverlay lists the overrides for one property. Nil fields leave the
// descriptor untouched. Converter and editor values are registry names; an
// empty editor name clears the override for that kind.
type PropertyOverlay struct {
	ReadOnly    *bool             `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	Category    *string           `json:"category,omitempty" yaml:"category,omitempty"`
	Description *string           `json:"description,omitempty" yaml:"description,omitempty"`
	DisplayName *string           `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Converter   *string           `json:"converter,omitempty" yaml:"converter,omitempty"`
	Editors     map[string]string `json:"editors,omitempty" yaml:"editors,omitempty"`
	// When gates the whole entry on a rules expression.
	When *string `json:"when,omitempty" yaml:"when,omitempty"`
}

var fieldAliases = map[string]string{
	"read_only":    "readOnly",
	"readonly":     "readOnly",
	"display_name": "displayName",
	"displayname":  "displayName",
}

// Parse decodes a YAML or JSON overlay document.
func Parse(data []byte) (Document, error) {
	return ParseSource("inline", data)
}

// ParseSource is Parse with a source label used in error messages.
func ParseSource(source string, data []byte) (Document, error) {
	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return Document{}, fmt.Errorf("overlay: parse %q: %w", source, err)
	}
	if payload == nil {
		return Document{}, nil
	}
	return decode(hydrate.Context{Source: source}, payload)
}

// FromMap decodes an overlay document from a loosely typed payload, such as
// one read from a database column. snake_case field names are accepted.
func FromMap(payload map[string]any) (Document, error) {
	return decode(hydrate.Context{Source: "map"}, payload)
}

func decode(ctx hydrate.Context, payload map[string]any) (Document, error) {
	decoder := hydrate.NewDecoder[Document](
		hydrate.WithPreHook[Document](hydrate.ForEachEntry("properties", hydrate.RenameKeys(fieldAliases))),
		hydrate.WithDisallowUnknownFields[Document](),
		hydrate.WithPostHook[Document](validateHook),
	)
	doc, err := decoder.Decode(ctx, payload)
	if err != nil {
		return Document{}, fmt.Errorf("overlay: %w", err)
	}
	return doc, nil
}

func validateHook(_ hydrate.Context, doc *Document) error {
	return doc.Validate()
}

// Validate reports blank property names and blank editor kinds.
func (d Document) Validate() error {
	for name, entry := range d.Properties {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("overlay: property name must not be empty")
		}
		for kind := range entry.Editors {
			if strings.TrimSpace(kind) == "" {
				return fmt.Errorf("overlay: property %q has an empty editor kind", name)
			}
		}
		if entry.When != nil && strings.TrimSpace(*entry.When) == "" {
			return fmt.Errorf("overlay: property %q has an empty when expression", name)
		}
	}
	return nil
}

// PropertyNames returns the properties the document touches, sorted.
func (d Document) PropertyNames() []string {
	names := make([]string, 0, len(d.Properties))
	for name := range d.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Empty reports whether the document carries no overrides.
func (d Document) Empty() bool {
	return len(d.Properties) == 0
}

// Marshal encodes the document as YAML.
func (d Document) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}
