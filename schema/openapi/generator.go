// Package openapi renders a set of property descriptors as an OpenAPI 3
// schema. Each descriptor becomes one property whose type comes from
// PropertyType and whose annotations come from the descriptor metadata, so
// overrides applied through a Dynamic show up in the generated schema.
package openapi

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	descriptors "github.com/goliatone/go-descriptors"
)

const (
	// ExtensionCategory carries PropertyDescriptor.Category.
	ExtensionCategory = "x-category"
	// ExtensionOverrides lists the metadata fields a Dynamic overrides.
	ExtensionOverrides = "x-overrides"
	// ExtensionEditors lists the editor kinds a Dynamic overrides.
	ExtensionEditors = "x-editors"
	// ExtensionEditorKinds lists the kinds, among those passed to
	// WithEditorKinds, that the descriptor answers with an editor.
	ExtensionEditorKinds = "x-editor-kinds"
	// ExtensionCategories maps each category to its property names.
	ExtensionCategories = "x-categories"
)

// Generator builds schemas for descriptor sets.
type Generator struct {
	config generatorConfig
}

// NewGenerator constructs a Generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Generator{config: cfg}
}

// Schema returns the object schema for set. Descriptors must be non-nil and
// uniquely named.
func (g *Generator) Schema(set []descriptors.PropertyDescriptor) (map[string]any, error) {
	properties := make(map[string]any, len(set))
	categories := map[string][]string{}
	for i, descriptor := range set {
		if descriptors.IsNil(descriptor) {
			return nil, fmt.Errorf("openapi: descriptor %d is nil", i)
		}
		name := descriptor.Name()
		if name == "" {
			return nil, fmt.Errorf("openapi: descriptor %d has no name", i)
		}
		if _, exists := properties[name]; exists {
			return nil, fmt.Errorf("openapi: duplicate property %q", name)
		}
		properties[name] = g.propertySchema(descriptor)
		if category := descriptor.Category(); category != "" {
			categories[category] = append(categories[category], name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if g.config.categoryIndex && len(categories) > 0 {
		for _, names := range categories {
			sort.Strings(names)
		}
		schema[ExtensionCategories] = categories
	}
	return schema, nil
}

func (g *Generator) propertySchema(descriptor descriptors.PropertyDescriptor) map[string]any {
	schema := typeSchema(descriptor.PropertyType(), map[reflect.Type]bool{})
	if title := descriptor.DisplayName(); title != "" {
		schema["title"] = title
	}
	if description := descriptor.Description(); description != "" {
		schema["description"] = description
	}
	if descriptor.IsReadOnly() {
		schema["readOnly"] = true
	}
	if category := descriptor.Category(); category != "" {
		schema[ExtensionCategory] = category
	}
	if dynamic, ok := descriptor.(*descriptors.Dynamic); ok {
		var fields []string
		for _, field := range []descriptors.Field{
			descriptors.FieldReadOnly,
			descriptors.FieldCategory,
			descriptors.FieldConverter,
			descriptors.FieldDescription,
			descriptors.FieldDisplayName,
		} {
			if dynamic.Overridden(field) {
				fields = append(fields, field.String())
			}
		}
		if len(fields) > 0 {
			schema[ExtensionOverrides] = fields
		}
		if kinds := dynamic.EditorKinds(); len(kinds) > 0 {
			names := make([]string, len(kinds))
			for i, kind := range kinds {
				names[i] = kind.String()
			}
			schema[ExtensionEditors] = names
		}
	}
	var available []string
	for _, kind := range g.config.editorKinds {
		if descriptor.Editor(kind) != nil {
			available = append(available, kind.String())
		}
	}
	if len(available) > 0 {
		schema[ExtensionEditorKinds] = available
	}
	return schema
}

// typeSchema maps a Go type to a schema. seen guards recursive struct types.
func typeSchema(t reflect.Type, seen map[reflect.Type]bool) map[string]any {
	if t == nil {
		return map[string]any{}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Interface:
		return map[string]any{}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Struct:
		if t == reflect.TypeOf(time.Time{}) {
			return map[string]any{"type": "string", "format": "date-time"}
		}
		if seen[t] {
			return map[string]any{"type": "object"}
		}
		seen[t] = true
		defer delete(seen, t)
		return structSchema(t, seen)
	case reflect.Map:
		schema := map[string]any{"type": "object"}
		if t.Key().Kind() == reflect.String {
			schema["additionalProperties"] = typeSchema(t.Elem(), seen)
		}
		return schema
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return map[string]any{"type": "string", "format": "byte"}
		}
		return map[string]any{"type": "array", "items": typeSchema(t.Elem(), seen)}
	default:
		return map[string]any{
			"type":   "string",
			"format": fmt.Sprintf("go:%s", t.String()),
		}
	}
}

func structSchema(t reflect.Type, seen map[reflect.Type]bool) map[string]any {
	properties := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		properties[name] = typeSchema(field.Type, seen)
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
	}
}
