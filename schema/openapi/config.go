package openapi

import (
	"strings"

	descriptors "github.com/goliatone/go-descriptors"
)

type generatorConfig struct {
	openAPIVersion string
	info           openapiInfo
	componentName  string
	editorKinds    []descriptors.EditorKind
	categoryIndex  bool
	update         *updateOperation
}

type openapiInfo struct {
	Title       string
	Version     string
	Description string
}

// updateOperation publishes a write of the whole component. The request body
// references the component schema and the operation answers 204.
type updateOperation struct {
	Path    string
	Method  string
	Summary string
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		openAPIVersion: "3.0.3",
		info: openapiInfo{
			Title:   "Descriptor Schema",
			Version: "1.0.0",
		},
	}
}

// GeneratorOption configures the OpenAPI generator behaviour.
type GeneratorOption func(*generatorConfig)

// WithOpenAPIVersion overrides the OpenAPI version string (default: 3.0.3).
func WithOpenAPIVersion(version string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if version == "" {
			return
		}
		cfg.openAPIVersion = version
	}
}

// InfoOption configures optional fields on the OpenAPI info section.
type InfoOption func(*openapiInfo)

// WithInfoDescription sets the optional description field for the info section.
func WithInfoDescription(description string) InfoOption {
	return func(info *openapiInfo) {
		info.Description = description
	}
}

// WithInfo configures the OpenAPI info block. Empty strings retain the
// existing values.
func WithInfo(title, version string, opts ...InfoOption) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title != "" {
			cfg.info.Title = title
		}
		if version != "" {
			cfg.info.Version = version
		}
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.info)
			}
		}
	}
}

// WithComponentName names the schema published under components.schemas.
// By default the name of the descriptors' component type is used.
func WithComponentName(name string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.componentName = strings.TrimSpace(name)
	}
}

// WithEditorKinds asks every descriptor for an editor of each kind and lists
// the kinds it answers under ExtensionEditorKinds. Editors themselves are
// opaque and never rendered.
func WithEditorKinds(kinds ...descriptors.EditorKind) GeneratorOption {
	return func(cfg *generatorConfig) {
		for _, kind := range kinds {
			if kind == "" {
				continue
			}
			cfg.editorKinds = append(cfg.editorKinds, kind)
		}
	}
}

// WithCategoryIndex adds ExtensionCategories to the object schema, grouping
// property names by descriptor category the way a property grid does.
func WithCategoryIndex() GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.categoryIndex = true
	}
}

// OperationOption configures the update operation.
type OperationOption func(*updateOperation)

// WithOperationSummary attaches a summary to the update operation.
func WithOperationSummary(summary string) OperationOption {
	return func(operation *updateOperation) {
		operation.Summary = strings.TrimSpace(summary)
	}
}

// WithUpdateOperation publishes an operation at path that accepts the
// component as its request body. Method defaults to put. Without it Document
// emits an empty paths object.
func WithUpdateOperation(path, method string, opts ...OperationOption) GeneratorOption {
	return func(cfg *generatorConfig) {
		path = strings.TrimSpace(path)
		if path == "" {
			return
		}
		operation := &updateOperation{Path: path, Method: strings.ToLower(strings.TrimSpace(method))}
		if operation.Method == "" {
			operation.Method = "put"
		}
		for _, opt := range opts {
			if opt != nil {
				opt(operation)
			}
		}
		cfg.update = operation
	}
}
