package openapi

import (
	"fmt"
	"reflect"
	"strings"

	descriptors "github.com/goliatone/go-descriptors"
)

// Document returns an OpenAPI document publishing the schema for set under
// components.schemas. With WithUpdateOperation the document also carries one
// operation that writes the component.
func (g *Generator) Document(set []descriptors.PropertyDescriptor) (map[string]any, error) {
	schema, err := g.Schema(set)
	if err != nil {
		return nil, err
	}
	name := g.componentName(set)
	document := map[string]any{
		"openapi": g.config.openAPIVersion,
		"info":    g.buildInfo(),
		"paths":   g.buildPaths(name),
		"components": map[string]any{
			"schemas": map[string]any{name: schema},
		},
	}
	if err := validateDocument(document); err != nil {
		return nil, err
	}
	return document, nil
}

func (g *Generator) componentName(set []descriptors.PropertyDescriptor) string {
	if g.config.componentName != "" {
		return g.config.componentName
	}
	for _, descriptor := range set {
		if descriptors.IsNil(descriptor) || descriptor.ComponentType() == nil {
			continue
		}
		t := descriptor.ComponentType()
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Name() != "" {
			return t.Name()
		}
	}
	return "Component"
}

func (g *Generator) buildInfo() map[string]any {
	info := map[string]any{
		"title":   g.config.info.Title,
		"version": g.config.info.Version,
	}
	if g.config.info.Description != "" {
		info["description"] = g.config.info.Description
	}
	return info
}

func (g *Generator) buildPaths(component string) map[string]any {
	update := g.config.update
	if update == nil {
		return map[string]any{}
	}
	operation := map[string]any{
		"operationId": "update" + upperFirst(component),
		"requestBody": map[string]any{
			"required": true,
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": "#/components/schemas/" + component},
				},
			},
		},
		"responses": map[string]any{
			"204": map[string]any{"description": component + " updated"},
		},
	}
	if update.Summary != "" {
		operation["summary"] = update.Summary
	}
	return map[string]any{
		update.Path: map[string]any{update.Method: operation},
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func validateDocument(document map[string]any) error {
	if document == nil {
		return fmt.Errorf("openapi: document cannot be nil")
	}
	openapi, _ := document["openapi"].(string)
	if openapi == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if info == nil {
		return fmt.Errorf("openapi: document missing info section")
	}
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, ok := document["paths"].(map[string]any)
	if !ok {
		return fmt.Errorf("openapi: document missing paths object")
	}
	for pathKey, pathValue := range paths {
		pathItem, _ := pathValue.(map[string]any)
		if len(pathItem) == 0 {
			return fmt.Errorf("openapi: path %q missing operations", pathKey)
		}
		for method, operationValue := range pathItem {
			operation, _ := operationValue.(map[string]any)
			if operation == nil {
				return fmt.Errorf("openapi: operation %s %s invalid payload", method, pathKey)
			}
			if _, ok := operation["operationId"].(string); !ok {
				return fmt.Errorf("openapi: operation %s %s missing operationId", method, pathKey)
			}
			if _, ok := operation["responses"].(map[string]any); !ok {
				return fmt.Errorf("openapi: operation %s %s missing responses", method, pathKey)
			}
		}
	}
	components, _ := document["components"].(map[string]any)
	if schemas, _ := components["schemas"].(map[string]any); len(schemas) == 0 {
		return fmt.Errorf("openapi: document must publish a component schema")
	}
	return nil
}
