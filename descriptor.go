// Package descriptors wraps property descriptors so their presentation
// metadata can be overridden at runtime while every other behaviour falls
// back to the wrapped descriptor.
package descriptors

import "reflect"

// PropertyDescriptor reads, writes and describes a single named property of a
// component. Any host descriptor satisfying this set can be wrapped by
// NewDynamic, and *Dynamic satisfies it too.
type PropertyDescriptor interface {
	Name() string
	ComponentType() reflect.Type
	PropertyType() reflect.Type

	GetValue(component any) (any, error)
	SetValue(component, value any) error
	ResetValue(component any) error
	CanResetValue(component any) bool
	ShouldSerializeValue(component any) bool

	IsReadOnly() bool
	Category() string
	Description() string
	DisplayName() string
	Converter() Converter

	// Editor returns the editor registered for kind, or nil when none applies.
	Editor(kind EditorKind) Editor
}

// Converter translates property values to and from their text form.
type Converter interface {
	ConvertTo(value any) (string, error)
	ConvertFrom(text string) (any, error)
}

// Editor is an opaque editor object handed to the host UI.
type Editor any

// EditorKind names a category of editing widget.
type EditorKind string

// EditorKindOf derives a stable kind from the Go type T, for hosts that key
// editors by type identity.
func EditorKindOf[T any]() EditorKind {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.PkgPath() == "" {
		return EditorKind(t.String())
	}
	return EditorKind(t.PkgPath() + "." + t.Name())
}

func (k EditorKind) String() string {
	return string(k)
}
