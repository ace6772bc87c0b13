// Package descriptortest provides recording descriptors for tests and
// examples.
package descriptortest

import (
	"fmt"
	"reflect"

	descriptors "github.com/goliatone/go-descriptors"
)

// Mock is a PropertyDescriptor whose results are configured through its
// fields and which records the arguments of every value operation.
type Mock struct {
	NameResult          string
	ComponentTypeResult reflect.Type
	PropertyTypeResult  reflect.Type
	IsReadOnlyResult    bool
	CategoryResult      string
	DescriptionResult   string
	DisplayNameResult   string
	ConverterResult     descriptors.Converter

	// EditorResult is returned for any kind missing from Editors.
	EditorResult  descriptors.Editor
	Editors       map[descriptors.EditorKind]descriptors.Editor
	EditorRequest descriptors.EditorKind

	GetValueResult    any
	GetValueErr       error
	GetValueComponent any
	GetValueCalled    bool

	SetValueErr       error
	SetValueComponent any
	SetValueValue     any
	SetValueCalled    bool

	ResetValueErr       error
	ResetValueComponent any
	ResetValueCalled    bool

	CanResetValueResult    bool
	CanResetValueComponent any
	CanResetValueCalled    bool

	ShouldSerializeValueResult    bool
	ShouldSerializeValueComponent any
	ShouldSerializeValueCalled    bool
}

var _ descriptors.PropertyDescriptor = (*Mock)(nil)

// NewMock returns a Mock named name with string component and property types.
func NewMock(name string) *Mock {
	return &Mock{
		NameResult:          name,
		ComponentTypeResult: reflect.TypeOf(map[string]any{}),
		PropertyTypeResult:  reflect.TypeOf(""),
		DisplayNameResult:   name,
	}
}

func (m *Mock) Name() string                { return m.NameResult }
func (m *Mock) ComponentType() reflect.Type { return m.ComponentTypeResult }
func (m *Mock) PropertyType() reflect.Type  { return m.PropertyTypeResult }
func (m *Mock) IsReadOnly() bool            { return m.IsReadOnlyResult }
func (m *Mock) Category() string            { return m.CategoryResult }
func (m *Mock) Description() string         { return m.DescriptionResult }
func (m *Mock) DisplayName() string         { return m.DisplayNameResult }

func (m *Mock) Converter() descriptors.Converter { return m.ConverterResult }

func (m *Mock) Editor(kind descriptors.EditorKind) descriptors.Editor {
	m.EditorRequest = kind
	if editor, ok := m.Editors[kind]; ok {
		return editor
	}
	return m.EditorResult
}

func (m *Mock) GetValue(component any) (any, error) {
	m.GetValueCalled = true
	m.GetValueComponent = component
	return m.GetValueResult, m.GetValueErr
}

func (m *Mock) SetValue(component, value any) error {
	m.SetValueCalled = true
	m.SetValueComponent = component
	m.SetValueValue = value
	return m.SetValueErr
}

func (m *Mock) ResetValue(component any) error {
	m.ResetValueCalled = true
	m.ResetValueComponent = component
	return m.ResetValueErr
}

func (m *Mock) CanResetValue(component any) bool {
	m.CanResetValueCalled = true
	m.CanResetValueComponent = component
	return m.CanResetValueResult
}

func (m *Mock) ShouldSerializeValue(component any) bool {
	m.ShouldSerializeValueCalled = true
	m.ShouldSerializeValueComponent = component
	return m.ShouldSerializeValueResult
}

// Converter is a Converter with identity semantics, so distinct instances
// compare unequal.
type Converter struct {
	Label string
}

func (c *Converter) ConvertTo(value any) (string, error) {
	return fmt.Sprint(value), nil
}

func (c *Converter) ConvertFrom(text string) (any, error) {
	return text, nil
}

// Editor is a distinguishable editor object.
type Editor struct {
	Label string
}
