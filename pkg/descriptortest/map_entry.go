package descriptortest

import (
	"fmt"
	"reflect"

	descriptors "github.com/goliatone/go-descriptors"
)

// MapEntry describes one key of a map[string]any component. It stands in for
// the host environment's reflected descriptors in examples.
type MapEntry struct {
	Key         string
	Type        reflect.Type
	Default     any
	ReadOnly    bool
	CategoryTag string
	Help        string
	Label       string
	Editors     map[descriptors.EditorKind]descriptors.Editor
}

var _ descriptors.PropertyDescriptor = MapEntry{}

func (e MapEntry) Name() string                { return e.Key }
func (e MapEntry) ComponentType() reflect.Type { return reflect.TypeOf(map[string]any{}) }
func (e MapEntry) PropertyType() reflect.Type  { return e.Type }
func (e MapEntry) IsReadOnly() bool            { return e.ReadOnly }
func (e MapEntry) Category() string            { return e.CategoryTag }
func (e MapEntry) Description() string         { return e.Help }

func (e MapEntry) DisplayName() string {
	if e.Label != "" {
		return e.Label
	}
	return e.Key
}

func (e MapEntry) Converter() descriptors.Converter { return nil }

func (e MapEntry) Editor(kind descriptors.EditorKind) descriptors.Editor {
	return e.Editors[kind]
}

func (e MapEntry) GetValue(component any) (any, error) {
	values, err := asMap(component)
	if err != nil {
		return nil, err
	}
	return values[e.Key], nil
}

func (e MapEntry) SetValue(component, value any) error {
	values, err := asMap(component)
	if err != nil {
		return err
	}
	if e.ReadOnly {
		return fmt.Errorf("descriptortest: %s is read-only", e.Key)
	}
	values[e.Key] = value
	return nil
}

func (e MapEntry) ResetValue(component any) error {
	values, err := asMap(component)
	if err != nil {
		return err
	}
	if e.Default == nil {
		delete(values, e.Key)
		return nil
	}
	values[e.Key] = e.Default
	return nil
}

func (e MapEntry) CanResetValue(component any) bool {
	values, err := asMap(component)
	if err != nil {
		return false
	}
	return !e.ReadOnly && !reflect.DeepEqual(values[e.Key], e.Default)
}

func (e MapEntry) ShouldSerializeValue(component any) bool {
	return e.CanResetValue(component)
}

func asMap(component any) (map[string]any, error) {
	values, ok := component.(map[string]any)
	if !ok || values == nil {
		return nil, fmt.Errorf("descriptortest: component must be a non-nil map[string]any, got %T", component)
	}
	return values, nil
}
