package descriptors

import (
	"reflect"
	"sort"
)

// Dynamic decorates a PropertyDescriptor with runtime metadata overrides.
// Unset overrides and editor kinds without an entry defer to the wrapped
// descriptor. A Dynamic is owned by a single caller; it performs no locking.
type Dynamic struct {
	base PropertyDescriptor

	readOnly    Optional[bool]
	category    Optional[string]
	converter   Optional[Converter]
	description Optional[string]
	displayName Optional[string]
	editors     map[EditorKind]Editor

	cfg dynamicConfig
}

var _ PropertyDescriptor = (*Dynamic)(nil)

// NewDynamic wraps base. It fails with ErrInvalidArgument when base is nil.
func NewDynamic(base PropertyDescriptor, opts ...Option) (*Dynamic, error) {
	if isNilDescriptor(base) {
		return nil, nilArgument("descriptor")
	}
	return &Dynamic{
		base:    base,
		editors: map[EditorKind]Editor{},
		cfg:     applyOptions(opts),
	}, nil
}

// MustDynamic is like NewDynamic but panics on error.
func MustDynamic(base PropertyDescriptor, opts ...Option) *Dynamic {
	d, err := NewDynamic(base, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Base returns the wrapped descriptor.
func (d *Dynamic) Base() PropertyDescriptor {
	return d.base
}

// Unwrap follows Base through any chain of decorators and returns the
// innermost descriptor.
func Unwrap(descriptor PropertyDescriptor) PropertyDescriptor {
	for {
		wrapper, ok := descriptor.(interface{ Base() PropertyDescriptor })
		if !ok {
			return descriptor
		}
		inner := wrapper.Base()
		if isNilDescriptor(inner) {
			return descriptor
		}
		descriptor = inner
	}
}

func (d *Dynamic) Name() string                { return d.base.Name() }
func (d *Dynamic) ComponentType() reflect.Type { return d.base.ComponentType() }
func (d *Dynamic) PropertyType() reflect.Type  { return d.base.PropertyType() }

func (d *Dynamic) GetValue(component any) (any, error) {
	return d.base.GetValue(component)
}

func (d *Dynamic) SetValue(component, value any) error {
	return d.base.SetValue(component, value)
}

func (d *Dynamic) ResetValue(component any) error {
	return d.base.ResetValue(component)
}

func (d *Dynamic) CanResetValue(component any) bool {
	return d.base.CanResetValue(component)
}

func (d *Dynamic) ShouldSerializeValue(component any) bool {
	return d.base.ShouldSerializeValue(component)
}

// IsReadOnly returns the read-only override, or the base value when unset.
func (d *Dynamic) IsReadOnly() bool {
	return d.readOnly.Or(d.base.IsReadOnly)
}

// SetReadOnly overrides IsReadOnly for the lifetime of the decorator.
func (d *Dynamic) SetReadOnly(readOnly bool) {
	d.readOnly = Some(readOnly)
	d.recordOverride(FieldReadOnly, readOnly)
}

// Category returns the category override, or the base value when unset.
func (d *Dynamic) Category() string {
	return d.category.Or(d.base.Category)
}

// SetCategory overrides Category for the lifetime of the decorator.
func (d *Dynamic) SetCategory(category string) {
	d.category = Some(category)
	d.recordOverride(FieldCategory, category)
}

// Converter returns the converter override, or the base value when unset.
func (d *Dynamic) Converter() Converter {
	return d.converter.Or(d.base.Converter)
}

// SetConverter overrides Converter for the lifetime of the decorator. A nil
// converter is recorded as an override like any other value.
func (d *Dynamic) SetConverter(converter Converter) {
	d.converter = Some(converter)
	d.recordOverride(FieldConverter, converter)
}

// Description returns the description override, or the base value when unset.
func (d *Dynamic) Description() string {
	return d.description.Or(d.base.Description)
}

// SetDescription overrides Description for the lifetime of the decorator.
func (d *Dynamic) SetDescription(description string) {
	d.description = Some(description)
	d.recordOverride(FieldDescription, description)
}

// DisplayName returns the display name override, or the base value when unset.
func (d *Dynamic) DisplayName() string {
	return d.displayName.Or(d.base.DisplayName)
}

// SetDisplayName overrides DisplayName for the lifetime of the decorator.
func (d *Dynamic) SetDisplayName(displayName string) {
	d.displayName = Some(displayName)
	d.recordOverride(FieldDisplayName, displayName)
}

// Editor returns the override registered for kind, or the base descriptor's
// editor when kind has no override.
func (d *Dynamic) Editor(kind EditorKind) Editor {
	if editor, ok := d.editors[kind]; ok {
		return editor
	}
	return d.base.Editor(kind)
}

// SetEditor overrides the editor for kind. Passing a nil editor removes the
// override so Editor(kind) defers to the base descriptor again.
func (d *Dynamic) SetEditor(kind EditorKind, editor Editor) {
	if isNilEditor(editor) {
		delete(d.editors, kind)
		d.recordEditor(kind, nil, true)
		return
	}
	d.editors[kind] = editor
	d.recordEditor(kind, editor, false)
}

// EditorKinds returns the kinds that currently carry an override, sorted.
func (d *Dynamic) EditorKinds() []EditorKind {
	kinds := make([]EditorKind, 0, len(d.editors))
	for kind := range d.editors {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Overridden reports whether field currently holds an override. For
// FieldEditor it reports whether any editor kind is overridden.
func (d *Dynamic) Overridden(field Field) bool {
	switch field {
	case FieldReadOnly:
		return d.readOnly.IsSet()
	case FieldCategory:
		return d.category.IsSet()
	case FieldConverter:
		return d.converter.IsSet()
	case FieldDescription:
		return d.description.IsSet()
	case FieldDisplayName:
		return d.displayName.IsSet()
	case FieldEditor:
		return len(d.editors) > 0
	default:
		return false
	}
}

// IsNil reports whether descriptor is nil, including a typed nil pointer
// such as (*Dynamic)(nil) held in the interface.
func IsNil(descriptor PropertyDescriptor) bool {
	return isNil(descriptor)
}

func isNilDescriptor(descriptor PropertyDescriptor) bool {
	return isNil(descriptor)
}

func isNilEditor(editor Editor) bool {
	return isNil(editor)
}

// isNil also catches typed nil pointers stored in an interface.
func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
