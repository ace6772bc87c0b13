package descriptors_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	descriptors "github.com/goliatone/go-descriptors"
	"github.com/goliatone/go-descriptors/pkg/descriptortest"
)

func newDynamic(t *testing.T, base descriptors.PropertyDescriptor, opts ...descriptors.Option) *descriptors.Dynamic {
	t.Helper()
	dynamic, err := descriptors.NewDynamic(base, opts...)
	if err != nil {
		t.Fatalf("new dynamic: %v", err)
	}
	return dynamic
}

func TestNewDynamicRejectsNilDescriptor(t *testing.T) {
	var typedNil *descriptortest.Mock
	for name, base := range map[string]descriptors.PropertyDescriptor{
		"nil":       nil,
		"typed nil": typedNil,
	} {
		t.Run(name, func(t *testing.T) {
			dynamic, err := descriptors.NewDynamic(base)
			if dynamic != nil {
				t.Fatalf("expected no decorator, got %+v", dynamic)
			}
			if !errors.Is(err, descriptors.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			var argErr *descriptors.ArgumentError
			if !errors.As(err, &argErr) || argErr.Argument != "descriptor" {
				t.Fatalf("expected ArgumentError for descriptor, got %#v", err)
			}
			if !strings.Contains(err.Error(), "descriptor must not be nil") {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestMustDynamicPanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	descriptors.MustDynamic(nil)
}

func TestForwardingOperations(t *testing.T) {
	mock := descriptortest.NewMock("Title")
	dynamic := newDynamic(t, mock)
	component := &struct{ ID int }{ID: 1}

	if dynamic.Name() != "Title" {
		t.Fatalf("expected name forwarded, got %q", dynamic.Name())
	}

	mock.ComponentTypeResult = reflect.TypeOf("")
	mock.PropertyTypeResult = reflect.TypeOf(0)
	if dynamic.ComponentType() != reflect.TypeOf("") || dynamic.PropertyType() != reflect.TypeOf(0) {
		t.Fatalf("types not forwarded: %v %v", dynamic.ComponentType(), dynamic.PropertyType())
	}

	result := &struct{}{}
	mock.GetValueResult = result
	got, err := dynamic.GetValue(component)
	if err != nil || got != result {
		t.Fatalf("GetValue = %v, %v", got, err)
	}
	if mock.GetValueComponent != component {
		t.Fatalf("GetValue component not forwarded")
	}

	value := &struct{}{}
	if err := dynamic.SetValue(component, value); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if !mock.SetValueCalled || mock.SetValueComponent != component || mock.SetValueValue != value {
		t.Fatalf("SetValue not forwarded: %+v", mock)
	}

	if err := dynamic.ResetValue(component); err != nil {
		t.Fatalf("ResetValue: %v", err)
	}
	if !mock.ResetValueCalled || mock.ResetValueComponent != component {
		t.Fatalf("ResetValue not forwarded")
	}

	for _, want := range []bool{true, false} {
		mock.CanResetValueResult = want
		mock.ShouldSerializeValueResult = want
		if dynamic.CanResetValue(component) != want {
			t.Fatalf("CanResetValue expected %v", want)
		}
		if dynamic.ShouldSerializeValue(component) != want {
			t.Fatalf("ShouldSerializeValue expected %v", want)
		}
		if mock.CanResetValueComponent != component || mock.ShouldSerializeValueComponent != component {
			t.Fatalf("component not forwarded")
		}
	}
}

func TestForwardingPropagatesErrorsUnchanged(t *testing.T) {
	mock := descriptortest.NewMock("Title")
	mock.GetValueErr = errors.New("get failed")
	mock.SetValueErr = errors.New("set failed")
	mock.ResetValueErr = errors.New("reset failed")
	dynamic := newDynamic(t, mock)

	if _, err := dynamic.GetValue(nil); err != mock.GetValueErr {
		t.Fatalf("expected get error identity, got %v", err)
	}
	if err := dynamic.SetValue(nil, 1); err != mock.SetValueErr {
		t.Fatalf("expected set error identity, got %v", err)
	}
	if err := dynamic.ResetValue(nil); err != mock.ResetValueErr {
		t.Fatalf("expected reset error identity, got %v", err)
	}
}

func TestStringOverridesTrackBaseUntilSet(t *testing.T) {
	cases := []struct {
		name string
		base func(*descriptortest.Mock, string)
		get  func(*descriptors.Dynamic) string
		set  func(*descriptors.Dynamic, string)
	}{
		{
			name: "category",
			base: func(m *descriptortest.Mock, v string) { m.CategoryResult = v },
			get:  (*descriptors.Dynamic).Category,
			set:  (*descriptors.Dynamic).SetCategory,
		},
		{
			name: "description",
			base: func(m *descriptortest.Mock, v string) { m.DescriptionResult = v },
			get:  (*descriptors.Dynamic).Description,
			set:  (*descriptors.Dynamic).SetDescription,
		},
		{
			name: "displayName",
			base: func(m *descriptortest.Mock, v string) { m.DisplayNameResult = v },
			get:  (*descriptors.Dynamic).DisplayName,
			set:  (*descriptors.Dynamic).SetDisplayName,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := descriptortest.NewMock("Title")
			dynamic := newDynamic(t, mock)

			for _, v := range []string{"Base", "Changed", ""} {
				tc.base(mock, v)
				if got := tc.get(dynamic); got != v {
					t.Fatalf("expected base value %q, got %q", v, got)
				}
			}

			tc.base(mock, "Base")
			tc.set(dynamic, "Override")
			if got := tc.get(dynamic); got != "Override" {
				t.Fatalf("expected override, got %q", got)
			}
			tc.base(mock, "Changed")
			if got := tc.get(dynamic); got != "Override" {
				t.Fatalf("override must hide base changes, got %q", got)
			}
			tc.set(dynamic, "")
			if got := tc.get(dynamic); got != "" {
				t.Fatalf("empty override must still win, got %q", got)
			}
		})
	}
}

func TestCategoryScenario(t *testing.T) {
	mock := descriptortest.NewMock("Title")
	mock.CategoryResult = "Base"
	dynamic := newDynamic(t, mock)

	if dynamic.Category() != "Base" {
		t.Fatalf("expected Base, got %q", dynamic.Category())
	}
	dynamic.SetCategory("Override")
	if dynamic.Category() != "Override" {
		t.Fatalf("expected Override, got %q", dynamic.Category())
	}
}

func TestIsReadOnly(t *testing.T) {
	for _, base := range []bool{true, false} {
		mock := descriptortest.NewMock("Title")
		mock.IsReadOnlyResult = base
		if got := newDynamic(t, mock).IsReadOnly(); got != base {
			t.Fatalf("no override: expected %v, got %v", base, got)
		}
		for _, override := range []bool{true, false} {
			dynamic := newDynamic(t, mock)
			dynamic.SetReadOnly(override)
			if got := dynamic.IsReadOnly(); got != override {
				t.Fatalf("base %v override %v: got %v", base, override, got)
			}
		}
	}
}

func TestConverterOverride(t *testing.T) {
	baseConverter := &descriptortest.Converter{Label: "base"}
	overrideConverter := &descriptortest.Converter{Label: "override"}
	mock := descriptortest.NewMock("Title")
	mock.ConverterResult = baseConverter
	dynamic := newDynamic(t, mock)

	if dynamic.Converter() != baseConverter {
		t.Fatalf("expected base converter")
	}
	dynamic.SetConverter(overrideConverter)
	if dynamic.Converter() != overrideConverter {
		t.Fatalf("expected override converter")
	}
	dynamic.SetConverter(nil)
	if dynamic.Converter() != nil {
		t.Fatalf("expected nil converter override to stick, got %v", dynamic.Converter())
	}
	if !dynamic.Overridden(descriptors.FieldConverter) {
		t.Fatalf("converter should report overridden")
	}
}

func TestEditorOverrides(t *testing.T) {
	const kind descriptors.EditorKind = "dropdown"
	baseEditor := &descriptortest.Editor{Label: "base"}
	first := &descriptortest.Editor{Label: "first"}
	second := &descriptortest.Editor{Label: "second"}

	mock := descriptortest.NewMock("Title")
	mock.EditorResult = baseEditor
	dynamic := newDynamic(t, mock)

	if dynamic.Editor(kind) != baseEditor {
		t.Fatalf("expected base editor before override")
	}
	if mock.EditorRequest != kind {
		t.Fatalf("expected kind forwarded, got %q", mock.EditorRequest)
	}

	dynamic.SetEditor(kind, first)
	if dynamic.Editor(kind) != first {
		t.Fatalf("expected first override")
	}
	dynamic.SetEditor(kind, second)
	if dynamic.Editor(kind) != second {
		t.Fatalf("expected most recent override")
	}

	dynamic.SetEditor(kind, nil)
	if dynamic.Editor(kind) != baseEditor {
		t.Fatalf("expected base editor after clear")
	}
	if len(dynamic.EditorKinds()) != 0 {
		t.Fatalf("clear should remove the entry, got %v", dynamic.EditorKinds())
	}

	var typedNil *descriptortest.Editor
	dynamic.SetEditor(kind, first)
	dynamic.SetEditor(kind, typedNil)
	if dynamic.Editor(kind) != baseEditor {
		t.Fatalf("typed nil editor should clear the override")
	}
}

func TestEditorOverridesAreKeyedPerKind(t *testing.T) {
	mock := descriptortest.NewMock("Body")
	textEditor := &descriptortest.Editor{Label: "text"}
	mock.Editors = map[descriptors.EditorKind]descriptors.Editor{"text": textEditor}
	markdown := &descriptortest.Editor{Label: "markdown"}
	dynamic := newDynamic(t, mock)

	dynamic.SetEditor("rich", markdown)
	dynamic.SetEditor("code", &descriptortest.Editor{Label: "code"})

	if dynamic.Editor("text") != textEditor {
		t.Fatalf("untouched kind must defer to base")
	}
	if dynamic.Editor("rich") != markdown {
		t.Fatalf("expected rich override")
	}
	if got := dynamic.EditorKinds(); !reflect.DeepEqual(got, []descriptors.EditorKind{"code", "rich"}) {
		t.Fatalf("unexpected kinds %v", got)
	}
}

func TestDecoratorsCompose(t *testing.T) {
	mock := descriptortest.NewMock("Title")
	mock.CategoryResult = "Base"
	mock.DescriptionResult = "Base description"
	inner := newDynamic(t, mock)
	inner.SetCategory("Inner")
	outer := newDynamic(t, inner)

	if outer.Category() != "Inner" || outer.Description() != "Base description" {
		t.Fatalf("outer should see inner overrides: %q %q", outer.Category(), outer.Description())
	}
	outer.SetCategory("Outer")
	if outer.Category() != "Outer" || inner.Category() != "Inner" {
		t.Fatalf("outer override must not leak inward")
	}
	if outer.Base() != inner {
		t.Fatalf("Base should return the wrapped decorator")
	}
	if descriptors.Unwrap(outer) != mock {
		t.Fatalf("Unwrap should reach the innermost descriptor")
	}
	if descriptors.Unwrap(mock) != mock {
		t.Fatalf("Unwrap of a plain descriptor is itself")
	}
}

func TestOverridesNeverMutateBase(t *testing.T) {
	mock := descriptortest.NewMock("Title")
	mock.CategoryResult = "Base"
	mock.IsReadOnlyResult = true
	dynamic := newDynamic(t, mock)

	dynamic.SetCategory("Override")
	dynamic.SetReadOnly(false)
	dynamic.SetEditor("text", &descriptortest.Editor{})

	if mock.CategoryResult != "Base" || !mock.IsReadOnlyResult || mock.Category() != "Base" {
		t.Fatalf("base descriptor mutated: %+v", mock)
	}
}

func TestEditorKindOf(t *testing.T) {
	if got := descriptors.EditorKindOf[descriptortest.Editor](); got != "github.com/goliatone/go-descriptors/pkg/descriptortest.Editor" {
		t.Fatalf("unexpected kind %q", got)
	}
	if got := descriptors.EditorKindOf[*descriptortest.Editor](); got != "*descriptortest.Editor" {
		t.Fatalf("unexpected pointer kind %q", got)
	}
	if descriptors.EditorKindOf[string]() != "string" {
		t.Fatalf("unexpected builtin kind")
	}
}
