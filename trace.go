package descriptors

import (
	"encoding/json"
	"fmt"
)

// Source names where an effective metadata value came from.
type Source string

const (
	SourceBase     Source = "base"
	SourceOverride Source = "override"
)

// Trace captures where the effective value of one metadata field comes from.
type Trace struct {
	Property string     `json:"property"`
	Field    Field      `json:"field"`
	Kind     EditorKind `json:"kind,omitempty"`
	Source   Source     `json:"source"`
	// Value is the live value. ToJSON keeps it only for strings and bools.
	Value any `json:"value,omitempty"`
	// ValueType is the Go type of a converter or editor value.
	ValueType string `json:"valueType,omitempty"`
}

// Trace reports the effective value of field and whether it comes from an
// override or the base descriptor. Use TraceEditor for FieldEditor.
func (d *Dynamic) Trace(field Field) Trace {
	trace := Trace{
		Property: d.base.Name(),
		Field:    field,
		Source:   SourceBase,
	}
	if d.Overridden(field) && field != FieldEditor {
		trace.Source = SourceOverride
	}
	switch field {
	case FieldReadOnly:
		trace.Value = d.IsReadOnly()
	case FieldCategory:
		trace.Value = d.Category()
	case FieldConverter:
		trace.setObject(d.Converter())
	case FieldDescription:
		trace.Value = d.Description()
	case FieldDisplayName:
		trace.Value = d.DisplayName()
	}
	return trace
}

// TraceEditor reports the effective editor for kind and its source.
func (d *Dynamic) TraceEditor(kind EditorKind) Trace {
	trace := Trace{
		Property: d.base.Name(),
		Field:    FieldEditor,
		Kind:     kind,
		Source:   SourceBase,
	}
	if _, ok := d.editors[kind]; ok {
		trace.Source = SourceOverride
	}
	trace.setObject(d.Editor(kind))
	return trace
}

func (t *Trace) setObject(value any) {
	if isNil(value) {
		return
	}
	t.Value = value
	t.ValueType = fmt.Sprintf("%T", value)
}

// scalarValue returns value when it can travel as JSON unchanged.
func scalarValue(value any) (any, bool) {
	switch v := value.(type) {
	case string, bool:
		return v, true
	}
	return nil, false
}

// ToJSON serialises the trace for logging or transport helpers. Converter
// and editor values are described by ValueType only.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	t.Value, _ = scalarValue(t.Value)
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
