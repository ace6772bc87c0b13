package descriptors

import (
	"context"

	"github.com/goliatone/go-descriptors/pkg/activity"
)

func (d *Dynamic) recordOverride(field Field, value any) {
	event := OverrideLogEvent{
		Property: d.base.Name(),
		Field:    field,
		Value:    value,
	}
	if d.cfg.emitter.Enabled() {
		event.Err = d.cfg.emitter.Emit(context.Background(), activity.BuildOverrideSetEvent(d.eventInput(field, "", value)))
	}
	d.cfg.overrideLogger().LogOverride(event)
}

func (d *Dynamic) recordEditor(kind EditorKind, editor Editor, cleared bool) {
	event := OverrideLogEvent{
		Property: d.base.Name(),
		Field:    FieldEditor,
		Kind:     kind,
		Value:    editor,
		Cleared:  cleared,
	}
	if d.cfg.emitter.Enabled() {
		input := d.eventInput(FieldEditor, kind, editor)
		if cleared {
			event.Err = d.cfg.emitter.Emit(context.Background(), activity.BuildEditorClearedEvent(input))
		} else {
			event.Err = d.cfg.emitter.Emit(context.Background(), activity.BuildEditorSetEvent(input))
		}
	}
	d.cfg.overrideLogger().LogOverride(event)
}

func (d *Dynamic) eventInput(field Field, kind EditorKind, value any) activity.DescriptorEventInput {
	input := activity.DescriptorEventInput{
		ActorID:    d.cfg.actorID,
		TenantID:   d.cfg.tenantID,
		Property:   d.base.Name(),
		Field:      field.String(),
		EditorKind: kind.String(),
	}
	input.NewValue, _ = scalarValue(value)
	if component := d.base.ComponentType(); component != nil {
		input.ComponentType = component.String()
	}
	return input
}
