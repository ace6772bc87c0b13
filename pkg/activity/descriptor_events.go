package activity

import (
	"strings"
	"time"
)

const (
	VerbOverrideSet    = "descriptor.override.set"
	VerbEditorSet      = "descriptor.editor.set"
	VerbEditorCleared  = "descriptor.editor.cleared"
	VerbOverlayApplied = "descriptor.overlay.applied"

	ObjectTypeDescriptor = "descriptor"
	ObjectTypeOverlay    = "descriptor.overlay"
)

// ScopeContext identifies the overlay scope an event originated from.
type ScopeContext struct {
	Name       string
	Label      string
	Priority   int
	Metadata   map[string]any
	SnapshotID string
}

// DescriptorEventInput describes the common fields for descriptor override
// events.
type DescriptorEventInput struct {
	ActorID       string
	UserID        string
	TenantID      string
	Channel       string
	Metadata      map[string]any
	Property      string
	ComponentType string
	Field         string
	EditorKind    string
	NewValue      any
	Scope         ScopeContext
	OccurredAt    time.Time
}

// BuildOverrideSetEvent records a scalar metadata override.
func BuildOverrideSetEvent(input DescriptorEventInput) Event {
	return buildDescriptorEvent(VerbOverrideSet, ObjectTypeDescriptor, input)
}

// BuildEditorSetEvent records an editor override for one editor kind.
func BuildEditorSetEvent(input DescriptorEventInput) Event {
	return buildDescriptorEvent(VerbEditorSet, ObjectTypeDescriptor, input)
}

// BuildEditorClearedEvent records the removal of an editor override.
func BuildEditorClearedEvent(input DescriptorEventInput) Event {
	return buildDescriptorEvent(VerbEditorCleared, ObjectTypeDescriptor, input)
}

// BuildOverlayAppliedEvent records an overlay document applied to a
// descriptor set.
func BuildOverlayAppliedEvent(input DescriptorEventInput) Event {
	return buildDescriptorEvent(VerbOverlayApplied, ObjectTypeOverlay, input)
}

func buildDescriptorEvent(verb, objectType string, input DescriptorEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if value := strings.TrimSpace(input.Field); value != "" {
		metadata = ensureMetadata(metadata)
		metadata[MetaField] = value
	}
	if value := strings.TrimSpace(input.EditorKind); value != "" {
		metadata = ensureMetadata(metadata)
		metadata[MetaEditorKind] = value
	}
	if value := strings.TrimSpace(input.ComponentType); value != "" {
		metadata = ensureMetadata(metadata)
		metadata[MetaComponentType] = value
	}
	if input.NewValue != nil {
		metadata = ensureMetadata(metadata)
		metadata[MetaNewValue] = input.NewValue
	}
	if input.Scope.Name != "" {
		metadata = ensureMetadata(metadata)
		metadata[MetaScopeName] = input.Scope.Name
		metadata[MetaScopePriority] = input.Scope.Priority
		if input.Scope.Label != "" {
			metadata[MetaScopeLabel] = input.Scope.Label
		}
		if len(input.Scope.Metadata) > 0 {
			metadata[MetaScopeMetadata] = cloneMap(input.Scope.Metadata)
		}
	}
	if input.Scope.SnapshotID != "" {
		metadata = ensureMetadata(metadata)
		metadata[MetaSnapshotID] = input.Scope.SnapshotID
	}

	objectID := strings.TrimSpace(input.Property)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Scope.SnapshotID)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
