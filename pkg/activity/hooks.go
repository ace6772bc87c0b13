// Package activity fans descriptor override events out to audit hooks.
package activity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Metadata keys written by the descriptor event builders.
const (
	MetaField         = "field"
	MetaFields        = "fields"
	MetaEditorKind    = "editor_kind"
	MetaComponentType = "component_type"
	MetaNewValue      = "new_value"
	MetaScopeName     = "scope_name"
	MetaScopeLabel    = "scope_label"
	MetaScopePriority = "scope_priority"
	MetaScopeMetadata = "scope_metadata"
	MetaSnapshotID    = "snapshot_id"
)

// Event describes one override change or overlay application. ObjectID is
// the property name. IDs stay strings so call sites are not tied to a UUID
// type.
type Event struct {
	Verb       string
	ActorID    string
	UserID     string
	TenantID   string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Property returns the descriptor property the event is about.
func (e Event) Property() string {
	return e.ObjectID
}

// Field returns the overridden metadata field. It is empty for editor and
// overlay events.
func (e Event) Field() string {
	return e.metaString(MetaField)
}

// EditorKind returns the editor kind of an editor event.
func (e Event) EditorKind() string {
	return e.metaString(MetaEditorKind)
}

// ScopeName returns the overlay scope that produced the event, if any.
func (e Event) ScopeName() string {
	return e.metaString(MetaScopeName)
}

func (e Event) metaString(key string) string {
	value, _ := e.Metadata[key].(string)
	return value
}

// ActivityHook receives normalized events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// ForVerbs restricts hook to the listed verbs. A pattern ending in ".*"
// matches every verb below that prefix, so "descriptor.editor.*" covers
// both editor set and cleared events.
func ForVerbs(hook ActivityHook, patterns ...string) ActivityHook {
	return HookFunc(func(ctx context.Context, event Event) error {
		if hook == nil || !matchVerb(event.Verb, patterns) {
			return nil
		}
		return hook.Notify(ctx, event)
	})
}

func matchVerb(verb string, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if prefix, ok := strings.CutSuffix(pattern, ".*"); ok {
			if strings.HasPrefix(verb, prefix+".") {
				return true
			}
			continue
		}
		if verb == pattern {
			return true
		}
	}
	return false
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes event and forwards it to every hook. Events missing a
// verb, object type or property are dropped. Hook failures are joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	normalized := NormalizeEvent(event)
	if !normalized.complete() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims identifiers, clones metadata and stamps OccurredAt
// when missing.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.Verb = strings.TrimSpace(event.Verb)
	normalized.ActorID = strings.TrimSpace(event.ActorID)
	normalized.UserID = strings.TrimSpace(event.UserID)
	normalized.TenantID = strings.TrimSpace(event.TenantID)
	normalized.ObjectType = strings.TrimSpace(event.ObjectType)
	normalized.ObjectID = strings.TrimSpace(event.ObjectID)
	normalized.Channel = strings.TrimSpace(event.Channel)
	normalized.Metadata = cloneMap(event.Metadata)
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}

func (e Event) complete() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
