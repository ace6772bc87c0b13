// Package hydrate decodes loosely typed overlay payloads (parsed YAML, JSON or
// values built in code) into typed documents.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies where a payload came from.
type Context struct {
	Source string
	Scope  string
}

func (c Context) label() string {
	if c.Scope == "" {
		return fmt.Sprintf("%q", c.Source)
	}
	return fmt.Sprintf("%q (scope %s)", c.Source, c.Scope)
}

// PreHook lets callers rewrite the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook validates or adjusts the decoded value.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts map payloads into T through a JSON round trip.
type Decoder[T any] struct {
	preHooks        []PreHook
	postHooks       []PostHook[T]
	useNumber       bool
	disallowUnknown bool
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithUseNumber decodes numbers into json.Number.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.useNumber = true
	}
}

// WithDisallowUnknownFields rejects payload keys that T does not declare.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.disallowUnknown = true
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into T applying the configured hooks. The caller's
// payload is never modified.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any) (T, error) {
	var zero T

	if payload == nil {
		return zero, fmt.Errorf("hydrate: payload is nil for %s", ctx.label())
	}

	current, err := clonePayload(payload)
	if err != nil {
		return zero, fmt.Errorf("hydrate: clone payload for %s: %w", ctx.label(), err)
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for %s failed: %w", ctx.label(), err)
		}
		if next != nil {
			current = next
		}
	}

	buffer, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("hydrate: marshal payload for %s: %w", ctx.label(), err)
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	if d.useNumber {
		decoder.UseNumber()
	}
	if d.disallowUnknown {
		decoder.DisallowUnknownFields()
	}
	var result T
	if err := decoder.Decode(&result); err != nil {
		return zero, fmt.Errorf("hydrate: decode %s: %w", ctx.label(), err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for %s failed: %w", ctx.label(), err)
		}
	}

	return result, nil
}

// RenameKeys returns a PreHook that renames top-level keys found in aliases.
// A key whose canonical name is already present is left alone.
func RenameKeys(aliases map[string]string) PreHook {
	return func(_ Context, payload map[string]any) (map[string]any, error) {
		out := make(map[string]any, len(payload))
		for key, value := range payload {
			target := key
			if canonical, ok := aliases[key]; ok {
				if _, exists := payload[canonical]; !exists {
					target = canonical
				}
			}
			out[target] = value
		}
		return out, nil
	}
}

// ForEachEntry returns a PreHook that runs hook on every map value stored under
// payload[key]. Entries that are not maps are left untouched.
func ForEachEntry(key string, hook PreHook) PreHook {
	return func(ctx Context, payload map[string]any) (map[string]any, error) {
		entries, ok := payload[key].(map[string]any)
		if !ok || hook == nil {
			return payload, nil
		}
		rewritten := make(map[string]any, len(entries))
		for name, entry := range entries {
			fields, ok := entry.(map[string]any)
			if !ok {
				rewritten[name] = entry
				continue
			}
			next, err := hook(ctx, fields)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", key, name, err)
			}
			if next == nil {
				next = fields
			}
			rewritten[name] = next
		}
		payload[key] = rewritten
		return payload, nil
	}
}

func clonePayload(payload map[string]any) (map[string]any, error) {
	buffer, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(buffer, &out); err != nil {
		return nil, err
	}
	return out, nil
}
