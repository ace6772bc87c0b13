package hydrate

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type propertyPatch struct {
	ReadOnly    *bool             `json:"readOnly,omitempty"`
	DisplayName *string           `json:"displayName,omitempty"`
	Editors     map[string]string `json:"editors,omitempty"`
}

type patchDocument struct {
	Version    int                      `json:"version"`
	Properties map[string]propertyPatch `json:"properties"`
}

var patchAliases = map[string]string{
	"read_only":    "readOnly",
	"display_name": "displayName",
}

func TestDecoderDecodesPayload(t *testing.T) {
	payload := map[string]any{
		"version": 1,
		"properties": map[string]any{
			"read_only": map[string]any{"description": nil},
			"Title": map[string]any{
				"display_name": "Headline",
				"read_only":    true,
				"editors":      map[string]any{"color": "picker"},
			},
		},
	}

	decoder := NewDecoder[patchDocument](WithPreHook[patchDocument](ForEachEntry("properties", RenameKeys(patchAliases))))
	got, err := decoder.Decode(Context{Source: "inline", Scope: "tenant"}, payload)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	readOnly := true
	name := "Headline"
	want := patchDocument{
		Version: 1,
		Properties: map[string]propertyPatch{
			"read_only": {},
			"Title":     {ReadOnly: &readOnly, DisplayName: &name, Editors: map[string]string{"color": "picker"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded document mismatch (-want +got):\n%s", diff)
	}

	title := payload["properties"].(map[string]any)["Title"].(map[string]any)
	if _, ok := title["display_name"]; !ok {
		t.Fatalf("caller payload should not be rewritten")
	}
}

func TestRenameKeysKeepsCanonicalKey(t *testing.T) {
	out, err := RenameKeys(patchAliases)(Context{}, map[string]any{
		"displayName":  "kept",
		"display_name": "alias",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["displayName"] != "kept" {
		t.Fatalf("canonical key should win, got %v", out["displayName"])
	}
}

func TestForEachEntryWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	hook := ForEachEntry("properties", func(Context, map[string]any) (map[string]any, error) {
		return nil, boom
	})
	_, err := hook(Context{}, map[string]any{"properties": map[string]any{"Title": map[string]any{}}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if !strings.Contains(err.Error(), "properties.Title") {
		t.Fatalf("expected entry path in error, got %v", err)
	}
}

func TestDecoderDisallowUnknownFields(t *testing.T) {
	decoder := NewDecoder[patchDocument](WithDisallowUnknownFields[patchDocument]())
	_, err := decoder.Decode(Context{Source: "overlay.yaml"}, map[string]any{"versions": 2})
	if err == nil {
		t.Fatalf("expected unknown field error")
	}
	if !strings.Contains(err.Error(), `hydrate: decode "overlay.yaml"`) {
		t.Fatalf("expected source in error, got %v", err)
	}
}

func TestDecoderUseNumber(t *testing.T) {
	decoder := NewDecoder[map[string]any](WithUseNumber[map[string]any]())
	got, err := decoder.Decode(Context{Source: "inline"}, map[string]any{"version": 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got["version"].(json.Number); !ok {
		t.Fatalf("expected json.Number, got %T", got["version"])
	}
}

func TestDecoderHookErrors(t *testing.T) {
	boom := errors.New("boom")

	pre := NewDecoder[patchDocument](WithPreHook[patchDocument](func(Context, map[string]any) (map[string]any, error) {
		return nil, boom
	}))
	if _, err := pre.Decode(Context{Source: "a"}, map[string]any{}); !errors.Is(err, boom) {
		t.Fatalf("expected pre-hook error, got %v", err)
	}

	post := NewDecoder[patchDocument](WithPostHook[patchDocument](func(ctx Context, doc *patchDocument) error {
		if doc.Version == 0 {
			return boom
		}
		return nil
	}))
	_, err := post.Decode(Context{Source: "b", Scope: "user"}, map[string]any{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected post-hook error, got %v", err)
	}
	if !strings.Contains(err.Error(), "scope user") {
		t.Fatalf("expected scope in error, got %v", err)
	}
}

func TestDecoderNilPayload(t *testing.T) {
	if _, err := NewDecoder[patchDocument]().Decode(Context{Source: "nil"}, nil); err == nil {
		t.Fatalf("expected error for nil payload")
	}
}
