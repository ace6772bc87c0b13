package overlay_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-descriptors/overlay"
)

func ptr[T any](v T) *T { return &v }

func TestParseYAML(t *testing.T) {
	doc, err := overlay.Parse([]byte(`
version: 2
properties:
  Title:
    display_name: Headline
    read_only: true
    category: Content
    editors:
      color: swatch
      text: ""
  Body:
    description: Main copy
    converter: markdown
    when: status == "draft"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := overlay.Document{
		Version: ptr(2),
		Properties: map[string]overlay.PropertyOverlay{
			"Title": {
				DisplayName: ptr("Headline"),
				ReadOnly:    ptr(true),
				Category:    ptr("Content"),
				Editors:     map[string]string{"color": "swatch", "text": ""},
			},
			"Body": {
				Description: ptr("Main copy"),
				Converter:   ptr("markdown"),
				When:        ptr(`status == "draft"`),
			},
		},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
	if got := doc.PropertyNames(); !cmp.Equal(got, []string{"Body", "Title"}) {
		t.Fatalf("unexpected property names %v", got)
	}
}

func TestParseJSON(t *testing.T) {
	doc, err := overlay.Parse([]byte(`{"properties":{"Title":{"readOnly":false,"displayName":"Name"}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	entry := doc.Properties["Title"]
	if entry.ReadOnly == nil || *entry.ReadOnly {
		t.Fatalf("expected explicit readOnly=false, got %v", entry.ReadOnly)
	}
	if entry.DisplayName == nil || *entry.DisplayName != "Name" {
		t.Fatalf("unexpected display name %v", entry.DisplayName)
	}
}

func TestParseEmpty(t *testing.T) {
	doc, err := overlay.Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !doc.Empty() {
		t.Fatalf("expected empty document, got %#v", doc)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := overlay.ParseSource("tenant.yaml", []byte("properties:\n  Title:\n    colour: red\n"))
	if err == nil {
		t.Fatalf("expected unknown field error")
	}
	if !strings.Contains(err.Error(), "tenant.yaml") {
		t.Fatalf("expected source name in error, got %v", err)
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := overlay.Parse([]byte("properties: [")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFromMap(t *testing.T) {
	doc, err := overlay.FromMap(map[string]any{
		"properties": map[string]any{
			"Title": map[string]any{"displayname": "Headline", "editors": map[string]any{"color": "swatch"}},
		},
	})
	if err != nil {
		t.Fatalf("from map: %v", err)
	}
	if got := doc.Properties["Title"].DisplayName; got == nil || *got != "Headline" {
		t.Fatalf("unexpected display name %v", got)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]overlay.Document{
		"blank property":    {Properties: map[string]overlay.PropertyOverlay{" ": {}}},
		"blank editor kind": {Properties: map[string]overlay.PropertyOverlay{"Title": {Editors: map[string]string{"": "swatch"}}}},
		"blank when":        {Properties: map[string]overlay.PropertyOverlay{"Title": {When: ptr("  ")}}},
	}
	for name, doc := range cases {
		if err := doc.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	if _, err := overlay.FromMap(map[string]any{
		"properties": map[string]any{"Title": map[string]any{"when": ""}},
	}); err == nil {
		t.Fatalf("expected FromMap to validate")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	doc := overlay.Document{Properties: map[string]overlay.PropertyOverlay{
		"Title": {Category: ptr("Content"), Editors: map[string]string{"text": ""}},
	}}
	raw, err := doc.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := overlay.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(doc, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
