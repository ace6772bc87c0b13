package layering

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type propertyPatch struct {
	ReadOnly    *bool             `json:"readOnly,omitempty"`
	DisplayName *string           `json:"displayName,omitempty"`
	Editors     map[string]string `json:"editors,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
}

type patchSet struct {
	Version    int                      `json:"version"`
	Properties map[string]propertyPatch `json:"properties,omitempty"`
	Metadata   map[string]any           `json:"metadata,omitempty"`
}

func ptr[T any](v T) *T { return &v }

func TestMergeLayers(t *testing.T) {
	cases := []struct {
		name   string
		layers []patchSet
		expect patchSet
	}{
		{
			name: "stronger pointer wins",
			layers: []patchSet{
				{Properties: map[string]propertyPatch{"Title": {DisplayName: ptr("Headline")}}},
				{Properties: map[string]propertyPatch{"Title": {DisplayName: ptr("Title"), ReadOnly: ptr(true)}}},
			},
			expect: patchSet{Properties: map[string]propertyPatch{
				"Title": {DisplayName: ptr("Headline"), ReadOnly: ptr(true)},
			}},
		},
		{
			name: "maps merge key by key",
			layers: []patchSet{
				{Properties: map[string]propertyPatch{"Title": {Editors: map[string]string{"color": "swatch"}}}},
				{Properties: map[string]propertyPatch{
					"Title": {Editors: map[string]string{"text": "multiline", "color": "picker"}},
					"Body":  {ReadOnly: ptr(false)},
				}},
			},
			expect: patchSet{Properties: map[string]propertyPatch{
				"Title": {Editors: map[string]string{"text": "multiline", "color": "swatch"}},
				"Body":  {ReadOnly: ptr(false)},
			}},
		},
		{
			name: "slices replace wholesale",
			layers: []patchSet{
				{Properties: map[string]propertyPatch{"Title": {Tags: []string{"a"}}}},
				{Properties: map[string]propertyPatch{"Title": {Tags: []string{"b", "c"}}}},
			},
			expect: patchSet{Properties: map[string]propertyPatch{"Title": {Tags: []string{"a"}}}},
		},
		{
			name: "nil metadata defers to weaker layer",
			layers: []patchSet{
				{Version: 2},
				{Version: 1, Metadata: map[string]any{"source": "defaults"}},
			},
			expect: patchSet{Version: 2, Metadata: map[string]any{"source": "defaults"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MergeLayers(tc.layers...)
			if diff := cmp.Diff(tc.expect, got); diff != "" {
				t.Fatalf("merged snapshot mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeLayersZeroInput(t *testing.T) {
	type sample struct {
		Value int
	}
	var zero sample
	if got := MergeLayers[sample](); got != zero {
		t.Fatalf("expected MergeLayers() to return zero value, got %+v", got)
	}
}

func TestMergeLayersDoesNotAliasInputs(t *testing.T) {
	strong := patchSet{Properties: map[string]propertyPatch{"Title": {DisplayName: ptr("Headline")}}}
	weak := patchSet{Properties: map[string]propertyPatch{"Body": {ReadOnly: ptr(true)}}}

	merged := MergeLayers(strong, weak)
	*merged.Properties["Title"].DisplayName = "changed"
	merged.Properties["Extra"] = propertyPatch{}

	if *strong.Properties["Title"].DisplayName != "Headline" {
		t.Fatalf("strong layer was mutated through the merged value")
	}
	if _, ok := weak.Properties["Extra"]; ok {
		t.Fatalf("weak layer map was mutated through the merged value")
	}
}

func TestMergeWithProvenance(t *testing.T) {
	layers := []patchSet{
		{Version: 3, Properties: map[string]propertyPatch{"Title": {DisplayName: ptr("Headline")}}},
		{Properties: map[string]propertyPatch{
			"Title": {DisplayName: ptr("Title"), ReadOnly: ptr(true), Editors: map[string]string{"color": "picker"}},
		}},
	}

	_, provenance := MergeWithProvenance(layers...)

	want := Provenance{
		"version":                        0,
		"properties.Title.displayName":   0,
		"properties.Title.readOnly":      1,
		"properties.Title.editors.color": 1,
	}
	if diff := cmp.Diff(want, provenance); diff != "" {
		t.Fatalf("provenance mismatch (-want +got):\n%s", diff)
	}
}

func TestClone(t *testing.T) {
	original := patchSet{Properties: map[string]propertyPatch{"Title": {Tags: []string{"x"}}}}
	clone := Clone(original)
	clone.Properties["Title"].Tags[0] = "y"

	if original.Properties["Title"].Tags[0] != "x" {
		t.Fatalf("clone shares slice storage with original")
	}
	if got := Clone[*patchSet](nil); got != nil {
		t.Fatalf("expected nil clone, got %#v", got)
	}
}
