package overlay

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	descriptors "github.com/goliatone/go-descriptors"
	"github.com/goliatone/go-descriptors/layering"
)

// Scope names a precedence bucket (system, tenant, user, ...). Higher
// priorities are stronger.
type Scope struct {
	Name     string
	Label    string
	Priority int
	Metadata map[string]any
}

// ScopeOption configures metadata on Scope creation.
type ScopeOption func(*Scope)

// WithScopeLabel sets a human-friendly label on the scope.
func WithScopeLabel(label string) ScopeOption {
	return func(s *Scope) {
		s.Label = label
	}
}

// WithScopeMetadata attaches metadata to the scope. The map is copied.
func WithScopeMetadata(metadata map[string]any) ScopeOption {
	return func(s *Scope) {
		s.Metadata = copyMetadata(metadata)
	}
}

// NewScope builds a Scope. Validation is deferred to NewStack.
func NewScope(name string, priority int, opts ...ScopeOption) Scope {
	scope := Scope{Name: name, Priority: priority}
	for _, opt := range opts {
		if opt != nil {
			opt(&scope)
		}
	}
	return scope
}

func (s Scope) clone() Scope {
	s.Metadata = copyMetadata(s.Metadata)
	return s
}

// Layer pairs a scope with the overlay document captured for it.
type Layer struct {
	Scope      Scope
	Document   Document
	SnapshotID string
}

// LayerOption configures optional metadata for a layer.
type LayerOption func(*Layer)

// WithSnapshotID sets the snapshot identifier used for auditing.
func WithSnapshotID(id string) LayerOption {
	return func(layer *Layer) {
		layer.SnapshotID = id
	}
}

// NewLayer copies scope and doc into a Layer.
func NewLayer(scope Scope, doc Document, opts ...LayerOption) Layer {
	layer := Layer{
		Scope:    scope.clone(),
		Document: layering.Clone(doc),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&layer)
		}
	}
	return layer
}

func (l Layer) clone() Layer {
	return Layer{
		Scope:      l.Scope.clone(),
		Document:   layering.Clone(l.Document),
		SnapshotID: l.SnapshotID,
	}
}

var (
	// ErrScopeNameRequired indicates a layer without a scope name.
	ErrScopeNameRequired = errors.New("overlay: scope name must be provided")
	// ErrDuplicateScopeName indicates two layers share a scope name.
	ErrDuplicateScopeName = errors.New("overlay: scope names must be unique")
	// ErrPriorityOrder indicates two layers share a priority.
	ErrPriorityOrder = errors.New("overlay: scope priorities must be strictly ordered")
	// ErrEmptyStack indicates Merge was called on a stack without layers.
	ErrEmptyStack = errors.New("overlay: stack must include at least one layer")
)

// Stack is an immutable set of layers ordered from strongest to weakest.
type Stack struct {
	layers []Layer
}

// NewStack validates the layers and sorts them so the highest priority comes
// first. Layers are deep copied.
func NewStack(layers ...Layer) (*Stack, error) {
	seen := make(map[string]struct{}, len(layers))
	copied := make([]Layer, len(layers))
	for i, layer := range layers {
		layer := layer.clone()
		if layer.Scope.Name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, ok := seen[layer.Scope.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, layer.Scope.Name)
		}
		seen[layer.Scope.Name] = struct{}{}
		copied[i] = layer
	}

	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].Scope.Priority > copied[j].Scope.Priority
	})
	for i := 1; i < len(copied); i++ {
		if copied[i-1].Scope.Priority == copied[i].Scope.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Scope.Priority)
		}
	}

	return &Stack{layers: copied}, nil
}

// Layers returns a copy of the layers, strongest first.
func (s *Stack) Layers() []Layer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(s.layers))
	for i := range s.layers {
		out[i] = s.layers[i].clone()
	}
	return out
}

// Len returns the number of layers in the stack.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Merge resolves the stack into a single document. Each field of each
// property comes from the strongest layer that sets it. When expressions
// merge like any other field in Document; ApplyMerged evaluates them per
// layer instead.
func (s *Stack) Merge() (*Merged, error) {
	if s.Len() == 0 {
		return nil, ErrEmptyStack
	}
	docs := make([]Document, len(s.layers))
	for i := range s.layers {
		docs[i] = s.layers[i].Document
	}
	doc, provenance := layering.MergeWithProvenance(docs...)
	return &Merged{
		Document:   doc,
		layers:     s.Layers(),
		provenance: provenance,
	}, nil
}

// Merged is the result of Stack.Merge. It remembers which layer supplied
// each override.
type Merged struct {
	Document Document

	layers     []Layer
	provenance layering.Provenance
}

// Layers returns the contributing layers, strongest first.
func (m *Merged) Layers() []Layer {
	if m == nil {
		return nil
	}
	out := make([]Layer, len(m.layers))
	for i := range m.layers {
		out[i] = m.layers[i].clone()
	}
	return out
}

// Source returns the layer that supplied field for property. FieldEditor is
// not accepted here; use SourceEditor.
func (m *Merged) Source(property string, field descriptors.Field) (Layer, bool) {
	if field == descriptors.FieldEditor || field == descriptors.FieldUnknown {
		return Layer{}, false
	}
	return m.lookup("properties", property, field.String())
}

// SourceEditor returns the layer that supplied the editor for kind.
func (m *Merged) SourceEditor(property string, kind descriptors.EditorKind) (Layer, bool) {
	return m.lookup("properties", property, "editors", kind.String())
}

// strongest returns the strongest layer that contributed anything to
// property.
func (m *Merged) strongest(property string) (Layer, bool) {
	if m == nil {
		return Layer{}, false
	}
	prefix := "properties." + property + "."
	best := -1
	for path, index := range m.provenance {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		if best == -1 || index < best {
			best = index
		}
	}
	if best < 0 || best >= len(m.layers) {
		return Layer{}, false
	}
	return m.layers[best].clone(), true
}

func (m *Merged) lookup(parts ...string) (Layer, bool) {
	if m == nil {
		return Layer{}, false
	}
	index, ok := m.provenance[strings.Join(parts, ".")]
	if !ok || index >= len(m.layers) {
		return Layer{}, false
	}
	return m.layers[index].clone(), true
}

func copyMetadata(origin map[string]any) map[string]any {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]any, len(origin))
	for key, value := range origin {
		out[key] = value
	}
	return out
}
