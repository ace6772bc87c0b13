package overlay

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	descriptors "github.com/goliatone/go-descriptors"
)

var (
	// ErrUnknownConverter indicates a document names an unregistered converter.
	ErrUnknownConverter = errors.New("overlay: unknown converter")
	// ErrUnknownEditor indicates a document names an unregistered editor.
	ErrUnknownEditor = errors.New("overlay: unknown editor")
)

// Registry resolves the converter and editor names used by documents. It is
// safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]descriptors.Converter
	editors    map[string]descriptors.Editor
}

func NewRegistry() *Registry {
	return &Registry{
		converters: map[string]descriptors.Converter{},
		editors:    map[string]descriptors.Editor{},
	}
}

// RegisterConverter stores converter under name guarding against duplicates.
func (r *Registry) RegisterConverter(name string, converter descriptors.Converter) error {
	if name == "" {
		return fmt.Errorf("overlay: converter name must not be empty")
	}
	if converter == nil {
		return fmt.Errorf("overlay: converter %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.converters[name]; exists {
		return fmt.Errorf("overlay: converter %q already registered", name)
	}
	r.converters[name] = converter
	return nil
}

// RegisterEditor stores editor under name guarding against duplicates.
func (r *Registry) RegisterEditor(name string, editor descriptors.Editor) error {
	if name == "" {
		return fmt.Errorf("overlay: editor name must not be empty")
	}
	if editor == nil {
		return fmt.Errorf("overlay: editor %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.editors[name]; exists {
		return fmt.Errorf("overlay: editor %q already registered", name)
	}
	r.editors[name] = editor
	return nil
}

// Converter resolves name, failing with ErrUnknownConverter.
func (r *Registry) Converter(name string) (descriptors.Converter, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConverter, name)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	converter, ok := r.converters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConverter, name)
	}
	return converter, nil
}

// Editor resolves name, failing with ErrUnknownEditor.
func (r *Registry) Editor(name string) (descriptors.Editor, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEditor, name)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	editor, ok := r.editors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEditor, name)
	}
	return editor, nil
}

// Names returns the registered converter and editor names, sorted.
func (r *Registry) Names() (converters, editors []string) {
	if r == nil {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name := range r.converters {
		converters = append(converters, name)
	}
	for name := range r.editors {
		editors = append(editors, name)
	}
	sort.Strings(converters)
	sort.Strings(editors)
	return converters, editors
}
