package state

import (
	"context"
	"fmt"

	"github.com/goliatone/go-descriptors/overlay"
)

// Resolver loads scoped overlay documents from a Store and merges them.
type Resolver struct {
	Store Store
}

// Resolve loads the document of domain for every scope and merges the ones
// that exist. Scopes without a document are skipped.
func (r Resolver) Resolve(ctx context.Context, domain string, scopes ...overlay.Scope) (*overlay.Merged, error) {
	if err := r.check(domain); err != nil {
		return nil, err
	}
	if len(scopes) == 0 {
		return nil, fmt.Errorf("state: at least one scope is required")
	}

	layers, err := r.load(ctx, domain, scopes)
	if err != nil {
		return nil, err
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("state: no layers found for domain %q", domain)
	}
	return merge(layers)
}

// ResolveWithDefaults is Resolve with defaults as the weakest layer. The
// defaults scope gets a priority below every supplied scope.
func (r Resolver) ResolveWithDefaults(ctx context.Context, domain string, defaults overlay.Document, scopes ...overlay.Scope) (*overlay.Merged, error) {
	if err := r.check(domain); err != nil {
		return nil, err
	}

	priorities := make(map[int]struct{}, len(scopes))
	lowest := 0
	for i, scope := range scopes {
		if scope.Name == DefaultsScopeName {
			return nil, fmt.Errorf("state: scope name %q is reserved", DefaultsScopeName)
		}
		priorities[scope.Priority] = struct{}{}
		if i == 0 || scope.Priority < lowest {
			lowest = scope.Priority
		}
	}
	defaultsPriority := 0
	if len(scopes) > 0 {
		defaultsPriority = lowest - 1
		for {
			if _, taken := priorities[defaultsPriority]; !taken {
				break
			}
			defaultsPriority--
		}
	}

	layers, err := r.load(ctx, domain, scopes)
	if err != nil {
		return nil, err
	}
	defaultsScope := overlay.NewScope(DefaultsScopeName, defaultsPriority, overlay.WithScopeLabel("Defaults"))
	layers = append(layers, overlay.NewLayer(defaultsScope, defaults))
	return merge(layers)
}

// Mutate loads the document at ref, applies fn, validates the result and
// saves it. A non-empty meta.ETag must match the stored ETag.
func (r Resolver) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator) (overlay.Document, Meta, error) {
	if err := r.check(ref.Domain); err != nil {
		return overlay.Document{}, Meta{}, err
	}
	if ref.Scope.Name == "" {
		return overlay.Document{}, Meta{}, fmt.Errorf("state: scope name is required")
	}
	if fn == nil {
		return overlay.Document{}, Meta{}, fmt.Errorf("state: mutator is required")
	}

	doc, loadedMeta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return overlay.Document{}, Meta{}, fmt.Errorf("state: load %q for scope %q: %w", ref.Domain, ref.Scope.Name, err)
	}
	if !ok {
		doc = overlay.Document{}
		loadedMeta = Meta{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return overlay.Document{}, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	if err := fn(&doc); err != nil {
		return overlay.Document{}, loadedMeta, err
	}
	if err := doc.Validate(); err != nil {
		return overlay.Document{}, loadedMeta, err
	}

	saved, err := r.Store.Save(ctx, ref, doc, mergeMeta(loadedMeta, meta))
	if err != nil {
		return overlay.Document{}, loadedMeta, fmt.Errorf("state: save %q for scope %q: %w", ref.Domain, ref.Scope.Name, err)
	}
	return doc, saved, nil
}

func (r Resolver) check(domain string) error {
	if r.Store == nil {
		return fmt.Errorf("state: store is required")
	}
	if domain == "" {
		return fmt.Errorf("state: domain is required")
	}
	return nil
}

func (r Resolver) load(ctx context.Context, domain string, scopes []overlay.Scope) ([]overlay.Layer, error) {
	layers := make([]overlay.Layer, 0, len(scopes)+1)
	for _, scope := range scopes {
		doc, meta, ok, err := r.Store.Load(ctx, Ref{Domain: domain, Scope: scope})
		if err != nil {
			return nil, fmt.Errorf("state: load %q for scope %q: %w", domain, scope.Name, err)
		}
		if !ok {
			continue
		}
		layers = append(layers, overlay.NewLayer(scope, doc, overlay.WithSnapshotID(meta.SnapshotID)))
	}
	return layers, nil
}

func merge(layers []overlay.Layer) (*overlay.Merged, error) {
	stack, err := overlay.NewStack(layers...)
	if err != nil {
		return nil, fmt.Errorf("state: stack: %w", err)
	}
	return stack.Merge()
}
