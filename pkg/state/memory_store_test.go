package state_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-descriptors/overlay"
	"github.com/goliatone/go-descriptors/pkg/state"
)

func ptr[T any](v T) *T { return &v }

func systemRef() state.Ref {
	return state.Ref{Domain: "article", Scope: overlay.NewScope("system", 10)}
}

func tenantScope() overlay.Scope {
	return overlay.NewScope("tenant", 20, overlay.WithScopeMetadata(map[string]any{"tenant_id": "acme"}))
}

func TestMemoryStoreSaveAssignsSnapshotIDs(t *testing.T) {
	store := state.NewMemoryStore()
	ctx := context.Background()
	doc := overlay.Document{Properties: map[string]overlay.PropertyOverlay{"Title": {DisplayName: ptr("Headline")}}}

	first, err := store.Save(ctx, systemRef(), doc, state.Meta{Extra: map[string]string{"author": "ana"}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := uuid.Parse(first.SnapshotID); err != nil {
		t.Fatalf("expected uuid snapshot id, got %q", first.SnapshotID)
	}
	if first.ETag == "" || first.UpdatedAt.IsZero() || first.Extra["author"] != "ana" {
		t.Fatalf("unexpected meta %+v", first)
	}

	second, err := store.Save(ctx, systemRef(), doc, state.Meta{ETag: first.ETag})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.SnapshotID == first.SnapshotID || second.ETag == first.ETag {
		t.Fatalf("expected fresh snapshot id and etag, got %+v then %+v", first, second)
	}

	if _, err := store.Save(ctx, systemRef(), doc, state.Meta{ETag: first.ETag}); !errors.Is(err, state.ErrETagMismatch) {
		t.Fatalf("expected ErrETagMismatch for stale etag, got %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one record, got %d", store.Len())
	}
}

func TestMemoryStoreLoadReturnsCopies(t *testing.T) {
	store := state.NewMemoryStore()
	ctx := context.Background()
	doc := overlay.Document{Properties: map[string]overlay.PropertyOverlay{"Title": {DisplayName: ptr("Headline")}}}
	if _, err := store.Save(ctx, systemRef(), doc, state.Meta{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	*doc.Properties["Title"].DisplayName = "mutated"

	loaded, _, ok, err := store.Load(ctx, systemRef())
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if *loaded.Properties["Title"].DisplayName != "Headline" {
		t.Fatalf("store shares state with caller")
	}
	loaded.Properties["Extra"] = overlay.PropertyOverlay{}

	again, _, _, _ := store.Load(ctx, systemRef())
	if _, ok := again.Properties["Extra"]; ok {
		t.Fatalf("store shares state with loaded documents")
	}

	_, _, ok, err = store.Load(ctx, state.Ref{Domain: "article", Scope: tenantScope()})
	if err != nil || ok {
		t.Fatalf("expected missing tenant document, got ok=%v err=%v", ok, err)
	}
	if _, _, _, err := store.Load(ctx, state.Ref{Domain: "article", Scope: overlay.NewScope("user", 1)}); err == nil {
		t.Fatalf("expected identifier error")
	}
}
