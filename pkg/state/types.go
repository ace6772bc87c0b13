package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-descriptors/overlay"
)

// ErrETagMismatch is returned when a write carries a stale ETag.
var ErrETagMismatch = errors.New("state: etag mismatch")

// DefaultsScopeName is reserved for the defaults layer of ResolveWithDefaults.
const DefaultsScopeName = "defaults"

// Ref identifies the overlay document of one domain (usually a component
// type) for one scope.
type Ref struct {
	Domain string
	Scope  overlay.Scope
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads and saves one overlay document for a single Ref.
type Store interface {
	Load(ctx context.Context, ref Ref) (doc overlay.Document, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, doc overlay.Document, meta Meta) (Meta, error)
}

// Mutator edits a document in place.
type Mutator func(*overlay.Document) error

// Identifier returns the canonical storage key for r. Scopes other than
// system must carry their id in metadata under "<scope>_id".
func (r Ref) Identifier() (string, error) {
	if r.Domain == "" {
		return "", fmt.Errorf("state: domain is required")
	}
	switch r.Scope.Name {
	case "system":
		return fmt.Sprintf("system/%s", r.Domain), nil
	case "tenant", "org", "team", "user":
		metadataKey := r.Scope.Name + "_id"
		id, _ := r.Scope.Metadata[metadataKey].(string)
		if id == "" {
			return "", fmt.Errorf("state: missing metadata key %q for scope %q", metadataKey, r.Scope.Name)
		}
		return fmt.Sprintf("%s/%s/%s", r.Scope.Name, id, r.Domain), nil
	default:
		return "", fmt.Errorf("state: unsupported scope name %q", r.Scope.Name)
	}
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}

func mergeMeta(base, override Meta) Meta {
	out := cloneMeta(base)
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = cloneMeta(override).Extra
	}
	return out
}
