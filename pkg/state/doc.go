// Package state loads and saves per-scope overlay documents and resolves them
// into a single merged overlay.
//
// A Store only loads and saves one document for one Ref. The Resolver loads
// the documents for several scopes and layers them with overlay.NewStack, so
// persistence stays out of the overlay package.
//
// Data flow:
//
//	Store -> Resolver -> overlay.NewStack(...).Merge() -> *overlay.Merged
//
// Meta.SnapshotID becomes overlay.Layer.SnapshotID, which is reported by
// Merged.Source and stamped on descriptor.overlay.applied events.
//
// Ref.Identifier gives the canonical storage key, e.g. "tenant/acme/article".
package state
