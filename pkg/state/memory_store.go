package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-descriptors/layering"
	"github.com/goliatone/go-descriptors/overlay"
)

// MemoryStore is an in-memory Store keyed by Ref.Identifier, intended for
// tests and examples. Every save gets a fresh snapshot ID and ETag.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	now     func() time.Time
}

type memoryRecord struct {
	doc  overlay.Document
	meta Meta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]memoryRecord{}, now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, ref Ref) (overlay.Document, Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return overlay.Document{}, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return overlay.Document{}, Meta{}, false, nil
	}
	return layering.Clone(record.doc), cloneMeta(record.meta), true, nil
}

// Save stores doc. A non-empty meta.ETag must match the stored ETag.
func (s *MemoryStore) Save(_ context.Context, ref Ref, doc overlay.Document, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.records[key]; ok && meta.ETag != "" && meta.ETag != current.meta.ETag {
		return Meta{}, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, current.meta.ETag)
	}

	saved := cloneMeta(meta)
	saved.SnapshotID = uuid.NewString()
	saved.ETag = uuid.NewString()
	saved.UpdatedAt = s.now().UTC()
	s.records[key] = memoryRecord{doc: layering.Clone(doc), meta: saved}
	return cloneMeta(saved), nil
}

// Len reports how many documents are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
