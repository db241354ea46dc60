package store

import (
	"context"
	"sort"
	"sync"

	"github.com/wordsync/api/internal/conflict"
	"github.com/wordsync/api/internal/model"
)

// MemoryStore keeps rows in a map. Transactions hold the lock for their whole
// duration and work on a copy that replaces the live map on success.
type MemoryStore struct {
	mu       sync.Mutex
	rows     map[string]model.Word
	resolver conflict.Resolver
	closed   bool
}

func NewMemoryStore(resolver conflict.Resolver) *MemoryStore {
	if resolver == nil {
		resolver = conflict.Default
	}
	return &MemoryStore{
		rows:     make(map[string]model.Word),
		resolver: resolver,
	}
}

func (s *MemoryStore) Upsert(ctx context.Context, w *model.Word) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	return s.table().upsert(w), nil
}

func (s *MemoryStore) ScanModifiedAfter(ctx context.Context, since string) ([]model.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.table().modifiedAfter(since), nil
}

func (s *MemoryStore) ScanAll(ctx context.Context) ([]model.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.table().all(), nil
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	snapshot := make(map[string]model.Word, len(s.rows))
	for k, v := range s.rows {
		snapshot[k] = v
	}
	tx := &memoryTx{t: memoryTable{rows: snapshot, resolver: s.resolver}}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.rows = snapshot
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MemoryStore) table() memoryTable {
	return memoryTable{rows: s.rows, resolver: s.resolver}
}

// memoryTx is the Store handed to a transaction callback. The parent already
// holds the lock.
type memoryTx struct {
	t memoryTable
}

func (tx *memoryTx) Upsert(ctx context.Context, w *model.Word) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return tx.t.upsert(w), nil
}

func (tx *memoryTx) ScanModifiedAfter(ctx context.Context, since string) ([]model.Word, error) {
	return tx.t.modifiedAfter(since), nil
}

func (tx *memoryTx) ScanAll(ctx context.Context) ([]model.Word, error) {
	return tx.t.all(), nil
}

// Transaction on an open transaction joins it, like a gorm nested call
// without savepoints.
func (tx *memoryTx) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(tx)
}

func (tx *memoryTx) Close() error { return nil }

type memoryTable struct {
	rows     map[string]model.Word
	resolver conflict.Resolver
}

func (t memoryTable) upsert(w *model.Word) bool {
	existing, ok := t.rows[w.Name]
	if ok && !t.resolver.Wins(w.ModifiedTime, existing.ModifiedTime) {
		return false
	}

	row := cloneWord(*w)
	if ok {
		row.CreatedTime = existing.CreatedTime
	}
	synced := w.ModifiedTime
	row.SyncedTime = &synced
	t.rows[w.Name] = row
	return true
}

func (t memoryTable) modifiedAfter(since string) []model.Word {
	out := make([]model.Word, 0)
	for _, w := range t.rows {
		if conflict.After(w.ModifiedTime, since) {
			out = append(out, cloneWord(w))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ModifiedTime != out[j].ModifiedTime {
			return conflict.Later(out[j].ModifiedTime, out[i].ModifiedTime)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (t memoryTable) all() []model.Word {
	out := make([]model.Word, 0, len(t.rows))
	for _, w := range t.rows {
		out = append(out, cloneWord(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// cloneWord copies the optional fields so callers cannot mutate stored rows
// through shared pointers.
func cloneWord(w model.Word) model.Word {
	w.Tags = cloneString(w.Tags)
	w.CreatedTime = cloneString(w.CreatedTime)
	w.SyncedTime = cloneString(w.SyncedTime)
	w.Note = cloneString(w.Note)
	return w
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
