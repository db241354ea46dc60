// Package store persists word records keyed by name.
//
// A Store never decides conflicts on its own: Upsert applies the incoming
// record only when the configured conflict.Resolver says it wins, and
// reports whether it did.
package store

import (
	"context"
	"errors"

	"github.com/wordsync/api/internal/model"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("store closed")

type Store interface {
	// Upsert inserts w when its name is new, or overwrites the mutable
	// fields of the stored row when w wins the conflict rule. Name and
	// CreatedTime are never updated. The bool reports whether a row changed.
	Upsert(ctx context.Context, w *model.Word) (bool, error)

	// ScanModifiedAfter returns rows with ModifiedTime strictly greater than
	// since, ascending by ModifiedTime then Name.
	ScanModifiedAfter(ctx context.Context, since string) ([]model.Word, error)

	// ScanAll returns every row, soft-deleted ones included, ordered by Name.
	ScanAll(ctx context.Context) ([]model.Word, error)

	// Transaction runs fn against a Store bound to one transaction. If fn
	// returns an error nothing it wrote becomes visible.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	Close() error
}
