// Package reconcile implements last-write-wins synchronization between client
// word lists and the central store.
//
// A sync round trip applies the client's batch and then pulls everything
// modified after the client's previous checkpoint, both inside one store
// transaction. Applying is idempotent and order-independent because each
// write is accepted or discarded purely on (incoming, stored) modifiedTime,
// so a client that lost a response can resend the whole batch.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/wordsync/api/internal/config"
	"github.com/wordsync/api/internal/model"
	"github.com/wordsync/api/internal/store"
)

type Engine struct {
	store  store.Store
	now    func() time.Time
	layout string
	logger *slog.Logger
}

type Option func(*Engine)

// WithClock replaces the wall clock used for serverTime.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTimeLayout sets the layout serverTime is formatted with. It should
// match the format clients write into modifiedTime.
func WithTimeLayout(layout string) Option {
	return func(e *Engine) {
		if layout != "" {
			e.layout = layout
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		now:    time.Now,
		layout: config.DefaultServerTimeLayout,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SyncRequest is the body of POST /sync.
type SyncRequest struct {
	LastSyncTime string              `json:"lastSyncTime"`
	LocalChanges []model.WordPayload `json:"localChanges"`
}

// SyncResponse is returned to the client. Clients store ServerTime as their
// next lastSyncTime.
type SyncResponse struct {
	WordsToUpdate []model.Word `json:"wordsToUpdate"`
	ServerTime    string       `json:"serverTime"`
}

// BatchResult counts what happened to a pushed batch. Discarded records lost
// the conflict rule; that is not an error.
type BatchResult struct {
	Applied   int
	Discarded int
}

// Validate checks every record of a batch and converts it for storage. It
// stops at the first malformed record.
func (e *Engine) Validate(changes []model.WordPayload) ([]model.Word, error) {
	words := make([]model.Word, len(changes))
	for i, p := range changes {
		if err := p.Validate(); err != nil {
			return nil, &ValidationError{Index: i, Name: p.Name, Err: err}
		}
		words[i] = p.Word()
	}
	return words, nil
}

// ApplyBatch validates and applies changes as a single transaction.
func (e *Engine) ApplyBatch(ctx context.Context, changes []model.WordPayload) (BatchResult, error) {
	words, err := e.Validate(changes)
	if err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	err = e.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		result, _, err = applyWords(ctx, tx, words)
		return err
	})
	if err != nil {
		return BatchResult{}, transient("apply batch", err)
	}

	e.logger.DebugContext(ctx, "batch applied",
		"records", len(words),
		"applied", result.Applied,
		"discarded", result.Discarded,
	)
	return result, nil
}

// Pull returns records modified strictly after since, oldest first, or every
// record when since is empty. serverTime is read before the query so it never
// runs ahead of the rows the query observed.
func (e *Engine) Pull(ctx context.Context, since string) ([]model.Word, string, error) {
	serverTime := e.serverTime()
	words, err := pull(ctx, e.store, since)
	if err != nil {
		return nil, "", transient("pull", err)
	}
	return words, serverTime, nil
}

// PullAll returns the full snapshot, soft-deleted records included.
func (e *Engine) PullAll(ctx context.Context) ([]model.Word, error) {
	words, err := e.store.ScanAll(ctx)
	if err != nil {
		return nil, transient("pull all", err)
	}
	return words, nil
}

// Sync applies the client's batch and then pulls changes newer than its
// previous checkpoint. A record the client just pushed is left out of the
// response only when its push was applied. A discarded push (stale or tied)
// gets the stored version back.
func (e *Engine) Sync(ctx context.Context, req SyncRequest) (SyncResponse, BatchResult, error) {
	words, err := e.Validate(req.LocalChanges)
	if err != nil {
		return SyncResponse{}, BatchResult{}, err
	}

	var (
		result  BatchResult
		applied []model.Word
		updates []model.Word
		now     string
	)
	err = e.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		if result, applied, err = applyWords(ctx, tx, words); err != nil {
			return err
		}
		now = e.serverTime()
		updates, err = pull(ctx, tx, req.LastSyncTime)
		return err
	})
	if err != nil {
		return SyncResponse{}, BatchResult{}, transient("sync", err)
	}

	updates = withoutEchoes(updates, applied)

	e.logger.DebugContext(ctx, "sync completed",
		"last_sync_time", req.LastSyncTime,
		"pushed", len(words),
		"applied", result.Applied,
		"discarded", result.Discarded,
		"pulled", len(updates),
		"server_time", now,
	)
	return SyncResponse{WordsToUpdate: updates, ServerTime: now}, result, nil
}

func (e *Engine) serverTime() string {
	return e.now().UTC().Format(e.layout)
}

// applyWords upserts words in order and returns the versions that were
// written.
func applyWords(ctx context.Context, s store.Store, words []model.Word) (BatchResult, []model.Word, error) {
	var (
		result  BatchResult
		written = make([]model.Word, 0, len(words))
	)
	for i := range words {
		applied, err := s.Upsert(ctx, &words[i])
		if err != nil {
			return BatchResult{}, nil, err
		}
		if applied {
			result.Applied++
			written = append(written, words[i])
		} else {
			result.Discarded++
		}
	}
	return result, written, nil
}

func pull(ctx context.Context, s store.Store, since string) ([]model.Word, error) {
	if since == "" {
		return s.ScanAll(ctx)
	}
	return s.ScanModifiedAfter(ctx, since)
}

// withoutEchoes drops pulled rows that are exactly a version the client just
// wrote: same name and same modifiedTime as an applied push means the client
// already holds it. A tie that was discarded stores another device's content
// under the same timestamp, so only applied versions count.
func withoutEchoes(pulled, applied []model.Word) []model.Word {
	type version struct{ name, modified string }

	sent := make(map[version]struct{}, len(applied))
	for _, w := range applied {
		sent[version{w.Name, w.ModifiedTime}] = struct{}{}
	}

	out := make([]model.Word, 0, len(pulled))
	for _, w := range pulled {
		if _, ok := sent[version{w.Name, w.ModifiedTime}]; ok {
			continue
		}
		out = append(out, w)
	}
	return out
}
