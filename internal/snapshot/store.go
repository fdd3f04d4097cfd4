// Package snapshot holds the current ledger snapshot and reloads it from a
// source as a single atomic replacement.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/pointbook/internal/ledger"
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/Veraticus/pointbook/internal/service"
	"golang.org/x/sync/errgroup"
)

// Store holds the latest complete snapshot. Readers never observe a snapshot
// where some entities come from one load and the rest from another.
type Store struct {
	current model.Snapshot
	version uint64
	mu      sync.RWMutex
}

// NewStore creates an empty store with the default budget.
func NewStore() *Store {
	return &Store{current: model.Snapshot{Budget: model.DefaultBudget()}}
}

// Replace swaps in snap wholesale and returns the new version number.
func (s *Store) Replace(snap model.Snapshot) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = snap
	s.version++
	return s.version
}

// Current returns the latest snapshot and its version. Version zero means
// nothing has been loaded yet.
func (s *Store) Current() (model.Snapshot, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.version
}

// Summary computes the summary of the current snapshot. It is recomputed on
// every call so it always reflects the latest replacement.
func (s *Store) Summary(filter ledger.Filter, now time.Time) ledger.Summary {
	snap, _ := s.Current()
	return ledger.SummarizeSnapshot(snap, filter, now)
}

// Load fetches categories, transactions and the budget concurrently and
// returns them as one snapshot. If any load fails the whole snapshot is
// discarded.
func Load(ctx context.Context, src service.Source) (model.Snapshot, error) {
	var snap model.Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories, err := src.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
		snap.Categories = categories
		return nil
	})
	g.Go(func() error {
		transactions, err := src.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("failed to load transactions: %w", err)
		}
		snap.Transactions = transactions
		return nil
	})
	g.Go(func() error {
		budget, err := src.GetBudget(gctx)
		if err != nil {
			return fmt.Errorf("failed to load budget: %w", err)
		}
		snap.Budget = budget
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// Reloader refreshes a Store from a Source.
type Reloader struct {
	source service.Source
	store  *Store
	mu     sync.Mutex
}

// NewReloader creates a reloader that fills store from source.
func NewReloader(source service.Source, store *Store) *Reloader {
	return &Reloader{source: source, store: store}
}

// Reload loads a fresh snapshot and replaces the store's contents with it.
// Concurrent reloads are serialized, so the last one to finish wins. On error
// the store keeps its previous snapshot.
func (r *Reloader) Reload(ctx context.Context) (model.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	snap, err := Load(ctx, r.source)
	if err != nil {
		return model.Snapshot{}, err
	}

	version := r.store.Replace(snap)
	slog.Debug("Reloaded ledger snapshot",
		"version", version,
		"categories", len(snap.Categories),
		"transactions", len(snap.Transactions),
		"duration", time.Since(start))

	return snap, nil
}

// Store returns the store this reloader writes to.
func (r *Reloader) Store() *Store {
	return r.store
}
