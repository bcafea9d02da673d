// Package cart maintains the authoritative shopping cart for the current
// client session.
//
// The cart is an ordered list of entries, at most one per part ID, with
// totals derived from the entries on every mutation. After each change the
// whole state is serialised and written through the kv store, so a restart
// resumes exactly where the session left off. A corrupt or missing snapshot
// is never fatal: the cart starts empty and the session moves on.
package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/jcmexdev/partsmarket/internal/pkg/kvstore"
	"github.com/jcmexdev/partsmarket/internal/storefront/core/domain/entity"
)

// storageKey is the fixed key the snapshot lives under in the kv store.
const storageKey = "cart"

// Item is one cart entry: a part and how many of it.
type Item struct {
	Part     entity.Part `json:"part"`
	Quantity int         `json:"quantity"`
}

// State is the full cart: entries in insertion order plus derived totals.
// TotalItems and TotalAmount are always recomputed from Items, never set
// directly, so they cannot drift from the entry list.
type State struct {
	Items       []Item  `json:"items"`
	TotalItems  int     `json:"totalItems"`
	TotalAmount float64 `json:"totalAmount"`
}

// Store owns the cart state. All mutations go through its methods; readers
// get value copies via Snapshot. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	kv       kvstore.Store
	state    State
	onChange func(State)
}

// Option configures a Store.
type Option func(*Store)

// WithOnChange registers a callback invoked with a snapshot after every
// mutation. The UI layer subscribes here instead of polling.
func WithOnChange(fn func(State)) Option {
	return func(s *Store) { s.onChange = fn }
}

// New creates a Store and loads the persisted snapshot, if any. A missing or
// corrupt snapshot degrades to an empty cart with a logged warning.
func New(ctx context.Context, kv kvstore.Store, opts ...Option) *Store {
	s := &Store{kv: kv}
	for _, opt := range opts {
		opt(s)
	}

	raw, ok, err := kv.Get(ctx, storageKey)
	if err != nil {
		slog.WarnContext(ctx, "failed to read persisted cart, starting empty", "error", err)
		return s
	}
	if !ok {
		return s
	}

	var loaded State
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		slog.WarnContext(ctx, "persisted cart is corrupt, starting empty", "error", err)
		return s
	}

	s.state.Items = loaded.Items
	// Recompute rather than trust the stored totals.
	s.recomputeLocked()
	return s
}

// Add merges quantity into the existing entry for the part, or appends a new
// entry at the end so first-added-first order is preserved. A quantity below
// one is treated as the default of one; an add can never shrink the cart.
func (s *Store) Add(ctx context.Context, part entity.Part, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		quantity = 1
	}

	merged := false
	for i := range s.state.Items {
		if s.state.Items[i].Part.ID == part.ID {
			s.state.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.state.Items = append(s.state.Items, Item{Part: part, Quantity: quantity})
	}

	s.commitLocked(ctx)
}

// Remove deletes the entry for partID. Removing an absent part is a no-op.
func (s *Store) Remove(ctx context.Context, partID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Items {
		if s.state.Items[i].Part.ID == partID {
			s.state.Items = append(s.state.Items[:i], s.state.Items[i+1:]...)
			s.commitLocked(ctx)
			return
		}
	}
}

// UpdateQuantity replaces (not increments) the quantity of the entry for
// partID. A quantity of zero or less removes the entry.
func (s *Store) UpdateQuantity(ctx context.Context, partID string, quantity int) {
	if quantity <= 0 {
		s.Remove(ctx, partID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Items {
		if s.state.Items[i].Part.ID == partID {
			s.state.Items[i].Quantity = quantity
			s.commitLocked(ctx)
			return
		}
	}
}

// Clear resets the cart to the empty state.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{}
	s.commitLocked(ctx)
}

// Snapshot returns a value copy of the current state; mutating the returned
// slice does not touch the live cart.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	copied := s.state
	copied.Items = make([]Item, len(s.state.Items))
	copy(copied.Items, s.state.Items)
	// Part.Store is a pointer; clone it so a snapshot holder cannot reach
	// back into live state through it.
	for i := range copied.Items {
		if st := copied.Items[i].Part.Store; st != nil {
			cloned := *st
			copied.Items[i].Part.Store = &cloned
		}
	}
	return copied
}

// commitLocked recomputes totals, persists, and notifies, all under the lock
// so no partially updated state is ever observable or persisted.
func (s *Store) commitLocked(ctx context.Context) {
	s.recomputeLocked()
	s.persistLocked(ctx)
	if s.onChange != nil {
		s.onChange(s.snapshotLocked())
	}
}

func (s *Store) recomputeLocked() {
	totalItems := 0
	totalAmount := 0.0
	for _, item := range s.state.Items {
		totalItems += item.Quantity
		totalAmount += float64(item.Quantity) * item.Part.EffectivePrice()
	}
	s.state.TotalItems = totalItems
	s.state.TotalAmount = totalAmount
}

// persistLocked writes the snapshot through the kv store. Persistence
// failures are logged, never surfaced: the in-memory cart stays usable.
func (s *Store) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(s.state)
	if err != nil {
		slog.WarnContext(ctx, "failed to serialise cart", "error", err)
		return
	}
	if err := s.kv.Set(ctx, storageKey, string(raw)); err != nil {
		slog.WarnContext(ctx, "failed to persist cart", "error", err)
	}
}
