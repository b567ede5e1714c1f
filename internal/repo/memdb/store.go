// Package memdb keeps auction data in process memory. It backs the service and
// controller tests and local runs without a database.
package memdb

import (
	"context"
	"maps"
	"sync"
	"time"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/repo"

	"github.com/google/uuid"
)

type txKey struct{}

type Store struct {
	// txMu is held for the whole of a WithinTx call and by every write made
	// outside one, so a rollback only ever reverts the unit of work's own
	// writes. mu guards the maps.
	txMu sync.Mutex
	mu   sync.RWMutex

	orders    map[uuid.UUID]entity.PooledOrder
	suppliers map[uuid.UUID]entity.Supplier
	bids      map[uuid.UUID]entity.Bid

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		orders:    make(map[uuid.UUID]entity.PooledOrder),
		suppliers: make(map[uuid.UUID]entity.Supplier),
		bids:      make(map[uuid.UUID]entity.Bid),
		now:       time.Now,
	}
}

// WithClock sets the clock used for created_at stamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func NewRepositories(s *Store) *repo.Repositories {
	return &repo.Repositories{
		Transactor:  s,
		Diagnostics: s,
		Order:       s,
		Supplier:    s,
		Bid:         s,
	}
}

// WithinTx serializes units of work and restores the previous state if fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	orders, suppliers, bids := maps.Clone(s.orders), maps.Clone(s.suppliers), maps.Clone(s.bids)
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		s.mu.Lock()
		s.orders, s.suppliers, s.bids = orders, suppliers, bids
		s.mu.Unlock()

		return err
	}

	return nil
}

func inTx(ctx context.Context) bool {
	return ctx.Value(txKey{}) != nil
}

// lockWrite takes the locks a write needs and returns the matching unlock.
func (s *Store) lockWrite(ctx context.Context) func() {
	if inTx(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}

	s.txMu.Lock()
	s.mu.Lock()

	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// PutSupplier inserts or replaces a supplier. The Put helpers must not be
// called from inside WithinTx.
func (s *Store) PutSupplier(supplier entity.Supplier) {
	defer s.lockWrite(context.Background())()

	s.suppliers[supplier.UserId] = supplier
}

// PutOrder inserts or replaces an order as is, bypassing lifecycle rules.
func (s *Store) PutOrder(order entity.PooledOrder) {
	defer s.lockWrite(context.Background())()

	if order.Id == uuid.Nil {
		order.Id = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = s.now()
	}
	s.orders[order.Id] = order
}

// PutBid inserts a bid as is, bypassing validation.
func (s *Store) PutBid(bid entity.Bid) entity.Bid {
	defer s.lockWrite(context.Background())()

	if bid.Id == uuid.Nil {
		bid.Id = uuid.New()
	}
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = s.now()
	}
	s.bids[bid.Id] = bid

	return bid
}
