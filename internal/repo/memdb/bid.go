package memdb

import (
	"context"
	"slices"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// compareBidRank orders by price, then creation time, then id.
func compareBidRank(a, b entity.Bid) int {
	if c := a.PricePerUnit.Cmp(b.PricePerUnit); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}

	return compareIds(a.Id, b.Id)
}

func (s *Store) CreateBid(ctx context.Context, orderId, supplierId uuid.UUID, price decimal.Decimal, notes *string) (*entity.Bid, error) {
	defer s.lockWrite(ctx)()

	if _, ok := s.orders[orderId]; !ok {
		return nil, repo_errors.ErrNotFound
	}

	bid := entity.Bid{
		Id:            uuid.New(),
		PooledOrderId: orderId,
		SupplierId:    supplierId,
		PricePerUnit:  price,
		Notes:         notes,
		CreatedAt:     s.now(),
	}
	s.bids[bid.Id] = bid

	return &bid, nil
}

func (s *Store) GetBidById(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bid, ok := s.bids[id]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	return &bid, nil
}

func (s *Store) GetLowestBid(ctx context.Context, orderId uuid.UUID) (*entity.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lowest *entity.Bid
	for _, bid := range s.bids {
		if bid.PooledOrderId != orderId {
			continue
		}
		if lowest == nil || compareBidRank(bid, *lowest) < 0 {
			b := bid
			lowest = &b
		}
	}

	return lowest, nil
}

func (s *Store) GetOrderBids(ctx context.Context, orderId uuid.UUID, pg *entity.PaginationInput) ([]entity.Bid, error) {
	bids := s.filterBids(func(b entity.Bid) bool { return b.PooledOrderId == orderId })
	slices.SortFunc(bids, compareBidRank)

	return paginate(bids, pg), nil
}

func (s *Store) GetSupplierBids(ctx context.Context, supplierId uuid.UUID, pg *entity.PaginationInput) ([]entity.Bid, error) {
	bids := s.filterBids(func(b entity.Bid) bool { return b.SupplierId == supplierId })
	slices.SortFunc(bids, func(a, b entity.Bid) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return compareIds(a.Id, b.Id)
	})

	return paginate(bids, pg), nil
}

func (s *Store) DeleteBidById(ctx context.Context, id uuid.UUID) error {
	defer s.lockWrite(ctx)()

	if _, ok := s.bids[id]; !ok {
		return repo_errors.ErrNotFound
	}
	delete(s.bids, id)

	return nil
}

func (s *Store) filterBids(keep func(entity.Bid) bool) []entity.Bid {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bids := make([]entity.Bid, 0)
	for _, bid := range s.bids {
		if keep(bid) {
			bids = append(bids, bid)
		}
	}

	return bids
}
