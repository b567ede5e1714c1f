package memdb

import (
	"context"
	"errors"
	"slices"
	"time"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *Store) CreateOrder(ctx context.Context, input *entity.CreateOrderInput) (*entity.PooledOrder, error) {
	defer s.lockWrite(ctx)()

	order := entity.PooledOrder{
		Id:                     uuid.New(),
		ProductId:              input.ProductId,
		AreaGroupId:            input.AreaGroupId,
		Status:                 entity.OrderPreparing,
		AuctionEndsAt:          input.AuctionEndsAt.UTC(),
		TotalQuantityCommitted: decimal.Zero,
		CreatedAt:              s.now(),
	}
	s.orders[order.Id] = order

	return &order, nil
}

func (s *Store) GetOrderById(ctx context.Context, id uuid.UUID) (*entity.PooledOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	return &order, nil
}

// GetOrderByIdForUpdate relies on WithinTx holding the store-wide lock.
func (s *Store) GetOrderByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.PooledOrder, error) {
	if !inTx(ctx) {
		return nil, errors.New("row lock requested outside of a transaction")
	}

	return s.GetOrderById(ctx, id)
}

func (s *Store) GetOrders(ctx context.Context, filter *entity.OrderFilter, pg *entity.PaginationInput) ([]entity.PooledOrder, error) {
	s.mu.RLock()
	orders := make([]entity.PooledOrder, 0, len(s.orders))
	for _, order := range s.orders {
		if filter != nil && filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		orders = append(orders, order)
	}
	s.mu.RUnlock()

	slices.SortFunc(orders, func(a, b entity.PooledOrder) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return compareIds(a.Id, b.Id)
	})

	return paginate(orders, pg), nil
}

func (s *Store) GetExpiredOpenOrderIds(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	s.mu.RLock()
	expired := make([]entity.PooledOrder, 0)
	for _, order := range s.orders {
		if order.Status == entity.OrderAuctionOpen && !order.AuctionEndsAt.After(now) {
			expired = append(expired, order)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(expired, func(a, b entity.PooledOrder) int {
		return a.AuctionEndsAt.Compare(b.AuctionEndsAt)
	})

	ids := make([]uuid.UUID, 0, len(expired))
	for _, order := range expired {
		ids = append(ids, order.Id)
	}

	return ids, nil
}

func (s *Store) UpdateOrder(ctx context.Context, id uuid.UUID, input *entity.UpdateOrderInput) (*entity.PooledOrder, error) {
	defer s.lockWrite(ctx)()

	order, ok := s.orders[id]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	if input.Status != nil {
		order.Status = *input.Status
	}
	if input.FinalPricePerUnit != nil {
		order.FinalPricePerUnit = decimal.NewNullDecimal(*input.FinalPricePerUnit)
	}
	if input.WinningBidId != nil {
		order.WinningBidId = uuid.NullUUID{UUID: *input.WinningBidId, Valid: true}
	}
	s.orders[id] = order

	return &order, nil
}

func compareIds(a, b uuid.UUID) int {
	return slices.Compare(a[:], b[:])
}

func paginate[T any](items []T, pg *entity.PaginationInput) []T {
	if pg == nil {
		return items
	}
	if pg.Offset >= len(items) {
		return make([]T, 0)
	}

	items = items[pg.Offset:]
	if pg.Limit < len(items) {
		items = items[:pg.Limit]
	}

	return items
}
