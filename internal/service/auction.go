package service

import (
	"context"
	"errors"
	"time"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/repo"
	"pooled-auction-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// IsAuctionActive reports whether order accepts bids at now: the status must be
// AUCTION_OPEN and the deadline must not have been reached. A stored
// AUCTION_OPEN status past its deadline stays in place until the order is awarded.
func IsAuctionActive(order *entity.PooledOrder, now time.Time) bool {
	return order.Status == entity.OrderAuctionOpen && now.Before(order.AuctionEndsAt)
}

// MinNextBid is the highest price the next bid may carry, inclusive.
func MinNextBid(lowest, minDecrement decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, lowest.Sub(minDecrement)).Round(2)
}

type AuctionService struct {
	transactor  repo.Transactor
	orderRepo   repo.Order
	bidRepo     repo.Bid
	log         logrus.FieldLogger
	now         func() time.Time
	concurrency int
}

func NewAuctionService(deps *Deps) *AuctionService {
	concurrency := deps.AwardConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &AuctionService{
		transactor:  deps.Repos.Transactor,
		orderRepo:   deps.Repos.Order,
		bidRepo:     deps.Repos.Bid,
		log:         deps.Log,
		now:         deps.Now,
		concurrency: concurrency,
	}
}

// GetCurrentLowestBid returns nil when the order has no bids.
func (s *AuctionService) GetCurrentLowestBid(ctx context.Context, orderId uuid.UUID) (*entity.Bid, error) {
	return s.bidRepo.GetLowestBid(ctx, orderId)
}

func (s *AuctionService) IsAuctionActive(order *entity.PooledOrder) bool {
	return IsAuctionActive(order, s.now())
}

// CalculateMinNextBid is invalid while the order has no bids: the opening bid
// only has to be positive.
func (s *AuctionService) CalculateMinNextBid(ctx context.Context, orderId uuid.UUID, minDecrement decimal.Decimal) (decimal.NullDecimal, error) {
	lowest, err := s.GetCurrentLowestBid(ctx, orderId)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if lowest == nil {
		return decimal.NullDecimal{}, nil
	}

	return decimal.NewNullDecimal(MinNextBid(lowest.PricePerUnit, minDecrement)), nil
}

// AwardAuction closes the bidding on an order whose window has ended. With
// bids, the lowest one wins and the order becomes AWARDED; without bids an open
// order becomes AUCTION_CLOSED. Orders past the auction phase are returned
// unchanged.
func (s *AuctionService) AwardAuction(ctx context.Context, orderId uuid.UUID) (*entity.PooledOrder, error) {
	var result *entity.PooledOrder
	err := s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.GetOrderByIdForUpdate(ctx, orderId)
		if err != nil {
			if errors.Is(err, repo_errors.ErrNotFound) {
				return ErrOrderNotFound
			}

			return err
		}

		if s.IsAuctionActive(order) {
			return ErrAuctionStillActive
		}

		if order.Status != entity.OrderAuctionOpen && order.Status != entity.OrderAuctionClosed {
			result = order
			return nil
		}

		lowest, err := s.GetCurrentLowestBid(ctx, orderId)
		if err != nil {
			return err
		}

		if lowest == nil {
			if order.Status != entity.OrderAuctionOpen {
				result = order
				return nil
			}

			closed := entity.OrderAuctionClosed
			result, err = s.orderRepo.UpdateOrder(ctx, orderId, &entity.UpdateOrderInput{Status: &closed})
			if err != nil {
				return err
			}

			s.log.WithField("order_id", orderId).Info("auction closed without bids")
			return nil
		}

		awarded := entity.OrderAwarded
		result, err = s.orderRepo.UpdateOrder(ctx, orderId, &entity.UpdateOrderInput{
			Status:            &awarded,
			FinalPricePerUnit: &lowest.PricePerUnit,
			WinningBidId:      &lowest.Id,
		})
		if err != nil {
			return err
		}

		s.log.WithFields(logrus.Fields{
			"order_id":    orderId,
			"bid_id":      lowest.Id,
			"supplier_id": lowest.SupplierId,
			"price":       lowest.PricePerUnit.StringFixed(2),
		}).Info("auction awarded")

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// AwardExpiredAuctions awards every open order whose deadline has passed. A
// failure on one order doesn't stop the others; all failures are joined into
// the returned error.
func (s *AuctionService) AwardExpiredAuctions(ctx context.Context) ([]entity.PooledOrder, error) {
	ids, err := s.orderRepo.GetExpiredOpenOrderIds(ctx, s.now())
	if err != nil {
		return nil, err
	}

	results := make([]*entity.PooledOrder, len(ids))
	errs := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			order, err := s.AwardAuction(ctx, id)
			if err != nil {
				s.log.WithError(err).WithField("order_id", id).Error("award expired auction")
				errs[i] = err
				return nil
			}
			results[i] = order

			return nil
		})
	}
	_ = g.Wait()

	orders := make([]entity.PooledOrder, 0, len(ids))
	for _, order := range results {
		if order != nil {
			orders = append(orders, *order)
		}
	}

	return orders, errors.Join(errs...)
}
