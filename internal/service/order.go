package service

import (
	"context"
	"errors"
	"fmt"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/repo"
	"pooled-auction-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Status changes callers may request directly. AUCTION_CLOSED and AWARDED are
// only reached through AwardAuction.
var orderTransitions = map[entity.OrderStatus][]entity.OrderStatus{
	entity.OrderPreparing:     {entity.OrderAuctionOpen, entity.OrderCancelled},
	entity.OrderAuctionOpen:   {entity.OrderCancelled},
	entity.OrderAuctionClosed: {entity.OrderCancelled},
	entity.OrderAwarded:       {entity.OrderCompleted, entity.OrderCancelled},
}

func canTransition(from, to entity.OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}

	return false
}

type OrderService struct {
	transactor repo.Transactor
	orderRepo  repo.Order
	auction    *AuctionService
	log        logrus.FieldLogger

	minDecrement decimal.Decimal
}

func NewOrderService(deps *Deps, auction *AuctionService) *OrderService {
	return &OrderService{
		transactor:   deps.Repos.Transactor,
		orderRepo:    deps.Repos.Order,
		auction:      auction,
		log:          deps.Log,
		minDecrement: deps.MinBidDecrement,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, input *entity.CreateOrderInput) (*entity.PooledOrder, error) {
	order, err := s.orderRepo.CreateOrder(ctx, input)
	if err != nil {
		return nil, err
	}

	s.log.WithField("order_id", order.Id).Info("pooled order created")

	return order, nil
}

// GetOrderById returns the order together with its current lowest bid and the
// highest price the next bid may carry.
func (s *OrderService) GetOrderById(ctx context.Context, orderId uuid.UUID) (*entity.OrderDetails, error) {
	order, err := s.orderRepo.GetOrderById(ctx, orderId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrOrderNotFound
		}

		return nil, err
	}

	lowest, err := s.auction.GetCurrentLowestBid(ctx, orderId)
	if err != nil {
		return nil, err
	}

	details := &entity.OrderDetails{
		Order:           order,
		LowestBid:       lowest,
		IsAuctionActive: s.auction.IsAuctionActive(order),
	}
	if lowest != nil {
		details.MinNextBid = decimal.NewNullDecimal(MinNextBid(lowest.PricePerUnit, s.minDecrement))
	}

	return details, nil
}

func (s *OrderService) GetOrders(ctx context.Context, filter *entity.OrderFilter, pg *entity.PaginationInput) ([]entity.PooledOrder, error) {
	return s.orderRepo.GetOrders(ctx, filter, pg)
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderId uuid.UUID, newStatus entity.OrderStatus) (*entity.PooledOrder, error) {
	var result *entity.PooledOrder
	err := s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.GetOrderByIdForUpdate(ctx, orderId)
		if err != nil {
			if errors.Is(err, repo_errors.ErrNotFound) {
				return ErrOrderNotFound
			}

			return err
		}

		if order.Status == newStatus {
			result = order
			return nil
		}

		if !canTransition(order.Status, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, newStatus)
		}

		result, err = s.orderRepo.UpdateOrder(ctx, orderId, &entity.UpdateOrderInput{Status: &newStatus})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"order_id": orderId, "status": result.Status}).Info("pooled order status updated")

	return result, nil
}
