package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/repo"
	"pooled-auction-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type BidService struct {
	transactor   repo.Transactor
	bidRepo      repo.Bid
	orderRepo    repo.Order
	supplierRepo repo.Supplier
	auction      *AuctionService
	log          logrus.FieldLogger
	now          func() time.Time

	minDecrement decimal.Decimal
}

func NewBidService(deps *Deps, auction *AuctionService) *BidService {
	return &BidService{
		transactor:   deps.Repos.Transactor,
		bidRepo:      deps.Repos.Bid,
		orderRepo:    deps.Repos.Order,
		supplierRepo: deps.Repos.Supplier,
		auction:      auction,
		log:          deps.Log,
		now:          deps.Now,
		minDecrement: deps.MinBidDecrement,
	}
}

// maxPrice is the largest amount a NUMERIC(12, 2) column holds.
var maxPrice = decimal.RequireFromString("9999999999.99")

func validPrice(price decimal.Decimal) bool {
	return price.IsPositive() && price.LessThanOrEqual(maxPrice) && price.Equal(price.Truncate(2))
}

func (s *BidService) decrementFor(input *entity.CreateBidInput) (decimal.Decimal, error) {
	if !input.MinDecrement.Valid {
		return s.minDecrement, nil
	}
	if input.MinDecrement.Decimal.IsNegative() {
		return decimal.Zero, ErrInvalidDecrement
	}

	return input.MinDecrement.Decimal, nil
}

// ValidateBid checks every bidding rule without writing anything. Checks run in
// a fixed order and the first failure is returned.
func (s *BidService) ValidateBid(ctx context.Context, input *entity.CreateBidInput) (*entity.BidValidation, error) {
	return s.validateBid(ctx, input, false)
}

func (s *BidService) validateBid(ctx context.Context, input *entity.CreateBidInput, lockOrder bool) (*entity.BidValidation, error) {
	if !validPrice(input.PricePerUnit) {
		return nil, ErrInvalidPrice
	}

	minDecrement, err := s.decrementFor(input)
	if err != nil {
		return nil, err
	}

	getOrder := s.orderRepo.GetOrderById
	if lockOrder {
		getOrder = s.orderRepo.GetOrderByIdForUpdate
	}

	order, err := getOrder(ctx, input.PooledOrderId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrOrderNotFound
		}

		return nil, err
	}

	if !s.auction.IsAuctionActive(order) {
		return nil, ErrAuctionNotAcceptingBids
	}

	supplier, err := s.supplierRepo.GetSupplierById(ctx, input.SupplierId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrSupplierNotFound
		}

		return nil, err
	}

	if !supplier.IsVerified() {
		return nil, ErrSupplierNotVerified
	}

	lowest, err := s.auction.GetCurrentLowestBid(ctx, order.Id)
	if err != nil {
		return nil, err
	}

	result := &entity.BidValidation{Order: order, Supplier: supplier, LowestBid: lowest}
	if lowest == nil {
		return result, nil
	}

	minNextBid := MinNextBid(lowest.PricePerUnit, minDecrement)
	result.MinNextBid = decimal.NewNullDecimal(minNextBid)

	// The decrement check comes first: whenever the price isn't lower at all it
	// also fails here, and this message says by how much.
	if input.PricePerUnit.GreaterThan(minNextBid) {
		return nil, fmt.Errorf("%w: bid must be at least %s lower than current lowest (%s)",
			ErrDecrementTooSmall, minDecrement.StringFixed(2), lowest.PricePerUnit.StringFixed(2))
	}

	if input.PricePerUnit.GreaterThanOrEqual(lowest.PricePerUnit) {
		return nil, fmt.Errorf("%w (%s)", ErrBidNotLower, lowest.PricePerUnit.StringFixed(2))
	}

	return result, nil
}

// SubmitBid validates and stores a bid in one transaction holding the order's
// row lock, so concurrent bids on the same order are ranked against each other.
func (s *BidService) SubmitBid(ctx context.Context, input *entity.CreateBidInput) (*entity.Bid, error) {
	if !validPrice(input.PricePerUnit) {
		return nil, ErrInvalidPrice
	}

	var bid *entity.Bid
	err := s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.validateBid(ctx, input, true); err != nil {
			return err
		}

		created, err := s.bidRepo.CreateBid(ctx, input.PooledOrderId, input.SupplierId, input.PricePerUnit, input.Notes)
		if err != nil {
			return err
		}
		bid = created

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":    bid.PooledOrderId,
		"bid_id":      bid.Id,
		"supplier_id": bid.SupplierId,
		"price":       bid.PricePerUnit.StringFixed(2),
	}).Info("bid accepted")

	return bid, nil
}

func (s *BidService) GetBidById(ctx context.Context, bidId uuid.UUID) (*entity.Bid, error) {
	bid, err := s.bidRepo.GetBidById(ctx, bidId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrBidNotFound
		}

		return nil, err
	}

	return bid, nil
}

// GetSupplierBidStatus is a snapshot of where the bid stands. It doesn't
// reflect whether the auction is still running.
func (s *BidService) GetSupplierBidStatus(ctx context.Context, bidId uuid.UUID) (*entity.BidStatusResult, error) {
	bid, err := s.GetBidById(ctx, bidId)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetOrderById(ctx, bid.PooledOrderId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrBidNotFound
		}

		return nil, err
	}

	status, err := s.resolveStatus(ctx, bid, order)
	if err != nil {
		return nil, err
	}

	return &entity.BidStatusResult{Bid: bid, Status: status, IsWinning: status != entity.BidOutbid}, nil
}

func (s *BidService) resolveStatus(ctx context.Context, bid *entity.Bid, order *entity.PooledOrder) (entity.BidStatus, error) {
	if order.IsAwarded() && order.WinningBidId.UUID == bid.Id {
		return entity.BidAwarded, nil
	}

	lowest, err := s.auction.GetCurrentLowestBid(ctx, order.Id)
	if err != nil {
		return "", err
	}
	if lowest != nil && lowest.Id == bid.Id {
		return entity.BidWinning, nil
	}

	return entity.BidOutbid, nil
}

// CancelBid deletes a bid while its auction is still running. Remaining bids
// are not re-validated against each other.
func (s *BidService) CancelBid(ctx context.Context, bidId uuid.UUID, supplierId uuid.UUID) error {
	err := s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		bid, err := s.GetBidById(ctx, bidId)
		if err != nil {
			return err
		}

		order, err := s.orderRepo.GetOrderByIdForUpdate(ctx, bid.PooledOrderId)
		if err != nil {
			if errors.Is(err, repo_errors.ErrNotFound) {
				return ErrBidNotFound
			}

			return err
		}

		if !s.auction.IsAuctionActive(order) {
			return ErrCannotCancelBid
		}

		if bid.SupplierId != supplierId {
			return ErrUserHasNoAccessToBid
		}

		if err = s.bidRepo.DeleteBidById(ctx, bidId); err != nil {
			if errors.Is(err, repo_errors.ErrNotFound) {
				return ErrBidNotFound
			}

			return err
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"bid_id": bidId, "supplier_id": supplierId}).Info("bid cancelled")

	return nil
}

func (s *BidService) GetOrderBids(ctx context.Context, orderId uuid.UUID, pg *entity.PaginationInput) ([]entity.Bid, error) {
	if _, err := s.orderRepo.GetOrderById(ctx, orderId); err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrOrderNotFound
		}

		return nil, err
	}

	return s.bidRepo.GetOrderBids(ctx, orderId, pg)
}

// GetSupplierBids lists a supplier's bids, newest first, each with its status
// and the state of its auction.
func (s *BidService) GetSupplierBids(ctx context.Context, supplierId uuid.UUID, pg *entity.PaginationInput) ([]entity.SupplierBid, error) {
	if _, err := s.supplierRepo.GetSupplierById(ctx, supplierId); err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrSupplierNotFound
		}

		return nil, err
	}

	bids, err := s.bidRepo.GetSupplierBids(ctx, supplierId, pg)
	if err != nil {
		return nil, err
	}

	orders := make(map[uuid.UUID]*entity.PooledOrder)
	result := make([]entity.SupplierBid, 0, len(bids))
	for i := range bids {
		bid := &bids[i]

		order, ok := orders[bid.PooledOrderId]
		if !ok {
			order, err = s.orderRepo.GetOrderById(ctx, bid.PooledOrderId)
			if err != nil {
				return nil, err
			}
			orders[order.Id] = order
		}

		status, err := s.resolveStatus(ctx, bid, order)
		if err != nil {
			return nil, err
		}

		lowest, err := s.auction.GetCurrentLowestBid(ctx, order.Id)
		if err != nil {
			return nil, err
		}

		view := entity.SupplierBid{
			Bid:             bid,
			Order:           order,
			Status:          status,
			IsWinning:       status != entity.BidOutbid,
			IsAuctionActive: s.auction.IsAuctionActive(order),
		}
		if lowest != nil {
			view.CurrentLowest = decimal.NewNullDecimal(lowest.PricePerUnit)
		}
		result = append(result, view)
	}

	return result, nil
}
