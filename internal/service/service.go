package service

import (
	"context"
	"time"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/repo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Diagnostics interface {
	Ping(ctx context.Context) error
}

type Auction interface {
	GetCurrentLowestBid(ctx context.Context, orderId uuid.UUID) (*entity.Bid, error)
	IsAuctionActive(order *entity.PooledOrder) bool
	CalculateMinNextBid(ctx context.Context, orderId uuid.UUID, minDecrement decimal.Decimal) (decimal.NullDecimal, error)

	AwardAuction(ctx context.Context, orderId uuid.UUID) (*entity.PooledOrder, error)
	AwardExpiredAuctions(ctx context.Context) ([]entity.PooledOrder, error)
}

type Order interface {
	CreateOrder(ctx context.Context, input *entity.CreateOrderInput) (*entity.PooledOrder, error)
	GetOrderById(ctx context.Context, orderId uuid.UUID) (*entity.OrderDetails, error)
	GetOrders(ctx context.Context, filter *entity.OrderFilter, pg *entity.PaginationInput) ([]entity.PooledOrder, error)
	UpdateOrderStatus(ctx context.Context, orderId uuid.UUID, newStatus entity.OrderStatus) (*entity.PooledOrder, error)
}

type Bid interface {
	ValidateBid(ctx context.Context, input *entity.CreateBidInput) (*entity.BidValidation, error)
	SubmitBid(ctx context.Context, input *entity.CreateBidInput) (*entity.Bid, error)
	GetBidById(ctx context.Context, bidId uuid.UUID) (*entity.Bid, error)
	GetSupplierBidStatus(ctx context.Context, bidId uuid.UUID) (*entity.BidStatusResult, error)
	CancelBid(ctx context.Context, bidId uuid.UUID, supplierId uuid.UUID) error

	GetOrderBids(ctx context.Context, orderId uuid.UUID, pg *entity.PaginationInput) ([]entity.Bid, error)
	GetSupplierBids(ctx context.Context, supplierId uuid.UUID, pg *entity.PaginationInput) ([]entity.SupplierBid, error)
}

// Deps carries what the services share. Log, Now and AwardConcurrency fall
// back to defaults when unset; MinBidDecrement is taken as is.
type Deps struct {
	Repos            *repo.Repositories
	Log              logrus.FieldLogger
	MinBidDecrement  decimal.Decimal
	AwardConcurrency int
	Now              func() time.Time
}

type Services struct {
	Diagnostics Diagnostics
	Auction     Auction
	Order       Order
	Bid         Bid
}

func NewServices(deps Deps) *Services {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.AwardConcurrency == 0 {
		deps.AwardConcurrency = 4
	}

	auction := NewAuctionService(&deps)

	return &Services{
		Diagnostics: NewDiagnosticsService(deps.Repos),
		Auction:     auction,
		Order:       NewOrderService(&deps, auction),
		Bid:         NewBidService(&deps, auction),
	}
}
