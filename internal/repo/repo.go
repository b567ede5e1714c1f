package repo

import (
	"context"
	"time"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/repo/pgdb"
	"pooled-auction-api/pkg/postgres"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Diagnostics interface {
	Ping(ctx context.Context) error
}

// Transactor runs fn as one unit of work. Repository calls made with the ctx
// passed to fn join that unit of work; nested calls reuse the outer one.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Order interface {
	CreateOrder(ctx context.Context, input *entity.CreateOrderInput) (*entity.PooledOrder, error)
	GetOrderById(ctx context.Context, id uuid.UUID) (*entity.PooledOrder, error)
	// GetOrderByIdForUpdate locks the order row until the surrounding transaction ends.
	GetOrderByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.PooledOrder, error)
	GetOrders(ctx context.Context, filter *entity.OrderFilter, pg *entity.PaginationInput) ([]entity.PooledOrder, error)
	GetExpiredOpenOrderIds(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, input *entity.UpdateOrderInput) (*entity.PooledOrder, error)
}

type Supplier interface {
	GetSupplierById(ctx context.Context, id uuid.UUID) (*entity.Supplier, error)
}

type Bid interface {
	CreateBid(ctx context.Context, orderId, supplierId uuid.UUID, price decimal.Decimal, notes *string) (*entity.Bid, error)
	GetBidById(ctx context.Context, id uuid.UUID) (*entity.Bid, error)
	// GetLowestBid orders by price, then creation time, then id. Returns nil when the order has no bids.
	GetLowestBid(ctx context.Context, orderId uuid.UUID) (*entity.Bid, error)
	GetOrderBids(ctx context.Context, orderId uuid.UUID, pg *entity.PaginationInput) ([]entity.Bid, error)
	GetSupplierBids(ctx context.Context, supplierId uuid.UUID, pg *entity.PaginationInput) ([]entity.Bid, error)
	DeleteBidById(ctx context.Context, id uuid.UUID) error
}

type Repositories struct {
	Transactor
	Diagnostics
	Order
	Supplier
	Bid
}

func NewRepositories(p *postgres.Postgres) *Repositories {
	return &Repositories{
		Transactor:  pgdb.NewTransactor(p),
		Diagnostics: pgdb.NewDiagnosticsRepo(p),
		Order:       pgdb.NewOrderRepo(p),
		Supplier:    pgdb.NewSupplierRepo(p),
		Bid:         pgdb.NewBidRepo(p),
	}
}
