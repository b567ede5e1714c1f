package pgdb

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/repo/repo_errors"
	"pooled-auction-api/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var orderColumns = []string{
	"id", "product_id", "area_group_id", "status", "auction_ends_at",
	"total_quantity_committed", "final_price_per_unit", "winning_bid_id", "created_at",
}

type OrderRepo struct {
	*postgres.Postgres
}

func NewOrderRepo(pgdb *postgres.Postgres) *OrderRepo {
	return &OrderRepo{pgdb}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}

// withPage applies pg; a nil pg selects every row.
func withPage(builder squirrel.SelectBuilder, pg *entity.PaginationInput) squirrel.SelectBuilder {
	if pg == nil {
		return builder
	}

	return builder.Offset(uint64(pg.Offset)).Limit(uint64(pg.Limit))
}

func scanOrder(row rowScanner) (*entity.PooledOrder, error) {
	var order entity.PooledOrder
	err := row.Scan(&order.Id, &order.ProductId, &order.AreaGroupId, &order.Status, &order.AuctionEndsAt,
		&order.TotalQuantityCommitted, &order.FinalPricePerUnit, &order.WinningBidId, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *OrderRepo) CreateOrder(ctx context.Context, input *entity.CreateOrderInput) (*entity.PooledOrder, error) {
	createOrderSql, args, _ := r.SqlBuilder.
		Insert("pooled_order").
		Columns("product_id", "area_group_id", "status", "auction_ends_at").
		Values(input.ProductId, input.AreaGroupId, entity.OrderPreparing, input.AuctionEndsAt.UTC()).
		Suffix("RETURNING " + joinColumns(orderColumns)).
		ToSql()

	order, err := scanOrder(r.Conn(ctx).QueryRowContext(ctx, createOrderSql, args...))
	if err != nil {
		return nil, errors.Wrap(err, "insert pooled order")
	}

	return order, nil
}

func (r *OrderRepo) GetOrderById(ctx context.Context, id uuid.UUID) (*entity.PooledOrder, error) {
	return r.getOrder(ctx, id, false)
}

func (r *OrderRepo) GetOrderByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.PooledOrder, error) {
	if _, ok := postgres.TxFromContext(ctx); !ok {
		return nil, errors.New("row lock requested outside of a transaction")
	}

	return r.getOrder(ctx, id, true)
}

func (r *OrderRepo) getOrder(ctx context.Context, id uuid.UUID, forUpdate bool) (*entity.PooledOrder, error) {
	builder := r.SqlBuilder.
		Select(orderColumns...).
		From("pooled_order").
		Where("id = ?", id)

	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	getOrderSql, args, _ := builder.ToSql()

	order, err := scanOrder(r.Conn(ctx).QueryRowContext(ctx, getOrderSql, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, errors.Wrap(err, "select pooled order")
	}

	return order, nil
}

func (r *OrderRepo) GetOrders(ctx context.Context, filter *entity.OrderFilter, pg *entity.PaginationInput) ([]entity.PooledOrder, error) {
	builder := r.SqlBuilder.
		Select(orderColumns...).
		From("pooled_order")

	if filter != nil && filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	}

	sqlReq, args, _ := withPage(builder.OrderBy("created_at DESC", "id ASC"), pg).ToSql()

	rows, err := r.Conn(ctx).QueryContext(ctx, sqlReq, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select pooled orders")
	}
	defer rows.Close()

	orders := make([]entity.PooledOrder, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return orders, errors.Wrap(err, "scan pooled order")
		}
		orders = append(orders, *order)
	}
	if err = rows.Err(); err != nil {
		return orders, errors.Wrap(err, "iterate pooled orders")
	}

	return orders, nil
}

func (r *OrderRepo) GetExpiredOpenOrderIds(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	sqlReq, args, _ := r.SqlBuilder.
		Select("id").
		From("pooled_order").
		Where(squirrel.Eq{"status": entity.OrderAuctionOpen}).
		Where(squirrel.LtOrEq{"auction_ends_at": now.UTC()}).
		OrderBy("auction_ends_at ASC").
		ToSql()

	rows, err := r.Conn(ctx).QueryContext(ctx, sqlReq, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select expired orders")
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return ids, errors.Wrap(err, "scan expired order id")
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return ids, errors.Wrap(err, "iterate expired orders")
	}

	return ids, nil
}

func (r *OrderRepo) UpdateOrder(ctx context.Context, id uuid.UUID, input *entity.UpdateOrderInput) (*entity.PooledOrder, error) {
	setMap := make(map[string]any)
	if input.Status != nil {
		setMap["status"] = *input.Status
	}
	if input.FinalPricePerUnit != nil {
		setMap["final_price_per_unit"] = *input.FinalPricePerUnit
	}
	if input.WinningBidId != nil {
		setMap["winning_bid_id"] = *input.WinningBidId
	}

	if len(setMap) == 0 {
		return r.GetOrderById(ctx, id)
	}

	updateOrderSql, args, _ := r.SqlBuilder.
		Update("pooled_order").
		SetMap(setMap).
		Where("id = ?", id).
		Suffix("RETURNING " + joinColumns(orderColumns)).
		ToSql()

	order, err := scanOrder(r.Conn(ctx).QueryRowContext(ctx, updateOrderSql, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, errors.Wrap(err, "update pooled order")
	}

	return order, nil
}
