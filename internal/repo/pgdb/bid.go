package pgdb

import (
	"context"
	"database/sql"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/repo/repo_errors"
	"pooled-auction-api/pkg/postgres"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var bidColumns = []string{"id", "pooled_order_id", "supplier_id", "price_per_unit", "notes", "created_at"}

// Lowest price first; earlier submissions win ties.
var bidRanking = []string{"price_per_unit ASC", "created_at ASC", "id ASC"}

type BidRepo struct {
	*postgres.Postgres
}

func NewBidRepo(pgdb *postgres.Postgres) *BidRepo {
	return &BidRepo{pgdb}
}

func scanBid(row rowScanner) (*entity.Bid, error) {
	var bid entity.Bid
	err := row.Scan(&bid.Id, &bid.PooledOrderId, &bid.SupplierId, &bid.PricePerUnit, &bid.Notes, &bid.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &bid, nil
}

func scanBids(rows *sql.Rows) ([]entity.Bid, error) {
	defer rows.Close()

	bids := make([]entity.Bid, 0)
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return bids, errors.Wrap(err, "scan bid")
		}
		bids = append(bids, *bid)
	}
	if err := rows.Err(); err != nil {
		return bids, errors.Wrap(err, "iterate bids")
	}

	return bids, nil
}

func (r *BidRepo) CreateBid(ctx context.Context, orderId, supplierId uuid.UUID, price decimal.Decimal, notes *string) (*entity.Bid, error) {
	createBidSql, args, _ := r.SqlBuilder.
		Insert("bid").
		Columns("pooled_order_id", "supplier_id", "price_per_unit", "notes").
		Values(orderId, supplierId, price, notes).
		Suffix("RETURNING " + joinColumns(bidColumns)).
		ToSql()

	bid, err := scanBid(r.Conn(ctx).QueryRowContext(ctx, createBidSql, args...))
	if err != nil {
		return nil, errors.Wrap(err, "insert bid")
	}

	return bid, nil
}

func (r *BidRepo) GetBidById(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	getBidSql, args, _ := r.SqlBuilder.
		Select(bidColumns...).
		From("bid").
		Where("id = ?", id).
		ToSql()

	bid, err := scanBid(r.Conn(ctx).QueryRowContext(ctx, getBidSql, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, errors.Wrap(err, "select bid")
	}

	return bid, nil
}

func (r *BidRepo) GetLowestBid(ctx context.Context, orderId uuid.UUID) (*entity.Bid, error) {
	lowestBidSql, args, _ := r.SqlBuilder.
		Select(bidColumns...).
		From("bid").
		Where("pooled_order_id = ?", orderId).
		OrderBy(bidRanking...).
		Limit(1).
		ToSql()

	bid, err := scanBid(r.Conn(ctx).QueryRowContext(ctx, lowestBidSql, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "select lowest bid")
	}

	return bid, nil
}

func (r *BidRepo) GetOrderBids(ctx context.Context, orderId uuid.UUID, pg *entity.PaginationInput) ([]entity.Bid, error) {
	builder := r.SqlBuilder.
		Select(bidColumns...).
		From("bid").
		Where("pooled_order_id = ?", orderId).
		OrderBy(bidRanking...)

	getOrderBidsSql, args, _ := withPage(builder, pg).ToSql()

	rows, err := r.Conn(ctx).QueryContext(ctx, getOrderBidsSql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select order bids")
	}

	return scanBids(rows)
}

func (r *BidRepo) GetSupplierBids(ctx context.Context, supplierId uuid.UUID, pg *entity.PaginationInput) ([]entity.Bid, error) {
	builder := r.SqlBuilder.
		Select(bidColumns...).
		From("bid").
		Where("supplier_id = ?", supplierId).
		OrderBy("created_at DESC", "id ASC")

	getSupplierBidsSql, args, _ := withPage(builder, pg).ToSql()

	rows, err := r.Conn(ctx).QueryContext(ctx, getSupplierBidsSql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select supplier bids")
	}

	return scanBids(rows)
}

func (r *BidRepo) DeleteBidById(ctx context.Context, id uuid.UUID) error {
	deleteBidSql, args, _ := r.SqlBuilder.
		Delete("bid").
		Where("id = ?", id).
		ToSql()

	res, err := r.Conn(ctx).ExecContext(ctx, deleteBidSql, args...)
	if err != nil {
		return errors.Wrap(err, "delete bid")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete bid")
	}
	if affected == 0 {
		return repo_errors.ErrNotFound
	}

	return nil
}
