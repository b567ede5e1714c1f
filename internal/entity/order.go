package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPreparing     OrderStatus = "PREPARING"
	OrderAuctionOpen   OrderStatus = "AUCTION_OPEN"
	OrderAuctionClosed OrderStatus = "AUCTION_CLOSED"
	OrderAwarded       OrderStatus = "AWARDED"
	OrderCompleted     OrderStatus = "COMPLETED"
	OrderCancelled     OrderStatus = "CANCELLED"
)

// db model
type PooledOrder struct {
	Id                     uuid.UUID           `json:"id" db:"id"`
	ProductId              uuid.UUID           `json:"productId" db:"product_id"`
	AreaGroupId            uuid.UUID           `json:"areaGroupId" db:"area_group_id"`
	Status                 OrderStatus         `json:"status" db:"status"`
	AuctionEndsAt          time.Time           `json:"auctionEndsAt" db:"auction_ends_at"`
	TotalQuantityCommitted decimal.Decimal     `json:"totalQuantityCommitted" db:"total_quantity_committed"`
	FinalPricePerUnit      decimal.NullDecimal `json:"finalPricePerUnit" db:"final_price_per_unit"`
	WinningBidId           uuid.NullUUID       `json:"winningBidId" db:"winning_bid_id"`
	CreatedAt              time.Time           `json:"createdAt" db:"created_at"`
}

// IsAwarded reports whether the order carries a winner. The winner, the final
// price and the AWARDED status are always written together.
func (o *PooledOrder) IsAwarded() bool {
	return o.WinningBidId.Valid && o.FinalPricePerUnit.Valid
}

// service + repo input model
type CreateOrderInput struct {
	ProductId     uuid.UUID // given
	AreaGroupId   uuid.UUID // given
	AuctionEndsAt time.Time // given
	// Status is always PREPARING
	// Id and CreatedAt set automatically
}

// Only non-nil fields are written.
type UpdateOrderInput struct {
	Status            *OrderStatus
	FinalPricePerUnit *decimal.Decimal
	WinningBidId      *uuid.UUID
}

type OrderFilter struct {
	Status *OrderStatus
}

// OrderDetails is an order snapshot together with its derived auction state.
type OrderDetails struct {
	Order           *PooledOrder
	LowestBid       *Bid
	MinNextBid      decimal.NullDecimal
	IsAuctionActive bool
}
