package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BidStatus string

const (
	BidWinning BidStatus = "WINNING"
	BidOutbid  BidStatus = "OUTBID"
	BidAwarded BidStatus = "AWARDED"
)

// Bids are never edited in place, only created or deleted.
type Bid struct {
	Id            uuid.UUID       `json:"id" db:"id"`
	PooledOrderId uuid.UUID       `json:"pooledOrderId" db:"pooled_order_id"`
	SupplierId    uuid.UUID       `json:"supplierId" db:"supplier_id"`
	PricePerUnit  decimal.Decimal `json:"pricePerUnit" db:"price_per_unit"`
	Notes         *string         `json:"notes" db:"notes"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}

// service + repo input model
type CreateBidInput struct {
	PooledOrderId uuid.UUID       // given
	SupplierId    uuid.UUID       // given
	PricePerUnit  decimal.Decimal // given
	Notes         *string         // optional
	// MinDecrement overrides the service default when set
	MinDecrement decimal.NullDecimal
	// Id and CreatedAt set automatically
}

// BidValidation is what validation observed while accepting a bid.
type BidValidation struct {
	Order      *PooledOrder
	Supplier   *Supplier
	LowestBid  *Bid
	MinNextBid decimal.NullDecimal
}

type BidStatusResult struct {
	Bid       *Bid
	Status    BidStatus
	IsWinning bool
}

type SupplierBid struct {
	Bid             *Bid
	Order           *PooledOrder
	Status          BidStatus
	IsWinning       bool
	IsAuctionActive bool
	CurrentLowest   decimal.NullDecimal
}
