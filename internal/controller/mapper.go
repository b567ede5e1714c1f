package controller

import (
	"time"

	"pooled-auction-api/internal/entity"

	"github.com/shopspring/decimal"
)

func formatPrice(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}

	s := d.Decimal.StringFixed(2)
	return &s
}

func mapOrder(o *entity.PooledOrder) *entity.OrderOutputModel {
	out := &entity.OrderOutputModel{
		Id:                     o.Id.String(),
		ProductId:              o.ProductId.String(),
		AreaGroupId:            o.AreaGroupId.String(),
		Status:                 string(o.Status),
		AuctionEndsAt:          o.AuctionEndsAt.UTC().Format(time.RFC3339),
		TotalQuantityCommitted: o.TotalQuantityCommitted.String(),
		FinalPricePerUnit:      formatPrice(o.FinalPricePerUnit),
		CreatedAt:              o.CreatedAt.UTC().Format(time.RFC3339),
	}
	if o.WinningBidId.Valid {
		id := o.WinningBidId.UUID.String()
		out.WinningBidId = &id
	}

	return out
}

func mapOrders(o []entity.PooledOrder) []entity.OrderOutputModel {
	s := make([]entity.OrderOutputModel, 0)
	for _, order := range o {
		s = append(s, *mapOrder(&order))
	}

	return s
}

func mapOrderDetails(d *entity.OrderDetails) *entity.OrderDetailsOutputModel {
	out := &entity.OrderDetailsOutputModel{
		PooledOrder:     *mapOrder(d.Order),
		MinNextBid:      formatPrice(d.MinNextBid),
		IsAuctionActive: d.IsAuctionActive,
	}
	if d.LowestBid != nil {
		out.CurrentLowestBid = formatPrice(decimal.NewNullDecimal(d.LowestBid.PricePerUnit))
	}

	return out
}

func mapBid(b *entity.Bid) *entity.BidOutputModel {
	return &entity.BidOutputModel{
		Id:            b.Id.String(),
		PooledOrderId: b.PooledOrderId.String(),
		SupplierId:    b.SupplierId.String(),
		PricePerUnit:  b.PricePerUnit.StringFixed(2),
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func mapBids(b []entity.Bid) []entity.BidOutputModel {
	s := make([]entity.BidOutputModel, 0)
	for _, bid := range b {
		s = append(s, *mapBid(&bid))
	}

	return s
}

func mapBidStatus(r *entity.BidStatusResult) *entity.BidStatusOutputModel {
	return &entity.BidStatusOutputModel{
		BidId:     r.Bid.Id.String(),
		Status:    string(r.Status),
		IsWinning: r.IsWinning,
	}
}

func mapSupplierBids(b []entity.SupplierBid) []entity.SupplierBidOutputModel {
	s := make([]entity.SupplierBidOutputModel, 0)
	for _, sb := range b {
		s = append(s, entity.SupplierBidOutputModel{
			Bid:              *mapBid(sb.Bid),
			PooledOrder:      *mapOrder(sb.Order),
			Status:           string(sb.Status),
			IsWinning:        sb.IsWinning,
			IsAuctionActive:  sb.IsAuctionActive,
			CurrentLowestBid: formatPrice(sb.CurrentLowest),
		})
	}

	return s
}

func mapBidValidation(v *entity.BidValidation) *entity.BidValidationOutputModel {
	out := &entity.BidValidationOutputModel{
		PooledOrderId: v.Order.Id.String(),
		MinNextBid:    formatPrice(v.MinNextBid),
	}
	if v.LowestBid != nil {
		out.CurrentLowestBid = formatPrice(decimal.NewNullDecimal(v.LowestBid.PricePerUnit))
	}

	return out
}
