package service_test

import (
	"context"
	"testing"
	"time"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	input := &entity.CreateOrderInput{
		ProductId:     uuid.New(),
		AreaGroupId:   uuid.New(),
		AuctionEndsAt: base.Add(24 * time.Hour),
	}

	order, err := f.services.Order.CreateOrder(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPreparing, order.Status)
	assert.Equal(t, input.ProductId, order.ProductId)
	assert.True(t, order.TotalQuantityCommitted.IsZero())
	assert.False(t, order.WinningBidId.Valid)
}

func TestGetOrderById(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.openOrder()

	details, err := f.services.Order.GetOrderById(ctx, order.Id)
	require.NoError(t, err)
	assert.True(t, details.IsAuctionActive)
	assert.Nil(t, details.LowestBid)
	assert.False(t, details.MinNextBid.Valid)

	bid := f.mustSubmit(t, order.Id, f.verifiedSupplier(), "500")

	details, err = f.services.Order.GetOrderById(ctx, order.Id)
	require.NoError(t, err)
	require.NotNil(t, details.LowestBid)
	assert.Equal(t, bid.Id, details.LowestBid.Id)
	assert.Equal(t, "450.00", details.MinNextBid.Decimal.StringFixed(2))

	f.advance(2 * time.Hour)
	details, err = f.services.Order.GetOrderById(ctx, order.Id)
	require.NoError(t, err)
	assert.False(t, details.IsAuctionActive)
	assert.Equal(t, entity.OrderAuctionOpen, details.Order.Status)

	_, err = f.services.Order.GetOrderById(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrOrderNotFound)
}

func TestGetOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older := f.openOrder()
	f.putOrder(entity.OrderPreparing, time.Hour)
	newer := f.openOrder()

	status := entity.OrderAuctionOpen
	orders, err := f.services.Order.GetOrders(ctx, &entity.OrderFilter{Status: &status}, entity.NewPaginationInput(10, 0))
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.Id, orders[0].Id)
	assert.Equal(t, older.Id, orders[1].Id)

	all, err := f.services.Order.GetOrders(ctx, &entity.OrderFilter{}, entity.NewPaginationInput(2, 1))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, older.Id, all[1].Id)
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		from, to entity.OrderStatus
		allowed  bool
	}{
		{entity.OrderPreparing, entity.OrderAuctionOpen, true},
		{entity.OrderPreparing, entity.OrderCancelled, true},
		{entity.OrderAuctionOpen, entity.OrderCancelled, true},
		{entity.OrderAuctionClosed, entity.OrderCancelled, true},
		{entity.OrderAwarded, entity.OrderCompleted, true},
		{entity.OrderAwarded, entity.OrderCancelled, true},
		{entity.OrderAuctionOpen, entity.OrderAwarded, false},
		{entity.OrderAuctionOpen, entity.OrderAuctionClosed, false},
		{entity.OrderPreparing, entity.OrderCompleted, false},
		{entity.OrderCancelled, entity.OrderAuctionOpen, false},
		{entity.OrderCompleted, entity.OrderCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			f := newFixture(t)
			order := f.putOrder(tt.from, time.Hour)

			updated, err := f.services.Order.UpdateOrderStatus(ctx, order.Id, tt.to)
			if !tt.allowed {
				assert.ErrorIs(t, err, service.ErrInvalidTransition)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Status)
		})
	}

	t.Run("Same status", func(t *testing.T) {
		f := newFixture(t)
		order := f.putOrder(entity.OrderCompleted, time.Hour)

		updated, err := f.services.Order.UpdateOrderStatus(ctx, order.Id, entity.OrderCompleted)
		require.NoError(t, err)
		assert.Equal(t, entity.OrderCompleted, updated.Status)
	})

	t.Run("Unknown order", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.services.Order.UpdateOrderStatus(ctx, uuid.New(), entity.OrderCancelled)
		assert.ErrorIs(t, err, service.ErrOrderNotFound)
	})
}
