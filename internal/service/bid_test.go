package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitBidSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.openOrder()

	first := f.mustSubmit(t, order.Id, f.verifiedSupplier(), "500")
	assert.Equal(t, entity.BidWinning, f.bidStatus(t, first.Id))

	second := f.mustSubmit(t, order.Id, f.verifiedSupplier(), "450")
	assert.Equal(t, entity.BidOutbid, f.bidStatus(t, first.Id))
	assert.Equal(t, entity.BidWinning, f.bidStatus(t, second.Id))

	minNext, err := f.services.Auction.CalculateMinNextBid(ctx, order.Id, decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.Equal(t, "400.00", minNext.Decimal.StringFixed(2))

	_, err = f.submit(order.Id, f.verifiedSupplier(), "460")
	require.ErrorIs(t, err, service.ErrDecrementTooSmall)
	assert.Contains(t, err.Error(), "50.00")
	assert.Contains(t, err.Error(), "450.00")

	lowest, err := f.services.Auction.GetCurrentLowestBid(ctx, order.Id)
	require.NoError(t, err)
	assert.Equal(t, second.Id, lowest.Id)
}

func TestSubmitBidValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("Invalid prices", func(t *testing.T) {
		f := newFixture(t)
		order := f.openOrder()
		supplier := f.verifiedSupplier()

		for _, price := range []string{"0", "-10", "10.001", "10000000000", "100000000000"} {
			_, err := f.submit(order.Id, supplier, price)
			assert.ErrorIs(t, err, service.ErrInvalidPrice, price)
		}
	})

	t.Run("Largest storable price", func(t *testing.T) {
		f := newFixture(t)
		order := f.openOrder()

		bid, err := f.submit(order.Id, f.verifiedSupplier(), "9999999999.99")
		require.NoError(t, err)
		assert.Equal(t, "9999999999.99", bid.PricePerUnit.StringFixed(2))
	})

	t.Run("Price is checked before the order", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.submit(uuid.New(), uuid.New(), "0")
		assert.ErrorIs(t, err, service.ErrInvalidPrice)
	})

	t.Run("Unknown order", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.submit(uuid.New(), f.verifiedSupplier(), "100")
		assert.ErrorIs(t, err, service.ErrOrderNotFound)
	})

	t.Run("Closed auction", func(t *testing.T) {
		f := newFixture(t)
		order := f.putOrder(entity.OrderAuctionClosed, time.Hour)

		_, err := f.submit(order.Id, f.verifiedSupplier(), "100")
		assert.ErrorIs(t, err, service.ErrAuctionNotAcceptingBids)
	})

	t.Run("Open auction past its deadline", func(t *testing.T) {
		f := newFixture(t)
		order := f.openOrder()
		f.advance(time.Hour)

		_, err := f.submit(order.Id, f.verifiedSupplier(), "100")
		assert.ErrorIs(t, err, service.ErrAuctionNotAcceptingBids)
	})

	t.Run("Auction state is checked before the supplier", func(t *testing.T) {
		f := newFixture(t)
		order := f.putOrder(entity.OrderPreparing, time.Hour)

		_, err := f.submit(order.Id, uuid.New(), "100")
		assert.ErrorIs(t, err, service.ErrAuctionNotAcceptingBids)
	})

	t.Run("Unknown supplier", func(t *testing.T) {
		f := newFixture(t)
		order := f.openOrder()

		_, err := f.submit(order.Id, uuid.New(), "100")
		assert.ErrorIs(t, err, service.ErrSupplierNotFound)
	})

	t.Run("Unverified supplier", func(t *testing.T) {
		f := newFixture(t)
		order := f.openOrder()

		for _, status := range []entity.VerificationStatus{entity.VerificationPending, entity.VerificationRejected} {
			_, err := f.submit(order.Id, f.putSupplier(status), "100")
			assert.ErrorIs(t, err, service.ErrSupplierNotVerified, status)
		}
	})

	t.Run("Equal price with zero decrement", func(t *testing.T) {
		f := newFixture(t)
		order := f.openOrder()
		f.mustSubmit(t, order.Id, f.verifiedSupplier(), "100")

		_, err := f.services.Bid.SubmitBid(ctx, &entity.CreateBidInput{
			PooledOrderId: order.Id,
			SupplierId:    f.verifiedSupplier(),
			PricePerUnit:  decimal.NewFromInt(100),
			MinDecrement:  decimal.NewNullDecimal(decimal.Zero),
		})
		assert.ErrorIs(t, err, service.ErrBidNotLower)
	})

	t.Run("Decrement override", func(t *testing.T) {
		f := newFixture(t)
		order := f.openOrder()
		f.mustSubmit(t, order.Id, f.verifiedSupplier(), "100")

		bid, err := f.services.Bid.SubmitBid(ctx, &entity.CreateBidInput{
			PooledOrderId: order.Id,
			SupplierId:    f.verifiedSupplier(),
			PricePerUnit:  decimal.RequireFromString("99.99"),
			MinDecrement:  decimal.NewNullDecimal(decimal.RequireFromString("0.01")),
		})
		require.NoError(t, err)
		assert.Equal(t, "99.99", bid.PricePerUnit.StringFixed(2))
	})

	t.Run("Negative decrement", func(t *testing.T) {
		f := newFixture(t)
		order := f.openOrder()

		_, err := f.services.Bid.SubmitBid(ctx, &entity.CreateBidInput{
			PooledOrderId: order.Id,
			SupplierId:    f.verifiedSupplier(),
			PricePerUnit:  decimal.NewFromInt(100),
			MinDecrement:  decimal.NewNullDecimal(decimal.NewFromInt(-1)),
		})
		assert.ErrorIs(t, err, service.ErrInvalidDecrement)
	})

	t.Run("Decrement larger than the lowest price", func(t *testing.T) {
		f := newFixture(t)
		order := f.openOrder()
		f.mustSubmit(t, order.Id, f.verifiedSupplier(), "30")

		_, err := f.submit(order.Id, f.verifiedSupplier(), "0.01")
		assert.ErrorIs(t, err, service.ErrDecrementTooSmall)
	})

	t.Run("Rejected bids aren't stored", func(t *testing.T) {
		f := newFixture(t)
		order := f.openOrder()
		f.mustSubmit(t, order.Id, f.verifiedSupplier(), "500")
		_, err := f.submit(order.Id, f.verifiedSupplier(), "480")
		require.Error(t, err)

		bids, err := f.services.Bid.GetOrderBids(ctx, order.Id, nil)
		require.NoError(t, err)
		assert.Len(t, bids, 1)
	})
}

func TestValidateBid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.openOrder()
	supplier := f.verifiedSupplier()
	f.mustSubmit(t, order.Id, f.verifiedSupplier(), "500")

	result, err := f.services.Bid.ValidateBid(ctx, &entity.CreateBidInput{
		PooledOrderId: order.Id,
		SupplierId:    supplier,
		PricePerUnit:  decimal.NewFromInt(420),
	})
	require.NoError(t, err)
	assert.Equal(t, order.Id, result.Order.Id)
	assert.Equal(t, supplier, result.Supplier.UserId)
	assert.Equal(t, "500.00", result.LowestBid.PricePerUnit.StringFixed(2))
	assert.Equal(t, "450.00", result.MinNextBid.Decimal.StringFixed(2))

	bids, err := f.services.Bid.GetOrderBids(ctx, order.Id, nil)
	require.NoError(t, err)
	assert.Len(t, bids, 1)
}

func TestConcurrentSubmissions(t *testing.T) {
	f := newFixture(t)
	order := f.openOrder()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		supplier := f.verifiedSupplier()
		price := decimal.NewFromInt(int64(1000 - 10*i)).String()

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.submit(order.Id, supplier, price)
		}()
	}
	wg.Wait()

	bids, err := f.services.Bid.GetOrderBids(context.Background(), order.Id, nil)
	require.NoError(t, err)
	require.NotEmpty(t, bids)

	// Accepted bids, in submission order, must each undercut the previous one
	// by the full decrement.
	bySubmission := make([]entity.Bid, len(bids))
	copy(bySubmission, bids)
	for i := 1; i < len(bySubmission); i++ {
		for j := i; j > 0 && bySubmission[j].CreatedAt.Before(bySubmission[j-1].CreatedAt); j-- {
			bySubmission[j], bySubmission[j-1] = bySubmission[j-1], bySubmission[j]
		}
	}
	for i := 1; i < len(bySubmission); i++ {
		limit := bySubmission[i-1].PricePerUnit.Sub(decimal.NewFromInt(50))
		assert.True(t, bySubmission[i].PricePerUnit.LessThanOrEqual(limit),
			"%s accepted after %s", bySubmission[i].PricePerUnit, bySubmission[i-1].PricePerUnit)
	}
}

func TestWinningBidStaysAwarded(t *testing.T) {
	f := newFixture(t)
	order := f.openOrder()
	winner := f.mustSubmit(t, order.Id, f.verifiedSupplier(), "300")
	f.advance(2 * time.Hour)

	_, err := f.services.Auction.AwardAuction(context.Background(), order.Id)
	require.NoError(t, err)

	lower := f.store.PutBid(entity.Bid{
		PooledOrderId: order.Id,
		SupplierId:    f.verifiedSupplier(),
		PricePerUnit:  decimal.NewFromInt(100),
	})

	status, err := f.services.Bid.GetSupplierBidStatus(context.Background(), winner.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.BidAwarded, status.Status)
	assert.True(t, status.IsWinning)
	assert.Equal(t, entity.BidOutbid, f.bidStatus(t, lower.Id))
}

func TestGetSupplierBidStatusUnknownBid(t *testing.T) {
	f := newFixture(t)

	_, err := f.services.Bid.GetSupplierBidStatus(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrBidNotFound)
}

func TestCancelBid(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner cancels while open", func(t *testing.T) {
		f := newFixture(t)
		order := f.openOrder()
		first := f.mustSubmit(t, order.Id, f.verifiedSupplier(), "500")
		owner := f.verifiedSupplier()
		second := f.mustSubmit(t, order.Id, owner, "450")

		require.NoError(t, f.services.Bid.CancelBid(ctx, second.Id, owner))

		_, err := f.services.Bid.GetBidById(ctx, second.Id)
		assert.ErrorIs(t, err, service.ErrBidNotFound)
		assert.Equal(t, entity.BidWinning, f.bidStatus(t, first.Id))
	})

	t.Run("Other supplier", func(t *testing.T) {
		f := newFixture(t)
		order := f.openOrder()
		bid := f.mustSubmit(t, order.Id, f.verifiedSupplier(), "500")

		err := f.services.Bid.CancelBid(ctx, bid.Id, f.verifiedSupplier())
		assert.ErrorIs(t, err, service.ErrUserHasNoAccessToBid)

		_, err = f.services.Bid.GetBidById(ctx, bid.Id)
		assert.NoError(t, err)
	})

	t.Run("Auction over", func(t *testing.T) {
		f := newFixture(t)
		order := f.openOrder()
		owner := f.verifiedSupplier()
		bid := f.mustSubmit(t, order.Id, owner, "500")
		f.advance(2 * time.Hour)

		err := f.services.Bid.CancelBid(ctx, bid.Id, owner)
		assert.ErrorIs(t, err, service.ErrCannotCancelBid)
		assert.ErrorIs(t, err, service.ErrAuctionNotAcceptingBids)
	})

	t.Run("Unknown bid", func(t *testing.T) {
		f := newFixture(t)

		err := f.services.Bid.CancelBid(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, service.ErrBidNotFound)
	})
}

func TestGetSupplierBids(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	supplier := f.verifiedSupplier()

	lost := f.openOrder()
	outbid := f.mustSubmit(t, lost.Id, supplier, "500")
	f.mustSubmit(t, lost.Id, f.verifiedSupplier(), "400")

	leading := f.openOrder()
	winning := f.mustSubmit(t, leading.Id, supplier, "200")

	views, err := f.services.Bid.GetSupplierBids(ctx, supplier, nil)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, winning.Id, views[0].Bid.Id)
	assert.Equal(t, entity.BidWinning, views[0].Status)
	assert.True(t, views[0].IsWinning)
	assert.True(t, views[0].IsAuctionActive)
	assert.Equal(t, "200.00", views[0].CurrentLowest.Decimal.StringFixed(2))

	assert.Equal(t, outbid.Id, views[1].Bid.Id)
	assert.Equal(t, entity.BidOutbid, views[1].Status)
	assert.False(t, views[1].IsWinning)
	assert.Equal(t, "400.00", views[1].CurrentLowest.Decimal.StringFixed(2))

	_, err = f.services.Bid.GetSupplierBids(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, service.ErrSupplierNotFound)
}

func TestSubmitBidLogs(t *testing.T) {
	f := newFixture(t)
	order := f.openOrder()
	bid := f.mustSubmit(t, order.Id, f.verifiedSupplier(), "500")

	entry := f.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "bid accepted", entry.Message)
	assert.Equal(t, bid.Id, entry.Data["bid_id"])
	assert.Equal(t, "500.00", entry.Data["price"])
}
