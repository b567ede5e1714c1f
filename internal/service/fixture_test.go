package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"pooled-auction-api/internal/entity"
	"pooled-auction-api/internal/repo/memdb"
	"pooled-auction-api/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// tickingClock advances by a millisecond on every read so stored rows get
// distinct, increasing timestamps.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(time.Millisecond)
	return c.t
}

type fixture struct {
	store    *memdb.Store
	services *service.Services
	hook     *test.Hook

	mu  sync.RWMutex
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log, hook := test.NewNullLogger()
	f := &fixture{
		store: memdb.NewStore().WithClock((&tickingClock{t: base}).Now),
		hook:  hook,
		now:   base,
	}
	f.services = service.NewServices(service.Deps{
		Repos:            memdb.NewRepositories(f.store),
		Log:              log,
		MinBidDecrement:  decimal.NewFromInt(50),
		AwardConcurrency: 2,
		Now:              f.clock,
	})

	return f
}

func (f *fixture) clock() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)
}

func (f *fixture) putOrder(status entity.OrderStatus, endsIn time.Duration) entity.PooledOrder {
	order := entity.PooledOrder{
		Id:            uuid.New(),
		ProductId:     uuid.New(),
		AreaGroupId:   uuid.New(),
		Status:        status,
		AuctionEndsAt: f.clock().Add(endsIn),
	}
	f.store.PutOrder(order)

	return order
}

func (f *fixture) openOrder() entity.PooledOrder {
	return f.putOrder(entity.OrderAuctionOpen, time.Hour)
}

func (f *fixture) putSupplier(status entity.VerificationStatus) uuid.UUID {
	id := uuid.New()
	f.store.PutSupplier(entity.Supplier{UserId: id, BusinessName: "Supplier " + id.String()[:8], VerificationStatus: status})

	return id
}

func (f *fixture) verifiedSupplier() uuid.UUID {
	return f.putSupplier(entity.VerificationVerified)
}

func (f *fixture) submit(orderId, supplierId uuid.UUID, price string) (*entity.Bid, error) {
	return f.services.Bid.SubmitBid(context.Background(), &entity.CreateBidInput{
		PooledOrderId: orderId,
		SupplierId:    supplierId,
		PricePerUnit:  decimal.RequireFromString(price),
	})
}

func (f *fixture) mustSubmit(t *testing.T, orderId, supplierId uuid.UUID, price string) *entity.Bid {
	t.Helper()

	bid, err := f.submit(orderId, supplierId, price)
	require.NoError(t, err)

	return bid
}

func (f *fixture) bidStatus(t *testing.T, bidId uuid.UUID) entity.BidStatus {
	t.Helper()

	result, err := f.services.Bid.GetSupplierBidStatus(context.Background(), bidId)
	require.NoError(t, err)

	return result.Status
}
