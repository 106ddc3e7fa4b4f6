package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/cache"
	"carrental-backend/internal/models"
	"carrental-backend/internal/rental"
	"carrental-backend/pkg/logger"
	"carrental-backend/pkg/utils"
)

var ict = time.FixedZone("ICT", 7*3600)

func pendingOrder(id uint64, createdAt time.Time) models.RentalOrder {
	return models.RentalOrder{
		ID:        id,
		UserID:    7,
		Status:    rental.StatusPending,
		Deposit:   300000,
		CreatedAt: createdAt,
	}
}

func newTestWorker(stg *storeMock, now *time.Time) *AutoCancelWorker {
	w := NewAutoCancelWorker(stg, cache.NewMemoryClaimSet(cache.ClaimTTL), utils.NopNotifier{}, time.Second, logger.NewNop())
	w.now = func() time.Time { return *now }
	return w
}

func TestAutoCancelCancelsExpiredOrderOnce(t *testing.T) {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, ict)
	order := pendingOrder(11, created)

	stg := newStoreMock()
	// the list keeps reporting the order as pending, as a lagging replica would
	stg.orders.listFn = func(_ context.Context, f models.OrderFilter) ([]models.RentalOrder, error) {
		assert.Equal(t, []rental.Status{rental.StatusPending}, f.Statuses)
		return []models.RentalOrder{order}, nil
	}
	var calls int
	stg.orders.transitionFn = func(_ context.Context, id uint64, from []rental.Status, to rental.Status, fields map[string]any) (bool, error) {
		calls++
		assert.Equal(t, uint64(11), id)
		assert.Equal(t, []rental.Status{rental.StatusPending}, from)
		assert.Equal(t, rental.StatusCancelled, to)
		assert.Equal(t, autoCancelReason, fields["cancel_reason"])
		return true, nil
	}

	now := created.Add(9*time.Minute + 59*time.Second)
	w := newTestWorker(stg, &now)

	assert.Equal(t, 0, w.Tick(context.Background()))
	assert.Equal(t, 0, calls)

	now = time.Date(2024, 1, 1, 10, 10, 1, 0, ict)
	assert.Equal(t, 1, w.Tick(context.Background()))
	assert.Equal(t, 1, calls)

	now = time.Date(2024, 1, 1, 10, 11, 0, 0, ict)
	assert.Equal(t, 0, w.Tick(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestAutoCancelReleasesClaimOnFailure(t *testing.T) {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, ict)
	stg := newStoreMock()
	stg.orders.listFn = func(context.Context, models.OrderFilter) ([]models.RentalOrder, error) {
		return []models.RentalOrder{pendingOrder(12, created)}, nil
	}
	var calls int
	stg.orders.transitionFn = func(context.Context, uint64, []rental.Status, rental.Status, map[string]any) (bool, error) {
		calls++
		if calls == 1 {
			return false, errors.New("deadlock found when trying to get lock")
		}
		return true, nil
	}

	now := created.Add(11 * time.Minute)
	w := newTestWorker(stg, &now)

	assert.Equal(t, 0, w.Tick(context.Background()))
	assert.Equal(t, 1, w.Tick(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestAutoCancelSkipsIneligibleOrders(t *testing.T) {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, ict)
	noDeposit := pendingOrder(13, created)
	noDeposit.Deposit = 0
	confirmed := pendingOrder(14, created)
	confirmed.Status = rental.StatusConfirmed

	stg := newStoreMock()
	stg.orders.listFn = func(context.Context, models.OrderFilter) ([]models.RentalOrder, error) {
		return []models.RentalOrder{noDeposit, confirmed}, nil
	}
	stg.orders.transitionFn = func(context.Context, uint64, []rental.Status, rental.Status, map[string]any) (bool, error) {
		t.Fatal("no order should be transitioned")
		return false, nil
	}

	now := created.Add(time.Hour)
	w := newTestWorker(stg, &now)
	assert.Equal(t, 0, w.Tick(context.Background()))
}

func TestAutoCancelLosesRaceToPayment(t *testing.T) {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, ict)
	stg := newStoreMock()
	stg.orders.listFn = func(context.Context, models.OrderFilter) ([]models.RentalOrder, error) {
		return []models.RentalOrder{pendingOrder(15, created)}, nil
	}
	// the deposit callback moved the order first
	stg.orders.transitionFn = func(context.Context, uint64, []rental.Status, rental.Status, map[string]any) (bool, error) {
		return false, nil
	}

	now := created.Add(10*time.Minute + time.Second)
	w := newTestWorker(stg, &now)
	assert.Equal(t, 0, w.Tick(context.Background()))
}

func TestAutoCancelRunStopsOnContextCancel(t *testing.T) {
	stg := newStoreMock()
	now := time.Now()
	w := newTestWorker(stg, &now)
	w.tick = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "worker did not stop")
	}
}
