package service

import (
	"context"
	"fmt"
	"time"

	"carrental-backend/internal/cache"
	"carrental-backend/internal/metrics"
	"carrental-backend/internal/models"
	"carrental-backend/internal/rental"
	"carrental-backend/internal/storage"
	"carrental-backend/pkg/logger"
	"carrental-backend/pkg/utils"
)

const autoCancelReason = "deposit not received within the deposit window"

// AutoCancelWorker cancels orders whose deposit window ran out. Each order is
// attempted at most once per claim; a failed attempt releases the claim so
// the next tick retries.
type AutoCancelWorker struct {
	orders storage.IOrderStorage
	claims cache.ClaimSet
	push   *pusher
	tick   time.Duration
	log    logger.ILogger
	now    func() time.Time
}

func NewAutoCancelWorker(stg storage.IStorage, claims cache.ClaimSet, notifier utils.Notifier, tick time.Duration, log logger.ILogger) *AutoCancelWorker {
	if tick <= 0 {
		tick = time.Second
	}
	if notifier == nil {
		notifier = utils.NopNotifier{}
	}
	return &AutoCancelWorker{
		orders: stg.Order(),
		claims: claims,
		push:   newPusher(stg.User(), notifier, log),
		tick:   tick,
		log:    log,
		now:    time.Now,
	}
}

// Run ticks until ctx is cancelled.
func (w *AutoCancelWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	w.log.Info("auto-cancel worker started", logger.Duration("tick", w.tick))
	for {
		select {
		case <-ctx.Done():
			w.log.Info("auto-cancel worker stopped")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one pass and returns how many orders it cancelled.
func (w *AutoCancelWorker) Tick(ctx context.Context) int {
	orders, err := w.orders.List(ctx, models.OrderFilter{Statuses: []rental.Status{rental.StatusPending}})
	if err != nil {
		w.log.Error("auto-cancel: list pending orders", logger.Error(err))
		return 0
	}

	now := w.now()
	cancelled := 0
	for _, o := range orders {
		if !rental.DepositEligible(o.Status, o.Deposit) || !rental.ShouldAutoCancel(o.Status, o.CreatedAt, now) {
			continue
		}
		if w.cancel(ctx, o) {
			cancelled++
		}
	}
	return cancelled
}

func (w *AutoCancelWorker) cancel(ctx context.Context, o models.RentalOrder) bool {
	key := "autocancel:" + utils.Uint64ToString(o.ID)
	claimed, err := w.claims.Claim(ctx, key)
	if err != nil {
		w.log.Error("auto-cancel: claim", logger.Uint64("order_id", o.ID), logger.Error(err))
		return false
	}
	if !claimed {
		return false
	}

	ok, err := w.orders.Transition(ctx, o.ID, []rental.Status{rental.StatusPending}, rental.StatusCancelled, map[string]any{
		"cancel_reason": autoCancelReason,
		"updated_at":    w.now(),
	})
	if err != nil {
		metrics.IncAutoCancel("error")
		w.log.Warning("auto-cancel failed, will retry", logger.Uint64("order_id", o.ID), logger.Error(err))
		if rerr := w.claims.Release(ctx, key); rerr != nil {
			w.log.Error("auto-cancel: release claim", logger.Uint64("order_id", o.ID), logger.Error(rerr))
		}
		return false
	}
	if !ok {
		// paid or cancelled in the meantime
		metrics.IncAutoCancel("skipped")
		return false
	}

	metrics.IncAutoCancel("cancelled")
	w.log.Info("order auto-cancelled", logger.Uint64("order_id", o.ID))
	w.push.order(ctx, o.UserID, o.ID, "order_cancelled",
		"Đơn thuê đã bị hủy", fmt.Sprintf("Đơn #%d đã bị hủy do chưa đặt cọc trong 10 phút", o.ID))
	return true
}
