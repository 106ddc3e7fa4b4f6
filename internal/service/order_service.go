package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrental-backend/internal/metrics"
	"carrental-backend/internal/models"
	"carrental-backend/internal/rental"
	"carrental-backend/internal/storage"
	"carrental-backend/pkg/logger"
)

type OrderService interface {
	Create(ctx context.Context, actor Actor, in models.CreateOrderInput) (*models.RentalOrder, error)
	Get(ctx context.Context, actor Actor, id uint64) (*models.RentalOrder, error)
	ListMine(ctx context.Context, actor Actor) ([]models.RentalOrder, error)
	ListAll(ctx context.Context, statuses []string) ([]models.RentalOrder, error)
	Countdown(ctx context.Context, actor Actor, id uint64) (CountdownView, error)
	Cancel(ctx context.Context, actor Actor, id uint64, reason string) (*models.RentalOrder, error)
	Actions(ctx context.Context, id uint64) (ActionsView, error)

	ConfirmDeposit(ctx context.Context, staff Actor, id uint64, in models.ReceiptInput) (*models.RentalOrder, error)
	CheckIn(ctx context.Context, staff Actor, id uint64) (*models.RentalOrder, error)
	RecordDelivery(ctx context.Context, staff Actor, id uint64, in models.InspectionInput) (*models.RentalOrder, error)
	RecordReturn(ctx context.Context, staff Actor, id uint64, in models.InspectionInput) (*models.RentalOrder, error)
	UpdateFees(ctx context.Context, staff Actor, id uint64, in models.FeesInput) (*models.RentalOrder, error)
	ConfirmTotal(ctx context.Context, staff Actor, id uint64) (*models.RentalOrder, error)
	ConfirmPayment(ctx context.Context, staff Actor, id uint64, in models.ReceiptInput) (*models.RentalOrder, error)
	RefundDeposit(ctx context.Context, staff Actor, id uint64, in models.ReceiptInput) (*models.RentalOrder, error)
	StaffCancel(ctx context.Context, staff Actor, id uint64, reason string) (*models.RentalOrder, error)

	SubmitFeedback(ctx context.Context, actor Actor, orderID uint64, in models.FeedbackInput) (*models.Feedback, error)
}

// CountdownView is what the checkout page polls.
type CountdownView struct {
	OrderID     uint64        `json:"order_id"`
	Status      rental.Status `json:"status"`
	Eligible    bool          `json:"eligible"`
	Expired     bool          `json:"expired"`
	RemainingMs int64         `json:"remaining_ms"`
	Remaining   string        `json:"remaining"`
	ExpiresAt   time.Time     `json:"expires_at"`
}

type ActionsView struct {
	OrderID uint64          `json:"order_id"`
	Status  rental.Status   `json:"status"`
	Label   string          `json:"label"`
	Actions []rental.Action `json:"actions"`
}

type orderService struct {
	stg  storage.IStorage
	set  Settings
	calc rental.Calculator
	push *pusher
	log  logger.ILogger
	now  func() time.Time
}

func NewOrderService(stg storage.IStorage, set Settings, push *pusher, log logger.ILogger, now func() time.Time) OrderService {
	return &orderService{
		stg:  stg,
		set:  set,
		calc: rental.Calculator{DepositPercent: set.DepositPercent},
		push: push,
		log:  log,
		now:  now,
	}
}

func (s *orderService) Create(ctx context.Context, actor Actor, in models.CreateOrderInput) (*models.RentalOrder, error) {
	// 1. Parse the local timestamps
	pickup, ret, err := parseRange(in.PickupTime, in.ExpectedReturnTime, s.set.Location)
	if err != nil {
		return nil, err
	}

	// 2. Car and location must exist
	car, err := s.stg.Car().GetByID(ctx, in.CarID)
	if err != nil {
		return nil, fmt.Errorf("car %d: %w", in.CarID, err)
	}
	if !car.Bookable() {
		return nil, ErrCarUnavailable
	}
	loc, err := s.stg.Location().GetByID(ctx, in.RentalLocationID)
	if err != nil {
		return nil, fmt.Errorf("rental location %d: %w", in.RentalLocationID, err)
	}
	if !loc.IsActive {
		return nil, ErrLocationClosed
	}

	// 3. Price it
	quote, err := s.calc.Quote(car.Prices(), pickup, ret, in.WithDriver)
	if err != nil {
		return nil, err
	}

	// 4. No overlap with committed bookings
	active, err := s.stg.Order().ActiveRanges(ctx, car.ID)
	if err != nil {
		return nil, err
	}
	if err := rental.CheckConflict(rental.Range{Start: pickup, End: ret}, active, s.set.Location); err != nil {
		metrics.IncBookingConflict()
		return nil, err
	}

	now := s.now()
	order := &models.RentalOrder{
		CarID:              car.ID,
		UserID:             actor.UserID,
		RentalLocationID:   loc.ID,
		PhoneNumber:        in.PhoneNumber,
		PickupTime:         pickup,
		ExpectedReturnTime: ret,
		WithDriver:         in.WithDriver,
		OrderDate:          now,
		Status:             rental.StatusPending,
		SubTotal:           quote.Fee,
		Deposit:            quote.Deposit,
		Total:              quote.Fee,
		CreatedAt:          now,
	}
	if err := s.stg.Order().Create(ctx, order); err != nil {
		return nil, err
	}

	metrics.IncOrderCreated()
	s.log.Info("rental order created",
		logger.Uint64("order_id", order.ID),
		logger.Uint64("car_id", car.ID),
		logger.Uint64("user_id", actor.UserID))

	order.Car = car
	order.RentalLocation = loc
	return order, nil
}

// Get loads an order by id and falls back to scanning the caller's orders
// when the direct lookup fails for any reason other than a clean miss.
func (s *orderService) Get(ctx context.Context, actor Actor, id uint64) (*models.RentalOrder, error) {
	order, err := s.stg.Order().GetByID(ctx, id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.Warning("order lookup failed, scanning list", logger.Uint64("order_id", id), logger.Error(err))
		order, err = s.findInList(ctx, actor, id)
	}
	if err != nil {
		return nil, err
	}

	if !actor.IsStaff() && order.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *orderService) findInList(ctx context.Context, actor Actor, id uint64) (*models.RentalOrder, error) {
	filter := models.OrderFilter{}
	if !actor.IsStaff() {
		filter.UserID = actor.UserID
	}
	orders, err := s.stg.Order().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *orderService) ListMine(ctx context.Context, actor Actor) ([]models.RentalOrder, error) {
	return s.stg.Order().List(ctx, models.OrderFilter{UserID: actor.UserID})
}

// ListAll accepts statuses in any representation the normalizer knows.
func (s *orderService) ListAll(ctx context.Context, statuses []string) ([]models.RentalOrder, error) {
	filter := models.OrderFilter{}
	for _, raw := range statuses {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			st, ok := rental.ParseStatus(part)
			if !ok {
				return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, part)
			}
			filter.Statuses = append(filter.Statuses, st)
		}
	}
	return s.stg.Order().List(ctx, filter)
}

func (s *orderService) Countdown(ctx context.Context, actor Actor, id uint64) (CountdownView, error) {
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return CountdownView{}, err
	}

	remaining, expired := rental.Countdown(order.CreatedAt, s.now())
	return CountdownView{
		OrderID:     order.ID,
		Status:      order.Status,
		Eligible:    rental.DepositEligible(order.Status, order.Deposit),
		Expired:     expired,
		RemainingMs: remaining.Milliseconds(),
		Remaining:   rental.FormatCountdown(remaining),
		ExpiresAt:   order.CreatedAt.Add(rental.DepositWindow),
	}, nil
}

// Cancel is the customer's own cancel; only orders still waiting for their
// deposit qualify.
func (s *orderService) Cancel(ctx context.Context, actor Actor, id uint64, reason string) (*models.RentalOrder, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "cancelled by customer"
	}
	return s.apply(ctx, id, rental.ActionCancel, map[string]any{"cancel_reason": reason}, func(_ storage.IStorage, o *models.RentalOrder) error {
		if o.Status != rental.StatusPending {
			return rental.ErrActionNotAllowed
		}
		return nil
	})
}

func (s *orderService) Actions(ctx context.Context, id uint64) (ActionsView, error) {
	order, err := s.stg.Order().GetByID(ctx, id)
	if err != nil {
		return ActionsView{}, err
	}
	return ActionsView{
		OrderID: order.ID,
		Status:  order.Status,
		Label:   order.Status.Label(),
		Actions: rental.AvailableActions(order.Status),
	}, nil
}

func (s *orderService) ConfirmDeposit(ctx context.Context, staff Actor, id uint64, in models.ReceiptInput) (*models.RentalOrder, error) {
	return s.apply(ctx, id, rental.ActionConfirmDeposit, nil, func(tx storage.IStorage, o *models.RentalOrder) error {
		// the car becomes committed now, so check again
		active, err := tx.Order().ActiveRanges(ctx, o.CarID)
		if err != nil {
			return err
		}
		if err := rental.CheckConflict(o.Range(), active, s.set.Location); err != nil {
			metrics.IncBookingConflict()
			return err
		}

		if hasPaid(o.Payments, models.PaymentTypeDeposit) {
			return nil
		}
		return s.recordManualPayment(ctx, tx, o, models.PaymentTypeDeposit, o.Deposit, in.ReceiptURL)
	})
}

func (s *orderService) CheckIn(ctx context.Context, staff Actor, id uint64) (*models.RentalOrder, error) {
	return s.apply(ctx, id, rental.ActionCheckIn, nil, nil)
}

func (s *orderService) RecordDelivery(ctx context.Context, staff Actor, id uint64, in models.InspectionInput) (*models.RentalOrder, error) {
	return s.inspect(ctx, staff, id, rental.ActionRecordDelivery, models.InspectionDelivery, in, nil)
}

func (s *orderService) RecordReturn(ctx context.Context, staff Actor, id uint64, in models.InspectionInput) (*models.RentalOrder, error) {
	return s.inspect(ctx, staff, id, rental.ActionRecordReturn, models.InspectionReturn, in,
		map[string]any{"actual_return_time": s.now()})
}

func (s *orderService) inspect(ctx context.Context, staff Actor, id uint64, action rental.Action, kind string, in models.InspectionInput, fields map[string]any) (*models.RentalOrder, error) {
	insp := rental.Inspection{
		OdometerKm:     in.OdometerKm,
		BatteryPercent: in.BatteryPercent,
		Condition:      in.Condition,
		Photos:         in.Photos,
	}
	if err := insp.Validate(); err != nil {
		return nil, err
	}
	photos, err := json.Marshal(insp.Photos)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, id, action, fields, func(tx storage.IStorage, o *models.RentalOrder) error {
		return tx.Inspection().Create(ctx, &models.VehicleInspection{
			RentalOrderID:  o.ID,
			Kind:           kind,
			OdometerKm:     insp.OdometerKm,
			BatteryPercent: insp.BatteryPercent,
			Condition:      insp.Condition,
			Photos:         photos,
			RecordedBy:     staff.UserID,
		})
	})
}

func (s *orderService) UpdateFees(ctx context.Context, staff Actor, id uint64, in models.FeesInput) (*models.RentalOrder, error) {
	if in.ExtraFee < 0 || in.DamageFee < 0 || in.Discount < 0 {
		return nil, fmt.Errorf("%w: fees must not be negative", ErrInvalidInput)
	}

	fields := map[string]any{
		"extra_fee":    in.ExtraFee,
		"damage_fee":   in.DamageFee,
		"discount":     in.Discount,
		"damage_notes": in.DamageNotes,
	}
	return s.apply(ctx, id, rental.ActionUpdateFees, fields, func(_ storage.IStorage, o *models.RentalOrder) error {
		fields["total"] = rental.Total(o.SubTotal, in.Discount, in.ExtraFee, in.DamageFee)
		return nil
	})
}

func (s *orderService) ConfirmTotal(ctx context.Context, staff Actor, id uint64) (*models.RentalOrder, error) {
	return s.apply(ctx, id, rental.ActionConfirmTotal, nil, nil)
}

func (s *orderService) ConfirmPayment(ctx context.Context, staff Actor, id uint64, in models.ReceiptInput) (*models.RentalOrder, error) {
	return s.apply(ctx, id, rental.ActionConfirmPayment, nil, func(tx storage.IStorage, o *models.RentalOrder) error {
		if hasPaid(o.Payments, models.PaymentTypeRentalFee) {
			return nil
		}
		return s.recordManualPayment(ctx, tx, o, models.PaymentTypeRentalFee, outstanding(o), in.ReceiptURL)
	})
}

func (s *orderService) RefundDeposit(ctx context.Context, staff Actor, id uint64, in models.ReceiptInput) (*models.RentalOrder, error) {
	return s.apply(ctx, id, rental.ActionRefundDeposit, nil, func(tx storage.IStorage, o *models.RentalOrder) error {
		refund := paidAmount(o.Payments, models.PaymentTypeDeposit)
		if refund <= 0 {
			return nil
		}
		return s.recordManualPayment(ctx, tx, o, models.PaymentTypeRefund, refund, in.ReceiptURL)
	})
}

func (s *orderService) StaffCancel(ctx context.Context, staff Actor, id uint64, reason string) (*models.RentalOrder, error) {
	if reason == "" {
		reason = "cancelled by staff"
	}
	return s.apply(ctx, id, rental.ActionCancel, map[string]any{"cancel_reason": reason}, nil)
}

// apply runs one workflow action in a transaction: the order's current status
// must allow the action, extra may add writes, and the status update only
// lands if nobody moved the order in between.
func (s *orderService) apply(ctx context.Context, id uint64, action rental.Action, fields map[string]any, extra func(tx storage.IStorage, o *models.RentalOrder) error) (*models.RentalOrder, error) {
	if fields == nil {
		fields = map[string]any{}
	}

	var order *models.RentalOrder
	err := s.stg.Atomic(ctx, func(tx storage.IStorage) error {
		o, err := tx.Order().GetByID(ctx, id)
		if err != nil {
			return err
		}
		target, err := rental.Transition(o.Status, action)
		if err != nil {
			return err
		}
		if extra != nil {
			if err := extra(tx, o); err != nil {
				return err
			}
		}

		fields["updated_at"] = s.now()
		ok, err := tx.Order().Transition(ctx, id, []rental.Status{o.Status}, target, fields)
		if err != nil {
			return err
		}
		if !ok {
			return ErrStaleOrder
		}
		order = o
		return nil
	})
	if err != nil {
		metrics.IncOrderAction(string(action), "rejected")
		return nil, err
	}
	metrics.IncOrderAction(string(action), "ok")

	updated, err := s.stg.Order().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("order action applied",
		logger.Uint64("order_id", id),
		logger.String("action", string(action)),
		logger.String("from", order.Status.String()),
		logger.String("to", updated.Status.String()))

	if updated.Status != order.Status {
		s.push.order(ctx, updated.UserID, updated.ID, "order_status",
			"Cập nhật đơn thuê xe", fmt.Sprintf("Đơn #%d: %s", updated.ID, updated.Status.Label()))
	}
	return updated, nil
}

func (s *orderService) recordManualPayment(ctx context.Context, tx storage.IStorage, o *models.RentalOrder, kind string, amount float64, receiptURL string) error {
	now := s.now()
	method := models.PaymentMethodCash
	if receiptURL != "" {
		method = models.PaymentMethodBankTransfer
	}
	return tx.Payment().Create(ctx, &models.Payment{
		RentalOrderID: o.ID,
		UserID:        o.UserID,
		Amount:        amount,
		PaymentType:   kind,
		PaymentMethod: method,
		Status:        models.PaymentStatusPaid,
		ReceiptURL:    receiptURL,
		PaidAt:        &now,
	})
}

func (s *orderService) SubmitFeedback(ctx context.Context, actor Actor, orderID uint64, in models.FeedbackInput) (*models.Feedback, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}

	order, err := s.Get(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	if order.Status != rental.StatusCompleted {
		return nil, ErrNotCompleted
	}

	fb := &models.Feedback{
		RentalOrderID: order.ID,
		UserID:        actor.UserID,
		CarID:         order.CarID,
		Rating:        in.Rating,
		Content:       strings.TrimSpace(in.Content),
	}
	if err := s.stg.Feedback().Create(ctx, fb); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrFeedbackExists
		}
		return nil, err
	}
	return fb, nil
}

func hasPaid(payments []models.Payment, kind string) bool {
	return paidAmount(payments, kind) > 0
}

func paidAmount(payments []models.Payment, kind string) float64 {
	var sum float64
	for _, p := range payments {
		if p.PaymentType == kind && p.Settled() {
			sum += p.Amount
		}
	}
	return sum
}

// outstanding is the rental fee still owed after paid deposits.
func outstanding(o *models.RentalOrder) float64 {
	rest := o.Total - paidAmount(o.Payments, models.PaymentTypeDeposit)
	if rest < 0 {
		return 0
	}
	return rest
}
