package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"carrental-backend/internal/cache"
	"carrental-backend/internal/metrics"
	"carrental-backend/internal/models"
	"carrental-backend/internal/payment"
	"carrental-backend/internal/rental"
	"carrental-backend/internal/storage"
	"carrental-backend/pkg/logger"
)

const (
	ReturnPath           = "/api/v1/payments/return"
	MoMoIPNPath          = "/api/v1/payments/momo/ipn"
	PayOSWebhookPath     = "/api/v1/payments/payos/webhook"
	MidtransNotifyPath   = "/api/v1/payments/midtrans/notification"
	redirectSourceQuery  = "query"
	redirectSourceSess   = "session"
	redirectSourceRecord = "payment_record"
)

type MoMoGateway interface {
	payment.Gateway
	VerifyIPN(n payment.MoMoIPN) (payment.Notification, error)
}

type PayOSGateway interface {
	payment.Gateway
	VerifyWebhook(w payment.PayOSWebhook) (payment.Notification, error)
}

type MidtransGateway interface {
	payment.Gateway
	VerifyNotification(n payment.MidtransNotification) (payment.Notification, error)
}

// Gateways holds the configured providers; a nil field is disabled.
type Gateways struct {
	MoMo     MoMoGateway
	PayOS    PayOSGateway
	Midtrans MidtransGateway
}

func (g Gateways) get(p payment.Provider) (payment.Gateway, error) {
	switch p {
	case payment.ProviderMoMo:
		if g.MoMo != nil {
			return g.MoMo, nil
		}
	case payment.ProviderPayOS:
		if g.PayOS != nil {
			return g.PayOS, nil
		}
	case payment.ProviderMidtrans:
		if g.Midtrans != nil {
			return g.Midtrans, nil
		}
	default:
		return nil, payment.ErrUnknownProvider
	}
	return nil, ErrGatewayDisabled
}

func notifyPath(p payment.Provider) string {
	switch p {
	case payment.ProviderMoMo:
		return MoMoIPNPath
	case payment.ProviderPayOS:
		return PayOSWebhookPath
	default:
		return MidtransNotifyPath
	}
}

type PaymentService interface {
	Initiate(ctx context.Context, actor Actor, orderID uint64, in models.InitiatePaymentInput, sessionID string) (*Checkout, error)
	ResolveRedirect(ctx context.Context, q url.Values, sessionID string) ResolvedRedirect
	HandleMoMoIPN(ctx context.Context, n payment.MoMoIPN) error
	HandlePayOSWebhook(ctx context.Context, w payment.PayOSWebhook) error
	HandleMidtransNotification(ctx context.Context, n payment.MidtransNotification) error
	ListMine(ctx context.Context, actor Actor) ([]models.Payment, error)
	ListForOrder(ctx context.Context, actor Actor, orderID uint64) ([]models.Payment, error)
}

// Checkout is returned to the client, which sends the browser to PayURL.
type Checkout struct {
	PaymentID        uint64  `json:"payment_id"`
	OrderID          uint64  `json:"order_id"`
	Provider         string  `json:"provider"`
	PaymentType      string  `json:"payment_type"`
	Amount           float64 `json:"amount"`
	PayURL           string  `json:"pay_url"`
	Token            string  `json:"token,omitempty"`
	GatewayOrderID   string  `json:"gateway_order_id,omitempty"`
	GatewayOrderCode int64   `json:"gateway_order_code,omitempty"`
}

// ResolvedRedirect is where the browser goes after a gateway return.
type ResolvedRedirect struct {
	Provider payment.Provider
	Outcome  payment.Outcome
	OrderID  uint64
	Source   string
	Target   string
}

type paymentService struct {
	stg      storage.IStorage
	pending  cache.PendingOrders
	gateways Gateways
	set      Settings
	push     *pusher
	log      logger.ILogger
	now      func() time.Time
}

func NewPaymentService(stg storage.IStorage, pending cache.PendingOrders, gateways Gateways, set Settings, push *pusher, log logger.ILogger, now func() time.Time) PaymentService {
	return &paymentService{
		stg:      stg,
		pending:  pending,
		gateways: gateways,
		set:      set,
		push:     push,
		log:      log,
		now:      now,
	}
}

func (s *paymentService) Initiate(ctx context.Context, actor Actor, orderID uint64, in models.InitiatePaymentInput, sessionID string) (*Checkout, error) {
	order, err := s.stg.Order().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID {
		return nil, ErrForbidden
	}

	// 1. What is owed at this stage
	var amount float64
	switch in.PaymentType {
	case models.PaymentTypeDeposit:
		if order.Status != rental.StatusPending {
			return nil, ErrNothingToPay
		}
		if _, expired := rental.Countdown(order.CreatedAt, s.now()); expired {
			return nil, ErrDepositExpired
		}
		if hasPaid(order.Payments, models.PaymentTypeDeposit) {
			return nil, ErrAlreadyPaid
		}
		amount = order.Deposit
	case models.PaymentTypeRentalFee:
		if order.Status != rental.StatusPaymentPending {
			return nil, ErrNothingToPay
		}
		amount = outstanding(order)
	default:
		return nil, fmt.Errorf("%w: payment_type", ErrInvalidInput)
	}
	if amount <= 0 {
		return nil, ErrNothingToPay
	}

	provider := payment.Provider(in.Provider)
	gw, err := s.gateways.get(provider)
	if err != nil {
		return nil, err
	}

	// 2. Durable row first, so every gateway reference maps back to the order
	p := &models.Payment{
		RentalOrderID: order.ID,
		UserID:        actor.UserID,
		Amount:        amount,
		PaymentType:   in.PaymentType,
		PaymentMethod: in.Provider,
		Status:        models.PaymentStatusPending,
	}
	if err := s.stg.Payment().Create(ctx, p); err != nil {
		return nil, err
	}

	buyer, err := s.stg.User().GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	// 3. Ask the gateway for a link
	base := strings.TrimRight(s.set.PublicBaseURL, "/")
	link, err := gw.CreatePayment(ctx, payment.Request{
		OrderID:     order.ID,
		PaymentID:   p.ID,
		Amount:      int64(math.Round(amount)),
		Description: describe(order.ID, in.PaymentType),
		ReturnURL:   base + ReturnPath,
		NotifyURL:   base + notifyPath(provider),
		BuyerName:   buyer.FullName,
		BuyerEmail:  buyer.Email,
		BuyerPhone:  order.PhoneNumber,
	})
	if err != nil {
		if _, serr := s.stg.Payment().Settle(ctx, p.ID, models.PaymentStatusFailed, "", s.now()); serr != nil {
			s.log.Error("failed to mark payment failed", logger.Uint64("payment_id", p.ID), logger.Error(serr))
		}
		s.log.Error("gateway create payment failed",
			logger.String("provider", string(provider)),
			logger.Uint64("order_id", order.ID),
			logger.Error(err))
		return nil, err
	}

	refs := storage.GatewayRefs{GatewayOrderID: link.GatewayOrderID, GatewayOrderCode: link.GatewayOrderCode, PayURL: link.PayURL}
	if err := s.stg.Payment().SetGatewayRefs(ctx, p.ID, refs); err != nil {
		return nil, err
	}

	// 4. Remember which order this browser is paying for
	if sessionID != "" && s.pending != nil {
		if err := s.pending.Put(ctx, sessionID, order.ID); err != nil {
			s.log.Warning("pending order not cached", logger.Uint64("order_id", order.ID), logger.Error(err))
		}
	}

	return &Checkout{
		PaymentID:        p.ID,
		OrderID:          order.ID,
		Provider:         in.Provider,
		PaymentType:      in.PaymentType,
		Amount:           amount,
		PayURL:           link.PayURL,
		Token:            link.Token,
		GatewayOrderID:   link.GatewayOrderID,
		GatewayOrderCode: link.GatewayOrderCode,
	}, nil
}

func describe(orderID uint64, kind string) string {
	if kind == models.PaymentTypeDeposit {
		return fmt.Sprintf("Dat coc don %d", orderID)
	}
	return fmt.Sprintf("Thanh toan don %d", orderID)
}

// ResolveRedirect never fails: whatever comes back, the browser gets a safe
// destination.
func (s *paymentService) ResolveRedirect(ctx context.Context, q url.Values, sessionID string) ResolvedRedirect {
	r := payment.ParseRedirect(q, s.set.LegacyOrderIDMax)
	out := ResolvedRedirect{Provider: r.Provider, Outcome: r.Outcome, OrderID: r.OrderID}
	if out.OrderID != 0 {
		out.Source = redirectSourceQuery
	}

	if out.OrderID == 0 && sessionID != "" && s.pending != nil {
		id, ok, err := s.pending.Get(ctx, sessionID)
		if err != nil {
			s.log.Warning("pending order lookup failed", logger.Error(err))
		}
		if ok {
			out.OrderID, out.Source = id, redirectSourceSess
		}
	}

	if out.OrderID == 0 {
		if p := s.paymentForRedirect(ctx, r); p != nil {
			out.OrderID, out.Source = p.RentalOrderID, redirectSourceRecord
		}
	}

	if sessionID != "" && s.pending != nil {
		if err := s.pending.Delete(ctx, sessionID); err != nil {
			s.log.Warning("pending order not cleared", logger.Error(err))
		}
	}

	out.Target = r.Target(s.set.FrontendURL, out.OrderID)
	metrics.IncPaymentRedirect(string(r.Provider), r.Outcome.String())
	if r.Outcome == payment.OutcomeAnomalous {
		s.log.Warning("unexpected payment return", logger.String("query", q.Encode()))
	}
	return out
}

func (s *paymentService) paymentForRedirect(ctx context.Context, r payment.Redirect) *models.Payment {
	if r.GatewayOrderCode != 0 {
		if p, err := s.stg.Payment().GetByGatewayOrderCode(ctx, r.GatewayOrderCode); err == nil {
			return p
		}
	}
	if r.GatewayOrderID != "" {
		if p, err := s.stg.Payment().GetByGatewayOrderID(ctx, r.GatewayOrderID); err == nil {
			return p
		}
	}
	return nil
}

func (s *paymentService) HandleMoMoIPN(ctx context.Context, n payment.MoMoIPN) error {
	if s.gateways.MoMo == nil {
		return ErrGatewayDisabled
	}
	note, err := s.gateways.MoMo.VerifyIPN(n)
	if err != nil {
		return err
	}
	return s.settle(ctx, note)
}

func (s *paymentService) HandlePayOSWebhook(ctx context.Context, w payment.PayOSWebhook) error {
	if s.gateways.PayOS == nil {
		return ErrGatewayDisabled
	}
	note, err := s.gateways.PayOS.VerifyWebhook(w)
	if err != nil {
		return err
	}
	return s.settle(ctx, note)
}

func (s *paymentService) HandleMidtransNotification(ctx context.Context, n payment.MidtransNotification) error {
	if s.gateways.Midtrans == nil {
		return ErrGatewayDisabled
	}
	note, err := s.gateways.Midtrans.VerifyNotification(n)
	if err != nil {
		return err
	}
	return s.settle(ctx, note)
}

// settle applies a verified callback. Callbacks for payments that are no
// longer pending are acknowledged and ignored.
func (s *paymentService) settle(ctx context.Context, n payment.Notification) error {
	p, err := s.findPayment(ctx, n)
	if err != nil {
		return err
	}
	log := s.log.With(
		logger.String("provider", string(n.Provider)),
		logger.Uint64("payment_id", p.ID),
		logger.Uint64("order_id", p.RentalOrderID))

	if n.OrderID != 0 && n.OrderID != p.RentalOrderID {
		log.Error("callback order does not match payment record", logger.Uint64("callback_order_id", n.OrderID))
		return fmt.Errorf("%w: order mismatch", ErrInvalidInput)
	}
	if p.Status != models.PaymentStatusPending {
		log.Debug("callback for settled payment ignored", logger.String("status", p.Status))
		return nil
	}

	var status string
	switch {
	case n.Paid:
		status = models.PaymentStatusPaid
	case n.Failed:
		status = models.PaymentStatusFailed
	default:
		return nil
	}
	if n.Paid && n.Amount != 0 && n.Amount != int64(math.Round(p.Amount)) {
		log.Error("callback amount mismatch", logger.Int64("amount", n.Amount))
		metrics.IncPaymentSettled(string(n.Provider), "amount_mismatch")
		return ErrAmountMismatch
	}

	var advanced bool
	err = s.stg.Atomic(ctx, func(tx storage.IStorage) error {
		ok, err := tx.Payment().Settle(ctx, p.ID, status, n.TransID, s.now())
		if err != nil || !ok || status != models.PaymentStatusPaid {
			return err
		}

		from, to := rental.StatusPending, rental.StatusDocumentsSubmitted
		if p.PaymentType == models.PaymentTypeRentalFee {
			from, to = rental.StatusPaymentPending, rental.StatusCompleted
		}
		advanced, err = tx.Order().Transition(ctx, p.RentalOrderID, []rental.Status{from}, to,
			map[string]any{"updated_at": s.now()})
		return err
	})
	if err != nil {
		return err
	}

	metrics.IncPaymentSettled(string(n.Provider), status)
	log.Info("payment settled", logger.String("status", status), logger.Bool("order_advanced", advanced))

	if status == models.PaymentStatusPaid && !advanced {
		// e.g. the deposit arrived after the order was auto-cancelled
		log.Warning("paid callback did not advance the order, manual review needed")
	}
	if status == models.PaymentStatusPaid {
		s.push.order(ctx, p.UserID, p.RentalOrderID, "payment_success",
			"Thanh toán thành công", fmt.Sprintf("Đã nhận thanh toán cho đơn #%d", p.RentalOrderID))
	}
	return nil
}

func (s *paymentService) findPayment(ctx context.Context, n payment.Notification) (*models.Payment, error) {
	switch {
	case n.GatewayOrderID != "":
		return s.stg.Payment().GetByGatewayOrderID(ctx, n.GatewayOrderID)
	case n.GatewayOrderCode != 0:
		return s.stg.Payment().GetByGatewayOrderCode(ctx, n.GatewayOrderCode)
	default:
		return nil, fmt.Errorf("%w: callback carries no gateway reference", ErrInvalidInput)
	}
}

func (s *paymentService) ListMine(ctx context.Context, actor Actor) ([]models.Payment, error) {
	return s.stg.Payment().ListByUser(ctx, actor.UserID)
}

func (s *paymentService) ListForOrder(ctx context.Context, actor Actor, orderID uint64) ([]models.Payment, error) {
	order, err := s.stg.Order().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && order.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	return s.stg.Payment().ListByOrder(ctx, orderID)
}

// IsIgnorable reports callback errors a gateway should not retry.
func IsIgnorable(err error) bool {
	return errors.Is(err, ErrNotFound)
}
