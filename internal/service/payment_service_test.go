package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/cache"
	"carrental-backend/internal/models"
	"carrental-backend/internal/payment"
	"carrental-backend/internal/rental"
	"carrental-backend/internal/storage"
	"carrental-backend/pkg/logger"
	"carrental-backend/pkg/utils"
)

// gatewayMock serves as every provider in tests.
type gatewayMock struct {
	name     payment.Provider
	createFn func(ctx context.Context, req payment.Request) (*payment.Link, error)
	note     payment.Notification
	err      error
}

func (g *gatewayMock) Name() payment.Provider { return g.name }

func (g *gatewayMock) CreatePayment(ctx context.Context, req payment.Request) (*payment.Link, error) {
	return g.createFn(ctx, req)
}

func (g *gatewayMock) VerifyIPN(payment.MoMoIPN) (payment.Notification, error) { return g.note, g.err }

func (g *gatewayMock) VerifyWebhook(payment.PayOSWebhook) (payment.Notification, error) {
	return g.note, g.err
}

func (g *gatewayMock) VerifyNotification(payment.MidtransNotification) (payment.Notification, error) {
	return g.note, g.err
}

func newTestPaymentService(stg *storeMock, pending cache.PendingOrders, gw Gateways) *paymentService {
	push := newPusher(stg.users, utils.NopNotifier{}, logger.NewNop())
	return NewPaymentService(stg, pending, gw, testSettings(), push, logger.NewNop(), func() time.Time { return testNow }).(*paymentService)
}

func TestInitiateDepositCreatesPaymentAndSession(t *testing.T) {
	order := &models.RentalOrder{ID: 42, UserID: 7, Status: rental.StatusPending, Deposit: 240000.4, CreatedAt: testNow.Add(-2 * time.Minute), PhoneNumber: "0901234567"}
	stg := newStoreMock()
	orderStore(stg, order)
	stg.users.getByIDFn = func(_ context.Context, id uint64) (*models.User, error) {
		return &models.User{ID: id, FullName: "Nguyễn Văn A", Email: "a@example.vn"}, nil
	}
	var created *models.Payment
	stg.payments.createFn = func(_ context.Context, p *models.Payment) error {
		p.ID = 9
		created = p
		return nil
	}
	var refs storage.GatewayRefs
	stg.payments.setRefsFn = func(_ context.Context, id uint64, r storage.GatewayRefs) error {
		assert.Equal(t, uint64(9), id)
		refs = r
		return nil
	}

	gw := &gatewayMock{name: payment.ProviderMoMo, createFn: func(_ context.Context, req payment.Request) (*payment.Link, error) {
		assert.Equal(t, uint64(42), req.OrderID)
		assert.Equal(t, uint64(9), req.PaymentID)
		assert.Equal(t, int64(240000), req.Amount)
		assert.Equal(t, "https://api.example.vn"+ReturnPath, req.ReturnURL)
		assert.Equal(t, "https://api.example.vn"+MoMoIPNPath, req.NotifyURL)
		assert.Equal(t, "0901234567", req.BuyerPhone)
		return &payment.Link{GatewayOrderID: "RO42-1", PayURL: "https://test-payment.momo.vn/pay/abc"}, nil
	}}
	pending := cache.NewMemoryPendingOrders(cache.PendingOrderTTL)
	svc := newTestPaymentService(stg, pending, Gateways{MoMo: gw})

	co, err := svc.Initiate(context.Background(), Actor{UserID: 7}, 42, models.InitiatePaymentInput{Provider: "momo", PaymentType: models.PaymentTypeDeposit}, "sess-1")
	require.NoError(t, err)

	assert.Equal(t, "https://test-payment.momo.vn/pay/abc", co.PayURL)
	assert.Equal(t, models.PaymentStatusPending, created.Status)
	assert.Equal(t, "RO42-1", refs.GatewayOrderID)

	id, ok, err := pending.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)
}

func TestInitiateRejections(t *testing.T) {
	tests := []struct {
		name  string
		order models.RentalOrder
		in    models.InitiatePaymentInput
		gw    Gateways
		want  error
	}{
		{
			name:  "deposit window over",
			order: models.RentalOrder{ID: 1, UserID: 7, Status: rental.StatusPending, Deposit: 1, CreatedAt: testNow.Add(-11 * time.Minute)},
			in:    models.InitiatePaymentInput{Provider: "payos", PaymentType: models.PaymentTypeDeposit},
			gw:    Gateways{PayOS: &gatewayMock{}},
			want:  ErrDepositExpired,
		},
		{
			name:  "deposit after confirmation",
			order: models.RentalOrder{ID: 1, UserID: 7, Status: rental.StatusConfirmed, Deposit: 1, CreatedAt: testNow},
			in:    models.InitiatePaymentInput{Provider: "payos", PaymentType: models.PaymentTypeDeposit},
			gw:    Gateways{PayOS: &gatewayMock{}},
			want:  ErrNothingToPay,
		},
		{
			name:  "provider not configured",
			order: models.RentalOrder{ID: 1, UserID: 7, Status: rental.StatusPending, Deposit: 1, CreatedAt: testNow},
			in:    models.InitiatePaymentInput{Provider: "midtrans", PaymentType: models.PaymentTypeDeposit},
			want:  ErrGatewayDisabled,
		},
		{
			name:  "someone else's order",
			order: models.RentalOrder{ID: 1, UserID: 8, Status: rental.StatusPending, Deposit: 1, CreatedAt: testNow},
			in:    models.InitiatePaymentInput{Provider: "payos", PaymentType: models.PaymentTypeDeposit},
			want:  ErrForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := tt.order
			stg := newStoreMock()
			orderStore(stg, &order)
			stg.payments.createFn = func(context.Context, *models.Payment) error {
				t.Fatal("no payment row expected")
				return nil
			}
			svc := newTestPaymentService(stg, nil, tt.gw)

			_, err := svc.Initiate(context.Background(), Actor{UserID: 7}, 1, tt.in, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestInitiateMarksPaymentFailedWhenGatewayErrors(t *testing.T) {
	order := &models.RentalOrder{ID: 42, UserID: 7, Status: rental.StatusPending, Deposit: 1000, CreatedAt: testNow}
	stg := newStoreMock()
	orderStore(stg, order)
	stg.users.getByIDFn = func(_ context.Context, id uint64) (*models.User, error) { return &models.User{ID: id}, nil }
	stg.payments.createFn = func(_ context.Context, p *models.Payment) error {
		p.ID = 3
		return nil
	}
	var settled string
	stg.payments.settleFn = func(_ context.Context, id uint64, status, _ string, _ time.Time) (bool, error) {
		settled = status
		return true, nil
	}
	gw := &gatewayMock{createFn: func(context.Context, payment.Request) (*payment.Link, error) {
		return nil, payment.ErrGatewayRejected
	}}
	svc := newTestPaymentService(stg, nil, Gateways{PayOS: gw})

	_, err := svc.Initiate(context.Background(), Actor{UserID: 7}, 42, models.InitiatePaymentInput{Provider: "payos", PaymentType: models.PaymentTypeDeposit}, "")
	assert.ErrorIs(t, err, payment.ErrGatewayRejected)
	assert.Equal(t, models.PaymentStatusFailed, settled)
}

func TestResolveRedirectPriority(t *testing.T) {
	stg := newStoreMock()
	stg.payments.byGatewayCodeFn = func(_ context.Context, code int64) (*models.Payment, error) {
		if code == 987654 {
			return &models.Payment{ID: 1, RentalOrderID: 55}, nil
		}
		return nil, storage.ErrNotFound
	}
	pending := cache.NewMemoryPendingOrders(cache.PendingOrderTTL)
	svc := newTestPaymentService(stg, pending, Gateways{})
	ctx := context.Background()

	t.Run("extraData beats every other source", func(t *testing.T) {
		require.NoError(t, pending.Put(ctx, "s1", 77))
		q := url.Values{
			"resultCode": {"0"},
			"orderId":    {"987654"},
			"orderCode":  {"987654"},
			"extraData":  {payment.EncodeExtraData(42)},
		}
		got := svc.ResolveRedirect(ctx, q, "s1")
		assert.Equal(t, uint64(42), got.OrderID)
		assert.Equal(t, redirectSourceQuery, got.Source)
		assert.Equal(t, "https://app.example.vn/orders/42?payment=success", got.Target)

		_, ok, _ := pending.Get(ctx, "s1")
		assert.False(t, ok, "session entry is consumed")
	})

	t.Run("session when the query has no id", func(t *testing.T) {
		require.NoError(t, pending.Put(ctx, "s2", 77))
		q := url.Values{"code": {"00"}, "status": {"PAID"}, "orderCode": {"123456789"}}
		got := svc.ResolveRedirect(ctx, q, "s2")
		assert.Equal(t, uint64(77), got.OrderID)
		assert.Equal(t, redirectSourceSess, got.Source)
		assert.Equal(t, payment.OutcomeSuccess, got.Outcome)
	})

	t.Run("payment record as last resort", func(t *testing.T) {
		q := url.Values{"code": {"00"}, "cancel": {"true"}, "status": {"CANCELLED"}, "orderCode": {"987654"}}
		got := svc.ResolveRedirect(ctx, q, "")
		assert.Equal(t, uint64(55), got.OrderID)
		assert.Equal(t, redirectSourceRecord, got.Source)
		assert.Equal(t, "https://app.example.vn/checkout?orderId=55", got.Target)
	})

	t.Run("nothing recognisable", func(t *testing.T) {
		got := svc.ResolveRedirect(ctx, url.Values{"foo": {"bar"}}, "")
		assert.Equal(t, payment.OutcomeAnomalous, got.Outcome)
		assert.Equal(t, "https://app.example.vn/?warning=unexpected_payment_return", got.Target)
	})
}

func TestSettlePaidDepositAdvancesOrderOnce(t *testing.T) {
	order := &models.RentalOrder{ID: 42, UserID: 7, Status: rental.StatusPending}
	pay := &models.Payment{ID: 9, RentalOrderID: 42, UserID: 7, Amount: 240000, PaymentType: models.PaymentTypeDeposit, Status: models.PaymentStatusPending}

	stg := newStoreMock()
	orderStore(stg, order)
	stg.payments.byGatewayCodeFn = func(context.Context, int64) (*models.Payment, error) {
		cp := *pay
		return &cp, nil
	}
	var settles int
	stg.payments.settleFn = func(_ context.Context, id uint64, status, transID string, _ time.Time) (bool, error) {
		settles++
		if pay.Status != models.PaymentStatusPending {
			return false, nil
		}
		pay.Status = status
		assert.Equal(t, "tx-1", transID)
		return true, nil
	}

	gw := &gatewayMock{note: payment.Notification{
		Provider:         payment.ProviderPayOS,
		GatewayOrderCode: 123456009,
		TransID:          "tx-1",
		Amount:           240000,
		Paid:             true,
	}}
	svc := newTestPaymentService(stg, nil, Gateways{PayOS: gw})

	require.NoError(t, svc.HandlePayOSWebhook(context.Background(), payment.PayOSWebhook{}))
	assert.Equal(t, models.PaymentStatusPaid, pay.Status)
	assert.Equal(t, rental.StatusDocumentsSubmitted, order.Status)

	// a retried webhook is acknowledged without touching anything
	require.NoError(t, svc.HandlePayOSWebhook(context.Background(), payment.PayOSWebhook{}))
	assert.Equal(t, 1, settles)
	assert.Equal(t, rental.StatusDocumentsSubmitted, order.Status)
}

func TestSettleRentalFeeCompletesOrder(t *testing.T) {
	order := &models.RentalOrder{ID: 42, UserID: 7, Status: rental.StatusPaymentPending}
	stg := newStoreMock()
	orderStore(stg, order)
	stg.payments.byGatewayIDFn = func(_ context.Context, ref string) (*models.Payment, error) {
		assert.Equal(t, "RO42-5", ref)
		return &models.Payment{ID: 10, RentalOrderID: 42, Amount: 560000, PaymentType: models.PaymentTypeRentalFee, Status: models.PaymentStatusPending}, nil
	}
	gw := &gatewayMock{note: payment.Notification{Provider: payment.ProviderMoMo, GatewayOrderID: "RO42-5", OrderID: 42, Amount: 560000, Paid: true}}
	svc := newTestPaymentService(stg, nil, Gateways{MoMo: gw})

	require.NoError(t, svc.HandleMoMoIPN(context.Background(), payment.MoMoIPN{}))
	assert.Equal(t, rental.StatusCompleted, order.Status)
}

func TestSettleRejectsMismatches(t *testing.T) {
	stg := newStoreMock()
	stg.payments.byGatewayIDFn = func(context.Context, string) (*models.Payment, error) {
		return &models.Payment{ID: 10, RentalOrderID: 42, Amount: 560000, Status: models.PaymentStatusPending}, nil
	}
	stg.payments.settleFn = func(context.Context, uint64, string, string, time.Time) (bool, error) {
		t.Fatal("mismatched callback must not settle")
		return false, nil
	}

	gw := &gatewayMock{note: payment.Notification{Provider: payment.ProviderMoMo, GatewayOrderID: "RO42-5", Amount: 1000, Paid: true}}
	svc := newTestPaymentService(stg, nil, Gateways{MoMo: gw})
	assert.ErrorIs(t, svc.HandleMoMoIPN(context.Background(), payment.MoMoIPN{}), ErrAmountMismatch)

	gw.note = payment.Notification{Provider: payment.ProviderMoMo, GatewayOrderID: "RO42-5", OrderID: 43, Amount: 560000, Paid: true}
	assert.ErrorIs(t, svc.HandleMoMoIPN(context.Background(), payment.MoMoIPN{}), ErrInvalidInput)

	gw.err = payment.ErrInvalidSignature
	assert.ErrorIs(t, svc.HandleMoMoIPN(context.Background(), payment.MoMoIPN{}), payment.ErrInvalidSignature)
}

func TestSettleAfterAutoCancelLeavesOrderCancelled(t *testing.T) {
	order := &models.RentalOrder{ID: 42, Status: rental.StatusCancelled}
	stg := newStoreMock()
	orderStore(stg, order)
	stg.payments.byGatewayCodeFn = func(context.Context, int64) (*models.Payment, error) {
		return &models.Payment{ID: 9, RentalOrderID: 42, Amount: 1000, PaymentType: models.PaymentTypeDeposit, Status: models.PaymentStatusPending}, nil
	}
	gw := &gatewayMock{note: payment.Notification{Provider: payment.ProviderPayOS, GatewayOrderCode: 1, Amount: 1000, Paid: true}}
	svc := newTestPaymentService(stg, nil, Gateways{PayOS: gw})

	require.NoError(t, svc.HandlePayOSWebhook(context.Background(), payment.PayOSWebhook{}))
	assert.Equal(t, rental.StatusCancelled, order.Status)
}

func TestIsIgnorable(t *testing.T) {
	assert.True(t, IsIgnorable(storage.ErrNotFound))
	assert.False(t, IsIgnorable(errors.New("db down")))
}
