package service

import (
	"errors"
	"time"

	"carrental-backend/internal/cache"
	"carrental-backend/internal/models"
	"carrental-backend/internal/storage"
	"carrental-backend/pkg/logger"
	"carrental-backend/pkg/utils"
)

var (
	ErrNotFound        = storage.ErrNotFound
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmailTaken      = errors.New("email or phone number already registered")
	ErrBadCredentials  = errors.New("wrong email or password")
	ErrCarUnavailable  = errors.New("car is not available for booking")
	ErrLocationClosed  = errors.New("rental location is not active")
	ErrDepositExpired  = errors.New("deposit window has expired")
	ErrNothingToPay    = errors.New("order has nothing to pay at this stage")
	ErrAlreadyPaid     = errors.New("payment already settled")
	ErrGatewayDisabled = errors.New("payment provider is not configured")
	ErrAmountMismatch  = errors.New("gateway amount does not match payment")
	ErrFeedbackExists  = errors.New("feedback already submitted for this order")
	ErrNotCompleted    = errors.New("order is not completed")
	ErrStaleOrder      = errors.New("order changed while processing, reload and retry")
)

// Actor is the authenticated caller.
type Actor struct {
	UserID uint64
	RoleID uint
}

func (a Actor) IsStaff() bool {
	return a.RoleID == models.RoleAdmin || a.RoleID == models.RoleStaff
}

// Settings are the config values the services read.
type Settings struct {
	Location         *time.Location
	DepositPercent   float64
	LegacyOrderIDMax int64
	FrontendURL      string
	PublicBaseURL    string
	JWTSecret        string
}

type IServiceManager interface {
	User() UserService
	Catalog() CatalogService
	Order() OrderService
	Payment() PaymentService
	Document() DocumentService
}

type service struct {
	userService     UserService
	catalogService  CatalogService
	orderService    OrderService
	paymentService  PaymentService
	documentService DocumentService
}

type Deps struct {
	Storage  storage.IStorage
	Pending  cache.PendingOrders
	Gateways Gateways
	Notifier utils.Notifier
	Settings Settings
	Log      logger.ILogger
	Now      func() time.Time
}

func New(d Deps) IServiceManager {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Notifier == nil {
		d.Notifier = utils.NopNotifier{}
	}
	if d.Settings.Location == nil {
		d.Settings.Location = time.UTC
	}

	push := newPusher(d.Storage.User(), d.Notifier, d.Log)
	return &service{
		userService:     NewUserService(d.Storage, d.Settings, d.Log, d.Now),
		catalogService:  NewCatalogService(d.Storage, d.Settings, d.Log),
		orderService:    NewOrderService(d.Storage, d.Settings, push, d.Log, d.Now),
		paymentService:  NewPaymentService(d.Storage, d.Pending, d.Gateways, d.Settings, push, d.Log, d.Now),
		documentService: NewDocumentService(d.Storage, d.Log),
	}
}

func (s *service) User() UserService         { return s.userService }
func (s *service) Catalog() CatalogService   { return s.catalogService }
func (s *service) Order() OrderService       { return s.orderService }
func (s *service) Payment() PaymentService   { return s.paymentService }
func (s *service) Document() DocumentService { return s.documentService }
