package storage

import (
	"context"
	"errors"
	"time"

	"carrental-backend/internal/models"
	"carrental-backend/internal/rental"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type IStorage interface {
	User() IUserStorage
	Car() ICarStorage
	Location() ILocationStorage
	Order() IOrderStorage
	Payment() IPaymentStorage
	Inspection() IInspectionStorage
	Document() IDocumentStorage
	Feedback() IFeedbackStorage

	// Atomic runs fn inside one transaction; fn must only use the store it
	// is given.
	Atomic(ctx context.Context, fn func(tx IStorage) error) error
	Ping(ctx context.Context) error
	Close() error
}

type IUserStorage interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateFCMToken(ctx context.Context, id uint64, token string) error
	ListStaff(ctx context.Context) ([]models.User, error)
}

type ICarStorage interface {
	Create(ctx context.Context, car *models.Car) error
	GetByID(ctx context.Context, id uint64) (*models.Car, error)
	List(ctx context.Context) ([]models.Car, error)
	UpsertLegacy(ctx context.Context, car *models.Car) error
}

type ILocationStorage interface {
	Create(ctx context.Context, loc *models.RentalLocation) error
	GetByID(ctx context.Context, id uint64) (*models.RentalLocation, error)
	List(ctx context.Context, activeOnly bool) ([]models.RentalLocation, error)
	UpsertLegacy(ctx context.Context, loc *models.RentalLocation) error
}

type IOrderStorage interface {
	Create(ctx context.Context, order *models.RentalOrder) error
	GetByID(ctx context.Context, id uint64) (*models.RentalOrder, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.RentalOrder, error)
	// ActiveRanges returns the booked ranges of a car whose status commits
	// the vehicle.
	ActiveRanges(ctx context.Context, carID uint64) ([]rental.Range, error)
	// Transition moves an order to `to` only if its status is still one of
	// `from`, writing fields in the same statement. It reports whether a row
	// changed.
	Transition(ctx context.Context, id uint64, from []rental.Status, to rental.Status, fields map[string]any) (bool, error)
}

type IPaymentStorage interface {
	Create(ctx context.Context, p *models.Payment) error
	SetGatewayRefs(ctx context.Context, id uint64, link GatewayRefs) error
	GetByID(ctx context.Context, id uint64) (*models.Payment, error)
	GetByGatewayOrderID(ctx context.Context, ref string) (*models.Payment, error)
	GetByGatewayOrderCode(ctx context.Context, code int64) (*models.Payment, error)
	ListByOrder(ctx context.Context, orderID uint64) ([]models.Payment, error)
	ListByUser(ctx context.Context, userID uint64) ([]models.Payment, error)
	// Settle moves a pending payment to status; false if it was not pending.
	Settle(ctx context.Context, id uint64, status, transID string, at time.Time) (bool, error)
}

type GatewayRefs struct {
	GatewayOrderID   string
	GatewayOrderCode int64
	PayURL           string
}

type IInspectionStorage interface {
	Create(ctx context.Context, in *models.VehicleInspection) error
	ListByOrder(ctx context.Context, orderID uint64) ([]models.VehicleInspection, error)
}

type IDocumentStorage interface {
	GetDriverLicense(ctx context.Context, userID uint64) (*models.DriverLicense, error)
	UpsertDriverLicense(ctx context.Context, dl *models.DriverLicense) error
	GetCitizenID(ctx context.Context, userID uint64) (*models.CitizenID, error)
	UpsertCitizenID(ctx context.Context, c *models.CitizenID) error
	SetVerified(ctx context.Context, userID uint64, license, citizen bool) error
}

type IFeedbackStorage interface {
	Create(ctx context.Context, f *models.Feedback) error
	GetByOrder(ctx context.Context, orderID uint64) (*models.Feedback, error)
	ListByCar(ctx context.Context, carID uint64) ([]models.Feedback, error)
}
