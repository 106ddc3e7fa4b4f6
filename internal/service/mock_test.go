package service

import (
	"context"
	"time"

	"carrental-backend/internal/models"
	"carrental-backend/internal/rental"
	"carrental-backend/internal/storage"
)

// storeMock wires function-field repositories. A nil function returns zero
// values, and storage.ErrNotFound for lookups.
type storeMock struct {
	users       *userMock
	cars        *carMock
	locations   *locationMock
	orders      *orderMock
	payments    *paymentMock
	inspections *inspectionMock
	documents   *documentMock
	feedback    *feedbackMock
}

func newStoreMock() *storeMock {
	return &storeMock{
		users:       &userMock{},
		cars:        &carMock{},
		locations:   &locationMock{},
		orders:      &orderMock{},
		payments:    &paymentMock{},
		inspections: &inspectionMock{},
		documents:   &documentMock{},
		feedback:    &feedbackMock{},
	}
}

func (m *storeMock) User() storage.IUserStorage             { return m.users }
func (m *storeMock) Car() storage.ICarStorage               { return m.cars }
func (m *storeMock) Location() storage.ILocationStorage     { return m.locations }
func (m *storeMock) Order() storage.IOrderStorage           { return m.orders }
func (m *storeMock) Payment() storage.IPaymentStorage       { return m.payments }
func (m *storeMock) Inspection() storage.IInspectionStorage { return m.inspections }
func (m *storeMock) Document() storage.IDocumentStorage     { return m.documents }
func (m *storeMock) Feedback() storage.IFeedbackStorage     { return m.feedback }

func (m *storeMock) Atomic(_ context.Context, fn func(tx storage.IStorage) error) error { return fn(m) }
func (m *storeMock) Ping(context.Context) error                                         { return nil }
func (m *storeMock) Close() error                                                       { return nil }

type userMock struct {
	createFn     func(ctx context.Context, u *models.User) error
	getByIDFn    func(ctx context.Context, id uint64) (*models.User, error)
	getByEmailFn func(ctx context.Context, email string) (*models.User, error)
}

func (m *userMock) Create(ctx context.Context, u *models.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}
func (m *userMock) GetByID(ctx context.Context, id uint64) (*models.User, error) {
	if m.getByIDFn == nil {
		return nil, storage.ErrNotFound
	}
	return m.getByIDFn(ctx, id)
}
func (m *userMock) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getByEmailFn == nil {
		return nil, storage.ErrNotFound
	}
	return m.getByEmailFn(ctx, email)
}
func (m *userMock) UpdateFCMToken(context.Context, uint64, string) error { return nil }
func (m *userMock) ListStaff(context.Context) ([]models.User, error)     { return nil, nil }

type carMock struct {
	getByIDFn func(ctx context.Context, id uint64) (*models.Car, error)
}

func (m *carMock) Create(context.Context, *models.Car) error { return nil }
func (m *carMock) GetByID(ctx context.Context, id uint64) (*models.Car, error) {
	if m.getByIDFn == nil {
		return nil, storage.ErrNotFound
	}
	return m.getByIDFn(ctx, id)
}
func (m *carMock) List(context.Context) ([]models.Car, error)     { return nil, nil }
func (m *carMock) UpsertLegacy(context.Context, *models.Car) error { return nil }

type locationMock struct {
	getByIDFn func(ctx context.Context, id uint64) (*models.RentalLocation, error)
}

func (m *locationMock) Create(context.Context, *models.RentalLocation) error { return nil }
func (m *locationMock) GetByID(ctx context.Context, id uint64) (*models.RentalLocation, error) {
	if m.getByIDFn == nil {
		return nil, storage.ErrNotFound
	}
	return m.getByIDFn(ctx, id)
}
func (m *locationMock) List(context.Context, bool) ([]models.RentalLocation, error) { return nil, nil }
func (m *locationMock) UpsertLegacy(context.Context, *models.RentalLocation) error  { return nil }

type orderMock struct {
	createFn       func(ctx context.Context, o *models.RentalOrder) error
	getByIDFn      func(ctx context.Context, id uint64) (*models.RentalOrder, error)
	listFn         func(ctx context.Context, f models.OrderFilter) ([]models.RentalOrder, error)
	activeRangesFn func(ctx context.Context, carID uint64) ([]rental.Range, error)
	transitionFn   func(ctx context.Context, id uint64, from []rental.Status, to rental.Status, fields map[string]any) (bool, error)
}

func (m *orderMock) Create(ctx context.Context, o *models.RentalOrder) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, o)
}
func (m *orderMock) GetByID(ctx context.Context, id uint64) (*models.RentalOrder, error) {
	if m.getByIDFn == nil {
		return nil, storage.ErrNotFound
	}
	return m.getByIDFn(ctx, id)
}
func (m *orderMock) List(ctx context.Context, f models.OrderFilter) ([]models.RentalOrder, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx, f)
}
func (m *orderMock) ActiveRanges(ctx context.Context, carID uint64) ([]rental.Range, error) {
	if m.activeRangesFn == nil {
		return nil, nil
	}
	return m.activeRangesFn(ctx, carID)
}
func (m *orderMock) Transition(ctx context.Context, id uint64, from []rental.Status, to rental.Status, fields map[string]any) (bool, error) {
	if m.transitionFn == nil {
		return true, nil
	}
	return m.transitionFn(ctx, id, from, to, fields)
}

type paymentMock struct {
	createFn        func(ctx context.Context, p *models.Payment) error
	setRefsFn       func(ctx context.Context, id uint64, refs storage.GatewayRefs) error
	byGatewayIDFn   func(ctx context.Context, ref string) (*models.Payment, error)
	byGatewayCodeFn func(ctx context.Context, code int64) (*models.Payment, error)
	settleFn        func(ctx context.Context, id uint64, status, transID string, at time.Time) (bool, error)
}

func (m *paymentMock) Create(ctx context.Context, p *models.Payment) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, p)
}
func (m *paymentMock) SetGatewayRefs(ctx context.Context, id uint64, refs storage.GatewayRefs) error {
	if m.setRefsFn == nil {
		return nil
	}
	return m.setRefsFn(ctx, id, refs)
}
func (m *paymentMock) GetByID(context.Context, uint64) (*models.Payment, error) {
	return nil, storage.ErrNotFound
}
func (m *paymentMock) GetByGatewayOrderID(ctx context.Context, ref string) (*models.Payment, error) {
	if m.byGatewayIDFn == nil {
		return nil, storage.ErrNotFound
	}
	return m.byGatewayIDFn(ctx, ref)
}
func (m *paymentMock) GetByGatewayOrderCode(ctx context.Context, code int64) (*models.Payment, error) {
	if m.byGatewayCodeFn == nil {
		return nil, storage.ErrNotFound
	}
	return m.byGatewayCodeFn(ctx, code)
}
func (m *paymentMock) ListByOrder(context.Context, uint64) ([]models.Payment, error) { return nil, nil }
func (m *paymentMock) ListByUser(context.Context, uint64) ([]models.Payment, error)  { return nil, nil }
func (m *paymentMock) Settle(ctx context.Context, id uint64, status, transID string, at time.Time) (bool, error) {
	if m.settleFn == nil {
		return true, nil
	}
	return m.settleFn(ctx, id, status, transID, at)
}

type inspectionMock struct {
	created []models.VehicleInspection
}

func (m *inspectionMock) Create(_ context.Context, in *models.VehicleInspection) error {
	m.created = append(m.created, *in)
	return nil
}
func (m *inspectionMock) ListByOrder(context.Context, uint64) ([]models.VehicleInspection, error) {
	return m.created, nil
}

type documentMock struct{}

func (documentMock) GetDriverLicense(context.Context, uint64) (*models.DriverLicense, error) {
	return nil, storage.ErrNotFound
}
func (documentMock) UpsertDriverLicense(context.Context, *models.DriverLicense) error { return nil }
func (documentMock) GetCitizenID(context.Context, uint64) (*models.CitizenID, error) {
	return nil, storage.ErrNotFound
}
func (documentMock) UpsertCitizenID(context.Context, *models.CitizenID) error { return nil }
func (documentMock) SetVerified(context.Context, uint64, bool, bool) error   { return nil }

type feedbackMock struct {
	createFn func(ctx context.Context, f *models.Feedback) error
}

func (m *feedbackMock) Create(ctx context.Context, f *models.Feedback) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, f)
}
func (m *feedbackMock) GetByOrder(context.Context, uint64) (*models.Feedback, error) {
	return nil, storage.ErrNotFound
}
func (m *feedbackMock) ListByCar(context.Context, uint64) ([]models.Feedback, error) { return nil, nil }
