package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"carrental-backend/internal/models"
	"carrental-backend/internal/storage"
	"carrental-backend/pkg/logger"
)

type Store struct {
	db  *gorm.DB
	log logger.ILogger
}

// New wraps an open connection. Callers own migrations (see Migrate).
func New(db *gorm.DB, log logger.ILogger) *Store {
	return &Store{db: db, log: log}
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RentalLocation{},
		&models.Car{},
		&models.RentalOrder{},
		&models.Payment{},
		&models.VehicleInspection{},
		&models.DriverLicense{},
		&models.CitizenID{},
		&models.Feedback{},
	)
}

func (s *Store) User() storage.IUserStorage             { return &userRepo{db: s.db} }
func (s *Store) Car() storage.ICarStorage               { return &carRepo{db: s.db} }
func (s *Store) Location() storage.ILocationStorage     { return &locationRepo{db: s.db} }
func (s *Store) Order() storage.IOrderStorage           { return &orderRepo{db: s.db} }
func (s *Store) Payment() storage.IPaymentStorage       { return &paymentRepo{db: s.db} }
func (s *Store) Inspection() storage.IInspectionStorage { return &inspectionRepo{db: s.db} }
func (s *Store) Document() storage.IDocumentStorage     { return &documentRepo{db: s.db} }
func (s *Store) Feedback() storage.IFeedbackStorage     { return &feedbackRepo{db: s.db} }

func (s *Store) Atomic(ctx context.Context, fn func(tx storage.IStorage) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, log: s.log})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps gorm errors onto the storage sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return storage.ErrDuplicate
	default:
		return err
	}
}
