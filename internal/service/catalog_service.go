package service

import (
	"context"
	"fmt"
	"time"

	"carrental-backend/internal/models"
	"carrental-backend/internal/rental"
	"carrental-backend/internal/storage"
	"carrental-backend/pkg/logger"
)

type CatalogService interface {
	ListCars(ctx context.Context) ([]models.Car, error)
	GetCar(ctx context.Context, id uint64) (*models.Car, error)
	BookedRanges(ctx context.Context, carID uint64) ([]rental.Range, error)
	Quote(ctx context.Context, carID uint64, in models.QuoteInput) (rental.Quote, error)
	ListLocations(ctx context.Context) ([]models.RentalLocation, error)
	CarFeedback(ctx context.Context, carID uint64) ([]models.Feedback, error)
}

type catalogService struct {
	stg  storage.IStorage
	set  Settings
	calc rental.Calculator
	log  logger.ILogger
}

func NewCatalogService(stg storage.IStorage, set Settings, log logger.ILogger) CatalogService {
	return &catalogService{
		stg:  stg,
		set:  set,
		calc: rental.Calculator{DepositPercent: set.DepositPercent},
		log:  log,
	}
}

func (s *catalogService) ListCars(ctx context.Context) ([]models.Car, error) {
	return s.stg.Car().List(ctx)
}

func (s *catalogService) GetCar(ctx context.Context, id uint64) (*models.Car, error) {
	return s.stg.Car().GetByID(ctx, id)
}

// BookedRanges lets the date picker grey out committed days.
func (s *catalogService) BookedRanges(ctx context.Context, carID uint64) ([]rental.Range, error) {
	if _, err := s.stg.Car().GetByID(ctx, carID); err != nil {
		return nil, err
	}
	ranges, err := s.stg.Order().ActiveRanges(ctx, carID)
	if err != nil {
		return nil, err
	}
	// order ids are not for the public
	for i := range ranges {
		ranges[i].OrderID = 0
	}
	return ranges, nil
}

func (s *catalogService) Quote(ctx context.Context, carID uint64, in models.QuoteInput) (rental.Quote, error) {
	car, err := s.stg.Car().GetByID(ctx, carID)
	if err != nil {
		return rental.Quote{}, err
	}
	pickup, ret, err := parseRange(in.PickupTime, in.ExpectedReturnTime, s.set.Location)
	if err != nil {
		return rental.Quote{}, err
	}
	return s.calc.Quote(car.Prices(), pickup, ret, in.WithDriver)
}

func (s *catalogService) ListLocations(ctx context.Context) ([]models.RentalLocation, error) {
	return s.stg.Location().List(ctx, true)
}

func (s *catalogService) CarFeedback(ctx context.Context, carID uint64) ([]models.Feedback, error) {
	return s.stg.Feedback().ListByCar(ctx, carID)
}

// parseRange reads the two local timestamps of a booking form.
func parseRange(pickupRaw, returnRaw string, loc *time.Location) (time.Time, time.Time, error) {
	pickup, err := rental.ParseLocal(pickupRaw, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: pickup_time: %v", ErrInvalidInput, err)
	}
	ret, err := rental.ParseLocal(returnRaw, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: expected_return_time: %v", ErrInvalidInput, err)
	}
	return pickup, ret, nil
}
