package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"carrental-backend/internal/models"
	"carrental-backend/internal/storage"
	"carrental-backend/pkg/logger"
	"carrental-backend/pkg/utils"
)

// Seed is the optional bootstrap file: the catalogue for a fresh database
// and the staff accounts, which cannot self-register.
type Seed struct {
	Locations []SeedLocation `yaml:"locations"`
	Cars      []SeedCar      `yaml:"cars"`
	Staff     []SeedUser     `yaml:"staff"`
}

type SeedLocation struct {
	Key     string `yaml:"key"`
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
}

type SeedCar struct {
	Name         string `yaml:"name"`
	Brand        string `yaml:"brand"`
	Model        string `yaml:"model"`
	LicensePlate string `yaml:"license_plate"`
	Seats        int    `yaml:"seats"`
	ImageURL     string `yaml:"image_url"`
	Location     string `yaml:"location"`

	Price4h               float64 `yaml:"price_4h"`
	Price8h               float64 `yaml:"price_8h"`
	PricePerDay           float64 `yaml:"price_per_day"`
	Price4hWithDriver     float64 `yaml:"price_4h_with_driver"`
	Price8hWithDriver     float64 `yaml:"price_8h_with_driver"`
	PricePerDayWithDriver float64 `yaml:"price_per_day_with_driver"`
}

type SeedUser struct {
	FullName string `yaml:"full_name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Phone    string `yaml:"phone"`
	Role     string `yaml:"role"` // admin or staff
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	var s Seed
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &s); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return &s, nil
}

// Apply inserts the catalogue only into empty tables and creates missing
// staff accounts, so it is safe to run on every start.
func (s *Seed) Apply(ctx context.Context, stg storage.IStorage, log logger.ILogger) error {
	return stg.Atomic(ctx, func(tx storage.IStorage) error {
		locIDs, err := s.applyLocations(ctx, tx, log)
		if err != nil {
			return err
		}
		if err := s.applyCars(ctx, tx, locIDs, log); err != nil {
			return err
		}
		return s.applyStaff(ctx, tx, log)
	})
}

func (s *Seed) applyLocations(ctx context.Context, tx storage.IStorage, log logger.ILogger) (map[string]uint64, error) {
	existing, err := tx.Location().List(ctx, false)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]uint64, len(s.Locations))
	if len(existing) > 0 {
		for _, l := range existing {
			ids[strings.ToLower(l.Name)] = l.ID
		}
		for _, sl := range s.Locations {
			if id, ok := ids[strings.ToLower(sl.Name)]; ok && sl.Key != "" {
				ids[sl.Key] = id
			}
		}
		return ids, nil
	}

	for _, sl := range s.Locations {
		loc := &models.RentalLocation{Name: sl.Name, Address: sl.Address, Phone: sl.Phone, IsActive: true}
		if err := tx.Location().Create(ctx, loc); err != nil {
			return nil, fmt.Errorf("seed location %q: %w", sl.Name, err)
		}
		ids[strings.ToLower(sl.Name)] = loc.ID
		if sl.Key != "" {
			ids[sl.Key] = loc.ID
		}
	}
	log.Info("seeded rental locations", logger.Int("count", len(s.Locations)))
	return ids, nil
}

func (s *Seed) applyCars(ctx context.Context, tx storage.IStorage, locIDs map[string]uint64, log logger.ILogger) error {
	existing, err := tx.Car().List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, sc := range s.Cars {
		car := &models.Car{
			Name:                  sc.Name,
			Brand:                 sc.Brand,
			Model:                 sc.Model,
			LicensePlate:          sc.LicensePlate,
			Seats:                 sc.Seats,
			ImageURL:              sc.ImageURL,
			Status:                "available",
			Price4h:               sc.Price4h,
			Price8h:               sc.Price8h,
			PricePerDay:           sc.PricePerDay,
			Price4hWithDriver:     sc.Price4hWithDriver,
			Price8hWithDriver:     sc.Price8hWithDriver,
			PricePerDayWithDriver: sc.PricePerDayWithDriver,
		}
		if id, ok := locIDs[sc.Location]; ok {
			car.RentalLocationID = &id
		}
		if err := tx.Car().Create(ctx, car); err != nil {
			return fmt.Errorf("seed car %q: %w", sc.Name, err)
		}
	}
	log.Info("seeded cars", logger.Int("count", len(s.Cars)))
	return nil
}

func (s *Seed) applyStaff(ctx context.Context, tx storage.IStorage, log logger.ILogger) error {
	for _, su := range s.Staff {
		email := strings.ToLower(strings.TrimSpace(su.Email))
		_, err := tx.User().GetByEmail(ctx, email)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		hash, err := utils.HashPassword(su.Password)
		if err != nil {
			return fmt.Errorf("seed staff %s: %w", email, err)
		}
		role := models.RoleStaff
		if su.Role == "admin" {
			role = models.RoleAdmin
		}
		u := &models.User{
			RoleID:       role,
			FullName:     su.FullName,
			Email:        email,
			PasswordHash: hash,
			Phone:        su.Phone,
			IsVerified:   true,
		}
		if err := tx.User().Create(ctx, u); err != nil {
			return fmt.Errorf("seed staff %s: %w", email, err)
		}
		log.Info("seeded staff account", logger.String("email", email), logger.Uint64("user_id", u.ID))
	}
	return nil
}
