package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrental-backend/internal/models"
	"carrental-backend/internal/storage"
	"carrental-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

type DocumentService interface {
	SubmitDriverLicense(ctx context.Context, actor Actor, in models.DriverLicenseInput) (*models.DriverLicense, error)
	SubmitCitizenID(ctx context.Context, actor Actor, in models.CitizenIDInput) (*models.CitizenID, error)
	Get(ctx context.Context, userID uint64) (models.Documents, error)
	Verify(ctx context.Context, staff Actor, userID uint64, in models.VerifyDocumentsInput) (models.Documents, error)
}

type documentService struct {
	stg   storage.IDocumentStorage
	users storage.IUserStorage
	log   logger.ILogger
}

func NewDocumentService(stg storage.IStorage, log logger.ILogger) DocumentService {
	return &documentService{stg: stg.Document(), users: stg.User(), log: log}
}

func (s *documentService) SubmitDriverLicense(ctx context.Context, actor Actor, in models.DriverLicenseInput) (*models.DriverLicense, error) {
	dl := &models.DriverLicense{
		UserID:        actor.UserID,
		LicenseNumber: strings.ToUpper(strings.TrimSpace(in.LicenseNumber)),
		Class:         strings.ToUpper(strings.TrimSpace(in.Class)),
		FullName:      strings.TrimSpace(in.FullName),
		FrontImageURL: in.FrontImageURL,
		BackImageURL:  in.BackImageURL,
	}
	if in.ExpiresAt != "" {
		exp, err := time.Parse(dateLayout, in.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("%w: expires_at must be YYYY-MM-DD", ErrInvalidInput)
		}
		dl.ExpiresAt = &exp
	}

	if err := s.stg.UpsertDriverLicense(ctx, dl); err != nil {
		return nil, err
	}
	return s.stg.GetDriverLicense(ctx, actor.UserID)
}

func (s *documentService) SubmitCitizenID(ctx context.Context, actor Actor, in models.CitizenIDInput) (*models.CitizenID, error) {
	if _, err := time.Parse(dateLayout, in.DateOfBirth); err != nil {
		return nil, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", ErrInvalidInput)
	}

	c := &models.CitizenID{
		UserID:        actor.UserID,
		IDNumber:      strings.TrimSpace(in.IDNumber),
		FullName:      strings.TrimSpace(in.FullName),
		DateOfBirth:   in.DateOfBirth,
		Address:       strings.TrimSpace(in.Address),
		FrontImageURL: in.FrontImageURL,
		BackImageURL:  in.BackImageURL,
	}
	if err := s.stg.UpsertCitizenID(ctx, c); err != nil {
		return nil, err
	}
	return s.stg.GetCitizenID(ctx, actor.UserID)
}

// Get returns whatever the user has on file; missing documents are nil.
func (s *documentService) Get(ctx context.Context, userID uint64) (models.Documents, error) {
	var docs models.Documents

	dl, err := s.stg.GetDriverLicense(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return docs, err
	}
	docs.DriverLicense = dl

	c, err := s.stg.GetCitizenID(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return docs, err
	}
	docs.CitizenID = c
	return docs, nil
}

func (s *documentService) Verify(ctx context.Context, staff Actor, userID uint64, in models.VerifyDocumentsInput) (models.Documents, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return models.Documents{}, err
	}
	if err := s.stg.SetVerified(ctx, userID, in.DriverLicense, in.CitizenID); err != nil {
		return models.Documents{}, err
	}

	s.log.Info("documents reviewed",
		logger.Uint64("user_id", userID),
		logger.Uint64("staff_id", staff.UserID),
		logger.Bool("driver_license", in.DriverLicense),
		logger.Bool("citizen_id", in.CitizenID))
	return s.Get(ctx, userID)
}
