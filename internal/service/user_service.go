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
	"carrental-backend/pkg/utils"
)

type UserService interface {
	Register(ctx context.Context, in models.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in models.LoginInput) (string, *models.User, error)
	Profile(ctx context.Context, userID uint64) (*models.User, error)
}

type userService struct {
	stg storage.IUserStorage
	set Settings
	log logger.ILogger
	now func() time.Time
}

func NewUserService(stg storage.IStorage, set Settings, log logger.ILogger, now func() time.Time) UserService {
	return &userService{stg: stg.User(), set: set, log: log, now: now}
}

// Register always creates customers; staff accounts come from the seed file.
func (s *userService) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	user := &models.User{
		RoleID:       models.RoleCustomer,
		FullName:     strings.TrimSpace(in.FullName),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Phone:        in.Phone,
	}
	if err := s.stg.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, in models.LoginInput) (string, *models.User, error) {
	user, err := s.stg.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil, ErrBadCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !utils.CheckPassword(in.Password, user.PasswordHash) {
		return "", nil, ErrBadCredentials
	}

	if in.FCMToken != "" && in.FCMToken != user.FCMToken {
		if err := s.stg.UpdateFCMToken(ctx, user.ID, in.FCMToken); err != nil {
			s.log.Warning("fcm token not saved", logger.Uint64("user_id", user.ID), logger.Error(err))
		}
		user.FCMToken = in.FCMToken
	}

	token, err := utils.GenerateToken(s.set.JWTSecret, user.ID, user.RoleID, s.now())
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *userService) Profile(ctx context.Context, userID uint64) (*models.User, error) {
	return s.stg.GetByID(ctx, userID)
}
