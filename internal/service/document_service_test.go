package service

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"carrental-backend/internal/models"
	"carrental-backend/internal/storage"
	"carrental-backend/internal/storage/mysql"
	"carrental-backend/pkg/logger"
)

func newDocumentFixture(t *testing.T) (DocumentService, *models.User) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, mysql.Migrate(db))

	stg := mysql.New(db, logger.NewNop())
	user := &models.User{RoleID: models.RoleCustomer, FullName: "Trần Thị B", Email: "b@example.vn", PasswordHash: "x", Phone: "0912345678"}
	require.NoError(t, stg.User().Create(context.Background(), user))
	return NewDocumentService(stg, logger.NewNop()), user
}

func TestDocumentSubmitAndVerify(t *testing.T) {
	svc, user := newDocumentFixture(t)
	ctx := context.Background()
	customer := Actor{UserID: user.ID, RoleID: models.RoleCustomer}

	docs, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, docs.DriverLicense)
	assert.Nil(t, docs.CitizenID)

	dl, err := svc.SubmitDriverLicense(ctx, customer, models.DriverLicenseInput{
		LicenseNumber: " b2-123456 ",
		Class:         "b2",
		FullName:      "Trần Thị B",
		ExpiresAt:     "2032-05-01",
		FrontImageURL: "https://cdn.example.vn/dl-front.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "B2-123456", dl.LicenseNumber)
	assert.Equal(t, "B2", dl.Class)
	require.NotNil(t, dl.ExpiresAt)
	assert.False(t, dl.Verified)

	_, err = svc.SubmitCitizenID(ctx, customer, models.CitizenIDInput{
		IDNumber:      "079123456789",
		FullName:      "Trần Thị B",
		DateOfBirth:   "1995-02-30",
		FrontImageURL: "https://cdn.example.vn/cccd-front.jpg",
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.SubmitCitizenID(ctx, customer, models.CitizenIDInput{
		IDNumber:      "079123456789",
		FullName:      "Trần Thị B",
		DateOfBirth:   "1995-02-28",
		FrontImageURL: "https://cdn.example.vn/cccd-front.jpg",
	})
	require.NoError(t, err)

	staff := Actor{UserID: 99, RoleID: models.RoleStaff}
	docs, err = svc.Verify(ctx, staff, user.ID, models.VerifyDocumentsInput{DriverLicense: true, CitizenID: true})
	require.NoError(t, err)
	require.NotNil(t, docs.DriverLicense)
	require.NotNil(t, docs.CitizenID)
	assert.True(t, docs.DriverLicense.Verified)
	assert.True(t, docs.CitizenID.Verified)
}

func TestDocumentValidation(t *testing.T) {
	svc, user := newDocumentFixture(t)
	ctx := context.Background()

	_, err := svc.SubmitDriverLicense(ctx, Actor{UserID: user.ID}, models.DriverLicenseInput{
		LicenseNumber: "B2-1", FullName: "X", ExpiresAt: "01/05/2032", FrontImageURL: "https://cdn/x.jpg",
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.Verify(ctx, Actor{UserID: 1, RoleID: models.RoleAdmin}, 404, models.VerifyDocumentsInput{DriverLicense: true})
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
