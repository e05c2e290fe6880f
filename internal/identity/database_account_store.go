package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/includeshubhamgenius/skill-share/internal/storage"
)

// DatabaseAccountStore persists accounts using GORM.
type DatabaseAccountStore struct {
	db          *gorm.DB
	driverLabel string
}

// Driver exposes the selected database driver label.
func (store *DatabaseAccountStore) Driver() string {
	return store.driverLabel
}

type accountRecord struct {
	AccountID     string `gorm:"column:account_id;primaryKey"`
	Email         string `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash  string `gorm:"column:password_hash;not null"`
	EmailVerified bool   `gorm:"column:email_verified;not null;default:false"`
	PhotoURL      string `gorm:"column:photo_url;not null;default:''"`
	CreatedAtUnix int64  `gorm:"column:created_at_unix;not null"`
}

func (accountRecord) TableName() string {
	return "accounts"
}

// NewDatabaseAccountStore constructs a GORM-backed store from a database URL.
func NewDatabaseAccountStore(ctx context.Context, databaseURL string) (*DatabaseAccountStore, error) {
	gormDB, driverLabel, openErr := storage.Open(databaseURL)
	if openErr != nil {
		return nil, openErr
	}
	if migrateErr := gormDB.WithContext(ctx).AutoMigrate(&accountRecord{}); migrateErr != nil {
		return nil, fmt.Errorf("account_store.migrate.%s: %w", driverLabel, migrateErr)
	}
	return &DatabaseAccountStore{
		db:          gormDB,
		driverLabel: driverLabel,
	}, nil
}

// Create inserts a new account row.
func (store *DatabaseAccountStore) Create(ctx context.Context, account Account) error {
	emailKey := strings.ToLower(account.Email)
	var existing int64
	if countErr := store.db.WithContext(ctx).Model(&accountRecord{}).Where("email = ?", emailKey).Count(&existing).Error; countErr != nil {
		return fmt.Errorf("account_store.create.%s: %w", store.driverLabel, countErr)
	}
	if existing > 0 {
		return ErrAccountExists
	}
	record := accountRecord{
		AccountID:     account.ID,
		Email:         emailKey,
		PasswordHash:  account.PasswordHash,
		EmailVerified: account.EmailVerified,
		PhotoURL:      account.PhotoURL,
		CreatedAtUnix: account.CreatedAt.UTC().Unix(),
	}
	if createErr := store.db.WithContext(ctx).Create(&record).Error; createErr != nil {
		return fmt.Errorf("account_store.create.%s: %w", store.driverLabel, createErr)
	}
	return nil
}

// GetByEmail locates an account row by email.
func (store *DatabaseAccountStore) GetByEmail(ctx context.Context, email string) (Account, error) {
	var record accountRecord
	err := store.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("account_store.get_by_email.%s: %w", store.driverLabel, err)
	}
	return accountFromRecord(record), nil
}

// GetByID locates an account row by identifier.
func (store *DatabaseAccountStore) GetByID(ctx context.Context, accountID string) (Account, error) {
	var record accountRecord
	err := store.db.WithContext(ctx).Where("account_id = ?", accountID).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("account_store.get_by_id.%s: %w", store.driverLabel, err)
	}
	return accountFromRecord(record), nil
}

// MarkVerified flips the email-verified flag. Idempotent.
func (store *DatabaseAccountStore) MarkVerified(ctx context.Context, accountID string) error {
	result := store.db.WithContext(ctx).Model(&accountRecord{}).
		Where("account_id = ?", accountID).
		Update("email_verified", true)
	if result.Error != nil {
		return fmt.Errorf("account_store.mark_verified.%s: %w", store.driverLabel, result.Error)
	}
	if result.RowsAffected == 0 {
		var record accountRecord
		findErr := store.db.WithContext(ctx).Where("account_id = ?", accountID).Take(&record).Error
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		if findErr != nil {
			return fmt.Errorf("account_store.mark_verified.%s: %w", store.driverLabel, findErr)
		}
	}
	return nil
}

func accountFromRecord(record accountRecord) Account {
	return Account{
		ID:            record.AccountID,
		Email:         record.Email,
		PasswordHash:  record.PasswordHash,
		EmailVerified: record.EmailVerified,
		PhotoURL:      record.PhotoURL,
		CreatedAt:     time.Unix(record.CreatedAtUnix, 0).UTC(),
	}
}
