package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/includeshubhamgenius/skill-share/internal/storage"
)

// DatabaseStore persists profiles using GORM.
type DatabaseStore struct {
	db          *gorm.DB
	driverLabel string
}

// Driver exposes the selected database driver label.
func (store *DatabaseStore) Driver() string {
	return store.driverLabel
}

type profileRecord struct {
	AccountID     string `gorm:"column:account_id;primaryKey"`
	Name          string `gorm:"column:name;not null"`
	Username      string `gorm:"column:username;not null"`
	DOB           string `gorm:"column:dob;not null"`
	Email         string `gorm:"column:email;not null"`
	CreatedAtUnix int64  `gorm:"column:created_at_unix;not null"`
}

func (profileRecord) TableName() string {
	return Namespace
}

// NewDatabaseStore constructs a GORM-backed store from a database URL.
func NewDatabaseStore(ctx context.Context, databaseURL string) (*DatabaseStore, error) {
	gormDB, driverLabel, openErr := storage.Open(databaseURL)
	if openErr != nil {
		return nil, openErr
	}
	if migrateErr := gormDB.WithContext(ctx).AutoMigrate(&profileRecord{}); migrateErr != nil {
		return nil, fmt.Errorf("profile_store.migrate.%s: %w", driverLabel, migrateErr)
	}
	return &DatabaseStore{
		db:          gormDB,
		driverLabel: driverLabel,
	}, nil
}

// Get locates a profile row by account ID.
func (store *DatabaseStore) Get(ctx context.Context, accountID string) (Profile, error) {
	var record profileRecord
	err := store.db.WithContext(ctx).Where("account_id = ?", accountID).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, fmt.Errorf("profile_store.get.%s: %w", store.driverLabel, err)
	}
	return Profile{
		Name:      record.Name,
		Username:  record.Username,
		DOB:       record.DOB,
		Email:     record.Email,
		CreatedAt: time.Unix(record.CreatedAtUnix, 0).UTC(),
	}, nil
}

// Put upserts the profile row for an account ID.
func (store *DatabaseStore) Put(ctx context.Context, accountID string, record Profile) error {
	row := profileRecord{
		AccountID:     accountID,
		Name:          record.Name,
		Username:      record.Username,
		DOB:           record.DOB,
		Email:         record.Email,
		CreatedAtUnix: record.CreatedAt.UTC().Unix(),
	}
	err := store.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("profile_store.put.%s: %w", store.driverLabel, err)
	}
	return nil
}
