package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryModel is one persisted state value
type EntryModel struct {
	Key       string    `gorm:"column:key;type:varchar(128);primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (EntryModel) TableName() string {
	return "workspace_state"
}

// GormStore keeps state in a single SQL table (sqlite or postgres).
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates the state table if needed and returns the store
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&EntryModel{}); err != nil {
		return nil, fmt.Errorf("state: migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Get implements Store
func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry EntryModel
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("state: get %q: %w", key, err)
	}
	return []byte(entry.Value), nil
}

// Set implements Store
func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	entry := EntryModel{Key: key, Value: string(value), UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("state: set %q: %w", key, err)
	}
	return nil
}

// Delete implements Store
func (s *GormStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&EntryModel{}).Error; err != nil {
		return fmt.Errorf("state: delete %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("state: get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
