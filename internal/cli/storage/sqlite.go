package storage

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// item is a single persisted key/value row
type item struct {
	Namespace string `gorm:"primaryKey;type:varchar(128)"`
	Key       string `gorm:"column:item_key;primaryKey;type:varchar(64)"`
	Value     string `gorm:"type:text;not null"`
}

func (item) TableName() string {
	return "storage_items"
}

// SQLite stores values in a local SQLite database, one row per key.
type SQLite struct {
	db        *gorm.DB
	namespace string
}

// OpenSQLite opens (and migrates) the database at dsn.
// Use ":memory:" for an ephemeral store.
func OpenSQLite(dsn, namespace string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage database: %w", err)
	}

	// One connection: ":memory:" databases are per-connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get storage database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&item{}); err != nil {
		return nil, fmt.Errorf("failed to migrate storage database: %w", err)
	}

	return &SQLite{db: db, namespace: namespace}, nil
}

func (s *SQLite) Get(key string) (string, bool, error) {
	var row item
	err := s.db.Where("namespace = ? AND item_key = ?", s.namespace, key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *SQLite) Set(key, value string) error {
	row := item{Namespace: s.namespace, Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "item_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Remove(key string) error {
	err := s.db.Where("namespace = ? AND item_key = ?", s.namespace, key).Delete(&item{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
