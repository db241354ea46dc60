package store

import (
	"context"
	"fmt"

	"github.com/wordsync/api/internal/conflict"
	"github.com/wordsync/api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// mutableColumns are overwritten when an incoming version wins. name and
// created_time are deliberately absent.
var mutableColumns = []string{
	"meaning_kr",
	"example",
	"antonym_en",
	"tags",
	"modified_time",
	"is_deleted",
	"note",
}

type GormStore struct {
	db       *gorm.DB
	resolver conflict.Resolver
}

func NewGormStore(db *gorm.DB, resolver conflict.Resolver) *GormStore {
	if resolver == nil {
		resolver = conflict.Default
	}
	return &GormStore{db: db, resolver: resolver}
}

// Upsert issues a single INSERT ... ON CONFLICT(name) DO UPDATE ... WHERE
// guard, so the conflict rule is evaluated atomically by the database and
// concurrent requests need no application lock.
func (s *GormStore) Upsert(ctx context.Context, w *model.Word) (bool, error) {
	row := *w
	synced := row.ModifiedTime
	row.SyncedTime = &synced

	table := model.Word{}.TableName()
	updates := clause.AssignmentColumns(mutableColumns)
	updates = append(updates, clause.Assignment{
		Column: clause.Column{Name: "synced_time"},
		Value:  clause.Column{Table: "excluded", Name: "modified_time"},
	})

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: updates,
		Where:     clause.Where{Exprs: []clause.Expression{s.resolver.Guard(table, "modified_time")}},
	}).Create(&row)
	if result.Error != nil {
		return false, fmt.Errorf("upsert word %q: %w", w.Name, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *GormStore) ScanModifiedAfter(ctx context.Context, since string) ([]model.Word, error) {
	var words []model.Word
	err := s.db.WithContext(ctx).
		Where("modified_time > ?", since).
		Order("modified_time ASC").
		Order("name ASC").
		Find(&words).Error
	if err != nil {
		return nil, fmt.Errorf("scan words modified after %q: %w", since, err)
	}
	return words, nil
}

func (s *GormStore) ScanAll(ctx context.Context) ([]model.Word, error) {
	var words []model.Word
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&words).Error; err != nil {
		return nil, fmt.Errorf("scan all words: %w", err)
	}
	return words, nil
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, resolver: s.resolver})
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
