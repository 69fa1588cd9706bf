package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"giftshop/internal/model"
	"giftshop/internal/store"
)

type JournalStore struct {
	db *gorm.DB
}

func NewJournalStore(db *gorm.DB) *JournalStore {
	return &JournalStore{db: db}
}

func (s *JournalStore) Append(ctx context.Context, entry *model.LedgerEntry) error {
	err := s.db.WithContext(ctx).Create(entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return store.ErrDuplicateEntry
		}
		return wrapStorage(err)
	}
	return nil
}

func (s *JournalStore) GetByEntryNo(ctx context.Context, entryNo string) (*model.LedgerEntry, error) {
	var entry model.LedgerEntry
	err := s.db.WithContext(ctx).Where("entry_no = ?", entryNo).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStorage(err)
	}
	return &entry, nil
}

func (s *JournalStore) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*model.LedgerEntry, int64, error) {
	var entries []*model.LedgerEntry
	var total int64

	// Clamp so a bad page can never reach MySQL as a negative OFFSET.
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	query := s.db.WithContext(ctx).Model(&model.LedgerEntry{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapStorage(err)
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, wrapStorage(err)
	}

	return entries, total, nil
}
