package gormstore

import (
	"context"

	"gorm.io/gorm"

	"giftshop/internal/model"
)

type OutboxStore struct {
	db *gorm.DB
}

func NewOutboxStore(db *gorm.DB) *OutboxStore {
	return &OutboxStore{db: db}
}

func (s *OutboxStore) Enqueue(ctx context.Context, msg *model.OutboxMessage) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return wrapStorage(err)
	}
	return nil
}

func (s *OutboxStore) Pending(ctx context.Context, limit int) ([]*model.OutboxMessage, error) {
	var messages []*model.OutboxMessage
	err := s.db.WithContext(ctx).
		Where("status = ?", model.OutboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, wrapStorage(err)
	}
	return messages, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).
		Model(&model.OutboxMessage{}).
		Where("id = ?", id).
		Update("status", model.OutboxStatusSent).Error
	if err != nil {
		return wrapStorage(err)
	}
	return nil
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).
		Model(&model.OutboxMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      model.OutboxStatusFailed,
			"retry_count": gorm.Expr("retry_count + 1"),
		}).Error
	if err != nil {
		return wrapStorage(err)
	}
	return nil
}

func (s *OutboxStore) IncrementRetry(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).
		Model(&model.OutboxMessage{}).
		Where("id = ?", id).
		UpdateColumn("retry_count", gorm.Expr("retry_count + 1")).Error
	if err != nil {
		return wrapStorage(err)
	}
	return nil
}
