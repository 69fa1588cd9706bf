package memstore

import (
	"context"
	"sync"
	"time"

	"giftshop/internal/model"
)

type OutboxStore struct {
	mu       sync.Mutex
	messages []*model.OutboxMessage
	nextID   int64
}

func NewOutboxStore() *OutboxStore {
	return &OutboxStore{}
}

func (s *OutboxStore) Enqueue(ctx context.Context, msg *model.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	clone := *msg
	clone.ID = s.nextID
	if clone.Status == "" {
		clone.Status = model.OutboxStatusPending
	}
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	s.messages = append(s.messages, &clone)
	msg.ID = clone.ID
	return nil
}

func (s *OutboxStore) Pending(ctx context.Context, limit int) ([]*model.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []*model.OutboxMessage
	for _, msg := range s.messages {
		if msg.Status != model.OutboxStatusPending {
			continue
		}
		clone := *msg
		pending = append(pending, &clone)
		if len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id int64) error {
	return s.update(id, func(msg *model.OutboxMessage) {
		msg.Status = model.OutboxStatusSent
	})
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id int64) error {
	return s.update(id, func(msg *model.OutboxMessage) {
		msg.Status = model.OutboxStatusFailed
		msg.RetryCount++
	})
}

func (s *OutboxStore) IncrementRetry(ctx context.Context, id int64) error {
	return s.update(id, func(msg *model.OutboxMessage) {
		msg.RetryCount++
	})
}

func (s *OutboxStore) update(id int64, apply func(*model.OutboxMessage)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, msg := range s.messages {
		if msg.ID == id {
			apply(msg)
			msg.UpdatedAt = time.Now()
			return nil
		}
	}
	return nil
}
