package memstore

import (
	"context"
	"sync"
	"time"

	"giftshop/internal/model"
	"giftshop/internal/store"
)

type JournalStore struct {
	mu      sync.Mutex
	entries []*model.LedgerEntry
	byNo    map[string]*model.LedgerEntry
	nextID  int64
}

func NewJournalStore() *JournalStore {
	return &JournalStore{byNo: make(map[string]*model.LedgerEntry)}
}

func (s *JournalStore) Append(ctx context.Context, entry *model.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byNo[entry.EntryNo]; ok {
		return store.ErrDuplicateEntry
	}

	s.nextID++
	clone := *entry
	clone.ID = s.nextID
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now()
	}
	s.entries = append(s.entries, &clone)
	s.byNo[clone.EntryNo] = &clone
	return nil
}

func (s *JournalStore) GetByEntryNo(ctx context.Context, entryNo string) (*model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byNo[entryNo]
	if !ok {
		return nil, nil
	}
	clone := *entry
	return &clone, nil
}

func (s *JournalStore) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*model.LedgerEntry, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*model.LedgerEntry
	// entries is append-only; walk backwards for newest-first order.
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].UserID == userID {
			clone := *s.entries[i]
			matched = append(matched, &clone)
		}
	}

	// Callers validate pagination; clamp anyway so a bad page can
	// never produce a negative slice bound.
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	total := int64(len(matched))
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}
