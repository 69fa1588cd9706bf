package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"giftshop/internal/model"
	"giftshop/internal/store"
)

// LedgerStore keeps accounts in a map guarded by one mutex. The mutex
// is held only for the in-memory mutation itself, never across I/O, so
// it plays the same role the conditional UPDATE plays in gormstore.
type LedgerStore struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
	nextID   int64
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{accounts: make(map[string]*model.Account)}
}

func (s *LedgerStore) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		return decimal.Zero, nil
	}
	return account.Balance, nil
}

func (s *LedgerStore) GetAccount(ctx context.Context, userID string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.copyOf(s.getOrCreateLocked(userID)), nil
}

func (s *LedgerStore) ApplyDelta(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account := s.getOrCreateLocked(userID)
	next := account.Balance.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, &store.InsufficientFundsError{Balance: account.Balance}
	}

	account.Balance = next
	account.Version++
	account.UpdatedAt = time.Now()
	return next, nil
}

func (s *LedgerStore) AddStars(ctx context.Context, userID string, n int64) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account := s.getOrCreateLocked(userID)
	account.Stars += n
	account.Version++
	account.UpdatedAt = time.Now()
	return s.copyOf(account), nil
}

func (s *LedgerStore) ExtendPremium(ctx context.Context, userID string, months int, now time.Time) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account := s.getOrCreateLocked(userID)
	base := now
	if account.PremiumUntil != nil && account.PremiumUntil.After(now) {
		base = *account.PremiumUntil
	}
	until := base.AddDate(0, months, 0)
	account.PremiumUntil = &until
	account.Version++
	account.UpdatedAt = time.Now()
	return s.copyOf(account), nil
}

func (s *LedgerStore) getOrCreateLocked(userID string) *model.Account {
	if account, ok := s.accounts[userID]; ok {
		return account
	}
	s.nextID++
	account := &model.Account{
		ID:        s.nextID,
		UserID:    userID,
		Balance:   decimal.Zero,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.accounts[userID] = account
	return account
}

// copyOf hands callers a snapshot so they cannot mutate ledger state
// around ApplyDelta.
func (s *LedgerStore) copyOf(account *model.Account) *model.Account {
	clone := *account
	if account.PremiumUntil != nil {
		until := *account.PremiumUntil
		clone.PremiumUntil = &until
	}
	return &clone
}
