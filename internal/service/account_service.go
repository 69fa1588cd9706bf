package service

import (
	"context"

	"github.com/shopspring/decimal"

	"giftshop/internal/config"
	"giftshop/internal/model"
	"giftshop/internal/store"
)

type AccountService struct {
	st  store.Store
	cfg *config.Config
}

func NewAccountService(st store.Store, cfg *config.Config) *AccountService {
	return &AccountService{st: st, cfg: cfg}
}

func (s *AccountService) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := retryRead(s.cfg.Business.ReadRetryCount, func() error {
		var err error
		balance, err = s.st.Ledger().GetBalance(ctx, userID)
		return err
	})
	return balance, err
}

func (s *AccountService) GetAccount(ctx context.Context, userID string) (*model.Account, error) {
	return s.st.Ledger().GetAccount(ctx, userID)
}

// History pages through the user's journal entries, newest first.
func (s *AccountService) History(ctx context.Context, userID string, page, pageSize int) ([]*model.LedgerEntry, int64, error) {
	var entries []*model.LedgerEntry
	var total int64
	err := retryRead(s.cfg.Business.ReadRetryCount, func() error {
		var err error
		entries, total, err = s.st.Journal().ListByUser(ctx, userID, page, pageSize)
		return err
	})
	return entries, total, err
}
