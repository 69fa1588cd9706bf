package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"giftshop/internal/model"
	"giftshop/internal/store"
)

// LedgerStore is the MySQL-backed ledger. Every balance mutation is a
// single conditional UPDATE (balance + delta >= 0 in the WHERE clause)
// so concurrent deltas for one user serialize inside the database and
// the balance can never be observed negative.
type LedgerStore struct {
	db *gorm.DB
}

func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var account model.Account
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, wrapStorage(err)
	}
	return account.Balance, nil
}

func (s *LedgerStore) GetAccount(ctx context.Context, userID string) (*model.Account, error) {
	return s.getOrCreate(ctx, userID)
}

func (s *LedgerStore) ApplyDelta(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	if _, err := s.getOrCreate(ctx, userID); err != nil {
		return decimal.Zero, err
	}

	var newBalance decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Account{}).
			Where("user_id = ? AND balance + ? >= 0", userID, delta).
			Updates(map[string]interface{}{
				"balance": gorm.Expr("balance + ?", delta),
				"version": gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			// Predicate failed: re-read to report the balance that
			// refused the debit.
			var account model.Account
			if err := tx.Where("user_id = ?", userID).First(&account).Error; err != nil {
				return err
			}
			return &store.InsufficientFundsError{Balance: account.Balance}
		}

		var account model.Account
		if err := tx.Where("user_id = ?", userID).First(&account).Error; err != nil {
			return err
		}
		newBalance = account.Balance
		return nil
	})
	if err != nil {
		var insufficient *store.InsufficientFundsError
		if errors.As(err, &insufficient) {
			return decimal.Zero, insufficient
		}
		return decimal.Zero, wrapStorage(err)
	}
	return newBalance, nil
}

func (s *LedgerStore) AddStars(ctx context.Context, userID string, n int64) (*model.Account, error) {
	if _, err := s.getOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Model(&model.Account{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"stars":   gorm.Expr("stars + ?", n),
			"version": gorm.Expr("version + 1"),
		}).Error
	if err != nil {
		return nil, wrapStorage(err)
	}
	return s.getByUserID(ctx, userID)
}

func (s *LedgerStore) ExtendPremium(ctx context.Context, userID string, months int, now time.Time) (*model.Account, error) {
	if _, err := s.getOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	var updated *model.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock: the new expiry depends on the current one, so this
		// read-modify-write must not interleave with another extension.
		var account model.Account
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&account).Error
		if err != nil {
			return err
		}

		base := now
		if account.PremiumUntil != nil && account.PremiumUntil.After(now) {
			base = *account.PremiumUntil
		}
		until := base.AddDate(0, months, 0)

		err = tx.Model(&model.Account{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"premium_until": until,
				"version":       gorm.Expr("version + 1"),
			}).Error
		if err != nil {
			return err
		}

		account.PremiumUntil = &until
		updated = &account
		return nil
	})
	if err != nil {
		return nil, wrapStorage(err)
	}
	return updated, nil
}

func (s *LedgerStore) getByUserID(ctx context.Context, userID string) (*model.Account, error) {
	var account model.Account
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrAccountNotFound
		}
		return nil, wrapStorage(err)
	}
	return &account, nil
}

func (s *LedgerStore) getOrCreate(ctx context.Context, userID string) (*model.Account, error) {
	account, err := s.getByUserID(ctx, userID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, store.ErrAccountNotFound) {
		return nil, err
	}

	newAccount := &model.Account{
		UserID:  userID,
		Balance: decimal.Zero,
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(newAccount).Error
	if err != nil {
		return nil, wrapStorage(err)
	}

	return s.getByUserID(ctx, userID)
}

func wrapStorage(err error) error {
	return fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
}
