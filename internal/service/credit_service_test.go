package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftshop/internal/store/memstore"
)

func TestCreditService_IssueCredit(t *testing.T) {
	ctx := context.Background()

	t.Run("admin grant lands on the balance", func(t *testing.T) {
		st := memstore.New()
		svc := NewCreditService(st, testConfig())
		seedBalance(t, st, "42", 0.5)

		balance, err := svc.IssueCredit(ctx, "admin", "42", decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromFloat(10.5)))
	})

	t.Run("non-privileged actor is rejected before any mutation", func(t *testing.T) {
		st := memstore.New()
		svc := NewCreditService(st, testConfig())
		seedBalance(t, st, "42", 0.5)

		// A regular user id, including the target itself, is not the
		// privileged actor.
		_, err := svc.IssueCredit(ctx, "42", "42", decimal.NewFromInt(10))
		assert.ErrorIs(t, err, ErrUnauthorized)

		balance, err := st.Ledger().GetBalance(ctx, "42")
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromFloat(0.5)), "balance unchanged")
	})

	t.Run("empty configured admin never matches", func(t *testing.T) {
		st := memstore.New()
		cfg := testConfig()
		cfg.Auth.AdminUserID = ""
		svc := NewCreditService(st, cfg)

		_, err := svc.IssueCredit(ctx, "", "42", decimal.NewFromInt(10))
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("non-positive amounts rejected", func(t *testing.T) {
		st := memstore.New()
		svc := NewCreditService(st, testConfig())

		_, err := svc.IssueCredit(ctx, "admin", "42", decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = svc.IssueCredit(ctx, "admin", "42", decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestCreditService_SettleExternalPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("points credit stars", func(t *testing.T) {
		st := memstore.New()
		svc := NewCreditService(st, testConfig())

		account, err := svc.SettleExternalPayment(ctx, "42", SettleKindPoints, 100, "pay-1")
		require.NoError(t, err)
		assert.Equal(t, int64(100), account.Stars)
	})

	t.Run("premium months extend expiry", func(t *testing.T) {
		st := memstore.New()
		svc := NewCreditService(st, testConfig())

		account, err := svc.SettleExternalPayment(ctx, "42", SettleKindPremiumMonths, 3, "pay-2")
		require.NoError(t, err)
		require.NotNil(t, account.PremiumUntil)
	})

	t.Run("redelivered payment ref is a no-op", func(t *testing.T) {
		st := memstore.New()
		svc := NewCreditService(st, testConfig())

		_, err := svc.SettleExternalPayment(ctx, "42", SettleKindPoints, 100, "pay-1")
		require.NoError(t, err)

		account, err := svc.SettleExternalPayment(ctx, "42", SettleKindPoints, 100, "pay-1")
		require.NoError(t, err)
		assert.Equal(t, int64(100), account.Stars, "stars credited once")
	})

	t.Run("unknown kind and bad amounts rejected", func(t *testing.T) {
		st := memstore.New()
		svc := NewCreditService(st, testConfig())

		_, err := svc.SettleExternalPayment(ctx, "42", "gems", 5, "pay-3")
		assert.ErrorIs(t, err, ErrInvalidSettlementKind)

		_, err = svc.SettleExternalPayment(ctx, "42", SettleKindPoints, 0, "pay-4")
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = svc.SettleExternalPayment(ctx, "42", SettleKindPoints, 5, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}
