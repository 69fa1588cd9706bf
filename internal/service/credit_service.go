package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"giftshop/internal/config"
	"giftshop/internal/model"
	"giftshop/internal/store"
	"giftshop/pkg/idgen"
)

// Settlement kinds accepted from the external payment callback.
const (
	SettleKindPoints        = "points"
	SettleKindPremiumMonths = "premium_months"
)

// CreditService increases balances. IssueCredit is the privileged
// admin grant; SettleExternalPayment is the payment-callback path that
// credits the secondary account fields. Both validate before touching
// any state.
type CreditService struct {
	st  store.Store
	cfg *config.Config
}

func NewCreditService(st store.Store, cfg *config.Config) *CreditService {
	return &CreditService{st: st, cfg: cfg}
}

// IssueCredit grants amount coins to target. Only the configured admin
// id may call it; the authorization predicate runs before anything is
// mutated, and a rejected call leaves the target balance untouched.
func (s *CreditService) IssueCredit(ctx context.Context, actorID, targetID string, amount decimal.Decimal) (decimal.Decimal, error) {
	admin := s.cfg.Auth.AdminUserID
	if admin == "" || actorID != admin {
		return decimal.Zero, ErrUnauthorized
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	before, err := s.st.Ledger().GetBalance(ctx, targetID)
	if err != nil {
		return decimal.Zero, err
	}

	newBalance, err := s.st.Ledger().ApplyDelta(ctx, targetID, amount)
	if err != nil {
		return decimal.Zero, err
	}

	s.record(ctx, targetID, amount, model.EntryKindCredit, before, newBalance,
		fmt.Sprintf("credit issued by %s", actorID))

	log.Printf("[Credit] issued: target=%s amount=%s balance=%s", targetID, amount, newBalance)
	return newBalance, nil
}

// SettleExternalPayment applies a verified external payment to the
// account sub-field named by kind. The caller has already verified the
// transaction proof; there is no privileged-actor gate here, but the
// same validate-then-apply shape holds. A redelivered paymentRef is a
// no-op returning current state.
func (s *CreditService) SettleExternalPayment(ctx context.Context, userID, kind string, amount int64, paymentRef string) (*model.Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if paymentRef == "" {
		return nil, ErrInvalidAmount
	}

	entryNo := "SET" + paymentRef
	if existing, err := s.st.Journal().GetByEntryNo(ctx, entryNo); err != nil {
		return nil, err
	} else if existing != nil {
		return s.st.Ledger().GetAccount(ctx, userID)
	}

	var account *model.Account
	var err error
	switch kind {
	case SettleKindPoints:
		account, err = s.st.Ledger().AddStars(ctx, userID, amount)
	case SettleKindPremiumMonths:
		account, err = s.st.Ledger().ExtendPremium(ctx, userID, int(amount), time.Now())
	default:
		return nil, ErrInvalidSettlementKind
	}
	if err != nil {
		return nil, err
	}

	entryKind := model.EntryKindPoints
	if kind == SettleKindPremiumMonths {
		entryKind = model.EntryKindPremium
	}
	entry := &model.LedgerEntry{
		EntryNo:       entryNo,
		UserID:        userID,
		Amount:        decimal.NewFromInt(amount),
		Kind:          entryKind,
		BalanceBefore: account.Balance,
		BalanceAfter:  account.Balance,
		Remark:        fmt.Sprintf("external settlement %s", paymentRef),
	}
	if appendErr := s.st.Journal().Append(ctx, entry); appendErr != nil && !errors.Is(appendErr, store.ErrDuplicateEntry) {
		log.Printf("[Credit] settlement journal append failed: ref=%s err=%v", paymentRef, appendErr)
	}

	log.Printf("[Credit] settled: user=%s kind=%s amount=%d ref=%s", userID, kind, amount, paymentRef)
	return account, nil
}

func (s *CreditService) record(ctx context.Context, userID string, amount decimal.Decimal, kind string, before, after decimal.Decimal, remark string) {
	entry := &model.LedgerEntry{
		EntryNo:       idgen.GenerateEntryNo(),
		UserID:        userID,
		Amount:        amount,
		Kind:          kind,
		BalanceBefore: before,
		BalanceAfter:  after,
		Remark:        remark,
	}
	if err := s.st.Journal().Append(ctx, entry); err != nil {
		log.Printf("[Credit] journal append failed: user=%s err=%v", userID, err)
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"event_id": uuid.NewString(),
		"kind":     "credit.issued",
		"user_id":  userID,
		"amount":   amount,
		"balance":  after,
		"at":       time.Now().Format(time.RFC3339),
	})
	msg := &model.OutboxMessage{
		MessageKey: entry.EntryNo,
		Topic:      s.cfg.Kafka.Topic.ShopEvents,
		Payload:    string(payload),
		Status:     model.OutboxStatusPending,
	}
	if err := s.st.Outbox().Enqueue(ctx, msg); err != nil {
		log.Printf("[Credit] outbox enqueue failed: user=%s err=%v", userID, err)
	}
}
