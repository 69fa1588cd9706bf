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
	"giftshop/internal/infrastructure/cache"
	"giftshop/internal/model"
	"giftshop/internal/store"
	"giftshop/pkg/idgen"
)

// PurchaseService exchanges balance for ownership of one asset.
//
// The commit discipline: claim the asset first (cheap, asset-scoped
// compare-and-set), then debit the buyer. If the debit fails because a
// concurrent spend exhausted the funds, the claim is rolled back before
// returning, so the system is never left with a debited balance and no
// ownership grant, or an ownership grant nobody paid for. Each attempt
// ends Committed or Rejected; there is no externally observable state
// in between, and retrying a committed purchase just re-observes
// AlreadyOwned.
type PurchaseService struct {
	st    store.Store
	cache *cache.CatalogCache
	cfg   *config.Config
}

func NewPurchaseService(st store.Store, catalogCache *cache.CatalogCache, cfg *config.Config) *PurchaseService {
	return &PurchaseService{
		st:    st,
		cache: catalogCache,
		cfg:   cfg,
	}
}

type PurchaseResult struct {
	AssetID int64           `json:"asset_id"`
	Price   decimal.Decimal `json:"price"`
	Balance decimal.Decimal `json:"balance"`
	EntryNo string          `json:"entry_no"`
}

func (s *PurchaseService) Purchase(ctx context.Context, buyerID string, assetID int64) (*PurchaseResult, error) {
	var asset *model.Asset
	err := retryRead(s.cfg.Business.ReadRetryCount, func() error {
		var err error
		asset, err = s.st.Catalog().Get(ctx, assetID)
		return err
	})
	if err != nil {
		return nil, err
	}

	// Early exit. The authoritative check is the compare-and-set below;
	// this only spares a doomed attempt the balance lookup.
	if asset.Owned() {
		return nil, store.ErrAlreadyOwned
	}

	var balance decimal.Decimal
	err = retryRead(s.cfg.Business.ReadRetryCount, func() error {
		var err error
		balance, err = s.st.Ledger().GetBalance(ctx, buyerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if balance.LessThan(asset.Price) {
		// Nothing has been mutated on this path.
		return nil, &store.InsufficientFundsError{Balance: balance}
	}

	// Commit phase: claim, then debit, roll back the claim when the
	// debit loses a race. The phase is detached from request
	// cancellation: once the claim lands, a client disconnect must not
	// stop the debit or the rollback, or ownership would persist
	// without payment.
	commitCtx := context.WithoutCancel(ctx)
	if err := s.st.Catalog().ClaimOwner(commitCtx, assetID, buyerID); err != nil {
		return nil, err
	}

	newBalance, err := s.st.Ledger().ApplyDelta(commitCtx, buyerID, asset.Price.Neg())
	if err != nil {
		if releaseErr := s.st.Catalog().ReleaseOwner(commitCtx, assetID, buyerID); releaseErr != nil {
			// The claim could not be undone after a failed debit. This
			// must never happen; surface it instead of returning the
			// debit failure alone.
			return nil, fmt.Errorf("%w: rollback of asset %d failed after debit error (%v): %v",
				store.ErrInvariantViolation, assetID, err, releaseErr)
		}
		return nil, err
	}

	// BalanceBefore is derived from the debit itself, not the precheck
	// read, which may be stale by the time the debit lands.
	entryNo := s.record(commitCtx, buyerID, asset, newBalance.Add(asset.Price), newBalance)
	s.cache.Invalidate(commitCtx)

	log.Printf("[Purchase] committed: asset=%d buyer=%s price=%s balance=%s",
		assetID, buyerID, asset.Price, newBalance)

	return &PurchaseResult{
		AssetID: assetID,
		Price:   asset.Price,
		Balance: newBalance,
		EntryNo: entryNo,
	}, nil
}

// record appends the journal entry and outbox event for a committed
// purchase. The purchase itself is already durable; a failure here is
// an audit gap, logged loudly and left to reconciliation, not a reason
// to fail the caller.
func (s *PurchaseService) record(ctx context.Context, buyerID string, asset *model.Asset, before, after decimal.Decimal) string {
	entry := &model.LedgerEntry{
		EntryNo:       idgen.GenerateEntryNo(),
		UserID:        buyerID,
		AssetID:       asset.AssetID,
		Amount:        asset.Price.Neg(),
		Kind:          model.EntryKindPurchase,
		BalanceBefore: before,
		BalanceAfter:  after,
		Remark:        fmt.Sprintf("purchase %s #%s", asset.DisplayName, asset.SerialNumber),
	}
	if err := s.st.Journal().Append(ctx, entry); err != nil {
		log.Printf("[Purchase] journal append failed: asset=%d buyer=%s err=%v", asset.AssetID, buyerID, err)
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"event_id": uuid.NewString(),
		"kind":     "purchase.committed",
		"asset_id": asset.AssetID,
		"buyer_id": buyerID,
		"price":    asset.Price,
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
		log.Printf("[Purchase] outbox enqueue failed: asset=%d buyer=%s err=%v", asset.AssetID, buyerID, err)
	}

	return entry.EntryNo
}

// IsRejection reports whether a purchase error is one of the typed
// business rejections (as opposed to a storage fault).
func IsRejection(err error) bool {
	return errors.Is(err, store.ErrAssetNotFound) ||
		errors.Is(err, store.ErrAlreadyOwned) ||
		errors.Is(err, store.ErrInsufficientFunds)
}
