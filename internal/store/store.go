// Package store defines the persistence contracts for the storefront
// core. Two interchangeable implementations exist: gormstore (MySQL,
// production) and memstore (in-process maps, tests and local dev).
// Business logic holds these interfaces only and never branches on
// which backend is active.
//
// Account balance and asset ownership are the only mutable shared
// state in the system. Both are mutated exclusively through the
// atomic primitives below (ApplyDelta, ClaimOwner); no caller may
// read-then-write around them.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"giftshop/internal/model"
)

// Ledger is the unit of truth for spendable funds.
type Ledger interface {
	// GetBalance returns the current balance, zero for an account that
	// does not exist yet. It never fails for a well-formed user id.
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)

	// ApplyDelta atomically adds delta (negative for a debit) to the
	// user's balance and returns the new balance. The account is
	// created lazily when absent. Two concurrent deltas for the same
	// user serialize; the balance never goes negative. A debit below
	// the current balance fails with *InsufficientFundsError and
	// mutates nothing.
	ApplyDelta(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error)

	// GetAccount returns the full account row, creating it with zero
	// balance when absent.
	GetAccount(ctx context.Context, userID string) (*model.Account, error)

	// AddStars credits the secondary point balance.
	AddStars(ctx context.Context, userID string, n int64) (*model.Account, error)

	// ExtendPremium pushes the premium expiry forward by the given
	// number of months, starting from now when already expired.
	ExtendPremium(ctx context.Context, userID string, months int, now time.Time) (*model.Account, error)
}

// Catalog holds the purchasable assets.
type Catalog interface {
	// List returns all assets in stable insertion order.
	List(ctx context.Context) ([]*model.Asset, error)

	// Get fails with ErrAssetNotFound for an unknown id.
	Get(ctx context.Context, assetID int64) (*model.Asset, error)

	// GetByRef looks an asset up by its external reference, the
	// ingestion dedup key. Fails with ErrAssetNotFound when absent.
	GetByRef(ctx context.Context, externalRef string) (*model.Asset, error)

	// Insert stores a new unowned asset. A duplicate ExternalRef fails
	// with ErrDuplicateAsset; a duplicate AssetID likewise.
	Insert(ctx context.Context, asset *model.Asset) error

	// ClaimOwner is a compare-and-set: it assigns ownership only when
	// owner is currently unset. Fails with ErrAlreadyOwned when the
	// asset is taken and ErrAssetNotFound when it does not exist. Two
	// concurrent claims on the same asset never both succeed.
	ClaimOwner(ctx context.Context, assetID int64, userID string) error

	// ReleaseOwner undoes a claim held by userID. It exists solely so
	// the purchase coordinator can roll back a claim whose debit
	// failed; releasing a claim held by someone else is an
	// ErrInvariantViolation.
	ReleaseOwner(ctx context.Context, assetID int64, userID string) error
}

// Journal is the append-only audit trail of balance movements.
type Journal interface {
	Append(ctx context.Context, entry *model.LedgerEntry) error
	GetByEntryNo(ctx context.Context, entryNo string) (*model.LedgerEntry, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*model.LedgerEntry, int64, error)
}

// Outbox buffers domain events until the background sender ships them.
type Outbox interface {
	Enqueue(ctx context.Context, msg *model.OutboxMessage) error
	Pending(ctx context.Context, limit int) ([]*model.OutboxMessage, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64) error
	IncrementRetry(ctx context.Context, id int64) error
}

// Store bundles the four contracts so wiring code can hand a single
// object to the services.
type Store interface {
	Ledger() Ledger
	Catalog() Catalog
	Journal() Journal
	Outbox() Outbox
}
