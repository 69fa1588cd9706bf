package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EntryKindPurchase = "PURCHASE" // coin debit against an asset claim
	EntryKindCredit   = "CREDIT"   // privileged coin grant
	EntryKindPoints   = "POINTS"   // external settlement, stars
	EntryKindPremium  = "PREMIUM"  // external settlement, premium months
)

// LedgerEntry is one row of the append-only journal.
//
// Journal rules:
//  1. append only, never update or delete, so audits stay trustworthy
//  2. every purchase debit references the claimed asset
//  3. balance before/after is recorded so the accounting identity
//     (sum of debits == sum of prices of owned assets) can be checked offline
type LedgerEntry struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	EntryNo       string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"entry_no"`
	UserID        string          `gorm:"type:varchar(64);index;not null" json:"user_id"`
	AssetID       int64           `gorm:"index" json:"asset_id,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(36,18);not null" json:"amount"` // positive credit, negative debit
	Kind          string          `gorm:"type:varchar(20);not null" json:"kind"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(36,18);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(36,18);not null" json:"balance_after"`
	Remark        string          `gorm:"type:varchar(256)" json:"remark"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entry"
}
