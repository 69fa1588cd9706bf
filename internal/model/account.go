package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds everything a user can spend: the coin balance used to
// buy catalog assets, plus the secondary fields credited by external
// payment settlement (stars and premium expiry).
//
// One row per user id, created lazily on first credit or first balance
// lookup. Rows are never deleted. Balance must stay >= 0 at all times;
// every mutation goes through the ledger store's conditional update,
// never through a read-modify-write in caller code.
type Account struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"user_id"`
	Balance      decimal.Decimal `gorm:"type:decimal(36,18);not null;default:0" json:"balance"`
	Stars        int64           `gorm:"not null;default:0" json:"stars"`
	PremiumUntil *time.Time      `json:"premium_until,omitempty"`
	Version      int             `gorm:"not null;default:0" json:"version"` // optimistic lock counter
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "account"
}
