package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is a uniquely ownable catalog item.
//
// OwnerID is a write-once field: it starts NULL and transitions to a
// single user id exactly once, via the catalog store's compare-and-set.
// No operation may change or clear it afterwards (the purchase
// coordinator's rollback is the one exception, and it only undoes a
// claim that was never observed as committed).
//
// ExternalRef is the ingestion dedup key: redelivery of the same
// external event must not mint a second purchasable asset.
type Asset struct {
	AssetID      int64           `gorm:"primaryKey" json:"asset_id"`
	ExternalRef  string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"external_ref"`
	DisplayName  string          `gorm:"type:varchar(128);not null" json:"display_name"`
	SerialNumber string          `gorm:"type:varchar(64);not null" json:"serial_number"`
	Price        decimal.Decimal `gorm:"type:decimal(36,18);not null" json:"price"`
	ExternalLink string          `gorm:"type:varchar(256)" json:"external_link"`
	ImageURL     string          `gorm:"type:varchar(256)" json:"image_url"`
	OwnerID      *string         `gorm:"type:varchar(64);index" json:"owner_id,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Asset) TableName() string {
	return "asset"
}

// Owned reports whether the asset has already been claimed.
func (a *Asset) Owned() bool {
	return a.OwnerID != nil && *a.OwnerID != ""
}

// AssetDraft is what catalog ingestion delivers: the external feed's
// reference plus display fields. Price may be zero, in which case the
// configured default applies.
type AssetDraft struct {
	ExternalRef  string          `json:"external_ref" binding:"required"`
	DisplayName  string          `json:"display_name" binding:"required"`
	SerialNumber string          `json:"serial_number"`
	Price        decimal.Decimal `json:"price"`
	ExternalLink string          `json:"external_link"`
	ImageURL     string          `json:"image_url"`
}
