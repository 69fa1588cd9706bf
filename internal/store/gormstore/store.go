// Package gormstore is the MySQL realization of the store contracts.
// Atomicity comes from conditional UPDATEs (the WHERE clause carries
// the predicate, RowsAffected tells whether it held) rather than from
// locks held in application code.
package gormstore

import (
	"gorm.io/gorm"

	"giftshop/internal/store"
)

type GormStore struct {
	ledger  *LedgerStore
	catalog *CatalogStore
	journal *JournalStore
	outbox  *OutboxStore
}

func New(db *gorm.DB) *GormStore {
	return &GormStore{
		ledger:  NewLedgerStore(db),
		catalog: NewCatalogStore(db),
		journal: NewJournalStore(db),
		outbox:  NewOutboxStore(db),
	}
}

func (s *GormStore) Ledger() store.Ledger   { return s.ledger }
func (s *GormStore) Catalog() store.Catalog { return s.catalog }
func (s *GormStore) Journal() store.Journal { return s.journal }
func (s *GormStore) Outbox() store.Outbox   { return s.outbox }
