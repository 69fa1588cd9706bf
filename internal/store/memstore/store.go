// Package memstore is the in-process realization of the store
// contracts, used by the test suite and the memory storage driver.
// Semantics match gormstore exactly; only the synchronization
// mechanism differs (short-lived mutexes instead of conditional
// UPDATEs).
package memstore

import (
	"giftshop/internal/store"
)

type MemStore struct {
	ledger  *LedgerStore
	catalog *CatalogStore
	journal *JournalStore
	outbox  *OutboxStore
}

func New() *MemStore {
	return &MemStore{
		ledger:  NewLedgerStore(),
		catalog: NewCatalogStore(),
		journal: NewJournalStore(),
		outbox:  NewOutboxStore(),
	}
}

func (s *MemStore) Ledger() store.Ledger   { return s.ledger }
func (s *MemStore) Catalog() store.Catalog { return s.catalog }
func (s *MemStore) Journal() store.Journal { return s.journal }
func (s *MemStore) Outbox() store.Outbox   { return s.outbox }
