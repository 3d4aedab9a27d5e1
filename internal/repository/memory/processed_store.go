package memory

import (
	"fmt"
	"payments_engine/internal/domain"
	"payments_engine/internal/repository"
)

type recordKey struct {
	account domain.AccountID
	tx      domain.TransactionID
}

// ProcessedTransactionStore keeps the records of all accounts in one flat map.
// It is not safe for concurrent use; each ledger owns its own store.
type ProcessedTransactionStore struct {
	records map[recordKey]*domain.ProcessedTransaction
}

func NewProcessedTransactionStore() *ProcessedTransactionStore {
	return &ProcessedTransactionStore{
		records: make(map[recordKey]*domain.ProcessedTransaction),
	}
}

// ForAccount returns a view that can only see and write records of account.
func (s *ProcessedTransactionStore) ForAccount(account domain.AccountID) domain.TransactionHistory {
	return &AccountView{store: s, account: account}
}

// Get returns a copy of a record.
func (s *ProcessedTransactionStore) Get(account domain.AccountID, id domain.TransactionID) (domain.ProcessedTransaction, error) {
	record, exists := s.records[recordKey{account: account, tx: id}]
	if !exists {
		return domain.ProcessedTransaction{}, fmt.Errorf("%w: transaction %d for account %d", repository.ErrNotFound, id, account)
	}
	return *record, nil
}

func (s *ProcessedTransactionStore) Len() int {
	return len(s.records)
}

// AccountView is a ProcessedTransactionStore restricted to one account.
type AccountView struct {
	store   *ProcessedTransactionStore
	account domain.AccountID
}

// Find returns the record for id if it belongs to the bound account. The
// returned pointer aliases the stored record.
func (v *AccountView) Find(id domain.TransactionID) (*domain.ProcessedTransaction, bool) {
	record, exists := v.store.records[recordKey{account: v.account, tx: id}]
	return record, exists
}

// Insert stores record under the bound account, replacing any previous record
// with the same id.
func (v *AccountView) Insert(id domain.TransactionID, record domain.ProcessedTransaction) {
	v.store.records[recordKey{account: v.account, tx: id}] = &record
}
