package repository

import (
	"errors"
	"payments_engine/internal/domain"
)

// ProcessedTransactionStore holds every applied deposit and withdrawal of a
// ledger. Account logic never reads it directly; it gets a view bound to a
// single account.
type ProcessedTransactionStore interface {
	ForAccount(account domain.AccountID) domain.TransactionHistory
	Get(account domain.AccountID, id domain.TransactionID) (domain.ProcessedTransaction, error)
	Len() int
}

var (
	ErrNotFound = errors.New("not found")
)
