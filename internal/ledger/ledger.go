// Package ledger owns the accounts of a run and the history of every applied
// transaction, and produces the final per-account snapshot.
package ledger

import (
	"slices"

	"payments_engine/internal/domain"
	"payments_engine/internal/repository"
	"payments_engine/internal/repository/memory"
)

// SnapshotPrecision is the number of fractional digits of snapshot amounts.
const SnapshotPrecision = 4

// AccountSnapshot is the reported state of one account.
type AccountSnapshot struct {
	Client    domain.AccountID
	Available domain.Amount
	Held      domain.Amount
	Total     domain.Amount
	Locked    bool
}

// Ledger applies transactions to accounts, creating each account on first
// reference. It is not safe for concurrent use; see Sharded.
type Ledger struct {
	accounts  map[domain.AccountID]*domain.Account
	processed repository.ProcessedTransactionStore
}

func New() *Ledger {
	return newWithStore(memory.NewProcessedTransactionStore())
}

func newWithStore(processed repository.ProcessedTransactionStore) *Ledger {
	return &Ledger{
		accounts:  make(map[domain.AccountID]*domain.Account),
		processed: processed,
	}
}

// ApplyForAccount applies tx to the account with the given id. The error, if
// any, comes unchanged from the account and the ledger is left as it was.
func (l *Ledger) ApplyForAccount(id domain.AccountID, tx domain.Transaction) error {
	account, exists := l.accounts[id]
	if !exists {
		account = domain.NewAccount()
		l.accounts[id] = account
	}

	return account.TryApplyTransaction(l.processed.ForAccount(id), tx)
}

// Account returns a copy of the account state.
func (l *Ledger) Account(id domain.AccountID) (domain.Account, bool) {
	account, exists := l.accounts[id]
	if !exists {
		return domain.Account{}, false
	}
	return *account, true
}

func (l *Ledger) Len() int {
	return len(l.accounts)
}

func (l *Ledger) ProcessedLen() int {
	return l.processed.Len()
}

// Snapshot reports every account in ascending id order with amounts rounded
// to SnapshotPrecision digits.
func (l *Ledger) Snapshot() []AccountSnapshot {
	result := make([]AccountSnapshot, 0, len(l.accounts))
	for id, account := range l.accounts {
		result = append(result, snapshotOf(id, account))
	}

	sortSnapshots(result)
	return result
}

func snapshotOf(id domain.AccountID, account *domain.Account) AccountSnapshot {
	return AccountSnapshot{
		Client:    id,
		Available: account.Available().Round(SnapshotPrecision),
		Held:      account.Held().Round(SnapshotPrecision),
		Total:     account.Total().Round(SnapshotPrecision),
		Locked:    account.IsFrozen(),
	}
}

func sortSnapshots(snapshots []AccountSnapshot) {
	slices.SortFunc(snapshots, func(a, b AccountSnapshot) int {
		return int(a.Client) - int(b.Client)
	})
}
