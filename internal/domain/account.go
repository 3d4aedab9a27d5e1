package domain

import (
	"fmt"
)

// Account holds one client's balances. The zero value is a fresh, unfrozen
// account with nothing available or held.
type Account struct {
	available Amount
	held      Amount
	// frozen is set by a chargeback and never cleared.
	frozen bool
}

func NewAccount() *Account {
	return &Account{
		available: ZeroAmount,
		held:      ZeroAmount,
	}
}

func (a *Account) Available() Amount {
	return a.available
}

func (a *Account) Held() Amount {
	return a.held
}

func (a *Account) Total() Amount {
	return a.available.Add(a.held)
}

func (a *Account) IsFrozen() bool {
	return a.frozen
}

// TryApplyTransaction applies tx against the account and its history. Every
// guard runs before any mutation, so on error neither the balances nor the
// history have changed.
//
// Deposit and Withdrawal ids are assumed unique; reusing one overwrites the
// earlier record.
func (a *Account) TryApplyTransaction(history TransactionHistory, tx Transaction) error {
	switch tx := tx.(type) {
	case Deposit:
		if a.frozen {
			return fmt.Errorf("%w: deposit %d", ErrAccountFrozen, tx.NewID)
		}

		history.Insert(tx.NewID, ProcessedTransaction{Amount: tx.Amount, State: StateSettled})
		a.available = a.available.Add(tx.Amount)

	case Withdrawal:
		if a.frozen {
			return fmt.Errorf("%w: withdrawal %d", ErrAccountFrozen, tx.NewID)
		}
		if a.available.LessThan(tx.Amount) {
			return fmt.Errorf("%w: withdrawal %d of %s, available %s",
				ErrInsufficientFunds, tx.NewID, tx.Amount, a.available)
		}

		history.Insert(tx.NewID, ProcessedTransaction{Amount: tx.Amount, State: StateSettled})
		a.available = a.available.Sub(tx.Amount)

	// Disputes, resolves and chargebacks are evaluated on frozen accounts too.
	case Dispute:
		record, err := lookup(history, tx.ID)
		if err != nil {
			return err
		}
		if record.State != StateSettled {
			return fmt.Errorf("%w: dispute %d is %s", ErrNotSettled, tx.ID, record.State)
		}

		record.State = StateDisputed
		a.available = a.available.Sub(record.Amount)
		a.held = a.held.Add(record.Amount)

	case Resolve:
		record, err := lookup(history, tx.ID)
		if err != nil {
			return err
		}
		if record.State != StateDisputed {
			return fmt.Errorf("%w: resolve %d is %s", ErrNotDisputed, tx.ID, record.State)
		}

		record.State = StateSettled
		a.held = a.held.Sub(record.Amount)
		a.available = a.available.Add(record.Amount)

	case Chargeback:
		record, err := lookup(history, tx.ID)
		if err != nil {
			return err
		}
		if record.State != StateDisputed {
			return fmt.Errorf("%w: chargeback %d is %s", ErrNotDisputed, tx.ID, record.State)
		}

		record.State = StateChargeBacked
		a.held = a.held.Sub(record.Amount)
		a.frozen = true

	default:
		return fmt.Errorf("unknown transaction type %T", tx)
	}

	return nil
}

func lookup(history TransactionHistory, id TransactionID) (*ProcessedTransaction, error) {
	record, ok := history.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNonexistentTransaction, id)
	}
	return record, nil
}
