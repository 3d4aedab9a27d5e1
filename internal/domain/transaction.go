package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type AccountID uint16
type TransactionID uint32

// Amount is an exact decimal quantity. Balances derived from amounts may go
// negative, the amounts carried by deposits and withdrawals never do.
type Amount = decimal.Decimal

// ZeroAmount is the starting value of every balance.
var ZeroAmount = decimal.Zero

// MaxAmountScale is the largest number of fractional digits an amount may
// carry.
const MaxAmountScale = 28

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses a plain decimal string such as "1.5" or "10.0000".
// Exponent notation and more than MaxAmountScale fractional digits are
// rejected.
func ParseAmount(s string) (Amount, error) {
	if strings.ContainsAny(s, "eE") {
		return ZeroAmount, fmt.Errorf("%w %q: exponent notation", ErrInvalidAmount, s)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroAmount, fmt.Errorf("%w %q: %w", ErrInvalidAmount, s, err)
	}
	if amount.Exponent() < -MaxAmountScale {
		return ZeroAmount, fmt.Errorf("%w %q: more than %d fractional digits", ErrInvalidAmount, s, MaxAmountScale)
	}
	return amount, nil
}

// Transaction is one of Deposit, Withdrawal, Dispute, Resolve or Chargeback.
// The set is closed: only types in this package implement it.
type Transaction interface {
	Kind() TransactionKind
	isTransaction()
}

type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindDispute    TransactionKind = "dispute"
	KindResolve    TransactionKind = "resolve"
	KindChargeback TransactionKind = "chargeback"
)

type Deposit struct {
	NewID  TransactionID
	Amount Amount
}

type Withdrawal struct {
	NewID  TransactionID
	Amount Amount
}

// Dispute, Resolve and Chargeback reference a previously applied deposit or
// withdrawal of the same account.
type Dispute struct {
	ID TransactionID
}

type Resolve struct {
	ID TransactionID
}

type Chargeback struct {
	ID TransactionID
}

func (Deposit) Kind() TransactionKind    { return KindDeposit }
func (Withdrawal) Kind() TransactionKind { return KindWithdrawal }
func (Dispute) Kind() TransactionKind    { return KindDispute }
func (Resolve) Kind() TransactionKind    { return KindResolve }
func (Chargeback) Kind() TransactionKind { return KindChargeback }

func (Deposit) isTransaction()    {}
func (Withdrawal) isTransaction() {}
func (Dispute) isTransaction()    {}
func (Resolve) isTransaction()    {}
func (Chargeback) isTransaction() {}

// ProcessedState is the lifecycle state of an applied deposit or withdrawal.
//
//	Settled -> Disputed       (dispute)
//	Disputed -> Settled       (resolve)
//	Disputed -> ChargeBacked  (chargeback, terminal)
type ProcessedState string

const (
	StateSettled      ProcessedState = "settled"
	StateDisputed     ProcessedState = "disputed"
	StateChargeBacked ProcessedState = "charge_backed"
)

type ProcessedTransaction struct {
	Amount Amount
	State  ProcessedState
}

// TransactionHistory is the view of processed transactions an account is
// allowed to see: lookups and inserts only ever touch its own records.
type TransactionHistory interface {
	Find(id TransactionID) (*ProcessedTransaction, bool)
	Insert(id TransactionID, record ProcessedTransaction)
}
