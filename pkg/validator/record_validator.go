package validator

import (
	"errors"
	"fmt"
	"strings"

	"payments_engine/internal/csvio"
	"payments_engine/internal/domain"

	govalidator "github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrUnknownType    = errors.New("unknown transaction type")
	ErrMissingAmount  = errors.New("amount is required")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrInvalidRecord  = errors.New("invalid record")
)

type normalizedRecord struct {
	Type string `validate:"required,oneof=deposit withdrawal dispute resolve chargeback"`
}

// RecordValidator turns decoded CSV records into transactions. A record it
// rejects never reaches the ledger. It is not safe for concurrent use.
type RecordValidator struct {
	validate *govalidator.Validate
	lower    cases.Caser
}

func NewRecordValidator() *RecordValidator {
	return &RecordValidator{
		validate: govalidator.New(govalidator.WithRequiredStructEnabled()),
		lower:    cases.Lower(language.Und),
	}
}

// NormalizeType folds a type column value to its snake_case form, so
// "Deposit", "DEPOSIT" and " deposit " all read as "deposit".
func (v *RecordValidator) NormalizeType(raw string) string {
	s := v.lower.String(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.Join(strings.Fields(s), "_")
}

// ToTransaction validates record and builds the transaction it describes.
// The amount is required for deposits and withdrawals and ignored otherwise.
func (v *RecordValidator) ToTransaction(record csvio.Record) (domain.AccountID, domain.Transaction, error) {
	normalized := normalizedRecord{
		Type: v.NormalizeType(record.Type),
	}

	if err := v.validate.Struct(normalized); err != nil {
		var fieldErrs govalidator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Field() == "Type" {
			return 0, nil, fmt.Errorf("%w: %q", ErrUnknownType, record.Type)
		}
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	var tx domain.Transaction
	switch domain.TransactionKind(normalized.Type) {
	case domain.KindDeposit:
		amount, err := requireAmount(record)
		if err != nil {
			return 0, nil, err
		}
		tx = domain.Deposit{NewID: record.Tx, Amount: amount}
	case domain.KindWithdrawal:
		amount, err := requireAmount(record)
		if err != nil {
			return 0, nil, err
		}
		tx = domain.Withdrawal{NewID: record.Tx, Amount: amount}
	case domain.KindDispute:
		tx = domain.Dispute{ID: record.Tx}
	case domain.KindResolve:
		tx = domain.Resolve{ID: record.Tx}
	case domain.KindChargeback:
		tx = domain.Chargeback{ID: record.Tx}
	default:
		return 0, nil, fmt.Errorf("%w: %q", ErrUnknownType, record.Type)
	}

	return record.Client, tx, nil
}

func requireAmount(record csvio.Record) (domain.Amount, error) {
	if record.Amount == nil {
		return domain.ZeroAmount, fmt.Errorf("%w: %s %d", ErrMissingAmount, record.Type, record.Tx)
	}
	if record.Amount.IsNegative() {
		return domain.ZeroAmount, fmt.Errorf("%w: %s %d", ErrNegativeAmount, record.Type, record.Tx)
	}
	return *record.Amount, nil
}
