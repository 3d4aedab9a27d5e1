package domain

// TransactionError is the closed set of reasons a transaction can be refused.
// None of them are fatal to a batch.
type TransactionError string

func (e TransactionError) Error() string {
	return string(e)
}

const (
	ErrAccountFrozen          TransactionError = "account is frozen"
	ErrInsufficientFunds      TransactionError = "insufficient funds"
	ErrNonexistentTransaction TransactionError = "transaction does not exist"
	ErrNotSettled             TransactionError = "transaction is not settled"
	ErrNotDisputed            TransactionError = "transaction is not disputed"
)
