package memory

import (
	"payments_engine/internal/domain"
	"payments_engine/internal/repository"
)

var (
	_ repository.ProcessedTransactionStore = (*ProcessedTransactionStore)(nil)
	_ domain.TransactionHistory            = (*AccountView)(nil)
)
