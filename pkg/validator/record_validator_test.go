package validator

import (
	"testing"

	"payments_engine/internal/csvio"
	"payments_engine/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amountPtr(s string) *domain.Amount {
	a := decimal.RequireFromString(s)
	return &a
}

func TestRecordValidator_ToTransaction(t *testing.T) {
	tests := []struct {
		name     string
		record   csvio.Record
		client   domain.AccountID
		expected domain.Transaction
		err      error
	}{
		{
			name:     "withdrawal",
			record:   csvio.Record{Type: "withdrawal", Client: 1, Tx: 2, Amount: amountPtr("10")},
			client:   1,
			expected: domain.Withdrawal{NewID: 2, Amount: decimal.NewFromInt(10)},
		},
		{
			name:   "withdrawal without amount",
			record: csvio.Record{Type: "withdrawal", Client: 16, Tx: 32},
			err:    ErrMissingAmount,
		},
		{
			name:     "deposit",
			record:   csvio.Record{Type: "deposit", Client: 5, Tx: 4, Amount: amountPtr("90")},
			client:   5,
			expected: domain.Deposit{NewID: 4, Amount: decimal.NewFromInt(90)},
		},
		{
			name:   "deposit without amount",
			record: csvio.Record{Type: "deposit", Client: 7, Tx: 6},
			err:    ErrMissingAmount,
		},
		{
			name:   "negative deposit",
			record: csvio.Record{Type: "deposit", Client: 7, Tx: 6, Amount: amountPtr("-1")},
			err:    ErrNegativeAmount,
		},
		{
			name:     "dispute",
			record:   csvio.Record{Type: "dispute", Client: 7, Tx: 6},
			client:   7,
			expected: domain.Dispute{ID: 6},
		},
		{
			name:     "dispute ignores amount",
			record:   csvio.Record{Type: "dispute", Client: 7, Tx: 6, Amount: amountPtr("10")},
			client:   7,
			expected: domain.Dispute{ID: 6},
		},
		{
			name:     "resolve",
			record:   csvio.Record{Type: "resolve", Client: 5, Tx: 2},
			client:   5,
			expected: domain.Resolve{ID: 2},
		},
		{
			name:     "resolve ignores amount",
			record:   csvio.Record{Type: "resolve", Client: 2, Tx: 5, Amount: amountPtr("10")},
			client:   2,
			expected: domain.Resolve{ID: 5},
		},
		{
			name:     "chargeback",
			record:   csvio.Record{Type: "chargeback", Client: 5, Tx: 2},
			client:   5,
			expected: domain.Chargeback{ID: 2},
		},
		{
			name:     "type is case insensitive",
			record:   csvio.Record{Type: "ChargeBack", Client: 2, Tx: 5},
			client:   2,
			expected: domain.Chargeback{ID: 5},
		},
		{
			name:   "unknown type",
			record: csvio.Record{Type: "foo", Client: 1, Tx: 2, Amount: amountPtr("10")},
			err:    ErrUnknownType,
		},
		{
			name:   "abbreviated type",
			record: csvio.Record{Type: "withdraw", Client: 1, Tx: 3},
			err:    ErrUnknownType,
		},
		{
			name:   "empty type",
			record: csvio.Record{Type: "", Client: 1, Tx: 3},
			err:    ErrUnknownType,
		},
	}

	v := NewRecordValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, tx, err := v.ToTransaction(tt.record)

			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Nil(t, tx)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.client, client)
			assert.Equal(t, tt.expected.Kind(), tx.Kind())
			switch expected := tt.expected.(type) {
			case domain.Deposit:
				got := tx.(domain.Deposit)
				assert.Equal(t, expected.NewID, got.NewID)
				assert.True(t, expected.Amount.Equal(got.Amount))
			case domain.Withdrawal:
				got := tx.(domain.Withdrawal)
				assert.Equal(t, expected.NewID, got.NewID)
				assert.True(t, expected.Amount.Equal(got.Amount))
			default:
				assert.Equal(t, tt.expected, tx)
			}
		})
	}
}

func TestRecordValidator_NormalizeType(t *testing.T) {
	v := NewRecordValidator()

	assert.Equal(t, "deposit", v.NormalizeType("  DEPOSIT "))
	assert.Equal(t, "withdrawal", v.NormalizeType("Withdrawal"))
	assert.Equal(t, "charge_back", v.NormalizeType("Charge Back"))
	assert.Equal(t, "charge_back", v.NormalizeType("charge-back"))
}
