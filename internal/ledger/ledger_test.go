package ledger

import (
	"testing"

	"payments_engine/internal/domain"
	"payments_engine/internal/repository/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLedger_ApplyForAccount_CreatesAccount(t *testing.T) {
	l := New()

	err := l.ApplyForAccount(1, domain.Deposit{NewID: 1, Amount: dec("10")})

	require.NoError(t, err)
	acc, ok := l.Account(1)
	require.True(t, ok)
	assert.True(t, acc.Available().Equal(dec("10")))
	assert.True(t, acc.Held().IsZero())
	assert.True(t, acc.Total().Equal(dec("10")))
	assert.False(t, acc.IsFrozen())
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, 1, l.ProcessedLen())
}

func TestLedger_FailedTransactionStillCreatesAccount(t *testing.T) {
	l := New()

	err := l.ApplyForAccount(7, domain.Dispute{ID: 1})

	assert.ErrorIs(t, err, domain.ErrNonexistentTransaction)
	acc, ok := l.Account(7)
	require.True(t, ok)
	assert.True(t, acc.Total().IsZero())
	assert.Equal(t, 0, l.ProcessedLen())
}

func TestLedger_AccountMissing(t *testing.T) {
	l := New()

	_, ok := l.Account(3)

	assert.False(t, ok)
}

func TestLedger_ErrorsAreReturnedUnchanged(t *testing.T) {
	l := New()
	require.NoError(t, l.ApplyForAccount(1, domain.Deposit{NewID: 1, Amount: dec("1")}))

	err := l.ApplyForAccount(1, domain.Withdrawal{NewID: 2, Amount: dec("2")})

	var txErr domain.TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, domain.ErrInsufficientFunds, txErr)
}

func TestLedger_DisputeIsScopedToAccount(t *testing.T) {
	l := New()
	require.NoError(t, l.ApplyForAccount(1, domain.Deposit{NewID: 1, Amount: dec("10")}))

	err := l.ApplyForAccount(2, domain.Dispute{ID: 1})

	assert.ErrorIs(t, err, domain.ErrNonexistentTransaction)
	acc, _ := l.Account(1)
	assert.True(t, acc.Available().Equal(dec("10")))
	assert.True(t, acc.Held().IsZero())
}

func TestLedger_Snapshot(t *testing.T) {
	l := New()
	steps := []struct {
		client domain.AccountID
		tx     domain.Transaction
	}{
		{1, domain.Deposit{NewID: 1, Amount: dec("10")}},
		{1, domain.Withdrawal{NewID: 2, Amount: dec("4")}},
		{1, domain.Dispute{ID: 2}},
		{2, domain.Deposit{NewID: 3, Amount: dec("15")}},
		{2, domain.Withdrawal{NewID: 4, Amount: dec("10")}},
		{2, domain.Dispute{ID: 4}},
		{2, domain.Chargeback{ID: 4}},
	}
	for _, step := range steps {
		require.NoError(t, l.ApplyForAccount(step.client, step.tx))
	}

	snapshot := l.Snapshot()

	require.Len(t, snapshot, 2)
	assert.Equal(t, domain.AccountID(1), snapshot[0].Client)
	assert.Equal(t, "2.0000", snapshot[0].Available.StringFixed(SnapshotPrecision))
	assert.Equal(t, "4.0000", snapshot[0].Held.StringFixed(SnapshotPrecision))
	assert.Equal(t, "6.0000", snapshot[0].Total.StringFixed(SnapshotPrecision))
	assert.False(t, snapshot[0].Locked)

	assert.Equal(t, domain.AccountID(2), snapshot[1].Client)
	assert.Equal(t, "-5.0000", snapshot[1].Available.StringFixed(SnapshotPrecision))
	assert.Equal(t, "0.0000", snapshot[1].Held.StringFixed(SnapshotPrecision))
	assert.Equal(t, "-5.0000", snapshot[1].Total.StringFixed(SnapshotPrecision))
	assert.True(t, snapshot[1].Locked)
}

func TestLedger_SnapshotIsSortedAndRounded(t *testing.T) {
	l := New()
	require.NoError(t, l.ApplyForAccount(300, domain.Deposit{NewID: 1, Amount: dec("1.00005")}))
	require.NoError(t, l.ApplyForAccount(2, domain.Deposit{NewID: 2, Amount: dec("0.12344")}))
	require.NoError(t, l.ApplyForAccount(65535, domain.Deposit{NewID: 3, Amount: dec("3")}))

	snapshot := l.Snapshot()

	require.Len(t, snapshot, 3)
	assert.Equal(t, []domain.AccountID{2, 300, 65535},
		[]domain.AccountID{snapshot[0].Client, snapshot[1].Client, snapshot[2].Client})
	assert.Equal(t, "0.1234", snapshot[0].Available.StringFixed(SnapshotPrecision))
	assert.Equal(t, "1.0001", snapshot[1].Available.StringFixed(SnapshotPrecision))
}

func TestLedger_SnapshotEmpty(t *testing.T) {
	assert.Empty(t, New().Snapshot())
}

func TestLedger_RecordsIntoGivenStore(t *testing.T) {
	store := memory.NewProcessedTransactionStore()
	l := newWithStore(store)

	require.NoError(t, l.ApplyForAccount(2, domain.Deposit{NewID: 8, Amount: dec("3")}))
	require.NoError(t, l.ApplyForAccount(2, domain.Dispute{ID: 8}))

	record, err := store.Get(2, 8)
	require.NoError(t, err)
	assert.Equal(t, domain.StateDisputed, record.State)
	assert.True(t, record.Amount.Equal(dec("3")))
	assert.Equal(t, 1, l.ProcessedLen())
}
