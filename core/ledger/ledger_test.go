package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tokenledger/core/types"
)

func TestLedgerPushAssignsSequentialIDs(t *testing.T) {
	l := New()
	first := l.Push(Record{Op: OpMint, To: types.Account{1}, Amount: types.NewAmount(10)})
	second := l.Push(Record{ID: 99, Op: OpTransfer, From: types.Account{1}, To: types.Account{2}, Amount: types.NewAmount(4)})
	require.Equal(t, uint64(0), first)
	require.Equal(t, uint64(1), second)
	require.Equal(t, uint64(2), l.Len())

	rec, ok := l.Get(1)
	require.True(t, ok)
	require.Equal(t, uint64(1), rec.ID)
	require.Equal(t, OpTransfer, rec.Op)

	_, ok = l.Get(2)
	require.False(t, ok)
}

func TestLedgerRange(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		l.Push(Record{Op: OpMint, Amount: types.NewAmount(uint64(i))})
	}
	page := l.Range(1, 2)
	require.Len(t, page, 2)
	require.Equal(t, uint64(1), page[0].ID)
	require.Equal(t, uint64(2), page[1].ID)

	require.Len(t, l.Range(4, 10), 1)
	require.Empty(t, l.Range(5, 1))
	require.Empty(t, l.Range(0, 0))
}

func TestFromRecordsRejectsGaps(t *testing.T) {
	_, err := FromRecords([]Record{{ID: 0}, {ID: 2}})
	require.Error(t, err)

	l, err := FromRecords([]Record{{ID: 0}, {ID: 1}})
	require.NoError(t, err)
	require.Equal(t, uint64(2), l.Len())
}
