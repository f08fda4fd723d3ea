package state

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	txerrors "tokenledger/core/errors"
	"tokenledger/core/types"
)

func acct(b byte) types.Account {
	var a types.Account
	a[0] = b
	return a
}

func amt(v uint64) types.Amount {
	return types.NewAmount(v)
}

// requireIndexConsistent checks that the ranking index mirrors the primary
// store exactly.
func requireIndexConsistent(t *testing.T, b *BalanceLedger) {
	t.Helper()
	require.Equal(t, len(b.balances), b.ranking.Len())
	b.ranking.Ascend(func(k rankKey) bool {
		stored, ok := b.balances[k.account]
		require.True(t, ok, "ranked account %s missing from store", k.account)
		require.Equal(t, stored, k.amount)
		return true
	})
	for acc, amount := range b.balances {
		require.False(t, amount.IsZero(), "zero balance stored for %s", acc)
	}
}

func TestBalanceOfUnknownIsZero(t *testing.T) {
	b := NewBalanceLedger()
	require.True(t, b.BalanceOf(acct(1)).IsZero())
}

func TestSetBalanceKeepsIndexInSync(t *testing.T) {
	b := NewBalanceLedger()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		who := acct(byte(rng.Intn(40)))
		value := uint64(rng.Intn(6)) * 10
		b.SetBalance(who, amt(value))
		require.Equal(t, amt(value), b.BalanceOf(who))
	}
	requireIndexConsistent(t, b)

	for i := 0; i < 40; i++ {
		b.SetBalance(acct(byte(i)), types.Amount{})
	}
	requireIndexConsistent(t, b)
	require.Equal(t, 0, b.Len())
}

func TestGetHoldersOrdering(t *testing.T) {
	b := NewBalanceLedger()
	b.SetBalance(acct(1), amt(50))
	b.SetBalance(acct(2), amt(75))
	require.Equal(t, []Holder{{acct(2), amt(75)}, {acct(1), amt(50)}}, b.GetHolders(0, 2))

	b.SetBalance(acct(9), amt(50))
	b.SetBalance(acct(5), amt(50))
	b.SetBalance(acct(3), amt(100))
	holders := b.GetHolders(0, 10)
	require.Len(t, holders, 5)
	require.True(t, sort.SliceIsSorted(holders, func(i, j int) bool {
		if c := holders[i].Amount.Cmp(holders[j].Amount); c != 0 {
			return c > 0
		}
		return holders[i].Account.Less(holders[j].Account)
	}))
	require.Equal(t, []types.Account{acct(3), acct(2), acct(1), acct(5), acct(9)}, accountsOf(holders))
}

func TestGetHoldersPagination(t *testing.T) {
	b := NewBalanceLedger()
	for i := 1; i <= 10; i++ {
		b.SetBalance(acct(byte(i)), amt(uint64(i)))
	}
	page := b.GetHolders(3, 4)
	require.Equal(t, []types.Account{acct(7), acct(6), acct(5), acct(4)}, accountsOf(page))

	require.Empty(t, b.GetHolders(10, 5))
	require.Empty(t, b.GetHolders(0, 0))
	require.Len(t, b.GetHolders(-3, 2), 2)
	require.Len(t, b.GetHolders(8, 100), 2)
}

func TestGetHoldersBetween(t *testing.T) {
	b := NewBalanceLedger()
	b.SetBalance(acct(1), amt(10))
	b.SetBalance(acct(2), amt(20))
	b.SetBalance(acct(3), amt(30))
	b.SetBalance(acct(4), amt(20))
	b.SetBalance(acct(5), amt(40))

	inOrder := b.GetHoldersBetween(amt(20), amt(30))
	require.Equal(t, []Holder{{acct(3), amt(30)}, {acct(2), amt(20)}, {acct(4), amt(20)}}, inOrder)
	require.Equal(t, inOrder, b.GetHoldersBetween(amt(30), amt(20)))

	require.Equal(t, []Holder{{acct(1), amt(10)}}, b.GetHoldersBetween(amt(0), amt(15)))
	require.Empty(t, b.GetHoldersBetween(amt(41), amt(1000)))
	require.Len(t, b.GetHoldersBetween(amt(0), amt(1000)), 5)
}

func TestCreditDebit(t *testing.T) {
	b := NewBalanceLedger()
	require.NoError(t, b.Credit(acct(1), amt(30)))
	require.NoError(t, b.Debit(acct(1), amt(10)))
	require.Equal(t, amt(20), b.BalanceOf(acct(1)))

	err := b.Debit(acct(1), amt(21))
	require.ErrorIs(t, err, txerrors.InsufficientFunds(types.Amount{}))
	var txErr *txerrors.TxError
	require.ErrorAs(t, err, &txErr)
	require.Equal(t, amt(20), txErr.Balance)
	require.Equal(t, amt(20), b.BalanceOf(acct(1)))

	require.NoError(t, b.Debit(acct(1), amt(20)))
	require.Equal(t, 0, b.Len())
	requireIndexConsistent(t, b)
}

func TestCreditOverflowLeavesBalance(t *testing.T) {
	b := NewBalanceLedger()
	huge := types.MustParseAmount("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	b.SetBalance(acct(1), huge)
	err := b.Credit(acct(1), amt(1))
	require.ErrorIs(t, err, txerrors.ErrAmountOverflow)
	require.Equal(t, huge, b.BalanceOf(acct(1)))
	requireIndexConsistent(t, b)
}

func accountsOf(holders []Holder) []types.Account {
	out := make([]types.Account, len(holders))
	for i, h := range holders {
		out[i] = h.Account
	}
	return out
}
