package state

import (
	"sort"

	"github.com/google/btree"

	txerrors "tokenledger/core/errors"
	"tokenledger/core/types"
)

const rankingDegree = 32

// Holder pairs an account with its balance.
type Holder struct {
	Account types.Account
	Amount  types.Amount
}

type rankKey struct {
	amount  types.Amount
	account types.Account
}

// rankLess orders by descending amount, then ascending account, so that an
// in-order walk yields the holder ranking directly.
func rankLess(a, b rankKey) bool {
	if c := a.amount.Cmp(b.amount); c != 0 {
		return c > 0
	}
	return a.account.Less(b.account)
}

// BalanceLedger stores account balances together with a ranking index used
// for top-holder and range queries. Both structures are only ever mutated
// through SetBalance.
type BalanceLedger struct {
	balances map[types.Account]types.Amount
	ranking  *btree.BTreeG[rankKey]
}

// NewBalanceLedger returns an empty ledger.
func NewBalanceLedger() *BalanceLedger {
	return &BalanceLedger{
		balances: make(map[types.Account]types.Amount),
		ranking:  btree.NewG[rankKey](rankingDegree, rankLess),
	}
}

// BalanceOf returns the balance of who, zero when the account is unknown.
func (b *BalanceLedger) BalanceOf(who types.Account) types.Amount {
	return b.balances[who]
}

// SetBalance replaces the balance of who. A zero amount removes the account
// from both the primary store and the ranking index.
func (b *BalanceLedger) SetBalance(who types.Account, amount types.Amount) {
	if old, ok := b.balances[who]; ok {
		b.ranking.Delete(rankKey{amount: old, account: who})
	}
	if amount.IsZero() {
		delete(b.balances, who)
		return
	}
	b.balances[who] = amount
	b.ranking.ReplaceOrInsert(rankKey{amount: amount, account: who})
}

// Credit adds amount to the balance of who.
func (b *BalanceLedger) Credit(who types.Account, amount types.Amount) error {
	next, err := b.BalanceOf(who).Add(amount)
	if err != nil {
		return txerrors.AmountOverflow()
	}
	b.SetBalance(who, next)
	return nil
}

// Debit subtracts amount from the balance of who. The balance is left
// untouched when it does not cover amount.
func (b *BalanceLedger) Debit(who types.Account, amount types.Amount) error {
	current := b.BalanceOf(who)
	next, err := current.Sub(amount)
	if err != nil {
		return txerrors.InsufficientFunds(current)
	}
	b.SetBalance(who, next)
	return nil
}

// Len returns the number of accounts holding a non-zero balance.
func (b *BalanceLedger) Len() int {
	return b.ranking.Len()
}

// GetHolders returns up to limit holders ranked by descending balance,
// skipping the first offset entries.
func (b *BalanceLedger) GetHolders(offset, limit int) []Holder {
	holders := make([]Holder, 0)
	if limit <= 0 {
		return holders
	}
	if offset < 0 {
		offset = 0
	}
	index := 0
	b.ranking.Ascend(func(k rankKey) bool {
		if index >= offset {
			holders = append(holders, Holder{Account: k.account, Amount: k.amount})
		}
		index++
		return len(holders) < limit
	})
	return holders
}

// GetHoldersBetween returns every holder whose balance lies in the closed
// range spanned by x and y, in ranking order. The bounds may be given in
// either order.
func (b *BalanceLedger) GetHoldersBetween(x, y types.Amount) []Holder {
	lo := types.MinAmount(x, y)
	hi := types.MaxAmount(x, y)
	holders := make([]Holder, 0)
	b.ranking.AscendGreaterOrEqual(rankKey{amount: hi}, func(k rankKey) bool {
		if k.amount.Cmp(lo) < 0 {
			return false
		}
		holders = append(holders, Holder{Account: k.account, Amount: k.amount})
		return true
	})
	return holders
}

// Entries returns every non-zero balance ordered by account.
func (b *BalanceLedger) Entries() []Holder {
	out := make([]Holder, 0, len(b.balances))
	for acc, amount := range b.balances {
		out = append(out, Holder{Account: acc, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Account.Less(out[j].Account) })
	return out
}
