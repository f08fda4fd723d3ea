package state

import (
	"sort"

	"tokenledger/core/types"
)

// Approval is a single spender allowance granted by an owner.
type Approval struct {
	Spender types.Account
	Amount  types.Amount
}

// AllowanceEntry is a fully qualified allowance used when exporting the
// table.
type AllowanceEntry struct {
	Owner   types.Account
	Spender types.Account
	Amount  types.Amount
}

// AllowanceTable tracks owner -> spender -> amount approvals. Zero
// approvals are not stored.
type AllowanceTable struct {
	entries map[types.Account]map[types.Account]types.Amount
}

func NewAllowanceTable() *AllowanceTable {
	return &AllowanceTable{entries: make(map[types.Account]map[types.Account]types.Amount)}
}

// Approve sets the allowance of spender over owner's balance to amount,
// replacing any previous value. A zero amount revokes the approval.
func (t *AllowanceTable) Approve(owner, spender types.Account, amount types.Amount) {
	inner, ok := t.entries[owner]
	if amount.IsZero() {
		if !ok {
			return
		}
		delete(inner, spender)
		if len(inner) == 0 {
			delete(t.entries, owner)
		}
		return
	}
	if !ok {
		inner = make(map[types.Account]types.Amount)
		t.entries[owner] = inner
	}
	inner[spender] = amount
}

// Allowance returns the amount spender may move on behalf of owner.
func (t *AllowanceTable) Allowance(owner, spender types.Account) types.Amount {
	inner, ok := t.entries[owner]
	if !ok {
		return types.Amount{}
	}
	return inner[spender]
}

// UserApprovals returns every active approval granted by owner, ordered by
// spender.
func (t *AllowanceTable) UserApprovals(owner types.Account) []Approval {
	inner := t.entries[owner]
	out := make([]Approval, 0, len(inner))
	for spender, amount := range inner {
		out = append(out, Approval{Spender: spender, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Spender.Less(out[j].Spender) })
	return out
}

// AllowanceSize counts the active (owner, spender) pairs. The count is
// computed on every call.
func (t *AllowanceTable) AllowanceSize() int {
	total := 0
	for _, inner := range t.entries {
		total += len(inner)
	}
	return total
}

// Entries returns every approval ordered by owner, then spender.
func (t *AllowanceTable) Entries() []AllowanceEntry {
	out := make([]AllowanceEntry, 0, t.AllowanceSize())
	for owner, inner := range t.entries {
		for spender, amount := range inner {
			out = append(out, AllowanceEntry{Owner: owner, Spender: spender, Amount: amount})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Owner.Compare(out[j].Owner); c != 0 {
			return c < 0
		}
		return out[i].Spender.Less(out[j].Spender)
	})
	return out
}
