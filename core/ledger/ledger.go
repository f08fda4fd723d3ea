// Package ledger holds the append-only transaction log that the accounting
// core records balance movements into.
package ledger

import (
	"fmt"

	"tokenledger/core/types"
)

// Operation identifies the kind of balance movement a record describes.
type Operation uint8

const (
	OpMint Operation = iota + 1
	OpBurn
	OpTransfer
	OpTransferFrom
	OpApprove
	OpAuction
)

func (o Operation) String() string {
	switch o {
	case OpMint:
		return "mint"
	case OpBurn:
		return "burn"
	case OpTransfer:
		return "transfer"
	case OpTransferFrom:
		return "transfer_from"
	case OpApprove:
		return "approve"
	case OpAuction:
		return "auction"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Record is an immutable entry in the transaction log. ID equals the
// record's position in the log.
type Record struct {
	ID        uint64
	Op        Operation
	Caller    types.Account
	From      types.Account
	To        types.Account
	Amount    types.Amount
	Fee       types.Amount
	Timestamp types.Timestamp
}

// Ledger is an append-only sequence of records.
type Ledger struct {
	records []Record
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{records: make([]Record, 0)}
}

// FromRecords rebuilds a ledger from previously persisted records. IDs must
// be contiguous from zero.
func FromRecords(records []Record) (*Ledger, error) {
	out := &Ledger{records: make([]Record, len(records))}
	for i, rec := range records {
		if rec.ID != uint64(i) {
			return nil, fmt.Errorf("ledger: record %d carries id %d", i, rec.ID)
		}
		out.records[i] = rec
	}
	return out, nil
}

// Len returns the number of records. It is also the id the next pushed
// record receives.
func (l *Ledger) Len() uint64 {
	if l == nil {
		return 0
	}
	return uint64(len(l.records))
}

// Push appends rec, assigning its ID, and returns the assigned id.
func (l *Ledger) Push(rec Record) uint64 {
	rec.ID = uint64(len(l.records))
	l.records = append(l.records, rec)
	return rec.ID
}

// Get returns the record with the given id.
func (l *Ledger) Get(id uint64) (Record, bool) {
	if l == nil || id >= uint64(len(l.records)) {
		return Record{}, false
	}
	return l.records[id], true
}

// Range returns up to limit records starting at offset, oldest first.
func (l *Ledger) Range(offset, limit int) []Record {
	if l == nil || offset < 0 || limit <= 0 || offset >= len(l.records) {
		return []Record{}
	}
	end := offset + limit
	if end > len(l.records) || end < offset {
		end = len(l.records)
	}
	out := make([]Record, end-offset)
	copy(out, l.records[offset:end])
	return out
}

// Records returns a copy of every record.
func (l *Ledger) Records() []Record {
	if l == nil {
		return []Record{}
	}
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}
