package state

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"lukechampine.com/blake3"

	txerrors "tokenledger/core/errors"
	"tokenledger/core/types"
)

var (
	ErrAuctionNotDue        = errors.New("auction: not due")
	ErrNoBids               = errors.New("auction: no bids")
	ErrInvalidAuctionPeriod = errors.New("auction: period must not be negative")
	ErrInvalidFeeRatio      = errors.New("auction: fee ratio must be within [0, 1]")
)

// AuctionAccount is the reserved account accumulating the fee share that is
// distributed to bidders when an auction settles.
var AuctionAccount = deriveAccount("tokenledger/auction")

func deriveAccount(label string) types.Account {
	sum := blake3.Sum256([]byte(label))
	var acc types.Account
	copy(acc[:], sum[:types.AccountLength])
	return acc
}

// Bid is an outstanding pledge toward the current auction cycle.
type Bid struct {
	Bidder types.Account
	Amount uint64
}

// BiddingState is the mutable state of the current auction cycle.
type BiddingState struct {
	FeeRatio           float64
	LastAuction        types.Timestamp
	AuctionPeriod      time.Duration
	CyclesSinceAuction uint64
	Bids               map[types.Account]uint64
}

// NextAuction returns the earliest time at which the next auction may run.
// The second result is false when the threshold does not fit a Timestamp.
func (b *BiddingState) NextAuction() (types.Timestamp, bool) {
	return b.LastAuction.Add(b.AuctionPeriod)
}

// IsAuctionDue reports whether now has reached the next auction threshold.
func (b *BiddingState) IsAuctionDue(now types.Timestamp) bool {
	next, ok := b.NextAuction()
	return ok && now >= next
}

// AuctionInfo is the immutable record of a completed auction. Ledger records
// emitted by the settlement occupy ids in [FirstTransactionID,
// EndTransactionID).
type AuctionInfo struct {
	AuctionID          uint64
	AuctionTime        types.Timestamp
	TokensDistributed  types.Amount
	CyclesCollected    uint64
	FeeRatio           float64
	FirstTransactionID uint64
	EndTransactionID   uint64
}

// AuctionHistory is the append-only list of completed auctions.
type AuctionHistory struct {
	records []AuctionInfo
}

func (h *AuctionHistory) append(info AuctionInfo) {
	h.records = append(h.records, info)
}

func (h *AuctionHistory) Len() int {
	return len(h.records)
}

// Get returns the auction with the given id.
func (h *AuctionHistory) Get(id uint64) (AuctionInfo, bool) {
	if id >= uint64(len(h.records)) {
		return AuctionInfo{}, false
	}
	return h.records[id], true
}

// Last returns the most recently completed auction.
func (h *AuctionHistory) Last() (AuctionInfo, bool) {
	if len(h.records) == 0 {
		return AuctionInfo{}, false
	}
	return h.records[len(h.records)-1], true
}

// Range returns up to limit auctions starting at offset, oldest first.
func (h *AuctionHistory) Range(offset, limit int) []AuctionInfo {
	if offset < 0 || limit <= 0 || offset >= len(h.records) {
		return []AuctionInfo{}
	}
	end := offset + limit
	if end > len(h.records) || end < offset {
		end = len(h.records)
	}
	out := make([]AuctionInfo, end-offset)
	copy(out, h.records[offset:end])
	return out
}

// AuctionParams configures a fresh auction engine.
type AuctionParams struct {
	Period          time.Duration
	MinCycles       uint64
	InitialFeeRatio float64
	StartTime       types.Timestamp
}

// Validate checks the parameter ranges.
func (p AuctionParams) Validate() error {
	if p.Period < 0 {
		return ErrInvalidAuctionPeriod
	}
	if !validFeeRatio(p.InitialFeeRatio) {
		return fmt.Errorf("%w: %v", ErrInvalidFeeRatio, p.InitialFeeRatio)
	}
	return nil
}

func validFeeRatio(r float64) bool {
	return !math.IsNaN(r) && r >= 0 && r <= 1
}

// settlement is the frozen view of a due auction cycle.
type settlement struct {
	Time        types.Timestamp
	Bids        []Bid
	TotalCycles uint64
}

// AuctionEngine drives the periodic fee auction: it accumulates bids and
// tells whether an auction is due. Settlement happens only through
// State.RunAuction.
type AuctionEngine struct {
	bidding   BiddingState
	history   AuctionHistory
	minCycles uint64
}

// NewAuctionEngine builds an engine in the idle state. Invalid parameters
// are rejected by Options.Validate; here a negative period is clamped to
// zero and an out-of-range ratio falls back to 1.
func NewAuctionEngine(params AuctionParams) *AuctionEngine {
	period := params.Period
	if period < 0 {
		period = 0
	}
	ratio := params.InitialFeeRatio
	if !validFeeRatio(ratio) {
		ratio = 1
	}
	return &AuctionEngine{
		bidding: BiddingState{
			FeeRatio:      ratio,
			LastAuction:   params.StartTime,
			AuctionPeriod: period,
			Bids:          make(map[types.Account]uint64),
		},
		minCycles: params.MinCycles,
	}
}

// IsAuctionDue reports whether an auction may be settled at now. It has no
// side effects.
func (e *AuctionEngine) IsAuctionDue(now types.Timestamp) bool {
	return e.bidding.IsAuctionDue(now)
}

// Bid records bidder's pledge for the current cycle, replacing any earlier
// pledge. A zero amount withdraws the pledge. CyclesSinceAuction tracks the
// sum of outstanding pledges.
func (e *AuctionEngine) Bid(bidder types.Account, amount uint64) error {
	previous := e.bidding.Bids[bidder]
	total := e.bidding.CyclesSinceAuction
	if amount >= previous {
		delta := amount - previous
		if total > math.MaxUint64-delta {
			return txerrors.AmountOverflow()
		}
		total += delta
	} else {
		total -= previous - amount
	}
	if amount == 0 {
		delete(e.bidding.Bids, bidder)
	} else {
		e.bidding.Bids[bidder] = amount
	}
	e.bidding.CyclesSinceAuction = total
	return nil
}

// BidOf returns the pledge currently held by bidder.
func (e *AuctionEngine) BidOf(bidder types.Account) (uint64, bool) {
	amount, ok := e.bidding.Bids[bidder]
	return amount, ok
}

// Bids returns the outstanding pledges ordered by bidder.
func (e *AuctionEngine) Bids() []Bid {
	out := make([]Bid, 0, len(e.bidding.Bids))
	for bidder, amount := range e.bidding.Bids {
		out = append(out, Bid{Bidder: bidder, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bidder.Less(out[j].Bidder) })
	return out
}

// BiddingState returns a copy of the current cycle state.
func (e *AuctionEngine) BiddingState() BiddingState {
	out := e.bidding
	out.Bids = make(map[types.Account]uint64, len(e.bidding.Bids))
	for bidder, amount := range e.bidding.Bids {
		out.Bids[bidder] = amount
	}
	return out
}

func (e *AuctionEngine) FeeRatio() float64 {
	return e.bidding.FeeRatio
}

func (e *AuctionEngine) CyclesSinceAuction() uint64 {
	return e.bidding.CyclesSinceAuction
}

func (e *AuctionEngine) LastAuction() types.Timestamp {
	return e.bidding.LastAuction
}

func (e *AuctionEngine) AuctionPeriod() time.Duration {
	return e.bidding.AuctionPeriod
}

func (e *AuctionEngine) MinCycles() uint64 {
	return e.minCycles
}

// NextAuction returns the earliest time the next auction may run.
func (e *AuctionEngine) NextAuction() (types.Timestamp, bool) {
	return e.bidding.NextAuction()
}

// SetAuctionPeriod changes the schedule. The change applies to the current
// cycle.
func (e *AuctionEngine) SetAuctionPeriod(period time.Duration) error {
	if period < 0 {
		return ErrInvalidAuctionPeriod
	}
	e.bidding.AuctionPeriod = period
	return nil
}

// SetMinCycles changes the pledge volume targeted by the fee ratio update.
func (e *AuctionEngine) SetMinCycles(minCycles uint64) {
	e.minCycles = minCycles
}

// History exposes the completed auctions.
func (e *AuctionEngine) History() *AuctionHistory {
	return &e.history
}

// prepareSettlement validates that an auction can be settled at now and
// returns the pledges it will consume. It does not mutate the engine.
func (e *AuctionEngine) prepareSettlement(now types.Timestamp) (settlement, error) {
	if !e.IsAuctionDue(now) {
		return settlement{}, ErrAuctionNotDue
	}
	if len(e.bidding.Bids) == 0 {
		return settlement{}, ErrNoBids
	}
	return settlement{
		Time:        now,
		Bids:        e.Bids(),
		TotalCycles: e.bidding.CyclesSinceAuction,
	}, nil
}

// settle completes the cycle described by s: it appends the auction record,
// recomputes the fee ratio from the collected pledges, clears the bids and
// moves the schedule to s.Time. State.RunAuction is its only caller and
// distributes the tokens beforehand; settle itself cannot fail.
func (e *AuctionEngine) settle(s settlement, distributed types.Amount, firstTx, endTx uint64) AuctionInfo {
	info := AuctionInfo{
		AuctionID:          uint64(e.history.Len()),
		AuctionTime:        s.Time,
		TokensDistributed:  distributed,
		CyclesCollected:    s.TotalCycles,
		FeeRatio:           e.bidding.FeeRatio,
		FirstTransactionID: firstTx,
		EndTransactionID:   endTx,
	}
	e.history.append(info)
	e.bidding.FeeRatio = nextFeeRatio(e.bidding.FeeRatio, e.minCycles, s.TotalCycles)
	e.bidding.Bids = make(map[types.Account]uint64)
	e.bidding.CyclesSinceAuction = 0
	e.bidding.LastAuction = s.Time
	return info
}

// nextFeeRatio lowers the auction's share of fees once bidders pledge more
// than minCycles and raises it back to 1 when they pledge less.
func nextFeeRatio(current float64, minCycles, collected uint64) float64 {
	if minCycles == 0 {
		return current
	}
	if collected <= minCycles {
		return 1
	}
	return float64(minCycles) / float64(collected)
}
