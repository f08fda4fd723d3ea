package state

import (
	"time"

	txerrors "tokenledger/core/errors"
	"tokenledger/core/ledger"
	"tokenledger/core/types"
)

// Recorder receives state observations. Implementations must not call back
// into the State.
type Recorder interface {
	SetHolders(n int)
	SetApprovals(n int)
	ObserveAuction(info AuctionInfo)
	ObserveTranslatedError(kind string)
}

type noopRecorder struct{}

func (noopRecorder) SetHolders(int)                {}
func (noopRecorder) SetApprovals(int)              {}
func (noopRecorder) ObserveAuction(AuctionInfo)    {}
func (noopRecorder) ObserveTranslatedError(string) {}

// Options configures a freshly initialised State.
type Options struct {
	Stats    TokenStats
	Auction  AuctionParams
	Recorder Recorder
}

// Validate checks the stats and auction parameters.
func (o Options) Validate() error {
	if err := o.Stats.Validate(); err != nil {
		return err
	}
	return o.Auction.Validate()
}

// State aggregates every component of the accounting core. It is not safe
// for concurrent use; callers serialise access so that each method runs as
// one indivisible step.
type State struct {
	stats      TokenStats
	balances   *BalanceLedger
	allowances *AllowanceTable
	auction    *AuctionEngine
	ledger     *ledger.Ledger
	recorder   Recorder
}

// New returns an empty state configured from opts.
func New(opts Options) *State {
	s := &State{
		stats:      opts.Stats,
		balances:   NewBalanceLedger(),
		allowances: NewAllowanceTable(),
		auction:    NewAuctionEngine(opts.Auction),
		ledger:     ledger.New(),
	}
	s.SetRecorder(opts.Recorder)
	return s
}

// SetRecorder replaces the metrics recorder; nil disables recording.
func (s *State) SetRecorder(r Recorder) {
	if r == nil {
		r = noopRecorder{}
	}
	s.recorder = r
	s.refreshGauges()
}

func (s *State) refreshGauges() {
	s.recorder.SetHolders(s.balances.Len())
	s.recorder.SetApprovals(s.allowances.AllowanceSize())
}

// Ledger exposes the transaction log that entry points append to.
func (s *State) Ledger() *ledger.Ledger { return s.ledger }

// Stats returns the current token stats.
func (s *State) Stats() TokenStats {
	return s.stats
}

// SetStats replaces the token stats.
func (s *State) SetStats(stats TokenStats) error {
	if err := stats.Validate(); err != nil {
		return err
	}
	s.stats = stats
	return nil
}

// GetMetadata assembles the caller-facing token metadata.
func (s *State) GetMetadata() Metadata {
	return s.stats.metadata()
}

func (s *State) BalanceOf(who types.Account) types.Amount {
	return s.balances.BalanceOf(who)
}

// SetBalance updates a balance and the holder ranking in one step.
func (s *State) SetBalance(who types.Account, amount types.Amount) {
	s.balances.SetBalance(who, amount)
	s.recorder.SetHolders(s.balances.Len())
}

// HolderCount returns the number of accounts with a non-zero balance.
func (s *State) HolderCount() int {
	return s.balances.Len()
}

// Balances returns every non-zero balance ordered by account.
func (s *State) Balances() []Holder {
	return s.balances.Entries()
}

func (s *State) GetHolders(offset, limit int) []Holder {
	return s.balances.GetHolders(offset, limit)
}

func (s *State) GetHoldersBetween(x, y types.Amount) []Holder {
	return s.balances.GetHoldersBetween(x, y)
}

// Approve sets the allowance of spender over owner's balance.
func (s *State) Approve(owner, spender types.Account, amount types.Amount) {
	s.allowances.Approve(owner, spender, amount)
	s.recorder.SetApprovals(s.allowances.AllowanceSize())
}

func (s *State) Allowance(owner, spender types.Account) types.Amount {
	return s.allowances.Allowance(owner, spender)
}

func (s *State) UserApprovals(owner types.Account) []Approval {
	return s.allowances.UserApprovals(owner)
}

func (s *State) AllowanceSize() int {
	return s.allowances.AllowanceSize()
}

// Allowances returns every active allowance ordered by owner then spender.
func (s *State) Allowances() []AllowanceEntry {
	return s.allowances.Entries()
}

func (s *State) IsAuctionDue(now types.Timestamp) bool {
	return s.auction.IsAuctionDue(now)
}

// Bid records a pledge toward the current auction cycle.
func (s *State) Bid(bidder types.Account, amount uint64) error {
	return s.auction.Bid(bidder, amount)
}

// BiddingState returns a copy of the current auction cycle.
func (s *State) BiddingState() BiddingState {
	return s.auction.BiddingState()
}

// Bids returns the outstanding pledges ordered by bidder.
func (s *State) Bids() []Bid {
	return s.auction.Bids()
}

func (s *State) MinCycles() uint64 {
	return s.auction.MinCycles()
}

// NextAuction returns the earliest time the next auction may run.
func (s *State) NextAuction() (types.Timestamp, bool) {
	return s.auction.NextAuction()
}

// SetMinCycles changes the pledge volume targeted by the fee ratio update.
func (s *State) SetMinCycles(minCycles uint64) {
	s.auction.SetMinCycles(minCycles)
}

// SetAuctionPeriod changes the auction schedule.
func (s *State) SetAuctionPeriod(period time.Duration) error {
	return s.auction.SetAuctionPeriod(period)
}

type auctionCredit struct {
	bidder types.Account
	share  types.Amount
	next   types.Amount
}

// RunAuction settles a due auction. The balance held by AuctionAccount is
// split between bidders in proportion to their pledges; rounding dust stays
// with AuctionAccount. Every credit is computed before any balance changes,
// so a failure leaves the state untouched.
func (s *State) RunAuction(now types.Timestamp) (AuctionInfo, error) {
	plan, err := s.auction.prepareSettlement(now)
	if err != nil {
		return AuctionInfo{}, err
	}
	pool := s.balances.BalanceOf(AuctionAccount)
	credits := make([]auctionCredit, 0, len(plan.Bids))
	var distributed types.Amount
	for _, bid := range plan.Bids {
		if bid.Bidder == AuctionAccount {
			continue
		}
		share, err := pool.MulDiv(bid.Amount, plan.TotalCycles)
		if err != nil {
			return AuctionInfo{}, txerrors.FromError(err)
		}
		if share.IsZero() {
			continue
		}
		next, err := s.balances.BalanceOf(bid.Bidder).Add(share)
		if err != nil {
			return AuctionInfo{}, txerrors.AmountOverflow()
		}
		if distributed, err = distributed.Add(share); err != nil {
			return AuctionInfo{}, txerrors.AmountOverflow()
		}
		credits = append(credits, auctionCredit{bidder: bid.Bidder, share: share, next: next})
	}
	remaining, err := pool.Sub(distributed)
	if err != nil {
		return AuctionInfo{}, txerrors.InsufficientFunds(pool)
	}

	firstTx := s.ledger.Len()
	s.balances.SetBalance(AuctionAccount, remaining)
	for _, credit := range credits {
		s.balances.SetBalance(credit.bidder, credit.next)
		s.ledger.Push(ledger.Record{
			Op:        ledger.OpAuction,
			Caller:    AuctionAccount,
			From:      AuctionAccount,
			To:        credit.bidder,
			Amount:    credit.share,
			Timestamp: now,
		})
	}
	info := s.auction.settle(plan, distributed, firstTx, s.ledger.Len())
	s.recorder.ObserveAuction(info)
	s.recorder.SetHolders(s.balances.Len())
	return info, nil
}

// AuctionHistory returns up to limit completed auctions starting at offset.
func (s *State) AuctionHistory(offset, limit int) []AuctionInfo {
	return s.auction.History().Range(offset, limit)
}

// TranslateError narrows err to the external transfer contract and records
// the internal kind.
func (s *State) TranslateError(err error) *txerrors.TransferError {
	internal := txerrors.FromError(err)
	if internal == nil {
		return nil
	}
	s.recorder.ObserveTranslatedError(internal.Kind.String())
	return txerrors.Translate(internal)
}
