package state

import (
	"fmt"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"lukechampine.com/blake3"

	"tokenledger/core/ledger"
	"tokenledger/core/types"
)

type snapshotEnvelope struct {
	Version  uint32
	Checksum [32]byte
	Payload  []byte
}

type storedStatsV1 struct {
	Logo        string
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply types.Amount
	Owner       types.Account
	Fee         types.Amount
	FeeTo       types.Account
	IsTestToken bool
}

type storedBalanceV1 struct {
	Account types.Account
	Amount  types.Amount
}

type storedAllowanceV1 struct {
	Owner   types.Account
	Spender types.Account
	Amount  types.Amount
}

type storedBidV1 struct {
	Bidder types.Account
	Amount uint64
}

type storedBiddingV1 struct {
	FeeRatioBits       uint64
	LastAuction        uint64
	AuctionPeriodNanos uint64
	CyclesSinceAuction uint64
	MinCycles          uint64
	Bids               []storedBidV1
}

type storedAuctionV1 struct {
	AuctionID          uint64
	AuctionTime        uint64
	TokensDistributed  types.Amount
	CyclesCollected    uint64
	FeeRatioBits       uint64
	FirstTransactionID uint64
	EndTransactionID   uint64
}

type storedStateV1 struct {
	Stats      storedStatsV1
	Balances   []storedBalanceV1
	Allowances []storedAllowanceV1
	Bidding    storedBiddingV1
	History    []storedAuctionV1
	Ledger     []ledger.Record
}

// Snapshot serialises the full state into a versioned, checksummed
// envelope.
func (s *State) Snapshot() ([]byte, error) {
	payload, err := rlp.EncodeToBytes(s.toStoredV1())
	if err != nil {
		return nil, fmt.Errorf("state: encode snapshot: %w", err)
	}
	env := snapshotEnvelope{
		Version:  CurrentSnapshotVersion,
		Checksum: blake3.Sum256(payload),
		Payload:  payload,
	}
	encoded, err := rlp.EncodeToBytes(&env)
	if err != nil {
		return nil, fmt.Errorf("state: encode snapshot envelope: %w", err)
	}
	return encoded, nil
}

func (s *State) toStoredV1() *storedStateV1 {
	out := &storedStateV1{
		Stats: storedStatsV1{
			Logo:        s.stats.Logo,
			Name:        s.stats.Name,
			Symbol:      s.stats.Symbol,
			Decimals:    s.stats.Decimals,
			TotalSupply: s.stats.TotalSupply,
			Owner:       s.stats.Owner,
			Fee:         s.stats.Fee,
			FeeTo:       s.stats.FeeTo,
			IsTestToken: s.stats.IsTestToken,
		},
		Ledger: s.ledger.Records(),
	}
	for _, h := range s.balances.Entries() {
		out.Balances = append(out.Balances, storedBalanceV1{Account: h.Account, Amount: h.Amount})
	}
	for _, a := range s.allowances.Entries() {
		out.Allowances = append(out.Allowances, storedAllowanceV1{Owner: a.Owner, Spender: a.Spender, Amount: a.Amount})
	}
	bidding := s.auction.bidding
	out.Bidding = storedBiddingV1{
		FeeRatioBits:       math.Float64bits(bidding.FeeRatio),
		LastAuction:        uint64(bidding.LastAuction),
		AuctionPeriodNanos: uint64(bidding.AuctionPeriod),
		CyclesSinceAuction: bidding.CyclesSinceAuction,
		MinCycles:          s.auction.minCycles,
	}
	for _, bid := range s.auction.Bids() {
		out.Bidding.Bids = append(out.Bidding.Bids, storedBidV1{Bidder: bid.Bidder, Amount: bid.Amount})
	}
	for _, info := range s.auction.history.records {
		out.History = append(out.History, storedAuctionV1{
			AuctionID:          info.AuctionID,
			AuctionTime:        uint64(info.AuctionTime),
			TokensDistributed:  info.TokensDistributed,
			CyclesCollected:    info.CyclesCollected,
			FeeRatioBits:       math.Float64bits(info.FeeRatio),
			FirstTransactionID: info.FirstTransactionID,
			EndTransactionID:   info.EndTransactionID,
		})
	}
	return out
}

// Migrate reconstructs a current-schema State from a payload tagged with
// version. Unrecognised tags, including SnapshotVersionNone, yield the empty
// state built from opts. An error is returned only when a recognised payload
// fails to decode.
func Migrate(version uint32, payload []byte, opts Options) (*State, error) {
	switch version {
	case SnapshotVersionV1:
		var stored storedStateV1
		if err := rlp.DecodeBytes(payload, &stored); err != nil {
			return nil, fmt.Errorf("%w: decode v1: %v", ErrSnapshotCorrupt, err)
		}
		return stateFromStoredV1(&stored, opts.Recorder)
	default:
		return New(opts), nil
	}
}

func stateFromStoredV1(stored *storedStateV1, recorder Recorder) (*State, error) {
	s := &State{
		stats: TokenStats{
			Logo:        stored.Stats.Logo,
			Name:        stored.Stats.Name,
			Symbol:      stored.Stats.Symbol,
			Decimals:    stored.Stats.Decimals,
			TotalSupply: stored.Stats.TotalSupply,
			Owner:       stored.Stats.Owner,
			Fee:         stored.Stats.Fee,
			FeeTo:       stored.Stats.FeeTo,
			IsTestToken: stored.Stats.IsTestToken,
		},
		balances:   NewBalanceLedger(),
		allowances: NewAllowanceTable(),
	}

	for _, entry := range stored.Balances {
		if entry.Amount.IsZero() {
			return nil, fmt.Errorf("%w: zero balance stored for %s", ErrSnapshotCorrupt, entry.Account)
		}
		if _, dup := s.balances.balances[entry.Account]; dup {
			return nil, fmt.Errorf("%w: duplicate balance for %s", ErrSnapshotCorrupt, entry.Account)
		}
		s.balances.SetBalance(entry.Account, entry.Amount)
	}

	for _, entry := range stored.Allowances {
		if entry.Amount.IsZero() {
			return nil, fmt.Errorf("%w: zero allowance stored for %s", ErrSnapshotCorrupt, entry.Owner)
		}
		if !s.allowances.Allowance(entry.Owner, entry.Spender).IsZero() {
			return nil, fmt.Errorf("%w: duplicate allowance for %s", ErrSnapshotCorrupt, entry.Owner)
		}
		s.allowances.Approve(entry.Owner, entry.Spender, entry.Amount)
	}

	if stored.Bidding.AuctionPeriodNanos > math.MaxInt64 {
		return nil, fmt.Errorf("%w: auction period out of range", ErrSnapshotCorrupt)
	}
	ratio := math.Float64frombits(stored.Bidding.FeeRatioBits)
	if !validFeeRatio(ratio) {
		return nil, fmt.Errorf("%w: fee ratio %v out of range", ErrSnapshotCorrupt, ratio)
	}
	engine := &AuctionEngine{
		bidding: BiddingState{
			FeeRatio:      ratio,
			LastAuction:   types.Timestamp(stored.Bidding.LastAuction),
			AuctionPeriod: time.Duration(stored.Bidding.AuctionPeriodNanos),
			Bids:          make(map[types.Account]uint64, len(stored.Bidding.Bids)),
		},
		minCycles: stored.Bidding.MinCycles,
	}
	for _, bid := range stored.Bidding.Bids {
		if _, dup := engine.bidding.Bids[bid.Bidder]; dup {
			return nil, fmt.Errorf("%w: duplicate bid for %s", ErrSnapshotCorrupt, bid.Bidder)
		}
		if err := engine.Bid(bid.Bidder, bid.Amount); err != nil {
			return nil, fmt.Errorf("%w: bids: %v", ErrSnapshotCorrupt, err)
		}
	}
	if engine.bidding.CyclesSinceAuction != stored.Bidding.CyclesSinceAuction {
		return nil, fmt.Errorf("%w: cycles since auction %d do not match pledges %d",
			ErrSnapshotCorrupt, stored.Bidding.CyclesSinceAuction, engine.bidding.CyclesSinceAuction)
	}
	logLen := uint64(len(stored.Ledger))
	var prevEnd uint64
	for i, info := range stored.History {
		if info.AuctionID != uint64(i) {
			return nil, fmt.Errorf("%w: auction %d carries id %d", ErrSnapshotCorrupt, i, info.AuctionID)
		}
		infoRatio := math.Float64frombits(info.FeeRatioBits)
		if !validFeeRatio(infoRatio) {
			return nil, fmt.Errorf("%w: auction %d fee ratio %v out of range", ErrSnapshotCorrupt, i, infoRatio)
		}
		if info.FirstTransactionID < prevEnd || info.FirstTransactionID > info.EndTransactionID || info.EndTransactionID > logLen {
			return nil, fmt.Errorf("%w: auction %d transaction range [%d, %d) outside [%d, %d)",
				ErrSnapshotCorrupt, i, info.FirstTransactionID, info.EndTransactionID, prevEnd, logLen)
		}
		prevEnd = info.EndTransactionID
		engine.history.append(AuctionInfo{
			AuctionID:          info.AuctionID,
			AuctionTime:        types.Timestamp(info.AuctionTime),
			TokensDistributed:  info.TokensDistributed,
			CyclesCollected:    info.CyclesCollected,
			FeeRatio:           infoRatio,
			FirstTransactionID: info.FirstTransactionID,
			EndTransactionID:   info.EndTransactionID,
		})
	}
	s.auction = engine

	txlog, err := ledger.FromRecords(stored.Ledger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	s.ledger = txlog
	s.SetRecorder(recorder)
	return s, nil
}

// RestoreReport describes the outcome of Restore.
type RestoreReport struct {
	// Version is the tag found in the envelope, SnapshotVersionNone when
	// there was no snapshot.
	Version uint32
	// Restored is true when the prior state was carried over.
	Restored bool
	// Err carries the reason a present snapshot was discarded.
	Err error
}

// Restore rebuilds the state from a Snapshot envelope. It always returns a
// usable state: empty input, an unknown version or an unreadable snapshot
// produce the empty state built from opts. Whenever a present snapshot is
// discarded the cause is in report.Err.
func Restore(data []byte, opts Options) (*State, RestoreReport) {
	if len(data) == 0 {
		return New(opts), RestoreReport{}
	}
	var env snapshotEnvelope
	if err := rlp.DecodeBytes(data, &env); err != nil {
		return New(opts), RestoreReport{Err: fmt.Errorf("%w: envelope: %v", ErrSnapshotCorrupt, err)}
	}
	report := RestoreReport{Version: env.Version}
	if !KnownSnapshotVersion(env.Version) {
		report.Err = fmt.Errorf("%w: %d", ErrSnapshotUnknownVersion, env.Version)
		return New(opts), report
	}
	if blake3.Sum256(env.Payload) != env.Checksum {
		report.Err = ErrSnapshotChecksum
		return New(opts), report
	}
	restored, err := Migrate(env.Version, env.Payload, opts)
	if err != nil {
		report.Err = err
		return New(opts), report
	}
	report.Restored = true
	return restored, report
}
