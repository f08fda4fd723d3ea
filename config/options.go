package config

import (
	"fmt"
	"strings"
	"time"

	"tokenledger/core/state"
	"tokenledger/core/types"
)

// StateOptions converts the token and auction sections into the options used
// to initialise an empty ledger state.
func (c *Config) StateOptions(now types.Timestamp) (state.Options, error) {
	owner, err := parseOptionalAccount(c.Token.Owner)
	if err != nil {
		return state.Options{}, fmt.Errorf("invalid Token.Owner: %w", err)
	}
	feeTo, err := parseOptionalAccount(c.Token.FeeTo)
	if err != nil {
		return state.Options{}, fmt.Errorf("invalid Token.FeeTo: %w", err)
	}
	fee, err := types.ParseAmount(c.Token.Fee)
	if err != nil {
		return state.Options{}, fmt.Errorf("invalid Token.Fee: %w", err)
	}
	opts := state.Options{
		Stats: state.TokenStats{
			Logo:        c.Token.Logo,
			Name:        c.Token.Name,
			Symbol:      c.Token.Symbol,
			Decimals:    c.Token.Decimals,
			Owner:       owner,
			Fee:         fee,
			FeeTo:       feeTo,
			IsTestToken: c.Token.IsTestToken,
		},
		Auction: state.AuctionParams{
			Period:          c.AuctionPeriod(),
			MinCycles:       c.Auction.MinCycles,
			InitialFeeRatio: c.Auction.InitialFeeRatio,
			StartTime:       now,
		},
	}
	if err := opts.Validate(); err != nil {
		return state.Options{}, err
	}
	return opts, nil
}

// AuctionPeriod returns the configured auction period.
func (c *Config) AuctionPeriod() time.Duration {
	return time.Duration(c.Auction.PeriodSeconds) * time.Second
}

// SnapshotInterval returns the delay between periodic snapshots.
func (c *Config) SnapshotInterval() time.Duration {
	return time.Duration(c.SnapshotIntervalSeconds) * time.Second
}

func parseOptionalAccount(s string) (types.Account, error) {
	if strings.TrimSpace(s) == "" {
		return types.Account{}, nil
	}
	return types.ParseAccount(s)
}
