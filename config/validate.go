package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	MaxDecimals         = uint8(18)
	MaxAuctionPeriodSec = uint64(math.MaxInt64 / int64(time.Second))
)

func ValidateConfig(c Config) error {
	if strings.TrimSpace(c.Token.Name) == "" {
		return fmt.Errorf("token: name must not be empty")
	}
	if strings.TrimSpace(c.Token.Symbol) == "" {
		return fmt.Errorf("token: symbol must not be empty")
	}
	if c.Token.Decimals > MaxDecimals {
		return fmt.Errorf("token: decimals > %d", MaxDecimals)
	}
	if c.Auction.PeriodSeconds > MaxAuctionPeriodSec {
		return fmt.Errorf("auction: period_seconds too large")
	}
	if math.IsNaN(c.Auction.InitialFeeRatio) || c.Auction.InitialFeeRatio < 0 || c.Auction.InitialFeeRatio > 1 {
		return fmt.Errorf("auction: initial_fee_ratio outside [0, 1]")
	}
	if c.SnapshotIntervalSeconds == 0 {
		return fmt.Errorf("snapshot_interval_seconds must be positive")
	}
	return nil
}
