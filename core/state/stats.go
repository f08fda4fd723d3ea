package state

import (
	"errors"
	"fmt"
	"strings"

	"tokenledger/core/types"
)

var ErrInvalidStats = errors.New("state: invalid token stats")

// TokenStats holds the slow-changing token metadata.
type TokenStats struct {
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

// Validate rejects stats without a name or symbol.
func (s TokenStats) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidStats)
	}
	if strings.TrimSpace(s.Symbol) == "" {
		return fmt.Errorf("%w: symbol must not be empty", ErrInvalidStats)
	}
	return nil
}

// Metadata is the caller-facing view of TokenStats.
type Metadata struct {
	Logo        string        `json:"logo"`
	Name        string        `json:"name"`
	Symbol      string        `json:"symbol"`
	Decimals    uint8         `json:"decimals"`
	TotalSupply types.Amount  `json:"totalSupply"`
	Owner       types.Account `json:"owner"`
	Fee         types.Amount  `json:"fee"`
	FeeTo       types.Account `json:"feeTo"`
	IsTestToken *bool         `json:"isTestToken,omitempty"`
}

func (s TokenStats) metadata() Metadata {
	isTest := s.IsTestToken
	return Metadata{
		Logo:        s.Logo,
		Name:        s.Name,
		Symbol:      s.Symbol,
		Decimals:    s.Decimals,
		TotalSupply: s.TotalSupply,
		Owner:       s.Owner,
		Fee:         s.Fee,
		FeeTo:       s.FeeTo,
		IsTestToken: &isTest,
	}
}
