package config

// Token captures the token metadata applied to a freshly initialised ledger.
// Accounts are bech32 strings and amounts are base-10 integers in base units.
type Token struct {
	Name        string `toml:"Name" yaml:"Name"`
	Symbol      string `toml:"Symbol" yaml:"Symbol"`
	Decimals    uint8  `toml:"Decimals" yaml:"Decimals"`
	Logo        string `toml:"Logo" yaml:"Logo"`
	Owner       string `toml:"Owner" yaml:"Owner"`
	Fee         string `toml:"Fee" yaml:"Fee"`
	FeeTo       string `toml:"FeeTo" yaml:"FeeTo"`
	IsTestToken bool   `toml:"IsTestToken" yaml:"IsTestToken"`
}

// Auction controls the periodic fee auction.
type Auction struct {
	PeriodSeconds   uint64  `toml:"PeriodSeconds" yaml:"PeriodSeconds"`
	MinCycles       uint64  `toml:"MinCycles" yaml:"MinCycles"`
	InitialFeeRatio float64 `toml:"InitialFeeRatio" yaml:"InitialFeeRatio"`
}

func defaultToken() Token {
	return Token{
		Name:     "Token",
		Symbol:   "TOK",
		Decimals: 8,
		Fee:      "0",
	}
}

func defaultAuction() Auction {
	return Auction{
		PeriodSeconds:   86400,
		MinCycles:       0,
		InitialFeeRatio: 1,
	}
}
