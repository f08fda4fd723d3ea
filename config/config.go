package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDataDir                 = "./tokend-data"
	DefaultMetricsAddress          = "127.0.0.1:9464"
	DefaultSnapshotIntervalSeconds = uint64(30)
)

type Config struct {
	DataDir                 string  `toml:"DataDir" yaml:"DataDir"`
	MetricsAddress          string  `toml:"MetricsAddress" yaml:"MetricsAddress"`
	Env                     string  `toml:"Env" yaml:"Env"`
	LogFile                 string  `toml:"LogFile" yaml:"LogFile"`
	SnapshotIntervalSeconds uint64  `toml:"SnapshotIntervalSeconds" yaml:"SnapshotIntervalSeconds"`
	AllowReset              bool    `toml:"AllowReset" yaml:"AllowReset"`
	Token                   Token   `toml:"Token" yaml:"Token"`
	Auction                 Auction `toml:"Auction" yaml:"Auction"`
}

// Load loads the configuration from the given path. Files ending in .yaml or
// .yml are decoded as YAML, everything else as TOML. A missing file is
// replaced by a freshly written default configuration.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	} else if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if isYAML(path) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	} else {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config file %s has unknown key %q", path, undecoded[0].String())
		}
	}

	applyDefaults(cfg)
	if err := ValidateConfig(*cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration written when no file exists.
func Default() *Config {
	return &Config{
		DataDir:                 DefaultDataDir,
		MetricsAddress:          DefaultMetricsAddress,
		Env:                     "local",
		SnapshotIntervalSeconds: DefaultSnapshotIntervalSeconds,
		Token:                   defaultToken(),
		Auction:                 defaultAuction(),
	}
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = DefaultDataDir
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = DefaultMetricsAddress
	}
	if cfg.SnapshotIntervalSeconds == 0 {
		cfg.SnapshotIntervalSeconds = DefaultSnapshotIntervalSeconds
	}
	if strings.TrimSpace(cfg.Token.Fee) == "" {
		cfg.Token.Fee = "0"
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if isYAML(path) {
		enc := yaml.NewEncoder(f)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}
	return toml.NewEncoder(f).Encode(cfg)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
