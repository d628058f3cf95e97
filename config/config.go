package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/oraichain/tonbridge-core/crypto/ics23"
	"github.com/oraichain/tonbridge-core/libs/log"
	tmmath "github.com/oraichain/tonbridge-core/libs/math"
	"github.com/oraichain/tonbridge-core/light"
	"github.com/oraichain/tonbridge-core/packet"
)

const (
	// ProofSpecIAVL names the spec of a cosmos-sdk module store.
	ProofSpecIAVL = "iavl"
	// ProofSpecTendermint names the spec of the multistore root.
	ProofSpecTendermint = "tendermint"
)

var (
	DefaultHomeDir = ".tonbridge"
	defaultDataDir = "data"

	defaultConfigFileName = "config.toml"
)

// Config defines the top level configuration of a bridge verifier.
type Config struct {
	// Top level options use an anonymous struct
	BaseConfig `mapstructure:",squash"`

	LightClient     *LightClientConfig     `mapstructure:"light"`
	Bridge          *BridgeConfig          `mapstructure:"bridge"`
	Instrumentation *InstrumentationConfig `mapstructure:"instrumentation"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseConfig:      DefaultBaseConfig(),
		LightClient:     DefaultLightClientConfig(),
		Bridge:          DefaultBridgeConfig(),
		Instrumentation: DefaultInstrumentationConfig(),
	}
}

// TestConfig returns a configuration that can be used for testing.
func TestConfig() *Config {
	cfg := DefaultConfig()
	cfg.BaseConfig = TestBaseConfig()
	cfg.Bridge.Contract = testBridgeContract
	return cfg
}

// SetRoot sets the RootDir for all Config structs
func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *Config) ValidateBasic() error {
	if err := cfg.BaseConfig.ValidateBasic(); err != nil {
		return err
	}
	if err := cfg.LightClient.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [light] section: %w", err)
	}
	if err := cfg.Bridge.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [bridge] section: %w", err)
	}
	if err := cfg.Instrumentation.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [instrumentation] section: %w", err)
	}
	return nil
}

//-----------------------------------------------------------------------------
// BaseConfig

// BaseConfig defines the base configuration.
type BaseConfig struct {
	// The root directory for all data.
	// This should be set in viper so it can unmarshal into this struct
	RootDir string `mapstructure:"home"`

	// Database backend: goleveldb | memdb | ...
	DBBackend string `mapstructure:"db_backend"`

	// Database directory
	DBPath string `mapstructure:"db_dir"`

	// Output level for logging
	LogLevel string `mapstructure:"log_level"`

	// Output format: 'plain' (colored text) or 'json'
	LogFormat string `mapstructure:"log_format"`
}

// DefaultBaseConfig returns a default base configuration.
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		DBBackend: "goleveldb",
		DBPath:    defaultDataDir,
		LogLevel:  log.LogLevelInfo,
		LogFormat: log.LogFormatPlain,
	}
}

// TestBaseConfig returns a base configuration for testing.
func TestBaseConfig() BaseConfig {
	cfg := DefaultBaseConfig()
	cfg.DBBackend = "memdb"
	return cfg
}

// DBDir returns the full path to the database directory
func (cfg BaseConfig) DBDir() string {
	return rootify(cfg.DBPath, cfg.RootDir)
}

// ConfigFile returns the full path to the config.toml file.
func (cfg BaseConfig) ConfigFile() string {
	return filepath.Join(cfg.RootDir, defaultConfigFileName)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg BaseConfig) ValidateBasic() error {
	switch cfg.LogFormat {
	case log.LogFormatPlain, log.LogFormatText, log.LogFormatJSON:
	default:
		return errors.New("unknown log_format (must be 'plain', 'text' or 'json')")
	}
	if cfg.DBBackend == "" {
		return errors.New("db_backend can't be empty")
	}
	return nil
}

//-----------------------------------------------------------------------------
// LightClientConfig

// LightClientConfig defines the chain the light client follows and how long
// it trusts a verified header.
type LightClientConfig struct {
	ChainID string `mapstructure:"chain_id"`

	// Headers older than the trusting period can't be used to verify new
	// ones. Should be significantly less than the unbonding period.
	TrustingPeriod time.Duration `mapstructure:"trusting_period"`

	// How far a header time may run ahead of the local clock.
	MaxClockDrift time.Duration `mapstructure:"max_clock_drift"`

	// Fraction of the trusted validator set that has to sign a non-adjacent
	// header, e.g. "1/3".
	TrustLevel string `mapstructure:"trust_level"`

	// Number of consensus states kept in the store. 0 keeps all of them.
	PruningSize uint16 `mapstructure:"pruning_size"`
}

// DefaultLightClientConfig returns the defaults of light.DefaultParams for
// the Oraichain mainnet.
func DefaultLightClientConfig() *LightClientConfig {
	params := light.DefaultParams("Oraichain")
	return &LightClientConfig{
		ChainID:        params.ChainID,
		TrustingPeriod: params.TrustingPeriod,
		MaxClockDrift:  params.MaxClockDrift,
		TrustLevel:     params.TrustLevel.String(),
		PruningSize:    1000,
	}
}

// Params returns the light client parameters described by cfg.
func (cfg *LightClientConfig) Params() (light.Params, error) {
	trustLevel, err := tmmath.ParseFraction(cfg.TrustLevel)
	if err != nil {
		return light.Params{}, fmt.Errorf("trust_level: %w", err)
	}
	params := light.Params{
		ChainID:        cfg.ChainID,
		TrustingPeriod: cfg.TrustingPeriod,
		MaxClockDrift:  cfg.MaxClockDrift,
		TrustLevel:     trustLevel,
	}
	return params, params.ValidateBasic()
}

// ValidateBasic performs basic validation.
func (cfg *LightClientConfig) ValidateBasic() error {
	_, err := cfg.Params()
	return err
}

//-----------------------------------------------------------------------------
// BridgeConfig

// BridgeConfig defines the contract packets are committed by and how their
// proofs are checked.
type BridgeConfig struct {
	// Bech32 address of the bridge contract on the Cosmos chain.
	Contract string `mapstructure:"contract"`

	// Specs of the proof chain, innermost first.
	ProofSpecs []string `mapstructure:"proof_specs"`
}

const testBridgeContract = "orai1gzuxckyhl3qs2r4ccgy8nfh9p8200y6ug2kphp888lvlp7wkk23s6crhz7"

// DefaultBridgeConfig returns a bridge configuration proving packets in a
// wasm module store. The contract must be set before use.
func DefaultBridgeConfig() *BridgeConfig {
	return &BridgeConfig{
		ProofSpecs: []string{ProofSpecIAVL, ProofSpecTendermint},
	}
}

// Specs resolves the configured spec names.
func (cfg *BridgeConfig) Specs() ([]*ics23.ProofSpec, error) {
	if len(cfg.ProofSpecs) == 0 {
		return nil, errors.New("proof_specs can't be empty")
	}
	specs := make([]*ics23.ProofSpec, len(cfg.ProofSpecs))
	for i, name := range cfg.ProofSpecs {
		switch name {
		case ProofSpecIAVL:
			specs[i] = ics23.IavlSpec
		case ProofSpecTendermint:
			specs[i] = ics23.TendermintSpec
		default:
			return nil, fmt.Errorf("unknown proof spec %q (must be %q or %q)", name, ProofSpecIAVL, ProofSpecTendermint)
		}
	}
	return specs, nil
}

// ValidateBasic performs basic validation.
func (cfg *BridgeConfig) ValidateBasic() error {
	if cfg.Contract == "" {
		return errors.New("contract can't be empty")
	}
	if _, err := packet.CommitmentKey(cfg.Contract, 0); err != nil {
		return fmt.Errorf("contract: %w", err)
	}
	_, err := cfg.Specs()
	return err
}

//-----------------------------------------------------------------------------
// InstrumentationConfig

// InstrumentationConfig defines the configuration for metrics reporting.
type InstrumentationConfig struct {
	// When true, light client and bridge metrics are reported to Prometheus.
	Prometheus bool `mapstructure:"prometheus"`

	// Instrumentation namespace.
	Namespace string `mapstructure:"namespace"`
}

// DefaultInstrumentationConfig returns a default configuration for metrics
// reporting.
func DefaultInstrumentationConfig() *InstrumentationConfig {
	return &InstrumentationConfig{
		Prometheus: false,
		Namespace:  "tonbridge",
	}
}

// ValidateBasic performs basic validation.
func (cfg *InstrumentationConfig) ValidateBasic() error {
	if cfg.Prometheus && cfg.Namespace == "" {
		return errors.New("namespace can't be empty when prometheus is enabled")
	}
	return nil
}

// Metrics returns the light client metrics described by cfg.
func (cfg *InstrumentationConfig) Metrics() *light.Metrics {
	if cfg.Prometheus {
		return light.PrometheusMetrics(cfg.Namespace)
	}
	return light.NopMetrics()
}

//-----------------------------------------------------------------------------
// Utils

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
