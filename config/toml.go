package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/creachadair/atomicfile"
	"github.com/spf13/viper"
)

// defaultDirPerm is the default permissions used when creating directories.
const defaultDirPerm = 0700

// EnsureRoot creates the root and data directories if they don't exist and
// writes the default config file if there is none.
func EnsureRoot(rootDir string) error {
	for _, dir := range []string{rootDir, filepath.Join(rootDir, defaultDataDir)} {
		if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
			return fmt.Errorf("could not create directory %q: %w", dir, err)
		}
	}
	return writeDefaultConfigFileIfNone(rootDir)
}

// file is the layout of config.toml. Durations are written in their text
// form so the file reads back through viper.
type file struct {
	DBBackend string `toml:"db_backend"`
	DBDir     string `toml:"db_dir"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	Light struct {
		ChainID        string `toml:"chain_id"`
		TrustingPeriod string `toml:"trusting_period"`
		MaxClockDrift  string `toml:"max_clock_drift"`
		TrustLevel     string `toml:"trust_level"`
		PruningSize    uint16 `toml:"pruning_size"`
	} `toml:"light"`

	Bridge struct {
		Contract   string   `toml:"contract"`
		ProofSpecs []string `toml:"proof_specs"`
	} `toml:"bridge"`

	Instrumentation struct {
		Prometheus bool   `toml:"prometheus"`
		Namespace  string `toml:"namespace"`
	} `toml:"instrumentation"`
}

const header = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

`

// Marshal renders cfg as the contents of config.toml.
func (cfg *Config) Marshal() ([]byte, error) {
	var f file
	f.DBBackend = cfg.DBBackend
	f.DBDir = cfg.DBPath
	f.LogLevel = cfg.LogLevel
	f.LogFormat = cfg.LogFormat
	f.Light.ChainID = cfg.LightClient.ChainID
	f.Light.TrustingPeriod = cfg.LightClient.TrustingPeriod.String()
	f.Light.MaxClockDrift = cfg.LightClient.MaxClockDrift.String()
	f.Light.TrustLevel = cfg.LightClient.TrustLevel
	f.Light.PruningSize = cfg.LightClient.PruningSize
	f.Bridge.Contract = cfg.Bridge.Contract
	f.Bridge.ProofSpecs = cfg.Bridge.ProofSpecs
	f.Instrumentation.Prometheus = cfg.Instrumentation.Prometheus
	f.Instrumentation.Namespace = cfg.Instrumentation.Namespace

	buf := bytes.NewBufferString(header)
	if err := toml.NewEncoder(buf).Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteConfigFile atomically writes cfg to the config.toml of rootDir.
func WriteConfigFile(rootDir string, cfg *Config) error {
	bz, err := cfg.Marshal()
	if err != nil {
		return err
	}
	path := filepath.Join(rootDir, defaultConfigFileName)
	if _, err := atomicfile.WriteAll(path, bytes.NewReader(bz), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func writeDefaultConfigFileIfNone(rootDir string) error {
	path := filepath.Join(rootDir, defaultConfigFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return WriteConfigFile(rootDir, DefaultConfig())
	} else if err != nil {
		return err
	}
	return nil
}

// Load reads the settings gathered by v (config file, environment and
// flags) over the defaults, roots the result at the home setting and
// validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.SetRoot(cfg.RootDir)
	if err := cfg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("error in config file: %w", err)
	}
	return cfg, nil
}
