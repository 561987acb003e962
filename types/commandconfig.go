package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvDataDir  = "DAPPSTAKING_DATADIR"
	EnvLogLevel = "DAPPSTAKING_LOG_LEVEL"

	// MemoryDataDir keeps the ledger in memory for a single command.
	MemoryDataDir = ":memory:"
)

type CommandConfig struct {
	// DataDir holds the simulated host ledger.
	DataDir      string `json:"datadir" yaml:"datadir"`
	LogLevel     string `json:"loglevel" yaml:"loglevel"`
	LogFormat    string `json:"logformat" yaml:"logformat"`
	DebugModules string `json:"debugmodules" yaml:"debugmodules"`
	// Contract and Caller are dev account names or 0x-prefixed account ids.
	Contract string `json:"contract" yaml:"contract"`
	Caller   string `json:"caller" yaml:"caller"`
}

// DefaultDataDir is ~/.dappstaking, or .dappstaking in the working
// directory when there is no home directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".dappstaking"
	}
	return filepath.Join(home, ".dappstaking")
}

func DefaultCommandConfig() CommandConfig {
	return CommandConfig{
		DataDir:   DefaultDataDir(),
		LogLevel:  "info",
		LogFormat: "terminal",
		Contract:  "charlie",
		Caller:    "alice",
	}
}

// LoadCommandConfig applies the YAML file at path (if any) over the defaults
// and then the environment overrides. A missing file at an explicit path is
// an error.
func LoadCommandConfig(path string) (CommandConfig, error) {
	cfg := DefaultCommandConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		var parsed CommandConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
		cfg.Merge(parsed)
	}
	cfg.ApplyEnvOverrides()
	return cfg, cfg.Validate()
}

// Merge copies the non-empty fields of src.
func (c *CommandConfig) Merge(src CommandConfig) {
	if src.DataDir != "" {
		c.DataDir = src.DataDir
	}
	if src.LogLevel != "" {
		c.LogLevel = src.LogLevel
	}
	if src.LogFormat != "" {
		c.LogFormat = src.LogFormat
	}
	if src.DebugModules != "" {
		c.DebugModules = src.DebugModules
	}
	if src.Contract != "" {
		c.Contract = src.Contract
	}
	if src.Caller != "" {
		c.Caller = src.Caller
	}
}

func (c *CommandConfig) ApplyEnvOverrides() {
	if dir := strings.TrimSpace(os.Getenv(EnvDataDir)); dir != "" {
		c.DataDir = dir
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		c.LogLevel = level
	}
}

func (c *CommandConfig) Validate() error {
	if c.DataDir == "" {
		return errors.New("config: datadir is required")
	}
	switch c.LogFormat {
	case "terminal", "json":
	default:
		return fmt.Errorf("config: unknown logformat %q", c.LogFormat)
	}
	if c.Contract == "" {
		return errors.New("config: contract account is required")
	}
	if c.Caller == "" {
		return errors.New("config: caller account is required")
	}
	return nil
}

// String method returns the CommandConfig as a formatted JSON string
func (c *CommandConfig) String() string {
	jsonData, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error marshaling JSON: %v", err)
	}
	return string(jsonData)
}

// LedgerDir is the directory handed to the ledger store; empty means memory.
func (c *CommandConfig) LedgerDir() string {
	if c.DataDir == MemoryDataDir {
		return ""
	}
	return c.DataDir
}
