package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Input   Input   `yaml:"input"`
	Output  Output  `yaml:"output"`
	Mapping Mapping `yaml:"mapping"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

type Input struct {
	Dir string `yaml:"dir"`
}

type Output struct {
	Dir     string `yaml:"dir"`
	DataDir string `yaml:"data_dir"`
}

type Mapping struct {
	Dir            string `yaml:"dir"`
	ApplySuggested *bool  `yaml:"apply_suggested"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for snsmaster.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "snsmaster")
}

// DataDir returns the XDG data directory for snsmaster.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "snsmaster")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/snsmaster/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'snsmaster init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Input:   Input{Dir: "./input"},
		Output:  Output{Dir: "./output"},
		Mapping: Mapping{Dir: "./config"},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// ApplySuggestedMapping reports whether a generated mapping suggestion may
// be promoted to the primary mapping file. Defaults to true.
func (c *Config) ApplySuggestedMapping() bool {
	if c.Mapping.ApplySuggested == nil {
		return true
	}
	return *c.Mapping.ApplySuggested
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
