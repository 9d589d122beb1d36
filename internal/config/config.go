package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	DataDir    string   `mapstructure:"data_dir"`
	DBPath     string   `mapstructure:"db_path"`
	LogDir     string   `mapstructure:"log_dir"`
	StateFile  string   `mapstructure:"state_file"`
	MaxJobs    int      `mapstructure:"max_jobs"`
	DaemonPort int      `mapstructure:"daemon_port"`
	DebounceMS int      `mapstructure:"debounce_ms"`
	IgnoreList []string `mapstructure:"ignore_list"`
}

var Default = Config{
	MaxJobs:    5,
	DaemonPort: 9101,
	DebounceMS: 500,
	IgnoreList: []string{},
}

// DefaultDir is ~/.copyjob.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}

	return filepath.Join(home, ".copyjob"), nil
}

// Load reads config.yaml from dir (DefaultDir when empty), then COPYJOB_*
// environment overrides. Paths left unset are derived from data_dir.
func Load(dir string) (*Config, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetDefault("data_dir", dir)
	v.SetDefault("db_path", "")
	v.SetDefault("log_dir", "")
	v.SetDefault("state_file", "")
	v.SetDefault("max_jobs", Default.MaxJobs)
	v.SetDefault("daemon_port", Default.DaemonPort)
	v.SetDefault("debounce_ms", Default.DebounceMS)
	v.SetDefault("ignore_list", Default.IgnoreList)

	v.SetEnvPrefix("COPYJOB")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := errors.AsType[viper.ConfigFileNotFoundError](err); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.fillPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) fillPaths() {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "jobs.db")
	}
	if c.LogDir == "" {
		c.LogDir = filepath.Join(c.DataDir, "logs")
	}
	if c.StateFile == "" {
		c.StateFile = filepath.Join(c.DataDir, "state.json")
	}
}

func (c *Config) Validate() error {
	if c.MaxJobs < 1 {
		return fmt.Errorf("max_jobs must be positive, got %d", c.MaxJobs)
	}
	if c.DaemonPort < 1 || c.DaemonPort > 65535 {
		return fmt.Errorf("daemon_port out of range: %d", c.DaemonPort)
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must not be negative, got %d", c.DebounceMS)
	}

	return nil
}
