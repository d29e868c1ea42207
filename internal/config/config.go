package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Mealwise configuration
type Config struct {
	Worker  WorkerConfig  `mapstructure:"worker"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Logging LoggingConfig `mapstructure:"logging"`
	Paths   PathsConfig   `mapstructure:"paths"`
}

// WorkerConfig controls the generation worker pool
type WorkerConfig struct {
	// Count is the number of concurrent worker goroutines
	Count int `mapstructure:"count"`
	// PollIntervalMs is how long an idle worker waits before re-checking the queue (in milliseconds)
	PollIntervalMs int `mapstructure:"poll_interval_ms"`
	// GenerationTimeoutSeconds bounds a single generation attempt (in seconds)
	GenerationTimeoutSeconds int `mapstructure:"generation_timeout_seconds"`
}

// QueueConfig controls task queue behavior
type QueueConfig struct {
	// VisibilityTimeoutSeconds is how long a claimed task may stay outstanding
	// before the reaper returns it to the ready set (in seconds).
	// Must not be shorter than the generation timeout, or healthy workers
	// get raced by the reaper.
	VisibilityTimeoutSeconds int `mapstructure:"visibility_timeout_seconds"`
	// ReapIntervalSeconds is how often the reaper scans for stale deliveries (in seconds)
	ReapIntervalSeconds int `mapstructure:"reap_interval_seconds"`
	// PersistState saves queue state to disk on shutdown and restores it on start
	PersistState bool `mapstructure:"persist_state"`
}

// LoggingConfig controls the structured log output
type LoggingConfig struct {
	// Enabled turns file logging on or off. When off, logs go to stderr.
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum level to log: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
	// MaxSizeMB is the log file size that triggers rotation
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated log files to keep
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzips rotated log files
	Compress bool `mapstructure:"compress"`
}

// PathsConfig controls where Mealwise keeps its state
type PathsConfig struct {
	// DataDir holds the database, queue state, and logs.
	// Empty means the default: $XDG_DATA_HOME/mealwise or ~/.local/share/mealwise.
	DataDir string `mapstructure:"data_dir"`
}

// PollInterval returns the idle poll interval as a time.Duration
func (w *WorkerConfig) PollInterval() time.Duration {
	return time.Duration(w.PollIntervalMs) * time.Millisecond
}

// GenerationTimeout returns the attempt timeout as a time.Duration
func (w *WorkerConfig) GenerationTimeout() time.Duration {
	return time.Duration(w.GenerationTimeoutSeconds) * time.Second
}

// VisibilityTimeout returns the delivery visibility timeout as a time.Duration
func (q *QueueConfig) VisibilityTimeout() time.Duration {
	return time.Duration(q.VisibilityTimeoutSeconds) * time.Second
}

// ReapInterval returns the reaper scan interval as a time.Duration
func (q *QueueConfig) ReapInterval() time.Duration {
	return time.Duration(q.ReapIntervalSeconds) * time.Second
}

// ResolveDataDir returns the resolved data directory path.
// If DataDir is empty, it returns the XDG data directory.
// If DataDir starts with ~, it expands to the user's home directory.
func (p *PathsConfig) ResolveDataDir() string {
	if p.DataDir == "" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "mealwise")
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return ".mealwise"
		}
		return filepath.Join(home, ".local", "share", "mealwise")
	}

	path := p.DataDir
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}
	return path
}

// StorePath returns the path of the SQLite database inside the data directory
func (p *PathsConfig) StorePath() string {
	return filepath.Join(p.ResolveDataDir(), "mealwise.db")
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Worker: WorkerConfig{
			Count:                    4,
			PollIntervalMs:           200,
			GenerationTimeoutSeconds: 60,
		},
		Queue: QueueConfig{
			VisibilityTimeoutSeconds: 90, // Stays above the generation timeout
			ReapIntervalSeconds:      15,
			PersistState:             true,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
		Paths: PathsConfig{
			DataDir: "", // Empty means use the XDG default
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Worker defaults
	viper.SetDefault("worker.count", defaults.Worker.Count)
	viper.SetDefault("worker.poll_interval_ms", defaults.Worker.PollIntervalMs)
	viper.SetDefault("worker.generation_timeout_seconds", defaults.Worker.GenerationTimeoutSeconds)

	// Queue defaults
	viper.SetDefault("queue.visibility_timeout_seconds", defaults.Queue.VisibilityTimeoutSeconds)
	viper.SetDefault("queue.reap_interval_seconds", defaults.Queue.ReapIntervalSeconds)
	viper.SetDefault("queue.persist_state", defaults.Queue.PersistState)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	// Paths defaults
	viper.SetDefault("paths.data_dir", defaults.Paths.DataDir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mealwise")
	}
	// Fall back to ~/.config/mealwise
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mealwise"
	}
	return filepath.Join(home, ".config", "mealwise")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
