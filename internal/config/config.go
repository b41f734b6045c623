package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and socket configuration.
type Paths struct {
	LogDir     string `toml:"log_dir"`
	SocketPath string `toml:"socket_path"`
}

// Workflow contains orchestrator timing and concurrency settings.
type Workflow struct {
	PollInterval       int `toml:"poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	StageDelayMillis   int `toml:"stage_delay_ms"`
	StageTimeoutSecs   int `toml:"stage_timeout"`
	MaxActiveDocuments int `toml:"max_active_documents"`
}

// Classifier contains keyword rules for the default classify capability.
// Rules maps a document type to the keywords that select it.
type Classifier struct {
	Rules             map[string][]string `toml:"rules"`
	DefaultType       string              `toml:"default_type"`
	DefaultConfidence float64             `toml:"default_confidence"`
}

// Routing contains destination rules for the default route capability.
// Rules maps a document type to the destination system receiving it.
type Routing struct {
	Rules              map[string]string `toml:"rules"`
	DefaultDestination string            `toml:"default_destination"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Routed         bool   `toml:"routed"`
	Intervention   bool   `toml:"intervention"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration for the docflow daemon and CLI.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Workflow      Workflow      `toml:"workflow"`
	Classifier    Classifier    `toml:"classifier"`
	Routing       Routing       `toml:"routing"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// StageDelay returns the configured pause between automatic stages.
// Zero disables the delay entirely.
func (c *Config) StageDelay() time.Duration {
	if c.Workflow.StageDelayMillis <= 0 {
		return 0
	}
	return time.Duration(c.Workflow.StageDelayMillis) * time.Millisecond
}

// StageTimeout bounds a single stage capability invocation.
func (c *Config) StageTimeout() time.Duration {
	return time.Duration(c.Workflow.StageTimeoutSecs) * time.Second
}

// PollDuration returns the dispatcher poll interval.
func (c *Config) PollDuration() time.Duration {
	if c.Workflow.PollInterval <= 0 {
		return time.Second
	}
	return time.Duration(c.Workflow.PollInterval) * time.Second
}

// ErrorRetryDuration returns the backoff applied after registry fetch errors.
func (c *Config) ErrorRetryDuration() time.Duration {
	if c.Workflow.ErrorRetryInterval <= 0 {
		return time.Second
	}
	return time.Duration(c.Workflow.ErrorRetryInterval) * time.Second
}

// EnsureDirectories creates the directories the daemon writes into.
func (c *Config) EnsureDirectories() error {
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir is empty")
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	return nil
}

// Load reads configuration from the given path, falling back to the default
// locations when path is empty. It returns the resolved path and whether a
// file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("docflow.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// DefaultConfigPath returns the expanded default config file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/docflow/config.toml")
}

// ExpandPath resolves a leading ~ against the current user's home directory.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return filepath.Clean(path), nil
}

// WriteSample writes the embedded sample configuration to path, creating
// parent directories as needed. It refuses to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}
