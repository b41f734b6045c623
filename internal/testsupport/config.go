package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"docflow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SocketPath = filepath.Join(base, "docflow.sock")
	if err := os.MkdirAll(cfgVal.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("create log dir: %v", err)
	}
	cfgVal.Workflow.PollInterval = 1
	cfgVal.Workflow.StageDelayMillis = 0
	cfgVal.Workflow.StageTimeoutSecs = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithNtfyTopic sets the push notification endpoint on the test config.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithStageDelay sets the inter-stage delay in milliseconds.
func WithStageDelay(millis int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.StageDelayMillis = millis
	}
}

// WithClassifierRules replaces the keyword rules on the test config.
func WithClassifierRules(rules map[string][]string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Classifier.Rules = rules
	}
}

// WithRoutingRules replaces the destination rules on the test config.
func WithRoutingRules(rules map[string]string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Routing.Rules = rules
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
