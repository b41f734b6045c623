package config

import "fmt"

// Validate checks configuration invariants after normalization.
func (c *Config) Validate() error {
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateRouting(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.StageTimeoutSecs <= 0 {
		return fmt.Errorf("workflow.stage_timeout must be positive, got %d", c.Workflow.StageTimeoutSecs)
	}
	if c.Workflow.MaxActiveDocuments <= 0 {
		return fmt.Errorf("workflow.max_active_documents must be positive, got %d", c.Workflow.MaxActiveDocuments)
	}
	if c.Workflow.StageDelayMillis < 0 {
		return fmt.Errorf("workflow.stage_delay_ms must not be negative, got %d", c.Workflow.StageDelayMillis)
	}
	return nil
}

func (c *Config) validateClassifier() error {
	if c.Classifier.DefaultConfidence < 0 || c.Classifier.DefaultConfidence > 1 {
		return fmt.Errorf("classifier.default_confidence must be in [0,1], got %g", c.Classifier.DefaultConfidence)
	}
	if len(c.Classifier.Rules) == 0 {
		return fmt.Errorf("classifier.rules must define at least one document type")
	}
	return nil
}

func (c *Config) validateRouting() error {
	if c.Routing.DefaultDestination == "" {
		return fmt.Errorf("routing.default_destination is required")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
