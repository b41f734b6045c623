package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeClassifier()
	c.normalizeRouting()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		c.Paths.SocketPath = filepath.Join(c.Paths.LogDir, "docflow.sock")
	}
	if c.Paths.SocketPath, err = ExpandPath(c.Paths.SocketPath); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeClassifier() {
	if len(c.Classifier.Rules) == 0 {
		c.Classifier.Rules = Default().Classifier.Rules
	}
	normalized := make(map[string][]string, len(c.Classifier.Rules))
	for docType, keywords := range c.Classifier.Rules {
		docType = strings.ToLower(strings.TrimSpace(docType))
		if docType == "" {
			continue
		}
		cleaned := make([]string, 0, len(keywords))
		for _, keyword := range keywords {
			if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" {
				cleaned = append(cleaned, keyword)
			}
		}
		if len(cleaned) > 0 {
			normalized[docType] = cleaned
		}
	}
	c.Classifier.Rules = normalized
	if strings.TrimSpace(c.Classifier.DefaultType) == "" {
		c.Classifier.DefaultType = defaultDocumentType
	}
	if c.Classifier.DefaultConfidence == 0 {
		c.Classifier.DefaultConfidence = defaultConfidence
	}
}

func (c *Config) normalizeRouting() {
	if len(c.Routing.Rules) == 0 {
		c.Routing.Rules = Default().Routing.Rules
	}
	normalized := make(map[string]string, len(c.Routing.Rules))
	for docType, destination := range c.Routing.Rules {
		docType = strings.ToLower(strings.TrimSpace(docType))
		destination = strings.TrimSpace(destination)
		if docType != "" && destination != "" {
			normalized[docType] = destination
		}
	}
	c.Routing.Rules = normalized
	if strings.TrimSpace(c.Routing.DefaultDestination) == "" {
		c.Routing.DefaultDestination = defaultDestination
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
