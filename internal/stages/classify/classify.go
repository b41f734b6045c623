package classify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"docflow/internal/config"
	"docflow/internal/logging"
	"docflow/internal/services"
	"docflow/internal/stage"
)

const capabilityName = "classify"

// Capability assigns a document type by matching configured keywords against
// the extracted text. The type with the most keyword hits wins; ties break
// alphabetically so classification stays deterministic.
type Capability struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewCapability constructs the default classify capability.
func NewCapability(cfg *config.Config, logger *slog.Logger) *Capability {
	return &Capability{cfg: cfg, logger: logging.NewComponentLogger(logger, capabilityName)}
}

func (c *Capability) Name() string { return capabilityName }

func (c *Capability) Invoke(ctx context.Context, in stage.Input) (stage.Result, error) {
	logger := logging.WithContext(ctx, c.logger)

	if strings.TrimSpace(in.ExtractedText) == "" {
		return stage.Result{}, services.Wrap(
			services.ErrValidation, capabilityName, "validate inputs",
			"Document has no extracted text; run extract before classify", nil)
	}

	docType, confidence := c.match(in.ExtractedText)
	if docType == "" {
		docType = c.cfg.Classifier.DefaultType
		confidence = c.cfg.Classifier.DefaultConfidence
	}
	if docType == "" {
		return stage.Result{}, services.Wrap(
			services.ErrStageFailure, capabilityName, "resolve type",
			"No classifier rule matched and no default type is configured", nil)
	}

	logger.Info("classification complete",
		logging.String(logging.FieldDocumentID, in.ID),
		logging.String("document_type", docType),
		logging.Float64("confidence", confidence),
	)

	return stage.Result{
		DocumentType: docType,
		Confidence:   confidence,
		Message:      fmt.Sprintf("classified as %s (%.2f)", docType, confidence),
	}, nil
}

func (c *Capability) HealthCheck(ctx context.Context) stage.Health {
	if len(c.cfg.Classifier.Rules) == 0 && c.cfg.Classifier.DefaultType == "" {
		return stage.Unhealthy(capabilityName, "no classifier rules or default type configured")
	}
	return stage.Healthy(capabilityName)
}

// match scores every configured type against the text and returns the best
// one with a confidence proportional to how many of its keywords appeared.
func (c *Capability) match(text string) (string, float64) {
	lowered := strings.ToLower(text)

	types := make([]string, 0, len(c.cfg.Classifier.Rules))
	for docType := range c.cfg.Classifier.Rules {
		types = append(types, docType)
	}
	sort.Strings(types)

	bestType := ""
	bestHits := 0
	bestTotal := 0
	for _, docType := range types {
		keywords := c.cfg.Classifier.Rules[docType]
		hits := 0
		for _, keyword := range keywords {
			if keyword != "" && strings.Contains(lowered, strings.ToLower(keyword)) {
				hits++
			}
		}
		if hits > bestHits {
			bestType = docType
			bestHits = hits
			bestTotal = len(keywords)
		}
	}
	if bestType == "" {
		return "", 0
	}

	confidence := float64(bestHits) / float64(bestTotal)
	if floor := c.cfg.Classifier.DefaultConfidence; confidence < floor {
		confidence = floor
	}
	return bestType, confidence
}
