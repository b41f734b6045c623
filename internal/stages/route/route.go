package route

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docflow/internal/config"
	"docflow/internal/logging"
	"docflow/internal/services"
	"docflow/internal/stage"
)

const capabilityName = "route"

// Capability resolves the destination system for a classified document from
// the configured routing table.
type Capability struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewCapability constructs the default route capability.
func NewCapability(cfg *config.Config, logger *slog.Logger) *Capability {
	return &Capability{cfg: cfg, logger: logging.NewComponentLogger(logger, capabilityName)}
}

func (c *Capability) Name() string { return capabilityName }

func (c *Capability) Invoke(ctx context.Context, in stage.Input) (stage.Result, error) {
	logger := logging.WithContext(ctx, c.logger)

	docType := strings.ToLower(strings.TrimSpace(in.DocumentType))
	if docType == "" {
		return stage.Result{}, services.Wrap(
			services.ErrValidation, capabilityName, "validate inputs",
			"Document has no type; run classify before route", nil)
	}

	destination, ok := c.cfg.Routing.Rules[docType]
	if !ok || destination == "" {
		destination = c.cfg.Routing.DefaultDestination
	}
	if destination == "" {
		return stage.Result{}, services.Wrap(
			services.ErrStageFailure, capabilityName, "resolve destination",
			fmt.Sprintf("No routing rule for type %s and no default destination is configured", docType), nil)
	}

	logger.Info("routing complete",
		logging.String(logging.FieldDocumentID, in.ID),
		logging.String("document_type", docType),
		logging.String("destination", destination),
	)

	return stage.Result{
		Destination: destination,
		Message:     fmt.Sprintf("routed to %s", destination),
	}, nil
}

func (c *Capability) HealthCheck(ctx context.Context) stage.Health {
	if len(c.cfg.Routing.Rules) == 0 && c.cfg.Routing.DefaultDestination == "" {
		return stage.Unhealthy(capabilityName, "no routing rules or default destination configured")
	}
	return stage.Healthy(capabilityName)
}
