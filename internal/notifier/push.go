package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docflow/internal/config"
)

const userAgent = "Docflow-Go/0.1.0"

// Push defines the external notification surface exposed to the workflow.
type Push interface {
	NotifyDocumentRouted(ctx context.Context, name, destination string) error
	NotifyIntervention(ctx context.Context, name, stageName, reason string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewPush builds a push service backed by ntfy when configured. When no ntfy
// topic is configured, a noop implementation is returned.
func NewPush(cfg *config.Config) Push {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopPush{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyPush{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		routed:       cfg.Notifications.Routed,
		intervention: cfg.Notifications.Intervention,
		errors:       cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyPush struct {
	endpoint     string
	client       *http.Client
	routed       bool
	intervention bool
	errors       bool
}

func (n *ntfyPush) NotifyDocumentRouted(ctx context.Context, name, destination string) error {
	if !n.routed {
		return nil
	}
	name = strings.TrimSpace(name)
	destination = strings.TrimSpace(destination)
	data := payload{
		title:   "Docflow - Routed",
		message: fmt.Sprintf("Delivered %s to %s", name, destination),
		tags:    []string{"docflow", "route", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyPush) NotifyIntervention(ctx context.Context, name, stageName, reason string) error {
	if !n.intervention {
		return nil
	}
	name = strings.TrimSpace(name)
	stageName = strings.TrimSpace(stageName)
	message := fmt.Sprintf("%s needs attention after %s", name, stageName)
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\n%s", message, reason)
	}
	data := payload{
		title:    "Docflow - Intervention Required",
		message:  message,
		tags:     []string{"docflow", "intervention", "review"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyPush) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Docflow - Error",
		message:  builder.String(),
		tags:     []string{"docflow", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyPush) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Docflow - Test",
		message:  "Notification system test",
		tags:     []string{"docflow", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyPush) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopPush struct{}

func (noopPush) NotifyDocumentRouted(context.Context, string, string) error       { return nil }
func (noopPush) NotifyIntervention(context.Context, string, string, string) error { return nil }
func (noopPush) NotifyError(context.Context, error, string) error                 { return nil }
func (noopPush) TestNotification(context.Context) error                           { return nil }
