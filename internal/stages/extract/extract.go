package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"docflow/internal/config"
	"docflow/internal/logging"
	"docflow/internal/services"
	"docflow/internal/stage"
)

const capabilityName = "extract"

var (
	datePattern   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	amountPattern = regexp.MustCompile(`(?:\$|USD\s?)\d[\d,]*(?:\.\d{2})?`)
	emailPattern  = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// Capability reads document content from the locator and derives structured
// entities from it. Invocations are pure: the same locator contents always
// yield the same result.
type Capability struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewCapability constructs the default extract capability.
func NewCapability(cfg *config.Config, logger *slog.Logger) *Capability {
	return &Capability{cfg: cfg, logger: logging.NewComponentLogger(logger, capabilityName)}
}

func (c *Capability) Name() string { return capabilityName }

func (c *Capability) Invoke(ctx context.Context, in stage.Input) (stage.Result, error) {
	logger := logging.WithContext(ctx, c.logger)

	if strings.TrimSpace(in.Locator) == "" {
		return stage.Result{}, services.Wrap(
			services.ErrValidation, capabilityName, "validate inputs",
			"Document has no locator; re-ingest it with a readable source path", nil)
	}

	data, err := os.ReadFile(in.Locator)
	if err != nil {
		return stage.Result{}, services.Wrap(
			services.ErrStageFailure, capabilityName, "read source",
			fmt.Sprintf("Could not read document source %s", in.Locator), err)
	}
	if !utf8.Valid(data) {
		return stage.Result{}, services.Wrap(
			services.ErrStageFailure, capabilityName, "decode source",
			fmt.Sprintf("Document source %s is not valid UTF-8 text", in.Locator), nil)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return stage.Result{}, services.Wrap(
			services.ErrValidation, capabilityName, "validate content",
			fmt.Sprintf("Document source %s is empty", in.Locator), nil)
	}

	entities := deriveEntities(text)
	logger.Info("extraction complete",
		logging.String(logging.FieldDocumentID, in.ID),
		logging.Int("characters", len(text)),
		logging.Int("entities", len(entities)),
	)

	return stage.Result{
		ExtractedText: text,
		Entities:      entities,
		Message:       fmt.Sprintf("extracted %d characters", len(text)),
	}, nil
}

func (c *Capability) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(capabilityName)
}

// deriveEntities pulls dates, amounts, addresses, and frequent words from the
// text. Results are sorted so repeat extractions compare equal.
func deriveEntities(text string) map[string]any {
	entities := make(map[string]any)
	if dates := uniqueMatches(datePattern, text); len(dates) > 0 {
		entities["dates"] = dates
	}
	if amounts := uniqueMatches(amountPattern, text); len(amounts) > 0 {
		entities["amounts"] = amounts
	}
	if emails := uniqueMatches(emailPattern, text); len(emails) > 0 {
		entities["emails"] = emails
	}
	if keywords := frequentWords(text, 5); len(keywords) > 0 {
		entities["keywords"] = keywords
	}
	return entities
}

func uniqueMatches(pattern *regexp.Regexp, text string) []any {
	seen := make(map[string]struct{})
	var out []any
	for _, match := range pattern.FindAllString(text, -1) {
		if _, ok := seen[match]; ok {
			continue
		}
		seen[match] = struct{}{}
		out = append(out, match)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].(string) < out[j].(string) })
	return out
}

func frequentWords(text string, limit int) []any {
	counts := make(map[string]int)
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(field, `.,;:!?"'()[]{}`)
		if len(word) < 5 {
			continue
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > limit {
		words = words[:limit]
	}
	out := make([]any, len(words))
	for i, word := range words {
		out[i] = word
	}
	return out
}
