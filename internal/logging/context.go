package logging

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	documentKey contextKey = "document_id"
	stageKey    contextKey = "stage"
	requestKey  contextKey = "request_id"
)

// WithDocument annotates ctx with a document identifier.
func WithDocument(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, documentKey, id)
}

// WithStage annotates ctx with a stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// WithRequest annotates ctx with a stage invocation identifier.
func WithRequest(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestKey, id)
}

// ContextFields extracts the logging attributes carried by ctx.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	var fields []Attr
	if v, ok := ctx.Value(documentKey).(string); ok && v != "" {
		fields = append(fields, String(FieldDocumentID, v))
	}
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		fields = append(fields, String(FieldStage, v))
	}
	if v, ok := ctx.Value(requestKey).(string); ok && v != "" {
		fields = append(fields, String(FieldRequestID, v))
	}
	return fields
}

// WithContext returns a logger pre-populated with the attributes carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
