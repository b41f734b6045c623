package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrStageFailure = errors.New("stage failure")
	ErrTimeout      = errors.New("timeout")
	ErrTransient    = errors.New("transient failure")
)

// Wrap builds an error that includes stage context while tagging it with the
// provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &classifiedError{
		marker:    marker,
		stage:     strings.TrimSpace(stage),
		operation: strings.TrimSpace(operation),
		message:   strings.TrimSpace(message),
		err:       err,
	}
}

// classifiedError keeps the wrapped components apart so Message can surface
// the operator-facing detail without the stage/operation context.
type classifiedError struct {
	marker    error
	stage     string
	operation string
	message   string
	err       error
}

func (e *classifiedError) Error() string {
	detail := buildDetail(e.stage, e.operation, e.message)
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %s", e.marker.Error(), detail, e.err.Error())
	}
	return fmt.Sprintf("%s: %s", e.marker.Error(), detail)
}

func (e *classifiedError) Unwrap() []error {
	if e.err != nil {
		return []error{e.marker, e.err}
	}
	return []error{e.marker}
}

// Kind returns the wire-level classification string for an error.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrStageFailure):
		return "stage_failure"
	default:
		return "transient"
	}
}

// IsNotFound reports whether err indicates a missing document. NotFound never
// causes a state transition; it is surfaced to the immediate caller.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Message extracts the human-readable portion of a classified error, with the
// sentinel and stage/operation context stripped so the text is suitable for a
// document's message map.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var classified *classifiedError
	if errors.As(err, &classified) {
		if classified.message != "" {
			return classified.message
		}
		if classified.err != nil {
			return Message(classified.err)
		}
		return buildDetail(classified.stage, classified.operation, "")
	}
	text := strings.TrimSpace(err.Error())
	for _, marker := range []error{ErrNotFound, ErrValidation, ErrStageFailure, ErrTimeout, ErrTransient} {
		if errors.Is(err, marker) {
			prefix := marker.Error() + ": "
			if strings.HasPrefix(text, prefix) {
				return strings.TrimSpace(strings.TrimPrefix(text, prefix))
			}
		}
	}
	return text
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
