package stage

import (
	"strings"

	"docflow/internal/registry"
)

// Kind identifies one of the three processing stages.
type Kind string

const (
	KindExtract  Kind = "extract"
	KindClassify Kind = "classify"
	KindRoute    Kind = "route"
)

// Kinds lists the stages in pipeline order.
func Kinds() []Kind {
	return []Kind{KindExtract, KindClassify, KindRoute}
}

// ParseKind normalizes a user-supplied stage name.
func ParseKind(value string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindExtract:
		return KindExtract, true
	case KindClassify:
		return KindClassify, true
	case KindRoute:
		return KindRoute, true
	default:
		return "", false
	}
}

// DoneStatus returns the document status a successful run of this stage
// transitions to.
func (k Kind) DoneStatus() registry.Status {
	switch k {
	case KindExtract:
		return registry.StatusExtracted
	case KindClassify:
		return registry.StatusClassified
	case KindRoute:
		return registry.StatusRouted
	default:
		return ""
	}
}

// ForStatus returns the stage the automatic pipeline runs next for a
// document at the given status. Routed and human-intervention documents have
// no next stage.
func ForStatus(status registry.Status) (Kind, bool) {
	switch status {
	case registry.StatusIngested:
		return KindExtract, true
	case registry.StatusExtracted:
		return KindClassify, true
	case registry.StatusClassified:
		return KindRoute, true
	default:
		return "", false
	}
}

func (k Kind) String() string { return string(k) }
