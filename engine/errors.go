package engine

import (
	"fmt"

	"github.com/cortexmesh/cortexmesh/core"
)

// Configuration error codes, used to categorize wiring construction failures.
const (
	// CodeUnknownLinkType marks a link type absent from the policy catalog.
	CodeUnknownLinkType = "UNKNOWN_LINK_TYPE"
	// CodeInvalidParams marks a parameter blob the policy could not parse.
	CodeInvalidParams = "INVALID_PARAMS"
	// CodeDuplicateLink marks a second link from the same source output.
	CodeDuplicateLink = "DUPLICATE_LINK"
	// CodeUnknownPort marks a region, input or output name that does not resolve.
	CodeUnknownPort = "UNKNOWN_PORT"
	// CodeNoConvergence marks a dimension fixed point the driver could not reach.
	CodeNoConvergence = "NO_CONVERGENCE"
)

// ConfigurationError reports an illegal graph construction. These errors are
// fatal to graph construction and never retried.
type ConfigurationError struct {
	Code    string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("configuration error [%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// NewConfigurationError creates a ConfigurationError with the given code.
func NewConfigurationError(code, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// DimensionError reports irreconcilable induced shapes, at a link or at an
// input aggregating multiple links. Once a dimension is fixed, re-fixing it
// to an incompatible value is a defect, not a state transition.
type DimensionError struct {
	Context string // the port or link the conflict surfaced at
	Have    core.Dimensions
	Want    core.Dimensions
	Reason  string // optional detail when the conflict is not a plain have/want pair
}

func (e *DimensionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("dimension conflict at %s: %s", e.Context, e.Reason)
	}
	return fmt.Sprintf("dimension conflict at %s: have %s, want %s", e.Context, e.Have, e.Want)
}

// NewDimensionError creates a DimensionError for the given context.
func NewDimensionError(context string, have, want core.Dimensions) *DimensionError {
	return &DimensionError{Context: context, Have: have.Clone(), Want: want.Clone()}
}

// StateError reports an operation invoked in a lifecycle state that forbids
// it, such as wiring mutation after initialization or preparing an
// uninitialized input.
type StateError struct {
	Op     string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("illegal state in %s: %s", e.Op, e.Reason)
}

// NewStateError creates a StateError for the given operation.
func NewStateError(op, format string, args ...any) *StateError {
	return &StateError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
