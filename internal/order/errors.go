package order

import (
	"errors"
	"fmt"
)

// InvariantCode categorizes invariant violations.
type InvariantCode string

const (
	// ErrCodeDeleteOperand: the delete domain reached combine as the
	// second operand.
	ErrCodeDeleteOperand InvariantCode = "DELETE_AS_OPERAND"

	// ErrCodeNotCanonical: a domain that must be interned is not.
	ErrCodeNotCanonical InvariantCode = "NOT_CANONICAL"

	// ErrCodeComboDomain: a combinational trigger set reached the pass.
	ErrCodeComboDomain InvariantCode = "COMBO_DOMAIN"

	// ErrCodeUnresolvedSource: a source vertex was read before it was
	// assigned, i.e. the graph is not in dependency order.
	ErrCodeUnresolvedSource InvariantCode = "UNRESOLVED_SOURCE"

	// ErrCodeNotDeleted: logic queued for removal no longer has the delete
	// domain.
	ErrCodeNotDeleted InvariantCode = "NOT_DELETED"
)

// InvariantError reports a broken internal invariant or a violated
// precondition from an earlier pass. It is never recoverable: the
// compilation is aborted.
type InvariantError struct {
	Code    InvariantCode
	Message string

	// Vertex names the vertex being processed, if any.
	Vertex string

	// Signal names the signal involved, if any.
	Signal string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	switch {
	case e.Vertex != "" && e.Signal != "":
		return fmt.Sprintf("internal error: %s: %s (vertex=%s, signal=%s)", e.Code, e.Message, e.Vertex, e.Signal)
	case e.Vertex != "":
		return fmt.Sprintf("internal error: %s: %s (vertex=%s)", e.Code, e.Message, e.Vertex)
	default:
		return fmt.Sprintf("internal error: %s: %s", e.Code, e.Message)
	}
}

// IsInvariantError returns true if err is or wraps an InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// ResourceError reports a diagnostic file that could not be written.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("can't write file: %s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}
