package distance

import (
	"errors"
	"fmt"
)

// Error categories. Precondition and numerical errors are fatal;
// a missing cache is recoverable by rebuilding the table.
var (
	ErrPrecondition  = errors.New("precondition failed")
	ErrUnknownMetric = errors.New("unknown distance metric")
	ErrUnreachable   = errors.New("no edge path between vertices")
	ErrCacheNotFound = errors.New("distance cache not found")
)

// ShapeError reports a distance table whose size does not match the
// mesh and marker set it is used with.
type ShapeError struct {
	Vertices int
	Markers  int
	cause    error
}

func (e *ShapeError) Error() string {
	msg := fmt.Sprintf("distance table shape mismatch: expected %d x %d values", e.Vertices, e.Markers)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ShapeError) Unwrap() error { return e.cause }

// Is makes every ShapeError match ErrPrecondition.
func (e *ShapeError) Is(target error) bool { return target == ErrPrecondition }

// UnreachableError reports two vertices with no connecting edge path.
type UnreachableError struct {
	From, To int
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("no edge path between vertex %d and vertex %d (disconnected mesh?)", e.From, e.To)
}

func (e *UnreachableError) Unwrap() error { return ErrUnreachable }
