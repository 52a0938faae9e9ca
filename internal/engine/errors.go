package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNilExpr is returned when no expression is given.
	ErrNilExpr = errors.New("nil expression")

	// ErrTooDeep is returned when a tree exceeds Options.MaxDepth.
	ErrTooDeep = errors.New("expression too deep")

	// ErrUnknownMode is returned for a mode name other than faithful or normalize.
	ErrUnknownMode = errors.New("unknown mode")
)

// DepthError reports a tree deeper than the configured limit.
type DepthError struct {
	Depth int
	Limit int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("expression depth %d exceeds limit %d", e.Depth, e.Limit)
}

func (e *DepthError) Unwrap() error {
	return ErrTooDeep
}
