package edgeset

import "github.com/pkg/errors"

// Errors returned by edge set operations. They are wrapped with the
// offending handle; test with errors.Is.
var (
	ErrInvalidHandle = errors.New("invalid or deleted handle")
	ErrPrecondition  = errors.New("precondition violated")
	ErrBrokenFan     = errors.New("vertex fan does not close")
)
