package corelog

import (
	"errors"
)

// Sentinel errors shared across pipelines. Individual pipelines wrap these
// with fmt.Errorf("...: %w", ErrX) to attach context.
var (
	ErrInputIO            = errors.New("input io")
	ErrDecode             = errors.New("decode")
	ErrReferentialMissing = errors.New("referential missing")
	ErrShaderLinkMismatch = errors.New("shader link mismatch")
	ErrCollision          = errors.New("collision")
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrInvalidCommand     = errors.New("invalid command")
	ErrMissingFlag        = errors.New("missing flag")
	ErrUnknown            = errors.New("unknown")
)
