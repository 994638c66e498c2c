package hooks

import (
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
)

// Re-exported so callers can match hook failures without importing pkg/errors.
var (
	ErrHookExecution = errors.ErrHookExecution
	ErrHookScript    = errors.ErrHookScript
)
