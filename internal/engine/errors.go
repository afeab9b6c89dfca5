package engine

import "errors"

// dependencyUnavailableError signals a runtime that was not compiled in so the
// HTTP layer can return 503 instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing runtime.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}

// invalidModelError reports an artifact that failed the GGUF preflight.
type invalidModelError struct {
	path string
	err  error
}

func (e invalidModelError) Error() string {
	return "invalid model file " + e.path + ": " + e.err.Error()
}

func (e invalidModelError) Unwrap() error { return e.err }

// IsInvalidModel reports whether err came from a failed preflight.
func IsInvalidModel(err error) bool {
	var e invalidModelError
	return errors.As(err, &e)
}
