package manager

import "errors"

// loadFailedError wraps a construction failure. The cache is unchanged.
type loadFailedError struct {
	path string
	err  error
}

func (e loadFailedError) Error() string { return "load " + e.path + ": " + e.err.Error() }

func (e loadFailedError) Unwrap() error { return e.err }

// IsLoadFailed reports whether err came from a failed handle construction.
func IsLoadFailed(err error) bool {
	var e loadFailedError
	return errors.As(err, &e)
}

// ErrClosed is returned by loads attempted after Close.
var ErrClosed = errors.New("model manager closed")

// IsClosed reports whether err indicates a closed manager.
func IsClosed(err error) bool { return errors.Is(err, ErrClosed) }

// errUnstable is returned when a handle keeps disappearing between load and use.
var errUnstable = errors.New("model was unloaded repeatedly while acquiring")
