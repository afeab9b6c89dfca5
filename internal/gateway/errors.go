package gateway

import (
	"errors"
	"net/http"
)

// notFoundError is returned when a model name is absent from the directory scan.
type notFoundError struct{ msg string }

func (e notFoundError) Error() string   { return e.msg }
func (e notFoundError) StatusCode() int { return http.StatusNotFound }

// IsNotFound reports whether err is a model-not-found error.
func IsNotFound(err error) bool {
	var t notFoundError
	return errors.As(err, &t)
}

// invalidInputError covers unsupported options, disallowed repositories and
// malformed requests.
type invalidInputError struct{ msg string }

func (e invalidInputError) Error() string   { return e.msg }
func (e invalidInputError) StatusCode() int { return http.StatusBadRequest }

// IsInvalidInput reports whether err is a client input error.
func IsInvalidInput(err error) bool {
	var t invalidInputError
	return errors.As(err, &t)
}

// upstreamError wraps a native inference, tokenization or load failure.
type upstreamError struct {
	msg string
	err error
}

func (e upstreamError) Error() string   { return e.msg }
func (e upstreamError) Unwrap() error   { return e.err }
func (e upstreamError) StatusCode() int { return http.StatusInternalServerError }

// IsUpstream reports whether err is an upstream failure.
func IsUpstream(err error) bool {
	var t upstreamError
	return errors.As(err, &t)
}

// unavailableError is returned when the server was built without the native runtime.
type unavailableError struct {
	msg string
	err error
}

func (e unavailableError) Error() string   { return e.msg }
func (e unavailableError) Unwrap() error   { return e.err }
func (e unavailableError) StatusCode() int { return http.StatusServiceUnavailable }

// IsUnavailable reports whether err signals a missing runtime dependency.
func IsUnavailable(err error) bool {
	var t unavailableError
	return errors.As(err, &t)
}
