package edamam

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoRecipes is returned when the provider answered successfully with zero hits.
var ErrNoRecipes = errors.New("no recipes found")

// ErrorKind classifies a failed provider call.
type ErrorKind string

const (
	KindRateLimit   ErrorKind = "rate_limit"
	KindClientError ErrorKind = "client_error"
	KindServerError ErrorKind = "server_error"
	KindTransport   ErrorKind = "transport"
	KindDecode      ErrorKind = "decode"
)

// ProviderError is a failed call to the recipe provider, as opposed to a
// successful call that found nothing (ErrNoRecipes).
type ProviderError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("edamam %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("edamam %s: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsProviderError reports whether err is (or wraps) a *ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// kindForStatus maps a non-2xx HTTP status to an ErrorKind.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status >= 500:
		return KindServerError
	default:
		return KindClientError
	}
}
