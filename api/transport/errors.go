package transport

import (
	"errors"
	"net/http"
	"strings"

	"github.com/smart-review/smart-review-cli/models"
)

var (
	// ErrUnauthorized marks a 401 response. The session has already been
	// cleared and invalidation broadcast by the time a caller sees it.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNetwork marks a request that never got a response.
	ErrNetwork = errors.New("network failure")
)

// HTTPError is a failed call that the server answered. Envelope is set when
// the body was a well-formed API envelope; it may still carry data.
type HTTPError struct {
	Message  string
	Status   int
	Errors   []string
	Envelope *models.Envelope
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if len(e.Errors) > 0 {
		msg += ": " + strings.Join(e.Errors, "; ")
	}
	return msg
}

func (e *HTTPError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// EnvelopeFrom returns the envelope attached to err, if any.
func EnvelopeFrom(err error) *models.Envelope {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Envelope
	}
	return nil
}

// FromEnvelope turns a delivered envelope with isSuccess=false into an error.
// An envelope 401 keeps the HTTP status: only Transport.Do, which has
// already invalidated the session, may report ErrUnauthorized.
func FromEnvelope(status int, env *models.Envelope) *HTTPError {
	code := env.StatusCode
	if code == 0 || code == http.StatusUnauthorized {
		code = status
	}
	return &HTTPError{
		Message:  env.Message,
		Status:   code,
		Errors:   env.Errors,
		Envelope: env,
	}
}
