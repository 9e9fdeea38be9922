// Package transport is the single HTTP access point of the client. It stamps
// the current bearer token on every request and turns a 401 anywhere into a
// cleared session plus one invalidation broadcast.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/smart-review/smart-review-cli/internal/signal"
	"github.com/smart-review/smart-review-cli/models"
)

// CredentialSource is the part of the session store the transport needs.
type CredentialSource interface {
	Token() string
	ClearSession() error
}

type Transport struct {
	BaseURL     string
	HTTPClient  *http.Client
	Session     CredentialSource
	Invalidated *signal.Signal
}

func New(baseURL string, timeout time.Duration, session CredentialSource, invalidated *signal.Signal) *Transport {
	return &Transport{
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		HTTPClient:  &http.Client{Timeout: timeout},
		Session:     session,
		Invalidated: invalidated,
	}
}

// Do sends body as JSON and decodes the response envelope. The returned
// envelope is nil only when the server sent no readable envelope. Non-2xx
// statuses come back as *HTTPError; the envelope is also attached to it.
func (t *Transport) Do(ctx context.Context, method, path string, body interface{}) (*models.Envelope, error) {
	requestID := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Logger()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	// Read per call, so a login or logout is seen by the very next request.
	if token := t.Session.Token(); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	start := time.Now()
	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("request failed")
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	logger = logger.With().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Logger()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read response body")
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrNetwork, err)
	}

	env := decodeEnvelope(respBody)

	// Some endpoints answer 200 with the rejection only in the envelope.
	if resp.StatusCode == http.StatusUnauthorized || (env != nil && env.StatusCode == http.StatusUnauthorized) {
		t.invalidate(logger)
		httpErr := &HTTPError{Message: "session is no longer valid", Status: http.StatusUnauthorized, Envelope: env}
		if env != nil {
			if env.Message != "" {
				httpErr.Message = env.Message
			}
			httpErr.Errors = env.Errors
		}
		return env, httpErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn().Msg("request returned an error status")
		httpErr := &HTTPError{Status: resp.StatusCode, Envelope: env}
		if env != nil {
			httpErr.Message = env.Message
			httpErr.Errors = env.Errors
		} else {
			httpErr.Message = strings.TrimSpace(string(respBody))
		}
		return env, httpErr
	}

	logger.Debug().Msg("request completed")
	if env == nil {
		return nil, &HTTPError{Message: "response is not a valid envelope", Status: resp.StatusCode}
	}
	return env, nil
}

// invalidate clears the credential and raises the signal once for this
// response, however many consumers are listening.
func (t *Transport) invalidate(logger zerolog.Logger) {
	if err := t.Session.ClearSession(); err != nil {
		logger.Error().Err(err).Msg("failed to clear session after 401")
	}
	if t.Invalidated == nil {
		logger.Warn().Msg("session invalidated by server")
		return
	}
	reached := t.Invalidated.Raise()
	logger.Warn().Str("signal", t.Invalidated.Name()).Int("consumers", reached).Msg("session invalidated by server")
}

func decodeEnvelope(body []byte) *models.Envelope {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var env models.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	return &env
}
