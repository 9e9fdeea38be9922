package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/smart-review/smart-review-cli/api/transport"
	"github.com/smart-review/smart-review-cli/internal/session"
	"github.com/smart-review/smart-review-cli/models"
)

// Client is the authenticated access point every service talks through.
type Client interface {
	Do(ctx context.Context, method, path string, body interface{}) (*models.Envelope, error)
}

// Service contains all shared dependencies of the screens.
type Service struct {
	Auth       *AuthService
	Scheduling *SchedulingService
	Periods    *ReviewPeriodService
	Sessions   *ReviewSessionService
}

func New(api Client, store *session.Store) *Service {
	return &Service{
		Auth:       &AuthService{API: api, Session: store},
		Scheduling: &SchedulingService{API: api},
		Periods:    &ReviewPeriodService{API: api},
		Sessions:   &ReviewSessionService{API: api},
	}
}

// decodeData unwraps a delivered envelope into v, treating isSuccess=false
// as a business-rule failure.
func decodeData(env *models.Envelope, v interface{}) error {
	if !env.IsSuccess {
		return transport.FromEnvelope(http.StatusOK, env)
	}
	if err := env.Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
