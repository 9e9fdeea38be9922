package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/smart-review/smart-review-cli/internal/session"
	"github.com/smart-review/smart-review-cli/models"
)

var ErrMissingCredentials = errors.New("email and password are required")

type AuthService struct {
	API     Client
	Session *session.Store
}

// Login exchanges email and password for a credential and stores it.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	env, err := s.API.Do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var resp models.LoginResponse
	if err := decodeData(env, &resp); err != nil {
		return nil, err
	}

	if err := s.Session.SetSession(resp.Token, resp.User); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout forgets the local credential. The API has no server-side logout.
func (s *AuthService) Logout() error {
	return s.Session.ClearSession()
}

// Me fetches the identity the server associates with the current token.
func (s *AuthService) Me(ctx context.Context) (*models.Identity, error) {
	env, err := s.API.Do(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var user models.Identity
	if err := decodeData(env, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
