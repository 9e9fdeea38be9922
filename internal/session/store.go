// Package session owns the credential of the logged-in user. It is the only
// writer of the persisted credential entries.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/smart-review/smart-review-cli/internal/signal"
	"github.com/smart-review/smart-review-cli/models"
)

var ErrInvalidCredential = errors.New("token and identity must both be set")

// Store is the single source of truth for who is logged in. Every mutation
// is written through to Storage before it returns.
type Store struct {
	storage Storage
	log     *zerolog.Logger
	changed *signal.Signal

	mu   sync.RWMutex
	cred models.Credential
}

func NewStore(storage Storage, log *zerolog.Logger) *Store {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Store{
		storage: storage,
		log:     log,
		changed: signal.New("session-changed"),
	}
}

// Rehydrate loads a previously persisted credential. It must run before the
// first screen renders. A half-written credential is discarded.
func (s *Store) Rehydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, tokenErr := s.storage.Get(TokenKey)
	user, userErr := s.storage.Get(UserKey)

	if errors.Is(tokenErr, ErrNotFound) && errors.Is(userErr, ErrNotFound) {
		s.cred = models.Credential{}
		return nil
	}
	if tokenErr != nil && !errors.Is(tokenErr, ErrNotFound) {
		return tokenErr
	}
	if userErr != nil && !errors.Is(userErr, ErrNotFound) {
		return userErr
	}

	var cred models.Credential
	if tokenErr == nil && userErr == nil {
		cred.Token = string(token)
		if err := json.Unmarshal(user, &cred.User); err != nil {
			s.log.Warn().Err(err).Msg("persisted identity is unreadable")
			cred = models.Credential{}
		}
	}

	if !cred.Valid() {
		s.log.Warn().Msg("discarding incomplete persisted session")
		s.cred = models.Credential{}
		return s.removeEntries()
	}

	s.cred = cred
	s.log.Debug().Str("email", cred.User.Email).Str("role", string(cred.User.Role)).
		Msg("session rehydrated")
	return nil
}

// SetSession stores the token and identity together. The identity is
// persisted before the token, so an interrupted write rehydrates as logged
// out rather than as a token without an owner.
func (s *Store) SetSession(token string, user models.Identity) error {
	cred := models.Credential{Token: token, User: user}
	if !cred.Valid() {
		return ErrInvalidCredential
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}

	s.mu.Lock()
	if err := s.storage.Set(UserKey, data); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.storage.Set(TokenKey, []byte(token)); err != nil {
		cleared := s.rollback()
		s.mu.Unlock()
		if cleared {
			s.changed.Raise()
		}
		return err
	}
	s.cred = cred
	s.mu.Unlock()

	s.log.Debug().Str("email", user.Email).Str("role", string(user.Role)).Msg("session set")
	s.changed.Raise()
	return nil
}

// rollback puts the identity entry back in step with the token entry after a
// failed token write, which leaves the previous token in place. It reports
// whether the previous credential had to be dropped. Callers hold s.mu.
func (s *Store) rollback() bool {
	if s.cred.Token == "" {
		_ = s.storage.Remove(UserKey)
		return false
	}
	if data, err := json.Marshal(s.cred.User); err == nil {
		if err := s.storage.Set(UserKey, data); err == nil {
			return false
		}
	}
	s.log.Warn().Msg("could not restore previous identity, clearing session")
	s.cred = models.Credential{}
	_ = s.removeEntries()
	return true
}

// ClearSession forgets the credential. Clearing an empty store is a no-op.
func (s *Store) ClearSession() error {
	s.mu.Lock()
	wasSet := s.cred.Token != ""
	s.cred = models.Credential{}
	err := s.removeEntries()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if wasSet {
		s.log.Debug().Msg("session cleared")
		s.changed.Raise()
	}
	return nil
}

// removeEntries drops the token first for the same reason SetSession writes
// it last. Callers hold s.mu.
func (s *Store) removeEntries() error {
	if err := s.storage.Remove(TokenKey); err != nil {
		return err
	}
	return s.storage.Remove(UserKey)
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.Token != ""
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.Token
}

// Identity returns the current identity, or nil when logged out.
func (s *Store) Identity() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred.Token == "" {
		return nil
	}
	user := s.cred.User
	return &user
}

func (s *Store) Credential() models.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

// Subscribe registers fn to run after every change of the logged-in
// identity.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	return s.changed.Subscribe(fn)
}
