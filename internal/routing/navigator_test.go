package routing

import (
	"context"
	"testing"
	"time"

	"github.com/smart-review/smart-review-cli/api/services"
	"github.com/smart-review/smart-review-cli/api/transport"
	"github.com/smart-review/smart-review-cli/internal/apitest"
	"github.com/smart-review/smart-review-cli/internal/session"
	"github.com/smart-review/smart-review-cli/internal/signal"
	"github.com/smart-review/smart-review-cli/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigator_LoggedOutGoesToLogin(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage(), nil)
	nav := NewNavigator(store, nil, nil, "/admin/scheduling")
	defer nav.Close()

	assert.Equal(t, LoginPath, nav.Current())
	assert.Equal(t, "/admin/scheduling", nav.ReturnTo())
	assert.Nil(t, nav.Menu())
}

func TestNavigator_FollowsIdentityChanges(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage(), nil)
	nav := NewNavigator(store, nil, nil, "/profile")
	defer nav.Close()

	var seen []string
	nav.Watch(func(path string) { seen = append(seen, path) })

	require.NoError(t, store.SetSession("token", *identity(models.RoleLecturer)))
	nav.AfterLogin()
	assert.Equal(t, ProfilePath, nav.Current())

	d := nav.Navigate("/admin")
	assert.Equal(t, Decision{RedirectTo: LecturerPath}, d)
	assert.Equal(t, LecturerPath, nav.Current())

	require.NoError(t, store.ClearSession())
	assert.Equal(t, LoginPath, nav.Current())
	assert.Equal(t, LecturerPath, nav.ReturnTo())

	assert.Equal(t, []string{ProfilePath, LecturerPath, LoginPath}, seen)
}

func TestNavigator_CloseStopsFollowing(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage(), nil)
	require.NoError(t, store.SetSession("token", *identity(models.RoleStudent)))

	nav := NewNavigator(store, nil, nil, "/student")
	nav.Close()

	require.NoError(t, store.ClearSession())
	assert.Equal(t, StudentPath, nav.Current())
}

func TestScenario_AdminLoginLandsOnAdmin(t *testing.T) {
	server := apitest.NewSeededServer()
	defer server.Close()

	store := session.NewStore(session.NewMemoryStorage(), nil)
	invalidated := signal.New("session-invalidated")
	svc := services.New(transport.New(server.URL, 5*time.Second, store, invalidated), store)

	nav := NewNavigator(store, invalidated, nil, LoginPath)
	defer nav.Close()

	_, err := svc.Auth.Login(context.Background(), apitest.Admin.Email, apitest.Password)
	require.NoError(t, err)

	d := nav.AfterLogin()
	assert.True(t, d.Allow)
	assert.Equal(t, "/admin", nav.Current())
	assert.Len(t, nav.Menu(), 9)
}

func TestScenario_ServerRejectsStoredToken(t *testing.T) {
	server := apitest.NewSeededServer()
	defer server.Close()

	// A token persisted by an earlier run.
	dir := t.TempDir()
	storage, err := session.NewFileStorage(dir)
	require.NoError(t, err)
	first := session.NewStore(storage, nil)
	require.NoError(t, first.SetSession(server.IssueToken(apitest.Admin), apitest.Admin))

	store := session.NewStore(storage, nil)
	require.NoError(t, store.Rehydrate())
	require.True(t, store.IsAuthenticated())

	invalidated := signal.New("session-invalidated")
	var broadcasts int
	invalidated.Subscribe(func() { broadcasts++ })

	svc := services.New(transport.New(server.URL, 5*time.Second, store, invalidated), store)
	nav := NewNavigator(store, invalidated, nil, "/admin/scheduling")
	defer nav.Close()
	require.Equal(t, "/admin/scheduling", nav.Current())

	server.RevokeTokens()
	_, err = svc.Auth.Me(context.Background())
	assert.ErrorIs(t, err, transport.ErrUnauthorized)

	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, 1, broadcasts)
	assert.Equal(t, LoginPath, nav.Current())
	assert.Equal(t, "/admin/scheduling", nav.ReturnTo())

	// Nothing is left for the next process to rehydrate.
	again := session.NewStore(storage, nil)
	require.NoError(t, again.Rehydrate())
	assert.False(t, again.IsAuthenticated())

	// Logging back in returns to the interrupted screen.
	_, err = svc.Auth.Login(context.Background(), apitest.Admin.Email, apitest.Password)
	require.NoError(t, err)
	nav.AfterLogin()
	assert.Equal(t, "/admin/scheduling", nav.Current())
}
