// Package routing decides which screen an identity may see. The decision is
// a plain function of identity, allow-list and path; the Navigator re-runs
// it on every navigation and every session change.
package routing

import (
	"strings"

	"github.com/smart-review/smart-review-cli/models"
)

const (
	LoginPath    = "/login"
	AdminPath    = "/admin"
	LecturerPath = "/lecturer"
	StudentPath  = "/student"
	ProfilePath  = "/profile"
)

// Decision is the outcome of one guard evaluation. From is set on a
// redirect to login so the login screen can return there afterwards.
type Decision struct {
	Allow      bool
	RedirectTo string
	From       string
}

func allow() Decision { return Decision{Allow: true} }

// Evaluate grants access iff identity is set and its role is in allowed, or
// allowed is empty. Otherwise it redirects: to login when logged out, to the
// role's landing route when the role is not allowed.
func Evaluate(identity *models.Identity, allowed []models.Role, requestedPath string) Decision {
	if identity == nil || identity.IsZero() {
		return Decision{RedirectTo: LoginPath, From: requestedPath}
	}
	if len(allowed) == 0 {
		return allow()
	}
	for _, role := range allowed {
		if identity.Role == role {
			return allow()
		}
	}
	return Decision{RedirectTo: LandingRoute(identity.Role)}
}

// LandingRoute is the home screen of a role. Unknown roles land on login.
func LandingRoute(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return AdminPath
	case models.RoleLecturer:
		return LecturerPath
	case models.RoleStudent:
		return StudentPath
	default:
		return LoginPath
	}
}

// Clean normalises a requested path: leading slash, no trailing slash, no
// query string.
func Clean(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
