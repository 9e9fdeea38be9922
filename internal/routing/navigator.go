package routing

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/smart-review/smart-review-cli/internal/signal"
	"github.com/smart-review/smart-review-cli/models"
)

// IdentitySource is the part of the session store the Navigator reads.
type IdentitySource interface {
	Identity() *models.Identity
	Subscribe(fn func()) (unsubscribe func())
}

// Navigator tracks the current screen and keeps it consistent with the
// session: every navigation and every identity change runs the guard.
type Navigator struct {
	session IdentitySource
	log     *zerolog.Logger
	moved   *signal.Signal

	mu      sync.Mutex
	current string
	from    string
	unsubs  []func()
}

// NewNavigator starts at path and follows session changes and invalidation
// broadcasts until Close.
func NewNavigator(session IdentitySource, invalidated *signal.Signal, log *zerolog.Logger, path string) *Navigator {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	n := &Navigator{
		session: session,
		log:     log,
		moved:   signal.New("navigation"),
	}
	n.unsubs = append(n.unsubs, session.Subscribe(n.recheck))
	if invalidated != nil {
		n.unsubs = append(n.unsubs, invalidated.Subscribe(n.recheck))
	}
	n.Navigate(path)
	return n
}

// Navigate moves to path, following guard redirects to a screen the current
// identity may see. The first decision is returned.
func (n *Navigator) Navigate(path string) Decision {
	n.mu.Lock()
	decision, changed := n.navigateLocked(path)
	n.mu.Unlock()

	if changed {
		n.moved.Raise()
	}
	return decision
}

func (n *Navigator) navigateLocked(path string) (Decision, bool) {
	identity := n.session.Identity()
	path = Clean(path)
	previous := n.current

	first := Resolve(identity, path)
	decision := first
	// Redirect targets are always reachable, so this settles in two steps.
	for i := 0; !decision.Allow && i < 3; i++ {
		if decision.RedirectTo == LoginPath && decision.From != "" {
			n.from = decision.From
		}
		n.log.Debug().Str("path", path).Str("redirect_to", decision.RedirectTo).Msg("navigation redirected")
		path = decision.RedirectTo
		decision = Resolve(identity, path)
	}
	n.current = path
	return first, previous != path
}

// recheck re-runs the guard for the current screen.
func (n *Navigator) recheck() {
	n.mu.Lock()
	decision, changed := n.navigateLocked(n.current)
	current := n.current
	n.mu.Unlock()

	if !decision.Allow {
		n.log.Info().Str("path", current).Msg("session changed, screen re-routed")
	}
	if changed {
		n.moved.Raise()
	}
}

// AfterLogin navigates to the screen that sent the user to login, or to
// the landing route of the new identity.
func (n *Navigator) AfterLogin() Decision {
	n.mu.Lock()
	target := n.from
	n.from = ""
	identity := n.session.Identity()
	n.mu.Unlock()

	if target == "" || target == LoginPath {
		if identity == nil {
			return n.Navigate(LoginPath)
		}
		target = LandingRoute(identity.Role)
	}
	return n.Navigate(target)
}

func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// ReturnTo is the path login will go back to, if any.
func (n *Navigator) ReturnTo() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.from
}

// Menu is the menu of the current identity.
func (n *Navigator) Menu() []MenuItem {
	identity := n.session.Identity()
	if identity == nil {
		return nil
	}
	return Menu(identity.Role)
}

// Watch calls fn after every change of the current screen.
func (n *Navigator) Watch(fn func(path string)) (unsubscribe func()) {
	return n.moved.Subscribe(func() { fn(n.Current()) })
}

// Close stops following the session.
func (n *Navigator) Close() {
	n.mu.Lock()
	unsubs := n.unsubs
	n.unsubs = nil
	n.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}
