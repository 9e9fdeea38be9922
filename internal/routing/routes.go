package routing

import "github.com/smart-review/smart-review-cli/models"

// Route is one screen of the client.
type Route struct {
	Path   string
	Title  string
	Public bool
	// Allowed is the role allow-list. Empty means any authenticated user.
	Allowed []models.Role
}

var (
	adminOnly    = []models.Role{models.RoleAdmin}
	lecturerOnly = []models.Role{models.RoleLecturer}
	studentOnly  = []models.Role{models.RoleStudent}
	everyRole    = []models.Role{models.RoleAdmin, models.RoleLecturer, models.RoleStudent}
)

var routes = []Route{
	{Path: LoginPath, Title: "Login", Public: true},

	{Path: AdminPath, Title: "Dashboard", Allowed: adminOnly},
	{Path: "/admin/semesters", Title: "Semesters", Allowed: adminOnly},
	{Path: "/admin/review-periods", Title: "Review periods", Allowed: adminOnly},
	{Path: "/admin/review-slots", Title: "Review slots", Allowed: adminOnly},
	{Path: "/admin/topics", Title: "Topics", Allowed: adminOnly},
	{Path: "/admin/tags", Title: "Tags", Allowed: adminOnly},
	{Path: "/admin/lecturers", Title: "Lecturers", Allowed: adminOnly},
	{Path: "/admin/review-sessions", Title: "Review sessions", Allowed: adminOnly},
	{Path: "/admin/scheduling", Title: "Scheduling", Allowed: adminOnly},

	{Path: LecturerPath, Title: "Dashboard", Allowed: lecturerOnly},
	{Path: StudentPath, Title: "Dashboard", Allowed: studentOnly},

	{Path: ProfilePath, Title: "Profile", Allowed: everyRole},
}

var routeIndex = func() map[string]Route {
	m := make(map[string]Route, len(routes))
	for _, r := range routes {
		m[r.Path] = r
	}
	return m
}()

// Lookup finds the route for path. "/" and unknown paths have none.
func Lookup(path string) (Route, bool) {
	r, ok := routeIndex[Clean(path)]
	return r, ok
}

// Routes returns the route table in declaration order.
func Routes() []Route {
	return append([]Route(nil), routes...)
}

// Resolve evaluates a navigation to path. Paths without a route go to login.
func Resolve(identity *models.Identity, path string) Decision {
	path = Clean(path)
	route, ok := Lookup(path)
	if !ok {
		return Decision{RedirectTo: LoginPath}
	}
	if route.Public {
		return allow()
	}
	return Evaluate(identity, route.Allowed, path)
}
