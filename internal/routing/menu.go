package routing

import "github.com/smart-review/smart-review-cli/models"

type MenuItem struct {
	Path  string
	Label string
}

var menus = map[models.Role][]MenuItem{
	models.RoleAdmin: {
		{Path: AdminPath, Label: "Dashboard"},
		{Path: "/admin/semesters", Label: "Semesters"},
		{Path: "/admin/review-periods", Label: "Review periods"},
		{Path: "/admin/review-slots", Label: "Review slots"},
		{Path: "/admin/topics", Label: "Topics"},
		{Path: "/admin/tags", Label: "Tags"},
		{Path: "/admin/lecturers", Label: "Lecturers"},
		{Path: "/admin/review-sessions", Label: "Review sessions"},
		{Path: "/admin/scheduling", Label: "Scheduling"},
	},
	models.RoleLecturer: {
		{Path: LecturerPath, Label: "Dashboard"},
	},
	models.RoleStudent: {
		{Path: StudentPath, Label: "Dashboard"},
	},
}

// Menu returns the navigation menu of a role. Unknown roles get the student
// menu.
func Menu(role models.Role) []MenuItem {
	items, ok := menus[role]
	if !ok {
		items = menus[models.RoleStudent]
	}
	return append([]MenuItem(nil), items...)
}
