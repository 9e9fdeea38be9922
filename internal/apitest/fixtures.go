package apitest

import "github.com/smart-review/smart-review-cli/models"

const Password = "correct-horse"

var (
	Admin    = models.Identity{ID: 1, Email: "admin@example.com", FullName: "Ada Admin", Role: models.RoleAdmin}
	Lecturer = models.Identity{ID: 2, Email: "lecturer@example.com", FullName: "Linh Lecturer", Role: models.RoleLecturer, LecturerCode: "GV01"}
	Student  = models.Identity{ID: 3, Email: "student@example.com", FullName: "Sam Student", Role: models.RoleStudent, StudentCode: "SV01"}
)

// NewSeededServer returns a server with one account per role, all using
// Password, and a single open review period with id 5.
func NewSeededServer() *Server {
	s := NewServer()
	for _, u := range []models.Identity{Admin, Lecturer, Student} {
		s.AddAccount(Password, u)
	}
	s.AddPeriod(models.ReviewPeriod{
		ID:           5,
		SemesterID:   1,
		SemesterName: "Spring 2026",
		Name:         "Round 1 review",
		ReviewRound:  1,
		StartDate:    "2026-03-02",
		EndDate:      "2026-03-13",
		Status:       models.PeriodOpen,
		CouncilSize:  3,
	})
	return s
}

// SuccessResult is a fully scheduled run with two sessions.
func SuccessResult(periodID int) *models.ScheduleResult {
	return &models.ScheduleResult{
		ReviewPeriodID:    periodID,
		TotalSlots:        4,
		ScheduledGroups:   2,
		UnscheduledGroups: 0,
		ScheduledSessions: []models.ScheduledSession{
			{
				SessionID: 101, GroupID: 11, GroupName: "G11", SlotID: 21,
				SlotDate: "2026-03-02", StartTime: "08:00", EndTime: "09:30",
				CouncilMembers: []models.CouncilMember{
					{LecturerID: 2, LecturerName: "Linh Lecturer", Role: models.CouncilChair},
					{LecturerID: 4, LecturerName: "Minh Lecturer", Role: models.CouncilMemberRole, IsInstructor: true},
				},
				AlgorithmScore: 0.92,
			},
			{
				SessionID: 102, GroupID: 12, GroupName: "G12", SlotID: 22,
				SlotDate: "2026-03-02", StartTime: "09:45", EndTime: "11:15",
				CouncilMembers: []models.CouncilMember{
					{LecturerID: 5, LecturerName: "Quang Lecturer", Role: models.CouncilChair},
				},
				AlgorithmScore: 0.81,
			},
		},
		Warnings: []models.ScheduleWarning{
			{Type: "CouncilNearCapacity", Message: "Council of slot 22 is near capacity"},
		},
		Errors:      []string{},
		IsSuccess:   true,
		GeneratedAt: "2026-02-20T10:00:00Z",
	}
}

// FailureResult is a partial run: two groups placed, three left over.
func FailureResult(periodID int, errs ...string) *models.ScheduleResult {
	if len(errs) == 0 {
		errs = []string{"No eligible council"}
	}
	r := SuccessResult(periodID)
	r.IsSuccess = false
	r.ScheduledGroups = 2
	r.UnscheduledGroups = 3
	r.Errors = errs
	r.Warnings = nil
	return r
}
