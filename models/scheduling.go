package models

type CouncilRole int

const (
	CouncilChair CouncilRole = iota
	CouncilMemberRole
)

func (r CouncilRole) String() string {
	if r == CouncilChair {
		return "Chair"
	}
	return "Member"
}

type CouncilMember struct {
	LecturerID         int         `json:"lecturerId"`
	LecturerName       string      `json:"lecturerName"`
	Role               CouncilRole `json:"role"`
	IsInstructor       bool        `json:"isInstructor"`
	InheritedFromRound *int        `json:"inheritedFromRound,omitempty"`
}

// ScheduledSession is one group placed into a slot with its council.
type ScheduledSession struct {
	SessionID      int             `json:"sessionId"`
	GroupID        int             `json:"groupId"`
	GroupName      string          `json:"groupName"`
	SlotID         int             `json:"slotId"`
	SlotDate       string          `json:"slotDate"`
	StartTime      string          `json:"startTime"`
	EndTime        string          `json:"endTime"`
	CouncilMembers []CouncilMember `json:"councilMembers"`
	AlgorithmScore float64         `json:"algorithmScore"`
}

type ScheduleWarning struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	SessionID *int   `json:"sessionId,omitempty"`
	GroupID   *int   `json:"groupId,omitempty"`
}

// ScheduleResult is the outcome of one scheduling run. It is returned for
// failed runs too, in which case Errors is populated and IsSuccess is false.
type ScheduleResult struct {
	ReviewPeriodID    int                `json:"reviewPeriodId"`
	TotalSlots        int                `json:"totalSlots"`
	ScheduledGroups   int                `json:"scheduledGroups"`
	UnscheduledGroups int                `json:"unscheduledGroups"`
	ScheduledSessions []ScheduledSession `json:"scheduledSessions"`
	Warnings          []ScheduleWarning  `json:"warnings"`
	Errors            []string           `json:"errors"`
	IsSuccess         bool               `json:"isSuccess"`
	GeneratedAt       string             `json:"generatedAt"`
}

// Clone returns a deep copy of the result.
func (r *ScheduleResult) Clone() *ScheduleResult {
	if r == nil {
		return nil
	}
	c := *r
	if r.ScheduledSessions != nil {
		c.ScheduledSessions = make([]ScheduledSession, len(r.ScheduledSessions))
		for i, s := range r.ScheduledSessions {
			if s.CouncilMembers != nil {
				members := make([]CouncilMember, len(s.CouncilMembers))
				for j, m := range s.CouncilMembers {
					m.InheritedFromRound = cloneInt(m.InheritedFromRound)
					members[j] = m
				}
				s.CouncilMembers = members
			}
			c.ScheduledSessions[i] = s
		}
	}
	if r.Warnings != nil {
		c.Warnings = make([]ScheduleWarning, len(r.Warnings))
		for i, w := range r.Warnings {
			w.SessionID = cloneInt(w.SessionID)
			w.GroupID = cloneInt(w.GroupID)
			c.Warnings[i] = w
		}
	}
	if r.Errors != nil {
		c.Errors = make([]string, len(r.Errors))
		copy(c.Errors, r.Errors)
	}
	return &c
}

type GenerateScheduleRequest struct {
	ReviewPeriodID  int  `json:"reviewPeriodId"`
	ForceRegenerate bool `json:"forceRegenerate"`
}

type RejectScheduleRequest struct {
	Reason string `json:"reason"`
}

type RegenerateSlotRequest struct {
	SlotID int    `json:"slotId"`
	Reason string `json:"reason,omitempty"`
}

type RegenerateGroupRequest struct {
	GroupID int    `json:"groupId"`
	Reason  string `json:"reason,omitempty"`
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
