package models

type PeriodStatus int

const (
	PeriodDraft PeriodStatus = iota
	PeriodOpen
	PeriodScheduling
	PeriodInProgress
	PeriodCompleted
)

var periodStatusLabels = map[PeriodStatus]string{
	PeriodDraft:      "Draft",
	PeriodOpen:       "Open",
	PeriodScheduling: "Scheduling",
	PeriodInProgress: "In progress",
	PeriodCompleted:  "Completed",
}

func (s PeriodStatus) String() string {
	if l, ok := periodStatusLabels[s]; ok {
		return l
	}
	return "Unknown"
}

type SessionStatus int

const (
	SessionScheduled SessionStatus = iota
	SessionInProgress
	SessionCompleted
	SessionCancelled
)

var sessionStatusLabels = map[SessionStatus]string{
	SessionScheduled:  "Scheduled",
	SessionInProgress: "In progress",
	SessionCompleted:  "Completed",
	SessionCancelled:  "Cancelled",
}

func (s SessionStatus) String() string {
	if l, ok := sessionStatusLabels[s]; ok {
		return l
	}
	return "Unknown"
}

type RegistrationStatus int

const (
	RegistrationPending RegistrationStatus = iota
	RegistrationApproved
	RegistrationRejected
)

// ReviewPeriod is one scheduling campaign within a semester.
type ReviewPeriod struct {
	ID                    int          `json:"id"`
	SemesterID            int          `json:"semesterId"`
	SemesterName          string       `json:"semesterName"`
	Name                  string       `json:"name"`
	ReviewRound           int          `json:"reviewRound"`
	StartDate             string       `json:"startDate"`
	EndDate               string       `json:"endDate"`
	Status                PeriodStatus `json:"status"`
	Description           string       `json:"description,omitempty"`
	MaxSlotsPerDay        int          `json:"maxSlotsPerDay"`
	MaxGroupsPerSlot      int          `json:"maxGroupsPerSlot"`
	ReviewDurationMinutes int          `json:"reviewDurationMinutes"`
	MinLecturersPerSlot   int          `json:"minLecturersPerSlot"`
	MaxLecturersPerSlot   int          `json:"maxLecturersPerSlot"`
	CouncilSize           int          `json:"councilSize"`
}

// ReviewSession is a committed (or pending) review of a group in a slot.
type ReviewSession struct {
	ID                 int                `json:"id"`
	ReviewPeriodID     int                `json:"reviewPeriodId"`
	ReviewPeriodName   string             `json:"reviewPeriodName"`
	ReviewSlotID       int                `json:"reviewSlotId"`
	SlotDate           string             `json:"slotDate"`
	StartTime          string             `json:"startTime"`
	EndTime            string             `json:"endTime"`
	GroupID            int                `json:"groupId"`
	GroupName          string             `json:"groupName"`
	TopicTitle         string             `json:"topicTitle,omitempty"`
	RegistrationStatus RegistrationStatus `json:"registrationStatus"`
	Status             SessionStatus      `json:"status"`
	CouncilMembers     []CouncilMember    `json:"councilMembers,omitempty"`
	AlgorithmScore     *float64           `json:"algorithmScore,omitempty"`
	FinalScore         *float64           `json:"finalScore,omitempty"`
}
