package workflow

type State int

const (
	Idle State = iota
	Generating
	GeneratedSuccess
	GeneratedFailure
	Approving
	Rejecting
	RegeneratingSlot
	RegeneratingGroup
)

var stateNames = map[State]string{
	Idle:              "idle",
	Generating:        "generating",
	GeneratedSuccess:  "generated",
	GeneratedFailure:  "generated with errors",
	Approving:         "approving",
	Rejecting:         "rejecting",
	RegeneratingSlot:  "regenerating slot",
	RegeneratingGroup: "regenerating group",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Pending reports whether a request is outstanding in this state.
func (s State) Pending() bool {
	switch s {
	case Generating, Approving, Rejecting, RegeneratingSlot, RegeneratingGroup:
		return true
	}
	return false
}

// Outcome records how the last run was disposed of.
type Outcome int

const (
	NoOutcome Outcome = iota
	Approved
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Approved:
		return "approved"
	case Rejected:
		return "rejected"
	default:
		return ""
	}
}
