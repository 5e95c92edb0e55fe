package session

// State is a step of one conversation turn.
type State int

const (
	Idle State = iota
	Recording
	Transcribing
	Answering
	Speaking
	AwaitingContinue
	Terminated
)

var stateNames = [...]string{
	Idle:             "idle",
	Recording:        "recording",
	Transcribing:     "transcribing",
	Answering:        "answering",
	Speaking:         "speaking",
	AwaitingContinue: "awaiting-continue",
	Terminated:       "terminated",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
