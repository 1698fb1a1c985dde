package pipeline

import "fmt"

// State is a step of the per-target state machine.
type State int

const (
	StatePending State = iota
	StateSizeChecked
	StateRecordCreated
	StateCredentialObtained
	StateUploaded
	StateFinalized

	StateTooLarge
	StateCreateFailed
	StateCredentialFailed
	StateUploadFailed
	StateFinalizeFailed
)

var stateNames = [...]string{
	StatePending:            "pending",
	StateSizeChecked:        "size_checked",
	StateRecordCreated:      "record_created",
	StateCredentialObtained: "credential_obtained",
	StateUploaded:           "uploaded",
	StateFinalized:          "finalized",
	StateTooLarge:           "too_large",
	StateCreateFailed:       "create_failed",
	StateCredentialFailed:   "credential_failed",
	StateUploadFailed:       "upload_failed",
	StateFinalizeFailed:     "finalize_failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type stateTransition struct {
	From State
	To   State
}

// validTransitions is the whole state machine. No step may be skipped and
// nothing leaves a terminal state.
var validTransitions = map[stateTransition]bool{
	{StatePending, StateSizeChecked}: true,
	{StatePending, StateTooLarge}:    true,

	{StateSizeChecked, StateRecordCreated}: true,
	{StateSizeChecked, StateCreateFailed}:  true,

	{StateRecordCreated, StateCredentialObtained}: true,
	{StateRecordCreated, StateCredentialFailed}:   true,

	{StateCredentialObtained, StateUploaded}:     true,
	{StateCredentialObtained, StateUploadFailed}: true,

	{StateUploaded, StateFinalized}:      true,
	{StateUploaded, StateFinalizeFailed}: true,
}

var terminalOutcomes = map[State]Outcome{
	StateFinalized:        OutcomeCompleted,
	StateTooLarge:         OutcomeTooLarge,
	StateCreateFailed:     OutcomeCreateFailed,
	StateCredentialFailed: OutcomeCredentialFailed,
	StateUploadFailed:     OutcomeUploadFailed,
	StateFinalizeFailed:   OutcomeFinalizeFailed,
}

// ValidateTransition checks a single step against the state machine.
func ValidateTransition(from, to State) error {
	if !validTransitions[stateTransition{From: from, To: to}] {
		return fmt.Errorf("invalid state transition from %s to %s", from, to)
	}
	return nil
}

// IsTerminal reports whether s ends processing of a target.
func IsTerminal(s State) bool {
	_, ok := terminalOutcomes[s]
	return ok
}

// OutcomeOf maps a terminal state to its outcome.
func OutcomeOf(s State) (Outcome, bool) {
	o, ok := terminalOutcomes[s]
	return o, ok
}
