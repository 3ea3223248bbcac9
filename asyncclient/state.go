package asyncclient

// State describes where a single submission is in its lifecycle.
// Polling self-loops; Done and Failed are terminal.
type State string

// Submission lifecycle states
const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transitions can occur.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// validTransitions holds the allowed successor states.
var validTransitions = map[State][]State{
	StateIdle:       {StateSubmitting},
	StateSubmitting: {StatePolling, StateDone, StateFailed},
	StatePolling:    {StatePolling, StateDone, StateFailed},
}

// CanTransition reports whether moving from s to next is allowed.
func (s State) CanTransition(next State) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
