package lifecycle

// State is a phase of the local session flow.
type State string

const (
	StateInitializing State = "initializing"
	StateJoining      State = "joining"
	StateRunning      State = "running"
	StateLeaving      State = "leaving"
	StateError        State = "error"
)

// transitions lists the only legal moves out of each state.
var transitions = map[State][]State{
	StateInitializing: {StateJoining, StateError},
	StateJoining:      {StateRunning, StateLeaving, StateError},
	StateRunning:      {StateLeaving, StateError},
	StateLeaving:      {StateInitializing, StateError},
	StateError:        {StateInitializing},
}

// CanTransition reports whether from → to is a legal transition.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition is published on the machine's bus after every state change.
type Transition struct {
	From State
	To   State
}
