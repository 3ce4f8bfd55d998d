package coordinator

// State is a node of the checkout state machine.
//
// Card:  Idle -> Validating -> OrderCreated -> IntentCreated -> CardConfirmed -> ServerConfirmed -> Finalized
// COD:   Idle -> Validating -> CODPlacing -> Finalized
//
// Errored is reachable from every non-terminal state. A declined card returns
// the attempt from IntentCreated to Idle, and a failed server-side confirm
// finalizes straight from CardConfirmed.
type State string

const (
	StateIdle            State = "Idle"
	StateValidating      State = "Validating"
	StateOrderCreated    State = "OrderCreated"
	StateIntentCreated   State = "IntentCreated"
	StateCardConfirmed   State = "CardConfirmed"
	StateServerConfirmed State = "ServerConfirmed"
	StateCODPlacing      State = "CODPlacing"
	StateFinalized       State = "Finalized"
	StateErrored         State = "Errored"
)

var transitions = map[State][]State{
	StateIdle:            {StateValidating},
	StateValidating:      {StateOrderCreated, StateCODPlacing, StateErrored},
	StateOrderCreated:    {StateIntentCreated, StateErrored},
	StateIntentCreated:   {StateCardConfirmed, StateIdle, StateErrored},
	StateCardConfirmed:   {StateServerConfirmed, StateFinalized, StateErrored},
	StateServerConfirmed: {StateFinalized, StateErrored},
	StateCODPlacing:      {StateFinalized, StateErrored},
	StateErrored:         {StateIdle},
}

// CanTransition reports whether the machine may move from one state to
// another.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s State) Terminal() bool {
	return s == StateFinalized
}
