package engine

// State is a step of the per-query state machine.
type State string

const (
	StateReceived         State = "Received"
	StateEmbedding        State = "Embedding"
	StateSearching        State = "Searching"
	StateContextAssembled State = "ContextAssembled"
	StateGenerating       State = "Generating"
	StateAnswered         State = "Answered"
	StateFailed           State = "Failed"
)

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateAnswered || s == StateFailed
}

var transitions = map[State][]State{
	StateReceived:         {StateEmbedding, StateFailed},
	StateEmbedding:        {StateSearching, StateFailed},
	StateSearching:        {StateContextAssembled, StateFailed},
	StateContextAssembled: {StateGenerating, StateFailed},
	StateGenerating:       {StateAnswered, StateFailed},
}

// CanTransition reports whether to may directly follow from.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
