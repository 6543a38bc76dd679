package framegraph

// EdgeState records where an edge's transform came from.
type EdgeState uint8

const (
	StateUndefined EdgeState = iota
	StateMeasured
	StatePermanent
	StateIdentity
	StateDerived
)

func (s EdgeState) String() string {
	switch s {
	case StateUndefined:
		return "Undefined"
	case StateMeasured:
		return "Measured"
	case StatePermanent:
		return "Permanent"
	case StateIdentity:
		return "Identity"
	case StateDerived:
		return "Derived"
	default:
		return "EdgeState(?)"
	}
}

// symbol is the one-character code used by Graph.String.
func (s EdgeState) symbol() string {
	switch s {
	case StateMeasured:
		return "O"
	case StatePermanent:
		return "C"
	case StateIdentity:
		return "1"
	case StateDerived:
		return "="
	default:
		return "?"
	}
}
