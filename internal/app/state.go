package service

// State is a step of a single prediction.
type State int

// Prediction states. Failed is reachable from Validating, Encoding and,
// for contract violations, Inferring.
const (
	StateIdle State = iota
	StateValidating
	StateEncoding
	StateInferring
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateEncoding:
		return "encoding"
	case StateInferring:
		return "inferring"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
