package realtime

// State is the connection state of the channel.
type State int

const (
	// StateIdle means no connection and no connection attempt.
	StateIdle State = iota
	// StateConnecting means a fresh connection was requested and has not yet succeeded.
	StateConnecting
	// StateConnected means the STOMP session is up.
	StateConnected
	// StateError means the last transport attempt failed.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
