package http1

// RequestState represents the state of the request's parsing
type RequestState uint8

const (
	Pending RequestState = iota + 1
	HeadersCompleted
	Error
)

type parserState uint8

const (
	eHead parserState = iota + 1
	ePlainBody
	eChunkedBody
)

// State is the phase of the connection state machine. The transitions are
//
//	Routing -> Responding | Suspended
//	Suspended -> Responding
//	Responding -> Writing
//	Writing -> Writing | Done | Aborted
type State uint8

const (
	Routing State = iota + 1
	Suspended
	Responding
	Writing
	Done
	Aborted
)

func (s State) String() string {
	switch s {
	case Routing:
		return "routing"
	case Suspended:
		return "suspended"
	case Responding:
		return "responding"
	case Writing:
		return "writing"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Next tells the event loop what the connection is waiting for.
type Next uint8

const (
	// Wait parks the connection until its resume handle is called.
	Wait Next = iota + 1
	// Write asks the loop to continue towards writing the response.
	Write
	// End means the response was completely written.
	End
	// Remove asks the loop to tear the connection down immediately.
	Remove
)
