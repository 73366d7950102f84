package loop

import (
	"github.com/indigo-web/hitchhiker/internal/protocol/http1"
	"github.com/indigo-web/hitchhiker/transport"
)

type session struct {
	id, gen uint64
	client  transport.Client
	parser  *http1.Parser
	handler *http1.Handler
	// backlog is received data not parsed yet. It's backed by the client's read buffer,
	// so the reader is held until the backlog is empty.
	backlog  []byte
	unacked  bool
	ack      chan struct{}
	gone     chan struct{}
	awaiting bool
	removed  bool
}

// Control is the resume handle of a connection. The generation is bumped every time the
// connection starts serving a new request, so handles outliving their request are
// ignored, as well as ones of closed connections. Connection ids are never reused.
type Control struct {
	loop    *Loop
	id, gen uint64
}

// Ready wakes the connection up. It's safe to call from any goroutine except the one
// running the loop, and after the loop is stopped.
func (c Control) Ready() {
	c.loop.post(event{kind: evWake, id: c.id, gen: c.gen})
}
