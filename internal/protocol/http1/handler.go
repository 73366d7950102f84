package http1

import (
	"errors"

	"github.com/indigo-web/hitchhiker/http/method"
	"github.com/indigo-web/hitchhiker/http/proto"
	"github.com/indigo-web/hitchhiker/http/status"
	"github.com/indigo-web/hitchhiker/internal/worker"
	"github.com/indigo-web/hitchhiker/router"
	"github.com/indigo-web/hitchhiker/transport"
)

// Submitter accepts deferred jobs. Submit reports false if no jobs are accepted anymore.
type Submitter interface {
	Submit(job worker.Job) bool
}

// Sink is where responses are written to.
type Sink interface {
	TryWrite(b []byte) (int, error)
}

// Handler is the state machine of a single connection. It is driven by the event loop
// exclusively, so it is not safe for concurrent use.
type Handler struct {
	state      State
	router     *router.Router
	queue      Submitter
	control    worker.Resumer
	reply      <-chan []byte
	serializer *Serializer
	protocol   proto.Proto
	code       status.Code
	payload    []byte
	head, body View
	headOnly   bool
	keepAlive  bool
	err        error
}

func NewHandler(r *router.Router, queue Submitter, control worker.Resumer) *Handler {
	return &Handler{
		state:      Routing,
		router:     r,
		queue:      queue,
		control:    control,
		serializer: NewSerializer(),
	}
}

func (h *Handler) State() State {
	return h.state
}

// KeepAlive reports whether the connection may serve another request once the current
// response is written.
func (h *Handler) KeepAlive() bool {
	return h.keepAlive
}

// Err returns the error the connection was aborted with, if any.
func (h *Handler) Err() error {
	return h.err
}

// OnRequest routes the request. Deferred routes hand the resume handle over to a job
// and suspend the connection until the job is done.
func (h *Handler) OnRequest(request *Request) Next {
	h.protocol = request.Proto
	h.keepAlive = request.KeepAlive
	h.headOnly = request.Method == method.HEAD

	route := h.router.Lookup(request.Path)
	if !route.Deferred {
		h.code, h.payload = route.Code, route.Body
		h.state = Responding

		return Write
	}

	h.code = route.Code
	job, reply := worker.NewJob(h.control)
	if !h.queue.Submit(job) {
		h.fail(status.ErrServiceUnavailable)
		return Write
	}

	h.control = nil
	h.reply = reply
	h.state = Suspended

	return Wait
}

// OnError responds to a request which couldn't be parsed. The connection is closed
// afterward, as there's no telling where the next request begins.
func (h *Handler) OnError(err error) Next {
	h.fail(err)
	return Write
}

func (h *Handler) fail(err error) {
	code := status.CodeOf(err)
	h.code = code
	h.payload = []byte(status.Text(code))
	h.keepAlive = false
	h.state = Responding
}

// OnResume is called when the worker is done with the job. Resumes of connections
// which aren't suspended are ignored.
func (h *Handler) OnResume() Next {
	if h.state != Suspended {
		return Wait
	}

	h.state = Responding

	return Write
}

// OnResponse renders the response. If a reply from the worker is pending, it becomes
// the body.
func (h *Handler) OnResponse() Next {
	if h.reply != nil {
		select {
		case payload := <-h.reply:
			h.payload = payload
		default:
			// resumed without a reply. Must never happen, as the worker always
			// replies first
			h.fail(status.ErrInternalServerError)
		}

		h.reply = nil
	}

	head := h.serializer.Head(h.protocol, h.code, len(h.payload), h.keepAlive)
	h.head = NewView(head)

	if h.headOnly {
		h.body = NewView(nil)
	} else {
		h.body = NewView(h.payload)
	}

	h.state = Writing

	return Write
}

// OnWritable writes as much of the response as the sink accepts.
func (h *Handler) OnWritable(sink Sink) Next {
	for _, view := range [...]*View{&h.head, &h.body} {
		if view.Done() {
			continue
		}

		n, err := sink.TryWrite(view.Remaining())
		view.Advance(n)

		switch {
		case errors.Is(err, transport.ErrWouldBlock):
			return Write
		case err != nil:
			h.err = err
			h.state = Aborted

			return Remove
		}

		if !view.Done() {
			return Write
		}
	}

	h.state = Done

	return End
}

// Reset prepares the handler for the next request on the same connection.
func (h *Handler) Reset(control worker.Resumer) {
	*h = Handler{
		state:      Routing,
		router:     h.router,
		queue:      h.queue,
		control:    control,
		serializer: h.serializer,
	}
}

// Abort marks the connection as torn down. A reply the worker might still send is
// dropped together with the handler.
func (h *Handler) Abort() {
	if h.state != Done {
		h.state = Aborted
	}

	h.reply = nil
}
