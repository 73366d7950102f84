// Package loop drives every connection's state machine from a single goroutine. Blocking
// operations (reads and waiting for a socket to become writable) are done by helper
// goroutines, which report back to the loop via events.
package loop

import (
	"errors"
	"io"
	"log"
	"net"
	"os"
	"sync"

	"github.com/indigo-web/hitchhiker/config"
	"github.com/indigo-web/hitchhiker/internal/protocol/http1"
	"github.com/indigo-web/hitchhiker/router"
	"github.com/indigo-web/hitchhiker/transport"
)

type eventKind uint8

const (
	evAccept eventKind = iota + 1
	evData
	evHangup
	evWritable
	evWake
)

type event struct {
	kind   eventKind
	id     uint64
	gen    uint64
	client transport.Client
	data   []byte
	err    error
}

// Loop owns all the connections. Their state is touched exclusively by the goroutine
// running Run.
type Loop struct {
	cfg      *config.Config
	router   *router.Router
	queue    http1.Submitter
	events   chan event
	conns    map[uint64]*session
	nextID   uint64
	done     chan struct{}
	stopOnce sync.Once
}

func New(cfg *config.Config, r *router.Router, queue http1.Submitter) *Loop {
	return &Loop{
		cfg:    cfg,
		router: r,
		queue:  queue,
		events: make(chan event, cfg.Loop.EventQueueSize),
		conns:  make(map[uint64]*session),
		done:   make(chan struct{}),
	}
}

// Accept hands a freshly accepted client over to the loop. If the loop is already
// stopped, the client is closed.
func (l *Loop) Accept(client transport.Client) {
	if !l.post(event{kind: evAccept, client: client}) {
		_ = client.Close()
	}
}

// Run processes events until Stop is called. All the connections left are closed
// before it returns.
func (l *Loop) Run() {
	for {
		select {
		case ev := <-l.events:
			l.handle(ev)
		case <-l.done:
			l.shutdown()
			return
		}
	}
}

// Stop makes Run return. Safe to call multiple times and from any goroutine.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

func (l *Loop) post(ev event) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.events <- ev:
		return true
	case <-l.done:
		return false
	}
}

func (l *Loop) handle(ev event) {
	if ev.kind == evAccept {
		l.open(ev.client)
		return
	}

	s, found := l.conns[ev.id]
	if !found {
		// the connection was torn down in the meantime
		return
	}

	switch ev.kind {
	case evData:
		s.backlog = ev.data
		s.unacked = true
		l.feed(s)
	case evHangup:
		l.remove(s, hangupError(ev.err))
	case evWritable:
		s.awaiting = false
		if ev.err != nil {
			l.remove(s, ev.err)
			return
		}

		l.step(s, http1.Write)
		l.feed(s)
	case evWake:
		if ev.gen != s.gen || s.handler.State() != http1.Suspended {
			return
		}

		l.step(s, s.handler.OnResume())
		l.feed(s)
	default:
		panic("BUG: unknown event kind")
	}
}

func (l *Loop) open(client transport.Client) {
	id := l.nextID
	l.nextID++

	s := &session{
		id:     id,
		client: client,
		parser: http1.NewParser(l.cfg.HTTP),
		ack:    make(chan struct{}, 1),
		gone:   make(chan struct{}),
	}
	s.handler = http1.NewHandler(l.router, l.queue, Control{loop: l, id: id})
	l.conns[id] = s

	go l.pump(s)
}

// pump reads from the client and passes the data to the loop. The next read isn't done
// until the loop acknowledges the previous data was consumed entirely, so the data is
// never copied.
func (l *Loop) pump(s *session) {
	for {
		data, err := s.client.Read()
		if len(data) > 0 {
			if !l.post(event{kind: evData, id: s.id, data: data}) {
				return
			}

			select {
			case <-s.ack:
			case <-s.gone:
				return
			case <-l.done:
				return
			}
		}

		if err != nil {
			l.post(event{kind: evHangup, id: s.id, err: err})
			return
		}
	}
}

// feed parses the backlog for as long as the connection is able to serve requests.
// Once the backlog is consumed, the reader is re-armed.
func (l *Loop) feed(s *session) {
	for !s.removed && s.handler.State() == http1.Routing && len(s.backlog) > 0 {
		state, extra, err := s.parser.Parse(s.backlog)
		switch state {
		case http1.Pending:
			s.backlog = nil
		case http1.HeadersCompleted:
			s.backlog = extra
			l.step(s, s.handler.OnRequest(s.parser.Request()))
		case http1.Error:
			s.backlog = nil
			l.step(s, s.handler.OnError(err))
		}
	}

	if !s.removed && s.unacked && len(s.backlog) == 0 && s.handler.State() == http1.Routing {
		s.unacked = false
		s.ack <- struct{}{}
	}
}

// step advances the connection until it has to wait for something.
func (l *Loop) step(s *session, next http1.Next) {
	var written bool

	for {
		switch next {
		case http1.Wait:
			return
		case http1.Write:
			switch s.handler.State() {
			case http1.Responding:
				next = s.handler.OnResponse()
			case http1.Writing:
				if written {
					// the socket didn't accept the whole response
					l.awaitWritable(s)
					return
				}

				written = true
				next = s.handler.OnWritable(s.client)
			default:
				return
			}
		case http1.End:
			l.finish(s)
			return
		case http1.Remove:
			l.remove(s, s.handler.Err())
			return
		default:
			panic("BUG: unknown next step")
		}
	}
}

func (l *Loop) finish(s *session) {
	if !s.handler.KeepAlive() {
		l.remove(s, nil)
		return
	}

	s.gen++
	s.handler.Reset(Control{loop: l, id: s.id, gen: s.gen})
}

func (l *Loop) awaitWritable(s *session) {
	if s.awaiting {
		return
	}

	s.awaiting = true
	id, gen, client := s.id, s.gen, s.client

	go func() {
		err := client.AwaitWritable()
		l.post(event{kind: evWritable, id: id, gen: gen, err: err})
	}()
}

// remove tears the connection down. A non-nil err is logged.
func (l *Loop) remove(s *session, err error) {
	if s.removed {
		return
	}

	s.removed = true
	delete(l.conns, s.id)
	close(s.gone)
	s.handler.Abort()
	_ = s.client.Close()

	if err != nil {
		log.Printf("hitchhiker: %s: %s", s.client.Remote(), err)
	}
}

func (l *Loop) shutdown() {
	for _, s := range l.conns {
		l.remove(s, nil)
	}

	for {
		select {
		case ev := <-l.events:
			if ev.kind == evAccept {
				_ = ev.client.Close()
			}
		default:
			return
		}
	}
}

// hangupError filters out errors which are a normal way for a connection to end.
func hangupError(err error) error {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed), errors.Is(err, os.ErrDeadlineExceeded):
		return nil
	default:
		return err
	}
}
