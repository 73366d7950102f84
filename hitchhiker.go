package hitchhiker

import (
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"github.com/indigo-web/hitchhiker/config"
	"github.com/indigo-web/hitchhiker/internal/loop"
	"github.com/indigo-web/hitchhiker/internal/worker"
	"github.com/indigo-web/hitchhiker/router"
	"github.com/indigo-web/hitchhiker/transport"
)

// ErrAlreadyServing is returned by Serve when called more than once.
var ErrAlreadyServing = errors.New("hitchhiker: app is already serving")

// App glues together the listener, the event loop and the worker.
type App struct {
	addr   string
	cfg    *config.Config
	router *router.Router
	hooks  hooks
	queue  *worker.Queue
	worker *worker.Worker

	mu      sync.Mutex
	tcp     *transport.TCP
	serving bool
	stopped bool
}

// New returns a new App instance, serving the default routes.
func New(addr string) *App {
	a := &App{
		addr:   addr,
		router: router.Default(),
	}

	return a.Tune(config.Default())
}

// Tune replaces the default config. Must be called before Serve.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	a.queue = worker.NewQueue()
	a.worker = worker.New(a.queue, cfg.Worker)

	return a
}

// Route replaces the default routes. Must be called before Serve.
func (a *App) Route(r *router.Router) *App {
	a.router = r
	return a
}

// NotifyOnStart calls the callback at the moment the listener is bound. Addr is
// safe to call from then on.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment the server is down. It's guaranteed that
// no connections are accepted anymore and all the clients are disconnected by then.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// SetDelay changes the latency of deferred responses on the fly.
func (a *App) SetDelay(delay time.Duration) {
	a.worker.SetDelay(delay)
}

// Serve starts the web-application. The call blocks until Stop is called or the listener
// fails.
func (a *App) Serve() error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	tcp := transport.NewTCP()
	if err := tcp.Bind(a.addr); err != nil {
		return err
	}

	a.mu.Lock()
	if a.serving {
		a.mu.Unlock()
		tcp.Stop()

		return ErrAlreadyServing
	}

	a.serving = true
	a.tcp = tcp
	if a.stopped {
		tcp.Stop()
	}
	a.mu.Unlock()

	l := loop.New(a.cfg, a.router, a.queue)
	loopDone := make(chan struct{})
	go func() {
		l.Run()
		close(loopDone)
	}()
	go a.worker.Run()

	log.Printf("hitchhiker: listening on %s", tcp.Addr())
	callIfNotNil(a.hooks.OnStart)

	err := tcp.Listen(a.cfg.NET, func(conn net.Conn) {
		l.Accept(transport.NewClient(conn, a.cfg.NET))
	})

	tcp.Stop()
	l.Stop()
	<-loopDone

	if pending := a.queue.Len(); pending > 0 {
		log.Printf("hitchhiker: %d deferred jobs are left to the worker", pending)
	}

	a.queue.Close()
	callIfNotNil(a.hooks.OnStop)

	return err
}

// Addr returns the address the app is listening on, or nil if it isn't yet.
func (a *App) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tcp == nil {
		return nil
	}

	return a.tcp.Addr()
}

// Stop stops the whole application immediately. Deferred jobs already queued are still
// processed by the worker, but their results are dropped.
//
// NOTE: the call isn't blocking. So by that, after the method returned, the server
// may still be working. Use NotifyOnStop in order to know when it's down.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopped = true
	if a.tcp != nil {
		a.tcp.Stop()
	}
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
