// Package worker runs the blocking part of deferred requests away from the event loop.
package worker

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/indigo-web/hitchhiker/config"
)

// Resumer is the resume handle of a suspended connection. Calling Ready tells the event
// loop the connection may continue writing its response. Handles of connections that are
// already gone must be safe to call.
type Resumer interface {
	Ready()
}

// Job is a single deferred request. Reply must have capacity of at least one, as the
// worker never waits for the reply to be received.
type Job struct {
	ID      uuid.UUID
	Control Resumer
	Reply   chan<- []byte
}

// NewJob returns a job with a fresh one-shot reply channel. The receiving end is
// returned separately.
func NewJob(control Resumer) (Job, <-chan []byte) {
	reply := make(chan []byte, 1)

	return Job{
		ID:      uuid.New(),
		Control: control,
		Reply:   reply,
	}, reply
}

// Worker processes jobs one at a time in the order they were submitted.
type Worker struct {
	queue  *Queue
	delay  *atomic.Int64
	answer []byte
	onDone func(Job, time.Duration)
}

func New(queue *Queue, cfg config.Worker) *Worker {
	w := &Worker{
		queue:  queue,
		delay:  new(atomic.Int64),
		answer: []byte(cfg.Answer),
	}
	w.SetDelay(cfg.Delay)

	return w
}

// SetDelay changes the simulated latency. Jobs already in progress aren't affected.
func (w *Worker) SetDelay(delay time.Duration) {
	w.delay.Store(int64(delay))
}

// OnDone installs a callback, invoked after every processed job with the time the
// processing took. It must be installed before Run is called.
func (w *Worker) OnDone(cb func(Job, time.Duration)) *Worker {
	w.onDone = cb
	return w
}

// Run processes jobs until the queue is closed and drained.
func (w *Worker) Run() {
	for {
		job, ok := w.queue.Pop()
		if !ok {
			log.Printf("worker: queue is closed, exiting")
			return
		}

		w.process(job)
	}
}

func (w *Worker) process(job Job) {
	start := time.Now()
	time.Sleep(time.Duration(w.delay.Load()))

	select {
	case job.Reply <- w.answer:
	default:
		// the reply was already filled. That's not something we're able to fix
	}

	if job.Control != nil {
		job.Control.Ready()
	}

	if w.onDone != nil {
		w.onDone(job, time.Since(start))
	}
}
