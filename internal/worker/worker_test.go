package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/indigo-web/hitchhiker/config"
	"github.com/stretchr/testify/require"
)

type resumer struct {
	calls atomic.Int32
}

func (r *resumer) Ready() {
	r.calls.Add(1)
}

func newWorker(delay time.Duration) (*Worker, *Queue) {
	cfg := config.Default().Worker
	cfg.Delay = delay
	q := NewQueue()

	return New(q, cfg), q
}

func TestWorker(t *testing.T) {
	t.Run("answers after delay", func(t *testing.T) {
		const delay = 30 * time.Millisecond

		w, q := newWorker(delay)
		go w.Run()
		defer q.Close()

		control := new(resumer)
		job, reply := NewJob(control)
		start := time.Now()
		require.True(t, q.Submit(job))

		select {
		case answer := <-reply:
			require.Equal(t, "42", string(answer))
			require.GreaterOrEqual(t, time.Since(start), delay)
		case <-time.After(time.Second):
			require.Fail(t, "no answer")
		}

		require.Eventually(t, func() bool {
			return control.calls.Load() == 1
		}, time.Second, time.Millisecond)
	})

	t.Run("reply precedes resume", func(t *testing.T) {
		w, q := newWorker(0)
		go w.Run()
		defer q.Close()

		job, reply := NewJob(nil)
		resumed := make(chan bool, 1)
		job.Control = resumeFunc(func() {
			select {
			case answer := <-reply:
				resumed <- string(answer) == "42"
			default:
				resumed <- false
			}
		})
		require.True(t, q.Submit(job))
		require.True(t, <-resumed)
	})

	t.Run("dropped receiver", func(t *testing.T) {
		w, q := newWorker(time.Millisecond)
		done := make(chan uuid.UUID, 2)
		w.OnDone(func(job Job, _ time.Duration) {
			done <- job.ID
		})
		go w.Run()
		defer q.Close()

		// the receiver is discarded right away, as if the connection was aborted
		abandoned, _ := NewJob(new(resumer))
		require.True(t, q.Submit(abandoned))
		alive, reply := NewJob(new(resumer))
		require.True(t, q.Submit(alive))

		require.Equal(t, abandoned.ID, <-done)
		require.Equal(t, alive.ID, <-done)
		require.Equal(t, "42", string(<-reply))
	})

	t.Run("fifo completion", func(t *testing.T) {
		w, q := newWorker(time.Millisecond)
		var (
			mu        sync.Mutex
			completed []uuid.UUID
		)
		w.OnDone(func(job Job, _ time.Duration) {
			mu.Lock()
			completed = append(completed, job.ID)
			mu.Unlock()
		})

		submitted := make([]uuid.UUID, 10)
		for i := range submitted {
			job, _ := NewJob(nil)
			submitted[i] = job.ID
			require.True(t, q.Submit(job))
		}

		q.Close()
		w.Run()
		require.Equal(t, submitted, completed)
	})

	t.Run("set delay", func(t *testing.T) {
		w, q := newWorker(time.Hour)
		w.SetDelay(time.Millisecond)
		go w.Run()
		defer q.Close()

		job, reply := NewJob(nil)
		require.True(t, q.Submit(job))

		select {
		case <-reply:
		case <-time.After(time.Second):
			require.Fail(t, "delay wasn't updated")
		}
	})

	t.Run("exits on close", func(t *testing.T) {
		w, q := newWorker(0)
		exited := make(chan struct{})
		go func() {
			w.Run()
			close(exited)
		}()

		q.Close()

		select {
		case <-exited:
		case <-time.After(time.Second):
			require.Fail(t, "worker didn't exit")
		}
	})
}

type resumeFunc func()

func (r resumeFunc) Ready() {
	r()
}
