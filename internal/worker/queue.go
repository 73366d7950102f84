package worker

import "sync"

// Queue is an unbounded FIFO of jobs. It accepts jobs from any number of goroutines and
// never blocks them, while a single consumer pops them one by one.
type Queue struct {
	mu     sync.Mutex
	jobs   []Job
	signal chan struct{}
	closed bool
}

func NewQueue() *Queue {
	return &Queue{
		signal: make(chan struct{}, 1),
	}
}

// Submit enqueues the job. It returns false if the queue was closed, the job is
// discarded in this case.
func (q *Queue) Submit(job Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.jobs = append(q.jobs, job)

	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// Pop blocks until there's a job available. After the queue is closed, the remaining
// jobs are still handed out, and only then false is returned.
func (q *Queue) Pop() (Job, bool) {
	for {
		q.mu.Lock()
		if len(q.jobs) > 0 {
			job := q.jobs[0]
			q.jobs[0] = Job{}
			q.jobs = q.jobs[1:]
			q.mu.Unlock()

			return job, true
		}

		closed := q.closed
		q.mu.Unlock()

		if closed {
			return Job{}, false
		}

		<-q.signal
	}
}

// Close prevents new jobs from being submitted. Calling it more than once is allowed.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.signal)
	}
}

// Len returns the number of jobs waiting to be popped.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.jobs)
}
