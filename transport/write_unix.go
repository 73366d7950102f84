//go:build unix

package transport

import (
	"errors"
	"time"

	"github.com/indigo-web/hitchhiker/internal/timer"
	"golang.org/x/sys/unix"
)

// writeNonBlocking issues a single write(2) on the descriptor, which is always in
// non-blocking mode as the runtime's netpoller owns it.
func (c *client) writeNonBlocking(b []byte) (n int, err error) {
	var werr error
	err = c.raw.Write(func(fd uintptr) bool {
		n, werr = unix.Write(int(fd), b)
		return true
	})
	if err != nil {
		return 0, err
	}

	switch {
	case werr == nil:
	case errors.Is(werr, unix.EAGAIN), errors.Is(werr, unix.EINTR):
		return 0, ErrWouldBlock
	default:
		return 0, werr
	}

	return max(n, 0), nil
}

// awaitWritable parks the calling goroutine in the netpoller until the descriptor
// reports writability or the write timeout expires. Readiness is polled before parking,
// as the netpoller forgets edges which happened before the wait began.
func (c *client) awaitWritable() error {
	if err := c.conn.SetWriteDeadline(timer.Deadline(c.writeTimeout)); err != nil {
		return err
	}

	err := c.raw.Write(func(fd uintptr) bool {
		return writable(fd)
	})
	if err != nil {
		return err
	}

	// TryWrite must not hit the deadline of the wait
	return c.conn.SetWriteDeadline(time.Time{})
}

// writable reports whether a write wouldn't block. Errors and hangups count as writable
// too, so the following write surfaces them.
func writable(fd uintptr) bool {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	for {
		n, err := unix.Poll(fds, 0)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return true
		}

		return n > 0 && fds[0].Revents&(unix.POLLOUT|unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0
	}
}
