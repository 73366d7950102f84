package transport

import (
	"errors"
	"net"
	"syscall"
	"time"

	"github.com/indigo-web/hitchhiker/config"
	"github.com/indigo-web/hitchhiker/internal/timer"
)

// ErrWouldBlock is returned by TryWrite when the socket can't accept any data right now.
var ErrWouldBlock = errors.New("write would block")

// Client is a connection as seen by the event loop. Read is the only blocking operation
// and is called from a dedicated goroutine, everything else is safe to call from the loop.
type Client interface {
	// Read reads data into the internal buffer and returns a piece of it back. The returned
	// slice stays valid until the next call.
	Read() ([]byte, error)
	// TryWrite writes as much of b as the socket accepts without blocking. Returns
	// ErrWouldBlock if nothing could be written.
	TryWrite(b []byte) (int, error)
	// AwaitWritable blocks until the socket is (probably) writable again. It may return
	// spuriously, so the caller must be ready for TryWrite returning ErrWouldBlock after.
	AwaitWritable() error
	Remote() net.Addr
	Close() error
}

type client struct {
	conn         net.Conn
	raw          syscall.RawConn
	buff         []byte
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewClient(conn net.Conn, cfg config.NET) Client {
	c := &client{
		conn:         conn,
		buff:         make([]byte, cfg.ReadBufferSize),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}

	if sc, ok := conn.(syscall.Conn); ok {
		if raw, err := sc.SyscallConn(); err == nil {
			c.raw = raw
		}
	}

	return c
}

// Read reads data into the internal buffer and returns a piece of it back. Timeouts are also
// handled automatically.
func (c *client) Read() ([]byte, error) {
	if err := c.conn.SetReadDeadline(timer.Deadline(c.readTimeout)); err != nil {
		return nil, err
	}

	n, err := c.conn.Read(c.buff)
	return c.buff[:n], err
}

func (c *client) TryWrite(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}

	if c.raw == nil {
		return c.writeWithDeadline(b)
	}

	return c.writeNonBlocking(b)
}

func (c *client) AwaitWritable() error {
	if c.raw == nil {
		return nil
	}

	return c.awaitWritable()
}

// writeWithDeadline emulates a non-blocking write for connections not backed by a file
// descriptor by giving the write just a moment to complete.
func (c *client) writeWithDeadline(b []byte) (int, error) {
	if err := c.conn.SetWriteDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return 0, err
	}

	n, err := c.conn.Write(b)
	if isTimeout(err) {
		if n == 0 {
			return 0, ErrWouldBlock
		}

		return n, nil
	}

	return n, err
}

// Remote returns the remote address of the connection.
func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection.
func (c *client) Close() error {
	return c.conn.Close()
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
