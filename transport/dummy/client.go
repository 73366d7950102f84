package dummy

import (
	"io"
	"net"
	"sync"

	"github.com/indigo-web/hitchhiker/transport"
)

var _ transport.Client = new(Client)

// Client returns the data it was initialised with piece by piece, and then blocks on reads
// until closed. It also tracks all the written data, making it thereby a universal mock
// suitable for most of the tests. The write behaviour may be tuned to simulate partial
// writes, full socket buffers and broken connections.
type Client struct {
	mu        sync.Mutex
	data      [][]byte
	pointer   int
	closed    chan struct{}
	closeOnce sync.Once
	written   []byte
	chunk     int
	stutter   bool
	blocked   bool
	fail      error
	attempts  int
	awaits    int
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data:   data,
		closed: make(chan struct{}),
	}
}

func (c *Client) Read() ([]byte, error) {
	c.mu.Lock()
	if c.pointer < len(c.data) {
		piece := c.data[c.pointer]
		c.pointer++
		c.mu.Unlock()

		return piece, nil
	}
	c.mu.Unlock()

	<-c.closed
	return nil, io.EOF
}

func (c *Client) TryWrite(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attempts++

	if c.fail != nil {
		return 0, c.fail
	}

	if c.stutter {
		c.blocked = !c.blocked
		if c.blocked {
			return 0, transport.ErrWouldBlock
		}
	}

	if c.chunk > 0 && len(p) > c.chunk {
		p = p[:c.chunk]
	}

	c.written = append(c.written, p...)

	return len(p), nil
}

func (c *Client) AwaitWritable() error {
	c.mu.Lock()
	c.awaits++
	c.mu.Unlock()

	return nil
}

func (*Client) Remote() net.Addr {
	return addr{}
}

// Close makes pending and future reads return io.EOF.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
	})

	return nil
}

// Closed reports whether Close was called.
func (c *Client) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Chunked limits every write to at most n bytes.
func (c *Client) Chunked(n int) *Client {
	c.chunk = n
	return c
}

// Stutter makes every other write fail with transport.ErrWouldBlock.
func (c *Client) Stutter() *Client {
	c.stutter = true
	return c
}

// FailWith makes every write fail with the error.
func (c *Client) FailWith(err error) *Client {
	c.mu.Lock()
	c.fail = err
	c.mu.Unlock()

	return c
}

// Written returns everything written so far.
func (c *Client) Written() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return string(c.written)
}

// Attempts returns the number of TryWrite calls.
func (c *Client) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.attempts
}

// Awaits returns the number of AwaitWritable calls.
func (c *Client) Awaits() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.awaits
}

type addr struct{}

func (addr) Network() string {
	return "tcp"
}

func (addr) String() string {
	return "dummy"
}
