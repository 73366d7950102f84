package transport

import (
	"net"
	"testing"
	"time"

	"github.com/indigo-web/hitchhiker/config"
	"github.com/stretchr/testify/require"
)

func runListener(t *testing.T, cfg config.NET) (*TCP, <-chan net.Conn, <-chan error) {
	tcp := NewTCP()
	require.NoError(t, tcp.Bind("127.0.0.1:0"))

	conns := make(chan net.Conn, 10)
	errch := make(chan error, 1)
	go func() {
		errch <- tcp.Listen(cfg, func(conn net.Conn) {
			conns <- conn
		})
	}()

	return tcp, conns, errch
}

func TestTCP(t *testing.T) {
	t.Run("accept", func(t *testing.T) {
		tcp, conns, errch := runListener(t, config.Default().NET)

		client, err := net.Dial("tcp", tcp.Addr().String())
		require.NoError(t, err)
		defer client.Close()

		select {
		case conn := <-conns:
			require.Equal(t, client.LocalAddr().String(), conn.RemoteAddr().String())
			_ = conn.Close()
		case <-time.After(time.Second):
			require.Fail(t, "connection wasn't accepted")
		}

		tcp.Stop()
		require.NoError(t, <-errch)
	})

	t.Run("interrupted accept", func(t *testing.T) {
		cfg := config.Default().NET
		cfg.AcceptLoopInterruptPeriod = 10 * time.Millisecond
		tcp, _, errch := runListener(t, cfg)

		time.Sleep(50 * time.Millisecond)
		select {
		case err := <-errch:
			require.Failf(t, "listener exited", "error: %v", err)
		default:
		}

		tcp.Stop()
		select {
		case err := <-errch:
			require.NoError(t, err)
		case <-time.After(time.Second):
			require.Fail(t, "listener didn't stop")
		}
	})

	t.Run("bad address", func(t *testing.T) {
		require.Error(t, NewTCP().Bind("127.0.0.1:99999"))
	})
}
