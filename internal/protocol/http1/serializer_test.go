package http1

import (
	"bufio"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/indigo-web/hitchhiker/http/proto"
	"github.com/indigo-web/hitchhiker/http/status"
	"github.com/stretchr/testify/require"
)

func readResponse(t *testing.T, raw string) (*http.Response, string) {
	resp, err := http.ReadResponse(bufio.NewReader(strings.NewReader(raw)), nil)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, string(body)
}

func TestSerializer(t *testing.T) {
	t.Run("keep-alive", func(t *testing.T) {
		s := NewSerializer()
		head := s.Head(proto.HTTP11, status.OK, len("Hello, World!"), true)
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 13\r\n\r\n", string(head))

		resp, body := readResponse(t, string(head)+"Hello, World!")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, int64(13), resp.ContentLength)
		require.Equal(t, "Hello, World!", body)
		require.False(t, resp.Close)
	})

	t.Run("close", func(t *testing.T) {
		s := NewSerializer()
		head := s.Head(proto.HTTP11, status.NotFound, len("Not Found"), false)

		resp, body := readResponse(t, string(head)+"Not Found")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, "Not Found", body)
		require.True(t, resp.Close)
	})

	t.Run("HTTP/1.0 keep-alive", func(t *testing.T) {
		s := NewSerializer()
		head := s.Head(proto.HTTP10, status.OK, 2, true)
		require.Equal(t, "HTTP/1.0 200 OK\r\nContent-Length: 2\r\nConnection: keep-alive\r\n\r\n", string(head))
	})

	t.Run("unknown protocol", func(t *testing.T) {
		s := NewSerializer()
		head := s.Head(proto.Unknown, status.BadRequest, 0, false)
		require.True(t, strings.HasPrefix(string(head), "HTTP/1.1 400 Bad Request\r\n"))
	})

	t.Run("buffer reuse", func(t *testing.T) {
		s := NewSerializer()
		first := string(s.Head(proto.HTTP11, status.ServiceUnavailable, 100, false))
		second := string(s.Head(proto.HTTP11, status.OK, 2, true))
		require.Contains(t, first, "Content-Length: 100\r\n")
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\n", second)
	})
}

func TestView(t *testing.T) {
	buf := []byte("Hello, World!")
	view := NewView(buf)
	require.False(t, view.Done())

	view.Advance(7)
	require.Equal(t, "World!", string(view.Remaining()))
	require.Same(t, &buf[7], &view.Remaining()[0])

	view.Advance(-1)
	require.Equal(t, "World!", string(view.Remaining()))

	view.Advance(100)
	require.True(t, view.Done())
	require.Empty(t, view.Remaining())
}
