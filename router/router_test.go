package router

import (
	"testing"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/hitchhiker/http/status"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	r := Default()

	t.Run("static", func(t *testing.T) {
		hello := r.Lookup("/hello")
		require.Equal(t, status.OK, hello.Code)
		require.Equal(t, "Hello, World!", string(hello.Body))
		require.False(t, hello.Deferred)

		bye := r.Lookup("/bye")
		require.Equal(t, status.OK, bye.Code)
		require.Equal(t, "Good-bye", string(bye.Body))
	})

	t.Run("deferred", func(t *testing.T) {
		question := r.Lookup("/question")
		require.Equal(t, status.OK, question.Code)
		require.True(t, question.Deferred)
		require.Empty(t, question.Body)
	})

	t.Run("exact match only", func(t *testing.T) {
		for _, path := range []string{"/hello/", "/Hello", "/hello/world", "/", "/questions", "hello"} {
			route := r.Lookup(path)
			require.Equal(t, status.NotFound, route.Code, path)
			require.Equal(t, "Not Found", string(route.Body), path)
		}
	})

	t.Run("random paths", func(t *testing.T) {
		for range 100 {
			route := r.Lookup("/" + uniuri.New())
			require.Equal(t, status.NotFound, route.Code)
			require.False(t, route.Deferred)
		}
	})
}
