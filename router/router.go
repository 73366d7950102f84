// Package router holds the fixed table requests are dispatched by. Paths are matched
// exactly, there are neither parameters nor prefixes.
package router

import "github.com/indigo-web/hitchhiker/http/status"

// Route describes the outcome for a path. Deferred routes carry no body, it is produced
// by the worker instead.
type Route struct {
	Code     status.Code
	Body     []byte
	Deferred bool
}

type Router struct {
	routes   map[string]Route
	fallback Route
}

var (
	helloBody    = []byte("Hello, World!")
	byeBody      = []byte("Good-bye")
	notFoundBody = []byte("Not Found")
)

// New returns an empty router answering every path with 404 Not Found.
func New() *Router {
	return &Router{
		routes:   make(map[string]Route),
		fallback: Route{Code: status.NotFound, Body: notFoundBody},
	}
}

// Default returns the table the server is shipped with.
func Default() *Router {
	return New().
		Static("/hello", status.OK, helloBody).
		Static("/bye", status.OK, byeBody).
		Deferred("/question")
}

// Static registers a route with an immediate response. The body is never copied nor
// modified, so it must stay immutable.
func (r *Router) Static(path string, code status.Code, body []byte) *Router {
	r.routes[path] = Route{Code: code, Body: body}
	return r
}

// Deferred registers a route whose response is produced by the worker.
func (r *Router) Deferred(path string) *Router {
	r.routes[path] = Route{Code: status.OK, Deferred: true}
	return r
}

// Lookup returns the route registered for the path or the fallback one.
func (r *Router) Lookup(path string) Route {
	if route, found := r.routes[path]; found {
		return route
	}

	return r.fallback
}
