// package server contains the routing primitives for the OAuth loopback server
package server

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that declares its own routes, keeping route
// definitions next to the code serving them.
type Handler interface {
	http.Handler
	// Routes returns the path patterns this handler serves.
	Routes() []string
}

// Router registers handlers and middleware and serves them as one
// http.Handler.
type Router interface {
	// Use adds middleware applied to every registered route.
	Use(middleware ...Middleware)
	// Handle registers a handler for one method and path.
	Handle(method, path string, handler http.Handler)
	// Handler registers a Handler on all of its declared routes.
	Handler(handler Handler)
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}
