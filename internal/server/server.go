// Package server serves the article backend's REST contract from any [services.Backend].
//
// `postx serve` uses it to share one mock transport between several CLI invocations.
package server

import (
	"net/http"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows which patterns it serves.
type Handler interface {
	http.Handler
	// Routes returns "METHOD /path/{param}/" patterns.
	Routes() []string
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler)
	Handler(handler Handler)
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}
