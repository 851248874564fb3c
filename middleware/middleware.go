package middleware

import "net/http"

// Func is a function which receives an http.Handler and returns another
// http.Handler.
type Func func(http.Handler) http.Handler

// Chain wraps h with mws. The first middleware is the outermost and sees the
// request first.
func Chain(h http.Handler, mws ...Func) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}

	return h
}
