package gateway

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// Route names an operation the gateway answers in place.
type Route string

const (
	RouteSign   Route = "sign"
	RouteVerify Route = "verify"
)

// knownRoutes is the single source of truth for both classification and
// dispatch.
var knownRoutes = [...]Route{RouteSign, RouteVerify}

// Routes returns the routes the gateway accepts.
func Routes() []Route {
	return slices.Clone(knownRoutes[:])
}

// LookupRoute returns the Route named name, if it is known.
func LookupRoute(name string) (Route, bool) {
	for _, r := range knownRoutes {
		if string(r) == name {
			return r, true
		}
	}

	return "", false
}

// Summary is the method and route candidate extracted from a request.
type Summary struct {
	Method string
	Route  string
}

// ParseSummary extracts the method and the route candidate from a one-line
// request summary such as "POST /sign, Host: localhost".
//
// The route candidate is the first non-empty path segment of the request
// target, without query string and with trailing commas removed. Summaries
// with fewer than two fields return ErrMalformedSummary and a zero Summary.
func ParseSummary(summary string) (Summary, error) {
	fields := strings.Fields(summary)
	if len(fields) < 2 {
		return Summary{}, fmt.Errorf("%w: %q", ErrMalformedSummary, summary)
	}

	target := strings.TrimRight(fields[1], ",")

	// absolute-form target (RFC 9112 section 3.2.2)
	if strings.Contains(target, "://") {
		if u, err := url.Parse(target); err == nil {
			target = u.Path
		}
	}

	if idx := strings.IndexAny(target, "?#"); idx != -1 {
		target = target[:idx]
	}

	var route string

	for segment := range strings.SplitSeq(target, "/") {
		if segment != "" {
			route = strings.TrimRight(segment, ",")
			break
		}
	}

	return Summary{Method: fields[0], Route: route}, nil
}

// Classification is the outcome of classifying a request. Status is
// http.StatusOK for accepted requests, in which case Route is set; any other
// status rejects the request with an empty body.
type Classification struct {
	Route  Route
	Status int
}

// Accepted reports whether the request should proceed to body handling.
func (c Classification) Accepted() bool {
	return c.Status == http.StatusOK
}

// Classify decides how a request is handled from its summary alone.
func Classify(s Summary) Classification {
	switch s.Method {
	case http.MethodPost:
		if route, ok := LookupRoute(s.Route); ok {
			return Classification{Route: route, Status: http.StatusOK}
		}

		return Classification{Status: http.StatusNotFound}

	case http.MethodOptions:
		// browsers send a preflight before a POST with a JSON content type
		return Classification{Status: http.StatusNoContent}

	default:
		return Classification{Status: http.StatusMethodNotAllowed}
	}
}
