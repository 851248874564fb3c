package gateway

import "errors"

var (
	// ErrMalformedSummary is returned when a request summary does not
	// contain at least a method and a request target.
	ErrMalformedSummary = errors.New("gateway: malformed request summary")

	// ErrMissingData is returned when a request body has no "data" field.
	ErrMissingData = errors.New("gateway: request body is missing data")

	// ErrInvalidEncoding is returned when a request body is not valid
	// UTF-8 or a string in it escapes an unpaired surrogate.
	ErrInvalidEncoding = errors.New("gateway: request body is not valid UTF-8")

	// ErrTrailingData is returned when a request body contains more than
	// one JSON value.
	ErrTrailingData = errors.New("gateway: unexpected trailing data after JSON value")

	// ErrUnknownRoute is the panic value used when a route outside the
	// known set reaches the dispatcher.
	ErrUnknownRoute = errors.New("gateway: unknown route")

	// ErrHeaderWritten is returned when a response header is written twice.
	ErrHeaderWritten = errors.New("gateway: response header already written")

	// ErrHeaderNotWritten is returned when a response body is written
	// before the header.
	ErrHeaderNotWritten = errors.New("gateway: response header not written")

	// ErrTransport wraps failures writing the response.
	ErrTransport = errors.New("gateway: transport error")
)
