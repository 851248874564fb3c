package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// DefaultChunkSize is the number of bytes NewHTTPSession reads per body chunk.
const DefaultChunkSize = 4096

// ChunkReader yields a request body one chunk at a time.
type ChunkReader interface {
	// ReadBodyChunk returns the next chunk of the body. It returns io.EOF
	// once the body is exhausted.
	ReadBodyChunk(ctx context.Context) ([]byte, error)
}

// Session is the transport a request is served over.
type Session interface {
	ChunkReader

	// RequestSummary returns a one-line description of the request
	// starting with the method and the request target.
	RequestSummary() string

	// WriteResponseHeader writes the status line and header. It may be
	// called once per session.
	WriteResponseHeader(status int, header http.Header) error

	// WriteResponseBody writes the response body after the header.
	WriteResponseBody(body []byte) error
}

type httpSession struct {
	w         http.ResponseWriter
	r         *http.Request
	chunkSize int

	eof         bool
	wroteHeader bool
}

// NewHTTPSession adapts a net/http request and response writer to a
// Session. Body chunks are at most chunkSize bytes; values below one use
// DefaultChunkSize.
//
//nolint:ireturn // Session is the pipeline's transport abstraction
func NewHTTPSession(w http.ResponseWriter, r *http.Request, chunkSize int) Session {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}

	return &httpSession{w: w, r: r, chunkSize: chunkSize}
}

func (s *httpSession) RequestSummary() string {
	return s.r.Method + " " + s.r.URL.RequestURI() + ", Host: " + s.r.Host
}

func (s *httpSession) ReadBodyChunk(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.eof || s.r.Body == nil {
		return nil, io.EOF
	}

	buf := make([]byte, s.chunkSize)

	for {
		n, err := s.r.Body.Read(buf)

		if errors.Is(err, io.EOF) {
			s.eof = true

			if n > 0 {
				return buf[:n], nil
			}

			return nil, io.EOF
		}

		if err != nil {
			return nil, err
		}

		if n > 0 {
			return buf[:n], nil
		}
	}
}

func (s *httpSession) WriteResponseHeader(status int, header http.Header) error {
	if s.wroteHeader {
		return ErrHeaderWritten
	}

	dst := s.w.Header()
	for key, values := range header {
		dst[key] = append([]string(nil), values...)
	}

	s.w.WriteHeader(status)
	s.wroteHeader = true

	return nil
}

func (s *httpSession) WriteResponseBody(body []byte) error {
	if !s.wroteHeader {
		return ErrHeaderNotWritten
	}

	if len(body) == 0 {
		return nil
	}

	_, err := s.w.Write(body)

	return err
}
