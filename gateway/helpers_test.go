package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
)

const (
	testSecret     = "my_secret_key"
	testMessage    = "Hello, world!"
	knownSignature = "2990e2f07f205f76e04331b257a0c8369302ffc26b573d96b9100e3f4433b28bb427b1c62050aa49e5b8f1f7a25d9cb1df60b64001ee2a909a9c04e66042a905"
)

var errTestTransport = errors.New("connection reset")

// fakeSession is an in-memory Session with scripted body chunks.
type fakeSession struct {
	summary string
	chunks  [][]byte
	readErr error

	reads int

	status         int
	header         http.Header
	body           []byte
	wroteHeader    bool
	wroteBody      bool
	headerWriteErr error
	bodyWriteErr   error
}

func (f *fakeSession) RequestSummary() string { return f.summary }

func (f *fakeSession) ReadBodyChunk(_ context.Context) ([]byte, error) {
	f.reads++

	if len(f.chunks) == 0 {
		if f.readErr != nil {
			return nil, f.readErr
		}

		return nil, io.EOF
	}

	chunk := f.chunks[0]
	f.chunks = f.chunks[1:]

	return chunk, nil
}

func (f *fakeSession) WriteResponseHeader(status int, header http.Header) error {
	if f.headerWriteErr != nil {
		return f.headerWriteErr
	}

	f.status = status
	f.header = header
	f.wroteHeader = true

	return nil
}

func (f *fakeSession) WriteResponseBody(body []byte) error {
	if f.bodyWriteErr != nil {
		return f.bodyWriteErr
	}

	f.body = body
	f.wroteBody = true

	return nil
}

// fakeSigner records calls and returns fixed results.
type fakeSigner struct {
	signature   []byte
	valid       bool
	signCalls   int
	verifyCalls int
	lastMessage []byte
	lastSig     []byte
}

func (f *fakeSigner) Sign(message []byte) []byte {
	f.signCalls++
	f.lastMessage = message

	return f.signature
}

func (f *fakeSigner) Verify(message, signature []byte) bool {
	f.verifyCalls++
	f.lastMessage = message
	f.lastSig = signature

	return f.valid
}

func strPtr(s string) *string {
	return &s
}
