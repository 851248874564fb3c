package gateway

import (
	"context"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/signgate/logging"
	"github.com/vitalvas/signgate/signer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestHandler(opts ...Option) *Handler {
	return NewHandler(signer.MustEd25519([]byte(testSecret)), opts...)
}

func assertCORSHeaders(t *testing.T, h http.Header) {
	t.Helper()

	assert.Equal(t, "*", h.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST", h.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", h.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", h.Get("Access-Control-Max-Age"))
}

func TestHandlerServeHTTP(t *testing.T) {
	flipped, err := hex.DecodeString(knownSignature)
	require.NoError(t, err)
	flipped[0] ^= 0x01

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "sign",
			method:     http.MethodPost,
			target:     "/sign",
			body:       `{"data":"Hello, world!"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"result":"` + knownSignature + `"}`,
		},
		{
			name:       "verify valid",
			method:     http.MethodPost,
			target:     "/verify",
			body:       `{"data":"Hello, world!","signature":"` + knownSignature + `"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"result":"valid"}`,
		},
		{
			name:       "verify flipped byte",
			method:     http.MethodPost,
			target:     "/verify",
			body:       `{"data":"Hello, world!","signature":"` + hex.EncodeToString(flipped) + `"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"result":"invalid"}`,
		},
		{
			name:       "verify undecodable signature",
			method:     http.MethodPost,
			target:     "/verify",
			body:       `{"data":"Hello, world!","signature":"xyz"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"result":"invalid"}`,
		},
		{
			name:       "verify missing signature",
			method:     http.MethodPost,
			target:     "/verify",
			body:       `{"data":"Hello, world!"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "sign truncated json",
			method:     http.MethodPost,
			target:     "/sign",
			body:       `{"data":"Hello`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "sign missing data",
			method:     http.MethodPost,
			target:     "/sign",
			body:       `{"signature":"00"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "sign invalid utf-8",
			method:     http.MethodPost,
			target:     "/sign",
			body:       "{\"data\":\"Hello\xff\"}",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "sign lone surrogate",
			method:     http.MethodPost,
			target:     "/sign",
			body:       `{"data":"Hello\ud800"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "sign wrong case data",
			method:     http.MethodPost,
			target:     "/sign",
			body:       `{"Data":"Hello, world!"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "verify wrong case signature",
			method:     http.MethodPost,
			target:     "/verify",
			body:       `{"data":"Hello, world!","Signature":"` + knownSignature + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "sign empty body",
			method:     http.MethodPost,
			target:     "/sign",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "sign with query",
			method:     http.MethodPost,
			target:     "/sign?trace=1",
			body:       `{"data":"Hello, world!"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"result":"` + knownSignature + `"}`,
		},
		{
			name:       "preflight sign",
			method:     http.MethodOptions,
			target:     "/sign",
			body:       `this is not json`,
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "preflight unknown path",
			method:     http.MethodOptions,
			target:     "/anything/else",
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "get sign",
			method:     http.MethodGet,
			target:     "/sign",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "delete verify",
			method:     http.MethodDelete,
			target:     "/verify",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "post unknown",
			method:     http.MethodPost,
			target:     "/unknown",
			body:       `{"data":"x"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "post root",
			method:     http.MethodPost,
			target:     "/",
			body:       `{"data":"x"}`,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
			assert.Equal(t, len(tt.wantBody), len(w.Body.Bytes()))
			assert.Equal(t, strconv.Itoa(len(tt.wantBody)), w.Header().Get("Content-Length"))
			assertCORSHeaders(t, w.Header())
		})
	}
}

func TestHandlerChunkedBody(t *testing.T) {
	h := newTestHandler(WithChunkSize(3))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sign", strings.NewReader(`{"data":"Hello, world!"}`))
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"result":"`+knownSignature+`"}`, w.Body.String())
}

func TestHandlerServe(t *testing.T) {
	t.Run("rejection does not read body", func(t *testing.T) {
		for _, summary := range []string{"OPTIONS /sign, Host: localhost", "GET /sign", "POST /unknown", ""} {
			s := &fakeSession{summary: summary, chunks: [][]byte{[]byte(`{"data":"x"}`)}}

			require.NoError(t, newTestHandler().Serve(context.Background(), s))
			assert.Equal(t, 0, s.reads, summary)
			assert.Empty(t, s.body, summary)
			assertCORSHeaders(t, s.header)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		s := &fakeSession{summary: "OPTIONS /sign, Host: localhost", chunks: [][]byte{[]byte(`garbage`)}}

		require.NoError(t, newTestHandler().Serve(context.Background(), s))
		assert.Equal(t, http.StatusNoContent, s.status)
		assert.Equal(t, "0", s.header.Get("Content-Length"))
		assert.Empty(t, s.body)
	})

	t.Run("malformed summary", func(t *testing.T) {
		s := &fakeSession{summary: "garbage"}

		require.NoError(t, newTestHandler().Serve(context.Background(), s))
		assert.Equal(t, http.StatusMethodNotAllowed, s.status)
	})

	t.Run("transport error while reading", func(t *testing.T) {
		s := &fakeSession{
			summary: "POST /sign, Host: localhost",
			chunks:  [][]byte{[]byte(`{"data":"x"}`)},
			readErr: errTestTransport,
		}

		require.NoError(t, newTestHandler().Serve(context.Background(), s))
		assert.Equal(t, http.StatusBadRequest, s.status)
		assert.Empty(t, s.body)
	})

	t.Run("caller gone while reading", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := &fakeSession{
			summary: "POST /sign, Host: localhost",
			readErr: context.Canceled,
		}

		err := newTestHandler().Serve(ctx, s)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, s.wroteHeader)
	})

	t.Run("header write failure", func(t *testing.T) {
		s := &fakeSession{
			summary:        "POST /sign, Host: localhost",
			chunks:         [][]byte{[]byte(`{"data":"x"}`)},
			headerWriteErr: errTestTransport,
		}

		err := newTestHandler().Serve(context.Background(), s)
		assert.ErrorIs(t, err, ErrTransport)
		assert.ErrorIs(t, err, errTestTransport)
	})

	t.Run("body write failure", func(t *testing.T) {
		s := &fakeSession{
			summary:      "POST /sign, Host: localhost",
			chunks:       [][]byte{[]byte(`{"data":"x"}`)},
			bodyWriteErr: errTestTransport,
		}

		err := newTestHandler().Serve(context.Background(), s)
		assert.ErrorIs(t, err, ErrTransport)
	})

	t.Run("fake signer", func(t *testing.T) {
		fake := &fakeSigner{signature: []byte{0x0a, 0x0b}}
		s := &fakeSession{summary: "POST /sign", chunks: [][]byte{[]byte(`{"data":"abc"}`)}}

		require.NoError(t, NewHandler(fake).Serve(context.Background(), s))
		assert.Equal(t, `{"result":"0a0b"}`, string(s.body))
		assert.Equal(t, "application/json", s.header.Get("Content-Type"))
	})

	t.Run("custom cors", func(t *testing.T) {
		s := &fakeSession{summary: "OPTIONS /verify"}
		h := newTestHandler(WithCORS(CORSConfig{
			AllowedOrigin:  "https://app.example.com",
			AllowedMethods: []string{http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         60,
		}))

		require.NoError(t, h.Serve(context.Background(), s))
		assert.Equal(t, "https://app.example.com", s.header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "60", s.header.Get("Access-Control-Max-Age"))
	})
}

func TestHandlerLogging(t *testing.T) {
	t.Run("access log", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		h := newTestHandler(WithLogger(zap.New(core)))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/sign", nil)
		h.ServeHTTP(w, req)

		entries := logs.FilterMessage("request served").All()
		require.Len(t, entries, 1)

		fields := entries[0].ContextMap()
		assert.Equal(t, "GET /sign, Host: example.com", fields["summary"])
		assert.Equal(t, int64(http.StatusMethodNotAllowed), fields["status"])
	})

	t.Run("request-scoped logger wins", func(t *testing.T) {
		handlerCore, handlerLogs := observer.New(zapcore.InfoLevel)
		requestCore, requestLogs := observer.New(zapcore.InfoLevel)
		h := newTestHandler(WithLogger(zap.New(handlerCore)))

		scoped := zap.New(requestCore).With(zap.String("request_id", "req-1"))
		req := httptest.NewRequest(http.MethodOptions, "/sign", nil)
		req = req.WithContext(logging.NewContext(req.Context(), scoped))

		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, 0, handlerLogs.Len())
		require.Equal(t, 1, requestLogs.Len())
		assert.Equal(t, "req-1", requestLogs.All()[0].ContextMap()["request_id"])
	})

	t.Run("missing signature is logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		h := newTestHandler(WithLogger(zap.New(core)))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(`{"data":"x"}`))
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 1, logs.FilterMessage("signature is missing").Len())
	})
}
