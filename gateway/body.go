package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"go.uber.org/zap"
)

// RequestBody is the JSON payload accepted by the sign and verify routes.
type RequestBody struct {
	// Data is the message to sign or the message that was signed.
	Data string `json:"data"`

	// Signature is the hex-encoded signature to check. Only the verify
	// route uses it; nil means the field was absent.
	Signature *string `json:"signature,omitempty"`
}

// ResponseBody is the JSON payload returned by the sign and verify routes.
type ResponseBody struct {
	Result string `json:"result"`
}

// Accumulate drains r into a single buffer, preserving chunk order. Any read
// error other than io.EOF discards what was read and is returned.
func Accumulate(ctx context.Context, r ChunkReader) ([]byte, error) {
	var buf []byte

	for {
		chunk, err := r.ReadBodyChunk(ctx)
		if errors.Is(err, io.EOF) {
			return buf, nil
		}

		if err != nil {
			return nil, err
		}

		buf = append(buf, chunk...)
	}
}

// DecodeRequestBody decodes data as a RequestBody. The "data" key is
// required and, like "signature", matched case-sensitively; other keys are
// ignored. Exactly one JSON value must be present. Invalid UTF-8 and
// unpaired surrogate escapes are rejected with ErrInvalidEncoding rather
// than replaced, so the message signed is always the message sent.
func DecodeRequestBody(data []byte) (*RequestBody, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}

	var fields map[string]json.RawMessage

	dec := json.NewDecoder(bytes.NewReader(data))

	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}

	msg, err := stringField(fields, "data")
	if err != nil {
		return nil, err
	}

	if msg == nil {
		return nil, ErrMissingData
	}

	sig, err := stringField(fields, "signature")
	if err != nil {
		return nil, err
	}

	return &RequestBody{Data: *msg, Signature: sig}, nil
}

// stringField returns the string stored under key, or nil when key is absent
// or null.
func stringField(fields map[string]json.RawMessage, key string) (*string, error) {
	raw, ok := fields[key]
	if !ok || bytes.Equal(raw, []byte("null")) {
		return nil, nil //nolint:nilnil // absent and null are the same to callers
	}

	if !pairedSurrogates(raw) {
		return nil, fmt.Errorf("%w: %s has an unpaired surrogate escape", ErrInvalidEncoding, key)
	}

	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("gateway: field %s: %w", key, err)
	}

	return &v, nil
}

// pairedSurrogates reports whether every \u escape in the JSON string
// literal raw is either a non-surrogate or a high surrogate immediately
// followed by a low surrogate escape. encoding/json would otherwise decode a
// lone surrogate to U+FFFD.
func pairedSurrogates(raw []byte) bool {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' {
			continue
		}

		i++
		if i >= len(raw) || raw[i] != 'u' {
			continue
		}

		r, ok := hexEscape(raw, i+1)
		if !ok {
			return false
		}

		i += 4

		if !utf16.IsSurrogate(r) {
			continue
		}

		if r >= 0xdc00 || i+6 >= len(raw) || raw[i+1] != '\\' || raw[i+2] != 'u' {
			return false
		}

		low, ok := hexEscape(raw, i+3)
		if !ok || low < 0xdc00 || low > 0xdfff {
			return false
		}

		i += 6
	}

	return true
}

func hexEscape(raw []byte, start int) (rune, bool) {
	if start+4 > len(raw) {
		return 0, false
	}

	v, err := strconv.ParseUint(string(raw[start:start+4]), 16, 32)
	if err != nil {
		return 0, false
	}

	return rune(v), true
}

// ReadRequestBody accumulates and decodes the request body. Read and decode
// failures are logged and both report false; callers cannot tell them apart.
func ReadRequestBody(ctx context.Context, r ChunkReader, logger *zap.Logger) (*RequestBody, bool) {
	data, err := Accumulate(ctx, r)
	if err != nil {
		logger.Error("failed to read request body", zap.Error(err))
		return nil, false
	}

	body, err := DecodeRequestBody(data)
	if err != nil {
		logger.Error("failed to decode request body", zap.Int("bytes", len(data)), zap.Error(err))
		return nil, false
	}

	logger.Debug("request body decoded",
		zap.Int("data_length", len(body.Data)),
		zap.Bool("has_signature", body.Signature != nil),
	)

	return body, true
}
