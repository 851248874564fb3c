package gateway

import (
	"encoding/hex"
	"fmt"

	"github.com/vitalvas/signgate/signer"
	"go.uber.org/zap"
)

const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
)

// Dispatcher runs the signer operation behind each route.
type Dispatcher struct {
	signer signer.Signer
	logger *zap.Logger
}

// NewDispatcher returns a Dispatcher using s. A nil logger disables logging.
func NewDispatcher(s signer.Signer, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{signer: s, logger: logger}
}

// Dispatch answers route for body. It reports false when the request cannot
// be answered, which callers map to 400 Bad Request.
//
// Dispatch panics if route is not one of Routes().
func (d *Dispatcher) Dispatch(route Route, body *RequestBody) (*ResponseBody, bool) {
	switch route {
	case RouteSign:
		return d.sign(body), true

	case RouteVerify:
		return d.verify(body)

	default:
		panic(fmt.Errorf("%w: %q", ErrUnknownRoute, route))
	}
}

func (d *Dispatcher) sign(body *RequestBody) *ResponseBody {
	sig := d.signer.Sign([]byte(body.Data))

	return &ResponseBody{Result: hex.EncodeToString(sig)}
}

func (d *Dispatcher) verify(body *RequestBody) (*ResponseBody, bool) {
	if body.Signature == nil {
		d.logger.Error("signature is missing")
		return nil, false
	}

	// undecodable hex is checked as an empty signature and reported invalid
	sig, err := hex.DecodeString(*body.Signature)
	if err != nil {
		d.logger.Error("failed to decode hex signature", zap.Error(err))
		sig = []byte{}
	}

	if d.signer.Verify([]byte(body.Data), sig) {
		return &ResponseBody{Result: ResultValid}, true
	}

	return &ResponseBody{Result: ResultInvalid}, true
}
