// Package gateway implements the request pipeline that answers the sign and
// verify routes in place.
//
// Every request flows through the same sequence:
//
//	classify -> read body -> dispatch -> respond
//
// Classification looks only at the request summary (method and first path
// segment) and short-circuits before any body is read:
//
//	POST /sign, POST /verify   accepted
//	POST /<anything else>      404 Not Found
//	OPTIONS /<any path>        204 No Content (CORS preflight)
//	any other method           405 Method Not Allowed
//
// Accepted requests have their body drained chunk by chunk and decoded as
//
//	{"data": "<string>", "signature": "<hex, verify only>"}
//
// and the dispatcher answers with {"result": "<string>"}: a hex signature for
// sign, or "valid" / "invalid" for verify. Bodies that cannot be read or
// decoded, and verify requests without a signature, receive 400 with an
// empty body.
//
// Every response carries Content-Length and the CORS headers described by
// CORSConfig, including rejections and preflight responses.
//
// # Usage
//
//	s, err := signer.NewEd25519(secret)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	h := gateway.NewHandler(s, gateway.WithLogger(logger))
//	http.ListenAndServe(":6191", h)
//
// The pipeline itself is transport agnostic: Handler.Serve works on any
// Session, and ServeHTTP adapts net/http through NewHTTPSession.
package gateway
