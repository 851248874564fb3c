// Package signer provides the Ed25519 signing service used by the gateway.
//
// The keypair is derived deterministically from a secret: the secret is
// hashed with SHA-256 and the digest is used as the Ed25519 seed. The same
// secret therefore always yields the same keypair, and signatures survive
// process restarts.
//
//	s, err := signer.NewEd25519([]byte("my_secret_key"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sig := s.Sign([]byte("Hello, world!"))
//	ok := s.Verify([]byte("Hello, world!"), sig)
//
// An Ed25519 value is immutable after construction and safe for concurrent
// use without additional locking.
//
// # Metrics
//
// Instrument wraps any Signer and counts operations and verification
// outcomes in a Prometheus registry:
//
//	s, err := signer.Instrument(base, prometheus.DefaultRegisterer)
package signer
