package signer

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
)

// ErrEmptySecret is returned when the secret used to derive the keypair is
// empty.
var ErrEmptySecret = errors.New("signer: secret must not be empty")

// Signer signs messages and verifies signatures with a single keypair.
type Signer interface {
	// Sign returns the signature of message. It never fails.
	Sign(message []byte) []byte

	// Verify reports whether signature is a valid signature of message.
	// Malformed signatures report false.
	Verify(message, signature []byte) bool
}

// Ed25519 is a Signer backed by an Ed25519 keypair derived from a secret.
type Ed25519 struct {
	key ed25519.PrivateKey
	pub ed25519.PublicKey
}

// NewEd25519 derives an Ed25519 keypair from SHA-256(secret).
// It returns ErrEmptySecret if secret is empty.
func NewEd25519(secret []byte) (*Ed25519, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	seed := sha256.Sum256(secret)
	key := ed25519.NewKeyFromSeed(seed[:])

	return &Ed25519{
		key: key,
		pub: key.Public().(ed25519.PublicKey),
	}, nil
}

// MustEd25519 is like NewEd25519 but panics if the keypair cannot be derived.
func MustEd25519(secret []byte) *Ed25519 {
	s, err := NewEd25519(secret)
	if err != nil {
		panic(err)
	}

	return s
}

func (s *Ed25519) Sign(message []byte) []byte {
	return ed25519.Sign(s.key, message)
}

func (s *Ed25519) Verify(message, signature []byte) bool {
	if len(signature) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(s.pub, message, signature)
}
