package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientNodes: fewer alive nodes than the requested chain length.
	ErrInsufficientNodes = errors.New("not enough nodes")

	ErrInvalidKeyMaterial  = errors.New("invalid key material")
	ErrMalformedCiphertext = errors.New("malformed ciphertext")

	// Relay protocol failures, terminal for the request they occur in.
	ErrDecryption       = errors.New("could not decrypt message")
	ErrEncryption       = errors.New("could not encrypt message with originator's key")
	ErrRelayTimeout     = errors.New("next hop timed out")
	ErrRelayUnreachable = errors.New("next hop unreachable")
	ErrTargetService    = errors.New("target service unavailable")

	// ErrDirectory is an error response from the directory other than an
	// invalid secret.
	ErrDirectory = errors.New("directory error")
)

// DownstreamError carries a non-2xx answer of the next hop so it can be
// relayed back unmodified.
type DownstreamError struct {
	Status int
	Body   []byte
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("next hop answered %d: %s", e.Status, e.Body)
}
