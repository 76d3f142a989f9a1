package value_object

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// RelayEnvelope is the opaque ciphertext exchanged between adjacent hops.
// Its wire form is the standard base64 encoding of the ciphertext.
type RelayEnvelope struct {
	ciphertext []byte
}

var ErrEmptyEnvelope = errors.New("empty envelope")

func NewRelayEnvelope(ct []byte) (RelayEnvelope, error) {
	if len(ct) == 0 {
		return RelayEnvelope{}, ErrEmptyEnvelope
	}
	buf := make([]byte, len(ct))
	copy(buf, ct)
	return RelayEnvelope{ciphertext: buf}, nil
}

// DecodeRelayEnvelope parses the base64 wire form.
func DecodeRelayEnvelope(payload string) (RelayEnvelope, error) {
	ct, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return RelayEnvelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return NewRelayEnvelope(ct)
}

func (e RelayEnvelope) Ciphertext() []byte { return e.ciphertext }
func (e RelayEnvelope) Encode() string     { return base64.StdEncoding.EncodeToString(e.ciphertext) }
