package value_object

import (
	"encoding/json"
	"errors"
	"fmt"
)

// HopKind tells a relay whether it forwards or terminates the chain.
type HopKind uint8

const (
	HopIntermediate HopKind = iota
	HopExit
)

func (k HopKind) String() string {
	switch k {
	case HopExit:
		return "exit"
	default:
		return "intermediate"
	}
}

// NextHop is the address an intermediate hop forwards the inner payload to.
type NextHop struct {
	Address string `json:"address"`
	Port    uint16 `json:"port"`
}

// TargetServiceRequest is what the exit hop executes on behalf of the
// originator. The response is encrypted with OriginatorPubKey (PEM).
type TargetServiceRequest struct {
	Method           string `json:"method"`
	URL              string `json:"url"`
	Body             string `json:"body,omitempty"`
	OriginatorPubKey string `json:"originator_pubkey"`
}

// RelayInstruction is the plaintext a relay obtains after removing its layer.
type RelayInstruction struct {
	NextHop              *NextHop              `json:"next_hop,omitempty"`
	Payload              []byte                `json:"payload,omitempty"`
	TargetServiceRequest *TargetServiceRequest `json:"target_service_request,omitempty"`
}

var ErrMalformedInstruction = errors.New("malformed relay instruction")

func NewIntermediateInstruction(next Endpoint, inner []byte) *RelayInstruction {
	return &RelayInstruction{
		NextHop: &NextHop{Address: next.Host(), Port: next.Port()},
		Payload: inner,
	}
}

func NewExitInstruction(req TargetServiceRequest) *RelayInstruction {
	return &RelayInstruction{TargetServiceRequest: &req}
}

// Kind is Exit iff a target-service request is present.
func (i *RelayInstruction) Kind() HopKind {
	if i.TargetServiceRequest != nil {
		return HopExit
	}
	return HopIntermediate
}

func (i *RelayInstruction) NextHopEndpoint() (Endpoint, error) {
	if i.NextHop == nil {
		return Endpoint{}, fmt.Errorf("%w: next hop missing", ErrMalformedInstruction)
	}
	ep, err := NewEndpoint(i.NextHop.Address, i.NextHop.Port)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %v", ErrMalformedInstruction, err)
	}
	return ep, nil
}

// EncodeRelayInstruction serializes i as JSON.
func EncodeRelayInstruction(i *RelayInstruction) ([]byte, error) {
	return json.Marshal(i)
}

// DecodeRelayInstruction parses and validates a decrypted layer.
func DecodeRelayInstruction(b []byte) (*RelayInstruction, error) {
	var i RelayInstruction
	if err := json.Unmarshal(b, &i); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInstruction, err)
	}
	if i.Kind() == HopIntermediate {
		if _, err := i.NextHopEndpoint(); err != nil {
			return nil, err
		}
		if len(i.Payload) == 0 {
			return nil, fmt.Errorf("%w: empty inner payload", ErrMalformedInstruction)
		}
	}
	return &i, nil
}
