package service

import (
	"context"

	vo "ikedadada/go-onionchain/internal/domain/value_object"
)

// HopTransmitter delivers an envelope to a relay node and waits for its
// answer. Implementations return ErrRelayTimeout, ErrRelayUnreachable or a
// *DownstreamError.
type HopTransmitter interface {
	Forward(ctx context.Context, to vo.Endpoint, env vo.RelayEnvelope) ([]byte, error)
}
