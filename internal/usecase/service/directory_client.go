package service

import (
	"context"

	vo "ikedadada/go-onionchain/internal/domain/value_object"
)

// RegisterRequest is what a node announces about itself to the directory.
type RegisterRequest struct {
	PublicKey vo.RSAPubKey
	Endpoint  vo.Endpoint
}

// DirectoryClient talks to the directory service.
type DirectoryClient interface {
	Register(ctx context.Context, req RegisterRequest) (vo.NodeSecret, error)
	// Heartbeat returns repository.ErrInvalidSecret when the directory does
	// not recognise secret.
	Heartbeat(ctx context.Context, secret vo.NodeSecret) error
	FetchChain(ctx context.Context) (vo.ChainDescriptor, error)
}
