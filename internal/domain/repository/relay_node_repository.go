package repository

import (
	"ikedadada/go-onionchain/internal/domain/entity"
	vo "ikedadada/go-onionchain/internal/domain/value_object"
)

// RelayNodeRepository is the directory's registry of relay nodes. Its
// ordering doubles as the FIFO queue used for round-robin chain assembly.
type RelayNodeRepository interface {
	// Register creates or overwrites (same endpoint) a node and issues a
	// fresh secret.
	Register(ep vo.Endpoint, pk vo.RSAPubKey) (vo.NodeSecret, error)
	// Heartbeat stamps the node owning secret; ErrInvalidSecret if none does.
	Heartbeat(secret vo.NodeSecret) error
	FindByEndpoint(ep vo.Endpoint) (*entity.RelayNode, error)
	// ListOrdering returns a snapshot of the ordering, head first.
	ListOrdering() []*entity.RelayNode
	// Update runs fn while holding the registry's exclusive lock.
	Update(fn func(tx RelayNodeTx) error) error
}

// RelayNodeTx is the view of the registry available inside Update.
type RelayNodeTx interface {
	ListOrdering() []*entity.RelayNode
	// RecordUse moves the node to the tail of the ordering.
	RecordUse(ep vo.Endpoint) error
}
