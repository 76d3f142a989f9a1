package repository

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"

	"ikedadada/go-onionchain/internal/domain/entity"
	"ikedadada/go-onionchain/internal/domain/repository"
	vo "ikedadada/go-onionchain/internal/domain/value_object"
)

// relayNodeRepositoryImpl keeps every registered node in memory. Nothing is
// ever evicted.
type relayNodeRepositoryImpl struct {
	clk clock.Clock

	mu       sync.Mutex
	ordering []*entity.RelayNode
	bySecret map[vo.NodeSecret]*entity.RelayNode
}

// NewRelayNodeRepository creates an empty in-memory registry stamping
// heartbeats with clk.
func NewRelayNodeRepository(clk clock.Clock) repository.RelayNodeRepository {
	return &relayNodeRepositoryImpl{
		clk:      clk,
		bySecret: make(map[vo.NodeSecret]*entity.RelayNode),
	}
}

func (r *relayNodeRepositoryImpl) Register(ep vo.Endpoint, pk vo.RSAPubKey) (vo.NodeSecret, error) {
	if ep.IsZero() || pk.PublicKey == nil {
		return vo.NodeSecret{}, fmt.Errorf("register: %w", repository.ErrInvalidInput)
	}
	secret := vo.NewNodeSecret()
	node := entity.NewRelayNode(ep, pk, secret)

	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexLocked(ep); i >= 0 {
		// Same identity: replace in place, the old secret stops working.
		delete(r.bySecret, r.ordering[i].Secret())
		r.ordering[i] = node
	} else {
		r.ordering = append(r.ordering, node)
	}
	r.bySecret[secret] = node
	return secret, nil
}

func (r *relayNodeRepositoryImpl) Heartbeat(secret vo.NodeSecret) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	node, ok := r.bySecret[secret]
	if !ok {
		return repository.ErrInvalidSecret
	}
	node.RecordHeartbeat(r.clk.Now())
	return nil
}

func (r *relayNodeRepositoryImpl) FindByEndpoint(ep vo.Endpoint) (*entity.RelayNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexLocked(ep); i >= 0 {
		return r.ordering[i], nil
	}
	return nil, repository.ErrNotFound
}

func (r *relayNodeRepositoryImpl) ListOrdering() []*entity.RelayNode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *relayNodeRepositoryImpl) Update(fn func(tx repository.RelayNodeTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(lockedTx{r})
}

func (r *relayNodeRepositoryImpl) snapshotLocked() []*entity.RelayNode {
	out := make([]*entity.RelayNode, len(r.ordering))
	copy(out, r.ordering)
	return out
}

func (r *relayNodeRepositoryImpl) indexLocked(ep vo.Endpoint) int {
	for i, n := range r.ordering {
		if n.Endpoint() == ep {
			return i
		}
	}
	return -1
}

func (r *relayNodeRepositoryImpl) recordUseLocked(ep vo.Endpoint) error {
	i := r.indexLocked(ep)
	if i < 0 {
		return repository.ErrNotFound
	}
	node := r.ordering[i]
	copy(r.ordering[i:], r.ordering[i+1:])
	r.ordering[len(r.ordering)-1] = node
	return nil
}

// lockedTx is only valid inside Update.
type lockedTx struct{ r *relayNodeRepositoryImpl }

func (tx lockedTx) ListOrdering() []*entity.RelayNode { return tx.r.snapshotLocked() }
func (tx lockedTx) RecordUse(ep vo.Endpoint) error    { return tx.r.recordUseLocked(ep) }
