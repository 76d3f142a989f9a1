package service

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"ikedadada/go-onionchain/internal/domain/entity"
	"ikedadada/go-onionchain/internal/domain/repository"
	"ikedadada/go-onionchain/internal/domain/value_object"
)

// ChainAssemblyService はレジストリから生存ノードをラウンドロビンで選び、チェーンを組み立てる。
type ChainAssemblyService interface {
	// Assemble returns exactly length alive nodes or ErrInsufficientNodes.
	Assemble(length int, timeout time.Duration) (value_object.ChainDescriptor, error)
}

type chainAssemblyServiceImpl struct {
	rr  repository.RelayNodeRepository
	clk clock.Clock
}

func NewChainAssemblyService(rr repository.RelayNodeRepository, clk clock.Clock) ChainAssemblyService {
	return &chainAssemblyServiceImpl{rr: rr, clk: clk}
}

func (s *chainAssemblyServiceImpl) Assemble(length int, timeout time.Duration) (value_object.ChainDescriptor, error) {
	if length <= 0 {
		return value_object.ChainDescriptor{}, fmt.Errorf("chain length %d: %w", length, repository.ErrInvalidInput)
	}

	var selected []*entity.RelayNode
	err := s.rr.Update(func(tx repository.RelayNodeTx) error {
		now := s.clk.Now()
		// Scan the ordering as it was on entry, once, head first. Rotated
		// nodes are never revisited.
		for _, n := range tx.ListOrdering() {
			if len(selected) == length {
				break
			}
			if !n.IsAlive(now, timeout) {
				continue
			}
			selected = append(selected, n)
			if err := tx.RecordUse(n.Endpoint()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return value_object.ChainDescriptor{}, fmt.Errorf("assemble chain: %w", err)
	}
	if len(selected) < length {
		return value_object.ChainDescriptor{}, fmt.Errorf("%w: need %d, have %d alive", ErrInsufficientNodes, length, len(selected))
	}

	nodes := make([]value_object.ChainNode, 0, length)
	for _, n := range selected {
		nodes = append(nodes, n.ChainNode())
	}
	return value_object.NewChainDescriptor(nodes)
}
