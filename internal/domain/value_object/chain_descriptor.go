package value_object

import (
	"errors"
	"fmt"
)

// ChainNode is the public view of a relay node handed out in a chain.
type ChainNode struct {
	endpoint Endpoint
	pubKey   RSAPubKey
}

func NewChainNode(ep Endpoint, pk RSAPubKey) ChainNode {
	return ChainNode{endpoint: ep, pubKey: pk}
}

func (n ChainNode) Endpoint() Endpoint { return n.endpoint }
func (n ChainNode) PubKey() RSAPubKey  { return n.pubKey }

// ChainDescriptor is an ordered, repeat-free list of hops. The first node is
// the entry, the last one the exit.
type ChainDescriptor struct {
	nodes []ChainNode
}

var ErrInvalidChain = errors.New("invalid chain")

func NewChainDescriptor(nodes []ChainNode) (ChainDescriptor, error) {
	if len(nodes) == 0 {
		return ChainDescriptor{}, fmt.Errorf("%w: no nodes", ErrInvalidChain)
	}
	seen := make(map[Endpoint]struct{}, len(nodes))
	for _, n := range nodes {
		if _, dup := seen[n.endpoint]; dup {
			return ChainDescriptor{}, fmt.Errorf("%w: node %s appears twice", ErrInvalidChain, n.endpoint)
		}
		seen[n.endpoint] = struct{}{}
	}
	cp := make([]ChainNode, len(nodes))
	copy(cp, nodes)
	return ChainDescriptor{nodes: cp}, nil
}

func (c ChainDescriptor) Len() int             { return len(c.nodes) }
func (c ChainDescriptor) Node(i int) ChainNode { return c.nodes[i] }
func (c ChainDescriptor) Entry() ChainNode     { return c.nodes[0] }
func (c ChainDescriptor) Exit() ChainNode      { return c.nodes[len(c.nodes)-1] }

// Nodes returns a copy; the descriptor itself never changes.
func (c ChainDescriptor) Nodes() []ChainNode {
	cp := make([]ChainNode, len(c.nodes))
	copy(cp, c.nodes)
	return cp
}
