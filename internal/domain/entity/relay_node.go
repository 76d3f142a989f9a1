package entity

import (
	"sync/atomic"
	"time"

	"ikedadada/go-onionchain/internal/domain/value_object"
)

// RelayNode は Directory が保持するノード。Endpoint が識別子。
type RelayNode struct {
	endpoint value_object.Endpoint
	pubKey   value_object.RSAPubKey
	secret   value_object.NodeSecret

	lastHeartbeat atomic.Pointer[time.Time] // nil = never
}

func NewRelayNode(ep value_object.Endpoint, pk value_object.RSAPubKey, secret value_object.NodeSecret) *RelayNode {
	return &RelayNode{endpoint: ep, pubKey: pk, secret: secret}
}

func (n *RelayNode) Endpoint() value_object.Endpoint { return n.endpoint }
func (n *RelayNode) PubKey() value_object.RSAPubKey  { return n.pubKey }
func (n *RelayNode) Secret() value_object.NodeSecret { return n.secret }

// LastHeartbeat reports the time of the last heartbeat, ok=false if none was
// ever recorded.
func (n *RelayNode) LastHeartbeat() (t time.Time, ok bool) {
	v := n.lastHeartbeat.Load()
	if v == nil {
		return time.Time{}, false
	}
	return *v, true
}

func (n *RelayNode) RecordHeartbeat(at time.Time) {
	at = at.UTC()
	n.lastHeartbeat.Store(&at)
}

// IsAlive: a heartbeat was recorded and now - lastHeartbeat < timeout.
func (n *RelayNode) IsAlive(now time.Time, timeout time.Duration) bool {
	last, ok := n.LastHeartbeat()
	if !ok {
		return false
	}
	return now.Sub(last) < timeout
}

func (n *RelayNode) ChainNode() value_object.ChainNode {
	return value_object.NewChainNode(n.endpoint, n.pubKey)
}
