package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/op/go-logging.v1"

	vo "ikedadada/go-onionchain/internal/domain/value_object"
	"ikedadada/go-onionchain/internal/infrastructure/log"
)

func testLogger() *logging.Logger {
	return log.NewDiscard().GetLogger("test")
}

func mustPrivKey(t *testing.T) *vo.RSAPrivKey {
	t.Helper()
	k, err := vo.GenerateRSAPrivKey(2048)
	require.NoError(t, err)
	return k
}

func mustEndpoint(t *testing.T, port uint16) vo.Endpoint {
	t.Helper()
	ep, err := vo.NewEndpoint("127.0.0.1", port)
	require.NoError(t, err)
	return ep
}

type forwardCall struct {
	to  vo.Endpoint
	env vo.RelayEnvelope
}

// mockHop records every Forward and answers with body/err.
type mockHop struct {
	mu    sync.Mutex
	calls []forwardCall
	body  []byte
	err   error
}

func (m *mockHop) Forward(ctx context.Context, to vo.Endpoint, env vo.RelayEnvelope) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, forwardCall{to: to, env: env})
	return m.body, m.err
}

func (m *mockHop) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockTarget struct {
	mu   sync.Mutex
	reqs []vo.TargetServiceRequest
	resp []byte
	err  error
}

func (m *mockTarget) Call(ctx context.Context, req vo.TargetServiceRequest) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reqs = append(m.reqs, req)
	return m.resp, m.err
}
