package repository_test

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repoif "ikedadada/go-onionchain/internal/domain/repository"
	vo "ikedadada/go-onionchain/internal/domain/value_object"
	"ikedadada/go-onionchain/internal/infrastructure/repository"
)

var testKey = func() vo.RSAPubKey {
	k, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		panic(err)
	}
	return vo.RSAPubKey{PublicKey: &k.PublicKey}
}()

func endpoint(t *testing.T, port uint16) vo.Endpoint {
	t.Helper()
	ep, err := vo.NewEndpoint("127.0.0.1", port)
	require.NoError(t, err)
	return ep
}

func newMockClock() *clock.Mock {
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return clk
}

func orderingPorts(repo repoif.RelayNodeRepository) []uint16 {
	var out []uint16
	for _, n := range repo.ListOrdering() {
		out = append(out, n.Endpoint().Port())
	}
	return out
}

func TestRelayNodeRepo_RegisterAndHeartbeat(t *testing.T) {
	clk := newMockClock()
	repo := repository.NewRelayNodeRepository(clk)

	ep := endpoint(t, 9001)
	secret, err := repo.Register(ep, testKey)
	require.NoError(t, err)

	node, err := repo.FindByEndpoint(ep)
	require.NoError(t, err)
	_, ok := node.LastHeartbeat()
	assert.False(t, ok, "registration is not a heartbeat")

	clk.Add(3 * time.Second)
	require.NoError(t, repo.Heartbeat(secret))
	last, ok := node.LastHeartbeat()
	require.True(t, ok)
	assert.True(t, last.Equal(clk.Now()))
}

func TestRelayNodeRepo_HeartbeatInvalidSecret(t *testing.T) {
	repo := repository.NewRelayNodeRepository(newMockClock())
	err := repo.Heartbeat(vo.NewNodeSecret())
	assert.ErrorIs(t, err, repoif.ErrInvalidSecret)
	assert.True(t, repoif.IsInvalidSecret(err))
}

func TestRelayNodeRepo_RegisterInvalid(t *testing.T) {
	repo := repository.NewRelayNodeRepository(newMockClock())
	_, err := repo.Register(vo.Endpoint{}, testKey)
	assert.ErrorIs(t, err, repoif.ErrInvalidInput)
	_, err = repo.Register(endpoint(t, 1), vo.RSAPubKey{})
	assert.ErrorIs(t, err, repoif.ErrInvalidInput)
}

func TestRelayNodeRepo_ReRegisterOverwritesByIdentity(t *testing.T) {
	clk := newMockClock()
	repo := repository.NewRelayNodeRepository(clk)
	a, b := endpoint(t, 1), endpoint(t, 2)

	oldSecret, err := repo.Register(a, testKey)
	require.NoError(t, err)
	_, err = repo.Register(b, testKey)
	require.NoError(t, err)
	require.NoError(t, repo.Heartbeat(oldSecret))

	newSecret, err := repo.Register(a, testKey)
	require.NoError(t, err)
	assert.False(t, newSecret.Equal(oldSecret))

	assert.Equal(t, []uint16{1, 2}, orderingPorts(repo), "overwrite keeps position, no duplicate")
	assert.ErrorIs(t, repo.Heartbeat(oldSecret), repoif.ErrInvalidSecret)
	assert.NoError(t, repo.Heartbeat(newSecret))
}

func TestRelayNodeRepo_RecordUseRotatesToTail(t *testing.T) {
	repo := repository.NewRelayNodeRepository(newMockClock())
	for _, p := range []uint16{1, 2, 3} {
		_, err := repo.Register(endpoint(t, p), testKey)
		require.NoError(t, err)
	}

	err := repo.Update(func(tx repoif.RelayNodeTx) error {
		require.Len(t, tx.ListOrdering(), 3)
		return tx.RecordUse(endpoint(t, 1))
	})
	require.NoError(t, err)
	assert.Equal(t, []uint16{2, 3, 1}, orderingPorts(repo))

	err = repo.Update(func(tx repoif.RelayNodeTx) error {
		return tx.RecordUse(endpoint(t, 42))
	})
	assert.ErrorIs(t, err, repoif.ErrNotFound)
}

func TestRelayNodeRepo_ListOrderingIsSnapshot(t *testing.T) {
	repo := repository.NewRelayNodeRepository(newMockClock())
	_, err := repo.Register(endpoint(t, 1), testKey)
	require.NoError(t, err)

	snap := repo.ListOrdering()
	_, err = repo.Register(endpoint(t, 2), testKey)
	require.NoError(t, err)
	assert.Len(t, snap, 1)
	assert.Len(t, repo.ListOrdering(), 2)
}

func TestRelayNodeRepo_ConcurrentAccess(t *testing.T) {
	repo := repository.NewRelayNodeRepository(newMockClock())
	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(p uint16) {
			defer wg.Done()
			s, err := repo.Register(endpoint(t, p), testKey)
			if err != nil {
				return
			}
			_ = repo.Heartbeat(s)
			_ = repo.Update(func(tx repoif.RelayNodeTx) error {
				return tx.RecordUse(endpoint(t, p))
			})
		}(uint16(i))
	}
	wg.Wait()
	assert.Len(t, repo.ListOrdering(), 20)
}
