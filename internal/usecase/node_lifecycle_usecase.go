package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"gopkg.in/op/go-logging.v1"

	"ikedadada/go-onionchain/internal/domain/repository"
	vo "ikedadada/go-onionchain/internal/domain/value_object"
	"ikedadada/go-onionchain/internal/usecase/service"
)

type NodeState uint32

const (
	StateUnregistered NodeState = iota
	StateRegistering
	StateActive
	StateStopped
)

func (s NodeState) String() string {
	switch s {
	case StateRegistering:
		return "registering"
	case StateActive:
		return "active"
	case StateStopped:
		return "stopped"
	default:
		return "unregistered"
	}
}

var ErrLifecycleState = errors.New("lifecycle: invalid state")

type NodeLifecycleConfig struct {
	Endpoint            vo.Endpoint
	RegistrationTimeout time.Duration
	HeartbeatPeriod     time.Duration
	HeartbeatTimeout    time.Duration
	// OnHeartbeat, if set, is told the outcome of every beat.
	OnHeartbeat func(err error)
}

// NodeLifecycleUseCase registers the node with the directory and keeps it
// alive there until stopped.
type NodeLifecycleUseCase interface {
	Start(ctx context.Context) error
	Stop()
	State() NodeState
	Secret() vo.NodeSecret
}

type nodeLifecycleUseCaseImpl struct {
	cfg NodeLifecycleConfig
	key *vo.RSAPrivKey
	dir service.DirectoryClient
	clk clock.Clock
	log *logging.Logger

	state atomic.Uint32

	mu     sync.Mutex
	secret vo.NodeSecret
	cancel context.CancelFunc
	done   chan struct{}
}

func NewNodeLifecycleUseCase(cfg NodeLifecycleConfig, key *vo.RSAPrivKey, dir service.DirectoryClient, clk clock.Clock, log *logging.Logger) NodeLifecycleUseCase {
	return &nodeLifecycleUseCaseImpl{cfg: cfg, key: key, dir: dir, clk: clk, log: log}
}

func (l *nodeLifecycleUseCaseImpl) State() NodeState { return NodeState(l.state.Load()) }

func (l *nodeLifecycleUseCaseImpl) Secret() vo.NodeSecret {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.secret
}

// Start registers the node and launches the heartbeat worker. A failed
// registration is returned as is; there is no retry. A Stop that lands
// during registration aborts it and Start returns ErrLifecycleState.
func (l *nodeLifecycleUseCaseImpl) Start(ctx context.Context) error {
	l.mu.Lock()
	if !l.state.CompareAndSwap(uint32(StateUnregistered), uint32(StateRegistering)) {
		l.mu.Unlock()
		return fmt.Errorf("%w: start from %s", ErrLifecycleState, l.State())
	}
	rctx, rcancel := context.WithTimeout(ctx, l.cfg.RegistrationTimeout)
	l.cancel = rcancel
	l.mu.Unlock()

	l.log.Infof("register node %s", l.cfg.Endpoint)
	secret, err := l.dir.Register(rctx, service.RegisterRequest{PublicKey: l.key.PublicKey(), Endpoint: l.cfg.Endpoint})
	rcancel()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.State() != StateRegistering {
		l.log.Notice("stopped during registration")
		return fmt.Errorf("%w: stopped during registration", ErrLifecycleState)
	}
	l.cancel = nil
	if err != nil {
		l.state.Store(uint32(StateUnregistered))
		return fmt.Errorf("register node: %w", err)
	}
	l.log.Infof("node registered")
	l.log.Debugf("received secret: %s", secret)

	wctx, wcancel := context.WithCancel(context.Background())
	// The ticker is created here so the first tick is one period after Start.
	ticker := l.clk.Ticker(l.cfg.HeartbeatPeriod)
	done := make(chan struct{})
	l.secret = secret
	l.cancel = wcancel
	l.done = done
	l.state.Store(uint32(StateActive))

	go func() {
		defer close(done)
		defer ticker.Stop()
		l.heartbeatLoop(wctx, ticker.C, secret)
	}()
	return nil
}

// Stop halts the heartbeat worker and waits for it to return. Called during
// registration it cancels the pending request instead.
func (l *nodeLifecycleUseCaseImpl) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.state.Store(uint32(StateStopped))
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (l *nodeLifecycleUseCaseImpl) heartbeatLoop(ctx context.Context, tick <-chan time.Time, secret vo.NodeSecret) {
	for {
		select {
		case <-ctx.Done():
			l.log.Debug("heartbeat worker terminating")
			return
		case <-tick:
			l.beat(ctx, secret)
		}
	}
}

func (l *nodeLifecycleUseCaseImpl) beat(ctx context.Context, secret vo.NodeSecret) {
	hctx, cancel := context.WithTimeout(ctx, l.cfg.HeartbeatTimeout)
	defer cancel()
	err := l.dir.Heartbeat(hctx, secret)
	switch {
	case err == nil:
		l.log.Debug("heartbeat acknowledged")
	case repository.IsInvalidSecret(err):
		// Known gap: the directory forgot us, but we keep beating with the
		// same secret instead of registering again.
		l.log.Warning("directory reports the heartbeat secret as invalid")
	default:
		l.log.Noticef("heartbeat failed, retrying on next tick: %v", err)
	}
	if l.cfg.OnHeartbeat != nil {
		l.cfg.OnHeartbeat(err)
	}
}
