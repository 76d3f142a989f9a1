package usecase_test

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "ikedadada/go-onionchain/internal/domain/value_object"
	"ikedadada/go-onionchain/internal/infrastructure/crypto"
	"ikedadada/go-onionchain/internal/usecase"
	"ikedadada/go-onionchain/internal/usecase/service"
)

func sealFor(t *testing.T, pub vo.RSAPubKey, instr *vo.RelayInstruction) string {
	t.Helper()
	plain, err := vo.EncodeRelayInstruction(instr)
	require.NoError(t, err)
	ct, err := crypto.NewCryptoService().Encrypt(pub, plain)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(ct)
}

func TestRelayRequest_Intermediate(t *testing.T) {
	key := mustPrivKey(t)
	next := mustEndpoint(t, 9002)
	inner := []byte("opaque inner layer")

	tests := []struct {
		name    string
		hopErr  error
		wantErr error
	}{
		{"ok", nil, nil},
		{"timeout", service.ErrRelayTimeout, service.ErrRelayTimeout},
		{"unreachable", service.ErrRelayUnreachable, service.ErrRelayUnreachable},
		{"unclassified", errors.New("boom"), service.ErrRelayUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hop := &mockHop{body: []byte("downstream"), err: tt.hopErr}
			target := &mockTarget{}
			uc := usecase.NewRelayRequestUseCase(key, crypto.NewCryptoService(), hop, target, time.Second, 10*time.Second, testLogger())

			out, err := uc.Handle(context.Background(), usecase.RelayRequestInput{
				Payload: sealFor(t, key.PublicKey(), vo.NewIntermediateInstruction(next, inner)),
			})
			require.Equal(t, 1, hop.callCount())
			assert.Equal(t, next, hop.calls[0].to)
			assert.Equal(t, inner, hop.calls[0].env.Ciphertext())
			assert.Empty(t, target.reqs)
			assert.Equal(t, vo.HopIntermediate, out.Kind)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []byte("downstream"), out.Body)
		})
	}
}

func TestRelayRequest_DownstreamErrorPassesThrough(t *testing.T) {
	key := mustPrivKey(t)
	de := &service.DownstreamError{Status: 400, Body: []byte("Could not decrypt message")}
	hop := &mockHop{err: de}
	uc := usecase.NewRelayRequestUseCase(key, crypto.NewCryptoService(), hop, &mockTarget{}, time.Second, time.Second, testLogger())

	_, err := uc.Handle(context.Background(), usecase.RelayRequestInput{
		Payload: sealFor(t, key.PublicKey(), vo.NewIntermediateInstruction(mustEndpoint(t, 9002), []byte("x"))),
	})
	var got *service.DownstreamError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 400, got.Status)
	assert.Equal(t, "Could not decrypt message", string(got.Body))
	assert.NotErrorIs(t, err, service.ErrRelayUnreachable)
}

func TestRelayRequest_HopDeadline(t *testing.T) {
	key := mustPrivKey(t)
	var deadline time.Time
	hop := hopFunc(func(ctx context.Context, to vo.Endpoint, env vo.RelayEnvelope) ([]byte, error) {
		deadline, _ = ctx.Deadline()
		return []byte("ok"), nil
	})
	uc := usecase.NewRelayRequestUseCase(key, crypto.NewCryptoService(), hop, &mockTarget{}, time.Second, time.Minute, testLogger())
	start := time.Now()
	_, err := uc.Handle(context.Background(), usecase.RelayRequestInput{
		Payload: sealFor(t, key.PublicKey(), vo.NewIntermediateInstruction(mustEndpoint(t, 9002), []byte("x"))),
	})
	require.NoError(t, err)
	assert.WithinDuration(t, start.Add(time.Second), deadline, 500*time.Millisecond)
}

type hopFunc func(ctx context.Context, to vo.Endpoint, env vo.RelayEnvelope) ([]byte, error)

func (f hopFunc) Forward(ctx context.Context, to vo.Endpoint, env vo.RelayEnvelope) ([]byte, error) {
	return f(ctx, to, env)
}

func TestRelayRequest_Exit(t *testing.T) {
	key := mustPrivKey(t)
	originator := mustPrivKey(t)
	req := vo.TargetServiceRequest{
		Method:           "GET",
		URL:              "http://target.example/hello",
		OriginatorPubKey: string(originator.PublicKey().ToPEM()),
	}

	hop := &mockHop{}
	target := &mockTarget{resp: []byte("hello world")}
	uc := usecase.NewRelayRequestUseCase(key, crypto.NewCryptoService(), hop, target, time.Second, 10*time.Second, testLogger())

	out, err := uc.Handle(context.Background(), usecase.RelayRequestInput{
		Payload: sealFor(t, key.PublicKey(), vo.NewExitInstruction(req)),
	})
	require.NoError(t, err)
	assert.Equal(t, vo.HopExit, out.Kind)
	assert.Zero(t, hop.callCount())
	require.Len(t, target.reqs, 1)
	assert.Equal(t, req, target.reqs[0])

	// only the originator can read the reply
	ct, err := base64.StdEncoding.DecodeString(string(out.Body))
	require.NoError(t, err)
	plain, err := crypto.NewCryptoService().Decrypt(originator, ct)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(plain))
	_, err = crypto.NewCryptoService().Decrypt(key, ct)
	assert.Error(t, err)
}

func TestRelayRequest_ExitFailures(t *testing.T) {
	key := mustPrivKey(t)
	originator := mustPrivKey(t)

	tests := []struct {
		name      string
		pubKey    string
		targetErr error
		wantErr   error
	}{
		{"target down", string(originator.PublicKey().ToPEM()), errors.New("dial tcp: refused"), service.ErrTargetService},
		{"bad originator key", "not a key", nil, service.ErrEncryption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := &mockTarget{resp: []byte("resp"), err: tt.targetErr}
			uc := usecase.NewRelayRequestUseCase(key, crypto.NewCryptoService(), &mockHop{}, target, time.Second, time.Second, testLogger())
			_, err := uc.Handle(context.Background(), usecase.RelayRequestInput{
				Payload: sealFor(t, key.PublicKey(), vo.NewExitInstruction(vo.TargetServiceRequest{
					Method: "GET", URL: "http://target.example/", OriginatorPubKey: tt.pubKey,
				})),
			})
			assert.ErrorIs(t, err, tt.wantErr)
			// the target is called before the originator key is looked at
			assert.Len(t, target.reqs, 1)
		})
	}
}

func TestRelayRequest_UndecryptableMakesNoCalls(t *testing.T) {
	key := mustPrivKey(t)
	other := mustPrivKey(t)

	tests := []struct {
		name    string
		payload string
	}{
		{"not base64", "%%%"},
		{"empty", ""},
		{"random bytes", base64.StdEncoding.EncodeToString([]byte("definitely not ciphertext"))},
		{"wrong key", sealFor(t, other.PublicKey(), vo.NewExitInstruction(vo.TargetServiceRequest{Method: "GET", URL: "http://x/"}))},
		{"not an instruction", func() string {
			ct, err := crypto.NewCryptoService().Encrypt(key.PublicKey(), []byte("plain text"))
			require.NoError(t, err)
			return base64.StdEncoding.EncodeToString(ct)
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hop := &mockHop{}
			target := &mockTarget{}
			uc := usecase.NewRelayRequestUseCase(key, crypto.NewCryptoService(), hop, target, time.Second, time.Second, testLogger())
			_, err := uc.Handle(context.Background(), usecase.RelayRequestInput{Payload: tt.payload})
			assert.ErrorIs(t, err, service.ErrDecryption)
			assert.Zero(t, hop.callCount())
			assert.Empty(t, target.reqs)
		})
	}
}
