package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"gopkg.in/op/go-logging.v1"

	vo "ikedadada/go-onionchain/internal/domain/value_object"
	"ikedadada/go-onionchain/internal/usecase/service"
)

type RelayRequestInput struct {
	Payload string // base64 ciphertext
}

type RelayRequestOutput struct {
	Kind vo.HopKind
	Body []byte
}

// RelayRequestUseCase removes this node's layer from an envelope and either
// forwards the rest or serves it as the exit.
type RelayRequestUseCase interface {
	Handle(ctx context.Context, in RelayRequestInput) (RelayRequestOutput, error)
}

type relayRequestUseCaseImpl struct {
	priv          *vo.RSAPrivKey
	crypto        service.CryptoService
	hop           service.HopTransmitter
	target        service.TargetService
	hopTimeout    time.Duration
	targetTimeout time.Duration
	log           *logging.Logger
}

func NewRelayRequestUseCase(
	priv *vo.RSAPrivKey,
	c service.CryptoService,
	hop service.HopTransmitter,
	target service.TargetService,
	hopTimeout, targetTimeout time.Duration,
	log *logging.Logger,
) RelayRequestUseCase {
	return &relayRequestUseCaseImpl{
		priv:          priv,
		crypto:        c,
		hop:           hop,
		target:        target,
		hopTimeout:    hopTimeout,
		targetTimeout: targetTimeout,
		log:           log,
	}
}

func (uc *relayRequestUseCaseImpl) Handle(ctx context.Context, in RelayRequestInput) (RelayRequestOutput, error) {
	instr, err := uc.open(in.Payload)
	if err != nil {
		uc.log.Debugf("could not decrypt message: %v", err)
		return RelayRequestOutput{}, fmt.Errorf("%w: %v", service.ErrDecryption, err)
	}

	switch instr.Kind() {
	case vo.HopExit:
		body, err := uc.serve(ctx, instr.TargetServiceRequest)
		return RelayRequestOutput{Kind: vo.HopExit, Body: body}, err
	default:
		body, err := uc.forward(ctx, instr)
		return RelayRequestOutput{Kind: vo.HopIntermediate, Body: body}, err
	}
}

func (uc *relayRequestUseCaseImpl) open(payload string) (*vo.RelayInstruction, error) {
	env, err := vo.DecodeRelayEnvelope(payload)
	if err != nil {
		return nil, err
	}
	plain, err := uc.crypto.Decrypt(uc.priv, env.Ciphertext())
	if err != nil {
		return nil, err
	}
	return vo.DecodeRelayInstruction(plain)
}

// forward passes the inner ciphertext on untouched and blocks for the answer.
func (uc *relayRequestUseCaseImpl) forward(ctx context.Context, instr *vo.RelayInstruction) ([]byte, error) {
	next, err := instr.NextHopEndpoint()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrDecryption, err)
	}
	env, err := vo.NewRelayEnvelope(instr.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrDecryption, err)
	}

	uc.log.Infof("request next node %s", next)
	hctx, cancel := context.WithTimeout(ctx, uc.hopTimeout)
	defer cancel()
	body, err := uc.hop.Forward(hctx, next, env)
	if err != nil {
		var de *service.DownstreamError
		switch {
		case errors.Is(err, service.ErrRelayTimeout), errors.Is(err, service.ErrRelayUnreachable), errors.As(err, &de):
		default:
			err = fmt.Errorf("%w: %v", service.ErrRelayUnreachable, err)
		}
		uc.log.Noticef("next node %s failed: %v", next, err)
		return nil, err
	}
	uc.log.Debugf("got %d bytes from %s", len(body), next)
	return body, nil
}

// serve runs the target request and seals the raw response for the originator.
func (uc *relayRequestUseCaseImpl) serve(ctx context.Context, req *vo.TargetServiceRequest) ([]byte, error) {
	uc.log.Infof("request the target service %s %s", req.Method, req.URL)
	tctx, cancel := context.WithTimeout(ctx, uc.targetTimeout)
	defer cancel()
	resp, err := uc.target.Call(tctx, *req)
	if err != nil {
		uc.log.Noticef("target service failed: %v", err)
		if !errors.Is(err, service.ErrTargetService) {
			err = fmt.Errorf("%w: %v", service.ErrTargetService, err)
		}
		return nil, err
	}

	pk, err := uc.crypto.StringToPublicKey(req.OriginatorPubKey)
	if err != nil {
		uc.log.Debugf("could not encrypt message with originator's key: %v", err)
		return nil, fmt.Errorf("%w: %v", service.ErrEncryption, err)
	}
	ct, err := uc.crypto.Encrypt(pk, resp)
	if err != nil {
		uc.log.Debugf("could not encrypt message with originator's key: %v", err)
		return nil, fmt.Errorf("%w: %v", service.ErrEncryption, err)
	}
	return []byte(base64.StdEncoding.EncodeToString(ct)), nil
}
