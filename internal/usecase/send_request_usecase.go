package usecase

import (
	"context"
	"fmt"

	"gopkg.in/op/go-logging.v1"

	vo "ikedadada/go-onionchain/internal/domain/value_object"
	"ikedadada/go-onionchain/internal/usecase/service"
)

type SendRequestInput struct {
	Method string
	URL    string
	Body   string
}

type SendRequestOutput struct {
	Chain    []string
	Response []byte
}

// SendRequestUseCase asks the directory for a chain, sends the onion to its
// entry and returns the decrypted target response.
type SendRequestUseCase interface {
	Handle(ctx context.Context, in SendRequestInput) (SendRequestOutput, error)
}

type sendRequestUseCaseImpl struct {
	dir   service.DirectoryClient
	onion BuildOnionUseCase
	hop   service.HopTransmitter
	log   *logging.Logger
}

func NewSendRequestUseCase(dir service.DirectoryClient, onion BuildOnionUseCase, hop service.HopTransmitter, log *logging.Logger) SendRequestUseCase {
	return &sendRequestUseCaseImpl{dir: dir, onion: onion, hop: hop, log: log}
}

func (uc *sendRequestUseCaseImpl) Handle(ctx context.Context, in SendRequestInput) (SendRequestOutput, error) {
	chain, err := uc.dir.FetchChain(ctx)
	if err != nil {
		return SendRequestOutput{}, fmt.Errorf("fetch chain: %w", err)
	}
	out := SendRequestOutput{}
	for _, n := range chain.Nodes() {
		out.Chain = append(out.Chain, n.Endpoint().String())
	}
	uc.log.Infof("using chain %v", out.Chain)

	env, err := uc.onion.Build(chain, vo.TargetServiceRequest{Method: in.Method, URL: in.URL, Body: in.Body})
	if err != nil {
		return out, fmt.Errorf("build onion: %w", err)
	}
	body, err := uc.hop.Forward(ctx, chain.Entry().Endpoint(), env)
	if err != nil {
		return out, fmt.Errorf("send to entry %s: %w", chain.Entry().Endpoint(), err)
	}
	resp, err := uc.onion.OpenReply(body)
	if err != nil {
		return out, fmt.Errorf("open reply: %w", err)
	}
	out.Response = resp
	return out, nil
}
