package usecase

import (
	"bytes"
	"encoding/base64"
	"fmt"

	vo "ikedadada/go-onionchain/internal/domain/value_object"
	"ikedadada/go-onionchain/internal/usecase/service"
)

// BuildOnionUseCase is the originator's side of the protocol: it wraps a
// target request in one layer per hop and opens the exit's sealed reply.
type BuildOnionUseCase interface {
	Build(chain vo.ChainDescriptor, req vo.TargetServiceRequest) (vo.RelayEnvelope, error)
	OpenReply(body []byte) ([]byte, error)
}

type buildOnionUseCaseImpl struct {
	crypto     service.CryptoService
	originator *vo.RSAPrivKey
}

func NewBuildOnionUseCase(c service.CryptoService, originator *vo.RSAPrivKey) BuildOnionUseCase {
	return &buildOnionUseCaseImpl{crypto: c, originator: originator}
}

func (uc *buildOnionUseCaseImpl) Build(chain vo.ChainDescriptor, req vo.TargetServiceRequest) (vo.RelayEnvelope, error) {
	if chain.Len() == 0 {
		return vo.RelayEnvelope{}, vo.ErrInvalidChain
	}
	if req.OriginatorPubKey == "" {
		req.OriginatorPubKey = string(uc.originator.PublicKey().ToPEM())
	}

	// exit layer first, then wrap outwards towards the entry
	layer, err := vo.EncodeRelayInstruction(vo.NewExitInstruction(req))
	if err != nil {
		return vo.RelayEnvelope{}, err
	}
	var ct []byte
	for i := chain.Len() - 1; i >= 0; i-- {
		if i < chain.Len()-1 {
			layer, err = vo.EncodeRelayInstruction(vo.NewIntermediateInstruction(chain.Node(i+1).Endpoint(), ct))
			if err != nil {
				return vo.RelayEnvelope{}, err
			}
		}
		hop := chain.Node(i)
		ct, err = uc.crypto.Encrypt(hop.PubKey(), layer)
		if err != nil {
			return vo.RelayEnvelope{}, fmt.Errorf("seal layer %d for %s: %w", i, hop.Endpoint(), err)
		}
	}
	return vo.NewRelayEnvelope(ct)
}

func (uc *buildOnionUseCaseImpl) OpenReply(body []byte) ([]byte, error) {
	ct, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(body)))
	if err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return uc.crypto.Decrypt(uc.originator, ct)
}
