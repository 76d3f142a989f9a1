package usecase

import (
	"time"

	"gopkg.in/op/go-logging.v1"

	vo "ikedadada/go-onionchain/internal/domain/value_object"
	"ikedadada/go-onionchain/internal/usecase/service"
)

// AssembleChainInput: zero fields fall back to the directory's configuration.
type AssembleChainInput struct {
	Length  int
	Timeout time.Duration
}

type AssembleChainOutput struct {
	Chain vo.ChainDescriptor
}

type AssembleChainUseCase interface {
	Handle(in AssembleChainInput) (AssembleChainOutput, error)
}

type assembleChainUseCaseImpl struct {
	assembler      service.ChainAssemblyService
	defaultLength  int
	defaultTimeout time.Duration
	log            *logging.Logger
}

func NewAssembleChainUseCase(a service.ChainAssemblyService, length int, timeout time.Duration, log *logging.Logger) AssembleChainUseCase {
	return &assembleChainUseCaseImpl{assembler: a, defaultLength: length, defaultTimeout: timeout, log: log}
}

func (uc *assembleChainUseCaseImpl) Handle(in AssembleChainInput) (AssembleChainOutput, error) {
	if in.Length == 0 {
		in.Length = uc.defaultLength
	}
	if in.Timeout == 0 {
		in.Timeout = uc.defaultTimeout
	}
	chain, err := uc.assembler.Assemble(in.Length, in.Timeout)
	if err != nil {
		uc.log.Noticef("chain of %d refused: %v", in.Length, err)
		return AssembleChainOutput{}, err
	}
	uc.log.Debugf("chain assembled: entry=%s exit=%s", chain.Entry().Endpoint(), chain.Exit().Endpoint())
	return AssembleChainOutput{Chain: chain}, nil
}
