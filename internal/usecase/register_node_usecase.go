package usecase

import (
	"fmt"

	"gopkg.in/op/go-logging.v1"

	"ikedadada/go-onionchain/internal/domain/repository"
	vo "ikedadada/go-onionchain/internal/domain/value_object"
)

// ---------- DTO ----------

type RegisterNodeInput struct {
	PublicKey string // PEM
	Address   string
	Port      uint16
}

type RegisterNodeOutput struct {
	Secret string
}

// ---------- UseCase ----------

// RegisterNodeUseCase adds (or re-adds) a relay node to the directory.
type RegisterNodeUseCase interface {
	Handle(in RegisterNodeInput) (RegisterNodeOutput, error)
}

type registerNodeUseCaseImpl struct {
	repo repository.RelayNodeRepository
	log  *logging.Logger
}

func NewRegisterNodeUseCase(repo repository.RelayNodeRepository, log *logging.Logger) RegisterNodeUseCase {
	return &registerNodeUseCaseImpl{repo: repo, log: log}
}

func (uc *registerNodeUseCaseImpl) Handle(in RegisterNodeInput) (RegisterNodeOutput, error) {
	ep, err := vo.NewEndpoint(in.Address, in.Port)
	if err != nil {
		return RegisterNodeOutput{}, fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
	}
	pk, err := vo.RSAPubKeyFromPEM([]byte(in.PublicKey))
	if err != nil {
		return RegisterNodeOutput{}, fmt.Errorf("%w: public key: %v", repository.ErrInvalidInput, err)
	}
	secret, err := uc.repo.Register(ep, pk)
	if err != nil {
		return RegisterNodeOutput{}, err
	}
	uc.log.Infof("registered node %s", ep)
	return RegisterNodeOutput{Secret: secret.String()}, nil
}
