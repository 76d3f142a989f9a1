package usecase

import (
	"gopkg.in/op/go-logging.v1"

	"ikedadada/go-onionchain/internal/domain/repository"
	vo "ikedadada/go-onionchain/internal/domain/value_object"
)

type HeartbeatInput struct {
	Secret string
}

// HeartbeatUseCase refreshes the liveness of the node owning a secret.
type HeartbeatUseCase interface {
	Handle(in HeartbeatInput) error
}

type heartbeatUseCaseImpl struct {
	repo repository.RelayNodeRepository
	log  *logging.Logger
}

func NewHeartbeatUseCase(repo repository.RelayNodeRepository, log *logging.Logger) HeartbeatUseCase {
	return &heartbeatUseCaseImpl{repo: repo, log: log}
}

func (uc *heartbeatUseCaseImpl) Handle(in HeartbeatInput) error {
	secret, err := vo.ParseNodeSecret(in.Secret)
	if err != nil {
		// Anything unparsable can't be a secret we issued.
		uc.log.Debugf("heartbeat with malformed secret: %v", err)
		return repository.ErrInvalidSecret
	}
	if err := uc.repo.Heartbeat(secret); err != nil {
		uc.log.Debugf("heartbeat rejected: %v", err)
		return err
	}
	return nil
}
