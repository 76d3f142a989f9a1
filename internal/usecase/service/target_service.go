package service

import (
	"context"

	vo "ikedadada/go-onionchain/internal/domain/value_object"
)

// TargetService performs the request an exit hop was asked to make.
// Failures wrap ErrTargetService.
type TargetService interface {
	Call(ctx context.Context, req vo.TargetServiceRequest) ([]byte, error)
}
