package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ikedadada/go-onionchain/internal/domain/repository"
	vo "ikedadada/go-onionchain/internal/domain/value_object"
	"ikedadada/go-onionchain/internal/usecase/service"
)

type directoryClientImpl struct {
	c    HTTPClient
	base string
}

// NewDirectoryClient talks to the directory at base (e.g. "http://127.0.0.1:9000").
func NewDirectoryClient(c HTTPClient, base string) service.DirectoryClient {
	return &directoryClientImpl{c: c, base: strings.TrimRight(base, "/")}
}

func (d *directoryClientImpl) Register(ctx context.Context, req service.RegisterRequest) (vo.NodeSecret, error) {
	status, body, err := d.c.DoJSON(ctx, http.MethodPost, d.base+"/register", RegisterRequestDTO{
		PublicKey: string(req.PublicKey.ToPEM()),
		Address:   req.Endpoint.Host(),
		Port:      req.Endpoint.Port(),
	})
	if err != nil {
		return vo.NodeSecret{}, err
	}
	if !isSuccess(status) {
		return vo.NodeSecret{}, directoryError(status, body)
	}
	var out RegisterResponseDTO
	if err := json.Unmarshal(body, &out); err != nil {
		return vo.NodeSecret{}, fmt.Errorf("decode JSON failed: %w", err)
	}
	return vo.ParseNodeSecret(out.Secret)
}

func (d *directoryClientImpl) Heartbeat(ctx context.Context, secret vo.NodeSecret) error {
	status, body, err := d.c.DoJSON(ctx, http.MethodPut, d.base+"/heartbeat", HeartbeatRequestDTO{Secret: secret.String()})
	if err != nil {
		return err
	}
	if isSuccess(status) {
		return nil
	}
	// the directory answers an unknown secret with its generic error body
	if status == http.StatusBadRequest && errorMessage(body) == MsgInvalidRequest {
		return repository.ErrInvalidSecret
	}
	return directoryError(status, body)
}

func (d *directoryClientImpl) FetchChain(ctx context.Context) (vo.ChainDescriptor, error) {
	status, body, err := d.c.DoJSON(ctx, http.MethodGet, d.base+"/chain", nil)
	if err != nil {
		return vo.ChainDescriptor{}, err
	}
	if !isSuccess(status) {
		if errorMessage(body) == MsgNotEnoughNodes {
			return vo.ChainDescriptor{}, service.ErrInsufficientNodes
		}
		return vo.ChainDescriptor{}, directoryError(status, body)
	}

	var out ChainResponseDTO
	if err := json.Unmarshal(body, &out); err != nil {
		return vo.ChainDescriptor{}, fmt.Errorf("decode JSON failed: %w", err)
	}
	nodes := make([]vo.ChainNode, 0, len(out.ChainNodes))
	for i, n := range out.ChainNodes {
		ep, err := vo.NewEndpoint(n.Address, n.Port)
		if err != nil {
			return vo.ChainDescriptor{}, fmt.Errorf("chain node %d: %w", i, err)
		}
		pk, err := vo.RSAPubKeyFromPEM([]byte(n.PublicKey))
		if err != nil {
			return vo.ChainDescriptor{}, fmt.Errorf("chain node %d: %w", i, err)
		}
		nodes = append(nodes, vo.NewChainNode(ep, pk))
	}
	return vo.NewChainDescriptor(nodes)
}

func errorMessage(body []byte) string {
	var e ErrorDTO
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Error
}

func directoryError(status int, body []byte) error {
	if msg := errorMessage(body); msg != "" {
		return fmt.Errorf("%w: %d %s", service.ErrDirectory, status, msg)
	}
	return fmt.Errorf("%w: unexpected status %d", service.ErrDirectory, status)
}
