package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	vo "ikedadada/go-onionchain/internal/domain/value_object"
	"ikedadada/go-onionchain/internal/usecase/service"
)

type hopClientImpl struct {
	c HTTPClient
}

// NewHopClient returns a HopTransmitter that POSTs envelopes to
// http://<endpoint>/request.
func NewHopClient(c HTTPClient) service.HopTransmitter {
	return &hopClientImpl{c: c}
}

func (h *hopClientImpl) Forward(ctx context.Context, to vo.Endpoint, env vo.RelayEnvelope) ([]byte, error) {
	status, body, err := h.c.DoJSON(ctx, http.MethodPost, to.URL("request"), RelayRequestDTO{Payload: env.Encode()})
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fmt.Errorf("%w: %s: %v", service.ErrRelayTimeout, to, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", service.ErrRelayUnreachable, to, err)
	}
	if !isSuccess(status) {
		return nil, &service.DownstreamError{Status: status, Body: body}
	}
	return body, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
