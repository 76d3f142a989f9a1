package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	vo "ikedadada/go-onionchain/internal/domain/value_object"
	"ikedadada/go-onionchain/internal/usecase/service"
)

type targetClientImpl struct {
	client *http.Client
}

// NewTargetClient returns the TargetService an exit node uses. Any HTTP
// answer counts as the response; only transport failures are errors.
func NewTargetClient(client *http.Client) service.TargetService {
	if client == nil {
		client = &http.Client{}
	}
	return &targetClientImpl{client: client}
}

func (t *targetClientImpl) Call(ctx context.Context, r vo.TargetServiceRequest) ([]byte, error) {
	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if r.Body != "" {
		body = strings.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrTargetService, err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrTargetService, err)
	}
	defer resp.Body.Close()

	b, err := readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", service.ErrTargetService, err)
	}
	return b, nil
}
