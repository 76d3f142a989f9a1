package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodySize bounds every response body read by the clients in this package.
const maxBodySize = 16 << 20

var errBodyTooLarge = errors.New("response body exceeds limit")

// readBody reads r fully, failing instead of truncating past maxBodySize.
func readBody(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxBodySize {
		return nil, errBodyTooLarge
	}
	return b, nil
}

// HTTPClient defines the JSON round trip the directory and hop clients share.
type HTTPClient interface {
	// DoJSON sends in (if non-nil) as a JSON body and returns the raw status
	// and body. Non-2xx statuses are not an error here.
	DoJSON(ctx context.Context, method, url string, in any) (int, []byte, error)
}

// HTTPClientImpl is the standard HTTP client implementation
type HTTPClientImpl struct {
	client *http.Client
}

// NewHTTPClient creates a new HTTP client. timeout bounds the whole exchange
// on top of any context deadline; zero means none.
func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &HTTPClientImpl{
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClientImpl) DoJSON(ctx context.Context, method, url string, in any) (int, []byte, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("encode JSON failed: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	b, err := readBody(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, b, nil
}

func isSuccess(status int) bool { return status >= 200 && status < 300 }
