package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "ikedadada/go-onionchain/internal/domain/value_object"
	"ikedadada/go-onionchain/internal/usecase/service"
)

func serverEndpoint(t *testing.T, srv *httptest.Server) vo.Endpoint {
	t.Helper()
	ep, err := vo.ParseEndpoint(srv.Listener.Addr().String())
	require.NoError(t, err)
	return ep
}

func TestHopClient_Forward(t *testing.T) {
	env, err := vo.NewRelayEnvelope([]byte("ciphertext"))
	require.NoError(t, err)

	var got RelayRequestDTO
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/request", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte("reply"))
	}))
	defer srv.Close()

	body, err := NewHopClient(NewHTTPClient(0)).Forward(context.Background(), serverEndpoint(t, srv), env)
	require.NoError(t, err)
	assert.Equal(t, "reply", string(body))
	assert.Equal(t, env.Encode(), got.Payload)
}

func TestHopClient_Downstream(t *testing.T) {
	env, _ := vo.NewRelayEnvelope([]byte("ciphertext"))
	for _, status := range []int{http.StatusBadRequest, http.StatusBadGateway, http.StatusGatewayTimeout} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte("downstream says no"))
			}))
			defer srv.Close()

			_, err := NewHopClient(NewHTTPClient(0)).Forward(context.Background(), serverEndpoint(t, srv), env)
			var de *service.DownstreamError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, status, de.Status)
			assert.Equal(t, "downstream says no", string(de.Body))
		})
	}
}

func TestHopClient_Timeout(t *testing.T) {
	env, _ := vo.NewRelayEnvelope([]byte("ciphertext"))
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewHopClient(NewHTTPClient(0)).Forward(ctx, serverEndpoint(t, srv), env)
	assert.ErrorIs(t, err, service.ErrRelayTimeout)
}

func TestHopClient_Unreachable(t *testing.T) {
	env, _ := vo.NewRelayEnvelope([]byte("ciphertext"))
	srv := httptest.NewServer(http.NotFoundHandler())
	ep := serverEndpoint(t, srv)
	srv.Close()

	_, err := NewHopClient(NewHTTPClient(0)).Forward(context.Background(), ep, env)
	assert.ErrorIs(t, err, service.ErrRelayUnreachable)
}
