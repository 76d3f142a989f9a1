package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"golang.org/x/time/rate"
	"gopkg.in/op/go-logging.v1"

	infrahttp "ikedadada/go-onionchain/internal/infrastructure/http"
	"ikedadada/go-onionchain/internal/infrastructure/instrument"
	"ikedadada/go-onionchain/internal/usecase"
	"ikedadada/go-onionchain/internal/usecase/service"
)

const maxRequestBody = 16 << 20

// NodeHandler serves POST /request on a relay node.
type NodeHandler struct {
	relayUC usecase.RelayRequestUseCase
	limiter *rate.Limiter
	metrics *instrument.Metrics
	log     *logging.Logger
}

// NewNodeHandler creates the node handler. limiter may be nil.
func NewNodeHandler(relayUC usecase.RelayRequestUseCase, limiter *rate.Limiter, metrics *instrument.Metrics, log *logging.Logger) *NodeHandler {
	return &NodeHandler{relayUC: relayUC, limiter: limiter, metrics: metrics, log: log}
}

func (h *NodeHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /request", withRateLimit(h.limiter, h.metrics, http.HandlerFunc(h.Request)))
	mux.Handle("GET /metrics", h.metrics.Handler())
	return withAccessLog(h.log, mux)
}

func (h *NodeHandler) Request(w http.ResponseWriter, r *http.Request) {
	h.log.Info("process a new request")
	b, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	var req infrahttp.RelayRequestDTO
	if err == nil {
		err = json.Unmarshal(b, &req)
	}
	if err != nil {
		h.metrics.RelayRequest("unknown", service.ErrDecryption)
		http.Error(w, "Expecting Json data", http.StatusBadRequest)
		return
	}

	out, err := h.relayUC.Handle(r.Context(), usecase.RelayRequestInput{Payload: req.Payload})
	kind := out.Kind.String()
	if errors.Is(err, service.ErrDecryption) {
		kind = "unknown"
	}
	h.metrics.RelayRequest(kind, err)
	if err != nil {
		writeRelayError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}

func writeRelayError(w http.ResponseWriter, err error) {
	var de *service.DownstreamError
	switch {
	case errors.As(err, &de):
		w.WriteHeader(de.Status)
		_, _ = w.Write(de.Body)
	case errors.Is(err, service.ErrDecryption):
		http.Error(w, "Could not decrypt message", http.StatusBadRequest)
	case errors.Is(err, service.ErrEncryption):
		http.Error(w, "Could not encrypt message with originator's key", http.StatusBadRequest)
	case errors.Is(err, service.ErrRelayTimeout):
		http.Error(w, "Next hop timed out", http.StatusGatewayTimeout)
	case errors.Is(err, service.ErrRelayUnreachable):
		http.Error(w, "Next hop unreachable", http.StatusBadGateway)
	case errors.Is(err, service.ErrTargetService):
		http.Error(w, "Target service unavailable", http.StatusBadGateway)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
