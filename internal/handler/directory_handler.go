package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"gopkg.in/op/go-logging.v1"

	"ikedadada/go-onionchain/internal/domain/repository"
	vo "ikedadada/go-onionchain/internal/domain/value_object"
	infrahttp "ikedadada/go-onionchain/internal/infrastructure/http"
	"ikedadada/go-onionchain/internal/infrastructure/instrument"
	"ikedadada/go-onionchain/internal/usecase"
	"ikedadada/go-onionchain/internal/usecase/service"
)

// DirectoryHandler serves the directory's HTTP API.
type DirectoryHandler struct {
	registerUC  usecase.RegisterNodeUseCase
	heartbeatUC usecase.HeartbeatUseCase
	chainUC     usecase.AssembleChainUseCase
	metrics     *instrument.Metrics
	log         *logging.Logger
}

func NewDirectoryHandler(
	registerUC usecase.RegisterNodeUseCase,
	heartbeatUC usecase.HeartbeatUseCase,
	chainUC usecase.AssembleChainUseCase,
	metrics *instrument.Metrics,
	log *logging.Logger,
) *DirectoryHandler {
	return &DirectoryHandler{
		registerUC:  registerUC,
		heartbeatUC: heartbeatUC,
		chainUC:     chainUC,
		metrics:     metrics,
		log:         log,
	}
}

// Routes returns the directory mux.
func (h *DirectoryHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /chain", h.Chain)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("PUT /heartbeat", h.Heartbeat)
	mux.Handle("GET /metrics", h.metrics.Handler())
	return withAccessLog(h.log, mux)
}

func (h *DirectoryHandler) Chain(w http.ResponseWriter, r *http.Request) {
	out, err := h.chainUC.Handle(usecase.AssembleChainInput{})
	h.metrics.ChainAssembled(err)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientNodes) {
			writeJSON(w, http.StatusBadRequest, infrahttp.ErrorDTO{Error: infrahttp.MsgNotEnoughNodes})
			return
		}
		h.log.Errorf("assemble chain: %v", err)
		writeJSON(w, http.StatusInternalServerError, infrahttp.ErrorDTO{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, chainToDTO(out.Chain))
}

func (h *DirectoryHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req infrahttp.RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debugf("register: %v", err)
		h.metrics.NodeRegistered(err)
		writeJSON(w, http.StatusBadRequest, infrahttp.ErrorDTO{Error: infrahttp.MsgInvalidRequest})
		return
	}
	out, err := h.registerUC.Handle(usecase.RegisterNodeInput{
		PublicKey: req.PublicKey,
		Address:   req.Address,
		Port:      req.Port,
	})
	h.metrics.NodeRegistered(err)
	if err != nil {
		if repository.IsInvalidInput(err) {
			h.log.Noticef("register %s:%d refused: %v", req.Address, req.Port, err)
		} else {
			h.log.Errorf("register %s:%d failed: %v", req.Address, req.Port, err)
		}
		writeJSON(w, http.StatusBadRequest, infrahttp.ErrorDTO{Error: infrahttp.MsgInvalidRequest})
		return
	}
	writeJSON(w, http.StatusOK, infrahttp.RegisterResponseDTO{Secret: out.Secret})
}

func (h *DirectoryHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	var req infrahttp.HeartbeatRequestDTO
	err := json.NewDecoder(r.Body).Decode(&req)
	if err == nil {
		err = h.heartbeatUC.Handle(usecase.HeartbeatInput{Secret: req.Secret})
	}
	h.metrics.HeartbeatReceived(err)
	if err != nil {
		h.log.Debugf("heartbeat refused: %v", err)
		writeJSON(w, http.StatusBadRequest, infrahttp.ErrorDTO{Error: infrahttp.MsgInvalidRequest})
		return
	}
	writeJSON(w, http.StatusOK, infrahttp.StatusDTO{Status: "ok"})
}

func chainToDTO(c vo.ChainDescriptor) infrahttp.ChainResponseDTO {
	out := infrahttp.ChainResponseDTO{ChainNodes: make([]infrahttp.ChainNodeDTO, 0, c.Len())}
	for _, n := range c.Nodes() {
		out.ChainNodes = append(out.ChainNodes, infrahttp.ChainNodeDTO{
			Address:   n.Endpoint().Host(),
			Port:      n.Endpoint().Port(),
			PublicKey: string(n.PubKey().ToPEM()),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
