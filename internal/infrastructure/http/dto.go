package http

// Wire types shared by the directory/node handlers and the clients below.

type RegisterRequestDTO struct {
	PublicKey string `json:"public_key"`
	Address   string `json:"address"`
	Port      uint16 `json:"port"`
}

type RegisterResponseDTO struct {
	Secret string `json:"secret"`
}

type HeartbeatRequestDTO struct {
	Secret string `json:"secret"`
}

type StatusDTO struct {
	Status string `json:"status"`
}

type ChainNodeDTO struct {
	Address   string `json:"address"`
	Port      uint16 `json:"port"`
	PublicKey string `json:"public_key"`
}

type ChainResponseDTO struct {
	ChainNodes []ChainNodeDTO `json:"chain_nodes"`
}

type ErrorDTO struct {
	Error string `json:"error"`
}

// RelayRequestDTO is the body of POST /request on a node.
type RelayRequestDTO struct {
	Payload string `json:"payload"`
}

const (
	MsgInvalidRequest = "invalid request"
	MsgNotEnoughNodes = "not enough nodes"
)
