package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultNodeAddress         = "127.0.0.1"
	defaultNodePort            = 9001
	defaultDirectoryURL        = "http://127.0.0.1:9000"
	defaultRegistrationTimeout = 10 * time.Second
	defaultHeartbeatPeriod     = 5 * time.Second
	defaultHeartbeatTimeout    = 10 * time.Second
	defaultHopTimeout          = 1 * time.Second
	defaultTargetTimeout       = 10 * time.Second
)

// NodeServer describes where the node listens and how it is announced.
type NodeServer struct {
	// Address is the host announced to the directory.
	Address string

	// Port is the announced port, also used for listening unless
	// ListenAddress is set.
	Port uint16

	// ListenAddress overrides the listen address, e.g. "0.0.0.0:9001".
	ListenAddress string

	// PrivateKeyFile is a PEM RSA private key. When empty a fresh key is
	// generated on every start.
	PrivateKeyFile string
}

// DirectoryPeer is the directory the node registers with.
type DirectoryPeer struct {
	URL                 string
	RegistrationTimeout time.Duration
	HeartbeatPeriod     time.Duration
	HeartbeatTimeout    time.Duration
}

// Relay holds the relay protocol limits.
type Relay struct {
	HopTimeout    time.Duration
	TargetTimeout time.Duration

	// RateLimit is the sustained number of POST /request per second
	// accepted by the node; zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Node is the top level node configuration.
type Node struct {
	Server    *NodeServer
	Directory *DirectoryPeer
	Relay     *Relay
	Logging   *Logging
}

// ListenAddress is where the node's HTTP server binds.
func (cfg *Node) ListenAddress() string {
	if cfg.Server.ListenAddress != "" {
		return cfg.Server.ListenAddress
	}
	return net.JoinHostPort(cfg.Server.Address, fmt.Sprint(cfg.Server.Port))
}

func (cfg *Node) FixupAndValidate() error {
	if cfg.Server == nil {
		cfg.Server = &NodeServer{}
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultNodeAddress
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultNodePort
	}

	if cfg.Directory == nil {
		cfg.Directory = &DirectoryPeer{}
	}
	if cfg.Directory.URL == "" {
		cfg.Directory.URL = defaultDirectoryURL
	}
	if u, err := url.Parse(cfg.Directory.URL); err != nil || u.Host == "" {
		return fmt.Errorf("config: Directory: URL '%v' is invalid", cfg.Directory.URL)
	}
	setDefaultDuration(&cfg.Directory.RegistrationTimeout, defaultRegistrationTimeout)
	setDefaultDuration(&cfg.Directory.HeartbeatPeriod, defaultHeartbeatPeriod)
	setDefaultDuration(&cfg.Directory.HeartbeatTimeout, defaultHeartbeatTimeout)

	if cfg.Relay == nil {
		cfg.Relay = &Relay{}
	}
	setDefaultDuration(&cfg.Relay.HopTimeout, defaultHopTimeout)
	setDefaultDuration(&cfg.Relay.TargetTimeout, defaultTargetTimeout)
	if cfg.Relay.RateLimit < 0 {
		return fmt.Errorf("config: Relay: RateLimit %v is invalid", cfg.Relay.RateLimit)
	}
	if cfg.Relay.RateLimit > 0 && cfg.Relay.RateBurst <= 0 {
		cfg.Relay.RateBurst = int(cfg.Relay.RateLimit) + 1
	}

	for _, d := range []time.Duration{
		cfg.Directory.RegistrationTimeout, cfg.Directory.HeartbeatPeriod, cfg.Directory.HeartbeatTimeout,
		cfg.Relay.HopTimeout, cfg.Relay.TargetTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("config: negative duration %v", d)
		}
	}

	if cfg.Logging == nil {
		cfg.Logging = defaultLogging()
	}
	return cfg.Logging.validate()
}

func setDefaultDuration(d *time.Duration, def time.Duration) {
	if *d == 0 {
		*d = def
	}
}

// DefaultNode is the configuration used when no file is given.
func DefaultNode() *Node {
	cfg := new(Node)
	if err := cfg.FixupAndValidate(); err != nil {
		panic(err)
	}
	return cfg
}

// LoadNode parses and validates the provided buffer b as a config file body
// and returns the Node config.
func LoadNode(b []byte) (*Node, error) {
	if b == nil {
		return nil, errors.New("No nil buffer as config file")
	}
	cfg := new(Node)
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("config: Undecoded keys in config file: %v", undecoded)
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadNodeFile loads, parses and validates the provided file.
func LoadNodeFile(f string) (*Node, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return LoadNode(b)
}
