package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultDirectoryAddress = ":9000"
	DefaultChainLength      = 3
	DefaultNodeTimeout      = 15 * time.Second

	envChainLength = "CHAIN_LENGTH"
	envNodeTimeout = "CHAIN_NODE_TIMEOUT"
)

// Chain controls how the directory assembles chains.
type Chain struct {
	// Length is the number of hops per chain.
	Length int

	// NodeTimeout is how long a node stays alive after its last heartbeat.
	NodeTimeout time.Duration
}

// DirectoryServer is the listener of the directory.
type DirectoryServer struct {
	Address string
}

// Directory is the top level directory configuration.
type Directory struct {
	Server  *DirectoryServer
	Chain   *Chain
	Logging *Logging
}

// FixupAndValidate applies defaults to config entries and validates the
// configuration sections.
func (cfg *Directory) FixupAndValidate() error {
	if cfg.Server == nil {
		cfg.Server = &DirectoryServer{}
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultDirectoryAddress
	}
	if cfg.Chain == nil {
		cfg.Chain = &Chain{}
	}
	if cfg.Chain.Length == 0 {
		cfg.Chain.Length = DefaultChainLength
	}
	if cfg.Chain.Length < 0 {
		return fmt.Errorf("config: Chain: Length %d is invalid", cfg.Chain.Length)
	}
	if cfg.Chain.NodeTimeout == 0 {
		cfg.Chain.NodeTimeout = DefaultNodeTimeout
	}
	if cfg.Chain.NodeTimeout < 0 {
		return fmt.Errorf("config: Chain: NodeTimeout %v is invalid", cfg.Chain.NodeTimeout)
	}
	if cfg.Logging == nil {
		cfg.Logging = defaultLogging()
	}
	return cfg.Logging.validate()
}

// maxNodeTimeoutSeconds is the largest timeout a time.Duration can hold.
const maxNodeTimeoutSeconds = math.MaxInt64 / int64(time.Second)

// ApplyEnvironment overrides the chain settings from CHAIN_LENGTH and
// CHAIN_NODE_TIMEOUT (whole seconds). An unusable value falls back to the
// built-in default; the returned notes say so and are meant for the log.
func (cfg *Directory) ApplyEnvironment(lookup func(string) (string, bool)) []string {
	var notes []string
	if v, ok := lookup(envChainLength); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			notes = append(notes, fmt.Sprintf("invalid %s %q, using default %d", envChainLength, v, DefaultChainLength))
			n = DefaultChainLength
		}
		cfg.Chain.Length = n
	}
	if v, ok := lookup(envNodeTimeout); ok {
		s, err := strconv.ParseInt(v, 10, 64)
		d := time.Duration(s) * time.Second
		if err != nil || s <= 0 || s > maxNodeTimeoutSeconds {
			notes = append(notes, fmt.Sprintf("invalid %s %q, using default %v", envNodeTimeout, v, DefaultNodeTimeout))
			d = DefaultNodeTimeout
		}
		cfg.Chain.NodeTimeout = d
	}
	return notes
}

// DefaultDirectory is the configuration used when no file is given.
func DefaultDirectory() *Directory {
	cfg := new(Directory)
	if err := cfg.FixupAndValidate(); err != nil {
		panic(err)
	}
	return cfg
}

// LoadDirectory parses and validates the provided buffer b as a config file
// body and returns the Directory config.
func LoadDirectory(b []byte) (*Directory, error) {
	if b == nil {
		return nil, errors.New("No nil buffer as config file")
	}
	cfg := new(Directory)
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

// LoadDirectoryFile loads, parses and validates the provided file.
func LoadDirectoryFile(f string) (*Directory, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return LoadDirectory(b)
}
