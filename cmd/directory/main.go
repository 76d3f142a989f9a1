package main

import (
	"fmt"
	"net"
	"os"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"

	"ikedadada/go-onionchain/internal/cli"
	"ikedadada/go-onionchain/internal/handler"
	"ikedadada/go-onionchain/internal/infrastructure/config"
	infrahttp "ikedadada/go-onionchain/internal/infrastructure/http"
	"ikedadada/go-onionchain/internal/infrastructure/instrument"
	"ikedadada/go-onionchain/internal/infrastructure/log"
	"ikedadada/go-onionchain/internal/infrastructure/repository"
	"ikedadada/go-onionchain/internal/usecase"
	"ikedadada/go-onionchain/internal/usecase/service"
)

// Config holds the command line configuration
type Config struct {
	ConfigFile string
	Listen     string
}

func newRootCommand() *cobra.Command {
	var cfg Config

	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Onion chain directory server",
		Long: `The directory keeps the registry of relay nodes. Nodes register with
their public key and endpoint and then send periodic heartbeats; clients ask
for a chain and receive alive nodes picked round-robin.

CHAIN_LENGTH and CHAIN_NODE_TIMEOUT (seconds) override the configuration.`,
		Example: `  # Start with built-in defaults on :9000
  directory

  # Start with a configuration file
  directory -f directory.toml

  # Chains of two hops
  CHAIN_LENGTH=2 directory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDirectory(cmd, cfg)
		},
	}
	cmd.Flags().StringVarP(&cfg.ConfigFile, "config", "f", "", "path to the directory configuration file (TOML format)")
	cmd.Flags().StringVarP(&cfg.Listen, "listen", "l", "", "listen address, overrides the configuration")
	return cmd
}

func main() {
	cli.ExecuteWithFang(newRootCommand())
}

func loadConfig(cfg Config) (*config.Directory, error) {
	if cfg.ConfigFile == "" {
		return config.DefaultDirectory(), nil
	}
	dirCfg, err := config.LoadDirectoryFile(cfg.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%v': %v", cfg.ConfigFile, err)
	}
	return dirCfg, nil
}

func runDirectory(cmd *cobra.Command, cfg Config) error {
	dirCfg, err := loadConfig(cfg)
	if err != nil {
		return err
	}
	notes := dirCfg.ApplyEnvironment(os.LookupEnv)
	if cfg.Listen != "" {
		dirCfg.Server.Address = cfg.Listen
	}

	backend, err := log.New(dirCfg.Logging.File, dirCfg.Logging.Level, dirCfg.Logging.Disable)
	if err != nil {
		return err
	}
	defer backend.Close()
	lg := backend.GetLogger("directory")
	for _, n := range notes {
		lg.Warning(n)
	}
	lg.Noticef("chain length %d, node timeout %v", dirCfg.Chain.Length, dirCfg.Chain.NodeTimeout)

	clk := clock.New()
	repo := repository.NewRelayNodeRepository(clk)
	metrics := instrument.New(func() int { return len(repo.ListOrdering()) })
	h := handler.NewDirectoryHandler(
		usecase.NewRegisterNodeUseCase(repo, backend.GetLogger("registry")),
		usecase.NewHeartbeatUseCase(repo, backend.GetLogger("registry")),
		usecase.NewAssembleChainUseCase(
			service.NewChainAssemblyService(repo, clk),
			dirCfg.Chain.Length, dirCfg.Chain.NodeTimeout,
			backend.GetLogger("chain"),
		),
		metrics,
		backend.GetLogger("http"),
	)

	ctx, stop := cli.SignalContext(cmd.Context(), backend, lg)
	defer stop()

	ln, err := net.Listen("tcp", dirCfg.Server.Address)
	if err != nil {
		return err
	}
	return infrahttp.Serve(ctx, infrahttp.NewServer(h.Routes()), ln, lg)
}
