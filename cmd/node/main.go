package main

import (
	"fmt"
	"net"
	"os"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/op/go-logging.v1"

	"ikedadada/go-onionchain/internal/cli"
	vo "ikedadada/go-onionchain/internal/domain/value_object"
	"ikedadada/go-onionchain/internal/handler"
	"ikedadada/go-onionchain/internal/infrastructure/config"
	"ikedadada/go-onionchain/internal/infrastructure/crypto"
	infrahttp "ikedadada/go-onionchain/internal/infrastructure/http"
	"ikedadada/go-onionchain/internal/infrastructure/instrument"
	"ikedadada/go-onionchain/internal/infrastructure/log"
	"ikedadada/go-onionchain/internal/usecase"
)

// Config holds the command line configuration
type Config struct {
	ConfigFile string
	Address    string
	Port       uint16
	Directory  string
	KeyFile    string
}

func newRootCommand() *cobra.Command {
	var cfg Config

	cmd := &cobra.Command{
		Use:   "node",
		Short: "Onion chain relay node",
		Long: `A relay node registers its public key and endpoint with the directory,
keeps itself alive there with heartbeats and serves POST /request: it removes
its layer of an onion and either forwards the rest to the next hop or, as the
exit, calls the target service and encrypts the answer for the originator.`,
		Example: `  # Node on 127.0.0.1:9001 registering with http://127.0.0.1:9000
  node

  node --port 9002 --key node2.pem
  node -f node.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd, cfg)
		},
	}
	cmd.Flags().StringVarP(&cfg.ConfigFile, "config", "f", "", "path to the node configuration file (TOML format)")
	cmd.Flags().StringVar(&cfg.Address, "address", "", "announced host, overrides the configuration")
	cmd.Flags().Uint16VarP(&cfg.Port, "port", "p", 0, "announced and listen port, overrides the configuration")
	cmd.Flags().StringVarP(&cfg.Directory, "directory", "d", "", "directory base URL, overrides the configuration")
	cmd.Flags().StringVarP(&cfg.KeyFile, "key", "k", "", "PEM RSA private key, overrides the configuration")
	return cmd
}

func main() {
	cli.ExecuteWithFang(newRootCommand())
}

func loadConfig(cfg Config) (*config.Node, error) {
	nodeCfg := config.DefaultNode()
	if cfg.ConfigFile != "" {
		var err error
		if nodeCfg, err = config.LoadNodeFile(cfg.ConfigFile); err != nil {
			return nil, fmt.Errorf("failed to load config file '%v': %v", cfg.ConfigFile, err)
		}
	}
	if cfg.Address != "" {
		nodeCfg.Server.Address = cfg.Address
	}
	if cfg.Port != 0 {
		nodeCfg.Server.Port = cfg.Port
		nodeCfg.Server.ListenAddress = ""
	}
	if cfg.Directory != "" {
		nodeCfg.Directory.URL = cfg.Directory
	}
	if cfg.KeyFile != "" {
		nodeCfg.Server.PrivateKeyFile = cfg.KeyFile
	}
	return nodeCfg, nodeCfg.FixupAndValidate()
}

func loadKey(path string, lg *logging.Logger) (*vo.RSAPrivKey, error) {
	if path == "" {
		lg.Notice("no private key file configured, generating a fresh key")
		return vo.GenerateRSAPrivKey(2048)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return vo.RSAPrivKeyFromPEM(b)
}

func runNode(cmd *cobra.Command, cfg Config) error {
	nodeCfg, err := loadConfig(cfg)
	if err != nil {
		return err
	}

	backend, err := log.New(nodeCfg.Logging.File, nodeCfg.Logging.Level, nodeCfg.Logging.Disable)
	if err != nil {
		return err
	}
	defer backend.Close()
	lg := backend.GetLogger("node")

	key, err := loadKey(nodeCfg.Server.PrivateKeyFile, lg)
	if err != nil {
		return fmt.Errorf("load private key: %w", err)
	}
	ep, err := vo.NewEndpoint(nodeCfg.Server.Address, nodeCfg.Server.Port)
	if err != nil {
		return err
	}

	metrics := instrument.New(nil)
	hopHTTP := infrahttp.NewHTTPClient(0)
	relay := usecase.NewRelayRequestUseCase(
		key,
		crypto.NewCryptoService(),
		infrahttp.NewHopClient(hopHTTP),
		infrahttp.NewTargetClient(nil),
		nodeCfg.Relay.HopTimeout, nodeCfg.Relay.TargetTimeout,
		backend.GetLogger("relay"),
	)
	h := handler.NewNodeHandler(
		relay,
		handler.NewRateLimiter(nodeCfg.Relay.RateLimit, nodeCfg.Relay.RateBurst),
		metrics,
		backend.GetLogger("http"),
	)
	lifecycle := usecase.NewNodeLifecycleUseCase(usecase.NodeLifecycleConfig{
		Endpoint:            ep,
		RegistrationTimeout: nodeCfg.Directory.RegistrationTimeout,
		HeartbeatPeriod:     nodeCfg.Directory.HeartbeatPeriod,
		HeartbeatTimeout:    nodeCfg.Directory.HeartbeatTimeout,
		OnHeartbeat:         metrics.HeartbeatSent,
	}, key, infrahttp.NewDirectoryClient(infrahttp.NewHTTPClient(0), nodeCfg.Directory.URL), clock.New(), backend.GetLogger("lifecycle"))

	ctx, stop := cli.SignalContext(cmd.Context(), backend, lg)
	defer stop()

	ln, err := net.Listen("tcp", nodeCfg.ListenAddress())
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return infrahttp.Serve(gctx, infrahttp.NewServer(h.Routes()), ln, lg)
	})
	g.Go(func() error {
		// A node the directory does not know is useless: fail the process.
		if err := lifecycle.Start(gctx); err != nil {
			lg.Errorf("registration failed: %v", err)
			return err
		}
		<-gctx.Done()
		lifecycle.Stop()
		return nil
	})
	return g.Wait()
}
