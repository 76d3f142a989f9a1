package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ikedadada/go-onionchain/internal/cli"
	vo "ikedadada/go-onionchain/internal/domain/value_object"
	"ikedadada/go-onionchain/internal/infrastructure/crypto"
	infrahttp "ikedadada/go-onionchain/internal/infrastructure/http"
	"ikedadada/go-onionchain/internal/infrastructure/log"
	"ikedadada/go-onionchain/internal/usecase"
)

// Config holds the command line configuration
type Config struct {
	Directory string
	Method    string
	Body      string
	KeyFile   string
	Timeout   time.Duration
	LogLevel  string
}

func newRootCommand() *cobra.Command {
	var cfg Config

	cmd := &cobra.Command{
		Use:   "client URL",
		Short: "Send one request through an onion chain",
		Long: `client asks the directory for a chain, wraps the request in one
encryption layer per hop, sends it to the entry node and prints the decrypted
response of the target service.`,
		Example: `  client http://example.com/
  client -X POST --data '{"q":1}' http://127.0.0.1:8080/api`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(cmd.Context(), cfg, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&cfg.Directory, "directory", "d", "http://127.0.0.1:9000", "directory base URL")
	cmd.Flags().StringVarP(&cfg.Method, "request", "X", "GET", "HTTP method for the target service")
	cmd.Flags().StringVar(&cfg.Body, "data", "", "request body for the target service")
	cmd.Flags().StringVarP(&cfg.KeyFile, "key", "k", "", "PEM RSA private key; a fresh one is generated when empty")
	cmd.Flags().DurationVarP(&cfg.Timeout, "timeout", "t", 30*time.Second, "overall timeout")
	cmd.Flags().StringVar(&cfg.LogLevel, "log-level", "WARNING", "log level written to stderr")
	return cmd
}

func main() {
	cli.ExecuteWithFang(newRootCommand())
}

func loadKey(path string) (*vo.RSAPrivKey, error) {
	if path == "" {
		return vo.GenerateRSAPrivKey(2048)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return vo.RSAPrivKeyFromPEM(b)
}

func runClient(ctx context.Context, cfg Config, target string, stdout, stderr io.Writer) error {
	backend, err := log.NewWriter(stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	lg := backend.GetLogger("client")

	key, err := loadKey(cfg.KeyFile)
	if err != nil {
		return fmt.Errorf("load private key: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	httpClient := infrahttp.NewHTTPClient(0)
	uc := usecase.NewSendRequestUseCase(
		infrahttp.NewDirectoryClient(httpClient, cfg.Directory),
		usecase.NewBuildOnionUseCase(crypto.NewCryptoService(), key),
		infrahttp.NewHopClient(httpClient),
		lg,
	)
	out, err := uc.Handle(ctx, usecase.SendRequestInput{Method: cfg.Method, URL: target, Body: cfg.Body})
	if err != nil {
		return err
	}
	_, err = stdout.Write(out.Response)
	return err
}
