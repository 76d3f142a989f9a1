// Package cli holds what the daemons' main packages share.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"gopkg.in/op/go-logging.v1"

	"ikedadada/go-onionchain/internal/infrastructure/log"
)

// ExecuteWithFang runs cmd with fang styling and the build version, exiting
// non-zero on error.
func ExecuteWithFang(cmd *cobra.Command) {
	if err := fang.Execute(
		context.Background(),
		cmd,
		fang.WithVersion(versioninfo.Short()),
	); err != nil {
		os.Exit(1)
	}
}

// SignalContext is cancelled on SIGINT/SIGTERM. SIGHUP rotates the log file
// of backend until the context ends.
func SignalContext(parent context.Context, backend *log.Backend, lg *logging.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)

	rotateCh := make(chan os.Signal, 1)
	signal.Notify(rotateCh, syscall.SIGHUP)
	go func() {
		defer signal.Stop(rotateCh)
		for {
			select {
			case <-ctx.Done():
				return
			case <-rotateCh:
				if err := backend.Rotate(); err != nil {
					lg.Errorf("rotate log: %v", err)
				}
			}
		}
	}()
	return ctx, stop
}
