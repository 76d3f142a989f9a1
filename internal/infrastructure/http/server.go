package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/op/go-logging.v1"
)

const shutdownTimeout = 5 * time.Second

// NewServer wraps h in an http.Server with the daemons' timeouts.
func NewServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Serve runs srv on ln until ctx is done or the server fails, then shuts it
// down gracefully.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, log *logging.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Noticef("listening on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Notice("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
