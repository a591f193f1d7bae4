package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nnnkkk7/sqlbuddy/pkg/config"
	"github.com/nnnkkk7/sqlbuddy/pkg/connector"
	"github.com/nnnkkk7/sqlbuddy/pkg/query"
	"github.com/nnnkkk7/sqlbuddy/server/handlers"
)

const shutdownTimeout = 10 * time.Second

type cmdServe struct {
	global *cmdGlobal

	flagAddr       string
	flagBusyPolicy string
}

func (c *cmdServe) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "serve"
	cmd.Short = "Serve the HTTP API"
	cmd.Long = `Serve the HTTP API on the selected profile. Runs share one connection and
execute one at a time.`
	cmd.Args = cobra.NoArgs
	cmd.RunE = c.Run

	cmd.Flags().StringVar(&c.flagAddr, "addr", "", "Listen address (defaults to http.addr from the config)"+"``")
	cmd.Flags().StringVar(&c.flagBusyPolicy, "busy-policy", "", "wait or reject a run while another one is active"+"``")

	return cmd
}

// Run runs the actual command logic.
func (c *cmdServe) Run(cmd *cobra.Command, _ []string) error {
	conf := c.global.conf
	log := c.global.log

	addr := conf.HTTP.Addr
	if c.flagAddr != "" {
		addr = c.flagAddr
	}
	policy := conf.Run.BusyPolicy
	if c.flagBusyPolicy != "" {
		policy = config.BusyPolicy(c.flagBusyPolicy)
		if policy != config.BusyPolicyWait && policy != config.BusyPolicyReject {
			return errors.New("busy-policy must be wait or reject")
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr, err := c.global.connect(ctx)
	if err != nil {
		return err
	}
	defer closeManager(log, mgr)

	runs := query.NewRunManager(query.ManagerSource(mgr), query.RunManagerOptions{
		TTL:        conf.Run.TTL(),
		BusyPolicy: policy,
		Log:        log,
	})
	defer runs.Close()

	server := &http.Server{
		Addr: addr,
		Handler: handlers.NewRouter(handlers.RouterConfig{
			Runs:   runs,
			Tester: connector.NewRegistry(log),
			Config: conf,
			Log:    log,
		}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("Starting sqlbuddy API")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
