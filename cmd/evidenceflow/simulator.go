package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oots-bridge/evidence-contract-tests/config"
	"github.com/oots-bridge/evidence-contract-tests/simulator"
)

var simulatorAddr string

var simulatorCmd = &cobra.Command{
	Use:   "simulator",
	Short: "Serve the behavior-configurable data-provider simulator",
	RunE:  runSimulator,
}

func init() {
	simulatorCmd.Flags().StringVar(&simulatorAddr, "addr", "", "listen address (overrides config)")
}

func runSimulator(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	addr := cfg.Simulator.ListenAddr
	if simulatorAddr != "" {
		addr = simulatorAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stdout, "[simulator] ", log.LstdFlags)
	srv := simulator.NewServer(logger)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
