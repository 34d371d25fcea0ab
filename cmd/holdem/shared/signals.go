package shared

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
)

// SetupSignalHandler returns a context cancelled by SIGINT or SIGTERM. A
// second signal exits immediately.
func SetupSignalHandler(logger *log.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigs
		logger.Info("Shutting down", "signal", sig.String())
		cancel()

		sig = <-sigs
		logger.Warn("Forced exit", "signal", sig.String())
		os.Exit(1)
	}()

	return ctx
}
