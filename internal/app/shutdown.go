package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linkedin-digest/internal/observability"
)

// GracefulShutdown возвращает context, который отменяется по SIGINT/SIGTERM
// или по истечении runTimeout.
func GracefulShutdown(logger *observability.Logger, runTimeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
