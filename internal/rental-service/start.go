package rentalservice

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"car-hire/internal/config"
	"car-hire/internal/mylogger"
	"car-hire/internal/rental-service/adapters/driver/myhttp"
)

const serviceName = "rental-service"

// Run starts the rental service and blocks until the process is signalled
// or the HTTP server fails.
func Run() error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	mylog, err := mylogger.New(serviceName, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown, stop := signal.NotifyContext(appCtx, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	srv := myhttp.NewServer(shutdown, appCtx, mylog, cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case <-shutdown.Done():
		mylog.Info("Gracefully shutting down...")
	case err := <-errCh:
		if err != nil {
			mylog.Error("server stopped with error", err)
			return err
		}
		return nil
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*myhttp.WaitTime*time.Second)
	defer stopCancel()
	return srv.Stop(stopCtx)
}
