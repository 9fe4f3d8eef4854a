package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"RWAPulse/internal/domain/models"
	mid "RWAPulse/internal/middleware"
	"RWAPulse/internal/render"
	"RWAPulse/internal/usecase"
	"RWAPulse/pkg/config"
	xhttp "RWAPulse/pkg/http"
	applogger "RWAPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	monitor    *usecase.SignalMonitor
	pipe       *mid.PublishPipeline
	httpServer *xhttp.Server
	sink       *render.ConsoleSink
	provider   string
}

// New creates a new App instance with all dependencies. pipe and sink may be nil.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	monitor *usecase.SignalMonitor,
	pipe *mid.PublishPipeline,
	httpServer *xhttp.Server,
	sink *render.ConsoleSink,
	provider string,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		monitor:    monitor,
		pipe:       pipe,
		httpServer: httpServer,
		sink:       sink,
		provider:   provider,
	}
}

// Monitor exposes the cycle runner.
func (a *App) Monitor() *usecase.SignalMonitor { return a.monitor }

// Scan runs a single cycle and returns its report. sample > 0 scans a random subset.
func (a *App) Scan(ctx context.Context, sample int) (*models.ScanReport, error) {
	a.boot()
	if a.pipe != nil {
		a.pipe.Start(ctx)
		defer func() {
			if err := a.pipe.Close(); err != nil {
				a.log.Warn("publisher close error", applogger.Error(err))
			}
		}()
	}
	rep, err := a.monitor.RunSample(ctx, sample)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return rep, nil
}

// Run starts the monitor loop and the HTTP server and blocks until ctx ends
// or the process is interrupted.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.boot()
	if a.pipe != nil {
		a.pipe.Start(ctx)
		a.log.Info("kafka publisher started", applogger.String("topic", a.cfg.Kafka.Topic))
	}

	a.monitor.Start(ctx)
	a.log.Info("monitor started",
		applogger.String("provider", a.provider),
		applogger.String("interval", a.cfg.Monitor.Interval.String()),
	)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		a.log.Info("shutdown signal received")
	case <-ctx.Done():
	}
	return a.shutdown()
}

func (a *App) boot() {
	if a.sink == nil {
		return
	}
	steps := []string{
		fmt.Sprintf("Loading venue partition (%d on-chain, %d off-chain)", len(a.cfg.Venues.OnChain), len(a.cfg.Venues.OffChain)),
		fmt.Sprintf("Connecting snapshot source: %s", a.provider),
	}
	if a.pipe != nil {
		steps = append(steps, "Opening signal stream: "+a.cfg.Kafka.Topic)
	}
	if err := a.sink.Boot(steps); err != nil {
		a.log.Warn("banner write failed", applogger.Error(err))
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if err := a.monitor.Shutdown(ctx); err != nil {
		a.log.Warn("monitor stop error", applogger.Error(err))
	}
	// closes the kafka producer behind it
	if a.pipe != nil {
		if err := a.pipe.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
