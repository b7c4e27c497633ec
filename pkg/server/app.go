// Package server owns the application lifecycle: HTTP surface, scheduler,
// ticker stream, and ordered shutdown.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"Barashor/internal/domain/repository"
	"Barashor/internal/scheduler"
	"Barashor/internal/service/bybit"
	"Barashor/pkg/config"
	xhttp "Barashor/pkg/http"
	"Barashor/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *logger.Logger
	sched      *scheduler.Scheduler
	stream     *bybit.Stream
	market     repository.MarketData
	store      repository.SignalStore
	publisher  repository.DecisionPublisher
	handlers   routes
	httpServer *xhttp.Server
}

// routes fans RegisterRoutes out over every mounted handler.
type routes []xhttp.Handler

func (r routes) RegisterRoutes(e *echo.Echo) {
	for _, h := range r {
		if h != nil {
			h.RegisterRoutes(e)
		}
	}
}

// New creates the App. Scheduler and stream may be nil when disabled.
func New(
	cfg *config.Config,
	log *logger.Logger,
	sched *scheduler.Scheduler,
	stream *bybit.Stream,
	market repository.MarketData,
	store repository.SignalStore,
	publisher repository.DecisionPublisher,
	handlers ...xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		sched:     sched,
		stream:    stream,
		market:    market,
		store:     store,
		publisher: publisher,
		handlers:  routes(handlers),
	}
}

// Run starts every component and blocks until an interrupt arrives.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handlers,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.sched != nil {
		a.sched.Start()
	}

	if a.stream != nil {
		go a.runStream(ctx)
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start failed", logger.Error(err))
		return err
	}
	a.log.Info("application started", logger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// runStream resolves the symbol universe and pumps ticker updates until
// the app stops. Without a universe the stream simply does not start.
func (a *App) runStream(ctx context.Context) {
	listCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	symbols, err := a.market.ListSymbols(listCtx)
	cancel()
	if err != nil {
		a.log.Warn("ticker stream disabled, symbol listing failed", logger.Error(err))
		return
	}
	a.stream.Run(ctx, symbols)
}

// shutdown stops components in reverse start order.
func (a *App) shutdown() error {
	if a.sched != nil {
		a.sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", logger.Error(err))
	}

	if err := a.publisher.Close(); err != nil {
		a.log.Warn("publisher close error", logger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("store close error", logger.Error(err))
	}

	a.log.Info("shutdown complete")
	return nil
}
