package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ekpono/booking-platform/internal/bookings/handler"
	"github.com/ekpono/booking-platform/pkg/config"
	"github.com/ekpono/booking-platform/pkg/contracts"
	"github.com/ekpono/booking-platform/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.UserRateLimiter
	healthHandler    http.Handler
	appHTTPHandler   http.Handler
}

func NewApplication() *Application {
	return &Application{}
}

func (a *Application) SetApp(cfg *config.Config, appHandlers ...contracts.Handler) {
	a.cfg = cfg
	a.setHealthHandler(cfg)
	a.setAppHandler(cfg, appHandlers...)
	a.setAppServer()
}

func (a *Application) setHealthHandler(cfg *config.Config) {
	healthRouter := httprouter.New()
	healthHandler := handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log)
	healthHandler.RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(cfg *config.Config, appHandlers ...contracts.Handler) {
	appRouter := httprouter.New()
	for _, h := range appHandlers {
		h.RegisterRoutes(appRouter)
	}

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewUserRateLimiter(
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		cfg.Log,
	)

	var appHTTPHandler http.Handler = appRouter
	appHTTPHandler = middleware.Idempotency(a.idempotencyStore, "Idempotency-Key")(appHTTPHandler)
	appHTTPHandler = middleware.RequestTimeout(cfg.RequestTimeout)(appHTTPHandler)
	appHTTPHandler = middleware.UserRateLimit(a.rateLimiter)(appHTTPHandler)
	appHTTPHandler = middleware.Identity(cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.ContentTypeValidation(cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(appHTTPHandler)
	appHTTPHandler = middleware.RequestLogging(cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.Recovery(cfg.Log)(appHTTPHandler)
	a.appHTTPHandler = appHTTPHandler
	cfg.Log.Info("Application endpoints configured with full middleware stack")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHTTPHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	a.cfg.Log.Info("Stopping background workers...")
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	a.cfg.Log.Info("Background workers stopped")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}
