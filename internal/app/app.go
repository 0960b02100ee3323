// Package app wires the store HTTP server.
package app

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/store-inventory/internal/catalog"
	"github.com/xenking/store-inventory/internal/domain/order"
	"github.com/xenking/store-inventory/internal/domain/store"
	"github.com/xenking/store-inventory/internal/handler"
	"github.com/xenking/store-inventory/pkg/health"
	"github.com/xenking/store-inventory/pkg/httpmiddleware"
)

// Run loads the catalog, builds the server and serves until ctx is done.
func Run(ctx context.Context, lg *zap.Logger, m httpmiddleware.Telemetry, cfg *Config) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return errors.Wrap(err, "listen")
	}
	return Serve(ctx, lg, m, cfg, ln)
}

// Serve is Run on an existing listener. It closes ln.
func Serve(ctx context.Context, lg *zap.Logger, m httpmiddleware.Telemetry, cfg *Config, ln net.Listener) error {
	lg.Info("Initializing",
		zap.String("addr", ln.Addr().String()),
		zap.String("catalog", cfg.CatalogFile),
	)

	c, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		_ = ln.Close()
		return errors.Wrap(err, "load catalog")
	}
	s := store.New(c.Products...)
	lg.Info("Catalog loaded",
		zap.Int("products", len(c.Products)),
		zap.Int("promotions", len(c.Promotions)),
		zap.Int("total_quantity", s.TotalQuantity()),
	)

	orders, err := order.NewService(s, m.TracerProvider(), m.MeterProvider())
	if err != nil {
		_ = ln.Close()
		return errors.Wrap(err, "create order service")
	}

	healthSvc := health.New()
	healthSvc.Register(health.Readiness, "catalog", health.NotEmpty("catalog", func() int {
		return len(s.All())
	}), health.Options{})
	healthSvc.Register(health.Liveness, "goroutines", health.MaxGoroutines(10000), health.Options{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(handler.HandlerConfig{}, s, orders).Register(mux)

	limiter := httpmiddleware.NewLimiter(httpmiddleware.RateLimitConfig{
		Max:    cfg.RateLimit.Max,
		Window: cfg.RateLimit.Window,
	})

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				Origins:          cfg.CORS.Origins,
				Headers:          []string{"Content-Type", httpmiddleware.RequestIDHeader},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			limiter.Middleware(),
			httpmiddleware.Instrument(cfg.ServiceName, m),
			httpmiddleware.LogRequests(),
		),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		limiter.Run(gCtx)
		return nil
	})
	g.Go(func() error {
		healthSvc.Start(gCtx, 10*time.Second)
		healthSvc.SetReady(true)
		lg.Info("Server listening", zap.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve")
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		healthSvc.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		defer healthSvc.Stop()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	return g.Wait()
}

func sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
