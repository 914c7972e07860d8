// Package app wires storage, services and HTTP into the cart server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xenking/shopcart/internal/domain/cart"
	"github.com/xenking/shopcart/internal/domain/coupon"
	"github.com/xenking/shopcart/internal/domain/order"
	"github.com/xenking/shopcart/internal/domain/product"
	"github.com/xenking/shopcart/internal/handler"
	"github.com/xenking/shopcart/internal/storage/postgres"
	"github.com/xenking/shopcart/pkg/health"
	"github.com/xenking/shopcart/pkg/httpmiddleware"
)

const serviceName = "cart-api"

// Run builds every dependency, serves HTTP and shuts down gracefully when ctx
// is cancelled.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	healthSvc := newHealth(pool, cfg.Health)
	healthSvc.Start(ctx, cfg.Health.Interval)
	defer healthSvc.Stop()

	apiHandler, err := newHandler(ctx, pool, healthSvc, m, cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           apiHandler,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()

		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
	}()

	healthSvc.SetReady(true)
	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve")
	}
	<-shutdownDone
	return nil
}

// newHandler builds repositories, services and the middleware chain on top
// of pool.
func newHandler(
	ctx context.Context,
	pool *pgxpool.Pool,
	healthSvc *health.Health,
	tel httpmiddleware.TelemetryProvider,
	cfg *Config,
) (http.Handler, error) {
	productRepo := postgres.NewProductRepository(pool)
	couponRepo := postgres.NewCouponRepository(pool)
	cartRepo := postgres.NewCartRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	apikeyRepo := postgres.NewAPIKeyRepository(pool)

	cartService, err := cart.NewService(cartRepo, productRepo, couponRepo, orderRepo,
		tel.MeterProvider().Meter("github.com/xenking/shopcart/internal/domain/cart"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create cart service")
	}

	h := handler.NewHandler(
		product.NewService(productRepo),
		coupon.NewService(couponRepo),
		cartService,
		order.NewService(orderRepo),
		handler.NewSecurityHandler(apikeyRepo, []byte(cfg.APIKeyPepper)),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	routeFinder := httpmiddleware.MakeRouteFinder(mux)
	return httpmiddleware.Wrap(mux,
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type", handler.APIKeyHeader, httpmiddleware.RequestIDHeader},
			ExposeHeaders:    []string{httpmiddleware.RequestIDHeader, "Retry-After"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.Instrument(serviceName, routeFinder, tel),
		httpmiddleware.LogRequests(routeFinder),
		httpmiddleware.Labeler(routeFinder),
	), nil
}

func newHealth(pool *pgxpool.Pool, cfg HealthConfig) *health.Health {
	h := health.New()
	h.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(pool))
	h.AddReadinessCheck("postgres_pool", time.Second, health.PoolSaturationCheck(func() (int32, int32) {
		st := pool.Stat()
		return st.AcquiredConns(), st.MaxConns()
	}))
	h.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(cfg.MaxGoroutines))
	h.AddLivenessCheck("gc_pause", time.Second, health.GCMaxPauseCheck(cfg.MaxGCPause))
	return h
}
