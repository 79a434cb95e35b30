package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/osegonte/kiox/internal/domain"
	"github.com/osegonte/kiox/internal/handlers"
	"github.com/osegonte/kiox/internal/platform/config"
	"github.com/osegonte/kiox/internal/platform/observability"
	"github.com/osegonte/kiox/internal/platform/supabase"
	"github.com/osegonte/kiox/internal/repositories"
	supabaserepo "github.com/osegonte/kiox/internal/repositories/supabase"
	"github.com/osegonte/kiox/internal/services"
)

var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("api terminated", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storeClient, err := supabase.NewClient(supabase.Config{
		BaseURL:    cfg.Store.URL,
		ServiceKey: cfg.Store.ServiceKey,
		Schema:     cfg.Store.Schema,
		Timeout:    cfg.Store.Timeout,
	})
	if err != nil {
		return fmt.Errorf("store client: %w", err)
	}

	productRepo, err := supabaserepo.NewProductRepository(storeClient)
	if err != nil {
		return err
	}
	orderRepo, err := supabaserepo.NewOrderRepository(storeClient)
	if err != nil {
		return err
	}
	auditRepo, err := supabaserepo.NewAuditLogRepository(storeClient)
	if err != nil {
		return err
	}
	healthRepo, err := repositories.NewDependencyHealthRepository([]repositories.DependencyCheck{
		{Name: "store", Check: storeClient.Ping},
	})
	if err != nil {
		return err
	}

	pricing, err := services.NewPricingEngine(services.PricingEngineDeps{Catalog: productRepo})
	if err != nil {
		return err
	}
	audit, err := services.NewAuditLogService(services.AuditLogServiceDeps{
		Repository: auditRepo,
		Logger:     observability.NewPrintfAdapter(logger.Named("audit")),
	})
	if err != nil {
		return err
	}

	transitions := services.PermissiveTransitions()
	if cfg.Orders.StrictTransitions {
		transitions = services.StrictTransitions()
	}
	orders, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:      orderRepo,
		Pricing:     pricing,
		Audit:       audit,
		ETAOffset:   cfg.Orders.ETAOffset,
		Transitions: transitions,
	})
	if err != nil {
		return err
	}
	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{Catalog: productRepo})
	if err != nil {
		return err
	}
	system, err := services.NewSystemService(services.SystemServiceDeps{
		Health:      healthRepo,
		Version:     version,
		Environment: cfg.Environment,
	})
	if err != nil {
		return err
	}

	orderHandlers, err := handlers.NewOrderHandlers(orders)
	if err != nil {
		return err
	}
	productHandlers, err := handlers.NewProductHandlers(catalog)
	if err != nil {
		return err
	}

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger),
		observability.TraceMiddleware(),
		observability.RequestLoggerMiddleware(),
		observability.RecoveryMiddleware(logger),
	}
	if len(cfg.CORS.AllowedOrigins) > 0 {
		middlewares = append([]func(http.Handler) http.Handler{
			cors.Handler(cors.Options{
				AllowedOrigins:   cfg.CORS.AllowedOrigins,
				AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
				AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
				AllowCredentials: true,
				MaxAge:           300,
			}),
		}, middlewares...)
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(handlers.WithSystemService(system))),
		handlers.WithOrderRoutes(orderHandlers.Routes),
		handlers.WithProductRoutes(productHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("api listening",
			zap.String("addr", server.Addr),
			zap.String("environment", cfg.Environment),
			zap.String("version", version),
			zap.Bool("strict_transitions", cfg.Orders.StrictTransitions),
			zap.Duration("eta_offset", cfg.Orders.ETAOffset),
			zap.Strings("statuses", statusStrings()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

func statusStrings() []string {
	statuses := domain.OrderStatuses()
	out := make([]string, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, string(status))
	}
	return out
}
