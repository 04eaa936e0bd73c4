// server runs the account service HTTP API and, when GRPC_HEALTH_ADDR is set,
// the standard gRPC health service.
package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"account-service/internal/account/repository"
	accountservice "account-service/internal/account/service"
	"account-service/internal/audit"
	"account-service/internal/config"
	healthhandler "account-service/internal/health/handler"
	"account-service/internal/policy/engine"
	"account-service/internal/security"
	"account-service/internal/server"
	"account-service/internal/server/middleware"
	sessionservice "account-service/internal/session/service"
	telemetryotel "account-service/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()
	if providers.Exporting {
		log.Printf("otel: exporting to %s", cfg.OTLPEndpoint)
	} else {
		log.Printf("otel: no OTEL_EXPORTER_OTLP_ENDPOINT; telemetry stays in process")
	}

	driver := repository.InferDriver(cfg.StoreDriver, cfg.StoreURL)
	repo, closer, err := repository.Open(ctx, driver, cfg.StoreURL, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closer.Close()

	accounts, err := accountservice.NewAccountService(repo, security.NewHasher(cfg.BcryptCost))
	if err != nil {
		log.Fatalf("account service: %v", err)
	}
	tokens := security.NewTokenProvider(
		[]byte(cfg.JWTAccessSecret), []byte(cfg.JWTRefreshSecret),
		cfg.JWTIssuer, cfg.AccessTTL(), cfg.RefreshTTL(),
	)
	evaluator, err := engine.NewOPAEvaluator(ctx, "")
	if err != nil {
		log.Fatalf("policy: %v", err)
	}
	checker := healthhandler.NewChecker(repo, evaluator)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := server.NewHandler(server.Deps{
		Sessions:  sessionservice.NewSessionService(accounts, tokens),
		Accounts:  accounts,
		Tokens:    tokens,
		Evaluator: evaluator,
		Cookies: middleware.Cookies{
			Secure:     cfg.CookieSecure,
			AccessTTL:  cfg.AccessTTL(),
			RefreshTTL: cfg.RefreshTTL(),
		},
		Audit:   audit.NewLogger(providers.LoggerProvider, middleware.ClientIP),
		Health:  checker,
		Metrics: server.NewMetrics(reg),
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 2)
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var grpcSrv *grpc.Server
	if cfg.GRPCHealthAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
		if err != nil {
			log.Fatalf("listen: %v", err)
		}
		grpcSrv = grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
		healthhandler.RegisterGRPC(grpcSrv, checker)
		go func() {
			log.Printf("gRPC health listening on %s", cfg.GRPCHealthAddr)
			if err := grpcSrv.Serve(lis); err != nil {
				serveErr <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		log.Printf("serve: %v", err)
	}

	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("server stopped")
}
