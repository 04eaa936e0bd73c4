package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"account-service/internal/platform/httpjson"
)

const checkTimeout = 2 * time.Second

// Pinger is used for readiness (the account repository).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PolicyChecker is used for readiness (the OPA evaluator).
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Checker reports readiness from the store and the policy engine. Nil
// dependencies are skipped.
type Checker struct {
	pinger Pinger
	policy PolicyChecker
}

// NewChecker returns a Checker.
func NewChecker(pinger Pinger, policy PolicyChecker) *Checker {
	return &Checker{pinger: pinger, policy: policy}
}

// Check returns nil when every dependency is ready.
func (c *Checker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if c.pinger != nil {
		if err := c.pinger.Ping(ctx); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}
	if c.policy != nil {
		if err := c.policy.HealthCheck(ctx); err != nil {
			return fmt.Errorf("policy: %w", err)
		}
	}
	return nil
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ServeHTTP answers 200 {"status":"ok"} or 503 with the failing dependency.
func (c *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := c.Check(r.Context()); err != nil {
		httpjson.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Server implements grpc.health.v1.Health on top of a Checker.
type Server struct {
	grpc_health_v1.UnimplementedHealthServer
	checker *Checker
}

// NewServer returns a gRPC health server.
func NewServer(checker *Checker) *Server {
	return &Server{checker: checker}
}

// Check reports SERVING when the Checker passes. The service name is ignored;
// the process exposes a single service.
func (s *Server) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := s.checker.Check(ctx); err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	return &grpc_health_v1.HealthCheckResponse{Status: status}, nil
}

// RegisterGRPC registers the health service on s.
func RegisterGRPC(s grpc.ServiceRegistrar, checker *Checker) {
	grpc_health_v1.RegisterHealthServer(s, NewServer(checker))
}
