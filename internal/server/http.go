package server

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	accounthandler "account-service/internal/account/handler"
	"account-service/internal/audit"
	"account-service/internal/platform/httpjson"
	"account-service/internal/policy/engine"
	"account-service/internal/security"
	"account-service/internal/server/middleware"
	sessionhandler "account-service/internal/session/handler"
)

// operationName is the otelhttp operation recorded on every server span.
const operationName = "account-service"

// Deps holds the dependencies of the HTTP surface.
type Deps struct {
	Sessions  sessionhandler.Sessions
	Accounts  accounthandler.Service
	Tokens    *security.TokenProvider
	Evaluator engine.Evaluator
	Cookies   middleware.Cookies
	// Audit may be nil; then no audit records are emitted.
	Audit audit.AuditLogger
	// Health serves /healthz. If nil, /healthz always answers ok.
	Health http.Handler
	// Metrics serves /metrics and counts requests. If nil, a private registry is used.
	Metrics *Metrics
}

// NewHandler builds the full HTTP handler: auth and account routes plus the
// operational endpoints, wrapped in tracing, client IP capture and metrics.
func NewHandler(deps Deps) http.Handler {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	health := deps.Health
	if health == nil {
		health = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httpjson.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	}

	mux := http.NewServeMux()
	sessionhandler.NewHandler(deps.Sessions, deps.Tokens, deps.Cookies, deps.Audit, metrics).RegisterRoutes(mux)
	accounthandler.NewHandler(deps.Accounts, deps.Tokens, deps.Evaluator, deps.Audit, metrics).RegisterRoutes(mux)
	mux.Handle("GET /healthz", health)
	mux.Handle("GET /metrics", metrics.Handler())

	// Metrics sits next to the mux so it sees r.Pattern; the outer layers
	// replace the request with a copy carrying the new context.
	var h http.Handler = metrics.Middleware(mux)
	h = middleware.ClientIPHandler(h)
	return otelhttp.NewHandler(h, operationName)
}
