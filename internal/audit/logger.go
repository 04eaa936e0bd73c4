package audit

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/noop"
)

// Audit actions.
const (
	ActionRegistration        = "registration"
	ActionLoginSuccess        = "login_success"
	ActionLoginFailure        = "login_failure"
	ActionTokenRefresh        = "token_refresh"
	ActionTokenRefreshFailure = "token_refresh_failure"
	ActionLogout              = "logout"
	ActionProfileUpdate       = "profile_update"
	ActionPermissionGrant     = "permission_grant"
	ActionPermissionRevoke    = "permission_revoke"
)

// loggerName is the instrumentation scope of audit records.
const loggerName = "account-service/audit"

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger records one security-relevant event. LogEvent is best-effort and
// never affects the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, accountID, action, metadata string)
}

// Logger implements AuditLogger by emitting OpenTelemetry log records.
type Logger struct {
	logger      otellog.Logger
	ipExtractor IPExtractor
	now         func() time.Time
}

// NewLogger returns a Logger that emits through provider. A nil provider
// yields a no-op logger. ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(provider otellog.LoggerProvider, ipExtractor IPExtractor) *Logger {
	if provider == nil {
		provider = noop.NewLoggerProvider()
	}
	return &Logger{
		logger:      provider.Logger(loggerName),
		ipExtractor: ipExtractor,
		now:         time.Now,
	}
}

// LogEvent emits one audit record with account_id, action and client_ip
// attributes. metadata, when set, becomes the record body.
func (l *Logger) LogEvent(ctx context.Context, accountID, action, metadata string) {
	ip := "unknown"
	if l.ipExtractor != nil {
		if v := l.ipExtractor(ctx); v != "" {
			ip = v
		}
	}
	if accountID == "" {
		accountID = "anonymous"
	}
	var rec otellog.Record
	rec.SetTimestamp(l.now().UTC())
	rec.SetSeverity(severityFor(action))
	rec.SetEventName("audit." + action)
	rec.AddAttributes(
		otellog.String("account_id", accountID),
		otellog.String("action", action),
		otellog.String("client_ip", ip),
	)
	if metadata != "" {
		rec.SetBody(otellog.StringValue(metadata))
	}
	l.logger.Emit(ctx, rec)
}

func severityFor(action string) otellog.Severity {
	switch action {
	case ActionLoginFailure, ActionTokenRefreshFailure:
		return otellog.SeverityWarn
	default:
		return otellog.SeverityInfo
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) LogEvent(context.Context, string, string, string) {}
