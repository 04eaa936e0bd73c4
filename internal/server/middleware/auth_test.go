package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"account-service/internal/security"
)

type countingRecorder struct {
	reasons []string
}

func (c *countingRecorder) AuthFailure(reason string) { c.reasons = append(c.reasons, reason) }

func echoIdentity(t *testing.T, got *Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetIdentity(r.Context())
		if !ok {
			t.Error("identity missing from context")
		}
		*got = id
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAccess_BearerHeader(t *testing.T) {
	tokens := security.NewTestTokenProvider()
	pair, err := tokens.Issue("acc-1", "alice", []string{"read_permissions"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	var got Identity
	h := RequireAccess(tokens, nil)(echoIdentity(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got.AccountID != "acc-1" || got.Username != "alice" || len(got.Permissions) != 1 {
		t.Errorf("identity = %+v", got)
	}
}

func TestRequireAccess_Cookie(t *testing.T) {
	tokens := security.NewTestTokenProvider()
	pair, err := tokens.Issue("acc-1", "alice", nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	var got Identity
	h := RequireAccess(tokens, nil)(echoIdentity(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: pair.AccessToken})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got.AccountID != "acc-1" {
		t.Errorf("AccountID = %q", got.AccountID)
	}
}

func TestRequireAccess_Rejects(t *testing.T) {
	tokens := security.NewTestTokenProvider()
	pair, err := tokens.Issue("acc-1", "alice", nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not run")
	})

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantReason string
	}{
		{"no token", func(r *http.Request) {}, "missing_token"},
		{"garbage bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, "malformed"},
		{"refresh token as access", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+pair.RefreshToken) }, "bad_signature"},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+pair.AccessToken) }, "missing_token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := &countingRecorder{}
			req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			RequireAccess(tokens, failures)(next).ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if len(failures.reasons) != 1 || failures.reasons[0] != tt.wantReason {
				t.Errorf("reasons = %v, want [%s]", failures.reasons, tt.wantReason)
			}
		})
	}
}

func TestRequireAccess_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	tokens := security.NewTestTokenProvider(security.WithClock(clock))
	pair, err := tokens.Issue("acc-1", "alice", nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	now = now.Add(time.Hour)

	failures := &countingRecorder{}
	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	RequireAccess(tokens, failures)(http.NotFoundHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if len(failures.reasons) != 1 || failures.reasons[0] != "expired" {
		t.Errorf("reasons = %v", failures.reasons)
	}
}

type stubEvaluator struct {
	allow bool
	err   error
}

func (s stubEvaluator) Allow(ctx context.Context, granted, required []string) (bool, error) {
	return s.allow, s.err
}

func TestRequirePermissions(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	tests := []struct {
		name     string
		eval     stubEvaluator
		identity bool
		want     int
	}{
		{"allowed", stubEvaluator{allow: true}, true, http.StatusOK},
		{"denied", stubEvaluator{allow: false}, true, http.StatusForbidden},
		{"evaluator error", stubEvaluator{err: errors.New("boom")}, true, http.StatusInternalServerError},
		{"no identity", stubEvaluator{allow: true}, false, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.identity {
				req = req.WithContext(WithIdentity(req.Context(), Identity{AccountID: "acc-1"}))
			}
			rec := httptest.NewRecorder()
			RequirePermissions(tt.eval, nil, "read_permissions")(ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
