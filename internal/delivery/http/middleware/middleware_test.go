package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-console/config"
	"storefront-console/internal/domain"
	"storefront-console/pkg/logger"
	"storefront-console/pkg/utils"
)

var secret = []byte("mw-secret")

type fakeBootstrapper struct {
	torn []string
}

func (f *fakeBootstrapper) Bootstrap(token string) (*domain.Session, error) {
	claims, err := utils.DecodeJWT(token, secret, time.Now())
	if err != nil {
		return nil, err
	}
	return &domain.Session{Token: token, UserID: claims.UserID, Role: claims.Role}, nil
}

func (f *fakeBootstrapper) Teardown(userID string) { f.torn = append(f.torn, userID) }

func sessionEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := domain.SessionFromContext(r.Context())
		if s == nil {
			w.Write([]byte("anonymous"))
			return
		}
		w.Write([]byte(s.UserID + ":" + s.Role))
	})
}

func TestSessionMiddleware(t *testing.T) {
	valid, _ := utils.GenerateJWT(secret, "u1", "a@b.c", domain.RoleAdmin, time.Hour)
	expired, _ := utils.GenerateJWT(secret, "u2", "x@b.c", domain.RoleCustomer, -time.Hour)
	forgedExpired, _ := utils.GenerateJWT([]byte("not-the-secret"), "victim", "v@b.c", domain.RoleCustomer, -time.Hour)
	forgedAdmin, _ := utils.GenerateJWT([]byte("not-the-secret"), "intruder", "i@b.c", domain.RoleAdmin, time.Hour)

	tests := []struct {
		name        string
		header      string
		cookie      string
		wantBody    string
		wantCleared bool
		wantTorn    string
	}{
		{name: "no token", wantBody: "anonymous"},
		{name: "bearer header", header: "Bearer " + valid, wantBody: "u1:admin"},
		{name: "cookie", cookie: valid, wantBody: "u1:admin"},
		{name: "expired cookie", cookie: expired, wantBody: "anonymous", wantCleared: true, wantTorn: "u2"},
		{name: "garbage header", header: "Bearer nonsense", wantBody: "anonymous"},
		{name: "expired with bad signature", cookie: forgedExpired, wantBody: "anonymous", wantCleared: true},
		{name: "admin with bad signature", header: "Bearer " + forgedAdmin, wantBody: "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeBootstrapper{}
			h := SessionMiddleware(auth, "accessToken", false)(sessionEcho())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "accessToken", Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if got := rec.Body.String(); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
			cleared := strings.Contains(rec.Header().Get("Set-Cookie"), "Max-Age=0")
			if cleared != tt.wantCleared {
				t.Errorf("cookie cleared = %v, want %v", cleared, tt.wantCleared)
			}
			if tt.wantTorn == "" && len(auth.torn) != 0 {
				t.Errorf("teardown = %v, want none", auth.torn)
			}
			if tt.wantTorn != "" && (len(auth.torn) != 1 || auth.torn[0] != tt.wantTorn) {
				t.Errorf("teardown = %v, want %s", auth.torn, tt.wantTorn)
			}
		})
	}
}

func TestRequireGuard(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	customer := &domain.Session{UserID: "c", Role: domain.RoleCustomer}
	admin := &domain.Session{UserID: "a", Role: domain.RoleAdmin}
	cashier := &domain.Session{UserID: "p", Role: domain.RoleCashier}

	tests := []struct {
		name    string
		guard   domain.Guard
		posOpen bool
		session *domain.Session
		want    int
	}{
		{"admin anonymous", domain.GuardAdmin, false, nil, http.StatusUnauthorized},
		{"admin as customer", domain.GuardAdmin, false, customer, http.StatusForbidden},
		{"admin as admin", domain.GuardAdmin, false, admin, http.StatusNoContent},
		{"auth as customer", domain.GuardAuthenticated, false, customer, http.StatusNoContent},
		{"pos as customer", domain.GuardPOS, false, customer, http.StatusForbidden},
		{"pos as cashier", domain.GuardPOS, false, cashier, http.StatusNoContent},
		{"pos open access", domain.GuardPOS, true, nil, http.StatusNoContent},
		{"public", domain.GuardPublic, false, nil, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.session != nil {
				req = req.WithContext(domain.ContextWithSession(req.Context(), tt.session))
			}
			rec := httptest.NewRecorder()
			RequireGuard(tt.guard, tt.posOpen)(ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	var seen string
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if id := rec.Header().Get("X-Request-ID"); id == "" || id != seen {
		t.Fatalf("header id %q, context id %q", id, seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "upstream-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "upstream-1" {
		t.Fatalf("incoming request id not kept: %q", seen)
	}
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 1, 2, time.Minute, time.Minute)
	defer rl.Shutdown()

	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("second client = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := NewCORSMiddleware(&config.Config{AllowedOrigin: "http://console.local, http://other.local"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "http://console.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://console.local" {
		t.Fatalf("allow origin = %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("credentials not allowed")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.local")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected origin %q", got)
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := getClientIP(req); got != "203.0.113.9" {
		t.Fatalf("ip = %q", got)
	}
}

func TestRateLimiterKeysBySession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 1, 1, time.Minute, time.Minute)
	defer rl.Shutdown()
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	// Two users behind the same address do not share a bucket.
	for _, user := range []string{"u1", "u2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:1000"
		req = req.WithContext(domain.ContextWithSession(req.Context(), &domain.Session{UserID: user}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s = %d", user, rec.Code)
		}
	}
}
