package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIsAllowedOrigin(t *testing.T) {
	allowed := []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost",
		"http://127.0.0.1:3000",
		"http://127.0.0.1",
		"https://localhost:5173",
	}

	for _, origin := range allowed {
		if !isAllowedOrigin(origin) {
			t.Errorf("isAllowedOrigin(%q) = false, want true", origin)
		}
	}

	denied := []string{
		"https://evil.com",
		"http://localhost.evil.com",
		"http://192.168.1.1:3000",
		"",
		"ftp://localhost:3000",
		"http://localhost:not-a-port",
		"http://localhost:3000/path",
		"http://user@localhost:3000",
	}

	for _, origin := range denied {
		if isAllowedOrigin(origin) {
			t.Errorf("isAllowedOrigin(%q) = true, want false", origin)
		}
	}
}

func TestIsLoopbackRemoteAddr(t *testing.T) {
	loopback := []string{
		"127.0.0.1:12345",
		"[::1]:12345",
	}

	for _, addr := range loopback {
		if !isLoopbackRemoteAddr(addr) {
			t.Errorf("isLoopbackRemoteAddr(%q) = false, want true", addr)
		}
	}

	nonLoopback := []string{
		"8.8.8.8:12345",
		"192.168.1.1:8080",
		"10.0.0.1:3000",
		"not-an-ip:1234",
	}

	for _, addr := range nonLoopback {
		if isLoopbackRemoteAddr(addr) {
			t.Errorf("isLoopbackRemoteAddr(%q) = true, want false", addr)
		}
	}
}

func TestCORSAllowlist(t *testing.T) {
	const studio = "https://studio.example.com"

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantACAO    string
		wantHandler bool
	}{
		{"local editor fetches scenario", http.MethodGet, "http://localhost:5173", http.StatusOK, "http://localhost:5173", true},
		{"configured studio origin", http.MethodPost, studio, http.StatusOK, studio, true},
		{"foreign origin still served without ACAO", http.MethodGet, "https://evil.com", http.StatusOK, "", true},
		{"no origin header", http.MethodGet, "", http.StatusOK, "", true},
		{"preflight for video generation", http.MethodOptions, "http://127.0.0.1:3000", http.StatusNoContent, "http://127.0.0.1:3000", false},
		{"preflight from configured origin", http.MethodOptions, studio, http.StatusNoContent, studio, false},
		{"preflight from foreign origin", http.MethodOptions, "https://studio.example.com.evil.com", http.StatusForbidden, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := CORSAllowlist(studio)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/api/videos", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if called != tt.wantHandler {
				t.Errorf("handler called = %v, want %v", called, tt.wantHandler)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantACAO {
				t.Errorf("ACAO = %q, want %q", got, tt.wantACAO)
			}
			if tt.wantACAO != "" && rr.Header().Get("Vary") != "Origin" {
				t.Errorf("Vary = %q, want Origin", rr.Header().Get("Vary"))
			}
			if tt.wantStatus == http.StatusNoContent {
				if got := rr.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Range") {
					t.Errorf("Allow-Headers = %q, want Range for clip seeking", got)
				}
			}
		})
	}
}

func TestLocalOnly(t *testing.T) {
	handler := LocalOnly(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		remote string
		want   int
	}{
		{"127.0.0.1:40000", http.StatusNoContent},
		{"[::1]:40000", http.StatusNoContent},
		{"192.168.1.20:40000", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/scenarios", nil)
		req.RemoteAddr = tt.remote
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != tt.want {
			t.Errorf("LocalOnly(%s) status = %d, want %d", tt.remote, rr.Code, tt.want)
		}
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	resp := decodeInto[ErrorResponse](t, rr)
	if resp.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q", resp.Code)
	}
}

type staticConfig map[string]string

func (c staticConfig) GetConfig(ctx context.Context, key string) (string, error) {
	return c[key], nil
}

func TestAuthMiddleware(t *testing.T) {
	store := staticConfig{AuthTokenKey: "sb-token-0123456789abcdef"}
	handler := AuthMiddleware(store, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer sb-token-0123456789abcdef", http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic sb-token-0123456789abcdef", http.StatusUnauthorized},
		{"wrong token", "Bearer sb-token-fedcba9876543210", http.StatusUnauthorized},
		{"token prefix", "Bearer sb-token-0123", http.StatusUnauthorized},
		{"token with suffix", "Bearer sb-token-0123456789abcdef0", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/scenarios", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestAuthMiddleware_NoStoredToken(t *testing.T) {
	handler := AuthMiddleware(staticConfig{}, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/scenarios", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}
