package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/taskboard-api/internal/logging"
)

// stubLimiter scripts the rate limiter outcome.
type stubLimiter struct {
	exceeded bool
	err      error
}

func (s *stubLimiter) CheckIPRateLimit(ctx context.Context, ip, purpose string) (bool, error) {
	return s.exceeded, s.err
}

func (s *stubLimiter) RecordIPRequest(ctx context.Context, ip, purpose string) error {
	return nil
}

func newAuthRouter(t *testing.T, limiter RateLimiter) (http.Handler, *stubUserStore) {
	t.Helper()
	store := newStubUserStore()
	svc := NewService(store, newTestPasetoService(t), time.Hour)
	handler := NewHandler(svc, limiter, logging.NewLogger(true))

	r := chi.NewRouter()
	r.Post("/auth/register", handler.Register)
	r.Post("/auth/login", handler.Login)
	return r, store
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	router, _ := newAuthRouter(t, &stubLimiter{})

	rec := postJSON(router, "/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"password1"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body)
	}

	var resp struct {
		User  map[string]any `json:"user"`
		Token string         `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response body: %v", err)
	}
	if resp.Token == "" {
		t.Error("response has no token")
	}
	if resp.User["email"] != "alice@example.com" || resp.User["name"] != "Alice" {
		t.Errorf("user = %v", resp.User)
	}
	for key := range resp.User {
		if strings.Contains(strings.ToLower(key), "password") {
			t.Errorf("response exposes %q", key)
		}
	}
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	router, _ := newAuthRouter(t, &stubLimiter{})

	first := postJSON(router, "/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"password1"}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", first.Code)
	}

	second := postJSON(router, "/auth/register",
		`{"name":"Mallory","email":"alice@example.com","password":"password2"}`)
	if second.Code != http.StatusBadRequest {
		t.Fatalf("second register status = %d, want 400", second.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(second.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body: %v", err)
	}
	if body["error"] != "User already exists" {
		t.Errorf("error = %q, want %q", body["error"], "User already exists")
	}
	if body["code"] != "EMAIL_ALREADY_EXISTS" {
		t.Errorf("code = %q, want EMAIL_ALREADY_EXISTS", body["code"])
	}
}

func TestRegisterEndpointValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"a@example.com","password":"password1"}`},
		{"missing email", `{"name":"Alice","password":"password1"}`},
		{"bad email", `{"name":"Alice","email":"nope","password":"password1"}`},
		{"short password", `{"name":"Alice","email":"a@example.com","password":"short"}`},
		{"not json", `name=Alice`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newAuthRouter(t, &stubLimiter{})
			rec := postJSON(router, "/auth/register", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestLoginEndpoint(t *testing.T) {
	router, _ := newAuthRouter(t, &stubLimiter{})

	if rec := postJSON(router, "/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"password1"}`); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	rec := postJSON(router, "/auth/login",
		`{"email":"alice@example.com","password":"password1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body)
	}

	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response body: %v", err)
	}
	if resp.Token == "" || resp.User.Email != "alice@example.com" {
		t.Errorf("response = %+v", resp)
	}
}

func TestLoginEndpointInvalidCredentials(t *testing.T) {
	router, _ := newAuthRouter(t, &stubLimiter{})

	if rec := postJSON(router, "/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"password1"}`); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	// Unknown account and wrong password yield byte-identical responses
	unknown := postJSON(router, "/auth/login",
		`{"email":"nobody@example.com","password":"password1"}`)
	wrongPass := postJSON(router, "/auth/login",
		`{"email":"alice@example.com","password":"wrong-password"}`)

	for _, rec := range []*httptest.ResponseRecorder{unknown, wrongPass} {
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	}
	if unknown.Body.String() != wrongPass.Body.String() {
		t.Errorf("failure responses differ:\n%s\n%s", unknown.Body, wrongPass.Body)
	}

	var body map[string]string
	if err := json.Unmarshal(unknown.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body: %v", err)
	}
	if body["error"] != "Invalid credentials" {
		t.Errorf("error = %q, want %q", body["error"], "Invalid credentials")
	}
}

func TestAuthEndpointsRateLimited(t *testing.T) {
	router, _ := newAuthRouter(t, &stubLimiter{exceeded: true})

	for _, path := range []string{"/auth/register", "/auth/login"} {
		rec := postJSON(router, path, `{"email":"a@example.com","password":"password1"}`)
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("POST %s status = %d, want 429", path, rec.Code)
		}
	}
}

func TestRateLimiterFailureDoesNotBlock(t *testing.T) {
	// A broken limiter must not lock users out
	router, _ := newAuthRouter(t, &stubLimiter{err: context.DeadlineExceeded})

	rec := postJSON(router, "/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"password1"}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"remote addr only", "10.0.0.1:52000", "", "", "10.0.0.1"},
		{"forwarded for", "10.0.0.1:52000", "203.0.113.7, 10.0.0.2", "", "203.0.113.7"},
		{"real ip", "10.0.0.1:52000", "", "203.0.113.9", "203.0.113.9"},
		{"forwarded wins over real ip", "10.0.0.1:52000", "203.0.113.7", "203.0.113.9", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
