package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medique-api/config"
	"medique-api/internal/domain/entity"
	"medique-api/internal/service"
	"medique-api/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type authFixture struct {
	jwt        *jwt.JWTService
	tokenStore service.TokenStore
	middleware *AuthMiddleware
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	})
	store := service.NewTokenStore(client, newTestLogger())

	return &authFixture{
		jwt:        jwtService,
		tokenStore: store,
		middleware: NewAuthMiddleware(jwtService, store),
	}
}

func (f *authFixture) issue(t *testing.T, p jwt.Principal) (string, string) {
	t.Helper()
	token, id, err := f.jwt.GenerateAccessToken(p)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if err := f.tokenStore.Store(t.Context(), jwt.AccessToken, p.SubjectKey(), id, time.Minute); err != nil {
		t.Fatalf("store token: %v", err)
	}
	return token, id
}

func principalEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := GetPrincipalFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"user_id": p.UserID.String(), "role": p.Role})
	})
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	user := jwt.Principal{UserID: uuid.New(), Email: "u@example.com", Role: entity.RoleUser}
	valid, _ := f.issue(t, user)

	revoked, revokedID := f.issue(t, user)
	if err := f.tokenStore.Revoke(t.Context(), jwt.AccessToken, user.SubjectKey(), revokedID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	refresh, _, _ := f.jwt.GenerateRefreshToken(user)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + valid, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"revoked token", "Bearer " + revoked, http.StatusUnauthorized},
		{"valid token", "Bearer " + valid, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			f.middleware.Authenticate(principalEcho()).ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.status, rec.Body.String())
			}
		})
	}
}

func TestAuthenticateAdminToken(t *testing.T) {
	f := newAuthFixture(t)
	token, _ := f.issue(t, jwt.Principal{Email: "admin@medique.test", Role: entity.RoleAdmin})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	f.middleware.Authenticate(RequireAdmin(principalEcho())).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["role"] != entity.RoleAdmin || body["user_id"] != uuid.Nil.String() {
		t.Errorf("unexpected principal: %v", body)
	}
}

func TestRequireRole(t *testing.T) {
	f := newAuthFixture(t)
	userToken, _ := f.issue(t, jwt.Principal{UserID: uuid.New(), Email: "u@example.com", Role: entity.RoleUser})
	adminToken, _ := f.issue(t, jwt.Principal{Email: "admin@medique.test", Role: entity.RoleAdmin})

	cases := []struct {
		name   string
		token  string
		guard  func(http.Handler) http.Handler
		status int
	}{
		{"user on admin route", userToken, RequireAdmin, http.StatusForbidden},
		{"admin on user route", adminToken, RequireUser, http.StatusForbidden},
		{"user on user route", userToken, RequireUser, http.StatusOK},
		{"either role", adminToken, RequireRole(entity.RoleUser, entity.RoleAdmin), http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tc.token)
			rec := httptest.NewRecorder()

			f.middleware.Authenticate(tc.guard(principalEcho())).ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
		})
	}
}

func TestRequireRoleWithoutAuthentication(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireAdmin(principalEcho()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rec := httptest.NewRecorder()

	NewRecoveryMiddleware(log).Handle(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !bytes.Contains(buf.Bytes(), []byte("panic recovered")) || !bytes.Contains(buf.Bytes(), []byte("boom")) {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestLoggingMiddlewareRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	})
	m := NewLoggingMiddleware(newTestLogger())

	rec := httptest.NewRecorder()
	m.Handle(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Fatalf("generated id %q not echoed (%q)", seen, rec.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	m.Handle(next).ServeHTTP(rec, req)
	if seen != "abc-123" {
		t.Errorf("request id = %q, want client supplied id", seen)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRequestTimeoutSetsDeadline(t *testing.T) {
	var hasDeadline bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	})

	RequestTimeout(time.Second)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !hasDeadline {
		t.Fatal("expected a deadline on the request context")
	}

	RequestTimeout(0)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if hasDeadline {
		t.Fatal("zero timeout must leave the context untouched")
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	rec := httptest.NewRecorder()
	NewCORSMiddleware("").Handle(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

	if called {
		t.Error("preflight must not reach the handler")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}
