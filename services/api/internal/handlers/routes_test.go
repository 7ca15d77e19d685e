package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/example/video-platform/internal/platform/auth"
	"github.com/example/video-platform/internal/platform/httpserver"
	"github.com/example/video-platform/services/api/internal/store"
)

var routeSecret = []byte("test-secret-key-32-bytes-long!!!")

func token(t *testing.T, subject, role string) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(routeSecret)
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func newRouter(f fixture) http.Handler {
	r := chi.NewRouter()
	httpserver.SetupRouter(r)
	Register(r, f.d, auth.JWTVerifier{Secret: routeSecret})
	return r
}

func call(h http.Handler, method, target, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRoutes_Authentication(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)

	tests := []struct {
		name   string
		method string
		target string
		bearer string
		want   int
	}{
		{"public anonymous", http.MethodGet, "/v1/videos", "", http.StatusOK},
		{"public invalid token", http.MethodGet, "/v1/videos", "garbage", http.StatusUnauthorized},
		{"public unknown subject", http.MethodGet, "/v1/videos", token(t, "auth-nobody", ""), http.StatusOK},
		{"protected anonymous", http.MethodGet, "/v1/me/history", "", http.StatusUnauthorized},
		{"protected unknown subject", http.MethodGet, "/v1/me/history", token(t, "auth-nobody", ""), http.StatusUnauthorized},
		{"protected known subject", http.MethodGet, "/v1/me/history", token(t, "auth-bob", ""), http.StatusOK},
		{"admin without role", http.MethodPost, "/v1/admin/categories", token(t, "auth-bob", "user"), http.StatusForbidden},
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := call(h, tt.method, tt.target, tt.bearer)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestRoutes_ViewerResolvedFromToken(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)
	v := f.video(t, store.Video{Title: "draft", Visibility: store.VisibilityPrivate})

	if rr := call(h, http.MethodGet, "/v1/videos/"+v.ID, token(t, "auth-bob", "")); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another user, got %d", rr.Code)
	}
	if rr := call(h, http.MethodGet, "/v1/videos/"+v.ID, token(t, "auth-alice", "")); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for the owner, got %d", rr.Code)
	}
	if rr := call(h, http.MethodGet, "/v1/studio/videos/"+v.ID, token(t, "auth-alice", "")); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from studio, got %d", rr.Code)
	}
}

func TestRoutes_MediaWebhookOnlyWithDispatcher(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)
	if rr := call(h, http.MethodPost, "/v1/webhooks/video-platform", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a dispatcher, got %d", rr.Code)
	}
}
