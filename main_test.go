package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"cyclestore/internal/auth"
	"cyclestore/internal/config"
	"cyclestore/internal/handlers"
)

const testSecret = "router-test-secret"

type allowAll struct{ calls int }

func (a *allowAll) ResolvePrincipal(context.Context, auth.Principal) error {
	a.calls++
	return nil
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := handlers.RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testRouter(resolver *allowAll) *gin.Engine {
	cfg := config.Config{JWTSecret: testSecret, CORSOrigins: []string{"*"}}
	return newRouter(nil, cfg, resolver)
}

func bearer(t *testing.T, kind auth.Kind) string {
	t.Helper()
	token, err := auth.Issue(auth.Principal{Kind: kind, ID: primitive.NewObjectID()}, testSecret, 0, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return "Bearer " + token
}

func do(r http.Handler, method, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := testRouter(&allowAll{})
	for _, path := range []string{"/cart", "/wishlist", "/orders", "/users/me", "/admin/orders"} {
		if w := do(r, http.MethodGet, path, ""); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, w.Code)
		}
	}
}

func TestUserTokenRejectedOnAdminRoutes(t *testing.T) {
	resolver := &allowAll{}
	r := testRouter(resolver)

	w := do(r, http.MethodGet, "/admin/contacts", bearer(t, auth.KindUser))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if resolver.calls != 0 {
		t.Fatalf("principal kind must be checked before lookup, resolver called %d times", resolver.calls)
	}
}

func TestAdminTokenRejectedOnUserRoutes(t *testing.T) {
	r := testRouter(&allowAll{})
	if w := do(r, http.MethodGet, "/cart", bearer(t, auth.KindAdmin)); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestPublicRoutes(t *testing.T) {
	r := testRouter(&allowAll{})

	if w := do(r, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/readyz", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz without db: expected 503, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/products/search?year=abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("search: expected 400, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := testRouter(&allowAll{})

	req := httptest.NewRequest(http.MethodOptions, "/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}
