package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"cyclestore/internal/auth"
	"cyclestore/internal/models"
)

const testSecret = "secret"

type stubResolver struct {
	err  error
	seen []auth.Principal
}

func (s *stubResolver) ResolvePrincipal(_ context.Context, p auth.Principal) error {
	s.seen = append(s.seen, p)
	return s.err
}

func newGuardedRouter(guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", guard, func(c *gin.Context) {
		p := c.MustGet(PrincipalKey).(auth.Principal)
		body := gin.H{"kind": p.Kind}
		if id, ok := c.Get(UserIDKey); ok {
			body["userId"] = id.(primitive.ObjectID).Hex()
		}
		if id, ok := c.Get(AdminIDKey); ok {
			body["adminId"] = id.(primitive.ObjectID).Hex()
		}
		c.JSON(http.StatusOK, body)
	})
	return r
}

func tokenFor(t *testing.T, kind auth.Kind) (string, primitive.ObjectID) {
	t.Helper()
	id := primitive.NewObjectID()
	raw, err := auth.Issue(auth.Principal{Kind: kind, ID: id}, testSecret, 0, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return raw, id
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUserAuthMissingAndInvalidToken(t *testing.T) {
	r := newGuardedRouter(UserAuth(testSecret, &stubResolver{}))

	if rec := serve(r, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing token, got %d", rec.Code)
	}
	if rec := serve(r, "Bearer not-a-jwt"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
	}
	if rec := serve(r, "Basic abc"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong scheme, got %d", rec.Code)
	}
}

func TestUserAuthAcceptsUserToken(t *testing.T) {
	resolver := &stubResolver{}
	r := newGuardedRouter(UserAuth(testSecret, resolver))
	raw, id := tokenFor(t, auth.KindUser)

	rec := serve(r, "Bearer "+raw)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(resolver.seen) != 1 || resolver.seen[0].ID != id {
		t.Fatalf("expected resolver called with principal, got %v", resolver.seen)
	}
}

func TestUserAuthRejectsAdminToken(t *testing.T) {
	resolver := &stubResolver{}
	r := newGuardedRouter(UserAuth(testSecret, resolver))
	raw, _ := tokenFor(t, auth.KindAdmin)

	if rec := serve(r, "Bearer "+raw); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if len(resolver.seen) != 0 {
		t.Fatal("resolver must not run for a rejected principal kind")
	}
}

func TestAdminAuthRejectsUserToken(t *testing.T) {
	r := newGuardedRouter(AdminAuth(testSecret, &stubResolver{}))
	raw, _ := tokenFor(t, auth.KindUser)

	if rec := serve(r, "Bearer "+raw); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestMissingPrincipalIsDistinctFromBadToken(t *testing.T) {
	userRouter := newGuardedRouter(UserAuth(testSecret, &stubResolver{err: models.ErrUserNotFound}))
	raw, _ := tokenFor(t, auth.KindUser)
	if rec := serve(userRouter, "Bearer "+raw); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing user, got %d", rec.Code)
	}

	adminRouter := newGuardedRouter(AdminAuth(testSecret, &stubResolver{err: models.ErrAdminNotFound}))
	adminRaw, _ := tokenFor(t, auth.KindAdmin)
	if rec := serve(adminRouter, "Bearer "+adminRaw); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for missing admin, got %d", rec.Code)
	}

	failing := newGuardedRouter(UserAuth(testSecret, &stubResolver{err: errors.New("socket closed")}))
	if rec := serve(failing, "Bearer "+raw); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for store failure, got %d", rec.Code)
	}
}
