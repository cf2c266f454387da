package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"velox-backend/internal/shared/auth"
)

func newAuthRouter(t *testing.T, cfg AuthConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(cfg))
	router.GET("/api/ai/usage", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c)})
	})
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.OPTIONS("/api/ai/generate-bio", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	router := newAuthRouter(t, AuthConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/ai/generate-bio", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingIdentity(t *testing.T) {
	router := newAuthRouter(t, AuthConfig{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/ai/usage", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthPublicPrefix(t *testing.T) {
	router := newAuthRouter(t, AuthConfig{PublicPrefixes: []string{"/api/health"}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAuthBearerToken(t *testing.T) {
	verifier, err := auth.NewVerifier("secret", false)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	token, err := verifier.Sign("user-42", "", "", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	router := newAuthRouter(t, AuthConfig{Verifier: verifier})

	req := httptest.NewRequest(http.MethodGet, "/api/ai/usage", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	bad := httptest.NewRequest(http.MethodGet, "/api/ai/usage", nil)
	bad.Header.Set("Authorization", "Bearer "+token+"x")
	badResp := httptest.NewRecorder()
	router.ServeHTTP(badResp, bad)
	if badResp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for tampered token, got %d", badResp.Code)
	}
}

func TestAuthHeaderIdentityOnlyWhenAllowed(t *testing.T) {
	denied := newAuthRouter(t, AuthConfig{})
	req := httptest.NewRequest(http.MethodGet, "/api/ai/usage", nil)
	req.Header.Set("X-User-Id", "dev-user")
	resp := httptest.NewRecorder()
	denied.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}

	allowed := newAuthRouter(t, AuthConfig{AllowHeaderIdentity: true})
	req = httptest.NewRequest(http.MethodGet, "/api/ai/usage", nil)
	req.Header.Set("X-User-Id", "dev-user")
	resp = httptest.NewRecorder()
	allowed.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
