package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	localrepo "github.com/allahbobax/boolean-api/internal/repository/local"
	"github.com/allahbobax/boolean-api/internal/usecase"
)

func newCsrfRouter(t *testing.T) (*gin.Engine, *usecase.CsrfService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	csrf := usecase.NewCsrfService(localrepo.NewCounterStore(), time.Hour, zaptest.NewLogger(t))

	router := gin.New()
	router.Use(CsrfGuard(csrf))
	router.GET("/resource", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/resource", func(c *gin.Context) { c.Status(http.StatusOK) })

	return router, csrf
}

func TestCsrfGuardAllowsSafeMethods(t *testing.T) {
	router, _ := newCsrfRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/resource", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for GET without token, got %d", rr.Code)
	}
}

func TestCsrfGuardExemptsAPIKeyClients(t *testing.T) {
	router, _ := newCsrfRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.Header.Set("X-API-Key", "machine-secret")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for API-key client, got %d", rr.Code)
	}
}

func TestCsrfGuardRejectsMissingSession(t *testing.T) {
	router, _ := newCsrfRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/resource", nil))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without session cookie, got %d", rr.Code)
	}
}

func TestCsrfGuardRejectsMissingToken(t *testing.T) {
	router, _ := newCsrfRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.AddCookie(&http.Cookie{Name: CsrfSessionCookie, Value: "session-1"})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without token header, got %d", rr.Code)
	}
}

func TestCsrfGuardRejectsInvalidToken(t *testing.T) {
	router, csrf := newCsrfRouter(t)

	if _, err := csrf.Issue(context.Background(), "session-1"); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.AddCookie(&http.Cookie{Name: CsrfSessionCookie, Value: "session-1"})
	req.Header.Set(CsrfTokenHeader, "forged-token")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for forged token, got %d", rr.Code)
	}
}

func TestCsrfGuardAcceptsValidToken(t *testing.T) {
	router, csrf := newCsrfRouter(t)

	token, err := csrf.Issue(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.AddCookie(&http.Cookie{Name: CsrfSessionCookie, Value: "session-1"})
	req.Header.Set(CsrfTokenHeader, token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid token, got %d", rr.Code)
	}

	// Tokens are multi-use within their lifetime.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on reuse, got %d", rr.Code)
	}
}
