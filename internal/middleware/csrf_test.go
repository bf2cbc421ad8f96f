package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"wastewise/api/internal/audit"
	"wastewise/api/internal/config"
	"wastewise/api/internal/security"
)

func csrfTestRouter(cfg *config.AppConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CSRF(cfg, audit.Nop{}))
	router.GET("/read", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/write", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func csrfTestConfig() *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.Security.CSRFKey = "server-key"
	return cfg
}

func TestCSRF_SafeMethodPasses(t *testing.T) {
	router := csrfTestRouter(csrfTestConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/read", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for GET without token", w.Code)
	}
}

func TestCSRF_MutatingWithoutSession(t *testing.T) {
	router := csrfTestRouter(csrfTestConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/write", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 without session cookie", w.Code)
	}
	if !strings.Contains(w.Body.String(), "csrf_session_missing") {
		t.Fatalf("body = %s, want csrf_session_missing code", w.Body.String())
	}
}

func TestCSRF_ValidToken(t *testing.T) {
	cfg := csrfTestConfig()
	router := csrfTestRouter(cfg)

	secret, err := security.NewCSRFSecret()
	if err != nil {
		t.Fatalf("NewCSRFSecret error: %v", err)
	}
	token, err := security.IssueCSRFToken(cfg.Security.CSRFKey, secret)
	if err != nil {
		t.Fatalf("IssueCSRFToken error: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/write", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: secret})
	req.Header.Set("CSRF-Token", token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with valid token", w.Code)
	}
}

func TestCSRF_HeaderVariants(t *testing.T) {
	cfg := csrfTestConfig()
	router := csrfTestRouter(cfg)

	secret, _ := security.NewCSRFSecret()
	token, err := security.IssueCSRFToken(cfg.Security.CSRFKey, secret)
	if err != nil {
		t.Fatalf("IssueCSRFToken error: %v", err)
	}

	for _, header := range []string{"X-CSRF-Token", "X-XSRF-Token"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/write", nil)
		req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: secret})
		req.Header.Set(header, token)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d via %s, want 200", w.Code, header)
		}
	}
}

func TestCSRF_MismatchedToken(t *testing.T) {
	cfg := csrfTestConfig()
	router := csrfTestRouter(cfg)

	secretA, _ := security.NewCSRFSecret()
	secretB, _ := security.NewCSRFSecret()
	tokenForB, err := security.IssueCSRFToken(cfg.Security.CSRFKey, secretB)
	if err != nil {
		t.Fatalf("IssueCSRFToken error: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/write", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: secretA})
	req.Header.Set("CSRF-Token", tokenForB)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for cross-session token", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid_csrf_token") {
		t.Fatalf("body = %s, want invalid_csrf_token code", w.Body.String())
	}
}

func TestCSRF_MissingHeader(t *testing.T) {
	cfg := csrfTestConfig()
	router := csrfTestRouter(cfg)

	secret, _ := security.NewCSRFSecret()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/write", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: secret})
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 without token header", w.Code)
	}
}
