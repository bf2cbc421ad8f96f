package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"wastewise/api/internal/models"
)

func roleTestRouter(attach *models.User, required ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin-only",
		func(c *gin.Context) {
			if attach != nil {
				c.Set(currentUserKey, *attach)
			}
			c.Next()
		},
		RequireRoles(required...),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		},
	)
	return router
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRequireRoles_Allowed(t *testing.T) {
	user := models.User{ID: 1, Role: models.RoleAdmin}
	w := doGet(roleTestRouter(&user, models.RoleAdmin), "/admin-only")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestRequireRoles_Denied(t *testing.T) {
	user := models.User{ID: 1, Role: models.RoleResident}
	w := doGet(roleTestRouter(&user, models.RoleAdmin), "/admin-only")
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestRequireRoles_NoIdentity(t *testing.T) {
	w := doGet(roleTestRouter(nil, models.RoleAdmin), "/admin-only")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

// A record written with legacy mixed casing must not lock its owner out.
func TestRequireRoles_CaseInsensitive(t *testing.T) {
	user := models.User{ID: 1, Role: models.Role("Admin")}
	w := doGet(roleTestRouter(&user, models.RoleAdmin), "/admin-only")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for mixed-case stored role", w.Code)
	}
}

func TestRequireRoles_MultipleAllowed(t *testing.T) {
	user := models.User{ID: 1, Role: models.RoleCollector}
	w := doGet(roleTestRouter(&user, models.RoleAdmin, models.RoleCollector), "/admin-only")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
