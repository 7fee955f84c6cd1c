package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/middleware"
	"github.com/yigit/skillswap/internal/pkg/auth"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "skillswap-test",
	})
	router := gin.New()
	SetupRouter(router, Controllers{}, middleware.NewAuthMiddleware(jwtService), Limiters{
		Auth:  middleware.NewLimiterStore(10, 5, 0),
		Write: middleware.NewLimiterStore(10, 5, 0),
	})
	return router
}

func serve(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := serve(newRouter(), http.MethodGet, "/api/v1/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || !resp.Success || resp.Data["status"] != "ok" {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	w := serve(newRouter(), http.MethodGet, "/api/v1/nowhere")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Error.Code != dto.ErrorCodeRouteNotFound {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newRouter()
	for _, target := range []string{"/api/v1/profile", "/api/v1/exchanges", "/api/v1/ws/posts", "/api/v1/notifications"} {
		if w := serve(router, http.MethodGet, target); w.Code != http.StatusUnauthorized {
			t.Errorf("%s status = %d", target, w.Code)
		}
	}
}
