package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"inventory-ledger-service/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func actorRouter(manager *auth.JWTManager) (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ActorMiddleware(manager, zap.NewNop()))

	var actor string
	router.GET("/whoami", func(c *gin.Context) {
		actor = Actor(c)
		c.Status(http.StatusOK)
	})
	return router, &actor
}

func TestActorMiddleware_ValidToken(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", zap.NewNop())
	router, actor := actorRouter(manager)

	token, err := manager.GenerateToken("svc-fulfillment")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "svc-fulfillment", *actor)
}

func TestActorMiddleware_AnonymousRequestsPass(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", zap.NewNop())
	router, actor := actorRouter(manager)

	for _, header := range []string{"", "Basic abc", "Bearer garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, *actor)
	}
}
