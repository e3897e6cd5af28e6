package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())

	var seen string
	router.GET("/ping", func(c *gin.Context) {
		seen = GetRequestID(c)
		assert.NotNil(t, GetLoggerFromContext(c))
		c.Status(http.StatusNoContent)
	})

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))

		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("keeps a valid incoming id", func(t *testing.T) {
		incoming := uuid.NewString()
		req := httptest.NewRequest("GET", "/ping", nil)
		req.Header.Set(RequestIDHeader, incoming)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, incoming, seen)
	})

	t.Run("replaces a malformed incoming id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ping", nil)
		req.Header.Set(RequestIDHeader, "not-a-uuid")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.NotEqual(t, "not-a-uuid", seen)
	})
}

func TestGetLoggerFromContext_Fallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetLoggerFromContext(c))
}
