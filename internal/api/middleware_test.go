package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c)+"|"+RequestID(c))
	})
	return r
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newTestEngine(requestIDMiddleware())

	t.Run("generates when missing", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rr.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, "|"+id, rr.Body.String())
	})

	t.Run("keeps valid id", func(t *testing.T) {
		expected := uuid.New().String()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, expected)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, expected, rr.Header().Get(RequestIDHeader))
	})

	t.Run("replaces invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "not-a-uuid")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		id := rr.Header().Get(RequestIDHeader)
		assert.NotEqual(t, "not-a-uuid", id)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})
}

func TestIdentifyMiddleware(t *testing.T) {
	r := newTestEngine(identifyMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserHeader, "u1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, "u1|", rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "|", rr.Body.String())
}
