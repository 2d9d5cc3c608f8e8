package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// UserHeader carries the id of the logged-in user, set by the session gateway.
	UserHeader = "X-User-Id"
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-Id"

	userKey      = "user_id"
	requestIDKey = "request_id"
)

// UserID returns the id of the logged-in user, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(userKey)
}

// RequestID returns the id assigned to the request.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// requestIDMiddleware keeps a valid incoming request id or generates one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// identifyMiddleware records the user id from the session gateway, if any.
func identifyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader(UserHeader); userID != "" {
			c.Set(userKey, userID)
		}
		c.Next()
	}
}

// requireUser rejects requests whose user is missing or unknown to the store.
func (h *Handler) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		exists, err := h.RecipeStore.UserExists(c.Request.Context(), userID)
		if err != nil {
			h.Log.Error("failed to look up user", "user_id", userID, "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if !exists {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

// loggingMiddleware writes one structured line per request.
func loggingMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start).String(),
			"request_id", RequestID(c),
			"user_id", UserID(c),
		)
	}
}
