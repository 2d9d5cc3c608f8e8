package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers every route on a new gin engine.
func NewRouter(h *Handler, allowOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestIDMiddleware(), loggingMiddleware(h.Log), identifyMiddleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", UserHeader, RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	recipes := r.Group("/recipes")
	recipes.GET("", h.GetRandomRecipes)
	recipes.GET("/search", h.SearchRecipes)
	recipes.GET("/:recipeId", h.GetRecipe)
	recipes.POST("", h.requireUser(), h.CreateRecipe)

	users := r.Group("/users", h.requireUser())
	users.POST("/favorites", h.AddFavorite)
	users.GET("/favorites", h.GetFavorites)
	users.GET("/recipes", h.GetUserRecipes)
	users.GET("/family", h.GetFamilyRecipes)
	users.POST("/family", h.AddFamilyRecipe)

	return r
}
