package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rpsarena/rps-backend/controllers"
)

func SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// ----------------------
	// User routes
	// ----------------------
	api.POST("/users", controllers.RegisterUser) // Register user
	api.GET("/users/:id", controllers.GetUser)   // Get user profile

	// ----------------------
	// Leaderboard
	// ----------------------
	api.GET("/leaderboard", controllers.Leaderboard) // Top users by rating
}
