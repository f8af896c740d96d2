package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/rpsarena/rps-backend/config"
	"github.com/rpsarena/rps-backend/game"
	"github.com/rpsarena/rps-backend/routes"
	"github.com/rpsarena/rps-backend/services"
	"github.com/rpsarena/rps-backend/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// initEnv loads .env file and validates required vars
func initEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	if os.Getenv("DATABASE_URL") == "" {
		log.Fatal("[FATAL] DATABASE_URL is required in .env or environment")
	}
}

// setupRouter initializes Gin routes and middleware
func setupRouter(gateway *services.Gateway) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.AllowedOrigin()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup REST routes
	routes.SetupRoutes(r)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket endpoint
	r.GET("/ws", gateway.HandleWebSocket)

	return r
}

func main() {
	// Load env variables
	initEnv()

	// Connect to database
	db := config.SetupDatabase()

	// Wire up the matchmaking engine
	users := store.NewUsers(db)
	archive := store.NewMatches(db)
	committer := game.NewResultCommitter(users)
	matchmaker := game.NewMatchmaker(game.DefaultConfig(), committer, archive)

	hub := services.NewHub()
	gateway := services.NewGateway(hub, matchmaker, users)

	if _, err := services.StartJanitor(matchmaker, hub); err != nil {
		log.Fatalf("[FATAL] Failed to start janitor: %v", err)
	}

	// Setup Gin router
	router := setupRouter(gateway)

	// Start server
	port := config.Port()
	log.Printf("🚀 RPS Arena server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("[FATAL] Failed to start server: %v", err)
	}
}
