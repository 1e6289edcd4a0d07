package main

import (
	"log"
	"time"

	"equalpay-backend/config"
	"equalpay-backend/database"
	"equalpay-backend/handlers"
	"equalpay-backend/middleware"
	"equalpay-backend/ratelimit"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.Load()

	// Connect to database
	database.Connect()

	// Connect to Redis (optional, won't crash if unavailable)
	database.ConnectRedis()

	// Auth rate limiting: Redis-backed when available so limits hold
	// across instances, in-memory otherwise
	var limitStore ratelimit.Store
	if database.Redis != nil {
		limitStore = ratelimit.NewRedisStore(database.Redis, "ratelimit:")
	} else {
		limitStore = ratelimit.NewMemoryStore(time.Now, 10000)
	}
	handlers.InitRateLimiters(limitStore)

	// Setup router
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": config.AppConfig.AppName,
		})
	})

	// ==========================================
	// AUTH ROUTES (public)
	// ==========================================
	auth := r.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
	}

	// ==========================================
	// API ROUTES (authenticated)
	// ==========================================
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	{
		// User
		api.GET("/users/me", handlers.GetProfile)
		api.PUT("/users/me", handlers.UpdateProfile)
		api.PUT("/users/me/fcm-token", handlers.UpdateFCMToken)

		// Groups
		api.POST("/groups", handlers.CreateGroup)
		api.GET("/groups", handlers.GetGroups)
		api.GET("/groups/:id", handlers.GetGroup)
		api.PUT("/groups/:id", handlers.UpdateGroup)
		api.DELETE("/groups/:id", handlers.DeleteGroup)
		api.POST("/groups/:id/members", handlers.AddMember)
		api.DELETE("/groups/:id/members/:uid", handlers.RemoveMember)

		// Invites
		api.POST("/groups/:id/invites", handlers.CreateInvite)
		api.POST("/invites/:token/accept", handlers.AcceptInvite)

		// Expenses
		api.POST("/groups/:id/expenses", handlers.CreateExpense)
		api.GET("/groups/:id/expenses", handlers.GetGroupExpenses)
		api.DELETE("/groups/:id/expenses/bulk", handlers.BulkDeleteExpenses)
		api.POST("/groups/:id/expenses/replace", handlers.ReplaceExpenses)
		api.GET("/expenses/:id", handlers.GetExpense)
		api.DELETE("/expenses/:id", handlers.DeleteExpense)

		// Balances
		api.GET("/groups/:id/balances", handlers.GetGroupBalances)
		api.GET("/balances", handlers.GetOverallBalances)

		// Settlements
		api.POST("/groups/:id/settlements", handlers.CreateSettlement)
		api.GET("/groups/:id/settlements", handlers.GetGroupSettlements)
		api.PUT("/groups/:id/settlements/:sid", handlers.UpdateSettlement)
		api.DELETE("/groups/:id/settlements/:sid", handlers.DeleteSettlement)

		// Activity
		api.GET("/activity", handlers.GetActivity)
		api.GET("/groups/:id/activity", handlers.GetGroupActivity)
	}

	// Start server
	port := config.AppConfig.Port
	log.Printf("🚀 %s server starting on port %s", config.AppConfig.AppName, port)

	addr := "0.0.0.0:" + port
	if err := r.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
