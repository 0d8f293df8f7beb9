// main.go
package main

import (
	"log"
	"os"
	"time"

	"pollquest/database"
	"pollquest/handlers"
	"pollquest/handlers/admin"
	"pollquest/middleware"
	"pollquest/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	// Initialize database
	database.InitDB()

	// Initialize services
	services.InitQuestEngine(database.GetDB())
	services.InitMaintenanceService(database.GetDB())
	services.GetMaintenanceService().Start()
	defer services.GetMaintenanceService().Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.FiberRateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Quest routes
	api.Post("/quests/sync", handlers.SyncActivity)
	api.Get("/quests", handlers.GetQuests)
	api.Get("/quests/stats", handlers.GetStats)

	// Profile routes
	api.Post("/profile", handlers.CreateProfile)
	api.Get("/profile/:wallet", handlers.GetProfile)
	api.Put("/profile/:wallet", handlers.UpdateProfile)
	api.Get("/profile/:wallet/transactions", handlers.GetTransactions)

	// Referral routes
	api.Post("/referral/apply", handlers.ApplyReferral)
	api.Get("/referral", handlers.GetReferrals)

	// Badge & milestone routes
	api.Get("/badges", handlers.GetBadges)
	api.Get("/milestones", handlers.GetMilestones)

	// Leaderboard routes
	api.Get("/leaderboard", handlers.GetLeaderboard)

	// Shop routes
	api.Get("/shop", handlers.GetShopItems)
	api.Post("/shop/purchase", middleware.FiberStrictRateLimitMiddleware(), handlers.PurchaseItem)
	api.Get("/shop/redemptions", handlers.GetRedemptions)

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", middleware.FiberStrictRateLimitMiddleware(), admin.Login)
	adminGroup.Post("/logout", admin.Logout)

	// Protected admin routes
	adminProtected := adminGroup.Group("")
	adminProtected.Use(middleware.AdminAuthMiddleware)
	adminProtected.Get("/verify", admin.VerifyToken)

	// Admin quest management
	adminProtected.Get("/quests", admin.GetQuests)
	adminProtected.Post("/quests", admin.CreateQuest)
	adminProtected.Put("/quests/:id", admin.UpdateQuest)
	adminProtected.Delete("/quests/:id", admin.DeleteQuest)

	// Admin shop management
	adminProtected.Get("/shop", admin.GetShopItems)
	adminProtected.Post("/shop", admin.CreateShopItem)
	adminProtected.Put("/shop/:id", admin.UpdateShopItem)
	adminProtected.Delete("/shop/:id", admin.DeleteShopItem)

	// Admin badge management
	adminProtected.Get("/badges", admin.GetBadges)
	adminProtected.Post("/badges", admin.CreateBadge)
	adminProtected.Put("/badges/:id", admin.UpdateBadge)

	// Admin milestone management
	adminProtected.Get("/milestones", admin.GetMilestones)
	adminProtected.Post("/milestones", admin.CreateMilestone)
	adminProtected.Put("/milestones/:id", admin.UpdateMilestone)

	// Admin analytics & corrections
	adminProtected.Get("/analytics", admin.GetAnalytics)
	adminProtected.Post("/points/adjust", admin.AdjustPoints)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")
	log.Printf("✅ Quest sync endpoint available at /api/quests/sync")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	if os.Getenv("ADMIN_USERNAME") == "" || os.Getenv("ADMIN_PASSWORD_HASH") == "" {
		log.Println("WARNING: ADMIN_USERNAME/ADMIN_PASSWORD_HASH not set, admin console disabled")
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
