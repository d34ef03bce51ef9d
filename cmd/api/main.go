package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"moneymap/internal/config"
	"moneymap/internal/database"
	"moneymap/internal/handlers"
	"moneymap/internal/jobs"
	"moneymap/internal/logger"
	"moneymap/internal/mail"
	"moneymap/internal/middleware"
	"moneymap/internal/services"
	"moneymap/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "moneymap/internal/docs" // Import swagger docs
)

// @title           MoneyMap API
// @version         1.0
// @description     MoneyMap is a personal finance tracker: record expenses, set category budgets with email alerts, and track savings goals.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Mail transport
	mailer, err := mail.New(appConfig)
	if err != nil {
		return fmt.Errorf("failed to configure mailer: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	expenseService := services.NewExpenseService(db)
	budgetService := services.NewBudgetService(db)
	goalService := services.NewGoalService(db)
	alertService := services.NewAlertService(db, userService, mailer)
	dashboardService := services.NewDashboardService(db, expenseService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, mailer)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, alertService)
	goalHandler := handlers.NewGoalHandler(goalService)
	settingsHandler := handlers.NewSettingsHandler(userService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Daily budget alert job
	scheduler := jobs.NewAlertScheduler(alertService, appConfig.AlertCron)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start alert scheduler: %w", err)
	}
	defer scheduler.Stop()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Uploaded profile pictures
	router.Static("/uploads/profile-pictures", appConfig.UploadDir)

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.GET("/verify-email/:token", authHandler.VerifyEmail)
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// Current user
	protected.GET("/auth/user", authHandler.GetUser)

	// Expense routes
	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/summary", expenseHandler.GetSummary)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.SetBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/comparison", budgetHandler.GetComparison)
	budgets.POST("/check-alerts", budgetHandler.CheckAlerts)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.PUT("/:id/alerts", budgetHandler.UpdateAlertSettings)

	// Savings goal routes
	goals := protected.Group("/savings-goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.PUT("/:id/progress", goalHandler.UpdateProgress)

	// Settings routes
	settings := protected.Group("/settings")
	settings.GET("/profile", settingsHandler.GetProfile)
	settings.PUT("/profile", settingsHandler.UpdateProfile)
	settings.PUT("/password", settingsHandler.UpdatePassword)
	settings.PUT("/preferences", settingsHandler.UpdatePreferences)
	settings.POST("/profile-picture", settingsHandler.UploadProfilePicture)

	// Dashboard
	protected.GET("/dashboard", dashboardHandler.GetSummary)

	// Stop the scheduler cleanly on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		log.Infof("Received signal %s, shutting down", sig)
		scheduler.Stop()
		logger.Sync()
		os.Exit(0)
	}()

	log.Infof("Starting MoneyMap backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
