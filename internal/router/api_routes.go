package router

import (
	"portfolio-web/internal/config"
	"portfolio-web/internal/handler"
	"portfolio-web/internal/middleware"
	"portfolio-web/internal/repository"
	"portfolio-web/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func SetupAPIRoutes(
	router fiber.Router,
	db *sqlx.DB,
	redisClient *redis.Client,
	cfg *config.Config,
) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	importRepo := repository.NewImportRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg)
	excelService := service.NewExcelService()

	// Initialize Asynq client (optional - only if Redis is available)
	var asynqClient *asynq.Client
	if redisClient != nil {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userRepo)
	companyHandler := handler.NewCompanyHandler(companyRepo, priceRepo)
	txHandler := handler.NewTransactionHandler(txRepo, companyRepo)
	importHandler := handler.NewImportHandler(importRepo, companyRepo, excelService, asynqClient, redisClient, cfg)

	// Public routes
	auth := router.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)
	auth.Post("/logout", authHandler.Logout)

	// Protected routes
	protected := router.Group("", middleware.AuthMiddleware(cfg))

	// Auth routes
	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/change-password", authHandler.ChangePassword)

	// User administration routes
	users := protected.Group("/users", middleware.AdminOnly())
	users.Get("/", userHandler.GetUsers)
	users.Get("/:id", userHandler.GetUser)
	users.Put("/:id", userHandler.UpdateUser)
	users.Delete("/:id", userHandler.DeactivateUser)

	// Company routes
	companies := protected.Group("/companies")
	companies.Get("/", companyHandler.GetCompanies)
	companies.Get("/:id", companyHandler.GetCompany)
	companies.Post("/", companyHandler.CreateCompany)
	companies.Put("/:id", companyHandler.UpdateCompany)
	companies.Delete("/:id", companyHandler.DeleteCompany)
	companies.Get("/:id/prices", companyHandler.GetPriceHistory)
	companies.Post("/:id/prices", companyHandler.AddPricePoint)
	companies.Get("/:id/prices/latest", companyHandler.GetLatestPrice)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.Get("/", txHandler.GetTransactions)
	transactions.Get("/:id", txHandler.GetTransaction)
	transactions.Post("/", txHandler.CreateTransaction)
	transactions.Put("/:id", txHandler.UpdateTransaction)
	transactions.Delete("/:id", txHandler.DeleteTransaction)

	// Import routes
	imports := protected.Group("/imports")
	imports.Post("/", importHandler.Upload)
	imports.Get("/template", importHandler.DownloadTemplate)
	imports.Get("/:code", importHandler.GetPreview)
	imports.Post("/:code/commit", importHandler.Commit)
	imports.Post("/:code/back", importHandler.Back)
	imports.Delete("/:code", importHandler.Cancel)
	imports.Get("/:code/progress", importHandler.Progress)
	imports.Get("/:code/errors/report", importHandler.DownloadErrorReport)
}
