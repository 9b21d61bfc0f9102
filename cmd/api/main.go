package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/erp"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/telegram"
	"backend/internal/websocket"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Document Workflow API
// @version         1.0
// @description     Multi-role document approval pipeline with Telegram password reset.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// External clients
	botClient := telegram.NewBotClient(os.Getenv("TELEGRAM_BOT_TOKEN"), 10*time.Second)
	erpClient := erp.NewClient(os.Getenv("ERP_BASE_URL"), os.Getenv("ERP_API_KEY"), 15*time.Second)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	typeRepo := repository.NewDocumentTypeRepository(db)
	priorityRepo := repository.NewPriorityRepository(db)
	statusRepo := repository.NewStatusLogRepository(db)
	returnedRepo := repository.NewReturnedRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// 3 reset requests per phone per 10 minutes, plus a per-IP gate on the route
	resetLimiter := middleware.NewFixedWindowLimiter(3, 10*time.Minute)
	routeLimiter := middleware.NewFixedWindowLimiter(30, time.Minute)

	userService := service.NewUserService(userRepo)
	workflowService := service.NewWorkflowService(docRepo, priorityRepo, statusRepo, returnedRepo, userRepo, auditRepo, txManager, wsHub)
	documentService := service.NewDocumentService(docRepo, typeRepo, userRepo, workflowService, auditRepo, txManager, wsHub)
	typeService := service.NewDocumentTypeService(typeRepo)
	departmentService := service.NewDepartmentService(departmentRepo)
	warehouseService := service.NewWarehouseService(warehouseRepo, userRepo, erpClient)
	resetService := service.NewPasswordResetService(userRepo, resetRepo, auditRepo, botClient, resetLimiter)
	auditService := service.NewAuditService(auditRepo)
	statisticsService := service.NewStatisticsService(db, userRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	documentHandler := handler.NewDocumentHandler(documentService, workflowService)
	typeHandler := handler.NewDocumentTypeHandler(typeService)
	departmentHandler := handler.NewDepartmentHandler(departmentService)
	warehouseHandler := handler.NewWarehouseHandler(warehouseService)
	resetHandler := handler.NewPasswordResetHandler(resetService, routeLimiter)
	auditHandler := handler.NewAuditHandler(auditService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// API Routing
	userHandler.RegisterRoutes(router.Group(""))
	documentHandler.RegisterRoutes(router.Group(""))
	typeHandler.RegisterRoutes(router.Group(""))
	departmentHandler.RegisterRoutes(router.Group(""))
	warehouseHandler.RegisterRoutes(router.Group(""))
	resetHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
