package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"backend/pkg/logger"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Approval Workflow API
// @version         1.0
// @description     Approval request workflow with multi-approver consensus, resubmission lineage and ordered pipeline stages.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	zlog, err := logger.FromEnv()
	if err != nil {
		log.Fatalf("Logger init failed: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

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
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	zlog.Info("connected to postgres")

	// WebSocket hub doubles as the workflow event sink
	wsHub := websocket.NewHub(zlog.Named("ws"))
	go wsHub.Run()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	memberRepo := repository.NewMemberRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	approverRepo := repository.NewApproverRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	stageRepo := repository.NewStageRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Services (Repository -> Service -> Handler)
	auditService := service.NewAuditService(auditRepo)
	attachmentService := service.NewAttachmentService(attachmentRepo)
	memberService := service.NewMemberService(memberRepo)
	requestService := service.NewRequestService(requestRepo, approverRepo, memberRepo, attachmentService, auditService, txManager, wsHub)
	responseService := service.NewResponseService(requestRepo, responseRepo, approverRepo, memberRepo, attachmentService, auditService, txManager, wsHub)
	approverService := service.NewApproverService(requestRepo, approverRepo, memberRepo, responseRepo, auditService, txManager, wsHub)
	stageService := service.NewStageService(stageRepo, auditService, txManager)

	// Handlers
	memberHandler := handler.NewMemberHandler(memberService)
	requestHandler := handler.NewRequestHandler(requestService)
	responseHandler := handler.NewResponseHandler(responseService)
	approverHandler := handler.NewApproverHandler(approverService)
	stageHandler := handler.NewStageHandler(stageService)
	auditHandler := handler.NewAuditHandler(auditService)

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

	// Register API Routes
	memberHandler.RegisterRoutes(router.Group(""))
	requestHandler.RegisterRoutes(router.Group(""))
	responseHandler.RegisterRoutes(router.Group(""))
	approverHandler.RegisterRoutes(router.Group(""))
	stageHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	zlog.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}
