// Package bootstrap assembles configuration, infrastructure, services
// and routes into a runnable App.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/superherotang/clip/internal/encryption"
	httpHandler "github.com/superherotang/clip/internal/handler/http"
	wsHandler "github.com/superherotang/clip/internal/handler/websocket"
	"github.com/superherotang/clip/internal/hub"
	gormpersistence "github.com/superherotang/clip/internal/infra/persistence/gorm"
	"github.com/superherotang/clip/internal/infra/setup"
	"github.com/superherotang/clip/internal/infra/storage"
	"github.com/superherotang/clip/internal/middleware"
	"github.com/superherotang/clip/internal/service"
	"github.com/superherotang/clip/internal/worker"
)

// Development fallbacks matching the sample .env. Running with either
// of these in production is a deployment mistake, loudly logged.
const (
	defaultJWTSecret     = "your-secret-key-change-in-production"
	defaultEncryptionKey = "your-encryption-key-change-in-production"
)

// Config holds everything read from the environment at startup.
type Config struct {
	DBUser          string
	DBPassword      string
	DBHost          string
	DBPort          string
	DBName          string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	JWTSecret       string
	EncryptionKey   string
	ServerPort      string
	LogLevel        string
	RateLimitMax    int
	RateLimitWindow time.Duration
	SessionTTLHours int
	AppEnv          string
	StorageRoot     string
}

// LoadConfig reads configuration from the environment, with a .env
// file honored when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBName:        os.Getenv("DB_NAME"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		EncryptionKey: os.Getenv("ENCRYPTION_KEY"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		AppEnv:        os.Getenv("APP_ENV"),
		StorageRoot:   os.Getenv("STORAGE_ROOT"),

		RateLimitMax:    100,
		RateLimitWindow: 1 * time.Second,
		SessionTTLHours: 7 * 24,
	}

	cfg.RedisDB, _ = strconv.Atoi(os.Getenv("REDIS_DB"))

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.StorageRoot == "" {
		cfg.StorageRoot = "public"
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		logrus.Warn("JWT_SECRET not set, using insecure default; do not run this in production")
		cfg.JWTSecret = defaultJWTSecret
	}
	if cfg.EncryptionKey == "" {
		logrus.Warn("ENCRYPTION_KEY not set, using insecure default; do not run this in production")
		cfg.EncryptionKey = defaultEncryptionKey
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// App wires the whole service together and owns its lifecycle.
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	AsynqClient *asynq.Client
	AsynqServer *worker.WorkerServer
	Hub         *hub.Hub
	HttpServer  *http.Server
}

// NewApp creates and initializes all application components.
func NewApp() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	log.Info("Configuration loaded successfully")

	log.Info("Initializing infrastructure...")
	db, err := setup.InitDB(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.Info("Database initialized and migrated")

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	log.Info("Redis client initialized")

	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)
	log.Info("Asynq client initialized")

	fileStore := storage.NewDiskStorage(cfg.StorageRoot)
	cipher, err := encryption.New(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to init content cipher: %w", err)
	}

	log.Info("Initializing repositories...")
	userRepo := gormpersistence.NewGormUserRepository(db)
	roomRepo := gormpersistence.NewGormRoomRepository(db)
	memberRepo := gormpersistence.NewGormMemberRepository(db)
	clipRepo := gormpersistence.NewGormClipboardRepository(db)

	log.Info("Initializing services...")
	authService, err := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.SessionTTLHours)
	if err != nil {
		return nil, fmt.Errorf("failed to create AuthService: %w", err)
	}
	roomService := service.NewRoomService(roomRepo, memberRepo, clipRepo, userRepo, asynqClient)

	hubInstance := hub.NewHub()
	clipboardService := service.NewClipboardService(clipRepo, memberRepo, userRepo, cipher, fileStore, hubInstance)

	log.Info("Initializing handlers...")
	cookieMaxAge := cfg.SessionTTLHours * 3600
	cookieSecure := cfg.AppEnv == "production"
	authHandler := httpHandler.NewAuthHandler(authService, cookieMaxAge, cookieSecure)
	roomHandler := httpHandler.NewRoomHandler(roomService)
	clipboardHandler := httpHandler.NewClipboardHandler(clipboardService)
	uploadHandler := httpHandler.NewUploadHandler(clipboardService)
	externalHandler := httpHandler.NewExternalHandler(roomService, clipboardService)
	socketHandler := wsHandler.NewHandler(hubInstance, roomService)

	workerServer := worker.NewWorkerServer(redisClientOpt, fileStore, log)

	log.Info("Setting up router...")
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(middleware.RateLimit(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow))

	sessionAuth := middleware.SessionAuth(authService)
	apiKeyAuth := middleware.APIKeyAuth(authService)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", authHandler.Signup)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.GET("/me", sessionAuth, authHandler.Me)
			authRoutes.GET("/api-key", sessionAuth, authHandler.GetAPIKey)
			authRoutes.POST("/api-key", sessionAuth, authHandler.RegenerateAPIKey)
		}

		roomRoutes := api.Group("/rooms", sessionAuth)
		{
			roomRoutes.GET("", roomHandler.ListRooms)
			roomRoutes.POST("", roomHandler.CreateRoom)
			roomRoutes.POST("/join", roomHandler.JoinRoom)
			roomRoutes.GET("/:id", roomHandler.GetRoom)
			roomRoutes.PUT("/:id", roomHandler.UpdateRoom)
			roomRoutes.DELETE("/:id", roomHandler.DeleteRoom)
		}

		clipboardRoutes := api.Group("/clipboard", sessionAuth)
		{
			clipboardRoutes.GET("", clipboardHandler.ListItems)
			clipboardRoutes.POST("", clipboardHandler.CreateItem)
			clipboardRoutes.PUT("", clipboardHandler.UpdateItem)
			clipboardRoutes.DELETE("", clipboardHandler.DeleteItem)
		}

		api.POST("/upload", sessionAuth, uploadHandler.Upload)

		externalRoutes := api.Group("/external", apiKeyAuth)
		{
			externalRoutes.GET("/rooms", externalHandler.ListRooms)
			externalRoutes.POST("/rooms", externalHandler.CreateRoom)
			externalRoutes.DELETE("/rooms", externalHandler.DeleteRoom)
			externalRoutes.GET("/clipboard", externalHandler.ListItems)
			externalRoutes.POST("/clipboard", externalHandler.CreateItem)
			externalRoutes.DELETE("/clipboard", externalHandler.DeleteItem)
		}
	}

	wsRoutes := router.Group("/ws", sessionAuth)
	{
		wsRoutes.GET("/rooms/:id", socketHandler.Serve)
	}

	router.Static("/uploads", filepath.Join(cfg.StorageRoot, "uploads"))
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	log.Info("Router setup complete")

	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	app := &App{
		Config:      cfg,
		Log:         log,
		DB:          db,
		RedisClient: redisClient,
		AsynqClient: asynqClient,
		AsynqServer: workerServer,
		Hub:         hubInstance,
		HttpServer:  httpServer,
	}
	log.Info("Application assembled successfully")

	return app, nil
}

// Start launches the background routines and the HTTP server.
func (a *App) Start() {
	a.Log.Info("Starting application background routines...")
	go a.Hub.Run()
	go a.AsynqServer.Start()

	go func() {
		a.Log.Infof("HTTP server listening on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

// Shutdown stops the components in dependency order.
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	if a.AsynqServer != nil {
		a.AsynqServer.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}

	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}

	a.Log.Info("Application shutdown complete.")
}

// corsMiddleware allows the configured browser origin to reach the API
// with credentials.
func corsMiddleware() gin.HandlerFunc {
	allowedOrigin := os.Getenv("CORS_ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:3000"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggerMiddleware logs one structured line per request.
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
		})

		switch {
		case errorMessage != "":
			entry.Error(errorMessage)
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}
