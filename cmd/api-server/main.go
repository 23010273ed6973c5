package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"threadhub/database"
	"threadhub/internal/config"
	"threadhub/internal/microservices/http-api/handler"
	"threadhub/internal/microservices/http-api/middleware"
	"threadhub/internal/microservices/http-api/repository"
	"threadhub/internal/microservices/http-api/service"
)

func main() {
	// 1️⃣ Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logger := newLogger(cfg)

	// 2️⃣ Connect to the database
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("could not connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	// 3️⃣ Like-count cache; the API still works when redis is down
	likeCache, err := repository.NewLikeCountCache(cfg.RedisAddr, cfg.RedisPassword, time.Duration(cfg.LikeCacheTTL)*time.Second)
	if err != nil {
		logger.Warn("like cache unavailable, serving counts from the database", "error", err)
		likeCache = nil
	} else {
		defer likeCache.Close()
	}

	// 4️⃣ Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	// 5️⃣ Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	boardService := service.NewBoardService(boardRepo)
	commentService := service.NewCommentService(commentRepo, likeRepo, postRepo, likeCache)

	// 6️⃣ Handlers
	authHandler := handler.NewAuthHandler(authService)
	boardHandler := handler.NewBoardHandler(boardService)
	commentHandler := handler.NewCommentHandler(commentService)

	// 7️⃣ Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.CORSOrigins))

	r.GET("/check-conn", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "API is alive and database connected ✅",
		})
	})

	// Auth endpoints are public
	authHandler.RegisterRoutes(r.Group("/auth"))

	// Who-am-I for clients checking their stored session
	me := r.Group("/api/me")
	me.Use(middleware.AuthMiddleware(authService))
	me.GET("", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"user_id":  ctx.GetString("userID"),
			"username": ctx.GetString("username"),
		})
	})

	// Board rules are public reads
	boardHandler.RegisterRoutes(r.Group("/api/boards"))

	// Comment routes resolve the viewer when a token is present but stay
	// open for guests; per-route rules decide who may do what.
	posts := r.Group("/api/posts")
	posts.Use(middleware.OptionalAuthMiddleware(authService))
	commentHandler.RegisterRoutes(posts)

	httpServer := fmt.Sprintf("127.0.0.1:%d", cfg.HTTPPort)
	logger.Info("🚀 Server running", "addr", httpServer, "env", cfg.GoEnv)
	if err := r.Run(httpServer); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h)
}

// corsMiddleware allows the configured web origins to call the API.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
