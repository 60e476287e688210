package main

import (
	"context"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/Gleb-Barkovskiy/game-server/auth"
	"github.com/Gleb-Barkovskiy/game-server/config"
	"github.com/Gleb-Barkovskiy/game-server/crypto"
	"github.com/Gleb-Barkovskiy/game-server/game"
	"github.com/Gleb-Barkovskiy/game-server/logger"
	"github.com/Gleb-Barkovskiy/game-server/migrations"
	"github.com/Gleb-Barkovskiy/game-server/storage"
	"github.com/Gleb-Barkovskiy/game-server/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	godotenv.Load()

	if os.Getenv("DEBUG") != "" {
		logger.SetDebug()
	}

	// ENVs
	ALLOWED_ORIGINS, exists := os.LookupEnv("ALLOWED_ORIGINS")
	if !exists {
		logger.Fatalf("Missing allowed origins")
	}
	allowedOrigins := strings.Split(ALLOWED_ORIGINS, ",")

	POSTGRES_URL, exists := os.LookupEnv("POSTGRES_URL")
	if !exists {
		logger.Fatalf("Missing postgres url")
	}

	JWT_KEY, exists := os.LookupEnv("JWT_KEY")
	if !exists {
		logger.Fatalf("Missing jwt signing key")
	}

	if err := migrations.Migrate(POSTGRES_URL); err != nil {
		logger.Fatalf("Migrations failed: %v", err)
	}

	// Dependencies
	pgRepo, err := storage.NewPostgresRepo(context.Background(), POSTGRES_URL)
	if err != nil {
		logger.Fatalf("Couldn't connect to postgres: %v", err)
	}
	tokenAge := time.Hour * 24 * 7 // 7 days
	passwordHasher := crypto.NewArgon2idHasher(3, 1024*64, 32, 16, 1)
	tokenManager := crypto.NewJWTManager(JWT_KEY, tokenAge)

	authService := auth.NewService(pgRepo, passwordHasher, tokenManager)
	authHandler := auth.NewAuthHandler(authService, tokenAge)

	r := CreateServer(allowedOrigins)

	{
		authGroup := r.Group("/auth")
		authGroup.POST("/signup", authHandler.SignupHandler)
		authGroup.POST("/login", authHandler.LoginHandler)
		authGroup.POST("/logout", authHandler.LogoutHandler)
		authGroup.GET("/refresh", authHandler.RefreshSessionHandler)
	}

	cfg := config.Default()
	memStore := store.NewMemory()

	service := game.NewService(memStore, cfg, game.NewScheduler())
	pool := game.NewPool(memStore, cfg, service, game.NewTickerGen())

	poolStarted := make(chan struct{})
	go pool.Run(poolStarted)
	<-poolStarted

	gameHandler := game.NewGameHandler(pool, service, pgRepo, memStore)
	{
		gameGroup := r.Group("/game")
		gameGroup.Use(authHandler.RequireAuthMiddleware(time.Second * 2))

		gameGroup.POST("/join-pool", gameHandler.JoinPoolHandler)
		gameGroup.GET("/pending-room", gameHandler.PendingRoomHandler)
		gameGroup.GET("/ws-user", gameHandler.UserChannelHandler)
		gameGroup.GET("/ws/:roomid", gameHandler.RoomChannelHandler)
	}
	{
		roomGroup := r.Group("/room")
		roomGroup.Use(authHandler.RequireAuthMiddleware(time.Second * 2))

		roomGroup.GET("/:roomid", gameHandler.RoomInfoHandler)
		roomGroup.GET("/:roomid/users", gameHandler.RoomUsersHandler)
		roomGroup.POST("/:roomid/leave", gameHandler.LeaveRoomHandler)
	}

	logger.Infof("api listening on port 5000")
	if err := r.Run(":5000"); err != nil {
		logger.Fatalf("Couldn't start server: %v", err)
	}
}
