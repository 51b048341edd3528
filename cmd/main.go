package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"pairchat/backend/internal/api/handler"
	"pairchat/backend/internal/chathub"
	"pairchat/backend/internal/config"
	"pairchat/backend/internal/models"
	"pairchat/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL. TranslateError turns unique-index conflicts into
	// gorm.ErrDuplicatedKey, which the room registry's create-or-fetch retry
	// relies on.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.ChatRoom{},
		&models.Message{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting PairChat Backend...")

	cfg := config.Load()

	// 1. Dependencies
	db, rdb := setupDependencies(cfg)
	s := storage.NewService(db, rdb)

	// 2. Chat hub + broadcast listener
	hub := chathub.NewManagerService(s)
	go hub.Run()
	go hub.ListenEvents(s.SubscribeRoomEvents())

	// 3. Gin routing
	r := gin.Default()
	h := handler.NewHandler(hub, s, cfg)

	r.POST("/auth/token", h.IssueToken)

	chat := r.Group("/chat", h.RequireAuth)
	chat.GET("/with/:user_id", h.ChatWith)
	chat.GET("/latest", h.LatestRoom)

	r.GET("/ws/:room_id", h.ServeWebSocket)

	// 4. HTTP server
	server := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
