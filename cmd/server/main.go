package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/skyeslattery/foundit/internal/asset"
	"github.com/skyeslattery/foundit/internal/config"
	"github.com/skyeslattery/foundit/internal/database"
	"github.com/skyeslattery/foundit/internal/embed"
	"github.com/skyeslattery/foundit/internal/match"
	"github.com/skyeslattery/foundit/internal/middleware"
	"github.com/skyeslattery/foundit/internal/post"
	"github.com/skyeslattery/foundit/internal/storage"
	"github.com/skyeslattery/foundit/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadConfig()
	if cfg.DBUrl == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(cfg.DBUrl)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	if err := db.AutoMigrate(&user.User{}, &post.Post{}, &asset.Asset{}); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	s3, err := storage.NewS3(context.Background(), cfg)
	if err != nil {
		log.Fatalf("S3 setup failed: %v", err)
	}

	// One embedding client per process, shared across requests.
	embedder := embed.NewClient(cfg)
	matcher := match.NewSemanticMatcher(embedder, match.SemanticThreshold)

	uploader := asset.NewUploader(db, s3, s3.BaseURL())
	userHandler := user.NewHandler(db)
	postHandler := post.NewHandler(db, uploader, matcher)
	assetHandler := asset.NewHandler(uploader)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.GET("/", func(c *gin.Context) {
		c.String(200, "FoundIt")
	})

	api := r.Group("/api")

	api.GET("/users/", userHandler.List)
	api.POST("/users/", userHandler.Create)
	api.GET("/users/:id/", userHandler.Get)
	api.POST("/users/:id/posts/", postHandler.Create)

	api.GET("/posts/found/", postHandler.Found)
	api.GET("/posts/lost/", postHandler.Lost)
	api.DELETE("/posts/:id/", postHandler.Delete)
	api.POST("/posts/search/", postHandler.Search)
	api.POST("/posts/match/", postHandler.Match)

	api.POST("/upload/", assetHandler.Upload)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
