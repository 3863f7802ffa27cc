package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"warmhome-backend/internal/analytics"
	"warmhome-backend/internal/config"
	"warmhome-backend/internal/handler"
	"warmhome-backend/internal/service"
	"warmhome-backend/pkg/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "path to config file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	chatService := service.NewFromConfig(cfg)
	defer chatService.Shutdown()

	// The dashboard data endpoints degrade to 503 when MongoDB is absent;
	// the assistant keeps working either way.
	var repo *analytics.Repository
	if cfg.Mongo.URI != "" {
		client, err := analytics.Connect(context.Background(), cfg.Mongo)
		if err != nil {
			logger.Errorf("MongoDB unavailable, market data endpoints disabled: %v", err)
		} else {
			repo = analytics.NewRepository(client.Database(cfg.Mongo.Database))
			defer client.Disconnect(context.Background())
		}
	} else {
		logger.Warn("MongoDB URI not configured, market data endpoints disabled")
	}

	chatHandler := handler.NewChatHandler(chatService)
	dataHandler := handler.NewDataHandler(repo)

	router := setupRouter(cfg, chatHandler, dataHandler)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Infof("Server listening on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}

func setupRouter(cfg *config.Config, chatHandler *handler.ChatHandler, dataHandler *handler.DataHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	api := router.Group("/api")
	{
		chat := api.Group("/chat")
		{
			chat.POST("/session", chatHandler.StartSession)
			chat.GET("/session/:session_id", chatHandler.GetSession)
			chat.GET("/messages/:session_id", chatHandler.GetMessages)
			chat.POST("/send", chatHandler.Send)
			chat.POST("/feedback", chatHandler.Feedback)
			chat.POST("/volunteer", chatHandler.ConnectVolunteer)
			chat.POST("/language", chatHandler.ChangeLanguage)
			chat.POST("/new", chatHandler.NewChat)
			chat.POST("/activity", chatHandler.Activity)
		}

		data := api.Group("/data")
		{
			data.GET("/states", dataHandler.States)
			data.GET("/suburbs", dataHandler.Suburbs)
			data.GET("/bar-chart", dataHandler.BarChart)
			data.GET("/line-graph", dataHandler.LineGraph)
			data.GET("/city-comparison", dataHandler.CityComparison)
			data.GET("/stats", dataHandler.Stats)
			data.GET("/properties", dataHandler.Properties)
			data.GET("/search", dataHandler.Search)
		}
	}

	return router
}
