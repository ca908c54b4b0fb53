package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"phewasview/internal"
	"phewasview/internal/config"
	"phewasview/internal/container"
	"phewasview/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(appConfig.LogLevel))
	gin.SetMode(appConfig.Server.GinMode)

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = appContainer.Shutdown(ctx)
	}()

	appContainer.StartSessionJanitor(appConfig.Server.SessionTTL, time.Minute)

	// Warm the outcome catalog so the first table has labels
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), appConfig.ExPheWAS.FetchTimeout)
		defer cancel()
		if _, err := appContainer.Catalog.Get(ctx); err != nil {
			log.Printf("Outcome catalog not available yet: %v", err)
		}
	}()

	server, err := ui.NewServer(appContainer.ExploreService, appContainer.SSEHub, appContainer.Renderer)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
