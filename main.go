package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tarefas-app/tarefas-be/internal/api"
	"github.com/tarefas-app/tarefas-be/internal/auth"
	"github.com/tarefas-app/tarefas-be/internal/config"
	"github.com/tarefas-app/tarefas-be/internal/database"
	"github.com/tarefas-app/tarefas-be/internal/logger"
	"github.com/tarefas-app/tarefas-be/internal/monitoring"
	"github.com/tarefas-app/tarefas-be/internal/repository"
	"github.com/tarefas-app/tarefas-be/internal/services"
	"github.com/tarefas-app/tarefas-be/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	auth.SetSigningKey(cfg.JWTSecret)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up WebSocket hub for the activity feed
	hub := websocket.NewHub()
	go hub.Run()

	// Set up repositories and services
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	eventService := services.NewEventService(db, hub)
	userService := services.NewUserService(userRepo, taskRepo, eventService)
	taskService := services.NewTaskService(taskRepo, userRepo, eventService)

	// Set up and run the background event pruner
	pruner, err := monitoring.NewEventPruner(eventService, cfg.EventPruneSchedule, cfg.EventRetentionDays)
	if err != nil {
		log.Fatalf("Failed to initialize event pruner: %v", err)
	}
	go pruner.Run()

	// Set up router
	router := api.NewRouter(hub, userService, taskService, eventService, cfg.AllowedOrigin)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	pruner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
