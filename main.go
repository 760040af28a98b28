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

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/familychurch/eventbot/config"
	"github.com/familychurch/eventbot/endpoints"
	"github.com/familychurch/eventbot/internal/catalog"
	"github.com/familychurch/eventbot/internal/dialogue"
	"github.com/familychurch/eventbot/internal/github"
	"github.com/familychurch/eventbot/internal/media"
	"github.com/familychurch/eventbot/internal/ollama"
	"github.com/familychurch/eventbot/internal/pending"
	"github.com/familychurch/eventbot/internal/telegram"
	"github.com/familychurch/eventbot/middleware"
	"github.com/familychurch/eventbot/utils"
)

const ServiceName = "eventbot"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Println(utils.GetVersion().Str)
			os.Exit(0)
		case "help", "--help", "-h":
			fmt.Println("Family Church event bot")
			fmt.Println()
			fmt.Println("Usage:")
			fmt.Println("  eventbot              Start the webhook service")
			fmt.Println("  eventbot version      Display version information")
			os.Exit(0)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	log.Println("Initializing Redis connection...")
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		log.Fatalf("FATAL: Failed to connect to Redis at %s: %v", cfg.RedisAddr, err)
	}
	pingCancel()
	log.Println("Redis connected successfully")

	bot := telegram.NewClient(cfg.BotToken)
	ai := ollama.NewClient(cfg.OllamaURL, cfg.OllamaModel)
	gh := github.NewClient(cfg.GitHubToken, cfg.GitHubOwner, cfg.GitHubRepo)

	store := catalog.NewStore(gh, cfg.CatalogPath, cfg.GitHubBranch)
	staged := pending.NewStore(rdb, cfg.PendingTTL())
	pipeline := media.NewPipeline(bot, gh, store, cfg.GitHubBranch, cfg.ImagesPrefix)
	controller := dialogue.NewController(bot, ai, store, staged, pipeline, cfg.OperatorChatID)

	router := mux.NewRouter()
	router.HandleFunc("/service", endpoints.ServiceHandler).Methods("GET")
	router.HandleFunc("/webhook/{secret}", endpoints.WebhookHandler(cfg.WebhookSecret, staged, controller)).Methods("POST")

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      middleware.CorsMiddleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting %s on :%d", ServiceName, cfg.Port)
		utils.SetHealthStatus("OK", "Service is running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server crashed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("Shutting down service...")

	utils.SetHealthStatus("SHUTTING_DOWN", "Service is shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	if err := rdb.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}

	log.Println("Service exited cleanly")
}
