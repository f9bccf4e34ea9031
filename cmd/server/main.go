package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/pr-poehali-dev/jjrkdoemyt-social-network/config"
	database "github.com/pr-poehali-dev/jjrkdoemyt-social-network/db"
	"github.com/pr-poehali-dev/jjrkdoemyt-social-network/gateway"
	"github.com/pr-poehali-dev/jjrkdoemyt-social-network/handler"
	"github.com/pr-poehali-dev/jjrkdoemyt-social-network/pkg/token"
	"github.com/pr-poehali-dev/jjrkdoemyt-social-network/repository"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewConnection(database.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		DBName:       cfg.Database.DBName,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxLifetime:  cfg.Database.MaxLifetime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.HealthCheck(ctx); err != nil {
		log.Fatalf("Database health check failed: %v", err)
	}
	log.Println("Database health check passed")

	tokens := token.NewManager(cfg.TokenSecret)

	users := repository.NewUserRepository(db.DB)
	posts := repository.NewPostRepository(db.DB)
	shorts := repository.NewShortRepository(db.DB)

	authHandler := handler.NewAuthHandler(users, tokens)
	postHandler := handler.NewPostHandler(posts, users, tokens)
	shortHandler := handler.NewShortHandler(shorts, users, tokens)

	r := mux.NewRouter()
	r.Handle("/auth", gateway.HTTP(authHandler))
	r.Handle("/posts", gateway.HTTP(postHandler))
	r.Handle("/shorts", gateway.HTTP(shortHandler))
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped cleanly")
}
