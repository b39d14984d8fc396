package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/medify-labs/medify/backend/internal/config"
	"github.com/medify-labs/medify/backend/internal/handler"
	chatservice "github.com/medify-labs/medify/backend/internal/service/chat"
	"github.com/medify-labs/medify/backend/internal/service/generation"
	triageservice "github.com/medify-labs/medify/backend/internal/service/triage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	chatService := chatservice.NewService()

	var gateway triageservice.Generator
	if cfg.Generation.Enabled() {
		generationService, err := generation.NewService(ctx, cfg.Generation)
		if err != nil {
			log.Printf("warning: failed to initialize generation service: %v", err)
			log.Println("continuing without generation - open queries will fail until credentials are fixed")
		} else {
			gateway = generationService
			log.Println("generation service initialized successfully")
		}
	} else {
		log.Println("no generation credentials configured, open queries will return an error")
	}

	triageService := triageservice.NewService(chatService, gateway, nil)

	router := handler.NewRouter(chatService, triageService)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Medify backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
