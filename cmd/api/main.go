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

	"github.com/stylemirror/backend/internal/config"
	"github.com/stylemirror/backend/internal/handler"
	"github.com/stylemirror/backend/internal/model/session"
	"github.com/stylemirror/backend/internal/service/artifact"
	"github.com/stylemirror/backend/internal/service/tryon"
	twiliotransport "github.com/stylemirror/backend/internal/service/twilio"
	"github.com/stylemirror/backend/internal/service/workflow"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	artifacts, err := artifact.NewStore(cfg.Artifacts.Dir, cfg.Artifacts.PublicBaseURL)
	if err != nil {
		log.Fatalf("failed to prepare artifact store: %v", err)
	}

	transport := twiliotransport.NewClient(cfg.Twilio)
	synth := tryon.NewClient(cfg.TryOn, artifacts)
	engine := workflow.NewService(session.NewMemoryStore(), transport, synth, transport)
	log.Printf("try-on service wired against %s", cfg.TryOn.BaseURL)

	router := handler.NewRouter(engine, artifacts)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("virtual try-on backend listening on %s", addr)
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
