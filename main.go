package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogicum/config"
	"blogicum/database"
	"blogicum/media"
	"blogicum/metrics"
	"blogicum/site"
	"blogicum/tracing"

	"go.opentelemetry.io/otel"
)

func main() {
	configFile := flag.String("config", "", "path to a config file (default: blogicum.yaml in . or /etc/blogicum)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}

	db, err := database.Open(cfg.Database, cfg.Server.Debug, otel.GetTracerProvider())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := database.Seed(db, cfg.Seed); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	store, err := media.New(ctx, cfg.Media)
	if err != nil {
		log.Fatalf("Failed to set up media storage: %v", err)
	}

	s := site.New(db, store, metrics.New(), cfg.Server)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           tracing.Handler(s.Routes(), "blogicum"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Running on http://localhost%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server stopped: %v", err)
		}
	}()

	// Block until a signal is received
	<-signals
	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("Tracer shutdown: %v", err)
	}
	if err := database.Close(db); err != nil {
		log.Printf("Close database: %v", err)
	}
}
