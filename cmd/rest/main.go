package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-caresupervisor-be/internal/bootstrap"
	"ai-caresupervisor-be/internal/config"
	"ai-caresupervisor-be/internal/server"
	"ai-caresupervisor-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)
	defer container.Close()

	// 3. Start Background Services
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	go func() {
		log.Println("Background: Starting Alert Consumer Service...")
		if err := container.AlertConsumerService.Consume(consumerCtx); err != nil {
			log.Printf("Background Alert Consumer Error: %v", err)
		}
	}()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal(err)
	case sig := <-sigCh:
		log.Printf("Received %s, shutting down...", sig)
		cancelConsumer()
		if err := srv.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}
}
